package aiextract

import (
	"regexp"
	"sort"
	"strings"

	"quizflow/internal/question"
	"quizflow/internal/util"
)

const (
	minFragmentLen  = 20
	maxFragmentLen  = 220
	maxPlaceholders = 3
	maxParagraphs   = 10
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// PlaceholdersFromSentences builds up to n placeholder questions from the
// longest sentences of text. It always returns at least one record.
func PlaceholdersFromSentences(text string, n int) []question.Record {
	if n <= 0 || n > maxPlaceholders {
		n = maxPlaceholders
	}
	sentences := fragments(util.SplitSentences(util.NormalizeWhitespace(text)))
	sort.SliceStable(sentences, func(i, j int) bool { return len(sentences[i]) > len(sentences[j]) })
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return placeholdersFor(sentences)
}

// PlaceholdersFromParagraphs builds one placeholder per paragraph, using the
// paragraph's first sentence. It always returns at least one record.
func PlaceholdersFromParagraphs(text string) []question.Record {
	paras := paragraphBreak.Split(strings.TrimSpace(text), -1)
	heads := make([]string, 0, len(paras))
	for _, p := range paras {
		sentences := fragments(util.SplitSentences(util.NormalizeWhitespace(p)))
		if len(sentences) > 0 {
			heads = append(heads, sentences[0])
		}
		if len(heads) == maxParagraphs {
			break
		}
	}
	return placeholdersFor(heads)
}

func fragments(sentences []string) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		r := []rune(strings.TrimSpace(s))
		if len(r) <= minFragmentLen {
			continue
		}
		if len(r) > maxFragmentLen {
			r = append(r[:maxFragmentLen], '.')
		}
		s = strings.TrimSpace(string(r))
		out = append(out, s)
	}
	return out
}

func placeholdersFor(fragments []string) []question.Record {
	if len(fragments) == 0 {
		return []question.Record{question.Placeholder("")}
	}
	out := make([]question.Record, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, question.Placeholder("Which statement is supported by the text: "+strings.TrimRight(f, ".!?")+"?"))
	}
	return out
}
