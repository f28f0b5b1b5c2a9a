package pattern

import (
	"regexp"
	"sort"
	"strings"

	"quizflow/internal/question"
	"quizflow/internal/util"
)

var (
	embeddedLabel  = regexp.MustCompile(`^\s*([A-H])(\d+)\s*[.)]\s*`)
	questionLabel  = regexp.MustCompile(`^\s*(?:Question|QUESTION|Q)\s*\d+\s*[.:)\-]?\s*`)
	numberLabel    = regexp.MustCompile(`^\s*\d+\s*[.)]\s+`)
	inlineOption   = regexp.MustCompile(`(?:^|\s)\(?([A-Ha-h])\)\s*`)
	lineOption     = regexp.MustCompile(`(?m)^[ \t]*([A-H])[.:]\s+`)
	optionLine     = regexp.MustCompile(`^\s*\(?[A-Ha-h][).:]\s+`)
	letterAnswer   = regexp.MustCompile(`^\(?([A-Ha-h])(?:[).:]\s*|$)(.*)$`)
	bareLetter     = regexp.MustCompile(`^([A-H])\s+(.*)$`)
	trueFalseCue   = regexp.MustCompile(`(?i)\btrue\s*(?:/|or)\s*false\b|\(\s*t\s*/\s*f\s*\)|\bT/F\b`)
	enumerationCue = regexp.MustCompile(`(?i)\benumerat`)
	trueFalseToken = regexp.MustCompile(`(?i)\b(true|false)\b`)
)

type marker struct {
	letter byte
	start  int
	end    int
}

type parsed struct {
	rec         question.Record
	answerFound bool
}

// ExtractBlock parses one question block. It returns false when the block has
// no option or answer structure at all.
func ExtractBlock(b Block) (question.Record, bool) {
	p, ok := parseBlock(b.Text)
	return p.rec, ok
}

// Numbered is a parsed record with the ordinal of the block it came from.
type Numbered struct {
	Number int
	Record question.Record
}

// Extract segments text and parses every block. An answer key section at the
// end of the text fills in blocks that carry no answer of their own.
func Extract(text string) []question.Record {
	numbered := ExtractNumbered(text)
	out := make([]question.Record, 0, len(numbered))
	for _, n := range numbered {
		out = append(out, n.Record)
	}
	return out
}

func ExtractNumbered(text string) []Numbered {
	body, _ := SplitAnswerKey(text)
	key := ParseAnswerKey(text)
	out := make([]Numbered, 0, 8)
	for _, b := range Segment(body) {
		p, ok := parseBlock(b.Text)
		if !ok {
			continue
		}
		if !p.answerFound && !p.rec.HasEmbeddedAnswer && b.Number > 0 {
			if ans, found := key[b.Number]; found {
				applyAnswer(&p.rec, ans)
			}
		}
		out = append(out, Numbered{Number: b.Number, Record: p.rec})
	}
	return out
}

// HasPlaceholderOptions reports a multiple choice record whose options are
// generic stand-ins.
func HasPlaceholderOptions(r question.Record) bool {
	return r.Type == question.TypeMultipleChoice && question.IsGenericOptions(r.Options)
}

func isOptionLine(line string) bool {
	return optionLine.MatchString(line)
}

func parseBlock(text string) (parsed, bool) {
	text = strings.TrimSpace(text)
	var embedded string
	if m := embeddedLabel.FindStringSubmatch(text); m != nil {
		embedded = m[1]
		text = text[len(m[0]):]
	}
	text = questionLabel.ReplaceAllString(text, "")
	text = numberLabel.ReplaceAllString(text, "")

	answerAt, answerText := len(text), ""
	if loc := answerMarker.FindStringIndex(text); loc != nil {
		answerAt = loc[0]
		line := text[loc[1]:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		answerText = strings.TrimSpace(line)
	}
	head := text[:answerAt]
	markers := optionSequence(head)

	stemEnd := answerAt
	if len(markers) > 0 {
		stemEnd = markers[0].start
	}
	stem := util.NormalizeWhitespace(head[:stemEnd])
	options := make([]string, 0, len(markers))
	for i, m := range markers {
		end := len(head)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		options = append(options, util.NormalizeWhitespace(head[m.end:end]))
	}

	hasAnswer := answerText != ""
	qType := detectType(text, options)
	if len(options) == 0 && !hasAnswer && qType != question.TypeTrueFalse {
		return parsed{}, false
	}
	if stem == "" {
		return parsed{}, false
	}

	rec := question.Record{Source: question.SourcePattern}
	rec.Text = stem
	rec.Type = qType
	rec.Options = options

	switch qType {
	case question.TypeTrueFalse:
		rec.Options = question.TrueFalseOptions()
		v, ok := trueFalseAnswer(answerText)
		rec.CorrectAnswer = v
		rec.NeedsAIEnhancement = !ok
	case question.TypeEnumeration:
		rec.Options = []string{}
		rec.CorrectAnswer = strings.ToUpper(util.NormalizeWhitespace(answerText))
	default:
		if hasAnswer {
			applyAnswer(&rec, answerText)
		}
	}

	// The embedded letter wins over an Answer: line.
	if embedded != "" && qType == question.TypeMultipleChoice {
		if idx := question.LetterIndex(embedded); idx >= 0 && idx < len(options) {
			rec.CorrectAnswer = options[idx]
			rec.HasEmbeddedAnswer = true
			rec.EmbeddedAnswerLetter = embedded
		}
	}
	return parsed{rec: rec, answerFound: hasAnswer || rec.HasEmbeddedAnswer}, true
}

// optionSequence returns the option markers of head in order A, B, C...
// Markers that break the sequence are treated as stem or option text.
func optionSequence(head string) []marker {
	all := make([]marker, 0, 8)
	for _, loc := range inlineOption.FindAllStringSubmatchIndex(head, -1) {
		all = append(all, marker{letter: upper(head[loc[2]]), start: loc[2], end: loc[1]})
	}
	for _, loc := range lineOption.FindAllStringSubmatchIndex(head, -1) {
		all = append(all, marker{letter: head[loc[2]], start: loc[2], end: loc[1]})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].start < all[j].start })

	// "(A)" starts one byte before the letter.
	for i := range all {
		if all[i].start > 0 && head[all[i].start-1] == '(' {
			all[i].start--
		}
	}

	out := make([]marker, 0, len(all))
	next := byte('A')
	for _, m := range all {
		if m.letter != next {
			continue
		}
		if len(out) > 0 && m.start < out[len(out)-1].end {
			continue
		}
		out = append(out, m)
		next++
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

func detectType(text string, options []string) question.Type {
	if trueFalseCue.MatchString(text) {
		return question.TypeTrueFalse
	}
	if len(options) == 2 && strings.EqualFold(options[0], "true") && strings.EqualFold(options[1], "false") {
		return question.TypeTrueFalse
	}
	if enumerationCue.MatchString(text) {
		return question.TypeEnumeration
	}
	return question.TypeMultipleChoice
}

// applyAnswer resolves an Answer: value against the options. A letter followed
// by literal text uses the text; a bare letter picks the option at its index.
func applyAnswer(rec *question.Record, ans string) {
	ans = strings.TrimSpace(ans)
	if ans == "" {
		return
	}
	if rec.Type == question.TypeTrueFalse {
		v, ok := trueFalseAnswer(ans)
		rec.CorrectAnswer = v
		rec.NeedsAIEnhancement = !ok
		return
	}
	letter, literal := splitLetterAnswer(ans)
	switch {
	case literal != "":
		rec.CorrectAnswer = literal
	case letter != "":
		if idx := question.LetterIndex(letter); idx >= 0 && idx < len(rec.Options) {
			rec.CorrectAnswer = rec.Options[idx]
		} else {
			rec.CorrectAnswer = letter
		}
	default:
		rec.CorrectAnswer = ans
	}
}

func splitLetterAnswer(ans string) (letter, literal string) {
	if m := letterAnswer.FindStringSubmatch(ans); m != nil {
		return strings.ToUpper(m[1]), strings.TrimSpace(m[2])
	}
	if m := bareLetter.FindStringSubmatch(ans); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", strings.TrimSpace(ans)
}

// trueFalseAnswer prefers an explicit true/false token, then a T/A or F/B
// letter, and defaults to "true".
func trueFalseAnswer(ans string) (string, bool) {
	if m := trueFalseToken.FindStringSubmatch(ans); m != nil {
		return strings.ToLower(m[1]), true
	}
	letter, _ := splitLetterAnswer(ans)
	if letter == "" && len(strings.TrimSpace(ans)) == 1 {
		letter = strings.ToUpper(strings.TrimSpace(ans))
	}
	switch letter {
	case "A", "T":
		return "true", true
	case "B", "F":
		return "false", true
	}
	return question.NormalizeTrueFalse(ans)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
