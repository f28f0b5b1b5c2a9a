// Package pattern splits exam text into question blocks and parses each block
// with deterministic heuristics. Nothing here touches the network.
package pattern

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"quizflow/internal/ladder"
)

// Block is a span of text believed to hold one question. Number is the
// ordinal found in its label, 0 when there was none.
type Block struct {
	Number int
	Text   string
}

var (
	errTooFewBlocks = errors.New("segmentation produced fewer than two blocks")

	questionMarker = regexp.MustCompile(`(?m)(?:^|\s)((?:[A-H]\d+[.)]\s*)?(?:Question|QUESTION)\s+(\d+)\s*[.:)\-])`)
	numberedMarker = regexp.MustCompile(`(?m)^[ \t]*((?:[A-H])?(\d+)[.)])\s+`)
	answerMarker   = regexp.MustCompile(`(?i)\b(?:correct\s+)?(?:answer|ans)\s*[:\-]`)
	questionLine   = regexp.MustCompile(`^\s*(?:(?:Q|Question)\s*\d*\s*[.:)]|[A-H]?\d+[.)]\s)|\?\s*$`)
	leadingOrdinal = regexp.MustCompile(`^\s*(?:(?:Question|QUESTION|Q)\s*|[A-H])?(\d+)\s*[.:)\-]`)
)

type segmenter struct {
	name string
	fn   func(string) []Block
}

var segmenters = []segmenter{
	{"question_markers", byQuestionMarkers},
	{"numbered_markers", byNumberedMarkers},
	{"answer_markers", byAnswerMarkers},
	{"question_lines", byQuestionLines},
}

// Segment splits text with the first strategy that yields more than one
// block. Text no strategy can split comes back as a single block.
func Segment(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	steps := make([]ladder.Step[[]Block], 0, len(segmenters))
	for _, s := range segmenters {
		s := s
		steps = append(steps, ladder.Step[[]Block]{
			Name: s.name,
			Run: func(context.Context) ([]Block, error) {
				blocks := s.fn(text)
				if len(blocks) < 2 {
					return nil, errTooFewBlocks
				}
				return blocks, nil
			},
		})
	}
	blocks, _, err := ladder.First(context.Background(), steps, nil)
	if err != nil {
		return []Block{{Number: leadingNumber(text), Text: text}}
	}
	return blocks
}

func byQuestionMarkers(text string) []Block {
	return splitAtMarkers(text, questionMarker.FindAllStringSubmatchIndex(text, -1))
}

func byNumberedMarkers(text string) []Block {
	return splitAtMarkers(text, numberedMarker.FindAllStringSubmatchIndex(text, -1))
}

// splitAtMarkers cuts text at each match of submatch 1; submatch 2 is the ordinal.
func splitAtMarkers(text string, locs [][]int) []Block {
	if len(locs) == 0 {
		return nil
	}
	out := make([]Block, 0, len(locs))
	for i, loc := range locs {
		start := loc[2]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][2]
		}
		body := strings.TrimSpace(text[start:end])
		if body == "" {
			continue
		}
		n, _ := strconv.Atoi(text[loc[4]:loc[5]])
		out = append(out, Block{Number: n, Text: body})
	}
	return out
}

// byAnswerMarkers reads "Answer:" lines backward: each one closes the block
// that precedes it.
func byAnswerMarkers(text string) []Block {
	locs := answerMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Block, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] < prev {
			continue
		}
		end := strings.IndexByte(text[loc[1]:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += loc[1]
		}
		if body := strings.TrimSpace(text[prev:end]); body != "" {
			out = append(out, Block{Number: leadingNumber(body), Text: body})
		}
		prev = end
	}
	if rest := strings.TrimSpace(text[prev:]); rest != "" {
		out = append(out, Block{Number: leadingNumber(rest), Text: rest})
	}
	return out
}

func byQuestionLines(text string) []Block {
	var (
		out []Block
		cur []string
	)
	flush := func() {
		if body := strings.TrimSpace(strings.Join(cur, "\n")); body != "" {
			out = append(out, Block{Number: leadingNumber(body), Text: body})
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if questionLine.MatchString(line) && !isOptionLine(line) && len(cur) > 0 {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

func leadingNumber(s string) int {
	m := leadingOrdinal.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
