package aiextract

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"quizflow/internal/ladder"
	"quizflow/internal/question"
)

var (
	ErrDecode      = errors.New("response is not valid question JSON")
	ErrEmptyResult = errors.New("response decoded to zero questions")

	arraySpan  = regexp.MustCompile(`(?s)\[.*\]`)
	objectSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

type decodeStrategy struct {
	name string
	fn   func(string) (any, error)
}

var decodeStrategies = []decodeStrategy{
	{"direct", decodeDirect},
	{"array_span", func(s string) (any, error) { return decodeSpan(s, arraySpan) }},
	{"object_span", func(s string) (any, error) { return decodeSpan(s, objectSpan) }},
	{"balanced_scan", decodeBalanced},
}

// Decode turns a model response into question objects. It tries a direct
// parse, then the widest [...] span, then the widest {...} span, then a scan
// for balanced brackets. ErrEmptyResult means the JSON was valid but held no
// objects.
func Decode(raw string) ([]map[string]any, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	entries := question.Entries(v)
	if len(entries) == 0 {
		return nil, ErrEmptyResult
	}
	return entries, nil
}

// DecodeObject returns the first JSON object in a response.
func DecodeObject(raw string) (map[string]any, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m, nil
			}
		}
	}
	return nil, ErrEmptyResult
}

func decodeValue(raw string) (any, error) {
	s := stripCodeFence(strings.TrimSpace(raw))
	if s == "" {
		return nil, ErrDecode
	}
	steps := make([]ladder.Step[any], 0, len(decodeStrategies))
	for _, d := range decodeStrategies {
		d := d
		steps = append(steps, ladder.Step[any]{
			Name: d.name,
			Run:  func(context.Context) (any, error) { return d.fn(s) },
		})
	}
	v, _, err := ladder.First(context.Background(), steps, nil)
	if err != nil {
		return nil, ErrDecode
	}
	return v, nil
}

func decodeDirect(s string) (any, error) {
	first, last := s[0], s[len(s)-1]
	if !((first == '[' && last == ']') || (first == '{' && last == '}')) {
		return nil, ErrDecode
	}
	return unmarshal(s)
}

func decodeSpan(s string, re *regexp.Regexp) (any, error) {
	span := re.FindString(s)
	if span == "" {
		return nil, ErrDecode
	}
	return unmarshal(span)
}

// decodeBalanced walks every opening bracket and parses the smallest balanced
// span that starts there. Stray objects in prose are collected into an array.
func decodeBalanced(s string) (any, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		if end := balancedEnd(s, i); end > 0 {
			if v, err := unmarshal(s[i:end]); err == nil {
				if len(question.Entries(v)) > 0 {
					return v, nil
				}
			}
		}
	}
	objects := make([]any, 0, 4)
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := balancedEnd(s, i)
		if end < 0 {
			continue
		}
		if v, err := unmarshal(s[i:end]); err == nil {
			objects = append(objects, v)
			i = end - 1
		}
	}
	if len(objects) == 0 {
		return nil, ErrDecode
	}
	return objects, nil
}

// balancedEnd returns the index just past the bracket closing s[start], or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func unmarshal(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func stripCodeFence(s string) string {
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return s
}
