// Package refine sanitizes question text and reconciles options and answers.
// It never calls the network.
package refine

import (
	"regexp"
	"strings"

	"quizflow/internal/logger"
	"quizflow/internal/question"
	"quizflow/internal/util"
)

var (
	optionLabel   = regexp.MustCompile(`^\(?[A-Ha-h][).:]\s+`)
	garbageAnswer = regexp.MustCompile(`(?i)^(?:n/?a|none|null|nil|undefined|unknown|answer|tbd|todo|\?+|-+|\.+|_+)$`)
)

type Refiner struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Refiner {
	return &Refiner{log: logger.OrNop(log)}
}

// Refine returns sanitized, reconciled copies of records, dropping the ones
// that stay incomplete. Records with an embedded answer keep CorrectAnswer.
func (r *Refiner) Refine(records []question.Record) []question.Record {
	out := make([]question.Record, 0, len(records))
	flagged, dropped := 0, 0
	for _, in := range records {
		rec := RefineRecord(in)
		if !Complete(rec) {
			dropped++
			r.log.Debug("dropping incomplete record", "text", rec.Text, "type", rec.Type)
			continue
		}
		if rec.NeedsAIEnhancement {
			flagged++
		}
		out = append(out, rec)
	}
	r.log.Debug("refined records", "in", len(records), "out", len(out), "flagged", flagged, "dropped", dropped)
	return out
}

// RefineRecord applies sanitization and reconciliation to one record.
func RefineRecord(in question.Record) question.Record {
	rec := in.Clone()
	rec.Text = SanitizeQuestionText(rec.Text)
	switch rec.Type {
	case question.TypeTrueFalse:
		reconcileTrueFalse(&rec)
	case question.TypeEnumeration:
		reconcileEnumeration(&rec)
	case question.TypeEssay:
		rec.Options = []string{}
		rec.CorrectAnswer = ""
	default:
		rec.Type = question.TypeMultipleChoice
		reconcileMultipleChoice(&rec)
	}
	return rec
}

// SanitizeQuestionText repairs merged words, strips leaked inline options and
// appended rationale, and drops repeated sentences.
func SanitizeQuestionText(s string) string {
	s = util.SanitizeText(s)
	s = util.FixMergedWords(s)
	s = util.StripInlineOptions(s)
	s = util.CutAtQuestionEnd(s)
	return util.DedupSentences(s)
}

// Complete reports minimal completeness: non-empty text, and at least two
// options containing the answer for multiple choice.
func Complete(r question.Record) bool {
	if strings.TrimSpace(r.Text) == "" {
		return false
	}
	if r.Type != question.TypeMultipleChoice {
		return true
	}
	if len(r.Options) < 2 {
		return false
	}
	return hasOption(r.Options, r.CorrectAnswer)
}

func reconcileMultipleChoice(rec *question.Record) {
	cleaned := cleanOptions(rec.Options)
	if rec.HasEmbeddedAnswer {
		if hasOption(cleaned, rec.CorrectAnswer) {
			rec.Options = cleaned
		}
		return
	}
	rec.Options = cleaned
	if len(rec.Options) < 2 {
		rec.Options = question.GenericOptions()
		rec.NeedsAIEnhancement = true
	} else if question.IsGenericOptions(rec.Options) {
		rec.NeedsAIEnhancement = true
	}

	answer := strings.TrimSpace(rec.CorrectAnswer)
	if idx := question.LetterIndex(answer); idx >= 0 && idx < len(rec.Options) && !hasOptionFold(rec.Options, answer) {
		answer = rec.Options[idx]
	}
	answer = strings.TrimSpace(optionLabel.ReplaceAllString(answer, ""))

	for _, o := range rec.Options {
		if strings.EqualFold(o, answer) {
			rec.CorrectAnswer = o
			return
		}
	}
	if answer != "" {
		if o, ok := bestMatch(answer, rec.Options); ok {
			rec.CorrectAnswer = o
			return
		}
	}
	rec.CorrectAnswer = rec.Options[0]
	rec.NeedsAIEnhancement = true
}

func reconcileTrueFalse(rec *question.Record) {
	rec.Options = question.TrueFalseOptions()
	rec.HasEmbeddedAnswer = false
	v, ok := question.NormalizeTrueFalse(rec.CorrectAnswer)
	rec.CorrectAnswer = v
	if !ok {
		rec.NeedsAIEnhancement = true
	}
}

func reconcileEnumeration(rec *question.Record) {
	rec.Options = []string{}
	rec.HasEmbeddedAnswer = false
	answer := strings.ToUpper(util.FixMergedWords(rec.CorrectAnswer))
	if len([]rune(answer)) < 2 || garbageAnswer.MatchString(answer) || answer == question.AnswerRequired {
		rec.CorrectAnswer = question.AnswerRequired
		rec.NeedsAIEnhancement = true
		return
	}
	rec.CorrectAnswer = answer
}

func cleanOptions(opts []string) []string {
	out := make([]string, 0, len(opts))
	seen := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		o = util.NormalizeWhitespace(optionLabel.ReplaceAllString(strings.TrimSpace(o), ""))
		if o == "" {
			continue
		}
		key := strings.ToLower(o)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}

func hasOptionFold(opts []string, s string) bool {
	for _, o := range opts {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}

func hasOption(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}
