package question

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapQuestionType(t *testing.T) {
	cases := map[string]Type{
		"multipleChoice":      TypeMultipleChoice,
		"MCQ":                 TypeMultipleChoice,
		"Multiple Choice":     TypeMultipleChoice,
		"true_false":          TypeTrueFalse,
		"TF":                  TypeTrueFalse,
		"True or False":       TypeTrueFalse,
		"enumeration":         TypeEnumeration,
		"short answer":        TypeEnumeration,
		"list":                TypeEnumeration,
		"essay":               TypeEssay,
		"open-ended":          TypeEssay,
		"constructed":         TypeEssay,
		"free response":       TypeEssay,
		"":                    TypeMultipleChoice,
		"something unrelated": TypeMultipleChoice,
		"??!!":                TypeMultipleChoice,
	}
	for in, want := range cases {
		require.Equal(t, want, MapQuestionType(in), "label %q", in)
	}
}

func TestMapQuestionTypeIsTotal(t *testing.T) {
	valid := map[Type]bool{TypeMultipleChoice: true, TypeTrueFalse: true, TypeEnumeration: true, TypeEssay: true}
	for _, in := range []string{"\x00", "日本語", "   ", "essay?true", "choice-list", "zzz"} {
		require.True(t, valid[MapQuestionType(in)], "label %q", in)
	}
}

func TestNormalizeTrueFalse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"T", "true", true},
		{"False", "false", true},
		{"B)", "false", true},
		{"The answer is true", "true", true},
		{"maybe", "true", false},
	}
	for _, c := range cases {
		got, ok := NormalizeTrueFalse(c.in)
		require.Equal(t, c.want, got, c.in)
		require.Equal(t, c.ok, ok, c.in)
	}
}
