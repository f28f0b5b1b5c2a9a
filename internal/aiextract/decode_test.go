package aiextract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLadder(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"direct array", `[{"text":"What is 1+1?","type":"multipleChoice"}]`, 1},
		{"code fence", "```json\n[{\"text\":\"a?\"},{\"text\":\"b?\"}]\n```", 2},
		{"array in prose", `Sure! Here you go: [{"text":"x?"},{"text":"y?"},{"text":"z?"}] Hope it helps.`, 3},
		{"object envelope", `Result: {"questions":[{"text":"q?"}]}`, 1},
		{"two arrays in prose", `First [1, 2] then [{"text":"only this?"}] done`, 1},
		{"stray objects", `{"text":"one?"} and also {"text":"two?"} end`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.raw)
			require.NoError(t, err)
			require.Len(t, got, tc.want)
		})
	}
}

func TestDecodeEmptyAndGarbage(t *testing.T) {
	_, err := Decode("[]")
	require.ErrorIs(t, err, ErrEmptyResult)

	_, err = Decode("I could not find any questions, sorry.")
	require.ErrorIs(t, err, ErrDecode)

	_, err = Decode("")
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject("Answer: {\"isCorrect\": false, \"correctedAnswer\": \"Paris\"}")
	require.NoError(t, err)
	require.Equal(t, false, obj["isCorrect"])
	require.Equal(t, "Paris", obj["correctedAnswer"])

	_, err = DecodeObject("[]")
	require.ErrorIs(t, err, ErrEmptyResult)
}
