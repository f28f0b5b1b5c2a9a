package document

import (
	"os"
	"path/filepath"
	"testing"

	"quizflow/internal/util"

	"github.com/stretchr/testify/require"
)

func TestDecodePlainText(t *testing.T) {
	doc, err := Decode("quiz.txt", []byte("Question 1. What is 2+2?\r\nA) 3\r\nB) 4\x00\n"))
	require.NoError(t, err)
	require.Equal(t, "Question 1. What is 2+2?\nA) 3\nB) 4", doc.Text)
	require.Len(t, doc.SHA256, 64)
}

func TestDecodeEmptyHasNoText(t *testing.T) {
	_, err := Decode("blank.txt", []byte("  \n\t "))
	require.ErrorIs(t, err, util.ErrNoExtractableText)
}

func TestDecodeRejectsBinary(t *testing.T) {
	_, err := Decode("blob.bin", []byte{0xff, 0xfe, 0x00, 0xc3})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeBrokenPDF(t *testing.T) {
	_, err := Decode("broken.pdf", []byte("%PDF-1.4 not really a pdf"))
	require.Error(t, err)
	require.NotErrorIs(t, err, util.ErrNoExtractableText)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("The sky is blue. True or False?"), 0o644))
	doc, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, "in.txt", doc.Name)
	require.Equal(t, "The sky is blue. True or False?", doc.Text)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
