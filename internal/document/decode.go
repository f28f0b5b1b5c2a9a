package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"quizflow/internal/util"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

var pdfMagic = []byte("%PDF-")

// Document is decoded raw text plus the content hash of the original bytes.
type Document struct {
	Name   string
	Text   string
	SHA256 string
}

func DecodeFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// Decode turns PDF or UTF-8 text bytes into sanitized text. It returns
// util.ErrNoExtractableText when nothing readable remains.
func Decode(name string, data []byte) (Document, error) {
	doc := Document{Name: name, SHA256: util.SHA256Hex(data)}
	var text string
	switch {
	case IsPDF(name, data):
		t, err := pdfText(data)
		if err != nil {
			return doc, err
		}
		text = t
	case utf8.Valid(data):
		text = string(data)
	default:
		return doc, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	doc.Text = util.SanitizeText(text)
	if doc.Text == "" {
		return doc, util.ErrNoExtractableText
	}
	return doc, nil
}

func IsPDF(name string, data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic) || strings.EqualFold(filepath.Ext(name), ".pdf")
}

func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("extract pdf text: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
