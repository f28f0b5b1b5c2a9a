package util

import "testing"

func TestSanitizeTextRemovesNulAndControls(t *testing.T) {
	in := "ab\x00cd\x01\x02\n\txy"
	out := SanitizeText(in)
	if out != "abcd\n\txy" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

func TestSanitizeTextNormalizesCRLF(t *testing.T) {
	out := SanitizeText("line one\r\nline two\r\n")
	if out != "line one\nline two" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

func TestSanitizeTextFoldsLigatures(t *testing.T) {
	out := SanitizeText("The ﬁnal ofﬁce")
	if out != "The final office" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}
