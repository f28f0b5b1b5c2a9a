package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeJoin(t *testing.T) {
	root := filepath.Join("data", "out")
	cases := map[string]string{
		"quiz.pdf":         "quiz.pdf",
		"../../etc/passwd": "passwd",
		"a/b/run-1":        "run-1",
		"..":               "unnamed",
		"":                 "unnamed",
	}
	for in, want := range cases {
		require.Equal(t, filepath.Join(root, want), SafeJoin(root, in), in)
	}
}
