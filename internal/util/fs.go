package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins only the last element of name onto root, so run ids and
// uploaded filenames cannot escape it. Names with no usable element become
// "unnamed".
func SafeJoin(root, name string) string {
	base := filepath.Base(filepath.Clean(string(filepath.Separator) + name))
	if base == string(filepath.Separator) || base == "." || base == ".." {
		base = "unnamed"
	}
	return filepath.Join(root, base)
}
