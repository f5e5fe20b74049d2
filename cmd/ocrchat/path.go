package main

import (
	"os"
	"path/filepath"
	"strings"
)

// normalizePath cleans a path typed or dragged into the terminal: surrounding spaces and
// quotes go, shell-escaped spaces are unescaped, ~ expands to the home directory and the
// result is absolute.
func normalizePath(p string) (string, error) {
	p = strings.Trim(strings.TrimSpace(p), `"'`)
	if p == "" {
		return "", nil
	}
	p = strings.ReplaceAll(p, `\ `, " ")

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
