package util

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// NonEmptyFile returns the size of path, or an error if it is missing,
// not a regular file, or empty.
func NonEmptyFile(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: not a regular file", path)
	}
	if fi.Size() == 0 {
		return 0, fmt.Errorf("%s: empty file", path)
	}
	return fi.Size(), nil
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeTitle replaces every rune outside [A-Za-z0-9] with a hyphen.
// Runs are kept as runs: "a: b" becomes "a--b".
func SanitizeTitle(s string) string {
	return nonAlnum.ReplaceAllString(s, "-")
}
