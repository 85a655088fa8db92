package service

import (
	"fmt"
	"strings"
)

// splitFilename divides name at its first dot into stem and extension.
// A name without a dot has an empty extension. Names with an empty stem or
// a trailing dot are rejected so every name maps to exactly one pair.
func splitFilename(name string) (stem, extension string, err error) {
	if name == "" || strings.ContainsAny(name, "/\\\x00") {
		return "", "", fmt.Errorf("%w: invalid filename %q", ErrInvalidInput, name)
	}
	stem, extension, hasDot := strings.Cut(name, ".")
	if stem == "" || (hasDot && extension == "") {
		return "", "", fmt.Errorf("%w: invalid filename %q", ErrInvalidInput, name)
	}
	return stem, extension, nil
}

func joinFilename(stem, extension string) string {
	if extension == "" {
		return stem
	}
	return stem + "." + extension
}
