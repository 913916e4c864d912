package utils

import "strings"

// TrimOrEmpty trims whitespace, mapping all-space input to "".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses inner whitespace runs to single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
