package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// NormalizeHandle trims a user handle, drops a leading "@" and lower-cases it
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.ToLower(strings.TrimSpace(handle))
}

// NormalizeHandles normalises every handle, dropping empty and repeated ones.
// The first occurrence wins, so the input order is preserved.
func NormalizeHandles(handles []string) []string {
	seen := make(map[string]struct{}, len(handles))
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		h = NormalizeHandle(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// FoldName returns the comparison key for a category name: trimmed and case folded.
// Accents are kept, matching a strength 2 collation.
func FoldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// SameName reports whether two category names collide
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}
