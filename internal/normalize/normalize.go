// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize implements the canonical string normalization used
// before any title or venue comparison: casefold, strip everything but
// letters, digits, and whitespace, then collapse runs of whitespace to a
// single space.
package normalize

import (
	"strings"
	"unicode"
)

// String normalizes s for comparison. It is idempotent: normalizing an
// already-normalized string returns it unchanged.
func String(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastWasSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastWasSpace = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		default:
			// Drop punctuation and symbols entirely.
		}
	}

	return strings.TrimSpace(b.String())
}
