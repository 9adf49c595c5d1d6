// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identify recognizes and extracts external identifiers (arXiv
// IDs, DOIs, patent numbers) from strings and URLs, and scans free text for
// a plausible publication year.
package identify

import (
	"regexp"
	"strconv"
)

var (
	// arxivIDPattern matches both the modern "YYMM.NNNNN" form (optionally
	// versioned) and the old "category/NNNNNNN" form.
	arxivIDPattern = regexp.MustCompile(`^(\d{4}\.\d{4,5}(v\d+)?|[a-z-]+(\.[A-Z]{2})?/\d{7})$`)

	arxivURLPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/([^\s?#]+)`)
	doiURLPattern   = regexp.MustCompile(`doi\.org/(.+)$`)
	patentIDPattern = regexp.MustCompile(`^US\d{6,11}[A-Z]?\d{0,2}$`)
	yearPattern     = regexp.MustCompile(`\d{4}`)
)

// IsArxivID reports whether s looks like a valid arXiv identifier.
func IsArxivID(s string) bool {
	return arxivIDPattern.MatchString(s)
}

// ArxivIDFromURL extracts the arXiv ID from an arxiv.org abs/pdf URL,
// stripping a trailing ".pdf" suffix if present. Returns "" if no ID is
// found.
func ArxivIDFromURL(u string) string {
	m := arxivURLPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	id := m[1]
	if len(id) > 4 && id[len(id)-4:] == ".pdf" {
		id = id[:len(id)-4]
	}
	return id
}

// DOIFromURL extracts the DOI from a doi.org URL. Returns "" if no DOI is
// found.
func DOIFromURL(u string) string {
	m := doiURLPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsPatentID reports whether s looks like a US patent publication number.
func IsPatentID(s string) bool {
	return patentIDPattern.MatchString(s)
}

// YearFromString scans s for the first run of 4 consecutive digits whose
// value falls within [1900, 2099] and returns it. The second return value
// is false if no such run is found.
func YearFromString(s string) (int, bool) {
	for _, m := range yearPattern.FindAllString(s, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y >= 1900 && y <= 2099 {
			return y, true
		}
	}
	return 0, false
}
