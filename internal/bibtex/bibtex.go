// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex scans .bib files for the handful of fields the validation
// pipeline needs (title, authors, year, venue, doi, arxiv id, url). It is
// not a general BibTeX parser: comments, string macros, and crossref
// inheritance are not supported.
package bibtex

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/bibval/internal/identify"
	"github.com/pdiddy/bibval/pkg/types"
)

// ParseFile reads path and parses it as a sequence of .bib entries.
func ParseFile(path string) ([]types.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bib file: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses content as a sequence of .bib entries.
func ParseString(content string) ([]types.Entry, error) {
	var entries []types.Entry

	s := scanner{src: content}
	for {
		s.skipToEntryStart()
		if s.atEnd() {
			break
		}

		entryType, key, fields, err := s.readEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, buildEntry(entryType, key, fields))
	}

	return entries, nil
}

func buildEntry(entryType, key string, fields map[string]string) types.Entry {
	e := types.Entry{
		Key:       key,
		EntryType: strings.ToLower(entryType),
		Title:     fields["title"],
		Venue:     firstNonEmpty(fields["journal"], fields["booktitle"]),
		DOI:       fields["doi"],
		URL:       fields["url"],
	}

	if authors := fields["author"]; authors != "" {
		e.Authors = splitAuthors(authors)
	}

	if y := fields["year"]; y != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(y)); err == nil {
			e.Year = n
		}
	}
	if e.Year == 0 {
		if y, ok := identify.YearFromString(fields["date"]); ok {
			e.Year = y
		}
	}

	if eprint := fields["eprint"]; eprint != "" && identify.IsArxivID(eprint) {
		e.ArxivID = eprint
	}
	if e.ArxivID == "" && e.URL != "" {
		if id := identify.ArxivIDFromURL(e.URL); id != "" {
			e.ArxivID = id
		}
	}
	if e.DOI == "" && e.URL != "" {
		if doi := identify.DOIFromURL(e.URL); doi != "" {
			e.DOI = doi
		}
	}

	return e
}

func splitAuthors(raw string) []string {
	parts := strings.Split(raw, " and ")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// scanner walks a .bib document one entry at a time.
type scanner struct {
	src string
	pos int
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) skipToEntryStart() {
	idx := strings.IndexByte(s.src[s.pos:], '@')
	if idx < 0 {
		s.pos = len(s.src)
		return
	}
	s.pos += idx
}

// readEntry parses one "@type{key, field = value, ...}" block starting at
// the current '@'.
func (s *scanner) readEntry() (entryType, key string, fields map[string]string, err error) {
	s.pos++ // consume '@'

	brace := strings.IndexByte(s.src[s.pos:], '{')
	if brace < 0 {
		return "", "", nil, fmt.Errorf("bibtex: malformed entry, no opening brace")
	}
	entryType = strings.TrimSpace(s.src[s.pos : s.pos+brace])
	s.pos += brace + 1

	comma := strings.IndexByte(s.src[s.pos:], ',')
	brace = strings.IndexByte(s.src[s.pos:], '}')
	if comma < 0 || (brace >= 0 && brace < comma) {
		// No fields, just a bare key.
		end := brace
		if end < 0 {
			end = len(s.src) - s.pos
		}
		key = strings.TrimSpace(s.src[s.pos : s.pos+end])
		s.pos += end + 1
		return entryType, key, map[string]string{}, nil
	}
	key = strings.TrimSpace(s.src[s.pos : s.pos+comma])
	s.pos += comma + 1

	fields = make(map[string]string)
	depth := 1
	for depth > 0 && !s.atEnd() {
		s.skipWhitespaceAndCommas()
		if s.atEnd() {
			break
		}
		if s.src[s.pos] == '}' {
			s.pos++
			depth--
			break
		}

		name, value, ok := s.readField()
		if !ok {
			break
		}
		fields[strings.ToLower(name)] = value
	}

	return entryType, key, fields, nil
}

func (s *scanner) skipWhitespaceAndCommas() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' {
			s.pos++
			continue
		}
		break
	}
}

// readField parses one "name = value" pair, where value is either a
// brace-delimited (possibly nested) chunk, a quoted string, or a bare
// token, and advances past the pair.
func (s *scanner) readField() (name, value string, ok bool) {
	eq := strings.IndexByte(s.src[s.pos:], '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(s.src[s.pos : s.pos+eq])
	s.pos += eq + 1

	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
	if s.atEnd() {
		return name, "", true
	}

	switch s.src[s.pos] {
	case '{':
		value = s.readBraced()
	case '"':
		value = s.readQuoted()
	default:
		value = s.readBareToken()
	}

	return name, collapseWhitespace(value), true
}

func (s *scanner) readBraced() string {
	start := s.pos + 1
	depth := 1
	i := start
	for i < len(s.src) && depth > 0 {
		switch s.src[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}
	value := s.src[start : i-1]
	s.pos = i
	return value
}

func (s *scanner) readQuoted() string {
	start := s.pos + 1
	i := start
	for i < len(s.src) && s.src[i] != '"' {
		i++
	}
	value := s.src[start:i]
	s.pos = i + 1
	return value
}

func (s *scanner) readBareToken() string {
	start := s.pos
	i := start
	for i < len(s.src) && s.src[i] != ',' && s.src[i] != '}' {
		i++
	}
	value := s.src[start:i]
	s.pos = i
	return value
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
