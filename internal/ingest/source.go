// Package ingest implements CSV ingestion: schema inference over arbitrary
// column layouts, row loading with per-row fault isolation, and best-effort
// semantic role detection.
package ingest

import (
	"bufio"
	"io"
)

// Source yields the lines of an input stream one at a time. Schema
// inference may push the first line back when it turns out to be data
// rather than a header, so the loader sees every data row exactly once.
type Source struct {
	scanner *bufio.Scanner
	pushed  []string
	lineNum int
}

// NewSource wraps a reader in a line source.
func NewSource(r io.Reader) *Source {
	scanner := bufio.NewScanner(r)
	// Bank exports occasionally carry very long memo fields.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Source{scanner: scanner}
}

// Next returns the next line and whether one was available.
func (s *Source) Next() (string, bool) {
	if n := len(s.pushed); n > 0 {
		line := s.pushed[n-1]
		s.pushed = s.pushed[:n-1]
		s.lineNum++
		return line, true
	}
	if s.scanner.Scan() {
		s.lineNum++
		return s.scanner.Text(), true
	}
	return "", false
}

// Unread pushes a line back so the next call to Next returns it again.
func (s *Source) Unread(line string) {
	s.pushed = append(s.pushed, line)
	s.lineNum--
}

// Line reports the number of the most recently returned line, 1-based.
func (s *Source) Line() int {
	return s.lineNum
}

// Err reports any underlying read error.
func (s *Source) Err() error {
	return s.scanner.Err()
}
