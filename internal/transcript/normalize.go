package transcript

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	leftToRightMark    = '\u200e'
	narrowNoBreakSpace = '\u202f'
)

var (
	stripLRM = runes.Remove(runes.Predicate(func(r rune) bool {
		return r == leftToRightMark
	}))

	stripExportMarks = runes.Remove(runes.Predicate(func(r rune) bool {
		return r == leftToRightMark || r == narrowNoBreakSpace
	}))
)

// NormalizeLine trims a line and removes the invisible marks the exporter
// sprinkles around timestamps and attachment placeholders.
func NormalizeLine(line string) string {
	s, _, _ := transform.String(stripExportMarks, line)
	return strings.TrimSpace(s)
}

// normalizeBoundary is the weaker normalization used to find message starts.
func normalizeBoundary(line string) string {
	s, _, _ := transform.String(stripLRM, line)
	return strings.TrimSpace(s)
}
