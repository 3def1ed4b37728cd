// Package transcript turns the raw lines of a bracketed-timestamp chat export
// into structured messages.
package transcript

import (
	"errors"
	"time"
)

// ErrNoFormat is returned when no candidate layout parses every sample.
var ErrNoFormat = errors.New("no timestamp format matches all samples")

// DateFormat is one of the supported timestamp layouts.
type DateFormat struct {
	// Name is the strptime spelling, used in logs and the archive.
	Name   string
	Layout string
}

// Parse parses a timestamp with this format.
func (f DateFormat) Parse(s string) (time.Time, error) {
	return time.Parse(f.Layout, s)
}

func (f DateFormat) String() string {
	return f.Name
}

// Candidates lists the supported layouts in priority order. Day, month and
// hour accept one or two digits.
var Candidates = []DateFormat{
	{Name: "%d/%m/%Y, %H:%M:%S", Layout: "2/1/2006, 15:04:05"},
	{Name: "%m/%d/%Y, %H:%M:%S", Layout: "1/2/2006, 15:04:05"},
	{Name: "%Y/%m/%d, %H:%M:%S", Layout: "2006/1/2, 15:04:05"},
	{Name: "%d/%m/%Y, %H:%M", Layout: "2/1/2006, 15:04"},
	{Name: "%m/%d/%Y, %H:%M", Layout: "1/2/2006, 15:04"},
	{Name: "%Y/%m/%d, %H:%M", Layout: "2006/1/2, 15:04"},
}

// DetectFormat returns the first candidate that parses every sample.
func DetectFormat(samples []string) (DateFormat, error) {
	if len(samples) == 0 {
		return DateFormat{}, ErrNoFormat
	}

	for _, f := range Candidates {
		if parsesAll(f, samples) {
			return f, nil
		}
	}

	return DateFormat{}, ErrNoFormat
}

// FormatByName looks up a candidate by its strptime spelling.
func FormatByName(name string) (DateFormat, bool) {
	for _, f := range Candidates {
		if f.Name == name {
			return f, true
		}
	}
	return DateFormat{}, false
}

func parsesAll(f DateFormat, samples []string) bool {
	for _, s := range samples {
		if _, err := f.Parse(s); err != nil {
			return false
		}
	}
	return true
}
