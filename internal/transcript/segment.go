package transcript

import "strings"

// Block is the line range [Start, End) of one message.
type Block struct {
	Start int
	End   int
	Lines []string
}

// First returns the message-start line.
func (b Block) First() string {
	if len(b.Lines) == 0 {
		return ""
	}
	return b.Lines[0]
}

// Continuation returns the lines after the message-start line.
func (b Block) Continuation() []string {
	if len(b.Lines) < 2 {
		return nil
	}
	return b.Lines[1:]
}

// IsMessageStart reports whether line opens a new message: after trimming and
// removing the left-to-right mark it begins with '[' and has a later ']'.
func IsMessageStart(line string) bool {
	s := normalizeBoundary(line)
	return strings.HasPrefix(s, "[") && strings.Contains(s[1:], "]")
}

// StartLines returns the indices of all message-start lines.
func StartLines(lines []string) []int {
	var starts []int
	for i, line := range lines {
		if IsMessageStart(line) {
			starts = append(starts, i)
		}
	}
	return starts
}

// Segment splits lines into message blocks. Lines before the first message
// start belong to no block.
func Segment(lines []string) []Block {
	starts := StartLines(lines)
	if len(starts) == 0 {
		return nil
	}
	starts = append(starts, len(lines))

	blocks := make([]Block, 0, len(starts)-1)
	for i := 0; i < len(starts)-1; i++ {
		blocks = append(blocks, Block{
			Start: starts[i],
			End:   starts[i+1],
			Lines: lines[starts[i]:starts[i+1]],
		})
	}
	return blocks
}

// ExtractTimestamps collects the bracketed timestamp of every message start,
// normalized the same way the parser sees it.
func ExtractTimestamps(lines []string) []string {
	var samples []string
	for _, line := range lines {
		if !IsMessageStart(line) {
			continue
		}
		if m := headerPattern.FindStringSubmatch(NormalizeLine(line)); m != nil {
			samples = append(samples, m[headerPattern.SubexpIndex("timestamp")])
		}
	}
	return samples
}
