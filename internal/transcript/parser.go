package transcript

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// [<timestamp>] <content>
	headerPattern = regexp.MustCompile(`^\[(?P<timestamp>[^\]]*)\] (?P<content>.*)$`)

	// <sender>: <message>, split on the first ": ".
	senderPattern = regexp.MustCompile(`^(?P<sender>.*?): (?P<message>.*)$`)
)

// UnknownSender is the sender carried forward before any message parsed.
const UnknownSender = "Unknown"

// Message is the structured form of one block. Timestamp is nil when the
// block could not be parsed; Sender then holds the carried-forward sender.
type Message struct {
	Timestamp        *time.Time
	TimestampDisplay string
	Sender           string
	Body             string
	Line             int
}

// Valid reports whether the message can be rendered.
func (m Message) Valid() bool {
	return m.Timestamp != nil && m.Sender != ""
}

// Parser extracts messages from blocks using one detected DateFormat.
type Parser struct {
	format     DateFormat
	selfMarker string
	selfName   string
}

// NewParser creates a parser. selfMarker is the prefix the exporter uses for
// messages written by the transcript owner; those are attributed to selfName.
func NewParser(format DateFormat, selfMarker, selfName string) *Parser {
	return &Parser{
		format:     format,
		selfMarker: selfMarker,
		selfName:   selfName,
	}
}

// Parse converts one block. lastSender is used when the block is malformed.
func (p *Parser) Parse(block Block, lastSender string) Message {
	first := NormalizeLine(block.First())
	rest := joinContinuation(block.Continuation())

	if msg, ok := p.parseHeader(first, rest); ok {
		msg.Line = block.Start + 1
		return msg
	}

	body := first
	if rest != "" {
		body = first + "\n" + rest
	}
	return Message{
		Sender: strings.TrimSpace(lastSender),
		Body:   strings.TrimSpace(body),
		Line:   block.Start + 1,
	}
}

func (p *Parser) parseHeader(first, rest string) (Message, bool) {
	header := headerPattern.FindStringSubmatch(first)
	if header == nil {
		return Message{}, false
	}
	tsStr := header[headerPattern.SubexpIndex("timestamp")]
	content := header[headerPattern.SubexpIndex("content")]

	ts, err := p.format.Parse(tsStr)
	if err != nil {
		return Message{}, false
	}

	var sender, body string
	if strings.HasPrefix(content, p.selfMarker) {
		sender = p.selfName
		body = dropOneRune(content[len(p.selfMarker):])
	} else {
		m := senderPattern.FindStringSubmatch(content)
		if m == nil {
			return Message{}, false
		}
		sender = m[senderPattern.SubexpIndex("sender")]
		body = m[senderPattern.SubexpIndex("message")]
	}

	if rest != "" {
		body = body + "\n" + rest
	}

	msg := Message{
		Timestamp:        &ts,
		TimestampDisplay: tsStr,
		Sender:           strings.TrimSpace(sender),
		Body:             strings.TrimSpace(body),
	}
	if msg.Sender == "" || msg.Body == "" {
		return Message{}, false
	}
	return msg, true
}

// joinContinuation strips each continuation line and joins them with newlines.
func joinContinuation(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	stripped := make([]string, len(lines))
	for i, l := range lines {
		stripped[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(stripped, "\n"))
}

// dropOneRune skips the separator the exporter writes after the self marker.
func dropOneRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}
