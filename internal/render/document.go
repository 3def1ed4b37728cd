package render

import (
	_ "embed"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/transcript"
)

// header is the page shell: inline CSS and the reserved summary script.
//
//go:embed assets/header.html
var header string

const footer = "</body></html>"

// DateLayout is how date separators are printed, e.g. "01 February 2023".
const DateLayout = "02 January 2006"

// Options configures a Document.
type Options struct {
	// MediaDir prefixes attachment paths in the output.
	MediaDir string
	// SelfName is the sender rendered on the right-hand side.
	SelfName string
}

// Document accumulates the HTML for one conversation. Messages must be
// added in chronological order.
type Document struct {
	opts       Options
	buf        strings.Builder
	lastDate   time.Time
	hasDate    bool
	lastSender string
	counter    int
	skipped    int
	messages   []models.Message
}

// NewDocument starts a document with the page shell written.
func NewDocument(opts Options) *Document {
	d := &Document{
		opts:       opts,
		lastSender: transcript.UnknownSender,
	}
	d.buf.WriteString(header)
	return d
}

// LastSender returns the sender of the most recently rendered message, used
// as carry-forward context for the parser.
func (d *Document) LastSender() string {
	return d.lastSender
}

// Add renders one parsed message. It reports false, and renders nothing,
// when the message has no timestamp or sender.
func (d *Document) Add(msg transcript.Message) bool {
	if !msg.Valid() {
		d.skipped++
		return false
	}

	class := models.SenderOther
	if msg.Sender == d.opts.SelfName {
		class = models.SenderMe
	}

	embed := Embed(msg.Body, d.opts.MediaDir, class)
	d.counter++

	ts := *msg.Timestamp
	if !d.hasDate || !sameDay(ts, d.lastDate) {
		fmt.Fprintf(&d.buf, `<div class="date">%s</div>`, ts.Format(DateLayout))
		d.lastDate = ts
		d.hasDate = true
	}

	align := "left"
	if class == models.SenderMe {
		align = "right"
	}

	fmt.Fprintf(&d.buf, `
<div class="%s">
    <div class="bubble %s">
        <!-- <input type="checkbox" id="msg_%d" name="selected_messages" value="msg_%d">
        <label for="msg_%d"> -->
            <div class="sender">%s</div>
            %s
            <div class="timestamp">%s</div>
        <!-- </label> -->
    </div>
</div>
`, align, class, d.counter, d.counter, d.counter,
		html.EscapeString(msg.Sender), embed, msg.TimestampDisplay)

	d.lastSender = msg.Sender

	kind, attachment := Analyze(msg.Body)
	d.messages = append(d.messages, models.Message{
		Sender:           msg.Sender,
		SenderClass:      class,
		Body:             msg.Body,
		Timestamp:        ts,
		TimestampDisplay: msg.TimestampDisplay,
		Attachment:       attachment,
		Kind:             kind.String(),
	})

	return true
}

// HTML returns the finished document.
func (d *Document) HTML() string {
	return d.buf.String() + footer
}

// Messages returns the rendered messages in order.
func (d *Document) Messages() []models.Message {
	return d.messages
}

// Rendered is the number of bubbles written.
func (d *Document) Rendered() int {
	return d.counter
}

// Skipped is the number of messages dropped for lack of timestamp or sender.
func (d *Document) Skipped() int {
	return d.skipped
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Conversation renders an archived conversation again.
func Conversation(conv *models.Conversation, opts Options) *Document {
	d := NewDocument(opts)
	for _, m := range conv.Messages {
		ts := m.Timestamp
		d.Add(transcript.Message{
			Timestamp:        &ts,
			TimestampDisplay: m.TimestampDisplay,
			Sender:           m.Sender,
			Body:             m.Body,
		})
	}
	return d
}
