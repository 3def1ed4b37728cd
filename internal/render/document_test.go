package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/transcript"
)

func msgAt(t *testing.T, ts, sender, body string) transcript.Message {
	t.Helper()
	parsed, err := time.Parse("2/1/2006, 15:04:05", ts)
	require.NoError(t, err)
	return transcript.Message{
		Timestamp:        &parsed,
		TimestampDisplay: ts,
		Sender:           sender,
		Body:             body,
	}
}

func TestDocumentShell(t *testing.T) {
	doc := NewDocument(Options{SelfName: "Me"})
	out := doc.HTML()

	assert.True(t, strings.HasPrefix(strings.TrimLeft(out, "\n"), "<html>"))
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, "function createSummary()")
	assert.True(t, strings.HasSuffix(out, "</body></html>"))
	assert.Equal(t, 0, doc.Rendered())
}

func TestDocumentTwoSenders(t *testing.T) {
	doc := NewDocument(Options{SelfName: "Me"})

	require.True(t, doc.Add(msgAt(t, "01/02/2023, 10:00:00", "Alice", "Hi")))
	require.True(t, doc.Add(msgAt(t, "01/02/2023, 10:01:00", "Me", "Hello")))

	out := doc.HTML()

	assert.Equal(t, 1, strings.Count(out, `<div class="date">01 February 2023</div>`))
	assert.Contains(t, out, `<div class="left">`)
	assert.Contains(t, out, `<div class="bubble other">`)
	assert.Contains(t, out, `<div class="right">`)
	assert.Contains(t, out, `<div class="bubble me">`)
	assert.Contains(t, out, `<div class="sender">Alice</div>`)
	assert.Contains(t, out, `<div class="timestamp">01/02/2023, 10:01:00</div>`)
	assert.Contains(t, out, `id="msg_1"`)
	assert.Contains(t, out, `id="msg_2"`)

	assert.Less(t, strings.Index(out, "Hi"), strings.Index(out, "Hello"))
	assert.Equal(t, "Me", doc.LastSender())

	msgs := doc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderOther, msgs[0].SenderClass)
	assert.Equal(t, models.SenderMe, msgs[1].SenderClass)
	assert.Equal(t, "text", msgs[1].Kind)
}

func TestDocumentDateSeparators(t *testing.T) {
	doc := NewDocument(Options{SelfName: "Me"})

	doc.Add(msgAt(t, "01/02/2023, 23:59:00", "Alice", "late"))
	doc.Add(msgAt(t, "02/02/2023, 00:01:00", "Alice", "early"))
	doc.Add(msgAt(t, "02/02/2023, 09:00:00", "Bob", "morning"))

	out := doc.HTML()
	assert.Equal(t, 2, strings.Count(out, `<div class="date">`))
	assert.Contains(t, out, "01 February 2023")
	assert.Contains(t, out, "02 February 2023")
	assert.Less(t, strings.Index(out, "01 February 2023"), strings.Index(out, "late"))
	assert.Less(t, strings.Index(out, "late"), strings.Index(out, "02 February 2023"))
}

func TestDocumentSkipsInvalid(t *testing.T) {
	doc := NewDocument(Options{SelfName: "Me"})

	ok := doc.Add(transcript.Message{Sender: "Alice", Body: "orphan"})
	assert.False(t, ok)
	assert.Equal(t, 1, doc.Skipped())
	assert.Equal(t, 0, doc.Rendered())
	assert.NotContains(t, doc.HTML(), "orphan")
	assert.Equal(t, transcript.UnknownSender, doc.LastSender())
}

func TestDocumentEscapesSender(t *testing.T) {
	doc := NewDocument(Options{SelfName: "Me"})
	doc.Add(msgAt(t, "01/02/2023, 10:00:00", "<Al & Co>", "hey"))

	out := doc.HTML()
	assert.Contains(t, out, `<div class="sender">&lt;Al &amp; Co&gt;</div>`)
}

func TestDocumentMediaDir(t *testing.T) {
	doc := NewDocument(Options{MediaDir: "chats/family", SelfName: "Me"})
	doc.Add(msgAt(t, "01/02/2023, 10:00:00", "Alice", "<attached: photo.jpg>"))

	assert.Contains(t, doc.HTML(), `<img src="chats/family/photo.jpg"`)

	msgs := doc.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "photo.jpg", msgs[0].Attachment)
	assert.Equal(t, "image", msgs[0].Kind)
}

func TestConversationRerender(t *testing.T) {
	ts := time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC)
	conv := &models.Conversation{
		Title: "family",
		Messages: []models.Message{
			{Sender: "Alice", Body: "Hi", Timestamp: ts, TimestampDisplay: "01/02/2023, 10:00:00"},
			{Sender: "Me", Body: "Hello", Timestamp: ts.Add(time.Minute), TimestampDisplay: "01/02/2023, 10:01:00"},
		},
	}

	doc := Conversation(conv, Options{SelfName: "Me"})
	out := doc.HTML()

	assert.Equal(t, 2, doc.Rendered())
	assert.Contains(t, out, "01 February 2023")
	assert.Contains(t, out, `<div class="bubble me">`)
}
