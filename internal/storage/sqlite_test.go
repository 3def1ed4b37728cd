package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasperwreed/chat2html/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleConversation(title string, created time.Time) *models.Conversation {
	ts := time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC)
	return &models.Conversation{
		RunID:      uuid.NewString(),
		Title:      title,
		SourceDir:  "chats/" + title,
		ChatFile:   "_chat.txt",
		OutputPath: title + "_v0.html",
		DateFormat: "%d/%m/%Y, %H:%M:%S",
		Tags:       []string{"family", "2023"},
		CreatedAt:  created,
		Messages: []models.Message{
			{
				Sender:           "Alice",
				SenderClass:      models.SenderOther,
				Body:             "Are we still meeting for dinner?",
				Timestamp:        ts,
				TimestampDisplay: "01/02/2023, 10:00:00",
				Kind:             "text",
			},
			{
				Sender:           "Me",
				SenderClass:      models.SenderMe,
				Body:             "<attached: menu.pdf>",
				Timestamp:        ts.Add(time.Minute),
				TimestampDisplay: "01/02/2023, 10:01:00",
				Attachment:       "menu.pdf",
				Kind:             "pdf",
			},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)

	conv := sampleConversation("family", time.Now().UTC())

	t.Run("SaveAndGetConversation", func(t *testing.T) {
		require.NoError(t, store.SaveConversation(conv))
		require.NotZero(t, conv.ID)
		assert.Equal(t, conv.ID, conv.Messages[0].ConversationID)

		got, err := store.GetConversation(conv.ID)
		require.NoError(t, err)

		assert.Equal(t, conv.RunID, got.RunID)
		assert.Equal(t, "family", got.Title)
		assert.Equal(t, "family_v0.html", got.OutputPath)
		assert.Equal(t, []string{"family", "2023"}, got.Tags)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "Alice", got.Messages[0].Sender)
		assert.Equal(t, models.SenderMe, got.Messages[1].SenderClass)
		assert.Equal(t, "menu.pdf", got.Messages[1].Attachment)
		assert.True(t, got.Messages[0].Timestamp.Equal(conv.Messages[0].Timestamp))
		assert.Equal(t, "01/02/2023, 10:01:00", got.Messages[1].TimestampDisplay)
	})

	t.Run("GetConversationByRunID", func(t *testing.T) {
		got, err := store.GetConversationByRunID(conv.RunID)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, got.ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.GetConversation(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListConversations", func(t *testing.T) {
		other := sampleConversation("work", time.Now().UTC().Add(time.Hour))
		other.Messages[0].Sender = "Bob"
		require.NoError(t, store.SaveConversation(other))

		all, err := store.ListConversations(10, 0, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "work", all[0].Title, "newest first")

		bySender, err := store.ListConversations(10, 0, map[string]string{"sender": "Bob"})
		require.NoError(t, err)
		require.Len(t, bySender, 1)
		assert.Equal(t, "work", bySender[0].Title)

		byTitle, err := store.ListConversations(10, 0, map[string]string{"title": "family"})
		require.NoError(t, err)
		require.Len(t, byTitle, 1)

		paged, err := store.ListConversations(1, 1, nil)
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, "family", paged[0].Title)
	})

	t.Run("Search", func(t *testing.T) {
		results, err := store.Search("dinner", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.ElementsMatch(t, []string{"Alice", "Bob"}, []string{results[0].Sender, results[1].Sender})
		assert.Contains(t, results[0].Snippet, "dinner")

		none, err := store.Search("nonexistentword", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetStats", func(t *testing.T) {
		stats, err := store.GetStats()
		require.NoError(t, err)

		assert.Equal(t, 2, stats.TotalConversations)
		assert.Equal(t, 4, stats.TotalMessages)
		assert.Equal(t, 2, stats.TotalAttachments)
		assert.Equal(t, 2, stats.SenderBreakdown["Me"])
		assert.Equal(t, 1, stats.SenderBreakdown["Bob"])
		assert.Equal(t, 2, stats.KindBreakdown["pdf"])
	})

	t.Run("DeleteConversation", func(t *testing.T) {
		require.NoError(t, store.DeleteConversation(conv.ID))

		_, err := store.GetConversation(conv.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		results, err := store.Search("dinner", 10)
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, conv.ID, r.Conversation.ID)
		}

		assert.ErrorIs(t, store.DeleteConversation(conv.ID), ErrNotFound)
	})
}

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "short", truncateContent("short", 10))
	assert.Equal(t, "abc...", truncateContent("abcdef", 3))
	assert.Equal(t, "héé...", truncateContent("hééllo", 3))
}

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = "/tmp/archive.db"
	dsn := cfg.dsn()

	assert.Contains(t, dsn, "/tmp/archive.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys%281%29")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
}
