package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jasperwreed/chat2html/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

type SQLiteStore struct {
	writeDB *sql.DB // Single connection for writes
	readDB  *sql.DB // Pool of connections for reads
	dbPath  string
}

// NewSQLiteStore opens (creating if needed) the archive at dbPath with the
// default configuration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	cfg := DefaultConfig()
	cfg.Path = dbPath
	return NewSQLiteStoreWithConfig(cfg)
}

func NewSQLiteStoreWithConfig(cfg *Config) (*SQLiteStore, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".chat2html", "archive.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	withPath := *cfg
	withPath.Path = dbPath
	dsn := withPath.dsn()

	writeDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)
	writeDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// The read pool is not opened read-only: the file may not exist until
	// the schema is created through it.
	readDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(cfg.MaxOpenConns)
	readDB.SetMaxIdleConns(cfg.MaxIdleConns)
	readDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &SQLiteStore{
		writeDB: writeDB,
		readDB:  readDB,
		dbPath:  dbPath,
	}

	if err := store.createTables(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		queryCreateConversationsTable,
		queryCreateMessagesTable,
		queryCreateIndexMessagesConversation,
		queryCreateIndexMessagesSender,
		queryCreateIndexConversationsTitle,
		queryCreateIndexConversationsCreated,
		queryCreateIndexConversationsRun,
		queryCreateMessagesFTS,
		queryCreateMessagesInsertTrigger,
		queryCreateMessagesDeleteTrigger,
		queryCreateMessagesUpdateTrigger,
	}

	for _, query := range queries {
		if _, err := s.writeDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) SaveConversation(conv *models.Conversation) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tagsJSON, err := json.Marshal(conv.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := tx.Exec(
		queryInsertConversation,
		conv.RunID, conv.Title, conv.SourceDir, conv.ChatFile, conv.OutputPath,
		conv.DateFormat, string(tagsJSON), conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	convID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(queryInsertMessage)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i := range conv.Messages {
		m := &conv.Messages[i]
		result, err := stmt.Exec(
			convID, i, m.Sender, string(m.SenderClass), m.Body,
			m.Timestamp, m.TimestampDisplay, m.Attachment, m.Kind,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		msgID, _ := result.LastInsertId()
		m.ID = msgID
		m.ConversationID = convID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation: %w", err)
	}
	conv.ID = convID
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner, conv *models.Conversation, extra ...any) error {
	var tagsJSON, outputPath sql.NullString
	dest := []any{
		&conv.ID, &conv.RunID, &conv.Title, &conv.SourceDir, &conv.ChatFile,
		&outputPath, &conv.DateFormat, &tagsJSON, &conv.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	conv.OutputPath = outputPath.String
	if tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &conv.Tags); err != nil {
			return fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetConversation(id int64) (*models.Conversation, error) {
	return s.getConversation(querySelectConversation, id)
}

// GetConversationByRunID looks a conversation up by the conversion run that
// produced it.
func (s *SQLiteStore) GetConversationByRunID(runID string) (*models.Conversation, error) {
	return s.getConversation(querySelectConversationByRun, runID)
}

func (s *SQLiteStore) getConversation(query string, key any) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := scanConversation(s.readDB.QueryRow(query, key), conv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	rows, err := s.readDB.Query(querySelectMessages, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = []models.Message{}
	for rows.Next() {
		var msg models.Message
		var class string
		var attachment sql.NullString
		err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.Sender, &class, &msg.Body,
			&msg.Timestamp, &msg.TimestampDisplay, &attachment, &msg.Kind,
		)
		if err != nil {
			return nil, err
		}
		msg.SenderClass = models.SenderClass(class)
		msg.Attachment = attachment.String
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, rows.Err()
}

// ListConversations returns conversations newest first. Supported filter
// keys are "title" and "sender".
func (s *SQLiteStore) ListConversations(limit, offset int, filter map[string]string) ([]models.Conversation, error) {
	query := `SELECT ` + queryConversationColumns + ` FROM conversations WHERE 1=1`
	args := []any{}

	if title, ok := filter["title"]; ok && title != "" {
		query += " AND title = ?"
		args = append(args, title)
	}
	if sender, ok := filter["sender"]; ok && sender != "" {
		query += " AND EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = conversations.id AND m.sender = ?)"
		args = append(args, sender)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := scanConversation(rows, &conv); err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// Search runs an FTS5 query over message bodies. Best matches come first.
func (s *SQLiteStore) Search(query string, limit int) ([]models.SearchResult, error) {
	rows, err := s.readDB.Query(querySearchMessages, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var result models.SearchResult
		var body string

		err := scanConversation(rows, &result.Conversation, &result.Sender, &body, &result.Score)
		if err != nil {
			return nil, err
		}

		result.Snippet = truncateContent(body, 200)
		results = append(results, result)
	}

	return results, rows.Err()
}

func (s *SQLiteStore) GetStats() (*models.ConversationStats, error) {
	stats := &models.ConversationStats{
		SenderBreakdown: make(map[string]int),
		KindBreakdown:   make(map[string]int),
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{queryCountConversations, &stats.TotalConversations},
		{queryCountMessages, &stats.TotalMessages},
		{queryCountAttachments, &stats.TotalAttachments},
	}
	for _, c := range counts {
		if err := s.readDB.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	if err := s.groupCount(queryGroupBySender, stats.SenderBreakdown); err != nil {
		return nil, err
	}
	if err := s.groupCount(queryGroupByKind, stats.KindBreakdown); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *SQLiteStore) groupCount(query string, into map[string]int) error {
	rows, err := s.readDB.Query(query)
	if err != nil {
		return fmt.Errorf("failed to group: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

// DeleteConversation removes a conversation and its messages.
func (s *SQLiteStore) DeleteConversation(id int64) error {
	result, err := s.writeDB.Exec(queryDeleteConversation, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	var errs []error

	if _, err := s.writeDB.Exec("PRAGMA optimize"); err != nil {
		errs = append(errs, fmt.Errorf("failed to optimize: %w", err))
	}

	if err := s.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close read db: %w", err))
	}

	if err := s.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close write db: %w", err))
	}

	return errors.Join(errs...)
}

func truncateContent(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
