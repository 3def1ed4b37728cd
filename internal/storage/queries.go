package storage

// Database schema queries
const (
	queryCreateConversationsTable = `CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		title TEXT NOT NULL,
		source_dir TEXT NOT NULL,
		chat_file TEXT NOT NULL,
		output_path TEXT,
		date_format TEXT NOT NULL,
		tags TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	queryCreateMessagesTable = `CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		sender TEXT NOT NULL,
		sender_class TEXT NOT NULL,
		body TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		timestamp_display TEXT NOT NULL,
		attachment TEXT,
		kind TEXT NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	)`

	queryCreateMessagesFTS = `CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
		body,
		content=messages,
		content_rowid=id
	)`

	queryCreateIndexMessagesConversation = `CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, position)`
	queryCreateIndexMessagesSender       = `CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender)`
	queryCreateIndexConversationsTitle   = `CREATE INDEX IF NOT EXISTS idx_conversations_title ON conversations(title)`
	queryCreateIndexConversationsCreated = `CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at)`
	queryCreateIndexConversationsRun     = `CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_run ON conversations(run_id)`

	queryCreateMessagesInsertTrigger = `CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages
	BEGIN
		INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
	END`

	queryCreateMessagesDeleteTrigger = `CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages
	BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, body) VALUES ('delete', old.id, old.body);
	END`

	queryCreateMessagesUpdateTrigger = `CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages
	BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, body) VALUES ('delete', old.id, old.body);
		INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
	END`

	queryInsertConversation = `INSERT INTO conversations (run_id, title, source_dir, chat_file, output_path, date_format, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertMessage = `INSERT INTO messages (conversation_id, position, sender, sender_class, body, timestamp, timestamp_display, attachment, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryConversationColumns = `id, run_id, title, source_dir, chat_file, output_path, date_format, tags, created_at`

	querySelectConversation = `SELECT ` + queryConversationColumns + ` FROM conversations WHERE id = ?`

	querySelectConversationByRun = `SELECT ` + queryConversationColumns + ` FROM conversations WHERE run_id = ?`

	querySelectMessages = `SELECT id, conversation_id, sender, sender_class, body, timestamp, timestamp_display, attachment, kind
		FROM messages WHERE conversation_id = ? ORDER BY position`

	queryDeleteConversation = `DELETE FROM conversations WHERE id = ?`

	querySearchMessages = `
		SELECT
			c.id, c.run_id, c.title, c.source_dir, c.chat_file, c.output_path, c.date_format, c.tags, c.created_at,
			m.sender, m.body, bm25(messages_fts) AS score
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		JOIN conversations c ON m.conversation_id = c.id
		WHERE messages_fts MATCH ?
		ORDER BY score
		LIMIT ?`

	queryCountConversations = `SELECT COUNT(*) FROM conversations`
	queryCountMessages      = `SELECT COUNT(*) FROM messages`
	queryCountAttachments   = `SELECT COUNT(*) FROM messages WHERE attachment IS NOT NULL AND attachment != ''`
	queryGroupBySender      = `SELECT sender, COUNT(*) FROM messages GROUP BY sender`
	queryGroupByKind        = `SELECT kind, COUNT(*) FROM messages GROUP BY kind`
)
