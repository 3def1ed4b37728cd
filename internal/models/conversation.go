package models

import (
	"time"
)

// SenderClass drives bubble alignment and colour.
type SenderClass string

const (
	SenderMe    SenderClass = "me"
	SenderOther SenderClass = "other"
)

// Conversation is one converted chat export.
type Conversation struct {
	ID         int64     `json:"id" yaml:"id"`
	RunID      string    `json:"run_id" yaml:"run_id"`
	Title      string    `json:"title" yaml:"title"`
	SourceDir  string    `json:"source_dir" yaml:"source_dir"`
	ChatFile   string    `json:"chat_file" yaml:"chat_file"`
	OutputPath string    `json:"output_path" yaml:"output_path"`
	DateFormat string    `json:"date_format" yaml:"date_format"`
	Tags       []string  `json:"tags" yaml:"tags"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	Messages   []Message `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Message is a rendered chat message. Body keeps the raw text so the
// conversation can be rendered again from the archive.
type Message struct {
	ID               int64       `json:"id" yaml:"id"`
	ConversationID   int64       `json:"conversation_id" yaml:"conversation_id"`
	Sender           string      `json:"sender" yaml:"sender"`
	SenderClass      SenderClass `json:"sender_class" yaml:"sender_class"`
	Body             string      `json:"body" yaml:"body"`
	Timestamp        time.Time   `json:"timestamp" yaml:"timestamp"`
	TimestampDisplay string      `json:"timestamp_display" yaml:"timestamp_display"`
	Attachment       string      `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Kind             string      `json:"kind" yaml:"kind"`
}

type SearchResult struct {
	Conversation Conversation `json:"conversation"`
	Sender       string       `json:"sender"`
	Snippet      string       `json:"snippet"`
	Score        float64      `json:"score"`
}

type ConversationStats struct {
	TotalConversations int            `json:"total_conversations"`
	TotalMessages      int            `json:"total_messages"`
	TotalAttachments   int            `json:"total_attachments"`
	SenderBreakdown    map[string]int `json:"sender_breakdown"`
	KindBreakdown      map[string]int `json:"kind_breakdown"`
}
