package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/storage"
)

func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import chats exported with 'export'",
		Long: `Import chats previously written by 'export --format json' or
'export --format yaml' into the archive. The format is chosen from the
file extension (.yaml/.yml, otherwise JSON).`,
		Example: `  # Restore a backup
  chat2html import family.json work.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := NewValidator()
			for _, path := range args {
				if err := v.ValidateFile(path); err != nil {
					return err
				}
			}
			return runImport(cmd.OutOrStdout(), args)
		},
	}

	return cmd
}

func runImport(out io.Writer, paths []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	imported := 0
	for _, path := range paths {
		conv, err := importFile(store, path)
		if err != nil {
			fmt.Fprintf(out, "  Warning: %s: %v\n", path, err)
			continue
		}
		imported++
		fmt.Fprintf(out, "✓ Imported %s (ID: %d, %d messages)\n", conv.Title, conv.ID, len(conv.Messages))
	}

	if imported == 0 {
		return fmt.Errorf("no chats imported")
	}
	return nil
}

func importFile(store *storage.SQLiteStore, path string) (*models.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	conv := &models.Conversation{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, conv)
	default:
		err = json.Unmarshal(data, conv)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode chat: %w", err)
	}

	if conv.Title == "" || len(conv.Messages) == 0 {
		return nil, fmt.Errorf("file does not contain an exported chat")
	}

	// A chat imported twice must not collide with its earlier copy.
	if conv.RunID == "" {
		conv.RunID = uuid.NewString()
	} else if _, err := store.GetConversationByRunID(conv.RunID); err == nil {
		conv.RunID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	conv.ID = 0
	for i := range conv.Messages {
		conv.Messages[i].ID = 0
		conv.Messages[i].ConversationID = 0
	}

	if err := store.SaveConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return conv, nil
}
