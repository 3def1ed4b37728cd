package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jasperwreed/chat2html/internal/convert"
)

func NewExportCommand() *cobra.Command {
	var conversationID int64
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an archived chat",
		Long: `Export an archived chat as JSON or YAML for backup, or render it as HTML
again. HTML attachment paths are relative to the current directory.`,
		Example: `  # Export as JSON
  chat2html export --id 42 > family.json

  # Render the archived chat as HTML
  chat2html export --id 42 --format html > family.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conversationID == 0 {
				return fmt.Errorf("--id flag is required")
			}
			if err := NewValidator().ValidateFormat(format); err != nil {
				return err
			}
			return runExport(cmd.OutOrStdout(), conversationID, format)
		},
	}

	cmd.Flags().Int64Var(&conversationID, "id", 0, "Chat ID to export")
	cmd.Flags().StringVar(&format, "format", "json", "Export format: json, yaml or html")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runExport(out io.Writer, id int64, format string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	conversation, err := store.GetConversation(id)
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(conversation, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(conversation)
	case "html":
		data = []byte(convert.Render(conversation, ".", currentConfig().Convert.SelfName))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	fmt.Fprintln(out, string(data))
	return nil
}
