package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	var limit int
	var filterSender string
	var filterTitle string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived chats",
		Long:  `List archived chats, newest first.`,
		Example: `  # List recent chats
  chat2html list

  # Chats Alice took part in
  chat2html list --sender Alice --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateLimit(limit); err != nil {
				return err
			}
			filter := make(map[string]string)
			if filterSender != "" {
				filter["sender"] = filterSender
			}
			if filterTitle != "" {
				filter["title"] = filterTitle
			}
			return runList(cmd.OutOrStdout(), limit, filter)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of chats to list")
	cmd.Flags().StringVar(&filterSender, "sender", "", "Only chats with messages from this sender")
	cmd.Flags().StringVar(&filterTitle, "title", "", "Only chats with this title")

	return cmd
}

func runList(out io.Writer, limit int, filter map[string]string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	conversations, err := store.ListConversations(limit, 0, filter)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Fprintln(out, "No chats found.")
		return nil
	}

	fmt.Fprintf(out, "Recent chats:\n\n")

	for _, conv := range conversations {
		fmt.Fprintf(out, "[ID: %d] %s\n", conv.ID, conv.Title)
		fmt.Fprintf(out, "  Source: %s", conv.SourceDir)
		if len(conv.Tags) > 0 {
			fmt.Fprintf(out, " | Tags: %s", strings.Join(conv.Tags, ", "))
		}
		fmt.Fprintf(out, "\n  Output: %s\n", conv.OutputPath)
		fmt.Fprintf(out, "  Converted: %s (%s)\n", conv.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(conv.CreatedAt))
		fmt.Fprintln(out)
	}

	return nil
}
