package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func NewDeleteCommand() *cobra.Command {
	var conversationID int64
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an archived chat",
		Long:  `Delete a chat and its messages from the archive. HTML files already written are kept.`,
		Example: `  # Delete with confirmation
  chat2html delete --id 42

  # Delete without confirmation prompt
  chat2html delete --id 42 --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conversationID == 0 {
				return fmt.Errorf("--id flag is required")
			}
			return runDelete(cmd.InOrStdin(), cmd.OutOrStdout(), conversationID, confirm)
		},
	}

	cmd.Flags().Int64Var(&conversationID, "id", 0, "Chat ID to delete")
	cmd.Flags().BoolVar(&confirm, "yes", false, "Skip confirmation prompt")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runDelete(in io.Reader, out io.Writer, id int64, skipConfirm bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	conversation, err := store.GetConversation(id)
	if err != nil {
		return fmt.Errorf("conversation not found: %w", err)
	}

	if !skipConfirm {
		fmt.Fprintf(out, "Delete chat '%s' (ID: %d)? [y/N]: ", conversation.Title, id)
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := store.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	fmt.Fprintf(out, "✓ Deleted chat (ID: %d)\n", id)
	return nil
}
