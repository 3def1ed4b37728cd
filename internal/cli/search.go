package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/chat2html/internal/search"
)

func NewSearchCommand() *cobra.Command {
	var limit int
	var showContext bool
	var filterSender string
	var filterTitle string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search archived messages",
		Long:  `Search the bodies of all archived messages using full-text search.`,
		Example: `  # Find messages about dinner
  chat2html search dinner

  # Only Alice's messages, full text
  chat2html search "birthday party" --sender Alice --context`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateLimit(limit); err != nil {
				return err
			}
			query := strings.Join(args, " ")
			filters := map[string]interface{}{
				"sender": filterSender,
				"title":  filterTitle,
			}
			return runSearch(cmd.OutOrStdout(), query, limit, showContext, filters)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&showContext, "context", false, "Show the full message")
	cmd.Flags().StringVar(&filterSender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&filterTitle, "title", "", "Only chats with this title")

	return cmd
}

func runSearch(out io.Writer, query string, limit int, showContext bool, filters map[string]interface{}) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	searcher := search.NewSearcher(store)
	results, err := searcher.SearchWithFilters(query, limit, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d result(s) for '%s':\n\n", len(results), query)

	for i, result := range results {
		fmt.Fprintf(out, "%d. [ID: %d] %s\n", i+1, result.Conversation.ID, result.Conversation.Title)
		fmt.Fprintf(out, "   %s | %s\n", result.Sender, result.Conversation.CreatedAt.Format("2006-01-02 15:04"))

		if showContext {
			fmt.Fprintf(out, "\n   %s\n", strings.ReplaceAll(result.Snippet, "\n", "\n   "))
		} else {
			snippet := []rune(strings.ReplaceAll(result.Snippet, "\n", " "))
			if len(snippet) > 100 {
				snippet = append(snippet[:100], []rune("...")...)
			}
			fmt.Fprintf(out, "   %s\n", string(snippet))
		}
		fmt.Fprintln(out)
	}

	return nil
}
