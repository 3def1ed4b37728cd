package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about archived chats",
		Long:  `Display totals for archived chats, messages and attachments, broken down by sender and kind.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runStats(out io.Writer) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	fmt.Fprintln(out, headingStyle.Render("chat2html Statistics"))
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "\nTotal Chats: %s\n", humanize.Comma(int64(stats.TotalConversations)))
	fmt.Fprintf(out, "Total Messages: %s\n", humanize.Comma(int64(stats.TotalMessages)))
	fmt.Fprintf(out, "Total Attachments: %s\n", humanize.Comma(int64(stats.TotalAttachments)))

	printBreakdown(out, "Messages by Sender:", stats.SenderBreakdown)
	printBreakdown(out, "Messages by Kind:", stats.KindBreakdown)

	return nil
}

func printBreakdown(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(out, "\n%s\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, humanize.Comma(int64(counts[k])))
	}
}
