package cli

import (
	"github.com/spf13/cobra"

	"github.com/jasperwreed/chat2html/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse archived chats in a terminal UI",
		Long:  `Open an interactive terminal UI to read, search, export and delete archived chats.`,
		Example: `  # Browse the default archive
  chat2html browse

  # Browse a specific database
  chat2html browse --db family.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}

	return cmd
}

func runBrowse() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := currentConfig()
	return tui.NewBrowser(store, cfg.Archive.DBPath, cfg.Convert.SelfName).Run()
}
