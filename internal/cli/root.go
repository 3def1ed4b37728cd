package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/chat2html/internal/config"
	"github.com/jasperwreed/chat2html/internal/convert"
	"github.com/jasperwreed/chat2html/internal/logging"
	"github.com/jasperwreed/chat2html/internal/storage"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	logJSON    bool

	appConfig *config.Config
	logger    logging.Logger = logging.Nop()
)

func NewRootCommand() *cobra.Command {
	var opts convertOptions

	rootCmd := &cobra.Command{
		Use:   "chat2html [folder]",
		Short: "Convert exported chat transcripts into HTML",
		Long: `chat2html renders an exported chat transcript (_chat.txt) as a single static
HTML page of chat bubbles, grouped by date, with inline previews of the
attached images, audio, video and PDFs.

Run without arguments to be prompted for the export folder.`,
		Version:       "0.1.0",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadRuntime(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvertCommand(cmd, args, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.chat2html/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to archive database (default: ~/.chat2html/archive.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	addConvertFlags(rootCmd, &opts)

	rootCmd.AddCommand(
		NewConvertCommand(),
		NewScanCommand(),
		NewWatchCommand(),
		NewListCommand(),
		NewSearchCommand(),
		NewStatsCommand(),
		NewExportCommand(),
		NewImportCommand(),
		NewDeleteCommand(),
		NewBrowseCommand(),
	)

	return rootCmd
}

// loadRuntime layers command-line flags over the loaded configuration and
// builds the logger.
func loadRuntime(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Archive.DBPath = config.ExpandPath(dbPath)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}

	appConfig = cfg
	logger = logging.NewLogger(&logging.Config{
		Level:      logging.Level(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
		Output:     os.Stderr,
	})
	return nil
}

func currentConfig() *config.Config {
	if appConfig == nil {
		appConfig = config.Default()
		appConfig.Archive.DBPath = config.ExpandPath(appConfig.Archive.DBPath)
	}
	return appConfig
}

func openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(currentConfig().Archive.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// Execute runs the command tree and exits non-zero when the run aborts.
// The fixed conversion failures are printed on stdout as a single line.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		if msg, ok := convert.Message(err); ok {
			fmt.Println(msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
