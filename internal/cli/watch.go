package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/chat2html/internal/logging"
	"github.com/jasperwreed/chat2html/internal/watcher"
)

func NewWatchCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Convert a folder again whenever its chat file changes",
		Long: `Convert the export folder once, then keep watching its chat file and write
the next versioned HTML file after every change. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateDirectory(args[0]); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	addConvertFlags(cmd, &opts)
	return cmd
}

func runWatch(ctx context.Context, out io.Writer, folder string, opts convertOptions) error {
	cfg := currentConfig()

	if err := runConvert(ctx, out, folder, opts); err != nil {
		return err
	}

	w, err := watcher.NewChatWatcher(folder, cfg.Convert.ChatFile, cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}

	w.AddHandler(func(ctx context.Context, event watcher.Event) error {
		return runConvert(ctx, out, folder, opts)
	})

	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", w.ChatPath())
	logger.Debug("watch started", logging.F("debounce", cfg.Watch.Debounce))

	if err := w.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "Stopped watching.")
	return nil
}
