package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jasperwreed/chat2html/internal/config"
	"github.com/jasperwreed/chat2html/internal/convert"
	"github.com/jasperwreed/chat2html/internal/storage"
)

const folderPrompt = "Enter the path to the subfolder containing the chat and media files: "

type convertOptions struct {
	archive   bool
	tags      []string
	outputDir string
}

func addConvertFlags(cmd *cobra.Command, opts *convertOptions) {
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Save the converted chat to the archive database")
	cmd.Flags().StringSliceVar(&opts.tags, "tag", nil, "Tag archived chats (repeatable or comma-separated)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for the HTML file (default: current directory)")
}

func NewConvertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [folder]",
		Short: "Convert one chat export folder to HTML",
		Long: `Convert the _chat.txt in an export folder into <folder>_v<N>.html.
Each run writes the next free version; existing files are never overwritten.`,
		Example: `  # Prompt for the folder
  chat2html convert

  # Convert a folder and keep it in the archive
  chat2html convert chats/family --archive --tag family`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvertCommand(cmd, args, opts)
		},
	}

	addConvertFlags(cmd, &opts)
	return cmd
}

func runConvertCommand(cmd *cobra.Command, args []string, opts convertOptions) error {
	var folder string
	if len(args) > 0 {
		folder = args[0]
	} else {
		in := cmd.InOrStdin()
		var err error
		folder, err = promptFolder(in, cmd.OutOrStdout(), isTerminal(in))
		if err != nil {
			return err
		}
	}

	return runConvert(cmd.Context(), cmd.OutOrStdout(), folder, opts)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// promptFolder reads one line naming the export folder. The prompt is
// only shown to an interactive terminal.
func promptFolder(in io.Reader, out io.Writer, interactive bool) (string, error) {
	if interactive {
		fmt.Fprint(out, folderPrompt)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read folder path: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func convertConfig(opts convertOptions) config.ConvertConfig {
	cfg := currentConfig().Convert
	if opts.outputDir != "" {
		cfg.OutputDir = config.ExpandPath(opts.outputDir)
	}
	return cfg
}

func runConvert(ctx context.Context, out io.Writer, folder string, opts convertOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	converterOpts := []convert.Option{convert.WithTags(opts.tags...)}

	var store *storage.SQLiteStore
	if opts.archive || currentConfig().Archive.Enabled {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
		converterOpts = append(converterOpts, convert.WithArchive(store))
	}

	c := convert.New(convertConfig(opts), logger, converterOpts...)
	result, err := c.Run(ctx, folder)
	if err != nil && result == nil {
		return err
	}

	fmt.Fprintf(out, "HTML file created: %s\n", result.OutputPath)
	if err != nil {
		return err
	}

	if store != nil {
		fmt.Fprintf(out, "✓ Archived as chat %d\n", result.Conversation.ID)
	}
	return nil
}
