package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jasperwreed/chat2html/internal/convert"
	"github.com/jasperwreed/chat2html/internal/scanner"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#075E54"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25D366"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5A50A"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func NewScanCommand() *cobra.Command {
	var opts convertOptions
	var verbose bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Find and convert every chat export under a directory",
		Long: `Walk a directory tree and convert every folder that directly contains the
chat file. Each folder is converted on its own into its own versioned HTML
file. Hidden directories are skipped.`,
		Example: `  # See what would be converted
  chat2html scan ~/Downloads/exports --dry-run --verbose

  # Convert everything and archive it
  chat2html scan ~/Downloads/exports --archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := NewValidator()
			if err := v.ValidateDirectory(args[0]); err != nil {
				return err
			}
			root, err := v.ResolvePath(args[0])
			if err != nil {
				return err
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), root, opts, verbose, dryRun)
		},
	}

	addConvertFlags(cmd, &opts)
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the export folders without converting them")

	return cmd
}

func runScan(ctx context.Context, out io.Writer, root string, opts convertOptions, verbose, dryRun bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	chatFile := currentConfig().Convert.ChatFile
	fmt.Fprintf(out, "🔍 Scanning %s for %s...\n\n", root, chatFile)

	exports, err := scanner.FindExports(root, chatFile)
	if err != nil {
		return err
	}

	result := scanner.ScanResult{ExportsFound: len(exports)}

	if len(exports) == 0 {
		fmt.Fprintln(out, "No chat exports found.")
		return nil
	}

	fmt.Fprintf(out, "📁 Found %d export folder(s)\n", len(exports))

	if dryRun {
		for _, e := range exports {
			fmt.Fprintf(out, "  • %s\n", e.Path)
			if verbose {
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("    %s, modified %s",
					humanize.Bytes(uint64(e.ChatSize)), humanize.Time(e.ModTime))))
			}
		}
		fmt.Fprintln(out, "\n(Dry run - no files written)")
		return nil
	}

	for i, e := range exports {
		if err := ctx.Err(); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(out, "  [%d/%d] %s\n", i+1, len(exports), e.Path)
		}

		var buf bytes.Buffer
		if err := runConvert(ctx, &buf, e.Path, opts); err != nil {
			result.AddError(e.Path, describeError(err))
			if verbose {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("    ⚠️  %v", describeError(err))))
			}
			continue
		}
		result.Converted++
		if verbose {
			fmt.Fprint(out, "    "+buf.String())
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("📊 Scan Complete"))
	fmt.Fprintf(out, "   Exports found: %d\n", result.ExportsFound)
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   Converted: %d", result.Converted)))
	if result.Failed > 0 {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("   Failed: %d", result.Failed)))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "     %s\n", e)
		}
	}

	return nil
}

// describeError turns the fixed conversion failures into their user message.
func describeError(err error) error {
	if msg, ok := convert.Message(err); ok {
		return errors.New(msg)
	}
	return err
}
