package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aledsdavies/tok/pkgs/diag"
	"github.com/aledsdavies/tok/pkgs/lexer"
	"github.com/aledsdavies/tok/pkgs/tokenfmt"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Build-time variables - can be set via ldflags
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

// errScanFailed marks a failure whose diagnostic was already printed
var errScanFailed = errors.New("scan failed")

// options holds the flags of one CLI invocation
type options struct {
	file    string
	name    string
	format  string
	noColor bool
	debug   bool
	stats   bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errScanFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tok [file]",
		Short: "Tokenize source files",
		Long: `tok scans a source file into brackets, punctuation, operators and numeric
literals and prints the token stream. With no file argument it reads piped
standard input; use -f - to read standard input explicitly.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("file") {
					return fmt.Errorf("pass the input either as an argument or with --file, not both")
				}
				opts.file = args[0]
			}
			return tokenizeCommand(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Path to source file (- for stdin)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")
	rootCmd.Flags().StringVar(&opts.name, "name", "", "Filename shown in diagnostics (default: the input path)")
	rootCmd.Flags().StringVarP(&opts.format, "format", "o", string(tokenfmt.FormatText), "Output format: text, json, yaml, cbor or lsp")
	rootCmd.Flags().BoolVar(&opts.stats, "stats", false, "Print per-token-type statistics to stderr")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build time, and git commit information for tok.",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tok %s\n", Version)
			fmt.Fprintf(out, "Built: %s\n", BuildTime)
			fmt.Fprintf(out, "Commit: %s\n", GitCommit)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Check a JSON token stream against the document schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading file %s: %w", args[0], err)
			}
			if err := tokenfmt.ValidateJSON(data); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
}

func tokenizeCommand(cmd *cobra.Command, opts *options) error {
	format, err := tokenfmt.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	reader, displayName, closeFunc, err := getInputReader(cmd, opts.file)
	if err != nil {
		return err
	}
	defer func() { _ = closeFunc() }()

	source, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	if opts.name != "" {
		displayName = opts.name
	}

	var lexOpts []lexer.LexerOpt
	if opts.debug {
		lexOpts = append(lexOpts, lexer.WithDebugDetailed())
	}
	if opts.stats {
		lexOpts = append(lexOpts, lexer.WithTelemetryTiming())
	}

	l := lexer.NewLexer(string(source), displayName, lexOpts...)
	tokens, scanErr := l.Scan()

	stderr := cmd.ErrOrStderr()
	if opts.debug {
		printDebugEvents(stderr, l.GetDebugEvents())
	}
	if opts.stats {
		printTelemetry(stderr, l.GetTokenTelemetry())
	}

	if scanErr != nil {
		var diagnostic *lexer.Error
		if errors.As(scanErr, &diagnostic) {
			useColor := !opts.noColor && colorTerminal(stderr)
			if err := diag.Fprint(stderr, diagnostic, diag.WithColor(useColor)); err != nil {
				return fmt.Errorf("error writing diagnostic: %w", err)
			}
			return errScanFailed
		}
		return scanErr
	}

	return tokenfmt.Write(cmd.OutOrStdout(), format, displayName, string(source), tokens)
}

// colorTerminal reports whether w is a terminal that should get ANSI colours.
// NO_COLOR and TERM=dumb disable colour.
func colorTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getInputReader handles the 3 modes of input:
// 1. Explicit stdin with -f -
// 2. Piped input (auto-detected when no file is given)
// 3. File input
func getInputReader(cmd *cobra.Command, file string) (io.Reader, string, func() error, error) {
	noClose := func() error { return nil }

	// Mode 1: Explicit stdin
	if file == "-" {
		return cmd.InOrStdin(), "<stdin>", noClose, nil
	}

	// Mode 2: Piped input when no file is given
	if file == "" {
		if hasPipedInput() {
			return cmd.InOrStdin(), "<stdin>", noClose, nil
		}
		return nil, "", nil, fmt.Errorf("no input: pass a file, use -f -, or pipe source on stdin")
	}

	// Mode 3: File input
	f, err := os.Open(file)
	if err != nil {
		return nil, "", nil, fmt.Errorf("error opening file %s: %w", file, err)
	}

	return f, file, f.Close, nil
}

// hasPipedInput detects if there's data piped to stdin
func hasPipedInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	// Check if stdin is not a character device (i.e., it's piped)
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func printDebugEvents(w io.Writer, events []lexer.DebugEvent) {
	for _, event := range events {
		fmt.Fprintf(w, "[debug] %s %-24s %q\n", event.Position, event.Event, event.Context)
	}
}

func printTelemetry(w io.Writer, telemetry map[lexer.TokenType]*lexer.TokenTelemetry) {
	types := make([]lexer.TokenType, 0, len(telemetry))
	for tokenType := range telemetry {
		types = append(types, tokenType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Fprintf(w, "Token statistics:\n")
	for _, tokenType := range types {
		entry := telemetry[tokenType]
		fmt.Fprintf(w, "  %-12s count=%-6d avg=%v max=%v\n", tokenType, entry.Count, entry.Mean(), entry.MaxTime)
	}
}
