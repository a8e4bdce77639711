// Package main provides the ansible-indent CLI. It walks a directory of
// Ansible playbooks and re-indents module lines, module parameters and
// task-level keys so linters accept them, rewriting only files that change.
//
// Usage:
//
//	ansible-indent [flags] [dir]          # dir defaults to infrastructure/ansible
//	ansible-indent --check [dir]          # report only, exit 1 if anything would change
//	ansible-indent --diff [dir]           # report plus unified diffs, never writes
//
// Exit status: 0 after every discovered file was attempted, 1 when the search
// root is missing (or --check found work), 2 on invalid flags.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"ansible-indent/internal/diff"
	"ansible-indent/internal/report"
	"ansible-indent/internal/runner"
	"ansible-indent/internal/walkwalk"
)

const defaultRoot = "infrastructure/ansible"

var version = "dev"

// Config holds parsed command-line settings.
type Config struct {
	root           string
	check          bool
	diff           bool
	format         string
	color          string
	exclude        string
	followSymlinks bool
	verbose        bool
	quiet          bool

	diffContext  int
	diffNoPrefix bool
	maxDiffBytes int
}

// exitCode carries a non-zero status out of RunE without printing anything.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func bindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.check, "check", false, "report files that need fixing without rewriting them")
	fs.BoolVar(&cfg.diff, "diff", false, "print a unified diff of pending fixes without rewriting")
	fs.StringVar(&cfg.format, "format", "text", "output format (text|json)")
	fs.StringVar(&cfg.color, "color", "auto", "colorize output (auto|on|off)")
	fs.StringVar(&cfg.exclude, "exclude", ".git", "comma-separated dir/file base names to skip")
	fs.BoolVar(&cfg.followSymlinks, "follow-symlinks", false, "include symlinked YAML files")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every rewritten line to stderr")
	fs.BoolVarP(&cfg.quiet, "quiet", "q", false, "only list files that changed or failed")
	fs.IntVar(&cfg.diffContext, "diff-context", 3, "context lines around each --diff hunk")
	fs.BoolVar(&cfg.diffNoPrefix, "diff-no-prefix", false, "omit the a/ and b/ prefixes in --diff headers")
	fs.IntVar(&cfg.maxDiffBytes, "max-diff-bytes", 1<<20, "skip --diff output for files larger than this (0 = no limit)")
}

func resolveRoot(cfg *Config, args []string) error {
	switch len(args) {
	case 0:
		cfg.root = defaultRoot
	case 1:
		cfg.root = args[0]
	default:
		return fmt.Errorf("expected at most one <dir>, got %d", len(args))
	}
	return nil
}

// parseFlags parses args through the root command's own flag set without
// running it.
func parseFlags(args []string) (Config, error) {
	var cfg Config
	cmd := newRootCmd(&cfg, io.Discard, io.Discard)
	if err := cmd.ParseFlags(args); err != nil {
		return cfg, err
	}
	return cfg, finish(&cfg, cmd.Flags().Args())
}

// finish applies positional args and checks the combined settings.
func finish(cfg *Config, args []string) error {
	if err := resolveRoot(cfg, args); err != nil {
		return err
	}
	return validate(*cfg)
}

func validate(cfg Config) error {
	switch cfg.format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", cfg.format)
	}
	switch cfg.color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", cfg.color)
	}
	if cfg.diffContext < 0 {
		return fmt.Errorf("--diff-context must be >= 0, got %d", cfg.diffContext)
	}
	if cfg.maxDiffBytes < 0 {
		return fmt.Errorf("--max-diff-bytes must be >= 0, got %d", cfg.maxDiffBytes)
	}
	_, err := selectMode(cfg)
	return err
}

// buildOptions maps the diff flags onto diff.Options. A 0 context keeps
// diff's default of 3.
func buildOptions(cfg Config) diff.Options {
	return diff.Options{
		MaxBytes: cfg.maxDiffBytes,
		Context:  cfg.diffContext,
		NoPrefix: cfg.diffNoPrefix,
	}
}

func selectMode(cfg Config) (runner.Mode, error) {
	switch {
	case cfg.check && cfg.diff:
		return 0, errors.New("--check and --diff are mutually exclusive")
	case cfg.diff:
		return runner.ModeDiff, nil
	case cfg.check:
		return runner.ModeCheck, nil
	default:
		return runner.ModeWrite, nil
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && !color.NoColor && term.IsTerminal(int(f.Fd()))
}

// newLogger builds the stderr logger: warn level by default, debug when
// verbose.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config.EncoderConfig),
		zapcore.AddSync(w),
		config.Level,
	)
	return zap.New(core)
}

// newRootCmd builds the command, binding its flags into cfg.
func newRootCmd(cfg *Config, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ansible-indent [flags] [dir]",
		Short:         "Fix module, parameter and task-key indentation in Ansible playbooks",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := finish(cfg, args); err != nil {
				return err
			}
			return run(*cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd.Flags(), cfg)
	return cmd
}

func run(cfg Config, stdout, stderr io.Writer) error {
	mode, err := selectMode(cfg)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.verbose, stderr)
	defer func() { _ = logger.Sync() }()

	// The file list is fixed here, before any file is touched.
	files, err := walkwalk.CollectFiles(cfg.root, walkwalk.Options{
		Exclude:        splitCSV(cfg.exclude),
		FollowSymlinks: cfg.followSymlinks,
	})
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return exitCode(1)
	}
	logger.Debug("collected files", zap.String("root", cfg.root), zap.Int("count", len(files)))

	opts := runner.Options{Mode: mode, Diff: buildOptions(cfg), Logger: logger}
	var sum runner.Summary
	if cfg.format == "json" {
		sum = runner.Run(files, opts)
		if err := report.JSON(stdout, sum); err != nil {
			return err
		}
	} else {
		p := report.NewPrinter(stdout, report.Options{
			Mode:  mode,
			Color: useColor(cfg.color, stdout),
			Quiet: cfg.quiet,
		})
		p.Header(len(files))
		opts.Progress = p.File
		sum = runner.Run(files, opts)
		p.Footer(sum)
	}

	if mode == runner.ModeCheck && sum.Changed > 0 {
		return exitCode(1)
	}
	return nil
}

func execute(args []string, stdout, stderr io.Writer) int {
	var cfg Config
	cmd := newRootCmd(&cfg, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintln(stderr, "ERROR:", err)
		fmt.Fprintln(stderr, "Run 'ansible-indent --help' for usage.")
		return 2
	}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
