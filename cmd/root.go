// Package cmd implements the jsondiff command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/jsondiff/internal/config"
	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
	"github.com/oakwood-commons/jsondiff/pkg/settings"
)

// ErrDifferent is returned by compare --exit-code when the documents differ.
// main exits 1 without printing it, like diff(1).
var ErrDifferent = errors.New("documents differ")

// annotationDefaultsOnly marks commands that must run even when the user
// config file is missing or broken.
const annotationDefaultsOnly = "jsondiff/defaults-only"

// rootOptions holds the persistent flags and the configuration they select.
type rootOptions struct {
	debug      bool
	quiet      bool
	noColor    bool
	configFile string

	cfg        config.Config
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Compare JSON documents line by line",
		Long: `jsondiff compares two JSON (or YAML) documents after re-serializing both
in canonical form. Keys can be ignored by path prefix, regex, dynamic-value
heuristics, value type or a CEL expression before the diff is taken.

Documents are read from files, stdin ("-") or http(s) URLs.`,
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress informational output on stderr")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML config file")

	cmd.AddCommand(
		newCompareCmd(opts),
		newFormatCmd(opts),
		newPathsCmd(opts),
		newFieldsCmd(opts),
		newLocateCmd(opts),
		newFetchCmd(opts),
		newHistoryCmd(opts),
		newExportCmd(opts),
		newExploreCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
		newConfigCmd(opts),
	)
	return cmd
}

// setup runs before every subcommand: logger, configuration and run
// settings all end up in the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var level int8
	if o.debug {
		level = -1
	}
	lgr := logger.Get(level)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)

	var (
		cfg  config.Config
		path string
		err  error
	)
	if cmd.Annotations[annotationDefaultsOnly] != "" {
		cfg, err = config.Default()
	} else {
		cfg, path, err = loadConfig(o.configFile)
	}
	if err != nil {
		return err
	}
	o.cfg, o.configPath = cfg, path
	formatter.SetTheme(formatterColors(cfg.Display.Theme))
	if path != "" {
		lgr.V(1).Info("loaded config", logger.PathKey, path)
	}

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.IsQuiet = o.quiet
	run.NoColor = o.noColor || cfg.Display.NoColor || os.Getenv("NO_COLOR") != ""
	run.Source.ConfigDir = configDir()
	cmd.SetContext(settings.IntoContext(ctx, run))
	return nil
}

// noColor reports whether output to w should be plain: color is disabled
// by flag, config or NO_COLOR, or w is not a terminal.
func noColor(cmd *cobra.Command, w io.Writer) bool {
	if settings.OrDefault(cmd.Context()).NoColor {
		return true
	}
	return !isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// infof writes a status line to stderr unless --quiet is set.
func infof(cmd *cobra.Command, format string, args ...any) {
	if settings.OrDefault(cmd.Context()).IsQuiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// cliVersionString builds the string printed by version and --version.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print jsondiff version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return nil
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as the parent context.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
