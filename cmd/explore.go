package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/ui"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

func newExploreCmd(root *rootOptions) *cobra.Command {
	var (
		inputFormat string
		keymap      string
		start       string
		title       string
	)
	cmd := &cobra.Command{
		Use:   "explore [FILE]",
		Short: "Browse a document's fields interactively",
		Long: `Open a terminal navigator over a document. Drill into fields with enter,
go back with backspace, jump to a breadcrumb with 1-9, and watch the source
excerpt follow the selected key. Press ? for all bindings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsValidKeyMode(keymap) {
				return fmt.Errorf("invalid --keymap %q (expected one of %s)", keymap, strings.Join(validKeyModeNames(), ", "))
			}
			format, err := jsontree.ParseInputFormat(inputFormat)
			if err != nil {
				return err
			}
			arg := singleDocumentArg(args)
			reader := newDocumentReader(cmd, root)
			text, err := reader.Read(cmd.Context(), arg)
			closeErr := reader.Close()
			if err != nil {
				return err
			}
			if closeErr != nil {
				logger.FromContext(cmd.Context()).V(1).Info("closing history failed", "error", closeErr.Error())
			}
			source, err := explorerSource(text, format)
			if err != nil {
				return err
			}
			if title == "" && arg != stdinArg {
				title = arg
			}

			opts := ui.Options{
				Title:        title,
				NoColor:      noColor(cmd, os.Stdout),
				KeyMode:      ui.KeyMode(keymap),
				Theme:        uiTheme(root.cfg.Display.Theme),
				VisibleLines: root.cfg.Display.VisibleLines,
				Start:        pathSteps(jsontree.ParsePath(start)),
			}
			progOpts, cleanup := programOptions(arg == stdinArg)
			defer cleanup()
			return ui.Run(cmd.Context(), source, opts, progOpts...)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&inputFormat, "format", "json", "input format: json|yaml|auto")
	fs.StringVar(&keymap, "keymap", string(ui.DefaultKeyMode), "key bindings: "+strings.Join(validKeyModeNames(), "|"))
	fs.StringVarP(&start, "path", "p", "", "open at this dotted path")
	fs.StringVar(&title, "title", "", "header title (defaults to the file name)")
	return cmd
}

func validKeyModeNames() []string {
	out := make([]string, len(ui.ValidKeyModes))
	for i, m := range ui.ValidKeyModes {
		out[i] = string(m)
	}
	return out
}

// explorerSource returns JSON text for the navigator. The locator works on
// JSON source, so YAML input is shown in canonical JSON form.
func explorerSource(text string, format jsontree.InputFormat) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if format != jsontree.FormatYAML {
		if _, err := jsontree.Parse(text); err == nil {
			return text, nil
		}
	}
	v, err := jsontree.Load(text, format)
	if err != nil {
		return "", err
	}
	return jsontree.Format(v) + "\n", nil
}

// programOptions reopens the terminal for keyboard input when the document
// came from a pipe. Without a terminal device the program keeps stdin.
func programOptions(piped bool) ([]tea.ProgramOption, func()) {
	if !piped {
		return nil, func() {}
	}
	in, out, err := openTerminalIO()
	if err != nil {
		return nil, func() {}
	}
	opts := []tea.ProgramOption{tea.WithInput(in)}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts, func() {
		_ = in.Close()
		if out != nil && out != in {
			_ = out.Close()
		}
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)
	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, nil
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}
