package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the explorer on source and blocks until the user quits or ctx
// is cancelled. Zero width or height is detected from the terminal.
func Run(ctx context.Context, source string, opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if opts.Width <= 0 {
				opts.Width = w
			}
			if opts.Height <= 0 {
				opts.Height = h
			}
		}
	}
	m, err := New(source, opts)
	if err != nil {
		return err
	}
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	_, err = tea.NewProgram(m, progOpts...).Run()
	return err
}
