// Package formatter renders comparison results and tree listings for the
// terminal.
package formatter

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")
	defaultAdded      = lipgloss.Color("2")
	defaultRemoved    = lipgloss.Color("1")
	defaultContext    = lipgloss.Color("245")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	addedStyle     lipgloss.Style
	removedStyle   lipgloss.Style
	contextStyle   lipgloss.Style
)

// Colors controls the rendered colors. Nil fields fall back to the ANSI 256
// defaults.
type Colors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	Added          color.Color
	Removed        color.Color
	Context        color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

func applyTheme(tc Colors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
	addedStyle = lipgloss.NewStyle().Foreground(orDefault(tc.Added, defaultAdded))
	removedStyle = lipgloss.NewStyle().Foreground(orDefault(tc.Removed, defaultRemoved))
	contextStyle = lipgloss.NewStyle().Faint(true).Foreground(orDefault(tc.Context, defaultContext))
}

// SetTheme overrides the global styles.
func SetTheme(tc Colors) {
	applyTheme(tc)
}

//nolint:gochecknoinits // initialize default theme for package consumers
func init() {
	applyTheme(Colors{})
}

// Preview is a one-line summary of a value for listings: scalars in
// canonical form, containers by size.
func Preview(v jsontree.Value, maxWidth int) string {
	var s string
	switch t := v.(type) {
	case *jsontree.Object:
		s = fmt.Sprintf("{%d keys}", t.Len())
		if t.Len() == 1 {
			s = "{1 key}"
		}
	case []jsontree.Value:
		s = fmt.Sprintf("[%d items]", len(t))
		if len(t) == 1 {
			s = "[1 item]"
		}
	default:
		s = jsontree.Format(v)
	}
	return truncate(s, maxWidth)
}

// truncate shortens s to maxLen display cells, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen {
		return s
	}
	target := maxLen - 3
	suffix := "..."
	if maxLen < 3 {
		target, suffix = maxLen, ""
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > target {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + suffix
}

// TerminalWidth returns the width of stdout, or 120 when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
