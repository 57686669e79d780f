package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the explorer colors. Nil fields fall back to DefaultTheme.
type Theme struct {
	HeaderFG      color.Color // breadcrumb bar text
	HeaderBG      color.Color // breadcrumb bar background
	KeyColor      color.Color // field names
	ValueColor    color.Color // value previews
	SelectedFG    color.Color
	SelectedBG    color.Color
	MutedColor    color.Color // hints, line numbers, collapsed counts
	Highlight     color.Color // located key in the source excerpt
	StatusError   color.Color
	StatusSuccess color.Color
}

// DefaultTheme is the built-in ANSI 256 palette.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:      lipgloss.Color("12"),
		HeaderBG:      lipgloss.Color("236"),
		KeyColor:      lipgloss.Color("14"),
		ValueColor:    lipgloss.Color("248"),
		SelectedFG:    lipgloss.Color("0"),
		SelectedBG:    lipgloss.Color("14"),
		MutedColor:    lipgloss.Color("242"),
		Highlight:     lipgloss.Color("11"),
		StatusError:   lipgloss.Color("9"),
		StatusSuccess: lipgloss.Color("10"),
	}
}

func (t Theme) withDefaults() Theme {
	def := DefaultTheme()
	pick := func(c, d color.Color) color.Color {
		if c == nil {
			return d
		}
		return c
	}
	return Theme{
		HeaderFG:      pick(t.HeaderFG, def.HeaderFG),
		HeaderBG:      pick(t.HeaderBG, def.HeaderBG),
		KeyColor:      pick(t.KeyColor, def.KeyColor),
		ValueColor:    pick(t.ValueColor, def.ValueColor),
		SelectedFG:    pick(t.SelectedFG, def.SelectedFG),
		SelectedBG:    pick(t.SelectedBG, def.SelectedBG),
		MutedColor:    pick(t.MutedColor, def.MutedColor),
		Highlight:     pick(t.Highlight, def.Highlight),
		StatusError:   pick(t.StatusError, def.StatusError),
		StatusSuccess: pick(t.StatusSuccess, def.StatusSuccess),
	}
}

type styles struct {
	header, key, value, selected, muted, highlight, errorText, success lipgloss.Style
}

// newStyles builds render styles. With noColor every style is plain; the
// cursor marker alone shows the selection.
func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			header: plain, key: plain, value: plain, selected: plain,
			muted: plain, highlight: plain, errorText: plain, success: plain,
		}
	}
	t = t.withDefaults()
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(t.HeaderFG).Background(t.HeaderBG),
		key:       lipgloss.NewStyle().Foreground(t.KeyColor),
		value:     lipgloss.NewStyle().Foreground(t.ValueColor),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(t.SelectedFG).Background(t.SelectedBG),
		muted:     lipgloss.NewStyle().Faint(true).Foreground(t.MutedColor),
		highlight: lipgloss.NewStyle().Bold(true).Foreground(t.Highlight),
		errorText: lipgloss.NewStyle().Foreground(t.StatusError),
		success:   lipgloss.NewStyle().Foreground(t.StatusSuccess),
	}
}
