package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/locator"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
)

const crumbSeparator = " › "

func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the screen content as a string.
func (m *Model) Render() string {
	if m.HelpVisible {
		return m.renderHelp()
	}
	var b strings.Builder
	b.WriteString(m.styles.header.Render(m.fit(" " + m.breadcrumbText() + " ")))
	b.WriteString("\n\n")
	m.renderFields(&b)
	b.WriteString("\n")
	m.renderExcerpt(&b)
	b.WriteString("\n")
	b.WriteString(m.Status.view(m.styles))
	b.WriteString("\n")
	if m.InputFocused {
		m.renderPrompt(&b)
		b.WriteString(m.styles.muted.Render(m.fit("tab complete  enter go  esc cancel")))
		return b.String()
	}
	b.WriteString(m.styles.muted.Render(m.fit("? help  1-9 breadcrumb  q quit")))
	return b.String()
}

// breadcrumbText renders "root › 1:a › 2:b"; the numbers are the jump keys.
func (m *Model) breadcrumbText() string {
	parts := []string{"root"}
	if m.Title != "" {
		parts[0] = m.Title
	}
	for i, s := range m.Crumbs.Steps() {
		parts = append(parts, fmt.Sprintf("%d:%s", i+1, s))
	}
	return strings.Join(parts, crumbSeparator)
}

func (m *Model) renderFields(b *strings.Builder) {
	visible, hidden := navigator.VisibleFields(m.Keys, m.Expanded)
	if len(visible) == 0 {
		cur, _ := navigator.Resolve(m.Root, m.CurrentPath())
		b.WriteString(m.styles.muted.Render("  (no fields) "))
		b.WriteString(m.styles.value.Render(formatter.Preview(cur, max(m.Width-16, 10))))
		b.WriteString("\n")
		return
	}

	keyWidth := 0
	for _, k := range visible {
		keyWidth = max(keyWidth, runewidth.StringWidth(k))
	}
	keyWidth = min(keyWidth, max(m.Width/3, 8))

	steps := m.Crumbs.Steps()
	for i, k := range visible {
		child, _ := navigator.Resolve(m.Root, navigator.StepsToPath(m.Root, append(steps, k)))
		name := runewidth.FillRight(runewidth.Truncate(k, keyWidth, "…"), keyWidth)
		preview := formatter.Preview(child, max(m.Width-keyWidth-6, 8))
		if i == m.Cursor {
			b.WriteString(m.styles.selected.Render("> " + name + "  " + preview))
		} else {
			b.WriteString("  " + m.styles.key.Render(name) + "  " + m.styles.value.Render(preview))
		}
		b.WriteString("\n")
	}
	switch {
	case hidden > 0:
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("  … %d more field%s (show all)", hidden, plural(hidden))))
		b.WriteString("\n")
	case m.Expanded && len(m.Keys) > navigator.MaxVisibleFields:
		b.WriteString(m.styles.muted.Render("  (collapse)"))
		b.WriteString("\n")
	}
}

// renderExcerpt shows VisibleLines lines of the source centered on the
// located key, the way the text panel scrolls to a selected field.
func (m *Model) renderExcerpt(b *strings.Builder) {
	if !m.HasLocated {
		return
	}
	lines := strings.Split(m.Source, "\n")
	top := int(locator.ScrollTarget(m.Source, m.Located, 1, m.VisibleLines))
	top = min(top, max(len(lines)-m.VisibleLines, 0))
	target := m.Located.Line(m.Source)
	numWidth := len(itoa(len(lines)))

	lineStart := 0
	for i := 0; i < top; i++ {
		lineStart += len(lines[i]) + 1
	}
	for i := top; i < len(lines) && i < top+m.VisibleLines; i++ {
		num := fmt.Sprintf("%*d ", numWidth, i+1)
		text := lines[i]
		if i == target {
			s, e := m.Located.Start-lineStart, min(m.Located.End-lineStart, len(text))
			text = text[:s] + m.styles.highlight.Render(text[s:e]) + text[e:]
		}
		b.WriteString(m.styles.muted.Render(num))
		b.WriteString(text)
		b.WriteString("\n")
		lineStart += len(lines[i]) + 1
	}
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render(m.fit(" Help ")))
	b.WriteString("\n\n")
	for _, l := range helpLines(m.KeyMode) {
		b.WriteString("  ")
		b.WriteString(m.styles.key.Render(runewidth.FillRight(l[0], 20)))
		b.WriteString(m.styles.value.Render(l[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("esc to close"))
	return b.String()
}

func (m *Model) fit(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, m.Width, "…"), m.Width)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
