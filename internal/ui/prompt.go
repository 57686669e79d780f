package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jsondiff/internal/completion"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
)

// maxSuggestions is how many completions the prompt lists under the input.
const maxSuggestions = 6

func newPathInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "path, e.g. items[0].id"
	ti.CharLimit = 500
	ti.SetWidth(defaultWidth - 8)
	ti.Prompt = ""
	return ti
}

// openPrompt focuses the path input, prefilled with the current path.
func (m *Model) openPrompt() tea.Cmd {
	m.InputFocused = true
	start := m.CurrentPath().String()
	m.PathInput.SetValue(start)
	m.PathInput.SetCursor(len(start))
	m.refreshSuggestions()
	return m.PathInput.Focus()
}

func (m *Model) closePrompt() {
	m.InputFocused = false
	m.PathInput.Blur()
	m.Suggestions = nil
	m.SuggestionIndex = 0
}

// updatePrompt handles keys while the path input has focus.
func (m *Model) updatePrompt(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closePrompt()
		return m, nil
	case "tab":
		if len(m.Suggestions) > 0 {
			text := m.Suggestions[m.SuggestionIndex].Text
			m.PathInput.SetValue(text)
			m.PathInput.SetCursor(len(text))
			m.refreshSuggestions()
		}
		return m, nil
	case "down", "ctrl+n":
		if m.SuggestionIndex < len(m.Suggestions)-1 {
			m.SuggestionIndex++
		}
		return m, nil
	case "up", "ctrl+p":
		if m.SuggestionIndex > 0 {
			m.SuggestionIndex--
		}
		return m, nil
	case "enter":
		if err := m.gotoPath(m.PathInput.Value()); err != nil {
			m.Status = m.Status.set(StatusError, err.Error())
			return m, nil
		}
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.PathInput, cmd = m.PathInput.Update(msg)
	m.refreshSuggestions()
	return m, cmd
}

func (m *Model) refreshSuggestions() {
	if m.engine == nil {
		m.engine = completion.NewEngine(navigator.ExtractPaths(m.Root))
	}
	m.Suggestions = m.engine.Suggest(m.PathInput.Value(), maxSuggestions)
	m.SuggestionIndex = 0
}

// gotoPath moves the navigator to text, a dotted/bracketed path. The empty
// path is the root.
func (m *Model) gotoPath(text string) error {
	path := jsontree.ParsePath(strings.TrimSpace(text))
	if _, err := navigator.Resolve(m.Root, path); err != nil {
		return err
	}
	path = navigator.Normalize(m.Root, path)
	steps := make([]string, len(path))
	for i, seg := range path {
		if seg.IsIndex {
			steps[i] = itoa(seg.Index)
		} else {
			steps[i] = seg.Key
		}
	}
	m.navigate(navigator.NewBreadcrumbs(steps...))
	if len(steps) > 0 {
		m.locate(steps)
	} else {
		m.HasLocated = false
		m.Status = m.Status.set(StatusInfo, "")
	}
	return nil
}

func (m *Model) renderPrompt(b *strings.Builder) {
	b.WriteString(m.styles.key.Render("goto: "))
	b.WriteString(m.PathInput.View())
	b.WriteString("\n")
	for i, s := range m.Suggestions {
		if i == m.SuggestionIndex {
			b.WriteString(m.styles.selected.Render("> " + s.Display))
		} else {
			b.WriteString("  " + m.styles.muted.Render(s.Display))
		}
		b.WriteString("\n")
	}
}
