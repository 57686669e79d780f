// Package ui is the terminal field navigator: it walks a JSON document by
// breadcrumbs, lists the child fields of the current node and shows where
// the selected key sits in the source text.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/jsondiff/internal/clipboard"
	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/completion"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/locator"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
)

const (
	defaultWidth        = 80
	defaultHeight       = 24
	defaultVisibleLines = 7
)

// Options configures a Model.
type Options struct {
	Title        string
	NoColor      bool
	KeyMode      KeyMode
	Theme        Theme
	VisibleLines int // height of the source excerpt
	Width        int
	Height       int
	// Start is the initial breadcrumb path.
	Start []string
}

// Model is the bubbletea model of the explorer.
type Model struct {
	Title  string
	Source string
	Root   jsontree.Value

	Crumbs   navigator.Breadcrumbs
	Keys     []string
	Cursor   int
	Expanded bool

	// Located is the span of the last opened key in Source.
	Located    locator.Span
	HasLocated bool

	Status      StatusModel
	HelpVisible bool

	// PathInput is the goto prompt; Suggestions complete it from every
	// path in the document.
	PathInput       textinput.Model
	InputFocused    bool
	Suggestions     []completion.Completion
	SuggestionIndex int

	KeyMode      KeyMode
	NoColor      bool
	VisibleLines int
	Width        int
	Height       int

	pendingKey string
	styles     styles
	copyFn     func(string) (clipboard.Method, error)
	engine     *completion.Engine
}

// New parses source and returns a model positioned at opts.Start. Empty
// source is an empty object.
func New(source string, opts Options) (*Model, error) {
	root, err := compare.Parse(source, jsontree.FormatJSON, "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		source = "{}"
	}
	m := &Model{
		Title:        opts.Title,
		Source:       source,
		Root:         root,
		KeyMode:      opts.KeyMode,
		NoColor:      opts.NoColor,
		VisibleLines: opts.VisibleLines,
		Width:        opts.Width,
		Height:       opts.Height,
		styles:       newStyles(opts.Theme, opts.NoColor),
		copyFn:       clipboard.Write,
		PathInput:    newPathInput(),
	}
	if !IsValidKeyMode(string(m.KeyMode)) {
		m.KeyMode = DefaultKeyMode
	}
	if m.VisibleLines <= 0 {
		m.VisibleLines = defaultVisibleLines
	}
	if m.Width <= 0 {
		m.Width = defaultWidth
	}
	if m.Height <= 0 {
		m.Height = defaultHeight
	}
	m.navigate(navigator.NewBreadcrumbs(opts.Start...))
	if m.Crumbs.Len() > 0 {
		m.locate(m.Crumbs.Steps())
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.PathInput.SetWidth(max(m.Width-8, 10))
		return m, nil

	case tea.KeyPressMsg:
		if m.InputFocused {
			return m.updatePrompt(msg)
		}
		key := msg.String()
		if m.HelpVisible {
			switch key {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "?", "f1", "q", "enter":
				m.HelpVisible = false
			}
			return m, nil
		}
		if i, ok := crumbDigit(key); ok {
			m.jumpTo(i)
			return m, nil
		}
		return m.apply(m.actionFor(key))
	}
	return m, nil
}

// crumbDigit maps 1-9 to a breadcrumb index.
func crumbDigit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0]-'1'), true
}

func (m *Model) apply(a Action) (tea.Model, tea.Cmd) {
	visible := m.visibleKeys()
	switch a {
	case ActionDown:
		if m.Cursor < len(visible)-1 {
			m.Cursor++
		}
	case ActionUp:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case ActionTop:
		m.Cursor = 0
	case ActionBottom:
		m.Cursor = max(len(visible)-1, 0)
	case ActionEnter:
		m.enterSelected()
	case ActionBack:
		m.back()
	case ActionRoot:
		m.navigate(m.Crumbs.Reset())
		m.HasLocated = false
	case ActionToggleAll:
		m.Expanded = !m.Expanded
		m.Cursor = min(m.Cursor, max(len(m.visibleKeys())-1, 0))
	case ActionCopyPath:
		m.copySelected(false)
	case ActionCopyValue:
		m.copySelected(true)
	case ActionGoto:
		return m, m.openPrompt()
	case ActionHelp:
		m.HelpVisible = true
	case ActionQuit:
		return m, tea.Quit
	}
	return m, nil
}

// navigate moves to crumbs and reloads the field list.
func (m *Model) navigate(crumbs navigator.Breadcrumbs) {
	m.Crumbs = crumbs
	m.Keys = navigator.ChildKeys(m.Root, crumbs.Steps())
	m.Cursor = 0
	m.Expanded = false
}

func (m *Model) visibleKeys() []string {
	visible, _ := navigator.VisibleFields(m.Keys, m.Expanded)
	return visible
}

// SelectedKey is the key under the cursor.
func (m *Model) SelectedKey() (string, bool) {
	visible := m.visibleKeys()
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return "", false
	}
	return visible[m.Cursor], true
}

func (m *Model) enterSelected() {
	key, ok := m.SelectedKey()
	if !ok {
		return
	}
	next := m.Crumbs.Enter(key)
	m.navigate(next)
	m.locate(next.Steps())
}

func (m *Model) back() {
	if m.Crumbs.Len() == 0 {
		return
	}
	left := m.Crumbs.Steps()[m.Crumbs.Len()-1]
	m.navigate(m.Crumbs.Up())
	if m.Crumbs.Len() > 0 {
		m.locate(m.Crumbs.Steps())
	} else {
		m.HasLocated = false
	}
	// keep the cursor on the field we just left
	for i, k := range m.Keys {
		if k == left {
			if i >= navigator.MaxVisibleFields {
				m.Expanded = true
			}
			m.Cursor = i
			break
		}
	}
}

func (m *Model) jumpTo(i int) {
	if i >= m.Crumbs.Len() {
		return
	}
	m.navigate(m.Crumbs.JumpTo(i))
	m.locate(m.Crumbs.Steps())
}

// locate points Located at the key of steps. Array elements have no key;
// for those the enclosing key stays highlighted.
func (m *Model) locate(steps []string) {
	path := navigator.StepsToPath(m.Root, steps)
	for len(path) > 0 {
		if span, ok := locator.Locate(m.Source, path); ok {
			m.Located, m.HasLocated = span, true
			m.Status = m.Status.set(StatusInfo, fmt.Sprintf("%s at line %d", path, span.Line(m.Source)+1))
			return
		}
		path = path[:len(path)-1]
	}
	m.HasLocated = false
	m.Status = m.Status.set(StatusInfo, "")
}

// CurrentPath is the typed path of the current node.
func (m *Model) CurrentPath() jsontree.Path {
	return navigator.StepsToPath(m.Root, m.Crumbs.Steps())
}

func (m *Model) copySelected(value bool) {
	steps := m.Crumbs.Steps()
	if key, ok := m.SelectedKey(); ok {
		steps = append(steps, key)
	}
	path := navigator.StepsToPath(m.Root, steps)

	text := path.String()
	what := "path"
	if value {
		v, err := navigator.Resolve(m.Root, path)
		if err != nil {
			m.Status = m.Status.set(StatusError, err.Error())
			return
		}
		text, what = jsontree.Format(v), "value"
	}
	if text == "" {
		m.Status = m.Status.set(StatusError, "nothing to copy at the root")
		return
	}
	method, err := m.copyFn(text)
	if err != nil {
		m.Status = m.Status.set(StatusError, "copy failed: "+err.Error())
		return
	}
	m.Status = m.Status.set(StatusSuccess, "copied "+what+" ("+string(method)+"): "+summarize(text))
}

func summarize(s string) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), 40, "...")
}

func itoa(i int) string { return strconv.Itoa(i) }
