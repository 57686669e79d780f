package ui

// KeyMode represents the keybinding mode for the explorer.
type KeyMode string

const (
	// KeyModeVim enables vim-style keybindings (j/k/h/l navigation).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs enables emacs-style ctrl bindings.
	KeyModeEmacs KeyMode = "emacs"
	// KeyModeFunction disables single-letter shortcuts; only arrows, enter
	// and function keys work.
	KeyModeFunction KeyMode = "function"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs, KeyModeFunction}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Action is what a key press asks the explorer to do.
type Action string

const (
	ActionNone      Action = ""
	ActionDown      Action = "down"
	ActionUp        Action = "up"
	ActionTop       Action = "top"
	ActionBottom    Action = "bottom"
	ActionEnter     Action = "enter"
	ActionBack      Action = "back"
	ActionRoot      Action = "root"
	ActionToggleAll Action = "toggle_all"
	ActionCopyPath  Action = "copy_path"
	ActionCopyValue Action = "copy_value"
	ActionGoto      Action = "goto"
	ActionHelp      Action = "help"
	ActionQuit      Action = "quit"
	actionPendingG  Action = "pending_g" // waiting for the second g of gg
)

// commonKeyBindings work in every mode.
var commonKeyBindings = map[string]Action{
	"down":      ActionDown,
	"up":        ActionUp,
	"home":      ActionTop,
	"end":       ActionBottom,
	"enter":     ActionEnter,
	"right":     ActionEnter,
	"left":      ActionBack,
	"backspace": ActionBack,
	"esc":       ActionBack,
	"f1":        ActionHelp,
	"f3":        ActionGoto,
	"f5":        ActionToggleAll,
	"f6":        ActionCopyPath,
	"f7":        ActionCopyValue,
	"f10":       ActionQuit,
	"ctrl+c":    ActionQuit,
}

// VimKeyBindings maps keys to actions for vim mode.
var VimKeyBindings = map[string]Action{
	"j": ActionDown,
	"k": ActionUp,
	"h": ActionBack,
	"l": ActionEnter,
	"g": actionPendingG,
	"G": ActionBottom,
	"0": ActionRoot,
	"a": ActionToggleAll,
	"y": ActionCopyPath,
	"Y": ActionCopyValue,
	":": ActionGoto,
	"/": ActionGoto,
	"?": ActionHelp,
	"q": ActionQuit,
}

// EmacsKeyBindings maps keys to actions for emacs mode.
var EmacsKeyBindings = map[string]Action{
	"ctrl+n": ActionDown,
	"ctrl+p": ActionUp,
	"ctrl+b": ActionBack,
	"ctrl+f": ActionEnter,
	"alt+<":  ActionTop,
	"alt+>":  ActionBottom,
	"ctrl+a": ActionToggleAll,
	"alt+w":  ActionCopyPath,
	"ctrl+w": ActionCopyValue,
	"ctrl+g": ActionRoot,
	"alt+g":  ActionGoto,
	"ctrl+q": ActionQuit,
}

// actionFor resolves a key string for the model's key mode, tracking the
// vim gg sequence.
func (m *Model) actionFor(key string) Action {
	if a, ok := commonKeyBindings[key]; ok {
		m.pendingKey = ""
		return a
	}

	var table map[string]Action
	switch m.KeyMode {
	case KeyModeEmacs:
		table = EmacsKeyBindings
	case KeyModeFunction:
		return ActionNone
	default:
		table = VimKeyBindings
	}

	if m.pendingKey == "g" {
		m.pendingKey = ""
		if key == "g" {
			return ActionTop
		}
	}
	a, ok := table[key]
	if !ok {
		return ActionNone
	}
	if a == actionPendingG {
		m.pendingKey = "g"
		return ActionNone
	}
	return a
}

// helpLines describes the bindings of a mode, for the help overlay.
func helpLines(mode KeyMode) [][2]string {
	switch mode {
	case KeyModeEmacs:
		return [][2]string{
			{"ctrl+n / ctrl+p", "move down / up"},
			{"ctrl+f / enter", "open field"},
			{"ctrl+b / backspace", "go to parent"},
			{"1-9", "jump to breadcrumb"},
			{"ctrl+g", "back to root"},
			{"ctrl+a", "show all / collapse fields"},
			{"alt+w / ctrl+w", "copy path / value"},
			{"alt+g", "go to path (tab completes)"},
			{"ctrl+q", "quit"},
		}
	case KeyModeFunction:
		return [][2]string{
			{"up / down", "move"},
			{"enter / right", "open field"},
			{"backspace / left", "go to parent"},
			{"1-9", "jump to breadcrumb"},
			{"f5", "show all / collapse fields"},
			{"f6 / f7", "copy path / value"},
			{"f3", "go to path (tab completes)"},
			{"f10", "quit"},
		}
	default:
		return [][2]string{
			{"j / k", "move down / up"},
			{"gg / G", "first / last field"},
			{"l / enter", "open field"},
			{"h / backspace", "go to parent"},
			{"1-9", "jump to breadcrumb"},
			{"0", "back to root"},
			{"a", "show all / collapse fields"},
			{"y / Y", "copy path / value"},
			{": or /", "go to path (tab completes)"},
			{"q", "quit"},
		}
	}
}
