// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 terminal escape sequence when no clipboard tool is available.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// Method reports how Write delivered the text.
type Method string

const (
	MethodSystem Method = "system"
	MethodOSC52  Method = "osc52"
)

// ErrUnavailable is returned when neither the system clipboard nor a
// terminal for OSC 52 is available.
var ErrUnavailable = errors.New("clipboard unavailable")

// Swappable for tests; see Stub.
var (
	systemWriteFn = clipboard.WriteAll
	systemReadFn  = clipboard.ReadAll
	unsupportedFn = func() bool { return clipboard.Unsupported }
	terminalFn    = func() (io.Writer, bool) { return os.Stderr, term.IsTerminal(int(os.Stderr.Fd())) }
)

// Write copies text. The system clipboard is tried first; if it is missing
// or fails, the text is sent to the terminal as an OSC 52 sequence.
func Write(text string) (Method, error) {
	var sysErr error
	if unsupportedFn() {
		sysErr = errors.New("no clipboard utility found")
	} else if sysErr = systemWriteFn(text); sysErr == nil {
		return MethodSystem, nil
	}

	w, ok := terminalFn()
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, sysErr)
	}
	if _, err := io.WriteString(w, OSC52(text)); err != nil {
		return "", fmt.Errorf("%w: osc52: %v", ErrUnavailable, err)
	}
	return MethodOSC52, nil
}

// Read returns the system clipboard contents. OSC 52 reads are not
// attempted since most terminals disable them.
func Read() (string, error) {
	if unsupportedFn() {
		return "", fmt.Errorf("%w: no clipboard utility found", ErrUnavailable)
	}
	s, err := systemReadFn()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s, nil
}

// OSC52 returns the escape sequence that asks the terminal to set the
// clipboard selection to text.
func OSC52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}

// Stub replaces the system clipboard with an in-memory buffer and the
// terminal with w (nil means no terminal). It returns a restore function.
func Stub(w io.Writer) (restore func()) {
	origWrite, origRead, origUnsupported, origTerm := systemWriteFn, systemReadFn, unsupportedFn, terminalFn
	var buf string
	systemWriteFn = func(s string) error { buf = s; return nil }
	systemReadFn = func() (string, error) { return buf, nil }
	unsupportedFn = func() bool { return false }
	terminalFn = func() (io.Writer, bool) { return w, w != nil }
	return func() {
		systemWriteFn, systemReadFn, unsupportedFn, terminalFn = origWrite, origRead, origUnsupported, origTerm
	}
}
