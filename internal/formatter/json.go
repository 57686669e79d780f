package formatter

import (
	"github.com/tidwall/pretty"
)

// ColorJSON adds terminal colors to already formatted JSON text.
func ColorJSON(text string, noColor bool) string {
	if noColor {
		return text
	}
	return string(pretty.Color([]byte(text), pretty.TerminalStyle))
}
