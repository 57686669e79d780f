package ui

import (
	"strings"
)

// StatusType selects how the status line is colored.
type StatusType string

const (
	StatusInfo    StatusType = ""
	StatusError   StatusType = "error"
	StatusSuccess StatusType = "success"
)

// StatusModel is the one-line message under the field list.
type StatusModel struct {
	Message string
	Type    StatusType
}

func (s StatusModel) set(t StatusType, msg string) StatusModel {
	return StatusModel{Message: strings.TrimSpace(msg), Type: t}
}

func (s StatusModel) view(st styles) string {
	switch s.Type {
	case StatusError:
		return st.errorText.Render(s.Message)
	case StatusSuccess:
		return st.success.Render(s.Message)
	default:
		return st.muted.Render(s.Message)
	}
}
