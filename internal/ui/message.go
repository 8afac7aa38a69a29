package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/trackdl/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressEvent MsgKind = iota
	MsgDownloadFinished
)

// progressEventMsg is the constructor for [MsgProgressEvent]
func progressEventMsg(ev tasks.ProgressEvent) Msg {
	return Msg{kind: MsgProgressEvent, data: ev}
}

// downloadFinishedMsg is the constructor for [MsgDownloadFinished]
func downloadFinishedMsg(result *tasks.Result, err error) Msg {
	return Msg{
		kind: MsgDownloadFinished,
		data: struct {
			result *tasks.Result
			err    error
		}{result, err},
	}
}
