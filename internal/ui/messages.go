package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/orbviz/internal/session"
)

type frameMsg time.Time

type sessionEventMsg session.Event

type startDoneMsg struct {
	label string
	err   error
}

type browserSelectedMsg struct {
	loc string
}

type browserCancelledMsg struct{}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

// startCmd runs the blocking part of a session start off the update loop.
func startCmd(ctx context.Context, ctrl *session.Controller, src session.Source) tea.Cmd {
	return func() tea.Msg {
		return startDoneMsg{label: src.Label, err: ctrl.Start(ctx, src)}
	}
}
