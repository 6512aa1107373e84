package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type bannerKind int

const (
	bannerNone bannerKind = iota
	bannerSuccess
	bannerDanger
	bannerInfo
)

// bannerTimeoutMsg asks the page to drop banner seq. A newer banner or a
// page change makes it stale, in which case it is ignored.
type bannerTimeoutMsg struct {
	mount int
	seq   int
}

func (m bannerTimeoutMsg) mountID() int { return m.mount }

// flash is the dismissible status banner every page carries.
type flash struct {
	mount int
	seq   int
	kind  bannerKind
	text  string
}

// set shows text; with ttl > 0 it also schedules its own removal.
func (f *flash) set(kind bannerKind, text string, ttl time.Duration) tea.Cmd {
	f.seq++
	f.kind, f.text = kind, text
	if ttl <= 0 {
		return nil
	}
	mount, seq := f.mount, f.seq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return bannerTimeoutMsg{mount: mount, seq: seq}
	})
}

func (f *flash) dismiss() {
	f.seq++
	f.kind, f.text = bannerNone, ""
}

func (f *flash) expire(msg bannerTimeoutMsg) {
	if msg.seq == f.seq {
		f.dismiss()
	}
}

func (f *flash) visible() bool { return f.kind != bannerNone }

func (f *flash) View() string {
	if !f.visible() {
		return ""
	}
	switch f.kind {
	case bannerSuccess:
		return bannerBase.BorderForeground(lipgloss.Color("42")).Render(successStyle.Render(f.text))
	case bannerDanger:
		return bannerBase.BorderForeground(lipgloss.Color("9")).Render(errorStyle.Render(f.text))
	default:
		return bannerBase.BorderForeground(lipgloss.Color("214")).Render(warnStyle.Render(f.text))
	}
}
