package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Alarm forwards overdue signals to a running program. Signals are dropped
// while no program is attached.
type Alarm struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewAlarm() *Alarm {
	return &Alarm{}
}

func (a *Alarm) Attach(p *tea.Program) {
	a.mu.Lock()
	a.program = p
	a.mu.Unlock()
}

func (a *Alarm) send(msg tea.Msg) {
	a.mu.Lock()
	p := a.program
	a.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (a *Alarm) PlayAlarm() {
	a.send(BellMsg{})
}

func (a *Alarm) SetAttention(on bool) {
	a.send(AttentionMsg{On: on})
}
