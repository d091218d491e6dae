// Package alarm provides the attention collaborators driven by the overdue
// evaluator.
package alarm

import (
	"io"
	"log"
	"sync"

	"github.com/hray3182/diditakeit/internal/overdue"
)

// Terminal rings the terminal bell and logs attention changes.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	sound     string
	attention bool
}

func NewTerminal(out io.Writer, sound string) *Terminal {
	return &Terminal{out: out, sound: sound}
}

func (t *Terminal) SetSound(sound string) {
	t.mu.Lock()
	t.sound = sound
	t.mu.Unlock()
}

func (t *Terminal) Sound() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sound
}

func (t *Terminal) PlayAlarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sound == "none" || t.out == nil {
		return
	}
	if _, err := io.WriteString(t.out, "\a"); err != nil {
		log.Printf("Failed to play alarm: %v", err)
	}
}

func (t *Terminal) SetAttention(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attention == on {
		return
	}
	t.attention = on
	if on {
		log.Println("[Alarm] Tasks overdue")
	} else {
		log.Println("[Alarm] All clear")
	}
}

func (t *Terminal) Attention() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attention
}

// Multi fans every call out to each alarm in order.
type Multi []overdue.Alarm

func (m Multi) PlayAlarm() {
	for _, a := range m {
		a.PlayAlarm()
	}
}

func (m Multi) SetAttention(on bool) {
	for _, a := range m {
		a.SetAttention(on)
	}
}
