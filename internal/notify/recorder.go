package notify

import (
	"context"
	"sync"
)

// Sent is one message captured by Recorder.
type Sent struct {
	Creds Credentials
	Text  string
}

// Recorder is an in-memory Notifier for tests and dry runs.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

func (r *Recorder) Send(_ context.Context, creds Credentials, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, Sent{Creds: creds, Text: text})
	return nil
}

func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
