package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/hray3182/diditakeit/internal/notify"
)

// Session holds process-lifetime state that is never persisted: delivery
// credentials entered for this session only, and the bridge sync flag.
type Session struct {
	mu      sync.RWMutex
	creds   notify.Credentials
	syncing atomic.Bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Credentials() notify.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *Session) SetCredentials(creds notify.Credentials) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}

// BeginSync marks a bridge exchange as running. It returns false when one
// is already in progress.
func (s *Session) BeginSync() bool {
	return s.syncing.CompareAndSwap(false, true)
}

func (s *Session) EndSync() {
	s.syncing.Store(false)
}

func (s *Session) Syncing() bool {
	return s.syncing.Load()
}
