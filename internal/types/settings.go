package types

import "sync"

// Settings holds the values that can change while the bot runs.
type Settings struct {
	mu      sync.RWMutex
	prefix  string
	sendDMs bool
}

func NewSettings(prefix string, sendDMs bool) *Settings {
	if prefix == "" {
		prefix = DefaultCommandPrefix
	}
	return &Settings{prefix: prefix, sendDMs: sendDMs}
}

func (s *Settings) Prefix() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefix
}

func (s *Settings) SetPrefix(prefix string) {
	s.mu.Lock()
	s.prefix = prefix
	s.mu.Unlock()
}

func (s *Settings) SendDMs() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sendDMs
}

func (s *Settings) SetSendDMs(enabled bool) {
	s.mu.Lock()
	s.sendDMs = enabled
	s.mu.Unlock()
}
