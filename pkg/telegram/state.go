package telegram

import (
	"pricecrowd-backend/domain"
	"sync"
	"time"
)

const MaxLogEntries = 200

// WorkerState is the polling worker's mutable state. It is shared with the
// status endpoint, so every access goes through the mutex.
type WorkerState struct {
	mu         sync.Mutex
	offset     int64
	lastToken  string
	hasToken   bool
	lastPollMs int64
	running    bool
	logs       []domain.BotLogEntry
	now        func() time.Time
}

func NewWorkerState() *WorkerState {
	return &WorkerState{
		logs: make([]domain.BotLogEntry, 0, MaxLogEntries),
		now:  time.Now,
	}
}

// ObserveToken records the token used for the next poll. When it differs from
// the previous one the cursor is reset to 0 and true is returned.
func (s *WorkerState) ObserveToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasToken && s.lastToken == token {
		return false
	}
	s.lastToken = token
	s.hasToken = true
	s.offset = 0
	return true
}

func (s *WorkerState) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Advance moves the cursor forward; it never moves backwards.
func (s *WorkerState) Advance(next int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next > s.offset {
		s.offset = next
	}
}

func (s *WorkerState) MarkPoll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPollMs = s.now().UnixMilli()
}

func (s *WorkerState) LastPollMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPollMs
}

func (s *WorkerState) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

func (s *WorkerState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// PushLog appends to the ring, dropping the oldest entries past MaxLogEntries.
func (s *WorkerState) PushLog(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, domain.BotLogEntry{
		TsMs:    s.now().UnixMilli(),
		Level:   level,
		Message: message,
	})
	if overflow := len(s.logs) - MaxLogEntries; overflow > 0 {
		s.logs = append(s.logs[:0], s.logs[overflow:]...)
	}
}

// Logs returns a copy of the ring, oldest first.
func (s *WorkerState) Logs() []domain.BotLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BotLogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}
