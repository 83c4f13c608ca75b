package daemon

import (
	"sync"
	"time"
	"treesync/internal/syncer"
)

type PassState struct {
	mu          sync.RWMutex
	StartedAt   time.Time
	Running     bool
	Reason      string
	Passes      int
	Failed      int
	LastRun     *time.Time
	LastSummary *syncer.Summary
	LastError   string
}

type Snapshot struct {
	StartedAt   time.Time       `json:"started_at"`
	Running     bool            `json:"running"`
	Reason      string          `json:"reason,omitempty"`
	Passes      int             `json:"passes"`
	Failed      int             `json:"failed"`
	LastRun     *time.Time      `json:"last_run,omitempty"`
	LastSummary *syncer.Summary `json:"last_summary,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

func NewPassState() *PassState {
	return &PassState{StartedAt: time.Now()}
}

func (s *PassState) Begin(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Running = true
	s.Reason = reason
}

func (s *PassState) Finish(summary syncer.Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Running = false
	s.Reason = ""
	s.Passes++
	s.LastRun = new(time.Now())
	s.LastSummary = &summary
	s.LastError = ""
	if err != nil {
		s.Failed++
		s.LastError = err.Error()
	}
}

func (s *PassState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		StartedAt:   s.StartedAt,
		Running:     s.Running,
		Reason:      s.Reason,
		Passes:      s.Passes,
		Failed:      s.Failed,
		LastRun:     s.LastRun,
		LastSummary: s.LastSummary,
		LastError:   s.LastError,
	}
}
