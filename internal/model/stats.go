package model

import (
	"sync"
	"sync/atomic"
	"time"
)

// SessionStats accumulates counters for one download session. Counters
// are monotonically increasing and safe for concurrent use; each track
// outcome is recorded by exactly one goroutine, so no outcome is ever
// double counted.
type SessionStats struct {
	downloaded     atomic.Int64
	skippedArchive atomic.Int64
	skippedExists  atomic.Int64
	failed         atomic.Int64
	bytes          atomic.Int64

	mu     sync.Mutex
	titles map[string]struct{}

	start time.Time
}

// NewSessionStats returns stats with the session clock started.
func NewSessionStats() *SessionStats {
	return &SessionStats{
		titles: make(map[string]struct{}),
		start:  time.Now(),
	}
}

func (s *SessionStats) AddDownloaded()             { s.downloaded.Add(1) }
func (s *SessionStats) AddSkippedArchive(n int64)  { s.skippedArchive.Add(n) }
func (s *SessionStats) AddSkippedExists()          { s.skippedExists.Add(1) }
func (s *SessionStats) AddFailed()                 { s.failed.Add(1) }
func (s *SessionStats) AddBytes(n int64)           { s.bytes.Add(n) }

// MarkProcessed records the title of an album or playlist this session
// touched. Duplicate titles collapse.
func (s *SessionStats) MarkProcessed(title string) {
	s.mu.Lock()
	s.titles[title] = struct{}{}
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Downloaded     int64
	SkippedArchive int64
	SkippedExists  int64
	Failed         int64
	Bytes          int64
	Processed      int
	Elapsed        time.Duration
}

// TotalHandled is the number of tracks that reached any terminal state.
func (s Snapshot) TotalHandled() int64 {
	return s.Downloaded + s.SkippedArchive + s.SkippedExists + s.Failed
}

// Snapshot returns the current counter values.
func (s *SessionStats) Snapshot() Snapshot {
	s.mu.Lock()
	processed := len(s.titles)
	s.mu.Unlock()

	return Snapshot{
		Downloaded:     s.downloaded.Load(),
		SkippedArchive: s.skippedArchive.Load(),
		SkippedExists:  s.skippedExists.Load(),
		Failed:         s.failed.Load(),
		Bytes:          s.bytes.Load(),
		Processed:      processed,
		Elapsed:        time.Since(s.start),
	}
}
