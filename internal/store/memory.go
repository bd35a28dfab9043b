package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/surf-forecast/internal/forecast"
)

var (
	// ErrNotFound is returned when no run matches the query.
	ErrNotFound = errors.New("no forecast runs recorded")
)

// MemoryStore is a concurrency-safe in-memory history of aggregation runs.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []forecast.Run

	// retention configuration
	maxHistory int           // max number of runs kept
	maxAge     time.Duration // optional max age for runs
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

var _ forecast.RunStore = (*MemoryStore)(nil)

// SaveRun appends a run and enforces retention. Runs without an ID get one.
func (s *MemoryStore) SaveRun(run forecast.Run) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = s.runs[i:]
		}
	}
}

// GetLatest returns the most recent run.
func (s *MemoryStore) GetLatest() (forecast.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return forecast.Run{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// GetRange returns all runs started between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]forecast.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []forecast.Run
	for _, run := range s.runs {
		if !run.StartedAt.Before(from) && !run.StartedAt.After(to) {
			result = append(result, run)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
