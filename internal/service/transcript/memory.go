package transcript

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps transcripts in process memory for the lifetime of the process.
// Entries are never evicted; a restart drops everything.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, botID, fragment string) (AppendResult, error) {
	line := strings.TrimSpace(fragment)
	if line == "" {
		return AppendResult{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[botID]
	if !ok {
		e = &Entry{}
		s.entries[botID] = e
	}
	e.Lines = append(e.Lines, line)
	e.Text = joinLines(e.Lines)
	e.UpdatedAt = s.now()

	return AppendResult{Appended: true, Created: !ok, Lines: len(e.Lines)}, nil
}

// Get implements Store. The returned entry is a copy and safe to keep.
func (s *MemoryStore) Get(_ context.Context, botID string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[botID]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{
		Lines:     append([]string(nil), e.Lines...),
		Text:      e.Text,
		UpdatedAt: e.UpdatedAt,
	}, true, nil
}

// Len returns the number of calls with a transcript.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
