// Package history keeps the ordered record of past generations for one
// session.
package history

import (
	"sync"

	"studio/internal/domain"
)

// Releaser frees a transient media handle (stored video bytes) once its
// history entry is evicted.
type Releaser func(videoKey string)

// Store is an append-only, newest-first list of generated content owned by a
// single session. Entries holding video keys are released on Clear, never on
// read.
type Store struct {
	mu      sync.Mutex
	entries []domain.GeneratedContent
	release Releaser
}

// NewStore constructs a history store. A nil releaser means entries hold no
// resources beyond memory.
func NewStore(release Releaser) *Store {
	return &Store{release: release}
}

// Push prepends a result. History grows unbounded within a session and does
// not deduplicate.
func (s *Store) Push(content domain.GeneratedContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]domain.GeneratedContent{content}, s.entries...)
}

// List returns a snapshot of the history, newest first.
func (s *Store) List() []domain.GeneratedContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GeneratedContent, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear evicts every entry, releasing any video handles they hold.
func (s *Store) Clear() {
	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	release := s.release
	s.mu.Unlock()

	if release == nil {
		return
	}
	for _, entry := range entries {
		if entry.VideoKey != "" {
			release(entry.VideoKey)
		}
	}
}
