// Package favorites keeps the user's favorited tracks as an in-memory
// set keyed by track ID.
package favorites

import (
	"sort"
	"sync"

	"vibrato/pkg/models"
)

// Store is a set of favorited tracks. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tracks map[int]models.Track
}

// NewStore creates an empty favorites set
func NewStore() *Store {
	return &Store{
		tracks: make(map[int]models.Track),
	}
}

// Add marks a track as favorite. Adding an already-favorited track is a
// no-op.
func (s *Store) Add(t models.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tracks[t.ID]; exists {
		return
	}
	t.Favorite = true
	s.tracks[t.ID] = t
}

// Remove unmarks a track. Removing an absent track is a no-op.
func (s *Store) Remove(trackID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracks, trackID)
}

// Toggle adds the track if absent, removes it if present, and reports
// whether it is a favorite afterwards.
func (s *Store) Toggle(t models.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tracks[t.ID]; exists {
		delete(s.tracks, t.ID)
		return false
	}
	t.Favorite = true
	s.tracks[t.ID] = t
	return true
}

// Contains reports whether the track is favorited
func (s *Store) Contains(trackID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.tracks[trackID]
	return exists
}

// All returns the favorited tracks ordered by ID
func (s *Store) All() []models.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the number of favorited tracks
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}
