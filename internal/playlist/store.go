// Package playlist maintains the user's playlists: ordered track lists
// with reorder, deletion-with-undo, favorite flags, import/export and
// derived views. Every mutation persists a snapshot of the whole
// collection; persistence is fire-and-forget: in-memory state is never
// rolled back, failures surface as a PersistenceWarning.
package playlist

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

// DefaultUndoWindow is how long a removed track can be restored
const DefaultUndoWindow = 7 * time.Second

// Options configures a Store
type Options struct {
	// UndoWindow overrides the remove-undo window. Zero means the default.
	UndoWindow time.Duration
}

// Prefs is the persisted UI preference snapshot (last search text and
// sort key), stored under the playlist_ui_v1 key.
type Prefs struct {
	Search  string `json:"search"`
	SortKey string `json:"sortKey"`
}

// Store manages the persisted playlist collection and hands out Document
// handles for editing individual playlists.
type Store struct {
	mu         sync.Mutex
	store      storage.Store
	logger     *logrus.Logger
	undoWindow time.Duration
	playlists  []models.Playlist
	docs       map[int64]*Document
}

// NewStore loads the persisted playlist collection from storage
func NewStore(store storage.Store, logger *logrus.Logger, opts Options) (*Store, error) {
	undoWindow := opts.UndoWindow
	if undoWindow == 0 {
		undoWindow = DefaultUndoWindow
	}

	s := &Store{
		store:      store,
		logger:     logger,
		undoWindow: undoWindow,
		docs:       make(map[int64]*Document),
	}

	value, ok, err := store.Get(storage.KeyPlaylists)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	if ok {
		if err := json.Unmarshal(value, &s.playlists); err != nil {
			return nil, fmt.Errorf("failed to decode playlists: %w", err)
		}
	}

	return s, nil
}

// Create adds a new empty playlist with a timestamp-based ID and persists
// the collection. A persistence failure is reported as a
// PersistenceWarning; the playlist exists in memory either way.
func (s *Store) Create(name, owner string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	for s.findLocked(id) >= 0 {
		id++
	}

	s.playlists = append(s.playlists, models.Playlist{
		ID:    id,
		Name:  name,
		Owner: owner,
		Songs: []models.Track{},
	})

	doc := s.documentLocked(id)
	return doc, s.saveLocked()
}

// Get returns the Document handle for a playlist
func (s *Store) Get(id int64) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) < 0 {
		return nil, errs.NewNotFound("playlist", id)
	}
	return s.documentLocked(id), nil
}

// All returns a copy of the playlist collection
func (s *Store) All() []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = clonePlaylist(p)
	}
	return out
}

// Clear destroys a playlist. This is irreversible; callers are expected
// to confirm with the user first.
func (s *Store) Clear(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(id)
	if i < 0 {
		return errs.NewNotFound("playlist", id)
	}

	if doc, ok := s.docs[id]; ok {
		doc.dropUndoLocked()
		delete(s.docs, id)
	}
	s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
	return s.saveLocked()
}

// SavePrefs persists the UI preference snapshot
func (s *Store) SavePrefs(p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.store.Set(storage.KeyPlaylistPrefs, data); err != nil {
		warn := &errs.PersistenceWarning{Key: storage.KeyPlaylistPrefs, Err: err}
		s.logger.WithError(warn).Warn("Could not persist playlist preferences")
		return warn
	}
	return nil
}

// LoadPrefs returns the persisted UI preference snapshot, zero-valued
// when none exists
func (s *Store) LoadPrefs() (Prefs, error) {
	var prefs Prefs
	value, ok, err := s.store.Get(storage.KeyPlaylistPrefs)
	if err != nil || !ok {
		return prefs, err
	}
	if err := json.Unmarshal(value, &prefs); err != nil {
		return Prefs{}, errs.NewValidation("invalid playlist preferences: %v", err)
	}
	return prefs, nil
}

// documentLocked returns the cached Document for id, creating it if
// needed (lock must be held)
func (s *Store) documentLocked(id int64) *Document {
	doc, ok := s.docs[id]
	if !ok {
		doc = &Document{store: s, id: id}
		s.docs[id] = doc
	}
	return doc
}

// findLocked returns the index of the playlist with id, or -1
func (s *Store) findLocked(id int64) int {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return i
		}
	}
	return -1
}

// saveLocked persists the whole collection (lock must be held). The
// in-memory mutation stands regardless of the outcome.
func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.playlists)
	if err == nil {
		err = s.store.Set(storage.KeyPlaylists, data)
	}
	if err != nil {
		warn := &errs.PersistenceWarning{Key: storage.KeyPlaylists, Err: err}
		s.logger.WithError(warn).Warn("Could not persist playlists")
		return warn
	}
	return nil
}

func clonePlaylist(p models.Playlist) models.Playlist {
	out := p
	out.Songs = make([]models.Track, len(p.Songs))
	copy(out.Songs, p.Songs)
	return out
}
