package playlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"vibrato/pkg/errs"
	"vibrato/pkg/models"
)

// Document is an editing handle for one playlist. All methods share the
// owning Store's lock, so edits to different playlists never interleave
// mid-mutation.
type Document struct {
	store *Store
	id    int64

	// Undo buffer for the last removed track. Cleared when the undo
	// window elapses.
	removed   *models.Track
	undoTimer *time.Timer
}

// ID returns the playlist's identity
func (d *Document) ID() int64 {
	return d.id
}

// Snapshot returns a copy of the playlist's current state
func (d *Document) Snapshot() models.Playlist {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return clonePlaylist(*d.playlistLocked())
}

// AddTrack appends a track to the end of the playlist
func (d *Document) AddTrack(t models.Track) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	p.Songs = append(p.Songs, t)
	return d.store.saveLocked()
}

// Reorder removes the track at from and reinserts it at to, preserving
// all other relative orderings. Out-of-range indexes are a no-op.
func (d *Document) Reorder(from, to int) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	n := len(p.Songs)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return nil
	}

	moved := p.Songs[from]
	p.Songs = append(p.Songs[:from], p.Songs[from+1:]...)
	p.Songs = append(p.Songs[:to], append([]models.Track{moved}, p.Songs[to:]...)...)
	return d.store.saveLocked()
}

// Remove deletes the track with trackID from the playlist. The removed
// track is retained for the undo window, during which UndoRemove restores
// it; afterwards the buffer is cleared.
func (d *Document) Remove(trackID int) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	for i := range p.Songs {
		if p.Songs[i].ID == trackID {
			removed := p.Songs[i]
			p.Songs = append(p.Songs[:i], p.Songs[i+1:]...)

			d.removed = &removed
			if d.undoTimer != nil {
				d.undoTimer.Stop()
			}
			d.undoTimer = time.AfterFunc(d.store.undoWindow, d.expireUndo)

			return d.store.saveLocked()
		}
	}
	return errs.NewNotFound("track", trackID)
}

// UndoRemove reinserts the last removed track at the front of the list,
// not its original position. A no-op once the undo window has elapsed or
// when nothing was removed.
func (d *Document) UndoRemove() error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	if d.removed == nil {
		return nil
	}

	p := d.playlistLocked()
	p.Songs = append([]models.Track{*d.removed}, p.Songs...)
	d.dropUndoLocked()
	return d.store.saveLocked()
}

// ToggleFavorite flips the favorite flag on the matching track
func (d *Document) ToggleFavorite(trackID int) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	for i := range p.Songs {
		if p.Songs[i].ID == trackID {
			p.Songs[i].Favorite = !p.Songs[i].Favorite
			return d.store.saveLocked()
		}
	}
	return errs.NewNotFound("track", trackID)
}

// TotalDuration sums the tracks' "m:ss" duration strings into a human
// string "Xm Ys". Tracks with missing or malformed durations contribute
// zero.
func (d *Document) TotalDuration() string {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	total := 0
	for _, t := range d.playlistLocked().Songs {
		total += t.DurationSeconds()
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// snapshot is the export file shape, consumed back by Import
type snapshot struct {
	ID    int64           `json:"id"`
	Songs json.RawMessage `json:"songs"`
}

// Export serializes the playlist as a downloadable {id, songs[]} document
func (d *Document) Export() ([]byte, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	return json.MarshalIndent(struct {
		ID    int64          `json:"id"`
		Songs []models.Track `json:"songs"`
	}{ID: p.ID, Songs: p.Songs}, "", "  ")
}

// Import replaces the playlist's songs with the contents of an exported
// {id, songs[]} document. A malformed document, in particular a songs
// field that is not array-typed, fails with a ValidationError and leaves
// the existing state untouched.
func (d *Document) Import(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errs.NewValidation("invalid playlist file: %v", err)
	}

	trimmed := bytes.TrimSpace(snap.Songs)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return errs.NewValidation("invalid playlist file: songs must be a list")
	}

	var songs []models.Track
	if err := json.Unmarshal(trimmed, &songs); err != nil {
		return errs.NewValidation("invalid playlist file: %v", err)
	}

	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	p := d.playlistLocked()
	p.Songs = songs
	return d.store.saveLocked()
}

// Filter produces a derived, read-only ordered view of the playlist. The
// canonical list is never mutated. Sort keys: "title" and "artist"
// (lexicographic), "date" (lexicographic on the release-date string).
func (d *Document) Filter(search, sortKey string, favoritesOnly bool) []models.Track {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.Track
	for _, t := range d.playlistLocked().Songs {
		if favoritesOnly && !t.Favorite {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Artist), needle) {
			continue
		}
		out = append(out, t)
	}

	switch sortKey {
	case "title":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	case "artist":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Artist < out[j].Artist })
	case "date":
		sort.SliceStable(out, func(i, j int) bool { return out[i].ReleaseDate < out[j].ReleaseDate })
	}

	return out
}

// playlistLocked returns the canonical playlist record (lock must be
// held). If the playlist was cleared while a handle was still out, edits
// land on a detached record and callers see an empty playlist.
func (d *Document) playlistLocked() *models.Playlist {
	if i := d.store.findLocked(d.id); i >= 0 {
		return &d.store.playlists[i]
	}
	return &models.Playlist{ID: d.id, Songs: []models.Track{}}
}

// expireUndo clears the undo buffer after the window elapses
func (d *Document) expireUndo() {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.removed = nil
	d.undoTimer = nil
}

// dropUndoLocked cancels any pending undo (lock must be held)
func (d *Document) dropUndoLocked() {
	if d.undoTimer != nil {
		d.undoTimer.Stop()
		d.undoTimer = nil
	}
	d.removed = nil
}
