// Package catalog reads the static JSON fixture collections (songs,
// artists, albums, playlists, genres) and exposes them as read-only
// collections, optionally after a simulated load delay.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

// SongGroups is the shape of the songs fixture
type SongGroups struct {
	WeeklyTop  []models.Track `json:"weeklyTop"`
	NewRelease []models.Track `json:"newRelease"`
	Trending   []models.Track `json:"trending"`
}

// PlaylistGroups is the shape of the playlists fixture
type PlaylistGroups struct {
	Mood []models.Playlist `json:"mood"`
	User []models.Playlist `json:"user"`
}

// Catalog holds the loaded fixture collections. Loading happens once per
// session; accessors are read-only and safe for concurrent use.
type Catalog struct {
	dir    string
	delay  time.Duration
	logger *logrus.Logger

	mu        sync.RWMutex
	songs     SongGroups
	artists   []models.Artist
	albums    []models.Album
	playlists PlaylistGroups
	genres    []models.Genre
	byID      map[int]models.Track
}

// New creates a catalog reading fixtures from dir. A non-zero delay is
// waited out on Load to simulate network latency.
func New(dir string, delay time.Duration, logger *logrus.Logger) *Catalog {
	return &Catalog{
		dir:    dir,
		delay:  delay,
		logger: logger,
		byID:   make(map[int]models.Track),
	}
}

// Load reads all fixture files, waiting out the configured simulated
// delay first. Missing fixture files yield empty collections, not errors.
func (c *Catalog) Load() error {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.Reload()
}

// Reload re-reads the fixture files without the simulated delay. Used by
// the fixtures watcher.
func (c *Catalog) Reload() error {
	var (
		songs     SongGroups
		artists   []models.Artist
		albums    []models.Album
		playlists PlaylistGroups
		genres    []models.Genre
	)

	if err := c.readFixture("songs.json", &songs); err != nil {
		return err
	}
	if err := c.readFixture("artists.json", &artists); err != nil {
		return err
	}
	if err := c.readFixture("albums.json", &albums); err != nil {
		return err
	}
	if err := c.readFixture("playlists.json", &playlists); err != nil {
		return err
	}
	if err := c.readFixture("genres.json", &genres); err != nil {
		return err
	}

	byID := make(map[int]models.Track)
	for _, group := range [][]models.Track{songs.WeeklyTop, songs.NewRelease, songs.Trending} {
		for _, t := range group {
			byID[t.ID] = t
		}
	}

	c.mu.Lock()
	c.songs = songs
	c.artists = artists
	c.albums = albums
	c.playlists = playlists
	c.genres = genres
	c.byID = byID
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"songs":   len(byID),
		"artists": len(artists),
		"albums":  len(albums),
		"genres":  len(genres),
	}).Info("Catalog loaded")
	return nil
}

// readFixture decodes one fixture file into out. Absent files are
// treated as empty collections.
func (c *Catalog) readFixture(name string, out interface{}) error {
	path := filepath.Join(c.dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c.logger.WithField("fixture", name).Debug("Fixture file missing, using empty collection")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}

// WeeklyTop returns the weekly top songs group
func (c *Catalog) WeeklyTop() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTracks(c.songs.WeeklyTop)
}

// NewReleases returns the new-release songs group
func (c *Catalog) NewReleases() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTracks(c.songs.NewRelease)
}

// Trending returns the trending songs group
func (c *Catalog) Trending() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTracks(c.songs.Trending)
}

// AllSongs returns every song across the groups, deduplicated by ID
func (c *Catalog) AllSongs() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[int]bool, len(c.byID))
	var out []models.Track
	for _, group := range [][]models.Track{c.songs.WeeklyTop, c.songs.NewRelease, c.songs.Trending} {
		for _, t := range group {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// SongByID resolves a track by ID
func (c *Catalog) SongByID(id int) (models.Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byID[id]
	if !ok {
		return models.Track{}, errs.NewNotFound("track", id)
	}
	return t, nil
}

// Artists returns all artists
func (c *Catalog) Artists() []models.Artist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Artist, len(c.artists))
	copy(out, c.artists)
	return out
}

// ArtistByID resolves an artist by ID
func (c *Catalog) ArtistByID(id int) (models.Artist, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, a := range c.artists {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Artist{}, errs.NewNotFound("artist", id)
}

// Albums returns all albums
func (c *Catalog) Albums() []models.Album {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Album, len(c.albums))
	copy(out, c.albums)
	return out
}

// AlbumByID resolves an album by ID
func (c *Catalog) AlbumByID(id int) (models.Album, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, a := range c.albums {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Album{}, errs.NewNotFound("album", id)
}

// MoodPlaylists returns the curated mood playlists
func (c *Catalog) MoodPlaylists() []models.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Playlist, len(c.playlists.Mood))
	copy(out, c.playlists.Mood)
	return out
}

// UserPlaylists returns the fixture user playlists
func (c *Catalog) UserPlaylists() []models.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Playlist, len(c.playlists.User))
	copy(out, c.playlists.User)
	return out
}

// Genres returns the browsable genres
func (c *Catalog) Genres() []models.Genre {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Genre, len(c.genres))
	copy(out, c.genres)
	return out
}

func cloneTracks(tracks []models.Track) []models.Track {
	out := make([]models.Track, len(tracks))
	copy(out, tracks)
	return out
}
