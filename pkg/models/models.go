package models

import (
	"strconv"
	"strings"
)

// Track represents a single playable song's metadata record
type Track struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Cover       string `json:"cover,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Album       string `json:"album,omitempty"`
	Duration    string `json:"duration,omitempty"` // "m:ss"
	ReleaseDate string `json:"releaseDate,omitempty"`
	Audio       string `json:"audio,omitempty"` // source reference for the playback primitive
	PlayCount   int    `json:"playCount,omitempty"`
	Favorite    bool   `json:"favorite,omitempty"`
}

// DurationSeconds parses the track's "m:ss" duration string. Missing or
// malformed durations contribute zero.
func (t Track) DurationSeconds() int {
	parts := strings.SplitN(t.Duration, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || seconds < 0 {
		return 0
	}
	return minutes*60 + seconds
}

// Playlist represents a named ordered collection of tracks
type Playlist struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Cover       string  `json:"cover,omitempty"`
	Songs       []Track `json:"songs"`
	Owner       string  `json:"owner,omitempty"`
	IsPublic    bool    `json:"isPublic"`
}

// Artist represents a performing artist in the catalog
type Artist struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Albums []int  `json:"albums,omitempty"` // album IDs
}

// Album represents an album in the catalog
type Album struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Cover       string `json:"cover,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Songs       []int  `json:"songs,omitempty"` // track IDs
}

// Genre represents a browsable genre tile
type Genre struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cover string `json:"cover,omitempty"`
}

// User represents a registered account. The password is stored as
// provided unless hashing is enabled in the auth configuration.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Comment represents a single comment left on a song
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Posted string `json:"posted"` // RFC 3339 timestamp
}
