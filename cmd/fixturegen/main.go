// Command fixturegen scans a directory of audio files and writes the
// catalog fixture files (songs.json, artists.json, albums.json,
// genres.json) that the server reads at startup.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"vibrato/internal/metadata"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

var supportedFormats = []string{".mp3", ".flac", ".wav"}

func main() {
	musicDir := flag.String("music", "./music", "directory to scan for audio files")
	outDir := flag.String("out", "./fixtures", "directory to write fixture files to")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	tracks, err := scanTracks(*musicDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error scanning music directory")
	}
	if len(tracks) == 0 {
		logger.WithField("music_dir", *musicDir).Fatal("No audio files found")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.WithError(err).Fatal("Error creating output directory")
	}

	fixtures := map[string]interface{}{
		"songs.json":   groupSongs(tracks),
		"artists.json": deriveArtists(tracks),
		"albums.json":  deriveAlbums(tracks),
		"genres.json":  deriveGenres(tracks),
	}
	for name, v := range fixtures {
		if err := writeFixture(filepath.Join(*outDir, name), v); err != nil {
			logger.WithError(err).WithField("fixture", name).Fatal("Error writing fixture")
		}
	}

	logger.WithFields(logrus.Fields{
		"tracks":  len(tracks),
		"out_dir": *outDir,
	}).Info("Fixtures written")
}

// scanTracks walks the music directory extracting one track per audio file
func scanTracks(dir string, logger *logrus.Logger) ([]models.Track, error) {
	extractor := metadata.NewExtractor(supportedFormats, logger)

	var tracks []models.Track
	nextID := 1
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !extractor.IsAudioFile(path) {
			return nil
		}
		track, err := extractor.ExtractFromFile(path, nextID)
		if err != nil {
			logger.WithError(err).WithField("file_path", path).Warn("Skipping unreadable file")
			return nil
		}
		tracks = append(tracks, track)
		nextID++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk music directory: %w", err)
	}
	return tracks, nil
}

// groupSongs splits the scanned tracks round-robin into the three
// catalog shelves. Curators re-cut the groups by editing the file.
func groupSongs(tracks []models.Track) map[string][]models.Track {
	groups := map[string][]models.Track{
		"weeklyTop":  {},
		"newRelease": {},
		"trending":   {},
	}
	order := []string{"weeklyTop", "newRelease", "trending"}
	for i, t := range tracks {
		key := order[i%len(order)]
		groups[key] = append(groups[key], t)
	}
	return groups
}

// deriveArtists builds the artist fixture from the distinct track artists
func deriveArtists(tracks []models.Track) []models.Artist {
	byName := make(map[string]*models.Artist)
	for _, t := range tracks {
		if t.Artist == "" {
			continue
		}
		a, ok := byName[t.Artist]
		if !ok {
			a = &models.Artist{Name: t.Artist, Genre: t.Genre}
			byName[t.Artist] = a
		}
		if a.Genre == "" {
			a.Genre = t.Genre
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	artists := make([]models.Artist, 0, len(names))
	for i, name := range names {
		a := *byName[name]
		a.ID = i + 1
		artists = append(artists, a)
	}
	return artists
}

// deriveAlbums builds the album fixture, keyed by artist plus album title
func deriveAlbums(tracks []models.Track) []models.Album {
	type albumKey struct{ artist, title string }

	byKey := make(map[albumKey]*models.Album)
	var keys []albumKey
	for _, t := range tracks {
		if t.Album == "" {
			continue
		}
		key := albumKey{t.Artist, t.Album}
		a, ok := byKey[key]
		if !ok {
			a = &models.Album{Title: t.Album, Artist: t.Artist, ReleaseDate: t.ReleaseDate}
			byKey[key] = a
			keys = append(keys, key)
		}
		a.Songs = append(a.Songs, t.ID)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].artist != keys[j].artist {
			return keys[i].artist < keys[j].artist
		}
		return keys[i].title < keys[j].title
	})

	albums := make([]models.Album, 0, len(keys))
	for i, key := range keys {
		a := *byKey[key]
		a.ID = i + 1
		albums = append(albums, a)
	}
	return albums
}

// deriveGenres builds the genre tiles from the distinct track genres
func deriveGenres(tracks []models.Track) []models.Genre {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tracks {
		if t.Genre == "" || seen[t.Genre] {
			continue
		}
		seen[t.Genre] = true
		names = append(names, t.Genre)
	}
	sort.Strings(names)

	genres := make([]models.Genre, 0, len(names))
	for i, name := range names {
		genres = append(genres, models.Genre{ID: i + 1, Name: name})
	}
	return genres
}

func writeFixture(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
