package playlist_test

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"vibrato/internal/playlist"
	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T, opts playlist.Options) *playlist.Store {
	t.Helper()
	s, err := playlist.NewStore(storage.NewMemory(), testLogger(), opts)
	if err != nil {
		t.Fatalf("Failed to create playlist store: %v", err)
	}
	return s
}

func seedPlaylist(t *testing.T, s *playlist.Store, tracks ...models.Track) *playlist.Document {
	t.Helper()
	doc, err := s.Create("Test Playlist", "tester")
	if err != nil {
		t.Fatalf("Failed to create playlist: %v", err)
	}
	for _, track := range tracks {
		if err := doc.AddTrack(track); err != nil {
			t.Fatalf("Failed to add track: %v", err)
		}
	}
	return doc
}

func trackIDs(tracks []models.Track) []int {
	ids := make([]int, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	trackA = models.Track{ID: 1, Title: "Alpha", Artist: "Zeta", Duration: "3:30", ReleaseDate: "2021"}
	trackB = models.Track{ID: 2, Title: "Beta", Artist: "Yotta", Duration: "2:15", ReleaseDate: "2023"}
	trackC = models.Track{ID: 3, Title: "Gamma", Artist: "Xi", Duration: "4:00", ReleaseDate: "2022"}
)

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	doc, err := s.Create("Road Trip", "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(doc.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	snap := got.Snapshot()
	if snap.Name != "Road Trip" {
		t.Errorf("Expected name 'Road Trip', got %q", snap.Name)
	}
	if snap.Owner != "alice" {
		t.Errorf("Expected owner 'alice', got %q", snap.Owner)
	}
	if len(snap.Songs) != 0 {
		t.Errorf("Expected an empty playlist, got %d songs", len(snap.Songs))
	}
}

func TestGetUnknownPlaylist(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	_, err := s.Get(99999)
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		doc, err := s.Create("P", "tester")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[doc.ID()] {
			t.Fatalf("Duplicate playlist ID %d", doc.ID())
		}
		seen[doc.ID()] = true
	}
}

func TestReorderMovesTrack(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA, trackB, trackC)

	if err := doc.Reorder(0, 2); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	got := trackIDs(doc.Snapshot().Songs)
	if !sameIDs(got, []int{2, 3, 1}) {
		t.Errorf("Expected order [2 3 1] after moving position 0 to 2, got %v", got)
	}
}

func TestReorderOutOfRangeIsNoop(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA, trackB, trackC)

	cases := []struct {
		name     string
		from, to int
	}{
		{"NegativeFrom", -1, 1},
		{"FromPastEnd", 3, 0},
		{"NegativeTo", 0, -1},
		{"ToPastEnd", 1, 3},
		{"SamePosition", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := doc.Reorder(tc.from, tc.to); err != nil {
				t.Fatalf("Reorder failed: %v", err)
			}
			got := trackIDs(doc.Snapshot().Songs)
			if !sameIDs(got, []int{1, 2, 3}) {
				t.Errorf("Expected order unchanged, got %v", got)
			}
		})
	}
}

func TestRemoveAndUndo(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA, trackB, trackC)

	if err := doc.Remove(2); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got := trackIDs(doc.Snapshot().Songs)
	if !sameIDs(got, []int{1, 3}) {
		t.Fatalf("Expected [1 3] after removing track 2, got %v", got)
	}

	if err := doc.UndoRemove(); err != nil {
		t.Fatalf("UndoRemove failed: %v", err)
	}
	// The restored track lands at the front, not its original position
	got = trackIDs(doc.Snapshot().Songs)
	if !sameIDs(got, []int{2, 1, 3}) {
		t.Errorf("Expected [2 1 3] after undo, got %v", got)
	}
}

func TestUndoAfterWindowIsNoop(t *testing.T) {
	s := newTestStore(t, playlist.Options{UndoWindow: 30 * time.Millisecond})
	doc := seedPlaylist(t, s, trackA, trackB)

	if err := doc.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := doc.UndoRemove(); err != nil {
		t.Fatalf("UndoRemove failed: %v", err)
	}
	got := trackIDs(doc.Snapshot().Songs)
	if !sameIDs(got, []int{2}) {
		t.Errorf("Expected the undo window to have expired, got %v", got)
	}
}

func TestUndoWithoutRemoveIsNoop(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA)

	if err := doc.UndoRemove(); err != nil {
		t.Fatalf("UndoRemove failed: %v", err)
	}
	if got := len(doc.Snapshot().Songs); got != 1 {
		t.Errorf("Expected playlist unchanged, got %d songs", got)
	}
}

func TestUndoIsSingleUse(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA, trackB)

	if err := doc.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := doc.UndoRemove(); err != nil {
		t.Fatalf("UndoRemove failed: %v", err)
	}
	if err := doc.UndoRemove(); err != nil {
		t.Fatalf("Second UndoRemove failed: %v", err)
	}
	if got := len(doc.Snapshot().Songs); got != 2 {
		t.Errorf("Expected a single restore, got %d songs", got)
	}
}

func TestRemoveUnknownTrack(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA)

	err := doc.Remove(42)
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestToggleFavorite(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA)

	if err := doc.ToggleFavorite(1); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !doc.Snapshot().Songs[0].Favorite {
		t.Error("Expected track to be favorited")
	}

	if err := doc.ToggleFavorite(1); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if doc.Snapshot().Songs[0].Favorite {
		t.Error("Expected the second toggle to clear the flag")
	}
}

func TestTotalDuration(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	cases := []struct {
		name   string
		tracks []models.Track
		want   string
	}{
		{"Empty", nil, "0m 0s"},
		{"TwoTracks", []models.Track{trackA, trackB}, "5m 45s"}, // 3:30 + 2:15
		{"MalformedContributesZero", []models.Track{trackA, {ID: 9, Duration: "oops"}}, "3m 30s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := seedPlaylist(t, s, tc.tracks...)
			if got := doc.TotalDuration(); got != tc.want {
				t.Errorf("Expected duration %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA, trackB)

	data, err := doc.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var shape struct {
		ID    int64          `json:"id"`
		Songs []models.Track `json:"songs"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		t.Fatalf("Export produced invalid JSON: %v", err)
	}
	if shape.ID != doc.ID() {
		t.Errorf("Expected exported ID %d, got %d", doc.ID(), shape.ID)
	}

	other := seedPlaylist(t, s, trackC)
	if err := other.Import(data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	got := trackIDs(other.Snapshot().Songs)
	if !sameIDs(got, []int{1, 2}) {
		t.Errorf("Expected imported songs [1 2], got %v", got)
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	cases := []struct {
		name string
		data string
	}{
		{"NotJSON", "not json at all"},
		{"SongsIsObject", `{"id": 1, "songs": {"oops": true}}`},
		{"SongsIsString", `{"id": 1, "songs": "nope"}`},
		{"SongsMissing", `{"id": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := seedPlaylist(t, s, trackA)

			err := doc.Import([]byte(tc.data))
			var validation *errs.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
			// A rejected import must leave the playlist untouched
			got := trackIDs(doc.Snapshot().Songs)
			if !sameIDs(got, []int{1}) {
				t.Errorf("Expected playlist unchanged, got %v", got)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	fav := trackB
	fav.Favorite = true
	doc := seedPlaylist(t, s, trackA, fav, trackC)

	t.Run("SearchMatchesTitleOrArtist", func(t *testing.T) {
		got := trackIDs(doc.Filter("zeta", "", false))
		if !sameIDs(got, []int{1}) {
			t.Errorf("Expected artist match [1], got %v", got)
		}
		got = trackIDs(doc.Filter("GAM", "", false))
		if !sameIDs(got, []int{3}) {
			t.Errorf("Expected case-insensitive title match [3], got %v", got)
		}
	})

	t.Run("FavoritesOnly", func(t *testing.T) {
		got := trackIDs(doc.Filter("", "", true))
		if !sameIDs(got, []int{2}) {
			t.Errorf("Expected favorites [2], got %v", got)
		}
	})

	t.Run("SortByTitle", func(t *testing.T) {
		got := trackIDs(doc.Filter("", "title", false))
		if !sameIDs(got, []int{1, 2, 3}) {
			t.Errorf("Expected title order [1 2 3], got %v", got)
		}
	})

	t.Run("SortByArtist", func(t *testing.T) {
		got := trackIDs(doc.Filter("", "artist", false))
		if !sameIDs(got, []int{3, 2, 1}) { // Xi, Yotta, Zeta
			t.Errorf("Expected artist order [3 2 1], got %v", got)
		}
	})

	t.Run("SortByDate", func(t *testing.T) {
		got := trackIDs(doc.Filter("", "date", false))
		if !sameIDs(got, []int{1, 3, 2}) { // 2021, 2022, 2023
			t.Errorf("Expected date order [1 3 2], got %v", got)
		}
	})

	t.Run("ViewDoesNotMutateCanonicalOrder", func(t *testing.T) {
		doc.Filter("", "artist", false)
		got := trackIDs(doc.Snapshot().Songs)
		if !sameIDs(got, []int{1, 2, 3}) {
			t.Errorf("Expected canonical order preserved, got %v", got)
		}
	})
}

func TestClearDestroysPlaylist(t *testing.T) {
	s := newTestStore(t, playlist.Options{})
	doc := seedPlaylist(t, s, trackA)

	if err := s.Clear(doc.ID()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	_, err := s.Get(doc.ID())
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError after Clear, got %T: %v", err, err)
	}
}

func TestCollectionPersistsAcrossStores(t *testing.T) {
	kv := storage.NewMemory()

	s, err := playlist.NewStore(kv, testLogger(), playlist.Options{})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	doc, err := s.Create("Persisted", "tester")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := doc.AddTrack(trackA); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	// A fresh store over the same backend sees the collection
	reloaded, err := playlist.NewStore(kv, testLogger(), playlist.Options{})
	if err != nil {
		t.Fatalf("Failed to reload store: %v", err)
	}
	got, err := reloaded.Get(doc.ID())
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if len(got.Snapshot().Songs) != 1 {
		t.Errorf("Expected the reloaded playlist to have 1 song")
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	if err := s.SavePrefs(playlist.Prefs{Search: "lo-fi", SortKey: "artist"}); err != nil {
		t.Fatalf("SavePrefs failed: %v", err)
	}
	prefs, err := s.LoadPrefs()
	if err != nil {
		t.Fatalf("LoadPrefs failed: %v", err)
	}
	if prefs.Search != "lo-fi" || prefs.SortKey != "artist" {
		t.Errorf("Expected saved prefs back, got %+v", prefs)
	}
}

func TestLoadPrefsEmpty(t *testing.T) {
	s := newTestStore(t, playlist.Options{})

	prefs, err := s.LoadPrefs()
	if err != nil {
		t.Fatalf("LoadPrefs failed: %v", err)
	}
	if prefs != (playlist.Prefs{}) {
		t.Errorf("Expected zero prefs, got %+v", prefs)
	}
}
