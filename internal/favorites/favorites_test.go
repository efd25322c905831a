package favorites_test

import (
	"testing"

	"vibrato/internal/favorites"
	"vibrato/pkg/models"
)

var (
	songA = models.Track{ID: 1, Title: "Alpha"}
	songB = models.Track{ID: 2, Title: "Beta"}
)

func TestAddAndContains(t *testing.T) {
	s := favorites.NewStore()

	s.Add(songA)
	if !s.Contains(1) {
		t.Error("Expected track 1 to be favorited")
	}
	if s.Contains(2) {
		t.Error("Expected track 2 to be absent")
	}

	// Adding again is a no-op
	s.Add(songA)
	if s.Size() != 1 {
		t.Errorf("Expected size 1, got %d", s.Size())
	}
}

func TestAddSetsFavoriteFlag(t *testing.T) {
	s := favorites.NewStore()
	s.Add(songA)

	all := s.All()
	if len(all) != 1 || !all[0].Favorite {
		t.Errorf("Expected the stored track to carry the favorite flag, got %+v", all)
	}
}

func TestRemove(t *testing.T) {
	s := favorites.NewStore()
	s.Add(songA)

	s.Remove(1)
	if s.Contains(1) {
		t.Error("Expected track 1 to be removed")
	}

	// Removing an absent track is a no-op
	s.Remove(42)
	if s.Size() != 0 {
		t.Errorf("Expected size 0, got %d", s.Size())
	}
}

func TestToggle(t *testing.T) {
	s := favorites.NewStore()

	if !s.Toggle(songA) {
		t.Error("Expected the first toggle to favorite the track")
	}
	if s.Toggle(songA) {
		t.Error("Expected the second toggle to unfavorite the track")
	}
	if s.Contains(1) {
		t.Error("Expected track 1 gone after a toggle pair")
	}
}

func TestAllOrderedByID(t *testing.T) {
	s := favorites.NewStore()
	s.Add(songB)
	s.Add(songA)

	all := s.All()
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Errorf("Expected tracks ordered by ID, got %+v", all)
	}
}
