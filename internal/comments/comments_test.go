package comments_test

import (
	"errors"
	"testing"
	"time"

	"vibrato/internal/comments"
	"vibrato/internal/storage"
	"vibrato/pkg/errs"
)

func TestAddAndList(t *testing.T) {
	s := comments.NewStore(storage.NewMemory())

	first, err := s.Add(7, "alice", "great track")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, first.Posted); err != nil {
		t.Errorf("Expected an RFC 3339 timestamp, got %q", first.Posted)
	}

	if _, err := s.Add(7, "bob", "agreed"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := s.List(7)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(list))
	}
	if list[0].Author != "alice" || list[1].Author != "bob" {
		t.Errorf("Expected posting order preserved, got %+v", list)
	}
}

func TestCommentsArePerSong(t *testing.T) {
	s := comments.NewStore(storage.NewMemory())

	if _, err := s.Add(1, "alice", "on song one"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := s.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no comments on song 2, got %d", len(list))
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	s := comments.NewStore(storage.NewMemory())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Add(1, "alice", text)
		var validation *errs.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("Expected ValidationError for %q, got %T: %v", text, err, err)
		}
	}
}
