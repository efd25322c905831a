// Package comments is a thin per-song comment log over the key/value
// store. No moderation, no threading.
package comments

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"
)

// Store reads and writes comment lists under "comments_<songId>" keys
type Store struct {
	store storage.Store
}

// NewStore creates a comment store
func NewStore(store storage.Store) *Store {
	return &Store{store: store}
}

// Add appends a comment to a song's list
func (s *Store) Add(songID int, author, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, errs.NewValidation("comment text is required")
	}

	list, err := s.List(songID)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		Author: author,
		Text:   text,
		Posted: time.Now().Format(time.RFC3339),
	}
	list = append(list, comment)

	data, err := json.Marshal(list)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.store.Set(key(songID), data); err != nil {
		return models.Comment{}, fmt.Errorf("failed to save comments: %w", err)
	}
	return comment, nil
}

// List returns a song's comments in posting order
func (s *Store) List(songID int) ([]models.Comment, error) {
	value, ok, err := s.store.Get(key(songID))
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var list []models.Comment
	if err := json.Unmarshal(value, &list); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return list, nil
}

func key(songID int) string {
	return storage.CommentsPrefix + strconv.Itoa(songID)
}
