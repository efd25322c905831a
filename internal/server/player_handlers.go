package server

import (
	"net/http"

	"vibrato/internal/player"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"
)

// handlePlayerState returns a snapshot of the player
func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handlePlayerQueue returns the current queue
func (s *Server) handlePlayerQueue(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.Queue())
}

// handlePlay starts playback of a track, optionally replacing the queue.
// The queue may be given as explicit track IDs or as a catalog group name
// (weekly-top, new-releases, trending).
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID int    `json:"trackId"`
		Queue   []int  `json:"queue,omitempty"`
		Group   string `json:"group,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	track, err := s.catalog.SongByID(req.TrackID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	queue, err := s.resolveQueue(req.Queue, req.Group)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.player.PlayTrack(track, queue); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handlePause suspends playback
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleResume continues playback
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.player.Resume()
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleTogglePlayPause flips between playing and paused
func (s *Server) handleTogglePlayPause(w http.ResponseWriter, r *http.Request) {
	s.player.TogglePlayPause()
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleNext advances the queue
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.player.Next()
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handlePrevious retreats the queue
func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.player.Previous()
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleSeek moves the playback position
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time float64 `json:"time"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.player.SeekTo(req.Time)
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleVolume sets the volume in the canonical 0.0–1.0 range. UI sliders
// showing 0–100 convert before calling.
func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.player.SetVolume(req.Volume)
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleShuffle toggles shuffle mode
func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.player.SetShuffle(req.On)
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// handleRepeat sets the repeat mode (0 off, 1 all, 2 one)
func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode int `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.player.SetRepeat(player.RepeatMode(req.Mode))
	s.writeJSON(w, http.StatusOK, s.player.State())
}

// resolveQueue builds the play queue from explicit IDs or a group name.
// Nil means "keep the current queue".
func (s *Server) resolveQueue(ids []int, group string) ([]models.Track, error) {
	switch group {
	case "weekly-top":
		return s.catalog.WeeklyTop(), nil
	case "new-releases":
		return s.catalog.NewReleases(), nil
	case "trending":
		return s.catalog.Trending(), nil
	case "favorites":
		return s.favorites.All(), nil
	case "":
	default:
		return nil, errs.NewValidation("unknown queue group: %s", group)
	}

	if ids == nil {
		return nil, nil
	}

	queue := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		track, err := s.catalog.SongByID(id)
		if err != nil {
			return nil, err
		}
		queue = append(queue, track)
	}
	return queue, nil
}
