package server

import (
	"io"
	"net/http"

	"vibrato/internal/playlist"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"
)

// handleListPlaylists returns the user's playlist collection
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.playlists.All())
}

// handleCreatePlaylist adds a new empty playlist
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Owner string `json:"owner"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := s.playlists.Create(req.Name, req.Owner)
	if err != nil {
		// Creation stands even when persistence failed; report the warning
		s.writeJSON(w, http.StatusCreated, map[string]interface{}{
			"playlist": doc.Snapshot(),
			"warning":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusCreated, doc.Snapshot())
}

// handleGetPlaylist returns one playlist
func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc.Snapshot())
}

// handleClearPlaylist destroys a playlist. Irreversible; the UI confirms
// with the user before calling this.
func (s *Server) handleClearPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, s.playlists.Clear(id))
}

// handleAddTrack appends a catalog track to the playlist
func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		TrackID int `json:"trackId"`
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
	s.writeMutation(w, doc.AddTrack(track))
}

// handleReorder moves a track from one position to another
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, doc.Reorder(req.From, req.To))
}

// handleRemoveTrack removes a track, opening the undo window
func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	trackID, err := intParam(r, "trackId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, doc.Remove(trackID))
}

// handleUndoRemove restores the last removed track while the undo window
// is open
func (s *Server) handleUndoRemove(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, doc.UndoRemove())
}

// handleToggleTrackFavorite flips the favorite flag on a playlist track
func (s *Server) handleToggleTrackFavorite(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	trackID, err := intParam(r, "trackId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, doc.ToggleFavorite(trackID))
}

// handlePlaylistDuration returns the summed duration as a human string
func (s *Server) handlePlaylistDuration(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"duration": doc.TotalDuration()})
}

// handleExportPlaylist serves the downloadable {id, songs[]} document
func (s *Server) handleExportPlaylist(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := doc.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="playlist.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleImportPlaylist replaces the playlist's songs from an exported
// document. An invalid file leaves the playlist untouched.
func (s *Server) handleImportPlaylist(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, 1<<20)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		s.writeError(w, errs.NewValidation("could not read playlist file: %v", err))
		return
	}

	s.writeMutation(w, doc.Import(data))
}

// handleFilterPlaylist returns a derived view of the playlist
func (s *Server) handleFilterPlaylist(w http.ResponseWriter, r *http.Request) {
	doc, err := s.playlistDoc(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	tracks := doc.Filter(q.Get("search"), q.Get("sort"), q.Get("favorites") == "true")
	if tracks == nil {
		tracks = []models.Track{}
	}
	s.writeJSON(w, http.StatusOK, tracks)
}

// handleGetPrefs returns the persisted UI preference snapshot
func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.playlists.LoadPrefs()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

// handleSavePrefs persists the UI preference snapshot
func (s *Server) handleSavePrefs(w http.ResponseWriter, r *http.Request) {
	var prefs playlist.Prefs
	if err := decodeBody(r, &prefs); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMutation(w, s.playlists.SavePrefs(prefs))
}

// playlistDoc resolves the playlist handle from the URL
func (s *Server) playlistDoc(r *http.Request) (*playlist.Document, error) {
	id, err := int64Param(r, "id")
	if err != nil {
		return nil, err
	}
	return s.playlists.Get(id)
}
