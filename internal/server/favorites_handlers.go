package server

import (
	"net/http"
)

// handleListFavorites returns the favorited tracks
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.favorites.All())
}

// handleToggleFavorite adds or removes a catalog track from favorites
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	trackID, err := intParam(r, "trackId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	track, err := s.catalog.SongByID(trackID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	favored := s.favorites.Toggle(track)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trackId":  trackID,
		"favorite": favored,
	})
}
