package server

import (
	"net/http"
)

// handleAllSongs returns every song across the catalog groups
func (s *Server) handleAllSongs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.AllSongs())
}

// handleWeeklyTop returns the weekly top group
func (s *Server) handleWeeklyTop(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.WeeklyTop())
}

// handleNewReleases returns the new-release group
func (s *Server) handleNewReleases(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.NewReleases())
}

// handleTrending returns the trending group
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Trending())
}

// handleSongByID resolves one song
func (s *Server) handleSongByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	track, err := s.catalog.SongByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, track)
}

// handleArtists returns all artists
func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Artists())
}

// handleArtistByID resolves one artist
func (s *Server) handleArtistByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	artist, err := s.catalog.ArtistByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, artist)
}

// handleAlbums returns all albums
func (s *Server) handleAlbums(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Albums())
}

// handleAlbumByID resolves one album
func (s *Server) handleAlbumByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	album, err := s.catalog.AlbumByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, album)
}

// handleGenres returns the browsable genres
func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Genres())
}

// handleCatalogPlaylists returns the fixture playlist groups
func (s *Server) handleCatalogPlaylists(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"mood": s.catalog.MoodPlaylists(),
		"user": s.catalog.UserPlaylists(),
	})
}

// handleListComments returns a song's comments
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	list, err := s.comments.List(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleAddComment appends a comment to a song
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	comment, err := s.comments.Add(id, req.Author, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}
