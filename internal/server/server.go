// Package server exposes the application services over HTTP. Routes carry
// the identity surface the UI layer resolves views from: track, playlist
// and artist IDs.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vibrato/internal/auth"
	"vibrato/internal/catalog"
	"vibrato/internal/comments"
	"vibrato/internal/config"
	"vibrato/internal/favorites"
	"vibrato/internal/ngrok"
	"vibrato/internal/player"
	"vibrato/internal/playlist"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Server wires the application services into an HTTP API
type Server struct {
	config    *config.Config
	logger    *logrus.Logger
	catalog   *catalog.Catalog
	player    *player.Player
	playlists *playlist.Store
	favorites *favorites.Store
	auth      *auth.Service
	sessions  *auth.SessionManager
	comments  *comments.Store
	tunnel    *ngrok.Service

	httpServer *http.Server
}

// Services bundles the constructed application services
type Services struct {
	Catalog   *catalog.Catalog
	Player    *player.Player
	Playlists *playlist.Store
	Favorites *favorites.Store
	Auth      *auth.Service
	Sessions  *auth.SessionManager
	Comments  *comments.Store
	Tunnel    *ngrok.Service
}

// New creates a server over the given services
func New(cfg *config.Config, logger *logrus.Logger, svc Services) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		catalog:   svc.Catalog,
		player:    svc.Player,
		playlists: svc.Playlists,
		favorites: svc.Favorites,
		auth:      svc.Auth,
		sessions:  svc.Sessions,
		comments:  svc.Comments,
		tunnel:    svc.Tunnel,
	}

	s.httpServer = &http.Server{
		Addr:        cfg.GetAddress(),
		Handler:     s.routes(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	return s
}

// routes builds the router with all API endpoints
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/songs", func(r chi.Router) {
			r.Get("/", s.handleAllSongs)
			r.Get("/weekly-top", s.handleWeeklyTop)
			r.Get("/new-releases", s.handleNewReleases)
			r.Get("/trending", s.handleTrending)
			r.Get("/{id}", s.handleSongByID)
			r.Get("/{id}/comments", s.handleListComments)
			r.With(s.requireSession).Post("/{id}/comments", s.handleAddComment)
		})

		r.Get("/artists", s.handleArtists)
		r.Get("/artists/{id}", s.handleArtistByID)
		r.Get("/albums", s.handleAlbums)
		r.Get("/albums/{id}", s.handleAlbumByID)
		r.Get("/genres", s.handleGenres)
		r.Get("/catalog/playlists", s.handleCatalogPlaylists)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignUp)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.handleListPlaylists)
			r.Get("/prefs", s.handleGetPrefs)
			r.With(s.requireSession).Post("/", s.handleCreatePlaylist)
			r.With(s.requireSession).Put("/prefs", s.handleSavePrefs)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlaylist)
				r.Get("/duration", s.handlePlaylistDuration)
				r.Get("/export", s.handleExportPlaylist)
				r.Get("/filter", s.handleFilterPlaylist)

				r.Group(func(r chi.Router) {
					r.Use(s.requireSession)
					r.Delete("/", s.handleClearPlaylist)
					r.Post("/tracks", s.handleAddTrack)
					r.Post("/reorder", s.handleReorder)
					r.Delete("/tracks/{trackId}", s.handleRemoveTrack)
					r.Post("/undo", s.handleUndoRemove)
					r.Post("/tracks/{trackId}/favorite", s.handleToggleTrackFavorite)
					r.Post("/import", s.handleImportPlaylist)
				})
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.handleListFavorites)
			r.With(s.requireSession).Put("/{trackId}", s.handleToggleFavorite)
		})

		r.Route("/player", func(r chi.Router) {
			r.Get("/", s.handlePlayerState)
			r.Get("/queue", s.handlePlayerQueue)
			r.Post("/play", s.handlePlay)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/toggle", s.handleTogglePlayPause)
			r.Post("/next", s.handleNext)
			r.Post("/previous", s.handlePrevious)
			r.Post("/seek", s.handleSeek)
			r.Post("/volume", s.handleVolume)
			r.Post("/shuffle", s.handleShuffle)
			r.Post("/repeat", s.handleRepeat)
		})
	})

	return r
}

// Start runs the HTTP server and the optional tunnel until the context
// is canceled
func (s *Server) Start(ctx context.Context) error {
	if s.tunnel != nil {
		if err := s.tunnel.StartTunnel(ctx, "http://"+s.httpServer.Addr); err != nil {
			s.logger.WithError(err).Warn("Could not start tunnel, continuing without it")
		}
	}

	s.logger.WithField("address", s.httpServer.Addr).Info("Server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.tunnel != nil {
		s.tunnel.Stop()
	}

	s.logger.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
