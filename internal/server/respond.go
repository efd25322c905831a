package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vibrato/pkg/errs"

	"github.com/go-chi/chi/v5"
)

// writeJSON encodes v as the response body with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps service errors onto HTTP statuses. Persistence warnings
// accompany a successful mutation, so they respond 200 with the warning
// attached instead of an error status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validation *errs.ValidationError
		notFound   *errs.NotFoundError
		warning    *errs.PersistenceWarning
		playback   *errs.PlaybackStartError
	)

	switch {
	case errors.As(err, &validation):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
	case errors.As(err, &notFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &warning):
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "warning": warning.Error()})
	case errors.As(err, &playback):
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": playback.Error()})
	default:
		s.logger.WithError(err).Error("Request failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// writeMutation responds to a mutation whose only possible failure is a
// persistence warning
func (s *Server) writeMutation(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewValidation("invalid request body: %v", err)
	}
	return nil
}

// intParam parses a numeric chi URL parameter
func intParam(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errs.NewValidation("invalid %s: must be a number", name)
	}
	return value, nil
}

// int64Param parses a numeric chi URL parameter as int64
func int64Param(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, errs.NewValidation("invalid %s: must be a number", name)
	}
	return value, nil
}
