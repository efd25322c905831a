package server

import (
	"net/http"
)

// handleSignUp creates an account and starts a session
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.auth.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.sessions.Create(user.ID, user.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.SetCookie(w, session)
	s.writeJSON(w, http.StatusCreated, user)
}

// handleLogin authenticates and starts a session
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.sessions.Create(user.ID, user.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.SetCookie(w, session)
	s.writeJSON(w, http.StatusOK, user)
}

// handleLogout ends the session and clears the current user
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.sessions.FromRequest(r); ok {
		s.sessions.Delete(session.ID)
	}
	s.sessions.ClearCookie(w)

	if err := s.auth.Logout(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the logged-in user
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.FromRequest(r); !ok {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}

	user, ok, err := s.auth.CurrentUser()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}
