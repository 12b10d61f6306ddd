package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"omnibudget/internal/core"
)

// actionResponse is the envelope every JSON action endpoint answers
// with, success or not.
type actionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Badge   string `json:"badge,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp actionResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Encode JSON response failed", "error", err)
	}
}

// currentUser loads the logged-in user from the session cookie.
func (s *Server) currentUser(r *http.Request) (core.User, error) {
	userID, err := s.sessions.UserID(r)
	if err != nil {
		return core.User{}, core.ErrUnauthenticated
	}
	user, err := s.authSvc.CurrentUser(r.Context(), userID)
	if err != nil {
		// Stale cookie for a deleted user behaves like no session.
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrUnauthenticated
		}
		return core.User{}, err
	}
	return user, nil
}

// requirePage gates a browser route: anonymous visitors are redirected
// to the login page.
func (s *Server) requirePage(next func(http.ResponseWriter, *http.Request, core.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			if errors.Is(err, core.ErrUnauthenticated) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		next(w, r, user)
	}
}

// requireAction gates a JSON endpoint: anonymous callers get the error
// envelope before any store access happens.
func (s *Server) requireAction(next func(http.ResponseWriter, *http.Request, core.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeJSON(w, http.StatusMethodNotAllowed, actionResponse{Error: "method not allowed"})
			return
		}
		user, err := s.currentUser(r)
		if err != nil {
			if errors.Is(err, core.ErrUnauthenticated) {
				writeJSON(w, http.StatusUnauthorized, actionResponse{Error: "not logged in"})
				return
			}
			slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, actionResponse{Error: "internal error"})
			return
		}
		if err := r.ParseForm(); err != nil {
			slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: "invalid request"})
			return
		}
		next(w, r, user)
	}
}

// actionError maps domain validation failures to a client-facing
// envelope; anything unexpected becomes a logged 500.
func actionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyName):
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, actionResponse{Error: "not found"})
	default:
		slog.ErrorContext(r.Context(), "Action failed", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, actionResponse{Error: "internal error"})
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// loginSession issues a token and sets the cookie in one step.
func (s *Server) loginSession(w http.ResponseWriter, userID int64) error {
	token, exp, err := s.sessions.Issue(userID)
	if err != nil {
		return err
	}
	s.sessions.SetCookie(w, token, exp)
	return nil
}
