package http

import (
	"errors"
	"log/slog"
	"net/http"

	"omnibudget/internal/core"
	"omnibudget/internal/profile"
)

// handleIndex renders the landing page; logged-in visitors go straight
// to their dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, "index.html", struct {
		Profiles []profile.Config
	}{Profiles: profile.All()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	type loginPage struct {
		Error string
	}

	if r.Method == http.MethodGet {
		if _, err := s.currentUser(r); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		s.renderPage(w, r, "login.html", loginPage{})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, "login.html", loginPage{Error: "Invalid request"})
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, err := s.authSvc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.renderPage(w, r, "login.html", loginPage{Error: "Invalid username or password"})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err, "username", username)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.loginSession(w, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Issue session failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	type registerPage struct {
		Error    string
		Profiles []profile.Config
	}
	page := registerPage{Profiles: profile.All()}

	if r.Method == http.MethodGet {
		if _, err := s.currentUser(r); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		s.renderPage(w, r, "register.html", page)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		page.Error = "Invalid request"
		s.renderPage(w, r, "register.html", page)
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")
	prof := core.ProfileKey(sanitizeInput(r.Form.Get("profile")))

	user, err := s.authSvc.Register(r.Context(), username, email, password, prof)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUsernameTaken):
			page.Error = "Username already exists"
		case errors.Is(err, core.ErrEmailTaken):
			page.Error = "Email already registered"
		case errors.Is(err, core.ErrUnknownProfile):
			page.Error = "Unknown profile"
		case errors.Is(err, core.ErrEmptyUsername),
			errors.Is(err, core.ErrEmptyEmail),
			errors.Is(err, core.ErrEmptyPassword):
			page.Error = "All fields are required"
		default:
			slog.ErrorContext(r.Context(), "Registration failed", "error", err, "username", username)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderPage(w, r, "register.html", page)
		return
	}

	if err := s.loginSession(w, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Issue session failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSwitchProfile changes the active profile and returns to the
// dashboard. Unknown keys redirect back without changing anything.
func (s *Server) handleSwitchProfile(w http.ResponseWriter, r *http.Request, user core.User) {
	key := core.ProfileKey(r.PathValue("key"))
	if err := s.authSvc.SwitchProfile(r.Context(), user, key); err != nil {
		if errors.Is(err, core.ErrUnknownProfile) {
			slog.WarnContext(r.Context(), "Unknown profile key", "key", key, "user_id", user.ID)
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "Switch profile failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.invalidateDashboards(user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// renderPage executes a full-page template with a shared error path.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}
