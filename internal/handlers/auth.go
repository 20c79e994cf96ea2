package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"noticias/internal/auth"
	"noticias/internal/middleware"
	"noticias/internal/render"
	"noticias/internal/session"
)

// loginFailed is shown for every failed login.
const loginFailed = "Utilizador ou senha inválidos."

// SessionManager creates and destroys admin sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer    *render.Renderer
	sessions    SessionManager
	credentials auth.Credentials
	errors      *Errors
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions SessionManager, credentials auth.Credentials, errs *Errors) *Auth {
	return &Auth{
		renderer:    renderer,
		sessions:    sessions,
		credentials: credentials,
		errors:      errs,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{Title: "Entrar"})
}

// LoginSubmit checks the submitted credentials and opens a session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if err := a.credentials.Verify(username, password); err != nil {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
			Title: "Entrar",
			Data: map[string]any{
				"Error":    loginFailed,
				"Username": username,
			},
		})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	slog.Info("admin logged in", "username", username)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout destroys the session and returns to the front page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
