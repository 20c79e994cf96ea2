// Package router sets up all HTTP routes and middleware chains for the
// news site. It organizes routes into public, login and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"noticias/internal/handlers"
	"noticias/internal/metrics"
	"noticias/internal/middleware"
	"noticias/internal/upload"
	"noticias/web"
)

// maxBodyBytes caps request bodies: one image plus the text fields.
const maxBodyBytes = upload.MaxImageSize + 1<<20

// Login attempts allowed per client IP and window.
const (
	LoginAttempts = 5
	LoginWindow   = 15 * time.Minute
)

// Options carries the cross-cutting pieces the router wires in.
type Options struct {
	Sessions      middleware.SessionLoader
	Metrics       *metrics.Metrics
	LoginLimiter  *middleware.RateLimiter
	SecureCookies bool

	// TrustProxy takes the client address from X-Forwarded-For or
	// X-Real-IP. Off, the login limiter sees only the TCP peer.
	TrustProxy bool
}

// NewLoginLimiter returns the rate limiter for POST /login. The caller
// stops it on shutdown.
func NewLoginLimiter() *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(LoginAttempts, LoginWindow)
	rl.Message = "Demasiadas tentativas de login. Tente novamente dentro de 15 minutos."
	return rl
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, errs *handlers.Errors, public *handlers.Public, auth *handlers.Auth, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer(errs.Panic))
	r.Use(middleware.SecureHeaders(opts.SecureCookies))
	r.Use(opts.Metrics.Middleware)

	r.NotFound(errs.NotFound)
	r.MethodNotAllowed(errs.MethodNotAllowed)

	// Infrastructure endpoints: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	r.Method(http.MethodGet, "/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LimitBody(maxBodyBytes))
		r.Use(middleware.LoadSession(opts.Sessions))
		r.Use(middleware.CSRF(opts.SecureCookies, errs.Fault))

		r.Get("/", public.Home)
		r.Get("/artigo/{id}", public.Article)
		r.Get("/categoria/{name}", public.Category)
		r.Get("/todos-artigos", public.AllArticles)
		r.Get("/pesquisa", public.Search)
		r.Get("/contato", public.Contact)

		r.Get("/login", auth.LoginPage)
		r.With(opts.LoginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Get("/logout", auth.Logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			})
			r.Get("/dashboard", admin.Dashboard)
			r.Get("/novo", admin.NewArticle)
			r.Post("/salvar", admin.SaveArticle)
			r.Get("/editar/{id}", admin.EditArticle)
			r.Post("/salvar-edicao/{id}", admin.SaveEdit)

			// Deleting is a plain link, so the token travels in the query.
			r.With(middleware.CSRFQuery(errs.Fault)).Get("/apagar/{id}", admin.DeleteArticle)
		})
	})

	return r
}

// staticHandler serves the embedded CSS and JS under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
