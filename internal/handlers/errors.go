package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"noticias/internal/middleware"
	"noticias/internal/render"
)

// Errors renders the error pages and decides which one a failure gets.
type Errors struct {
	renderer *render.Renderer
}

// NewErrors creates the error page handler.
func NewErrors(renderer *render.Renderer) *Errors {
	return &Errors{renderer: renderer}
}

// NotFound renders the 404 page. It doubles as the router's NotFound handler.
func (e *Errors) NotFound(w http.ResponseWriter, r *http.Request) {
	e.page(w, r, http.StatusNotFound, "Página não encontrada.")
}

// MethodNotAllowed renders the 405 page.
func (e *Errors) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	e.page(w, r, http.StatusMethodNotAllowed, "Método não permitido.")
}

// ServerError logs err and renders the generic 500 page. The detail never
// reaches the client.
func (e *Errors) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromCtx(r.Context()),
	)
	e.page(w, r, http.StatusInternalServerError, "Ocorreu um erro inesperado. Tente novamente mais tarde.")
}

// Panic renders the 500 page after the recoverer has logged the panic.
func (e *Errors) Panic(w http.ResponseWriter, r *http.Request) {
	e.page(w, r, http.StatusInternalServerError, "Ocorreu um erro inesperado. Tente novamente mais tarde.")
}

// Fault classifies a failure raised outside a handler body, such as a
// CSRF check or an oversize form: a bad token is 403, an oversize body
// is 413 and anything else is 500.
func (e *Errors) Fault(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, middleware.ErrCSRFInvalid):
		slog.Warn("csrf check failed", "path", r.URL.Path, "request_id", middleware.RequestIDFromCtx(r.Context()))
		e.page(w, r, http.StatusForbidden, "O formulário expirou. Recarregue a página e tente novamente.")
	case errors.As(err, &tooLarge):
		slog.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
		e.page(w, r, http.StatusRequestEntityTooLarge, "O envio excede o tamanho máximo permitido. As imagens podem ter até 5 MB.")
	default:
		e.ServerError(w, r, err)
	}
}

func (e *Errors) page(w http.ResponseWriter, r *http.Request, status int, message string) {
	e.renderer.PageStatus(w, r, status, "error", &render.PageData{
		Title: message,
		Data: map[string]any{
			"Status":  status,
			"Message": message,
		},
	})
}
