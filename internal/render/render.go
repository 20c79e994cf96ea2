// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin area. Every page is parsed together with the base layout and
// the shared partials from the embedded filesystem.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
	_ "time/tzdata"

	"noticias/internal/middleware"
	"noticias/internal/models"
	"noticias/internal/sanitize"
	"noticias/internal/session"
)

//go:embed templates
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title      string         // Page title for <title> tag
	Section    string         // Active navigation entry (category slug, "admin", ...)
	Session    *session.Data  // Current admin session (nil if anonymous)
	CSRFToken  string         // CSRF token for forms
	SiteName   string         // Set by the renderer
	Categories []models.Category
	Data       map[string]any // Page-specific data
	Flashes    []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	siteName  string
}

// displayZone is the timezone article dates are shown in.
var displayZone = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}()

var funcMap = template.FuncMap{
	// articleHTML renders stored rich text. Content is sanitized on write;
	// sanitizing again here covers rows written before that.
	"articleHTML": func(content string) template.HTML {
		return template.HTML(sanitize.HTML(content))
	},
	"excerpt": func(n int, content string) string {
		return sanitize.Excerpt(content, n)
	},
	"categoryURL": func(c models.Category) string {
		return "/categoria/" + c.Slug()
	},
	"date": func(t time.Time) string {
		return t.In(displayZone).Format("02/01/2006 15:04")
	},
	"isoDate": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	// deref safely dereferences a string pointer for use in templates.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"year": func() int {
		return time.Now().In(displayZone).Year()
	},
}

// New creates a Renderer by parsing every page template in the embedded
// filesystem together with the base layout and partials.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials/*.html",
			page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a page with the given status code. The page is
// rendered into a buffer first so a template error still yields a clean
// 500 response.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName
	data.Categories = models.Categories
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
