// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"noticias/internal/models"
	"noticias/internal/render"
	"noticias/internal/service"
)

// Contact holds the details shown on the contact page.
type Contact struct {
	Email string
	Phone string
}

// Public groups the handlers of the public site.
type Public struct {
	articles ArticleService
	renderer *render.Renderer
	errors   *Errors
	contact  Contact
}

// NewPublic creates a new Public handler group.
func NewPublic(articles ArticleService, renderer *render.Renderer, errs *Errors, contact Contact) *Public {
	return &Public{
		articles: articles,
		renderer: renderer,
		errors:   errs,
		contact:  contact,
	}
}

// Home renders the front page: every article plus the latest opinion and
// politics pieces.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	home, err := p.articles.Home(r.Context())
	if err != nil {
		p.errors.ServerError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "home", &render.PageData{
		Data: map[string]any{
			"Articles": home.Articles,
			"Opinion":  home.Opinion,
			"Politics": home.Politics,
		},
	})
}

// Article renders a single article with its suggestions.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		p.errors.NotFound(w, r)
		return
	}

	page, err := p.articles.Article(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		p.errors.NotFound(w, r)
		return
	}
	if err != nil {
		p.errors.ServerError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "article", &render.PageData{
		Title:   page.Article.Title,
		Section: page.Article.Category.Slug(),
		Data: map[string]any{
			"Article":     page.Article,
			"Suggestions": page.Suggestions,
		},
	})
}

// Category lists the articles of one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	category, ok := models.CategoryFromParam(chi.URLParam(r, "name"))
	if !ok {
		p.errors.NotFound(w, r)
		return
	}

	items, err := p.articles.ByCategory(r.Context(), category)
	if err != nil {
		p.errors.ServerError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "category", &render.PageData{
		Title:   category.String(),
		Section: category.Slug(),
		Data: map[string]any{
			"Category": category,
			"Articles": items,
		},
	})
}

// AllArticles lists every article, newest first.
func (p *Public) AllArticles(w http.ResponseWriter, r *http.Request) {
	items, err := p.articles.All(r.Context())
	if err != nil {
		p.errors.ServerError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "all", &render.PageData{
		Title:   "Todos os artigos",
		Section: "todos",
		Data:    map[string]any{"Articles": items},
	})
}

// Search lists the articles matching ?q=. A blank term goes back home
// without touching the database.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	items, err := p.articles.Search(r.Context(), term)
	if err != nil {
		p.errors.ServerError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "search", &render.PageData{
		Title: "Pesquisa: " + term,
		Data: map[string]any{
			"Query":    term,
			"Articles": items,
		},
	})
}

// Contact renders the contact page.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "contact", &render.PageData{
		Title:   "Contato",
		Section: "contato",
		Data: map[string]any{
			"Email": p.contact.Email,
			"Phone": p.contact.Phone,
		},
	})
}
