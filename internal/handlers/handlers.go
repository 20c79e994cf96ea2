// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the news site, grouped
// into the public pages, the login flow and the admin area. Handlers parse
// the request, call the article service and render a page.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"noticias/internal/models"
	"noticias/internal/service"
)

// formMemory is how much of a multipart form is kept in memory before
// file parts spill to disk.
const formMemory = 8 << 20

// ArticleService is the part of the service layer the handlers use.
type ArticleService interface {
	Home(ctx context.Context) (*service.HomePage, error)
	All(ctx context.Context) ([]models.Article, error)
	ByCategory(ctx context.Context, category models.Category) ([]models.Article, error)
	Search(ctx context.Context, term string) ([]models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Article(ctx context.Context, id int64) (*service.ArticlePage, error)
	Create(ctx context.Context, in service.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id int64, in service.ArticleInput) error
	Delete(ctx context.Context, id int64) error
}

// articleID reads the {id} path parameter. Only positive integers are ids.
func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
