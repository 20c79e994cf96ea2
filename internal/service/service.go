// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service holds the article use cases shared by the public pages
// and the admin area. Writes that carry an image are coordinated with
// object storage through an upload saga.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"noticias/internal/models"
	"noticias/internal/sanitize"
	"noticias/internal/store"
	"noticias/internal/upload"
)

// Listing sizes used by the public pages.
const (
	SuggestionCount = 3
	HomeBoxSize     = 5
)

var (
	// ErrNotFound is returned when the requested article does not exist.
	ErrNotFound = errors.New("article not found")
	// ErrUploadsDisabled is returned when an image is submitted but no
	// object storage is configured.
	ErrUploadsDisabled = errors.New("image upload is not configured")
)

// ArticleRepository is the persistence the service needs.
// *store.ArticleStore implements it.
type ArticleRepository interface {
	ListAll(ctx context.Context) ([]models.Article, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Article, error)
	ListLatestByCategory(ctx context.Context, category models.Category, limit int) ([]models.Article, error)
	Search(ctx context.Context, term string) ([]models.Article, error)
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) (*string, error)
	Delete(ctx context.Context, id int64) (*models.Article, error)
	Suggestions(ctx context.Context, id int64, category models.Category, limit int) ([]models.Article, error)
}

// HomePage is everything the front page shows.
type HomePage struct {
	Articles []models.Article
	Opinion  []models.Article
	Politics []models.Article
}

// ArticlePage is a single article with its suggestions.
type ArticlePage struct {
	Article     *models.Article
	Suggestions []models.Article
}

// ArticleInput is a validated admin form submission. Image is nil when no
// file was sent.
type ArticleInput struct {
	Title    string
	Author   string
	Content  string
	Category models.Category
	Image    *upload.File
}

// ArticleService implements the article use cases.
type ArticleService struct {
	repo    ArticleRepository
	uploads *upload.Coordinator
}

// NewArticleService creates an ArticleService.
func NewArticleService(repo ArticleRepository, uploads *upload.Coordinator) *ArticleService {
	return &ArticleService{repo: repo, uploads: uploads}
}

// Home loads the front page. The three listings are independent and run
// concurrently.
func (s *ArticleService) Home(ctx context.Context) (*HomePage, error) {
	page := &HomePage{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Articles, err = s.repo.ListAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Opinion, err = s.repo.ListLatestByCategory(ctx, models.CategoryOpiniao, HomeBoxSize)
		return err
	})
	g.Go(func() (err error) {
		page.Politics, err = s.repo.ListLatestByCategory(ctx, models.CategoryPolitica, HomeBoxSize)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load home page: %w", err)
	}
	return page, nil
}

// All returns every article, newest first.
func (s *ArticleService) All(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListAll(ctx)
}

// ByCategory returns the articles of one category, newest first.
func (s *ArticleService) ByCategory(ctx context.Context, category models.Category) ([]models.Article, error) {
	if !category.Valid() {
		return nil, ErrNotFound
	}
	return s.repo.ListByCategory(ctx, category)
}

// Search returns the articles whose title or content contains term.
func (s *ArticleService) Search(ctx context.Context, term string) ([]models.Article, error) {
	return s.repo.Search(ctx, term)
}

// Get returns one article or ErrNotFound.
func (s *ArticleService) Get(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Article returns an article together with its suggestions.
func (s *ArticleService) Article(ctx context.Context, id int64) (*ArticlePage, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.repo.Suggestions(ctx, a.ID, a.Category, SuggestionCount)
	if err != nil {
		return nil, err
	}
	return &ArticlePage{Article: a, Suggestions: suggestions}, nil
}

// Create uploads the image, if any, and inserts the article. When the
// insert fails the uploaded object is deleted again.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*models.Article, error) {
	saga, err := s.beginUpload(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	a := in.article()
	if saga != nil {
		a.ImageURL = &saga.URL
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		saga.Compensate(ctx, err)
		return nil, err
	}
	saga.Commit()

	slog.Info("article created", "id", created.ID, "category", created.Category, "image", saga != nil)
	return created, nil
}

// Update overwrites an article. A new image replaces the stored one; the
// replaced object is deleted only after the database update succeeded.
// When the update fails the new upload is deleted and the old image stays.
func (s *ArticleService) Update(ctx context.Context, id int64, in ArticleInput) error {
	saga, err := s.beginUpload(ctx, in.Image)
	if err != nil {
		return err
	}

	a := in.article()
	a.ID = id
	if saga != nil {
		a.ImageURL = &saga.URL
	}

	previous, err := s.repo.Update(ctx, a)
	if err != nil {
		saga.Compensate(ctx, err)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	saga.Commit()

	if saga != nil && previous != nil && *previous != saga.URL {
		s.uploads.Discard(ctx, *previous, "replaced")
	}

	slog.Info("article updated", "id", id, "image_replaced", saga != nil)
	return nil
}

// Delete removes an article and then, best effort, its image.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return ErrNotFound
	}

	if deleted.HasImage() && s.uploads != nil {
		s.uploads.Discard(ctx, deleted.Image(), "deleted")
	}

	slog.Info("article deleted", "id", id)
	return nil
}

// beginUpload starts the upload saga for f. A nil file yields a nil saga,
// whose Commit and Compensate are no-ops.
func (s *ArticleService) beginUpload(ctx context.Context, f *upload.File) (*upload.Saga, error) {
	if f == nil {
		return nil, nil
	}
	if s.uploads == nil {
		return nil, ErrUploadsDisabled
	}
	return s.uploads.Begin(ctx, f)
}

func (in ArticleInput) article() *models.Article {
	return &models.Article{
		Title:    in.Title,
		Author:   models.AuthorOrDefault(in.Author),
		Content:  sanitize.HTML(in.Content),
		Category: in.Category,
	}
}
