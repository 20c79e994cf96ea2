// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"noticias/internal/models"
)

// ErrNotFound is returned by write operations that matched no row.
var ErrNotFound = errors.New("article not found")

// articleColumns is the column list shared by every article SELECT and RETURNING.
const articleColumns = `id, title, author, content, category, image_url, created_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*models.Article, error) {
	a := &models.Article{}
	if err := row.Scan(
		&a.ID, &a.Title, &a.Author, &a.Content, &a.Category, &a.ImageURL, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return a, nil
}

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// list runs a query returning article rows. op names the operation in errors.
func (s *ArticleStore) list(ctx context.Context, op, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ListAll returns every article, newest first.
func (s *ArticleStore) ListAll(ctx context.Context) ([]models.Article, error) {
	return s.list(ctx, "list articles", `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY created_at DESC
	`)
}

// ListByCategory returns the articles of one category, newest first.
func (s *ArticleStore) ListByCategory(ctx context.Context, category models.Category) ([]models.Article, error) {
	return s.list(ctx, "list articles by category", `
		SELECT `+articleColumns+`
		FROM articles
		WHERE category = $1
		ORDER BY created_at DESC
	`, category)
}

// ListLatestByCategory returns at most limit articles of one category, newest first.
func (s *ArticleStore) ListLatestByCategory(ctx context.Context, category models.Category, limit int) ([]models.Article, error) {
	return s.list(ctx, "list latest articles by category", `
		SELECT `+articleColumns+`
		FROM articles
		WHERE category = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, category, limit)
}

// Search returns articles whose title or content contains term, ignoring
// case. The term is matched literally: % and _ carry no wildcard meaning.
func (s *ArticleStore) Search(ctx context.Context, term string) ([]models.Article, error) {
	return s.list(ctx, "search articles", `
		SELECT `+articleColumns+`
		FROM articles
		WHERE title ILIKE $1 OR content ILIKE $1
		ORDER BY created_at DESC
	`, containsPattern(term))
}

// containsPattern builds an ILIKE pattern matching term anywhere.
func containsPattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// FindByID retrieves an article by its ID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// Create inserts a new article and returns it with the generated ID and timestamp.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	created, err := scanArticle(s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, author, content, category, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+articleColumns,
		a.Title, a.Author, a.Content, a.Category, a.ImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return created, nil
}

// Update overwrites title, author, content and category of an existing
// article. A nil ImageURL keeps the stored image; a non-nil one replaces it.
// The image URL held before the update is returned so the caller can
// discard a replaced object. Returns ErrNotFound when the id does not exist.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) (previousImage *string, err error) {
	err = s.db.QueryRowContext(ctx, `
		UPDATE articles AS a
		SET title = $1, author = $2, content = $3, category = $4,
		    image_url = COALESCE($5, old.image_url)
		FROM (SELECT id, image_url FROM articles WHERE id = $6 FOR UPDATE) AS old
		WHERE a.id = old.id
		RETURNING old.image_url
	`, a.Title, a.Author, a.Content, a.Category, a.ImageURL, a.ID).Scan(&previousImage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return previousImage, nil
}

// Delete removes an article inside a transaction: the row is locked and
// read, then deleted, then the transaction commits. The deleted article is
// returned so the caller can clean up its image. Returns nil when the id
// does not exist, in which case the transaction is rolled back untouched.
func (s *ArticleStore) Delete(ctx context.Context, id int64) (*models.Article, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete article: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	a, err := scanArticle(tx.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles WHERE id = $1
		FOR UPDATE
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock article for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete article: %w", err)
	}
	return a, nil
}

// Suggestions picks up to limit articles to show under article id: one
// random article from the same category first, then random articles from
// any category to fill the remaining slots. The source article is never
// included and no article appears twice.
func (s *ArticleStore) Suggestions(ctx context.Context, id int64, category models.Category, limit int) ([]models.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	picked := make([]models.Article, 0, limit)

	sibling, err := scanArticle(s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE category = $1 AND id <> $2
		ORDER BY RANDOM()
		LIMIT 1
	`, category, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("suggest same category: %w", err)
	default:
		picked = append(picked, *sibling)
	}

	needed := limit - len(picked)
	if needed == 0 {
		return picked, nil
	}

	exclude := make([]any, 0, len(picked)+1)
	exclude = append(exclude, id)
	for _, a := range picked {
		exclude = append(exclude, a.ID)
	}

	fill, err := s.list(ctx, "suggest random", `
		SELECT `+articleColumns+`
		FROM articles
		WHERE id NOT IN (`+placeholders(1, len(exclude))+`)
		ORDER BY RANDOM()
		LIMIT $`+strconv.Itoa(len(exclude)+1),
		append(exclude, needed)...,
	)
	if err != nil {
		return nil, err
	}

	return append(picked, fill...), nil
}

// placeholders returns "$from, $from+1, ..." for n positional parameters.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(parts, ", ")
}
