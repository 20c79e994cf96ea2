// Package mocks provides testify mocks for the service package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"noticias/internal/models"
)

// MockArticleRepository is a testify mock of service.ArticleRepository.
type MockArticleRepository struct {
	mock.Mock
}

func articles(v any) []models.Article {
	if v == nil {
		return nil
	}
	return v.([]models.Article)
}

func article(v any) *models.Article {
	if v == nil {
		return nil
	}
	return v.(*models.Article)
}

func (m *MockArticleRepository) ListAll(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	return articles(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) ListByCategory(ctx context.Context, category models.Category) ([]models.Article, error) {
	args := m.Called(ctx, category)
	return articles(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) ListLatestByCategory(ctx context.Context, category models.Category, limit int) ([]models.Article, error) {
	args := m.Called(ctx, category, limit)
	return articles(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) Search(ctx context.Context, term string) ([]models.Article, error) {
	args := m.Called(ctx, term)
	return articles(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	return article(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	args := m.Called(ctx, a)
	return article(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) Update(ctx context.Context, a *models.Article) (*string, error) {
	args := m.Called(ctx, a)
	var prev *string
	if v := args.Get(0); v != nil {
		prev = v.(*string)
	}
	return prev, args.Error(1)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	return article(args.Get(0)), args.Error(1)
}

func (m *MockArticleRepository) Suggestions(ctx context.Context, id int64, category models.Category, limit int) ([]models.Article, error) {
	args := m.Called(ctx, id, category, limit)
	return articles(args.Get(0)), args.Error(1)
}
