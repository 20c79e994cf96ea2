package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"noticias/internal/models"
	"noticias/internal/service"
)

func newPublic(t *testing.T) (*Public, *mockArticles) {
	t.Helper()
	articles := new(mockArticles)
	p := NewPublic(articles, renderer(t), NewErrors(renderer(t)), Contact{
		Email: "redacao@exemplo.com",
		Phone: "(41) 3333-0000",
	})
	return p, articles
}

var (
	opinionPiece  = models.Article{ID: 7, Title: "Coluna da semana", Author: "Rui", Content: "<p>opinião</p>", Category: models.CategoryOpiniao, CreatedAt: time.Now()}
	politicsPiece = models.Article{ID: 8, Title: "Câmara vota orçamento", Author: "Ana", Content: "<p>votação</p>", Category: models.CategoryPolitica, CreatedAt: time.Now()}
)

func TestHome(t *testing.T) {
	p, articles := newPublic(t)
	articles.On("Home", mock.Anything).Return(&service.HomePage{
		Articles: []models.Article{politicsPiece, opinionPiece},
		Opinion:  []models.Article{opinionPiece},
		Politics: []models.Article{politicsPiece},
	}, nil)

	rr := httptest.NewRecorder()
	p.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Coluna da semana")
	assert.Contains(t, rr.Body.String(), "Câmara vota orçamento")
	articles.AssertExpectations(t)
}

func TestHomeServiceFailure(t *testing.T) {
	p, articles := newPublic(t)
	articles.On("Home", mock.Anything).Return(nil, errors.New("pq: connection refused"))

	rr := httptest.NewRecorder()
	p.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestArticle(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		p, articles := newPublic(t)
		articles.On("Article", mock.Anything, int64(8)).Return(&service.ArticlePage{
			Article:     &politicsPiece,
			Suggestions: []models.Article{opinionPiece},
		}, nil)

		rr := httptest.NewRecorder()
		p.Article(rr, withParams(httptest.NewRequest(http.MethodGet, "/artigo/8", nil), "id", "8"))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "<title>Câmara vota orçamento | Notícias</title>")
		assert.Contains(t, body, "Leia também")
		assert.Contains(t, body, `href="/artigo/7"`)
	})

	t.Run("missing", func(t *testing.T) {
		p, articles := newPublic(t)
		articles.On("Article", mock.Anything, int64(99)).Return(nil, service.ErrNotFound)

		rr := httptest.NewRecorder()
		p.Article(rr, withParams(httptest.NewRequest(http.MethodGet, "/artigo/99", nil), "id", "99"))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	for _, id := range []string{"abc", "0", "-4", "1.5", ""} {
		t.Run("invalid id "+id, func(t *testing.T) {
			p, articles := newPublic(t)

			rr := httptest.NewRecorder()
			p.Article(rr, withParams(httptest.NewRequest(http.MethodGet, "/artigo/x", nil), "id", id))

			assert.Equal(t, http.StatusNotFound, rr.Code)
			articles.AssertNotCalled(t, "Article", mock.Anything, mock.Anything)
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		param string
		want  models.Category
	}{
		{"politica", models.CategoryPolitica},
		{"Pol%C3%ADtica", models.CategoryPolitica},
		{"eleicoes-2026", models.CategoryEleicoes},
		{"regiao", models.CategoryRegiao},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			p, articles := newPublic(t)
			articles.On("ByCategory", mock.Anything, tt.want).Return([]models.Article{politicsPiece}, nil)

			rr := httptest.NewRecorder()
			p.Category(rr, withParams(httptest.NewRequest(http.MethodGet, "/categoria/x", nil), "name", tt.param))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "<h1>"+tt.want.String()+"</h1>")
			assert.Contains(t, rr.Body.String(), `href="/categoria/`+tt.want.Slug()+`" class="active"`)
			articles.AssertExpectations(t)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		p, articles := newPublic(t)

		rr := httptest.NewRecorder()
		p.Category(rr, withParams(httptest.NewRequest(http.MethodGet, "/categoria/economia", nil), "name", "economia"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		articles.AssertNotCalled(t, "ByCategory", mock.Anything, mock.Anything)
	})
}

func TestAllArticles(t *testing.T) {
	p, articles := newPublic(t)
	articles.On("All", mock.Anything).Return([]models.Article(nil), nil)

	rr := httptest.NewRecorder()
	p.AllArticles(rr, httptest.NewRequest(http.MethodGet, "/todos-artigos", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Nenhum artigo encontrado.")
	assert.Contains(t, rr.Body.String(), `href="/todos-artigos" class="active"`)
}

func TestSearch(t *testing.T) {
	t.Run("term is trimmed", func(t *testing.T) {
		p, articles := newPublic(t)
		articles.On("Search", mock.Anything, "câmara").Return([]models.Article{politicsPiece}, nil)

		rr := httptest.NewRecorder()
		p.Search(rr, httptest.NewRequest(http.MethodGet, "/pesquisa?q=+c%C3%A2mara+", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "1 artigo encontrado")
		articles.AssertExpectations(t)
	})

	for _, target := range []string{"/pesquisa", "/pesquisa?q=", "/pesquisa?q=%20%20"} {
		t.Run("blank "+target, func(t *testing.T) {
			p, articles := newPublic(t)

			rr := httptest.NewRecorder()
			p.Search(rr, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "/", rr.Header().Get("Location"))
			articles.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}

	t.Run("query is escaped", func(t *testing.T) {
		p, articles := newPublic(t)
		articles.On("Search", mock.Anything, "<script>").Return([]models.Article(nil), nil)

		rr := httptest.NewRecorder()
		p.Search(rr, httptest.NewRequest(http.MethodGet, "/pesquisa?q=%3Cscript%3E", nil))

		assert.NotContains(t, rr.Body.String(), "<script>")
	})
}

func TestContact(t *testing.T) {
	p, _ := newPublic(t)

	rr := httptest.NewRecorder()
	p.Contact(rr, httptest.NewRequest(http.MethodGet, "/contato", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mailto:redacao@exemplo.com")
	assert.Contains(t, rr.Body.String(), "(41) 3333-0000")
}
