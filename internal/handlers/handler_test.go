// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: a mocked article service, a fake session manager and request
// builders.
package handlers

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"noticias/internal/middleware"
	"noticias/internal/models"
	"noticias/internal/render"
	"noticias/internal/service"
	"noticias/internal/session"
)

// mockArticles is a testify mock of ArticleService.
type mockArticles struct {
	mock.Mock
}

func (m *mockArticles) Home(ctx context.Context) (*service.HomePage, error) {
	args := m.Called(ctx)
	page, _ := args.Get(0).(*service.HomePage)
	return page, args.Error(1)
}

func (m *mockArticles) All(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]models.Article)
	return items, args.Error(1)
}

func (m *mockArticles) ByCategory(ctx context.Context, category models.Category) ([]models.Article, error) {
	args := m.Called(ctx, category)
	items, _ := args.Get(0).([]models.Article)
	return items, args.Error(1)
}

func (m *mockArticles) Search(ctx context.Context, term string) ([]models.Article, error) {
	args := m.Called(ctx, term)
	items, _ := args.Get(0).([]models.Article)
	return items, args.Error(1)
}

func (m *mockArticles) Get(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func (m *mockArticles) Article(ctx context.Context, id int64) (*service.ArticlePage, error) {
	args := m.Called(ctx, id)
	page, _ := args.Get(0).(*service.ArticlePage)
	return page, args.Error(1)
}

func (m *mockArticles) Create(ctx context.Context, in service.ArticleInput) (*models.Article, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func (m *mockArticles) Update(ctx context.Context, id int64, in service.ArticleInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *mockArticles) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// fakeSessions records the sessions it creates and destroys.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
	err       error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "signed"})
	return "sid", nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, MaxAge: -1})
	return f.err
}

var testRenderer *render.Renderer

func renderer(t *testing.T) *render.Renderer {
	t.Helper()
	if testRenderer == nil {
		rn, err := render.New("Notícias")
		require.NoError(t, err)
		testRenderer = rn
	}
	return testRenderer
}

// withParams attaches chi URL parameters to r, as the router would.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asAdmin marks r as coming from a logged-in admin.
func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, &session.Data{Username: "admin"}))
}

func formRequest(target string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// testUpload describes the file part of a multipart request.
type testUpload struct {
	name        string
	contentType string
	body        []byte
}

func multipartRequest(t *testing.T, target string, values url.Values, file *testUpload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func articleValues() url.Values {
	return url.Values{
		"title":    {"Festa na praça"},
		"author":   {"Ana"},
		"content":  {"<p>Muita gente</p>"},
		"category": {string(models.CategoryCultura)},
	}
}

func strPtr(s string) *string { return &s }
