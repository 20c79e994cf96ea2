// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"noticias/internal/models"
	"noticias/internal/render"
	"noticias/internal/service"
	"noticias/internal/upload"
)

// Flash messages shown on the dashboard after a redirect, keyed by ?ok=.
var dashboardNotices = map[string]string{
	"criado":     "Artigo criado.",
	"atualizado": "Artigo atualizado.",
	"apagado":    "Artigo apagado.",
}

// Admin groups the handlers of the authenticated admin area.
type Admin struct {
	articles ArticleService
	renderer *render.Renderer
	errors   *Errors
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(articles ArticleService, renderer *render.Renderer, errs *Errors) *Admin {
	return &Admin{
		articles: articles,
		renderer: renderer,
		errors:   errs,
	}
}

// Dashboard lists every article with edit and delete actions.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.All(r.Context())
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	var flashes []render.Flash
	if msg, ok := dashboardNotices[r.URL.Query().Get("ok")]; ok {
		flashes = append(flashes, render.Flash{Type: "success", Message: msg})
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Painel",
		Section: "admin",
		Data:    map[string]any{"Articles": items},
		Flashes: flashes,
	})
}

// NewArticle renders the empty article form.
func (a *Admin) NewArticle(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, http.StatusOK, createForm, &models.Article{}, "")
}

// SaveArticle creates an article from the submitted form.
func (a *Admin) SaveArticle(w http.ResponseWriter, r *http.Request) {
	in, file, err := readArticleForm(r)
	if err != nil {
		a.errors.Fault(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	draft := draftArticle(in, nil)
	if msg := validateArticle(in.Title, in.Author, in.Content, in.Category); msg != "" {
		a.renderForm(w, r, http.StatusUnprocessableEntity, createForm, draft, msg)
		return
	}

	_, err = a.articles.Create(r.Context(), in)
	if msg, ok := uploadMessage(err); ok {
		a.renderForm(w, r, http.StatusUnprocessableEntity, createForm, draft, msg)
		return
	}
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/dashboard?ok=criado", http.StatusSeeOther)
}

// EditArticle renders the form filled with a stored article.
func (a *Admin) EditArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		a.errors.NotFound(w, r)
		return
	}

	article, err := a.articles.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		a.errors.NotFound(w, r)
		return
	}
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	a.renderForm(w, r, http.StatusOK, editForm(id), article, "")
}

// SaveEdit overwrites a stored article with the submitted form. The
// stored image is kept unless a new one is sent.
func (a *Admin) SaveEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		a.errors.NotFound(w, r)
		return
	}

	in, file, err := readArticleForm(r)
	if err != nil {
		a.errors.Fault(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	stored, err := a.articles.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		a.errors.NotFound(w, r)
		return
	}
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	form := editForm(id)
	draft := draftArticle(in, stored)
	if msg := validateArticle(in.Title, in.Author, in.Content, in.Category); msg != "" {
		a.renderForm(w, r, http.StatusUnprocessableEntity, form, draft, msg)
		return
	}

	err = a.articles.Update(r.Context(), id, in)
	if msg, ok := uploadMessage(err); ok {
		a.renderForm(w, r, http.StatusUnprocessableEntity, form, draft, msg)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		a.errors.NotFound(w, r)
		return
	}
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/dashboard?ok=atualizado", http.StatusSeeOther)
}

// DeleteArticle removes an article and its image.
func (a *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		a.errors.NotFound(w, r)
		return
	}

	err := a.articles.Delete(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		a.errors.NotFound(w, r)
		return
	}
	if err != nil {
		a.errors.ServerError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/dashboard?ok=apagado", http.StatusSeeOther)
}

// articleForm describes one use of the article form page.
type articleForm struct {
	heading string
	action  string
}

var createForm = articleForm{heading: "Novo artigo", action: "/admin/salvar"}

func editForm(id int64) articleForm {
	return articleForm{
		heading: "Editar artigo",
		action:  "/admin/salvar-edicao/" + strconv.FormatInt(id, 10),
	}
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, status int, form articleForm, article *models.Article, message string) {
	data := map[string]any{
		"Article": article,
		"Action":  form.action,
	}
	if message != "" {
		data["Error"] = message
	}

	a.renderer.PageStatus(w, r, status, "article_form", &render.PageData{
		Title:   form.heading,
		Section: "admin",
		Data:    data,
	})
}

// readArticleForm reads the article fields and the optional image from a
// multipart (or urlencoded) form. The returned closer is nil when no
// image was sent.
func readArticleForm(r *http.Request) (service.ArticleInput, io.Closer, error) {
	if err := r.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.ArticleInput{}, nil, err
	}

	in := service.ArticleInput{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Author:   strings.TrimSpace(r.FormValue("author")),
		Content:  r.FormValue("content"),
		Category: models.Category(r.FormValue("category")),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, err
	}

	in.Image = &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return in, file, nil
}

// draftArticle is the submitted form as an article, for re-rendering.
// The stored image, if any, stays visible.
func draftArticle(in service.ArticleInput, stored *models.Article) *models.Article {
	a := &models.Article{
		Title:    in.Title,
		Author:   in.Author,
		Content:  in.Content,
		Category: in.Category,
	}
	if stored != nil {
		a.ID = stored.ID
		a.ImageURL = stored.ImageURL
	}
	return a
}

// uploadMessage maps an image failure to the message shown on the form.
func uploadMessage(err error) (string, bool) {
	var rejected *upload.RejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected.Reason.Message(), true
	case errors.Is(err, service.ErrUploadsDisabled):
		return "O envio de imagens não está disponível neste servidor.", true
	}
	return "", false
}
