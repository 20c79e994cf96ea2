package handlers

import (
	"strings"
	"unicode/utf8"

	"noticias/internal/models"
)

// Validation limits for article fields.
const (
	maxTitleLen   = 300
	maxAuthorLen  = 120
	maxContentLen = 100_000
)

// validateArticle checks article form inputs and returns the first error
// found, in the words shown to the editor.
func validateArticle(title, author, content string, category models.Category) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "O título é obrigatório."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "O título é demasiado longo (máximo 300 caracteres)."
	}
	if utf8.RuneCountInString(strings.TrimSpace(author)) > maxAuthorLen {
		return "O nome do autor é demasiado longo (máximo 120 caracteres)."
	}
	if strings.TrimSpace(content) == "" {
		return "O conteúdo é obrigatório."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "O conteúdo é demasiado longo (máximo 100.000 caracteres)."
	}
	if !category.Valid() {
		return "Escolha uma categoria válida."
	}
	return ""
}
