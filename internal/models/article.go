// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// DefaultAuthor is stored when an article is submitted without an author.
const DefaultAuthor = "Redação"

// Article is a single published news item. Content holds sanitized HTML.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasImage reports whether the article references a stored image.
func (a Article) HasImage() bool {
	return a.ImageURL != nil && *a.ImageURL != ""
}

// Image returns the image URL or "" when there is none.
func (a Article) Image() string {
	if a.ImageURL == nil {
		return ""
	}
	return *a.ImageURL
}

// AuthorOrDefault returns the trimmed author, falling back to DefaultAuthor.
func AuthorOrDefault(author string) string {
	if a := strings.TrimSpace(author); a != "" {
		return a
	}
	return DefaultAuthor
}
