// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"noticias/internal/slug"
)

// Category is one of the fixed editorial sections an article belongs to.
// The value stored in the database is the display name.
type Category string

const (
	CategoryRegiao      Category = "Região"
	CategoryGastronomia Category = "Gastronomia"
	CategoryPolitica    Category = "Política"
	CategoryEsportes    Category = "Esportes"
	CategoryCultura     Category = "Cultura"
	CategoryOpiniao     Category = "Opinião"
	CategoryLazer       Category = "Lazer"
	CategoryHistoria    Category = "História"
	CategoryEleicoes    Category = "Eleições 2026"
)

// Categories is the enumerated set in navigation order.
var Categories = []Category{
	CategoryRegiao,
	CategoryGastronomia,
	CategoryPolitica,
	CategoryEsportes,
	CategoryCultura,
	CategoryOpiniao,
	CategoryLazer,
	CategoryHistoria,
	CategoryEleicoes,
}

var categoriesBySlug = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[c.Slug()] = c
	}
	return m
}()

// String returns the display name.
func (c Category) String() string {
	return string(c)
}

// Slug returns the ASCII path segment used in /categoria/{name} links.
func (c Category) Slug() string {
	return slug.Generate(string(c))
}

// Valid reports whether c is in the enumerated set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryFromParam resolves a /categoria/{name} path segment. It accepts
// the ASCII slug ("eleicoes-2026", "politica") as well as the decoded
// display name with any first-letter casing ("política", "Região").
func CategoryFromParam(param string) (Category, bool) {
	decoded, err := url.PathUnescape(param)
	if err != nil {
		decoded = param
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", false
	}

	if c, ok := categoriesBySlug[strings.ToLower(decoded)]; ok {
		return c, true
	}

	c := Category(capitalizeFirst(decoded))
	if c.Valid() {
		return c, true
	}

	// Last resort: "REGIÃO" or "eleições 2026" fold to a known slug.
	if c, ok := categoriesBySlug[slug.Generate(decoded)]; ok {
		return c, true
	}
	return "", false
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
