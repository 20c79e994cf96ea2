// Package sanitize cleans article bodies written in the admin rich text
// editor and derives plain-text excerpts for listings.
package sanitize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// policy allows the formatting a rich text editor produces (paragraphs,
// headings, lists, links, images, tables) and strips scripts, event
// handlers and inline styles.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnLinks(true)
	return p
}()

// HTML returns content with every unsafe element and attribute removed.
func HTML(content string) string {
	return strings.TrimSpace(policy.Sanitize(content))
}

// Excerpt returns the visible text of an HTML fragment collapsed to single
// spaces and cut to at most n runes on a word boundary. An ellipsis is
// appended when the text was cut.
func Excerpt(content string, n int) string {
	text := Text(content)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:n])
	if runes[n] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// Text extracts the visible text of an HTML fragment with whitespace
// collapsed. Unparseable input is returned trimmed.
func Text(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}
	doc.Find("script, style").Remove()
	// Block elements are joined without whitespace by Text(); pad them.
	doc.Find("p, br, li, h1, h2, h3, h4, h5, h6, div, blockquote, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
