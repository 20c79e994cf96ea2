package sanitize

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		contains  []string
		forbidden []string
	}{
		{
			name:     "keeps formatting",
			in:       `<p>Olá <strong>mundo</strong> <em>!</em></p><ul><li>um</li></ul>`,
			contains: []string{"<p>", "<strong>mundo</strong>", "<li>um</li>"},
		},
		{
			name:      "strips script",
			in:        `<p>texto</p><script>alert(1)</script>`,
			contains:  []string{"<p>texto</p>"},
			forbidden: []string{"<script", "alert(1)"},
		},
		{
			name:      "strips event handlers",
			in:        `<img src="https://cdn/x.jpg" onerror="alert(1)">`,
			contains:  []string{`src="https://cdn/x.jpg"`},
			forbidden: []string{"onerror"},
		},
		{
			name:      "strips javascript links",
			in:        `<a href="javascript:alert(1)">clique</a>`,
			contains:  []string{"clique"},
			forbidden: []string{"javascript:"},
		},
		{
			name:     "external links get nofollow",
			in:       `<a href="https://exemplo.com">fonte</a>`,
			contains: []string{`rel="nofollow noopener"`, `target="_blank"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTML(tt.in)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("HTML(%q) = %q, missing %q", tt.in, got, s)
				}
			}
			for _, s := range tt.forbidden {
				if strings.Contains(got, s) {
					t.Errorf("HTML(%q) = %q, should not contain %q", tt.in, got, s)
				}
			}
		})
	}
}

func TestText(t *testing.T) {
	in := "<h2>Título</h2><p>Primeiro   parágrafo.</p><p>Segundo<br>linha</p><script>x()</script>"
	want := "Título Primeiro parágrafo. Segundo linha"
	if got := Text(in); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short text untouched", "<p>Curto.</p>", 50, "Curto."},
		{"cut on word boundary", "<p>A chuva voltou a cair na região</p>", 15, "A chuva voltou…"},
		{"trailing punctuation dropped", "<p>Um, dois, três quatro</p>", 9, "Um, dois…"},
		{"counts runes not bytes", "<p>ação ação ação</p>", 9, "ação ação…"},
		{"zero means no limit", "<p>tudo</p>", 0, "tudo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.in, tt.n); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
