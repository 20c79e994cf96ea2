package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type seedArticle struct {
	title, author, category, content string
}

var seedArticles = []seedArticle{
	{
		title:    "Câmara aprova novo plano de mobilidade urbana",
		author:   "Redação",
		category: "Política",
		content:  "<p>O plano prevê novas ciclovias e a renovação da frota de ônibus até 2028.</p>",
	},
	{
		title:    "Festival de inverno reúne chefs da região",
		author:   "Ana Ribeiro",
		category: "Gastronomia",
		content:  "<p>Durante três fins de semana, a praça central recebe barracas de pratos típicos.</p>",
	},
	{
		title:    "O que esperar das eleições de 2026",
		author:   "Carlos Menezes",
		category: "Eleições 2026",
		content:  "<p>Os partidos começam a definir alianças para a disputa estadual.</p>",
	},
	{
		title:    "Por uma cidade que caminha",
		author:   "Júlia Prado",
		category: "Opinião",
		content:  "<p>Calçadas largas e arborizadas também são política pública.</p>",
	},
	{
		title:    "Time local garante vaga na final do estadual",
		author:   "Redação",
		category: "Esportes",
		content:  "<p>A vitória por 2 a 1 veio nos acréscimos do segundo tempo.</p>",
	},
}

// Seed inserts a handful of sample articles so the public pages have
// something to render in development. It is a no-op once any article exists.
func Seed(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return fmt.Errorf("seed check articles: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, a := range seedArticles {
		_, err := db.ExecContext(ctx, `
			INSERT INTO articles (title, author, content, category)
			VALUES ($1, $2, $3, $4)
		`, a.title, a.author, a.content, a.category)
		if err != nil {
			return fmt.Errorf("seed insert article: %w", err)
		}
	}

	slog.Info("database seeded with sample articles", "count", len(seedArticles))
	return nil
}
