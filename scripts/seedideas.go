package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

type seedIdea struct {
	slug    string
	title   string
	summary string
	content string
	tags    []string
	premium bool
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	ideas := []seedIdea{
		{
			slug:    "ai-meeting-summarizer",
			title:   "AI Meeting Summarizer for Remote Teams",
			summary: "Automatic action-item extraction from recorded standups.",
			content: "Full breakdown: market size, competitors, go-to-market, pricing tiers.",
			tags:    []string{"ai", "saas", "productivity"},
			premium: true,
		},
		{
			slug:    "local-farm-subscriptions",
			title:   "Subscription Boxes from Local Farms",
			summary: "Weekly produce boxes matched to household size and diet.",
			content: "Full breakdown: logistics model, unit economics, seasonal churn.",
			tags:    []string{"marketplace", "food"},
			premium: false,
		},
		{
			slug:    "niche-job-alerts",
			title:   "Job Alerts for Niche Engineering Roles",
			summary: "Daily digest of hard-to-find specialist openings.",
			content: "Full breakdown: sourcing pipeline, alert quality scoring, B2B angle.",
			tags:    []string{"jobs", "newsletter"},
			premium: true,
		},
	}

	for _, idea := range ideas {
		_, err := conn.Exec(ctx, `
			INSERT INTO ideas (slug, title, summary, content, tags, premium, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (slug) DO NOTHING`,
			idea.slug, idea.title, idea.summary, idea.content, idea.tags, idea.premium,
		)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("Seeded: %s\n", idea.slug)
	}
}
