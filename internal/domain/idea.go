package domain

import (
	"context"
	"time"
)

// Idea is one published startup idea. Premium ideas serve full content only
// to premium-tier callers; everyone else gets the summary view.
type Idea struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	Tags        []string  `json:"tags"`
	Premium     bool      `json:"premium"`
	PublishedAt time.Time `json:"published_at"`
}

type IdeaRepository interface {
	List(ctx context.Context, limit int) ([]Idea, error)
	GetBySlug(ctx context.Context, slug string) (*Idea, error)
}

type IdeaUsecase interface {
	List(ctx context.Context) ([]Idea, error)
	GetBySlug(ctx context.Context, slug string) (*Idea, error)
}
