package postgres

import (
	"context"
	"errors"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type ideaRepo struct {
	db *pgxpool.Pool
}

func NewIdeaRepository(db *pgxpool.Pool) domain.IdeaRepository {
	return &ideaRepo{db: db}
}

func (r *ideaRepo) List(ctx context.Context, limit int) ([]domain.Idea, error) {
	query := `SELECT id, slug, title, summary, content, tags, premium, published_at
              FROM ideas
              WHERE published_at <= now()
              ORDER BY published_at DESC
              LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []domain.Idea
	for rows.Next() {
		var idea domain.Idea
		err := rows.Scan(
			&idea.ID, &idea.Slug, &idea.Title, &idea.Summary, &idea.Content,
			pq.Array(&idea.Tags), &idea.Premium, &idea.PublishedAt,
		)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

func (r *ideaRepo) GetBySlug(ctx context.Context, slug string) (*domain.Idea, error) {
	query := `SELECT id, slug, title, summary, content, tags, premium, published_at
              FROM ideas
              WHERE slug = $1 AND published_at <= now()`
	var idea domain.Idea
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&idea.ID, &idea.Slug, &idea.Title, &idea.Summary, &idea.Content,
		pq.Array(&idea.Tags), &idea.Premium, &idea.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &idea, nil
}
