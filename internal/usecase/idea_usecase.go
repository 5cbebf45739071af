package usecase

import (
	"context"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"
)

const ideaListLimit = 50

type ideaUsecase struct {
	repo domain.IdeaRepository
}

func NewIdeaUsecase(repo domain.IdeaRepository) domain.IdeaUsecase {
	return &ideaUsecase{repo: repo}
}

// List returns the published feed as summaries. Full content is only served
// through GetBySlug so the listing is identical for every tier.
func (u *ideaUsecase) List(ctx context.Context) ([]domain.Idea, error) {
	ideas, err := u.repo.List(ctx, ideaListLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range ideas {
		ideas[i].Content = ""
	}
	return ideas, nil
}

// GetBySlug serves the full idea. Premium content degrades to the summary
// view for non-premium callers rather than failing the request.
func (u *ideaUsecase) GetBySlug(ctx context.Context, slug string) (*domain.Idea, error) {
	idea, err := u.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperror.NotFound("Idea not found")
	}
	if idea.Premium && !callerIsPremium(ctx) {
		idea.Content = ""
	}
	return idea, nil
}

// callerIsPremium reads the tier the auth middleware resolved. A missing or
// unknown tier is treated as free.
func callerIsPremium(ctx context.Context) bool {
	tier, ok := ctx.Value(domain.KeyUserTier).(domain.SubscriptionStatus)
	return ok && tier.Premium()
}
