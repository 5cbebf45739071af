package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/internal/usecase"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIdeaRepo struct {
	mock.Mock
}

func (m *MockIdeaRepo) List(ctx context.Context, limit int) ([]domain.Idea, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Idea), args.Error(1)
}

func (m *MockIdeaRepo) GetBySlug(ctx context.Context, slug string) (*domain.Idea, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Idea), args.Error(1)
}

func premiumIdea() *domain.Idea {
	return &domain.Idea{
		Slug:    "ai-tools",
		Title:   "AI Tools Digest",
		Summary: "A short teaser",
		Content: "The full analysis",
		Premium: true,
	}
}

func TestIdeaList(t *testing.T) {
	t.Run("Listing always strips full content", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		repo.On("List", mock.Anything, 50).Return([]domain.Idea{
			{Slug: "a", Content: "full a", Premium: false},
			{Slug: "b", Content: "full b", Premium: true},
		}, nil)

		uc := usecase.NewIdeaUsecase(repo)
		ideas, err := uc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, ideas, 2)
		for _, idea := range ideas {
			assert.Empty(t, idea.Content)
		}
	})

	t.Run("Store failure is wrapped as internal", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		repo.On("List", mock.Anything, 50).Return(nil, errors.New("connection reset"))

		uc := usecase.NewIdeaUsecase(repo)
		_, err := uc.List(context.Background())
		assert.True(t, apperror.IsKind(err, apperror.KindInternal))
	})
}

func TestIdeaGetBySlug(t *testing.T) {
	t.Run("Premium content is stripped for anonymous callers", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		repo.On("GetBySlug", mock.Anything, "ai-tools").Return(premiumIdea(), nil)

		uc := usecase.NewIdeaUsecase(repo)
		idea, err := uc.GetBySlug(context.Background(), "ai-tools")
		require.NoError(t, err)
		assert.Empty(t, idea.Content)
		assert.Equal(t, "A short teaser", idea.Summary)
	})

	t.Run("Premium content is stripped for free-tier callers", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		repo.On("GetBySlug", mock.Anything, "ai-tools").Return(premiumIdea(), nil)

		ctx := context.WithValue(context.Background(), domain.KeyUserTier, domain.StatusFree)
		uc := usecase.NewIdeaUsecase(repo)
		idea, err := uc.GetBySlug(ctx, "ai-tools")
		require.NoError(t, err)
		assert.Empty(t, idea.Content)
	})

	t.Run("Premium content is served to entitled callers", func(t *testing.T) {
		for _, tier := range []domain.SubscriptionStatus{
			domain.StatusPremium, domain.StatusActive, domain.StatusResearcher,
		} {
			repo := new(MockIdeaRepo)
			repo.On("GetBySlug", mock.Anything, "ai-tools").Return(premiumIdea(), nil)

			ctx := context.WithValue(context.Background(), domain.KeyUserTier, tier)
			uc := usecase.NewIdeaUsecase(repo)
			idea, err := uc.GetBySlug(ctx, "ai-tools")
			require.NoError(t, err)
			assert.Equal(t, "The full analysis", idea.Content, "tier %s", tier)
		}
	})

	t.Run("Free content is served regardless of tier", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		free := premiumIdea()
		free.Premium = false
		repo.On("GetBySlug", mock.Anything, "ai-tools").Return(free, nil)

		uc := usecase.NewIdeaUsecase(repo)
		idea, err := uc.GetBySlug(context.Background(), "ai-tools")
		require.NoError(t, err)
		assert.Equal(t, "The full analysis", idea.Content)
	})

	t.Run("Unknown slug is a not-found error", func(t *testing.T) {
		repo := new(MockIdeaRepo)
		repo.On("GetBySlug", mock.Anything, "missing").Return(nil, nil)

		uc := usecase.NewIdeaUsecase(repo)
		_, err := uc.GetBySlug(context.Background(), "missing")
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
