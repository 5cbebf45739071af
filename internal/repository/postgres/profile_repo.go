package postgres

import (
	"context"
	"errors"
	"time"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

const profileColumns = `id, email, subscription_status, subscription_plan,
	has_completed_onboarding, onboarding_plan_choice, onboarding_completed_at,
	created_at, updated_at`

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var (
		p          domain.UserProfile
		status     string
		planChoice *string
	)
	err := row.Scan(
		&p.ID, &p.Email, &status, &p.SubscriptionPlan,
		&p.HasCompletedOnboarding, &planChoice, &p.OnboardingCompletedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.SubscriptionStatus = domain.SubscriptionStatus(status)
	if planChoice != nil {
		choice := domain.PlanChoice(*planChoice)
		p.OnboardingPlanChoice = &choice
	}
	return &p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

// GetOrCreate inserts the default row when the id is unseen and reads the
// stored row back, inside one transaction. Concurrent sign-ins for the same
// id (other tab, other device) therefore converge on a single row without a
// separate lookup racing the insert.
func (r *profileRepo) GetOrCreate(ctx context.Context, id, email string) (*domain.UserProfile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	insert := `INSERT INTO users (id, email, subscription_status, has_completed_onboarding, created_at, updated_at)
               VALUES ($1, $2, $3, false, $4, $4)
               ON CONFLICT (id) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, id, email, string(domain.StatusFree), now); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.Conflict("User with this email already exists")
		}
		return nil, apperror.Internal(err)
	}

	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	profile, err := scanProfile(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

func (r *profileRepo) UpdateEmail(ctx context.Context, id, email string) error {
	query := `UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, email, time.Now()); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) CompleteOnboarding(ctx context.Context, id string, patch domain.OnboardingPatch) error {
	query := `UPDATE users
              SET has_completed_onboarding = true,
                  onboarding_plan_choice = $2,
                  onboarding_completed_at = $3,
                  subscription_status = $4,
                  updated_at = $5
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		id, string(patch.PlanChoice), patch.CompletedAt, string(patch.Status), time.Now())
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}
