package domain

import (
	"context"
	"time"
)

type SubscriptionStatus string

const (
	StatusFree           SubscriptionStatus = "free"
	StatusPendingPayment SubscriptionStatus = "pending_payment"
	StatusPremium        SubscriptionStatus = "premium"
	StatusActive         SubscriptionStatus = "active"
	StatusResearcher     SubscriptionStatus = "researcher"
)

// Premium reports whether the status unlocks gated content.
func (s SubscriptionStatus) Premium() bool {
	return s == StatusPremium || s == StatusActive || s == StatusResearcher
}

// PlanChoice is the tier picked during onboarding.
type PlanChoice string

const (
	PlanFree       PlanChoice = "free"
	PlanPremium    PlanChoice = "premium"
	PlanResearcher PlanChoice = "researcher"
)

func ValidPlanChoices() []PlanChoice {
	return []PlanChoice{PlanFree, PlanPremium, PlanResearcher}
}

func (c PlanChoice) IsValid() bool {
	for _, valid := range ValidPlanChoices() {
		if c == valid {
			return true
		}
	}
	return false
}

// UserProfile is the application's durable record for a principal, keyed by
// the auth service's user id (1:1 with Session.UserID).
type UserProfile struct {
	ID                     string             `json:"id"`
	Email                  string             `json:"email"`
	SubscriptionStatus     SubscriptionStatus `json:"subscription_status"`
	SubscriptionPlan       *string            `json:"subscription_plan,omitempty"`
	HasCompletedOnboarding bool               `json:"has_completed_onboarding"`
	OnboardingPlanChoice   *PlanChoice        `json:"onboarding_plan_choice,omitempty"`
	OnboardingCompletedAt  *time.Time         `json:"onboarding_completed_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// OnboardingPatch is the update applied when a user finishes onboarding.
type OnboardingPatch struct {
	PlanChoice  PlanChoice
	Status      SubscriptionStatus
	CompletedAt time.Time
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*UserProfile, error)
	// GetOrCreate inserts the default row for a previously-unseen id and
	// returns the stored row in a single combined operation, so two
	// concurrent sign-ins for one id never race a lookup against an insert.
	GetOrCreate(ctx context.Context, id, email string) (*UserProfile, error)
	UpdateEmail(ctx context.Context, id, email string) error
	CompleteOnboarding(ctx context.Context, id string, patch OnboardingPatch) error
}
