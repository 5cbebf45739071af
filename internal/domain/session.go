package domain

import (
	"context"
	"time"
)

// AuthEventType mirrors the transition names emitted by the hosted auth service.
type AuthEventType string

const (
	EventSignedIn         AuthEventType = "SIGNED_IN"
	EventSignedOut        AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed   AuthEventType = "TOKEN_REFRESHED"
	EventInitialSession   AuthEventType = "INITIAL_SESSION"
	EventPasswordRecovery AuthEventType = "PASSWORD_RECOVERY"
)

// Session is the externally issued proof of authentication. It is created and
// destroyed entirely by the auth service; this backend only observes transitions.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token lifetime has elapsed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthEvent is a single auth-state transition. Session is nil on sign-out.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// AuthProvider is the fixed interface to the hosted auth service (GoTrue).
type AuthProvider interface {
	SignUp(ctx context.Context, email, password, emailRedirectTo string) error
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	RecoverPassword(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	// AuthorizeURL builds the external OAuth entry URL for the named provider.
	AuthorizeURL(provider, redirectTo, state string) string
	// CurrentSession returns the last session this process established, or nil.
	CurrentSession(ctx context.Context) (*Session, error)
	// Events is the stream of auth transitions, consumed by a single goroutine.
	Events() <-chan AuthEvent
}

// SessionSnapshot is the read model exposed to delivery-layer consumers.
type SessionSnapshot struct {
	Session                *Session     `json:"session,omitempty"`
	Profile                *UserProfile `json:"profile,omitempty"`
	Loading                bool         `json:"loading"`
	HasCompletedOnboarding bool         `json:"has_completed_onboarding"`
	IsPremium              bool         `json:"is_premium"`
	IsFree                 bool         `json:"is_free"`
}

type SessionUsecase interface {
	// Run consumes the auth event stream until ctx is cancelled.
	Run(ctx context.Context)
	// Bootstrap resolves the startup session exactly once.
	Bootstrap(ctx context.Context)
	Snapshot() SessionSnapshot

	SignUp(ctx context.Context, email, password, redirectPath string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignInWithGoogle(ctx context.Context, redirectPath string) (string, error)
	SignOut(ctx context.Context)
	RefreshUserProfile(ctx context.Context)
	CompleteOnboarding(ctx context.Context, choice PlanChoice) error
}
