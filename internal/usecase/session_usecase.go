package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"
	"go-ideadaily-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// sessionManager owns the mapping from the auth session to the application
// profile: it reacts to auth transitions, keeps profile fetches single-flight,
// and exposes the derived read model. One instance exists per process; all
// mutable state lives on the instance, never at package level.
type sessionManager struct {
	auth      domain.AuthProvider
	profiles  domain.ProfileRepository
	redirects domain.RedirectResolver

	frontendURL  string
	fetchTimeout time.Duration
	validate     *validator.Validate
	log          *slog.Logger

	mu      sync.Mutex
	session *domain.Session
	profile *domain.UserProfile
	loading bool
	// Single-flight markers: the id currently being fetched and the id whose
	// profile is cached in state.
	fetchingFor    string
	lastFetchedFor string
	// Set once by Bootstrap so a later INITIAL_SESSION event for the same
	// startup session is not resolved twice.
	initialSessionHandled bool
}

func NewSessionManager(auth domain.AuthProvider, profiles domain.ProfileRepository, redirects domain.RedirectResolver, validate *validator.Validate, frontendURL string, fetchTimeout time.Duration) domain.SessionUsecase {
	lg := logger.Log
	if lg == nil {
		lg = slog.Default()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &sessionManager{
		auth:         auth,
		profiles:     profiles,
		redirects:    redirects,
		validate:     validate,
		frontendURL:  frontendURL,
		fetchTimeout: fetchTimeout,
		log:          lg,
		loading:      true,
	}
}

// Run consumes the auth event stream. All transitions are handled here, on
// one goroutine, so two events never race each other's profile resolution.
func (m *sessionManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.auth.Events():
			if !ok {
				return
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *sessionManager) handleEvent(ctx context.Context, ev domain.AuthEvent) {
	if ev.Session == nil || ev.Session.UserID == "" {
		m.clearSession()
		return
	}

	switch ev.Type {
	case domain.EventInitialSession:
		m.mu.Lock()
		handled := m.initialSessionHandled
		m.mu.Unlock()
		if handled {
			// Bootstrap already resolved this session.
			return
		}
		m.adoptSession(ctx, ev.Session)
	case domain.EventSignedIn:
		m.adoptSignIn(ctx, ev.Session)
	default:
		// TOKEN_REFRESHED, PASSWORD_RECOVERY: deduplicated fetch only,
		// no create-or-update.
		m.adoptSession(ctx, ev.Session)
	}
}

// Bootstrap resolves the session present at startup. The handled flag is set
// immediately after the session read, before any profile work, so the event
// path can observe it.
func (m *sessionManager) Bootstrap(ctx context.Context) {
	s, err := m.auth.CurrentSession(ctx)

	m.mu.Lock()
	m.initialSessionHandled = true
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("startup session resolution failed", "error", err)
	}
	if s == nil || s.UserID == "" {
		m.clearSession()
		return
	}
	m.adoptSession(ctx, s)
}

// adoptSession stores the session and resolves the profile through the
// deduplicated fetch path.
func (m *sessionManager) adoptSession(ctx context.Context, s *domain.Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()

	if _, err := m.fetchProfile(ctx, s.UserID, false); err != nil {
		// Absent profile degrades to unauthenticated/free downstream.
		m.log.Warn("profile fetch failed", "user_id", s.UserID, "error", err)
	}
	m.setLoading(false)
}

// adoptSignIn handles SIGNED_IN: one combined read-or-insert round trip, then
// a non-blocking email sync when the stored email has drifted from the
// session's.
func (m *sessionManager) adoptSignIn(ctx context.Context, s *domain.Session) {
	m.mu.Lock()
	m.session = s
	if m.fetchingFor == s.UserID {
		// Resolution for this id is already in flight.
		m.mu.Unlock()
		return
	}
	m.fetchingFor = s.UserID
	m.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	profile, err := m.profiles.GetOrCreate(fetchCtx, s.UserID, s.Email)
	cancel()

	m.mu.Lock()
	if m.fetchingFor == s.UserID {
		m.fetchingFor = ""
	}
	if err != nil {
		m.loading = false
		m.mu.Unlock()
		m.log.Error("sign-in profile resolution failed", "user_id", s.UserID, "error", err)
		return
	}
	m.profile = profile
	m.lastFetchedFor = s.UserID
	m.loading = false
	needsSync := profile.Email != s.Email
	m.mu.Unlock()

	if needsSync {
		go m.syncEmail(s.UserID, s.Email)
	}
}

// syncEmail converges the stored email with the session email. Failures are
// logged only; sign-in completion never waits on this write.
func (m *sessionManager) syncEmail(userID, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.fetchTimeout)
	defer cancel()

	if err := m.profiles.UpdateEmail(ctx, userID, email); err != nil {
		m.log.Warn("background email sync failed", "user_id", userID, "error", err)
		return
	}

	m.mu.Lock()
	if m.profile != nil && m.profile.ID == userID {
		// Replace rather than mutate: snapshots hand the pointer out.
		updated := *m.profile
		updated.Email = email
		m.profile = &updated
	}
	m.mu.Unlock()
}

// fetchProfile is the single-flight profile read. With force=false, a call
// for an id already in flight or already cached returns the cached profile
// without a network round trip. force=true always hits the store but keeps
// the in-flight marker discipline intact.
func (m *sessionManager) fetchProfile(ctx context.Context, userID string, force bool) (*domain.UserProfile, error) {
	m.mu.Lock()
	if !force {
		if m.fetchingFor == userID {
			p := m.profile
			m.mu.Unlock()
			return p, nil
		}
		if m.lastFetchedFor == userID && m.profile != nil {
			p := m.profile
			m.mu.Unlock()
			return p, nil
		}
	}
	m.fetchingFor = userID
	m.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	profile, err := m.profiles.GetByID(fetchCtx, userID)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	// Guarded clear: a newer fetch for a different id keeps its own marker.
	if m.fetchingFor == userID {
		m.fetchingFor = ""
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Timeout("profile fetch timed out", err)
		}
		return nil, err
	}
	m.profile = profile
	m.lastFetchedFor = userID
	return profile, nil
}

// clearSession resets the read model and both dedup markers. Idempotent: the
// outcome never depends on prior state.
func (m *sessionManager) clearSession() {
	m.mu.Lock()
	m.session = nil
	m.profile = nil
	m.fetchingFor = ""
	m.lastFetchedFor = ""
	m.loading = false
	m.mu.Unlock()
}

func (m *sessionManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func (m *sessionManager) Snapshot() domain.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := domain.SessionSnapshot{
		Session: m.session,
		Profile: m.profile,
		Loading: m.loading,
	}
	if m.profile != nil {
		snap.HasCompletedOnboarding = m.profile.HasCompletedOnboarding
		snap.IsPremium = m.profile.SubscriptionStatus.Premium()
		snap.IsFree = m.profile.SubscriptionStatus == domain.StatusFree
	}
	return snap
}

// SignUp registers the credentials with the auth service. No profile row is
// created here; it appears on the first confirmed sign-in.
func (m *sessionManager) SignUp(ctx context.Context, email, password, redirectPath string) error {
	if err := m.validate.Var(email, "required,email"); err != nil {
		return apperror.Validation("A valid email address is required")
	}
	if err := m.validate.Var(password, "required,min=6"); err != nil {
		return apperror.Validation("Password must be at least 6 characters")
	}

	emailRedirectTo := m.frontendURL + "/auth/callback"
	if redirectPath != "" && m.redirects.Allowed(redirectPath) {
		emailRedirectTo += "?redirect=" + url.QueryEscape(redirectPath)
	}
	return m.auth.SignUp(ctx, email, password, emailRedirectTo)
}

// SignIn exchanges credentials for a session. Profile adoption happens via
// the SIGNED_IN event the provider emits on success.
func (m *sessionManager) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return m.auth.SignInWithPassword(ctx, email, password)
}

// SignInWithGoogle records the redirect intent and returns the external
// authorize URL. The intent must be durable before the caller navigates away,
// since any in-memory state is lost across the OAuth round trip.
func (m *sessionManager) SignInWithGoogle(ctx context.Context, redirectPath string) (string, error) {
	state := uuid.NewString()
	if redirectPath != "" {
		if err := m.redirects.Remember(ctx, state, redirectPath); err != nil {
			m.log.Warn("failed to record redirect intent", "path", redirectPath, "error", err)
		}
	}
	return m.auth.AuthorizeURL("google", m.frontendURL+"/auth/callback", state), nil
}

// SignOut clears local state unconditionally. Backend failures are logged,
// never surfaced: a user must always be able to leave.
func (m *sessionManager) SignOut(ctx context.Context) {
	m.mu.Lock()
	var token string
	if m.session != nil {
		token = m.session.AccessToken
	}
	m.mu.Unlock()

	if token != "" {
		if err := m.auth.SignOut(ctx, token); err != nil {
			m.log.Warn("backend sign-out failed", "error", err)
		}
	}
	m.clearSession()
}

// RefreshUserProfile forces a non-deduplicated re-fetch. Callers may invoke
// it speculatively; absence of a user is a logged no-op, not an error.
func (m *sessionManager) RefreshUserProfile(ctx context.Context) {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	if s == nil {
		m.log.Debug("profile refresh requested with no active session")
		return
	}
	if _, err := m.fetchProfile(ctx, s.UserID, true); err != nil {
		m.log.Warn("forced profile refresh failed", "user_id", s.UserID, "error", err)
	}
}

// CompleteOnboarding records the plan choice. The missing-session case is a
// hard error: callers are expected to have gated this path already.
func (m *sessionManager) CompleteOnboarding(ctx context.Context, choice domain.PlanChoice) error {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	if s == nil {
		return apperror.NotAuthenticated("No active session")
	}
	if !choice.IsValid() {
		return apperror.Validation("Invalid plan choice: " + string(choice))
	}

	status := domain.StatusPendingPayment
	if choice == domain.PlanFree {
		status = domain.StatusFree
	}
	patch := domain.OnboardingPatch{
		PlanChoice:  choice,
		Status:      status,
		CompletedAt: time.Now(),
	}
	if err := m.profiles.CompleteOnboarding(ctx, s.UserID, patch); err != nil {
		return err
	}

	// Forced refresh so the read model reflects the write immediately.
	if _, err := m.fetchProfile(ctx, s.UserID, true); err != nil {
		m.log.Warn("post-onboarding refresh failed", "user_id", s.UserID, "error", err)
	}
	return nil
}
