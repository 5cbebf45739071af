package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"
	"go-ideadaily-backend/pkg/logger"

	"golang.org/x/oauth2"
)

const requestTimeout = 10 * time.Second

// Client talks to the hosted GoTrue auth API and doubles as the auth event
// source: every session it establishes or tears down is published on Events.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger

	mu      sync.Mutex
	current *domain.Session
	events  chan domain.AuthEvent
}

func NewClient(baseURL, apiKey string) *Client {
	lg := logger.Log
	if lg == nil {
		lg = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		log:     lg,
		events:  make(chan domain.AuthEvent, 16),
	}
}

func (c *Client) Events() <-chan domain.AuthEvent {
	return c.events
}

func (c *Client) emit(t domain.AuthEventType, s *domain.Session) {
	select {
	case c.events <- domain.AuthEvent{Type: t, Session: s}:
	default:
		c.log.Warn("auth event dropped, consumer not keeping up", "type", string(t))
	}
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (sr *sessionResponse) session() *domain.Session {
	return &domain.Session{
		UserID:       sr.User.ID,
		Email:        sr.User.Email,
		AccessToken:  sr.AccessToken,
		RefreshToken: sr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(sr.ExpiresIn) * time.Second),
	}
}

// GoTrue error payloads vary by endpoint; take the first populated field.
type errorResponse struct {
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *errorResponse) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.ErrorField != "":
		return e.ErrorField
	}
	return "auth request rejected"
}

// do executes one API call. The returned error covers transport failures
// only; HTTP-level rejections come back as (status, message, nil).
func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, out any) (int, string, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, "", apperror.Internal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, "", apperror.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", apperror.Network("auth service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return resp.StatusCode, er.message(), nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", apperror.Network("malformed auth service response", err)
		}
	}
	return resp.StatusCode, "", nil
}

// SignUp registers credentials. The confirmation email is sent out-of-band by
// the auth service; no session or profile exists until it is confirmed.
func (c *Client) SignUp(ctx context.Context, email, password, emailRedirectTo string) error {
	body := map[string]any{
		"email":    email,
		"password": password,
		"options": map[string]any{
			"emailRedirectTo": emailRedirectTo,
		},
	}
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", body, "", nil)
	if err != nil {
		return err
	}
	switch {
	case status >= 500:
		return apperror.Network("registration service unavailable", nil)
	case status >= 400:
		return apperror.Validation(msg)
	}
	return nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sr sessionResponse
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "", &sr)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 500:
		return nil, apperror.Network("auth service unavailable", nil)
	case status >= 400:
		return nil, apperror.Auth(msg)
	}

	s := sr.session()
	c.setCurrent(s)
	c.emit(domain.EventSignedIn, s)
	return s, nil
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var sr sessionResponse
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, "", &sr)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 500:
		return nil, apperror.Network("auth service unavailable", nil)
	case status >= 400:
		return nil, apperror.Auth(msg)
	}

	s := sr.session()
	c.setCurrent(s)
	c.emit(domain.EventTokenRefreshed, s)
	return s, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	status, msg, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken, nil)

	// Local state is torn down regardless of what the backend said.
	c.setCurrent(nil)
	c.emit(domain.EventSignedOut, nil)

	if err != nil {
		return err
	}
	if status >= 400 {
		return apperror.Auth(msg)
	}
	return nil
}

func (c *Client) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + redirectTo
	}
	status, msg, err := c.do(ctx, http.MethodPost, path, body, "", nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return apperror.Validation(msg)
	}
	return nil
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	body := map[string]string{"password": newPassword}
	status, msg, err := c.do(ctx, http.MethodPut, "/auth/v1/user", body, accessToken, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized:
		return apperror.Auth(msg)
	case status >= 400:
		return apperror.Validation(msg)
	}
	return nil
}

// AuthorizeURL builds the external OAuth entry point. The state parameter
// keys the stored redirect intent across the round trip.
func (c *Client) AuthorizeURL(provider, redirectTo, state string) string {
	conf := &oauth2.Config{
		ClientID:    c.apiKey,
		RedirectURL: redirectTo,
		Endpoint: oauth2.Endpoint{
			AuthURL: c.baseURL + "/auth/v1/authorize",
		},
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("provider", provider))
}

// CurrentSession returns the last session established by this process, or
// nil once it has expired. It never performs a network call.
func (c *Client) CurrentSession(_ context.Context) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Expired() {
		return nil, nil
	}
	return c.current, nil
}

func (c *Client) setCurrent(s *domain.Session) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
}
