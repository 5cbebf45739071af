package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "test-api-key"), srv
}

func sessionJSON(id, email string) map[string]any {
	return map[string]any{
		"access_token":  "at-123",
		"refresh_token": "rt-456",
		"expires_in":    3600,
		"user":          map[string]string{"id": id, "email": email},
	}
}

func TestSignUp(t *testing.T) {
	t.Run("Should pass redirect target through", func(t *testing.T) {
		var got map[string]any
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			assert.Equal(t, "test-api-key", r.Header.Get("apikey"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		})
		defer srv.Close()

		err := c.SignUp(context.Background(), "a@x.com", "password1", "http://localhost:3000/auth/callback")
		require.NoError(t, err)
		opts := got["options"].(map[string]any)
		assert.Equal(t, "http://localhost:3000/auth/callback", opts["emailRedirectTo"])
	})

	t.Run("Should surface a 4xx as a validation error with the service message", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
		})
		defer srv.Close()

		err := c.SignUp(context.Background(), "a@x.com", "password1", "")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Contains(t, err.Error(), "User already registered")
	})

	t.Run("Should surface a 5xx as a network error", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer srv.Close()

		err := c.SignUp(context.Background(), "a@x.com", "password1", "")
		assert.True(t, apperror.IsKind(err, apperror.KindNetwork))
	})
}

func TestSignInWithPassword(t *testing.T) {
	t.Run("Success establishes the session and emits SIGNED_IN", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			json.NewEncoder(w).Encode(sessionJSON("user-1", "a@x.com"))
		})
		defer srv.Close()

		s, err := c.SignInWithPassword(context.Background(), "a@x.com", "password1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", s.UserID)
		assert.Equal(t, "a@x.com", s.Email)
		assert.Equal(t, "at-123", s.AccessToken)
		assert.Equal(t, "rt-456", s.RefreshToken)
		assert.False(t, s.Expired())

		ev := <-c.Events()
		assert.Equal(t, domain.EventSignedIn, ev.Type)
		require.NotNil(t, ev.Session)
		assert.Equal(t, "user-1", ev.Session.UserID)

		cur, err := c.CurrentSession(context.Background())
		require.NoError(t, err)
		require.NotNil(t, cur)
		assert.Equal(t, "user-1", cur.UserID)
	})

	t.Run("Bad credentials come back as an auth error", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
		})
		defer srv.Close()

		s, err := c.SignInWithPassword(context.Background(), "a@x.com", "wrong")
		assert.Nil(t, s)
		assert.True(t, apperror.IsKind(err, apperror.KindAuth))
		assert.Contains(t, err.Error(), "Invalid login credentials")

		cur, _ := c.CurrentSession(context.Background())
		assert.Nil(t, cur)
	})
}

func TestRefreshSession(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rt-456", body["refresh_token"])
		json.NewEncoder(w).Encode(sessionJSON("user-1", "a@x.com"))
	})
	defer srv.Close()

	s, err := c.RefreshSession(context.Background(), "rt-456")
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)

	ev := <-c.Events()
	assert.Equal(t, domain.EventTokenRefreshed, ev.Type)
}

func TestSignOut(t *testing.T) {
	t.Run("Clears state and emits even when the backend rejects", func(t *testing.T) {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/v1/logout" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(sessionJSON("user-1", "a@x.com"))
		})
		defer srv.Close()

		_, err := c.SignInWithPassword(context.Background(), "a@x.com", "password1")
		require.NoError(t, err)
		<-c.Events() // SIGNED_IN

		err = c.SignOut(context.Background(), "at-123")
		assert.Error(t, err)

		ev := <-c.Events()
		assert.Equal(t, domain.EventSignedOut, ev.Type)
		assert.Nil(t, ev.Session)

		cur, _ := c.CurrentSession(context.Background())
		assert.Nil(t, cur)
	})
}

func TestUpdatePassword(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	require.NoError(t, c.UpdatePassword(context.Background(), "at-123", "newpassword"))
}

func TestAuthorizeURL(t *testing.T) {
	c := NewClient("https://proj.supabase.co", "test-api-key")

	raw := c.AuthorizeURL("google", "http://localhost:3000/auth/callback", "state-abc")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "proj.supabase.co", parsed.Host)
	assert.Equal(t, "/auth/v1/authorize", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "google", q.Get("provider"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "http://localhost:3000/auth/callback", q.Get("redirect_uri"))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := NewClient(srv.URL, "test-api-key")
	srv.Close() // force a connection error

	_, err := c.SignInWithPassword(context.Background(), "a@x.com", "password1")
	assert.True(t, apperror.IsKind(err, apperror.KindNetwork))
}
