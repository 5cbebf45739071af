package domain

import "context"

// IntentStore is a durable key-value store holding redirect intents across
// the external OAuth round trip. Two instances of differing lifetime back
// the resolver; either may be unavailable.
type IntentStore interface {
	Put(ctx context.Context, key, path string) error
	// Get returns "" without error when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

type RedirectResolver interface {
	// Remember records the intended path under key before the external
	// redirect navigates away.
	Remember(ctx context.Context, key, path string) error
	// Resolve returns the stored intent for key (clearing it from both
	// stores when consume is true), the validated requested parameter, or
	// the default path, in that order of preference.
	Resolve(ctx context.Context, key, requested string, consume bool) string
	// Allowed reports whether path passes the allow-list validation.
	Allowed(path string) bool
}
