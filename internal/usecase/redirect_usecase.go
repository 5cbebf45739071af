package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"
	"go-ideadaily-backend/pkg/logger"
)

// redirectResolver decides where a user lands after authentication. Intents
// survive the external OAuth round trip in two stores of differing lifetime;
// the resolver tolerates either being unavailable.
type redirectResolver struct {
	short    domain.IntentStore
	long     domain.IntentStore
	allowed  []string
	fallback string
	log      *slog.Logger
}

func NewRedirectResolver(short, long domain.IntentStore, allowedPrefixes []string, fallback string) domain.RedirectResolver {
	lg := logger.Log
	if lg == nil {
		lg = slog.Default()
	}
	return &redirectResolver{
		short:    short,
		long:     long,
		allowed:  allowedPrefixes,
		fallback: fallback,
		log:      lg,
	}
}

// Allowed accepts only rooted relative paths under an allow-listed prefix.
// Protocol-relative ("//host") and scheme-carrying values are rejected.
func (r *redirectResolver) Allowed(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	for _, prefix := range r.allowed {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return true
		}
	}
	return false
}

func (r *redirectResolver) Remember(ctx context.Context, key, path string) error {
	if !r.Allowed(path) {
		return apperror.Validation("redirect path not allowed: " + path)
	}

	shortErr := r.short.Put(ctx, key, path)
	if shortErr != nil {
		r.log.Warn("short-lived intent store write failed", "error", shortErr)
	}
	longErr := r.long.Put(ctx, key, path)
	if longErr != nil {
		r.log.Warn("long-lived intent store write failed", "error", longErr)
	}
	if shortErr != nil && longErr != nil {
		return longErr
	}
	return nil
}

func (r *redirectResolver) Resolve(ctx context.Context, key, requested string, consume bool) string {
	if consume && key != "" {
		if path := r.takeStored(ctx, key); path != "" {
			return path
		}
	}
	if requested != "" && r.Allowed(requested) {
		return requested
	}
	return r.fallback
}

// takeStored checks the short-lived store, then the long-lived one. A valid
// intent is cleared from both; an invalid one is never returned and is left
// to expire by TTL.
func (r *redirectResolver) takeStored(ctx context.Context, key string) string {
	for _, store := range []domain.IntentStore{r.short, r.long} {
		path, err := store.Get(ctx, key)
		if err != nil {
			r.log.Warn("intent store read failed", "error", err)
			continue
		}
		if path == "" {
			continue
		}
		if !r.Allowed(path) {
			r.log.Warn("stored redirect intent rejected", "path", path)
			return ""
		}
		r.clear(ctx, key)
		return path
	}
	return ""
}

func (r *redirectResolver) clear(ctx context.Context, key string) {
	if err := r.short.Del(ctx, key); err != nil {
		r.log.Warn("short-lived intent store delete failed", "error", err)
	}
	if err := r.long.Del(ctx, key); err != nil {
		r.log.Warn("long-lived intent store delete failed", "error", err)
	}
}
