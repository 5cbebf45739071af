package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	FrontendURL       string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Redirect resolution
	AllowedRedirectPrefixes []string
	DefaultRedirectPath     string
	IntentSessionTTLSeconds int // short-lived tier (tab-session analogue)
	IntentPersistTTLSeconds int // long-lived tier
	// Profile fetch
	ProfileFetchTimeoutSeconds int
	// Rate Limiting Configuration
	RateLimitWindowSeconds  int
	RateLimitLoginThreshold int
}

func LoadConfig() (*Config, error) {
	// Effective locally only; ignored in production when the file is absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),
		// Strip trailing slash to avoid double slashes (e.g. .co//auth)
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Redirect resolution
		AllowedRedirectPrefixes: getEnvList("ALLOWED_REDIRECT_PREFIXES",
			"/dashboard,/pricing,/ideas,/onboarding,/account"),
		DefaultRedirectPath:     getEnv("DEFAULT_REDIRECT_PATH", "/dashboard"),
		IntentSessionTTLSeconds: getEnvInt("INTENT_SESSION_TTL_SECONDS", 600),   // 10 minutes
		IntentPersistTTLSeconds: getEnvInt("INTENT_PERSIST_TTL_SECONDS", 86400), // 24 hours
		// Profile fetch
		ProfileFetchTimeoutSeconds: getEnvInt("PROFILE_FETCH_TIMEOUT_SECONDS", 10),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:  getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold: getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Redirect intents and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvList returns a comma-separated environment variable as a slice.
func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
