package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go-ideadaily-backend/config"
	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/auth"
	"go-ideadaily-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// bearerToken pulls the access token from the Authorization header or the
// auth_token cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// verifyToken validates either signing scheme the auth service uses: HS256
// with the shared project secret, or RS256 against the JWKS document.
func verifyToken(tokenString string, jwksProvider *auth.Provider, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if cfg.SupabaseJWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = fmt.Errorf("token invalid")
		}
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// attachPrincipal resolves the caller's tier from the profile store and puts
// the principal on both the gin context and the request context. An absent
// profile degrades to the free tier instead of blocking the request.
func attachPrincipal(c *gin.Context, profiles domain.ProfileRepository, sub, email string) {
	tier := domain.StatusFree
	if profile, err := profiles.GetByID(c.Request.Context(), sub); err == nil && profile != nil {
		tier = profile.SubscriptionStatus
	} else if err != nil {
		logger.Log.Debug("profile lookup failed, treating caller as free", "user_id", sub, "error", err)
	}

	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
	ctx = context.WithValue(ctx, domain.KeyUserTier, tier)
	c.Request = c.Request.WithContext(ctx)

	c.Set(string(domain.KeyUserID), sub)
	c.Set(string(domain.KeyUserEmail), email)
	c.Set(string(domain.KeyUserTier), string(tier))
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, profiles domain.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := verifyToken(tokenString, jwksProvider, cfg)
		if err != nil {
			logger.Log.Debug("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		attachPrincipal(c, profiles, sub, email)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a token is present but
// lets anonymous requests through as the free tier. Used for content routes
// where premium status only widens the response.
func OptionalAuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, profiles domain.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := verifyToken(tokenString, jwksProvider, cfg)
		if err != nil {
			logger.Log.Debug("optional auth token rejected", "error", err)
			c.Next()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub != "" {
			attachPrincipal(c, profiles, sub, email)
		}
		c.Next()
	}
}
