package v1

import (
	"net/http"

	"go-ideadaily-backend/config"
	"go-ideadaily-backend/internal/delivery/http/middleware"
	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	SessionUC    domain.SessionUsecase
	IdeaUC       domain.IdeaUsecase
	AuthProvider domain.AuthProvider
	Redirects    domain.RedirectResolver
	Profiles     domain.ProfileRepository
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	loginLimiter := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		KeyPrefix:     "login",
		WindowSeconds: deps.Config.RateLimitWindowSeconds,
		Threshold:     deps.Config.RateLimitLoginThreshold,
	})
	optionalAuth := middleware.OptionalAuthMiddleware(deps.JWKSProvider, deps.Config, deps.Profiles)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.Profiles))

	NewSessionHandler(v1, protected, deps.SessionUC, deps.AuthProvider, deps.Redirects, deps.Config, loginLimiter)
	NewOnboardingHandler(protected, deps.SessionUC)
	NewIdeaHandler(v1, deps.IdeaUC, optionalAuth)

	return r
}
