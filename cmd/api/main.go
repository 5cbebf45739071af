package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-ideadaily-backend/config"
	v1 "go-ideadaily-backend/internal/delivery/http/v1"
	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/internal/infra/supabase"
	"go-ideadaily-backend/internal/repository/memstore"
	"go-ideadaily-backend/internal/repository/postgres"
	"go-ideadaily-backend/internal/repository/redisstore"
	"go-ideadaily-backend/internal/usecase"
	"go-ideadaily-backend/pkg/auth"
	"go-ideadaily-backend/pkg/database"
	"go-ideadaily-backend/pkg/logger"
	"go-ideadaily-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting ideadaily backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; intent stores and rate limiting degrade to memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallback", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	ideaRepo := postgres.NewIdeaRepository(dbPool)

	shortTTL := time.Duration(cfg.IntentSessionTTLSeconds) * time.Second
	longTTL := time.Duration(cfg.IntentPersistTTLSeconds) * time.Second
	var shortStore, longStore domain.IntentStore
	if client := redis.Client(); client != nil {
		shortStore = redisstore.NewIntentStore(client, "redirect:session", shortTTL)
		longStore = redisstore.NewIntentStore(client, "redirect:persist", longTTL)
	} else {
		shortStore = memstore.NewIntentStore(shortTTL)
		longStore = memstore.NewIntentStore(longTTL)
	}

	// 6. Setup Auth Provider and UseCases
	authClient := supabase.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey)
	redirects := usecase.NewRedirectResolver(shortStore, longStore, cfg.AllowedRedirectPrefixes, cfg.DefaultRedirectPath)
	validate := validator.New()
	fetchTimeout := time.Duration(cfg.ProfileFetchTimeoutSeconds) * time.Second
	sessionUC := usecase.NewSessionManager(authClient, profileRepo, redirects, validate, cfg.FrontendURL, fetchTimeout)
	ideaUC := usecase.NewIdeaUsecase(ideaRepo)

	// 7. Start the session coordinator: the event consumer first, then the
	// one-shot startup resolution.
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go sessionUC.Run(runCtx)
	sessionUC.Bootstrap(runCtx)

	// 8. Setup Auth token verification (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SessionUC:    sessionUC,
		IdeaUC:       ideaUC,
		AuthProvider: authClient,
		Redirects:    redirects,
		Profiles:     profileRepo,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exited")
}
