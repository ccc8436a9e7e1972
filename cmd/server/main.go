// @title        Vaccination Scheduling API
// @version      1.0
// @description  User registration and bearer-token authentication for the vaccination scheduling platform.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/univas/vaccination-scheduling/internal/api"
	"github.com/univas/vaccination-scheduling/internal/api/handler"
	"github.com/univas/vaccination-scheduling/internal/core/service"
	"github.com/univas/vaccination-scheduling/internal/infrastructure/db/mongo"
	"github.com/univas/vaccination-scheduling/internal/infrastructure/db/redis"
	"github.com/univas/vaccination-scheduling/internal/infrastructure/security"
	"github.com/univas/vaccination-scheduling/internal/pkg/config"
	"github.com/univas/vaccination-scheduling/pkg/logger"
)

const (
	shutdownTimeout  = 10 * time.Second
	readinessTimeout = 2 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "vaccination-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		if err := mongo.Disconnect(mongoClient, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpires, service.WithIssuer(cfg.Auth.JWTIssuer))
	profiles := redis.NewProfileCache(rdb, cfg.Redis.ProfileTTL)

	router := api.NewRouter(api.Dependencies{
		Users:  service.NewUserService(users, hasher, profiles, log.With().Str("component", "users").Logger()),
		Auth:   service.NewAuthService(users, hasher, tokens, cfg.Auth.JWTExpires, log.With().Str("component", "auth").Logger()),
		Tokens: tokens,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, mongoClient, readinessTimeout) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger:     log,
		Production: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
}
