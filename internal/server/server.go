// Package server assembles the HTTP service from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/api"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/core/service"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/config"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/redis"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/http/handlers"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/security"
	"github.com/sweetshop/sweetshop-api/pkg/logger"
)

// Server owns the echo instance and every connection it was built on.
type Server struct {
	echo  *echo.Echo
	addr  string
	store *db.Store
	redis *goredis.Client
	log   zerolog.Logger
}

// New connects the configured store and, when REDIS_ADDR is set, the token
// revocation list, then wires services and routes.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	checks := []handlers.DependencyCheck{{Name: store.Driver, Ping: store.Ping}}

	var (
		revoker ports.TokenRevoker
		rdb     *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		revoker = redis.NewRevocationList(rdb)
		checks = append(checks, handlers.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}

	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	e := api.NewRouter(api.Dependencies{
		Log:             log,
		Guard:           service.NewGuard(tokens, store.Users, revoker, logger.Component(log, "guard")),
		Auth:            service.NewAuthService(store.Users, hasher, tokens, revoker, cfg.Auth.AdminMarker, logger.Component(log, "auth")),
		Inventory:       service.NewInventoryService(store.Sweets, logger.Component(log, "inventory")),
		Catalog:         service.NewCatalogService(store.Sweets),
		ReadinessChecks: checks,
	})
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	return &Server{
		echo:  e,
		addr:  net.JoinHostPort("", cfg.Port),
		store: store,
		redis: rdb,
		log:   log,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.release()
			return fmt.Errorf("http server: %w", err)
		}
		s.release()
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the store and redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down")
	err := s.echo.Shutdown(ctx)
	s.release()
	return err
}

func (s *Server) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Close(ctx); err != nil {
		s.log.Error().Err(err).Msg("close store")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Error().Err(err).Msg("close redis")
		}
	}
}
