package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/config"
	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/handlers"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/service"
	"github.com/vidshare/backend/internal/storage"
	"github.com/vidshare/backend/internal/toggle"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// Pool is the database handle the server is built on.
type Pool interface {
	db.Pool
	Ping(ctx context.Context) error
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// The returned cleanup function drains background work and must be called after the
// HTTP server has stopped.
func buildDependencies(ctx context.Context, pool Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("token service: %w", err)
	}

	blobs, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	edges := repositories.NewPostgresEdgeRepository(pool)

	sessions := auth.NewManager(tokens, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, users)
	engine := toggle.NewEngine(edges)
	composer := views.NewComposer(repositories.NewPostgresViewRepository(pool))
	validate := validation.New()
	prober := media.NewFFProbe(cfg.Media.FFProbePath, cfg.Media.FFProbeTimeout)

	janitor := cleanup.NewJanitor(edges, cleanup.Config{
		QueueSize: cfg.Cleanup.QueueSize,
		Workers:   cfg.Cleanup.Workers,
	}, logger)

	deps := handlers.Dependencies{
		Users:         service.NewUserService(users, sessions, auth.NewHasher(cfg.Auth.BcryptCost), blobs, composer, validate),
		Videos:        service.NewVideoService(videos, users, blobs, prober, janitor, composer, validate),
		Comments:      service.NewCommentService(comments, videos, janitor, composer, validate),
		Likes:         service.NewLikeService(videos, comments, tweets, edges, engine, composer),
		Subscriptions: service.NewSubscriptionService(users, edges, engine, composer),
		Tweets:        service.NewTweetService(tweets, janitor, composer, validate),
		Playlists:     service.NewPlaylistService(playlists, videos, composer, validate),
		Dashboard:     service.NewDashboardService(composer),

		Authenticator: sessions,
		Database:      pool,

		CORSOrigin:     cfg.CORSOrigin,
		SecureCookies:  cfg.Auth.SecureCookies,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	}
	return deps, janitor.Shutdown, nil
}
