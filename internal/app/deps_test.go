package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidshare/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Ping(context.Context) error { return nil }

func (fakePool) Close() {}

func testConfig() config.Config {
	return config.Config{
		CORSOrigin: "https://app.example.com",
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret-0123456789",
			AccessTokenTTL:     time.Minute,
			RefreshTokenSecret: "refresh-secret-0123456789",
			RefreshTokenTTL:    time.Hour,
			BcryptCost:         4,
			SecureCookies:      true,
		},
		Storage: config.ObjectStoreConfig{
			Bucket:          "test-bucket",
			Endpoint:        "http://localhost:9000",
			Region:          "us-east-1",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
		},
		Media:   config.MediaConfig{MaxUploadBytes: 1 << 20, FFProbePath: "ffprobe", FFProbeTimeout: time.Second},
		Cleanup: config.CleanupConfig{Workers: 1, QueueSize: 4},
	}
}

func TestBuildDependencies(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, testConfig(), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if deps.Users == nil || deps.Videos == nil || deps.Comments == nil || deps.Likes == nil {
		t.Fatal("expected content services to be configured")
	}
	if deps.Subscriptions == nil || deps.Tweets == nil || deps.Playlists == nil || deps.Dashboard == nil {
		t.Fatal("expected social services to be configured")
	}
	if deps.Authenticator == nil {
		t.Fatal("expected authenticator to be configured")
	}
	if deps.Database == nil {
		t.Fatal("expected health checker to be configured")
	}
	if !deps.SecureCookies || deps.MaxUploadBytes != 1<<20 || deps.CORSOrigin != "https://app.example.com" {
		t.Fatalf("unexpected http settings: %+v", deps)
	}
}

func TestBuildDependenciesRejectsWeakSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RefreshTokenSecret = cfg.Auth.AccessTokenSecret

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, logger); err == nil {
		t.Fatal("expected identical secrets to be rejected")
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected an error without a command")
	}
	if err := Run(context.Background(), []string{"seed"}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
