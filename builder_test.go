package sessiongate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sokoni-app/sessiongate/storage"
)

func TestBuildRequiresBackend(t *testing.T) {
	_, err := New().
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{}).
		Build()
	if !errors.Is(err, ErrStorageRequired) {
		t.Fatalf("err = %v, want ErrStorageRequired", err)
	}
}

func TestBuildRequiresCart(t *testing.T) {
	_, err := New().
		WithBackend(storage.NewMemory()).
		WithNavigator(&recordingNavigator{}).
		Build()
	if !errors.Is(err, ErrCartRequired) {
		t.Fatalf("err = %v, want ErrCartRequired", err)
	}
}

func TestBuildRequiresNavigator(t *testing.T) {
	_, err := New().
		WithBackend(storage.NewMemory()).
		WithCart(&recordingCart{}).
		Build()
	if !errors.Is(err, ErrNavigatorRequired) {
		t.Fatalf("err = %v, want ErrNavigatorRequired", err)
	}
}

func TestBuildRejectsSecondCall(t *testing.T) {
	b := New().
		WithBackend(storage.NewMemory()).
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{})

	coordinator, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("second Build err = %v, want ErrBuilderUsed", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes.Login = "login" // not absolute

	_, err := New().
		WithConfig(cfg).
		WithBackend(storage.NewMemory()).
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{}).
		Build()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestWithPreferencesFileBacksCoordinator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	b, err := New().
		WithPlatform(PlatformNative).
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{}).
		WithPreferencesFile(path)
	if err != nil {
		t.Fatalf("WithPreferencesFile failed: %v", err)
	}

	coordinator, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	ctx := context.Background()
	coordinator.SetAuth(ctx, "tok-file", buyerProfile())
	if got := coordinator.Sessions().Token(ctx); got != "tok-file" {
		t.Fatalf("Token = %q, want tok-file", got)
	}
}

func TestWithRedisBacksCoordinator(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	coordinator, err := New().
		WithRedis(client, "sgtest").
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	ctx := context.Background()
	coordinator.SetAuth(ctx, "tok-redis", buyerProfile())
	if got := coordinator.Sessions().Token(ctx); got != "tok-redis" {
		t.Fatalf("Token = %q, want tok-redis", got)
	}
	if !mr.Exists("sgtest:token") {
		t.Fatal("expected prefixed token key in redis")
	}
}

func TestConfigIsClonedAtBuild(t *testing.T) {
	cfg := DefaultConfig()

	b := New().
		WithConfig(cfg).
		WithBackend(storage.NewMemory()).
		WithCart(&recordingCart{}).
		WithNavigator(&recordingNavigator{})

	coordinator, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	// Mutating the original after Build must not leak in.
	cfg.Routes.Login = "/elsewhere"
	if got := coordinator.LoginRedirect("/p"); got != "/login?returnTo=%2Fp" {
		t.Fatalf("LoginRedirect = %q, want /login?returnTo=%%2Fp", got)
	}
}
