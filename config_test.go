package sessiongate

import (
	"errors"
	"testing"
	"time"

	"github.com/sokoni-app/sessiongate/session"
	"github.com/sokoni-app/sessiongate/storage"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative login route", func(c *Config) { c.Routes.Login = "login" }},
		{"empty cart route", func(c *Config) { c.Routes.Cart = "" }},
		{"empty return param", func(c *Config) { c.Routes.ReturnToParam = "" }},
		{"empty direct buy param", func(c *Config) { c.Routes.DirectBuyParam = "" }},
		{"empty persistent role", func(c *Config) { c.Session.PersistentRole = "" }},
		{"zero cart attempts", func(c *Config) { c.Replay.MaxCartAttempts = 0 }},
		{"negative pending ttl", func(c *Config) { c.Pending.TTL = -time.Second }},
		{"zero timeout rule", func(c *Config) {
			c.Session.Timeouts = []session.TimeoutRule{{Platform: storage.PlatformWeb}}
		}},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Platform != PlatformWeb {
		t.Fatalf("Platform = %v, want web", cfg.Platform)
	}
	if cfg.Session.PersistentRole != "vendor" {
		t.Fatalf("PersistentRole = %q, want vendor", cfg.Session.PersistentRole)
	}
	if cfg.Replay.MaxCartAttempts != 1 {
		t.Fatalf("MaxCartAttempts = %d, want 1", cfg.Replay.MaxCartAttempts)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SG_PLATFORM", "native")
	t.Setenv("SG_PERSISTENT_ROLE", "seller")
	t.Setenv("SG_KEEPALIVE_INTERVAL", "2m")
	t.Setenv("SG_PENDING_TTL", "48h")
	t.Setenv("SG_REPLAY_MAX_CART_ATTEMPTS", "3")
	t.Setenv("SG_LOGIN_ROUTE", "/auth/login")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Platform != PlatformNative {
		t.Fatalf("Platform = %v, want native", cfg.Platform)
	}
	if cfg.Session.PersistentRole != "seller" {
		t.Fatalf("PersistentRole = %q, want seller", cfg.Session.PersistentRole)
	}
	if cfg.Session.KeepAliveInterval != 2*time.Minute {
		t.Fatalf("KeepAliveInterval = %v, want 2m", cfg.Session.KeepAliveInterval)
	}
	if cfg.Pending.TTL != 48*time.Hour {
		t.Fatalf("Pending.TTL = %v, want 48h", cfg.Pending.TTL)
	}
	if cfg.Replay.MaxCartAttempts != 3 {
		t.Fatalf("MaxCartAttempts = %d, want 3", cfg.Replay.MaxCartAttempts)
	}
	if cfg.Routes.Login != "/auth/login" {
		t.Fatalf("Login = %q, want /auth/login", cfg.Routes.Login)
	}
}

func TestConfigFromEnvRejectsUnknownPlatform(t *testing.T) {
	t.Setenv("SG_PLATFORM", "desktop")

	if _, err := ConfigFromEnv(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestCloneConfigCopiesTimeoutRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Timeouts = []session.TimeoutRule{
		{Platform: storage.PlatformWeb, Timeout: time.Hour},
	}

	clone := cloneConfig(cfg)
	clone.Session.Timeouts[0].Timeout = time.Minute

	if cfg.Session.Timeouts[0].Timeout != time.Hour {
		t.Fatal("clone shares the timeout slice with the original")
	}
}
