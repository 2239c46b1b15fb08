package sessiongate

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type envConfig struct {
	Platform           string        `env:"SG_PLATFORM" envDefault:"web"`
	PersistentRole     string        `env:"SG_PERSISTENT_ROLE" envDefault:"vendor"`
	RespectTokenExpiry bool          `env:"SG_RESPECT_TOKEN_EXPIRY" envDefault:"false"`
	KeepAliveInterval  time.Duration `env:"SG_KEEPALIVE_INTERVAL" envDefault:"60s"`
	VendorSlotMaxAge   time.Duration `env:"SG_VENDOR_SLOT_MAX_AGE" envDefault:"0"`
	PendingTTL         time.Duration `env:"SG_PENDING_TTL" envDefault:"0"`
	MaxCartAttempts    int           `env:"SG_REPLAY_MAX_CART_ATTEMPTS" envDefault:"1"`
	LoginRoute         string        `env:"SG_LOGIN_ROUTE" envDefault:"/login"`
	AuditEnabled       bool          `env:"SG_AUDIT_ENABLED" envDefault:"false"`
	MetricsEnabled     bool          `env:"SG_METRICS_ENABLED" envDefault:"true"`
}

// ConfigFromEnv builds a Config from SG_* environment variables on top
// of [DefaultConfig]. Route names other than the login entry point are
// compile-time choices and stay at their defaults.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()

	switch raw.Platform {
	case "web":
		cfg.Platform = PlatformWeb
	case "native":
		cfg.Platform = PlatformNative
	default:
		return Config{}, fmt.Errorf("%w: SG_PLATFORM must be web or native, got %q", ErrInvalidConfig, raw.Platform)
	}

	cfg.Session.PersistentRole = raw.PersistentRole
	cfg.Session.RespectTokenExpiry = raw.RespectTokenExpiry
	cfg.Session.KeepAliveInterval = raw.KeepAliveInterval
	cfg.Session.VendorSlotMaxAge = raw.VendorSlotMaxAge
	cfg.Pending.TTL = raw.PendingTTL
	cfg.Replay.MaxCartAttempts = raw.MaxCartAttempts
	cfg.Routes.Login = raw.LoginRoute
	cfg.Audit.Enabled = raw.AuditEnabled
	cfg.Metrics.Enabled = raw.MetricsEnabled

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
