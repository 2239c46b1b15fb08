package sessiongate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sokoni-app/sessiongate/session"
)

// Config defines the coordinator's behavior. The zero value is not
// usable; start from [DefaultConfig] (or [ConfigFromEnv]) and override.
type Config struct {
	Platform Platform
	Session  SessionConfig
	Pending  PendingConfig
	Replay   ReplayConfig
	Routes   RouteConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls persistence and expiry of the auth session.
type SessionConfig struct {
	// Timeouts overrides the built-in (platform, role) inactivity
	// table. Empty keeps the defaults: 7 days native, 24 hours web,
	// role-independent.
	Timeouts []session.TimeoutRule

	// PersistentRole is the user_type allowed to auto-login.
	PersistentRole string

	// RespectTokenExpiry also rejects sessions whose token is a JWT
	// with a past exp claim (unverified local hint).
	RespectTokenExpiry bool

	// VendorSlotMaxAge bounds the separate persistent vendor slot.
	// Zero uses the 30-day default.
	VendorSlotMaxAge time.Duration

	// KeepAliveInterval is the RunKeepAlive tick. Zero uses 60s.
	KeepAliveInterval time.Duration
}

/*
====================================
PENDING / REPLAY CONFIG
====================================
*/

// PendingConfig controls the deferred-action ledger.
type PendingConfig struct {
	// TTL discards deferred actions older than the given age at read
	// time. Zero means no expiry.
	TTL time.Duration
}

// ReplayConfig controls post-login replay.
type ReplayConfig struct {
	// MaxCartAttempts bounds retries of the replayed cart add.
	// Defaults to a single attempt.
	MaxCartAttempts int
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig names the client routes the coordinator redirects to.
type RouteConfig struct {
	Login    string
	Cart     string
	Checkout string
	Orders   string
	Profile  string
	Wishlist string

	// ReturnToParam carries the pre-redirect path on the login URL.
	ReturnToParam string
	// DirectBuyParam flags the checkout page that a staged buy-now
	// payload is waiting.
	DirectBuyParam string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking
	// the emitting flow.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
	// EnableLatencyHistograms additionally records the replay latency
	// histogram.
	EnableLatencyHistograms bool
}

// DefaultConfig matches the storefront's setup: web platform, vendor
// persistent sessions, no pending TTL, single replay attempt, the
// storefront's route names, counters on, audit off.
func DefaultConfig() Config {
	return Config{
		Platform: PlatformWeb,
		Session: SessionConfig{
			PersistentRole:    "vendor",
			KeepAliveInterval: 60 * time.Second,
		},
		Replay: ReplayConfig{MaxCartAttempts: 1},
		Routes: RouteConfig{
			Login:          "/login",
			Cart:           "/cart",
			Checkout:       "/checkout",
			Orders:         "/orders",
			Profile:        "/profile",
			Wishlist:       "/wishlist",
			ReturnToParam:  "returnTo",
			DirectBuyParam: "directBuy",
		},
		Audit:   AuditConfig{BufferSize: 64, DropIfFull: true},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Session.Timeouts != nil {
		out.Session.Timeouts = append([]session.TimeoutRule(nil), cfg.Session.Timeouts...)
	}
	return out
}

// Validate rejects configurations the coordinator cannot honor.
func (c Config) Validate() error {
	routes := []struct {
		name  string
		value string
	}{
		{"Login", c.Routes.Login},
		{"Cart", c.Routes.Cart},
		{"Checkout", c.Routes.Checkout},
		{"Orders", c.Routes.Orders},
		{"Profile", c.Routes.Profile},
		{"Wishlist", c.Routes.Wishlist},
	}
	for _, r := range routes {
		if r.value == "" || !strings.HasPrefix(r.value, "/") {
			return fmt.Errorf("%w: route %s must be an absolute path, got %q", ErrInvalidConfig, r.name, r.value)
		}
	}

	if c.Routes.ReturnToParam == "" {
		return fmt.Errorf("%w: ReturnToParam required", ErrInvalidConfig)
	}
	if c.Routes.DirectBuyParam == "" {
		return fmt.Errorf("%w: DirectBuyParam required", ErrInvalidConfig)
	}
	if c.Session.PersistentRole == "" {
		return fmt.Errorf("%w: Session.PersistentRole required", ErrInvalidConfig)
	}
	if c.Replay.MaxCartAttempts < 1 {
		return fmt.Errorf("%w: Replay.MaxCartAttempts must be at least 1", ErrInvalidConfig)
	}
	if c.Pending.TTL < 0 {
		return fmt.Errorf("%w: Pending.TTL must not be negative", ErrInvalidConfig)
	}
	for _, rule := range c.Session.Timeouts {
		if rule.Timeout <= 0 {
			return fmt.Errorf("%w: timeout rule for (%s, %q) must be positive", ErrInvalidConfig, rule.Platform, rule.Role)
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit.BufferSize must be positive when audit is enabled", ErrInvalidConfig)
	}
	return nil
}
