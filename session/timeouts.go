package session

import (
	"time"

	"github.com/sokoni-app/sessiongate/storage"
)

// Default inactivity windows: a multi-day window for the packaged
// app, a single-day window for browser sessions.
const (
	DefaultNativeTimeout = 7 * 24 * time.Hour
	DefaultWebTimeout    = 24 * time.Hour
)

// TimeoutRule scopes an inactivity window to a platform and,
// optionally, a user role. An empty Role matches every role. Whether
// session lifetime should follow the platform or the role is an open
// product question; the table makes either answer a configuration
// change instead of a code change.
type TimeoutRule struct {
	Platform storage.Platform
	Role     string // "" matches any role
	Timeout  time.Duration
}

// Timeouts resolves the inactivity window for a (platform, role) pair.
type Timeouts struct {
	rules []TimeoutRule
}

// NewTimeouts builds a resolver from explicit rules. A (platform, role)
// lookup prefers the first exact match, then the first platform-wide
// rule, then the built-in platform default.
func NewTimeouts(rules ...TimeoutRule) Timeouts {
	kept := make([]TimeoutRule, 0, len(rules))
	for _, r := range rules {
		if r.Timeout > 0 {
			kept = append(kept, r)
		}
	}
	return Timeouts{rules: kept}
}

// DefaultTimeouts holds the built-in windows: platform-driven and
// role-independent.
func DefaultTimeouts() Timeouts {
	return NewTimeouts(
		TimeoutRule{Platform: storage.PlatformNative, Timeout: DefaultNativeTimeout},
		TimeoutRule{Platform: storage.PlatformWeb, Timeout: DefaultWebTimeout},
	)
}

// Resolve returns the inactivity window for the pair.
func (t Timeouts) Resolve(platform storage.Platform, role string) time.Duration {
	for _, r := range t.rules {
		if r.Platform == platform && r.Role != "" && r.Role == role {
			return r.Timeout
		}
	}
	for _, r := range t.rules {
		if r.Platform == platform && r.Role == "" {
			return r.Timeout
		}
	}
	if platform == storage.PlatformNative {
		return DefaultNativeTimeout
	}
	return DefaultWebTimeout
}
