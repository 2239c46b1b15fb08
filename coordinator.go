package sessiongate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sokoni-app/sessiongate/pending"
	"github.com/sokoni-app/sessiongate/session"
)

// Coordinator is the storefront client's session and gated-action
// surface. Construct it once at application start through
// [Builder.Build] and share it; all methods are safe for concurrent
// use.
type Coordinator struct {
	config    Config
	sessions  *session.Store
	ledger    *pending.Ledger
	cart      Cart
	navigator Navigator
	favorites Favorites
	audit     *auditDispatcher
	metrics   *Metrics
	logger    *slog.Logger
	clock     func() time.Time

	restoring atomic.Bool
}

// Sessions exposes the underlying session store for the operations the
// coordinator does not wrap: cart/wishlist snapshots, the buy-now slot
// and the vendor slot.
func (c *Coordinator) Sessions() *session.Store {
	return c.sessions
}

// Close drains the audit dispatcher. The coordinator is unusable
// afterwards.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// MetricsSnapshot copies the current counters.
func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events shed under backpressure.
func (c *Coordinator) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Coordinator) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	event.Timestamp = c.clock()
	event.Platform = c.config.Platform.String()
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	c.audit.Emit(ctx, event)
}

// SetAuth persists the authenticated pair and, for the persistent
// role, refreshes the vendor slot alongside it.
func (c *Coordinator) SetAuth(ctx context.Context, token string, user *Profile) {
	c.sessions.SetAuth(ctx, token, user)
	if user != nil && user.UserType == c.config.Session.PersistentRole {
		c.sessions.SaveVendorLogin(ctx, token, user)
	}

	c.metricInc(MetricAuthSet)
	userType := ""
	if user != nil {
		userType = user.UserType
	}
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditAuthSet,
		UserType:  userType,
		Success:   true,
	})
}

// ClearAuth logs the session out. The vendor slot is deliberately left
// in place; it has its own absolute cutoff.
func (c *Coordinator) ClearAuth(ctx context.Context) {
	c.sessions.ClearAuth(ctx)
	c.metricInc(MetricAuthCleared)
	c.emitAudit(ctx, AuditEvent{EventType: AuditAuthCleared, Success: true})
}

// AutoLogin re-establishes a persistent session from storage, letting
// a returning vendor skip the login screen.
func (c *Coordinator) AutoLogin(ctx context.Context) bool {
	ok := c.sessions.AutoLogin(ctx)
	if ok {
		c.metricInc(MetricAutoLoginSuccess)
		c.emitAudit(ctx, AuditEvent{EventType: AuditAutoLogin, Success: true})
	} else {
		c.metricInc(MetricAutoLoginRejected)
		c.emitAudit(ctx, AuditEvent{EventType: AuditAutoLogin, Success: false})
	}
	return ok
}

// RestoreSession refreshes activity for an already-persisted
// persistent-role session. It is invoked on app foreground; the guard
// keeps overlapping resume events from doubling up.
func (c *Coordinator) RestoreSession(ctx context.Context) bool {
	if !c.restoring.CompareAndSwap(false, true) {
		return false
	}
	defer c.restoring.Store(false)

	token := c.sessions.Token(ctx)
	user := c.sessions.User(ctx)
	if token == "" || user == nil || user.UserType != c.config.Session.PersistentRole {
		return false
	}

	c.sessions.UpdateActivity(ctx)
	return true
}

// EnsureAuthenticated reports whether a usable session exists,
// preferring the persistent-session restore path and falling back to a
// plain validity check. A usable session gets its activity refreshed.
func (c *Coordinator) EnsureAuthenticated(ctx context.Context) bool {
	if c.RestoreSession(ctx) {
		return true
	}

	if c.sessions.IsAuthenticated(ctx) && c.sessions.IsSessionValid(ctx) {
		c.sessions.UpdateActivity(ctx)
		return true
	}
	return false
}

// RestoreVendorLogin promotes the vendor slot into the main session.
// Used when the vendor surface starts and finds no live session.
func (c *Coordinator) RestoreVendorLogin(ctx context.Context) bool {
	token, user, ok := c.sessions.VendorAuth(ctx)
	if !ok {
		return false
	}
	c.SetAuth(ctx, token, user)
	return true
}

// RunKeepAlive refreshes session activity on the configured interval
// until ctx is cancelled. Run it in its own goroutine while the app is
// foregrounded.
func (c *Coordinator) RunKeepAlive(ctx context.Context) {
	interval := c.config.Session.KeepAliveInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sessions.KeepAlive(ctx)
			c.metricInc(MetricKeepAliveTick)
		}
	}
}
