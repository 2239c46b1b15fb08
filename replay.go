package sessiongate

import (
	"context"
	"log/slog"

	"github.com/sokoni-app/sessiongate/pending"
)

// ExecutePendingAction replays the deferred action left behind by a
// pre-login ExecuteWithAuth, if any. Call it once the post-login
// session is in place.
//
// The ledger entry is consumed no matter what: a successful replay, a
// failed replay, and a replay refused because the session is still
// unauthenticated all clear it, so a broken action can never wedge the
// login flow in a loop. The return value reports whether the action
// was carried out.
func (c *Coordinator) ExecutePendingAction(ctx context.Context) bool {
	action := c.ledger.Get(ctx)
	if action == nil {
		return false
	}

	// Login may have failed or been abandoned between deferral and
	// replay. A stored action without a session behind it is dropped.
	if !c.sessions.IsAuthenticated(ctx) {
		c.dropPending(ctx, action, "not authenticated")
		return false
	}

	start := c.clock()
	ok := c.replay(ctx, action)
	if c.metrics != nil {
		c.metrics.Observe(MetricReplayLatency, c.clock().Sub(start))
	}
	return ok
}

// replay dispatches one action. The ledger is cleared on every path,
// including panics inside collaborators.
func (c *Coordinator) replay(ctx context.Context, action *pending.Action) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.ledger.Clear(ctx)
			c.metricInc(MetricActionDropped)
			c.logger.Error("pending action replay panicked",
				slog.String("kind", action.Kind.String()),
				slog.Any("panic", r))
		}
	}()

	switch action.Kind {
	case pending.KindAddToCart:
		return c.replayAddToCart(ctx, action)

	case pending.KindBuyNow:
		// Stage first so the checkout page finds the product after
		// the full reload. Ordering matters: the hard navigation
		// tears down this runtime on web.
		c.sessions.StageBuyNow(ctx, action.BuyNow)
		c.ledger.Clear(ctx)
		c.replayed(ctx, action)
		c.navigator.NavigateHard(c.checkoutDirectBuyURL())
		return true

	case pending.KindToggleFavorite:
		if c.favorites == nil {
			c.dropPending(ctx, action, "no favorites collaborator")
			return false
		}
		if err := c.favorites.Toggle(ctx, string(action.ToggleFavorite.ProductID)); err != nil {
			c.dropPending(ctx, action, err.Error())
			return false
		}
		c.ledger.Clear(ctx)
		c.replayed(ctx, action)
		landing := action.Path
		if landing == "" {
			landing = c.config.Routes.Wishlist
		}
		c.navigator.Navigate(landing)
		return true

	case pending.KindViewOrders:
		c.ledger.Clear(ctx)
		c.replayed(ctx, action)
		c.navigator.Navigate(c.config.Routes.Orders)
		return true

	case pending.KindViewProfile:
		c.ledger.Clear(ctx)
		c.replayed(ctx, action)
		c.navigator.Navigate(c.config.Routes.Profile)
		return true

	case pending.KindNavigate:
		c.ledger.Clear(ctx)
		c.replayed(ctx, action)
		c.navigator.Navigate(action.Path)
		return true
	}

	c.dropPending(ctx, action, "unknown action kind")
	return false
}

// replayAddToCart retries the cart add up to the configured attempt
// budget, then lands the user on the cart page on success.
func (c *Coordinator) replayAddToCart(ctx context.Context, action *pending.Action) bool {
	quantity := action.AddToCart.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	attempts := c.config.Replay.MaxCartAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = c.cart.AddToCart(ctx, string(action.AddToCart.ProductID), quantity)
		if lastErr == nil {
			c.ledger.Clear(ctx)
			c.replayed(ctx, action)
			landing := action.Path
			if landing == "" {
				landing = c.config.Routes.Cart
			}
			c.navigator.Navigate(landing)
			return true
		}
	}

	c.dropPending(ctx, action, lastErr.Error())
	return false
}

func (c *Coordinator) replayed(ctx context.Context, action *pending.Action) {
	c.metricInc(MetricActionReplayed)
	c.logger.Info("pending action replayed",
		slog.String("kind", action.Kind.String()),
		slog.String("action_id", action.ID))
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditActionReplayed,
		ActionID:  action.ID,
		Success:   true,
		Metadata:  map[string]string{"kind": action.Kind.String()},
	})
}

func (c *Coordinator) dropPending(ctx context.Context, action *pending.Action, reason string) {
	c.ledger.Clear(ctx)
	c.metricInc(MetricActionDropped)
	c.logger.Warn("pending action dropped",
		slog.String("kind", action.Kind.String()),
		slog.String("reason", reason))
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditActionDropped,
		ActionID:  action.ID,
		Error:     reason,
		Metadata:  map[string]string{"kind": action.Kind.String()},
	})
}
