package sessiongate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sokoni-app/sessiongate/pending"
)

// ExecuteWithAuth gates an action behind authentication.
//
// The fast path consults only the in-memory session mirror, so an
// authenticated caller pays no storage I/O: action runs immediately
// and the ledger is never touched. Failures (errors and panics) inside
// action are logged and swallowed; a gated action must never take the
// storefront down.
//
// An unauthenticated caller has descriptor persisted to the ledger and
// is redirected to the login entry point with currentPath encoded as
// the return target. The return value reports whether action ran.
func (c *Coordinator) ExecuteWithAuth(
	ctx context.Context,
	currentPath string,
	action func(context.Context) error,
	descriptor *pending.Action,
) bool {
	// The in-memory mirror answers without storage I/O. The durable
	// read only runs when the mirror is empty, covering a fresh process
	// that has not restored its session yet; that path is not counted
	// as a fast-path hit.
	if c.sessions.Current().Authenticated() {
		c.metricInc(MetricGateFastPath)
		c.runGated(ctx, action)
		return true
	}
	if c.sessions.IsAuthenticated(ctx) {
		c.runGated(ctx, action)
		return true
	}

	if descriptor != nil {
		c.ledger.Set(ctx, descriptor)
		c.metricInc(MetricActionDeferred)
		c.emitAudit(ctx, AuditEvent{
			EventType: AuditActionDeferred,
			ActionID:  descriptor.ID,
			Success:   true,
			Metadata:  map[string]string{"kind": descriptor.Kind.String()},
		})
	}

	c.navigator.Navigate(c.LoginRedirect(currentPath))
	return false
}

// runGated executes action, containing every failure mode.
func (c *Coordinator) runGated(ctx context.Context, action func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			c.metricInc(MetricGateActionFailed)
			c.logger.Error("gated action panicked", slog.Any("panic", r))
		}
	}()

	if action == nil {
		return
	}
	if err := action(ctx); err != nil {
		c.metricInc(MetricGateActionFailed)
		c.logger.Warn("gated action failed", slog.String("error", err.Error()))
	}
}

// LoginRedirect builds the login entry-point URL with currentPath
// carried in the return-target parameter.
func (c *Coordinator) LoginRedirect(currentPath string) string {
	return c.config.Routes.Login + "?" + c.config.Routes.ReturnToParam + "=" + url.QueryEscape(currentPath)
}

// AddToCartWithAuth adds a product to the cart, deferring the add
// behind login when necessary.
func (c *Coordinator) AddToCartWithAuth(ctx context.Context, currentPath string, productID string, quantity int) bool {
	if quantity <= 0 {
		quantity = 1
	}
	return c.ExecuteWithAuth(ctx, currentPath,
		func(ctx context.Context) error {
			return c.cart.AddToCart(ctx, productID, quantity)
		},
		pending.NewAddToCart(pending.ProductID(productID), quantity),
	)
}

// BuyNowWithAuth stages the product payload and moves to checkout,
// deferring the whole flow behind login when necessary. The direct
// path uses an in-app navigation; only the post-login replay reloads.
func (c *Coordinator) BuyNowWithAuth(ctx context.Context, currentPath string, product json.RawMessage) bool {
	return c.ExecuteWithAuth(ctx, currentPath,
		func(ctx context.Context) error {
			c.sessions.StageBuyNow(ctx, product)
			c.navigator.Navigate(c.checkoutDirectBuyURL())
			return nil
		},
		pending.NewBuyNow(product),
	)
}

// NavigateWithAuth performs a gated route change.
func (c *Coordinator) NavigateWithAuth(ctx context.Context, currentPath, path string) bool {
	return c.ExecuteWithAuth(ctx, currentPath,
		func(context.Context) error {
			c.navigator.Navigate(path)
			return nil
		},
		pending.NewNavigate(path),
	)
}

// ViewOrdersWithAuth opens the orders page, deferring behind login
// when necessary.
func (c *Coordinator) ViewOrdersWithAuth(ctx context.Context, currentPath string) bool {
	return c.ExecuteWithAuth(ctx, currentPath,
		func(context.Context) error {
			c.navigator.Navigate(c.config.Routes.Orders)
			return nil
		},
		pending.NewViewOrders(),
	)
}

// ViewProfileWithAuth opens the profile page, deferring behind login
// when necessary.
func (c *Coordinator) ViewProfileWithAuth(ctx context.Context, currentPath string) bool {
	return c.ExecuteWithAuth(ctx, currentPath,
		func(context.Context) error {
			c.navigator.Navigate(c.config.Routes.Profile)
			return nil
		},
		pending.NewViewProfile(),
	)
}

// ToggleFavoriteWithAuth toggles a wishlist entry, deferring behind
// login when necessary. Without a favorites collaborator the direct
// path is a logged no-op.
func (c *Coordinator) ToggleFavoriteWithAuth(ctx context.Context, currentPath string, productID string) bool {
	return c.ExecuteWithAuth(ctx, currentPath,
		func(ctx context.Context) error {
			if c.favorites == nil {
				return fmt.Errorf("no favorites collaborator configured")
			}
			return c.favorites.Toggle(ctx, productID)
		},
		pending.NewToggleFavorite(pending.ProductID(productID)),
	)
}

func (c *Coordinator) checkoutDirectBuyURL() string {
	return c.config.Routes.Checkout + "?" + c.config.Routes.DirectBuyParam + "=true"
}
