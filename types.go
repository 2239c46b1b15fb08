package sessiongate

import (
	"context"

	"github.com/sokoni-app/sessiongate/session"
	"github.com/sokoni-app/sessiongate/storage"
)

// Platform is re-exported so callers configuring the coordinator do
// not need to import the storage subpackage.
type Platform = storage.Platform

const (
	// PlatformWeb is the browser-hosted runtime.
	PlatformWeb = storage.PlatformWeb
	// PlatformNative is the mobile app runtime.
	PlatformNative = storage.PlatformNative
)

// Profile is the persisted user record, re-exported from the session
// subpackage.
type Profile = session.Profile

// Cart is the cart collaborator. The coordinator calls it when
// replaying a deferred add-to-cart; the implementation owns the
// transport.
type Cart interface {
	AddToCart(ctx context.Context, productID string, quantity int) error
}

// Navigator is the client-side router abstraction. Navigate is an
// in-app route change; NavigateHard is a full page load, used only by
// the buy-now replay to guarantee a clean checkout page state.
type Navigator interface {
	Navigate(path string)
	NavigateHard(path string)
}

// Favorites is the optional wishlist collaborator used when replaying
// a deferred favorite toggle. A coordinator built without one drops
// such actions on replay.
type Favorites interface {
	Toggle(ctx context.Context, productID string) error
}
