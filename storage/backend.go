package storage

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by backends when the underlying store
// cannot be reached. Callers are expected to degrade, not to crash.
var ErrUnavailable = errors.New("storage backend unavailable")

// Backend is the uniform async key-value contract shared by every
// storage implementation.
//
// Get reports a missing key as ("", false, nil); an error always means
// the backend itself failed, never that the key was absent. Set and
// Remove must complete before returning so that a subsequent Get on the
// same backend observes the write.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Platform identifies the runtime the client was packaged for. It is
// derived once at startup and does not change within a process
// lifetime.
type Platform uint8

const (
	// PlatformWeb is the browser-hosted runtime.
	PlatformWeb Platform = iota
	// PlatformNative is the mobile app runtime.
	PlatformNative
)

// String describes the platform for logs and audit events.
func (p Platform) String() string {
	if p == PlatformNative {
		return "native"
	}
	return "web"
}

// Keys is the durable key schema for one platform. The two schemas are
// stable across versions; changing a name orphans previously persisted
// state.
type Keys struct {
	Token         string
	User          string
	LastActivity  string
	Cart          string
	Wishlist      string
	PendingAction string
	BuyNow        string

	VendorToken string
	VendorUser  string
	VendorTime  string
}

// WebKeys returns the key names used by the browser-hosted runtime.
func WebKeys() Keys {
	return Keys{
		Token:         "token",
		User:          "user",
		LastActivity:  "lastActivity",
		Cart:          "cart",
		Wishlist:      "wishlist",
		PendingAction: "pendingAction",
		BuyNow:        "buyNowProduct",
		VendorToken:   "vendor_token",
		VendorUser:    "vendor_user",
		VendorTime:    "vendor_time",
	}
}

// NativeKeys returns the key names used by the mobile app runtime.
func NativeKeys() Keys {
	return Keys{
		Token:         "auth_token",
		User:          "auth_user",
		LastActivity:  "last_activity",
		Cart:          "cart",
		Wishlist:      "wishlist",
		PendingAction: "pendingAction",
		BuyNow:        "buyNowProduct",
		VendorToken:   "vendor_token",
		VendorUser:    "vendor_user",
		VendorTime:    "vendor_time",
	}
}

// KeysFor selects the key schema for the given platform.
func KeysFor(p Platform) Keys {
	if p == PlatformNative {
		return NativeKeys()
	}
	return WebKeys()
}
