package sessiongate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sokoni-app/sessiongate/session"
	"github.com/sokoni-app/sessiongate/storage"
)

type cartCall struct {
	productID string
	quantity  int
}

type recordingCart struct {
	mu    sync.Mutex
	calls []cartCall
	errs  []error
}

func (c *recordingCart) AddToCart(_ context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, cartCall{productID: productID, quantity: quantity})
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return err
	}
	return nil
}

func (c *recordingCart) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type recordingNavigator struct {
	mu    sync.Mutex
	soft  []string
	hard  []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.soft = append(n.soft, path)
}

func (n *recordingNavigator) NavigateHard(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hard = append(n.hard, path)
}

func (n *recordingNavigator) lastSoft() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.soft) == 0 {
		return ""
	}
	return n.soft[len(n.soft)-1]
}

func (n *recordingNavigator) lastHard() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.hard) == 0 {
		return ""
	}
	return n.hard[len(n.hard)-1]
}

type recordingFavorites struct {
	mu      sync.Mutex
	toggles []string
	err     error
}

func (f *recordingFavorites) Toggle(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.toggles = append(f.toggles, productID)
	return nil
}

type coordinatorFixture struct {
	coordinator *Coordinator
	backend     *storage.Memory
	cart        *recordingCart
	navigator   *recordingNavigator
	favorites   *recordingFavorites
	clock       *fixtureClock
}

type fixtureClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixtureClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixtureClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T, mutate func(*Config)) *coordinatorFixture {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	backend := storage.NewMemory()
	cart := &recordingCart{}
	navigator := &recordingNavigator{}
	favorites := &recordingFavorites{}
	clock := &fixtureClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	coordinator, err := New().
		WithConfig(cfg).
		WithBackend(backend).
		WithCart(cart).
		WithNavigator(navigator).
		WithFavorites(favorites).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	return &coordinatorFixture{
		coordinator: coordinator,
		backend:     backend,
		cart:        cart,
		navigator:   navigator,
		favorites:   favorites,
		clock:       clock,
	}
}

func vendorProfile() *Profile {
	return &Profile{UserType: "vendor", Username: "mariam"}
}

func buyerProfile() *Profile {
	return &Profile{UserType: "buyer", Username: "juma"}
}

func TestSetAuthPersistsSessionAndVendorSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-1", vendorProfile())

	sessions := f.coordinator.Sessions()
	if got := sessions.Token(ctx); got != "tok-1" {
		t.Fatalf("Token = %q, want tok-1", got)
	}
	if !sessions.IsVendorLoggedIn(ctx) {
		t.Fatal("expected vendor slot to be refreshed for the persistent role")
	}
	if got := f.coordinator.MetricsSnapshot().Counters[MetricAuthSet]; got != 1 {
		t.Fatalf("MetricAuthSet = %d, want 1", got)
	}
}

func TestSetAuthBuyerDoesNotTouchVendorSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-2", buyerProfile())

	if f.coordinator.Sessions().IsVendorLoggedIn(ctx) {
		t.Fatal("buyer login must not populate the vendor slot")
	}
}

func TestClearAuthLeavesVendorSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-3", vendorProfile())
	f.coordinator.ClearAuth(ctx)

	sessions := f.coordinator.Sessions()
	if sessions.IsAuthenticated(ctx) {
		t.Fatal("session should be cleared")
	}
	if !sessions.IsVendorLoggedIn(ctx) {
		t.Fatal("vendor slot must survive a logout")
	}
}

func TestAutoLoginCountsOutcomes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if f.coordinator.AutoLogin(ctx) {
		t.Fatal("auto-login with no stored session should fail")
	}

	f.coordinator.SetAuth(ctx, "tok-4", vendorProfile())
	if !f.coordinator.AutoLogin(ctx) {
		t.Fatal("auto-login with a live vendor session should succeed")
	}

	counters := f.coordinator.MetricsSnapshot().Counters
	if counters[MetricAutoLoginRejected] != 1 {
		t.Fatalf("MetricAutoLoginRejected = %d, want 1", counters[MetricAutoLoginRejected])
	}
	if counters[MetricAutoLoginSuccess] != 1 {
		t.Fatalf("MetricAutoLoginSuccess = %d, want 1", counters[MetricAutoLoginSuccess])
	}
}

func TestRestoreSessionRefreshesPersistentRoleOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-5", buyerProfile())
	if f.coordinator.RestoreSession(ctx) {
		t.Fatal("restore should refuse a non-persistent role")
	}

	f.coordinator.SetAuth(ctx, "tok-6", vendorProfile())
	before, _ := f.coordinator.Sessions().LastActivity(ctx)

	f.clock.Advance(time.Hour)
	if !f.coordinator.RestoreSession(ctx) {
		t.Fatal("restore of a vendor session should succeed")
	}

	after, _ := f.coordinator.Sessions().LastActivity(ctx)
	if !after.After(before) {
		t.Fatalf("last activity not refreshed: before=%v after=%v", before, after)
	}
}

func TestEnsureAuthenticatedValidSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if f.coordinator.EnsureAuthenticated(ctx) {
		t.Fatal("no session should not be authenticated")
	}

	f.coordinator.SetAuth(ctx, "tok-7", buyerProfile())
	if !f.coordinator.EnsureAuthenticated(ctx) {
		t.Fatal("fresh buyer session should pass")
	}

	// Push past the 24h web inactivity window.
	f.clock.Advance(25 * time.Hour)
	if f.coordinator.EnsureAuthenticated(ctx) {
		t.Fatal("stale session should not pass")
	}
}

func TestRestoreVendorLoginPromotesSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-8", vendorProfile())
	f.coordinator.ClearAuth(ctx)

	if !f.coordinator.RestoreVendorLogin(ctx) {
		t.Fatal("vendor slot should restore the session")
	}
	if got := f.coordinator.Sessions().Token(ctx); got != "tok-8" {
		t.Fatalf("restored token = %q, want tok-8", got)
	}
}

func TestRestoreVendorLoginEmptySlot(t *testing.T) {
	f := newFixture(t, nil)

	if f.coordinator.RestoreVendorLogin(context.Background()) {
		t.Fatal("empty vendor slot must not restore a session")
	}
}

func TestStorageErrorsAreCountedNotFatal(t *testing.T) {
	backend := &failingBackend{}
	cart := &recordingCart{}
	navigator := &recordingNavigator{}

	coordinator, err := New().
		WithBackend(backend).
		WithCart(cart).
		WithNavigator(navigator).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)

	ctx := context.Background()
	coordinator.SetAuth(ctx, "tok-9", buyerProfile())

	if coordinator.Sessions().IsAuthenticated(ctx) {
		t.Fatal("a dead backend cannot produce an authenticated read")
	}
	if got := coordinator.MetricsSnapshot().Counters[MetricStorageError]; got == 0 {
		t.Fatal("expected storage errors to be counted")
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, storage.ErrUnavailable
}

func (failingBackend) Set(context.Context, string, string) error {
	return storage.ErrUnavailable
}

func (failingBackend) Remove(context.Context, string) error {
	return storage.ErrUnavailable
}

func TestEnsureAuthenticatedTimeoutOverride(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.Session.Timeouts = []session.TimeoutRule{
			{Platform: storage.PlatformWeb, Timeout: 10 * time.Minute},
		}
	})
	ctx := context.Background()

	f.coordinator.SetAuth(ctx, "tok-10", buyerProfile())
	f.clock.Advance(11 * time.Minute)

	if f.coordinator.EnsureAuthenticated(ctx) {
		t.Fatal("session older than the override window should not pass")
	}
}

var errCartClosed = errors.New("cart service unavailable")
