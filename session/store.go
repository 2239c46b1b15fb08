package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sokoni-app/sessiongate/storage"
)

// DefaultVendorSlotMaxAge bounds the separate persistent vendor login
// slot. It is an absolute age from the moment the slot was written,
// not a sliding window.
const DefaultVendorSlotMaxAge = 30 * 24 * time.Hour

// Config carries the Store dependencies. Backend is required;
// everything else has a usable zero value.
type Config struct {
	Backend  storage.Backend
	Keys     storage.Keys
	Platform storage.Platform

	Timeouts Timeouts

	// PersistentRole is the user_type allowed to skip the login screen
	// through AutoLogin. The storefront uses "vendor".
	PersistentRole string

	// RespectTokenExpiry additionally rejects sessions whose token is
	// a JWT with an exp claim in the past. The claim is read without
	// signature verification; this is a local hint, not validation.
	RespectTokenExpiry bool

	// VendorSlotMaxAge overrides DefaultVendorSlotMaxAge when > 0.
	VendorSlotMaxAge time.Duration

	Logger *slog.Logger
	Clock  func() time.Time

	// OnStorageError is invoked after a degraded storage operation has
	// been logged, so the owner can count or audit it.
	OnStorageError func(op string, err error)

	// OnSessionExpired is invoked when AutoLogin clears a persistent
	// session because its inactivity window lapsed.
	OnSessionExpired func()
}

// Store persists and interrogates the session record. It keeps an
// in-memory mirror of the record for the authenticated fast path;
// every other read goes to storage on demand, so interleaved writers
// are observed on the next call rather than cached away.
//
// All methods are safe for concurrent use. The mirror is guarded by a
// mutex so the single-writer assumption holds under concurrent use.
type Store struct {
	backend storage.Backend
	keys    storage.Keys

	platform       storage.Platform
	timeouts       Timeouts
	persistentRole string
	respectExpiry  bool
	vendorMaxAge   time.Duration

	logger         *slog.Logger
	clock          func() time.Time
	onStorageError func(op string, err error)
	onExpired      func()

	mu      sync.Mutex
	current *Record
}

// NewStore builds a Store from cfg, filling in defaults for the
// optional fields. A nil Backend panics: there is no meaningful
// degraded mode without storage.
func NewStore(cfg Config) *Store {
	if cfg.Backend == nil {
		panic("session: nil storage backend")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	vendorMaxAge := cfg.VendorSlotMaxAge
	if vendorMaxAge <= 0 {
		vendorMaxAge = DefaultVendorSlotMaxAge
	}
	keys := cfg.Keys
	if keys == (storage.Keys{}) {
		keys = storage.KeysFor(cfg.Platform)
	}

	return &Store{
		backend:        cfg.Backend,
		keys:           keys,
		platform:       cfg.Platform,
		timeouts:       cfg.Timeouts,
		persistentRole: cfg.PersistentRole,
		respectExpiry:  cfg.RespectTokenExpiry,
		vendorMaxAge:   vendorMaxAge,
		logger:         logger,
		clock:          clock,
		onStorageError: cfg.OnStorageError,
		onExpired:      cfg.OnSessionExpired,
	}
}

// read degrades a backend failure into an absent value.
func (s *Store) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.degrade("get", key, err)
		return "", false
	}
	return value, ok
}

// write degrades a backend failure into a no-op.
func (s *Store) write(ctx context.Context, key, value string) {
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.degrade("set", key, err)
	}
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.degrade("remove", key, err)
	}
}

func (s *Store) degrade(op, key string, err error) {
	s.logger.Warn("session storage degraded",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
	if s.onStorageError != nil {
		s.onStorageError(op, err)
	}
}

// SetAuth persists the token/user pair with lastActivity set to now.
// The pair is the unit of authentication: an empty token or nil user is
// rejected as a whole rather than half-written.
func (s *Store) SetAuth(ctx context.Context, token string, user *Profile) {
	if token == "" || user == nil {
		s.logger.Warn("rejected partial credential pair",
			slog.Bool("has_token", token != ""),
			slog.Bool("has_user", user != nil),
		)
		return
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("user profile not serializable", slog.String("error", err.Error()))
		return
	}

	now := s.clock()
	s.write(ctx, s.keys.Token, token)
	s.write(ctx, s.keys.User, string(encoded))
	s.write(ctx, s.keys.LastActivity, formatMillis(now))

	s.mu.Lock()
	s.current = &Record{Token: token, User: user, LastActivity: now}
	s.mu.Unlock()
}

// Token returns the persisted credential, or "" if absent.
func (s *Store) Token(ctx context.Context) string {
	value, _ := s.read(ctx, s.keys.Token)
	return value
}

// User returns the persisted profile, or nil if absent or corrupted.
func (s *Store) User(ctx context.Context) *Profile {
	value, ok := s.read(ctx, s.keys.User)
	if !ok {
		return nil
	}

	var profile Profile
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		s.logger.Warn("persisted user profile corrupted", slog.String("error", err.Error()))
		return nil
	}
	return &profile
}

// Current returns the in-memory record without touching storage. It is
// the coordinator's authenticated fast path; it only reflects what this
// process has set or restored.
func (s *Store) Current() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsAuthenticated reports whether both halves of the credential pair
// are present. Expiry is deliberately not consulted here.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != "" && s.User(ctx) != nil
}

// LastActivity returns the persisted liveness instant.
func (s *Store) LastActivity(ctx context.Context) (time.Time, bool) {
	value, ok := s.read(ctx, s.keys.LastActivity)
	if !ok {
		return time.Time{}, false
	}
	at, err := parseMillis(value)
	if err != nil {
		s.logger.Warn("persisted activity timestamp corrupted", slog.String("value", value))
		return time.Time{}, false
	}
	return at, true
}

// UpdateActivity refreshes lastActivity to now. Callers invoke it on
// meaningful interaction and periodically while foregrounded.
func (s *Store) UpdateActivity(ctx context.Context) {
	now := s.clock()
	s.write(ctx, s.keys.LastActivity, formatMillis(now))

	s.mu.Lock()
	if s.current != nil {
		s.current.LastActivity = now
	}
	s.mu.Unlock()
}

// IsSessionValid reports whether the inactivity window for the current
// platform and role still covers lastActivity. A session with no
// recorded activity is invalid.
func (s *Store) IsSessionValid(ctx context.Context) bool {
	last, ok := s.LastActivity(ctx)
	if !ok {
		return false
	}

	role := ""
	if user := s.User(ctx); user != nil {
		role = user.UserType
	}

	now := s.clock()
	timeout := s.timeouts.Resolve(s.platform, role)
	if now.Sub(last) > timeout {
		return false
	}

	if s.respectExpiry {
		if token := s.Token(ctx); token != "" && tokenExpired(token, now) {
			return false
		}
	}
	return true
}

// AutoLogin re-establishes the session from persisted credentials. It
// succeeds only for the configured persistent role with a still-valid
// session, refreshing activity as a side effect. An expired persistent
// session is cleared; a session for any other role is left untouched so
// the regular login flow can decide what to do with it.
func (s *Store) AutoLogin(ctx context.Context) bool {
	token := s.Token(ctx)
	user := s.User(ctx)
	if token == "" || user == nil || user.UserType != s.persistentRole {
		return false
	}

	if !s.IsSessionValid(ctx) {
		s.logger.Info("persistent session expired", slog.String("role", user.UserType))
		s.ClearAuth(ctx)
		if s.onExpired != nil {
			s.onExpired()
		}
		return false
	}

	s.UpdateActivity(ctx)

	s.mu.Lock()
	s.current = &Record{Token: token, User: user, LastActivity: s.clock()}
	s.mu.Unlock()

	return true
}

// ClearAuth deletes the credential pair, the activity timestamp and the
// cached cart/wishlist/buy-now snapshots. Calling it on an already
// cleared store is a no-op.
func (s *Store) ClearAuth(ctx context.Context) {
	s.remove(ctx, s.keys.Token)
	s.remove(ctx, s.keys.User)
	s.remove(ctx, s.keys.LastActivity)
	s.remove(ctx, s.keys.Cart)
	s.remove(ctx, s.keys.Wishlist)
	s.remove(ctx, s.keys.BuyNow)

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// KeepAlive refreshes activity iff the store currently holds a
// credential pair. Safe to call on a timer regardless of auth state.
func (s *Store) KeepAlive(ctx context.Context) {
	if s.IsAuthenticated(ctx) {
		s.UpdateActivity(ctx)
	}
}

// UpdateUser replaces the persisted profile without touching the token
// or the activity timestamp. Used after role switches and profile
// edits.
func (s *Store) UpdateUser(ctx context.Context, user *Profile) {
	if user == nil {
		return
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("user profile not serializable", slog.String("error", err.Error()))
		return
	}
	s.write(ctx, s.keys.User, string(encoded))

	s.mu.Lock()
	if s.current != nil {
		s.current.User = user
	}
	s.mu.Unlock()
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
