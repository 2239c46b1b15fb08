package pending

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sokoni-app/sessiongate/storage"
)

// LedgerConfig carries the Ledger dependencies. Backend and Key are
// required.
type LedgerConfig struct {
	Backend storage.Backend
	Key     string

	// TTL discards hydrated actions older than the given age. Zero
	// means a deferred action waits for login indefinitely.
	TTL time.Duration

	Logger *slog.Logger
	Clock  func() time.Time

	// OnStorageError mirrors the session store hook: it fires after a
	// degraded storage operation has been logged.
	OnStorageError func(op string, err error)
}

// Ledger persists the single in-flight deferred action. The in-memory
// copy is authoritative within the process; the durable copy exists to
// survive the full page reload a login redirect can cause.
//
// All methods are safe for concurrent use.
type Ledger struct {
	backend storage.Backend
	key     string
	ttl     time.Duration

	logger         *slog.Logger
	clock          func() time.Time
	onStorageError func(op string, err error)

	mu      sync.Mutex
	current *Action
}

// NewLedger builds a Ledger, filling defaults for the optional fields.
func NewLedger(cfg LedgerConfig) *Ledger {
	if cfg.Backend == nil {
		panic("pending: nil storage backend")
	}
	key := cfg.Key
	if key == "" {
		key = storage.WebKeys().PendingAction
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Ledger{
		backend:        cfg.Backend,
		key:            key,
		ttl:            cfg.TTL,
		logger:         logger,
		clock:          clock,
		onStorageError: cfg.OnStorageError,
	}
}

// Set records action as the pending one, overwriting any prior
// unexecuted action. The action is stamped with an ID and creation
// time if it does not carry them yet.
func (l *Ledger) Set(ctx context.Context, action *Action) {
	if action == nil {
		return
	}
	action.stamp(l.clock())

	l.mu.Lock()
	l.current = action
	l.mu.Unlock()

	encoded, err := json.Marshal(action)
	if err != nil {
		// The in-memory copy still covers the common no-reload path.
		l.logger.Warn("pending action not serializable",
			slog.String("kind", action.Kind.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := l.backend.Set(ctx, l.key, string(encoded)); err != nil {
		l.degrade("set", err)
	}
}

// Get returns the pending action, hydrating from durable storage when
// the in-memory copy is empty. Malformed or unknown persisted blobs
// read as "no action". A hydrated or cached action older than the TTL
// is discarded.
func (l *Ledger) Get(ctx context.Context) *Action {
	l.mu.Lock()
	action := l.current
	l.mu.Unlock()

	if action == nil {
		action = l.hydrate(ctx)
	}
	if action == nil {
		return nil
	}

	if l.ttl > 0 && !action.CreatedAt.IsZero() && l.clock().Sub(action.CreatedAt) > l.ttl {
		l.logger.Info("pending action aged out",
			slog.String("kind", action.Kind.String()),
			slog.String("id", action.ID),
		)
		l.Clear(ctx)
		return nil
	}

	return action
}

func (l *Ledger) hydrate(ctx context.Context) *Action {
	value, ok, err := l.backend.Get(ctx, l.key)
	if err != nil {
		l.degrade("get", err)
		return nil
	}
	if !ok {
		return nil
	}

	action := &Action{}
	if err := json.Unmarshal([]byte(value), action); err != nil {
		l.logger.Warn("persisted pending action unreadable", slog.String("error", err.Error()))
		return nil
	}

	l.mu.Lock()
	l.current = action
	l.mu.Unlock()

	return action
}

// Clear deletes both copies. Idempotent.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.current = nil
	l.mu.Unlock()

	if err := l.backend.Remove(ctx, l.key); err != nil {
		l.degrade("remove", err)
	}
}

func (l *Ledger) degrade(op string, err error) {
	l.logger.Warn("pending ledger storage degraded",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	if l.onStorageError != nil {
		l.onStorageError(op, err)
	}
}
