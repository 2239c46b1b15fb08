package sessiongate

import (
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sokoni-app/sessiongate/pending"
	"github.com/sokoni-app/sessiongate/session"
	"github.com/sokoni-app/sessiongate/storage"
)

// Builder assembles a [Coordinator]. Configure it during
// initialization and call Build exactly once.
type Builder struct {
	config  Config
	backend storage.Backend

	cart      Cart
	navigator Navigator
	favorites Favorites

	logger    *slog.Logger
	clock     func() time.Time
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithPlatform sets the runtime platform, which selects the durable
// key schema and the default inactivity window.
func (b *Builder) WithPlatform(p Platform) *Builder {
	b.config.Platform = p
	return b
}

// WithBackend sets the storage backend explicitly.
func (b *Builder) WithBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithPreferencesFile backs the coordinator with the app-scoped
// preferences file at path, the native-platform store.
func (b *Builder) WithPreferencesFile(path string) (*Builder, error) {
	backend, err := storage.NewFile(path)
	if err != nil {
		return b, err
	}
	b.backend = backend
	return b, nil
}

// WithRedis backs the coordinator with a Redis-mirrored store.
func (b *Builder) WithRedis(client redis.UniversalClient, prefix string) *Builder {
	b.backend = storage.NewRedis(client, prefix)
	return b
}

// WithCart sets the cart collaborator. Required.
func (b *Builder) WithCart(cart Cart) *Builder {
	b.cart = cart
	return b
}

// WithNavigator sets the navigation collaborator. Required.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithFavorites sets the optional wishlist collaborator.
func (b *Builder) WithFavorites(f Favorites) *Builder {
	b.favorites = f
	return b
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source, mainly for tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink sets the audit sink and enables the dispatcher.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the session store and the
// ledger over the selected backend, and returns the Coordinator.
func (b *Builder) Build() (*Coordinator, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.backend == nil {
		return nil, ErrStorageRequired
	}
	if b.cart == nil {
		return nil, ErrCartRequired
	}
	if b.navigator == nil {
		return nil, ErrNavigatorRequired
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	coordinator := &Coordinator{
		config:    cfg,
		cart:      b.cart,
		navigator: b.navigator,
		favorites: b.favorites,
		logger:    logger,
		clock:     clock,
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	keys := storage.KeysFor(cfg.Platform)

	onStorageError := func(op string, err error) {
		coordinator.metricInc(MetricStorageError)
		coordinator.emitAudit(nil, AuditEvent{
			EventType: AuditStorageDegraded,
			Error:     err.Error(),
			Metadata:  map[string]string{"op": op},
		})
	}

	coordinator.sessions = session.NewStore(session.Config{
		Backend:            b.backend,
		Keys:               keys,
		Platform:           cfg.Platform,
		Timeouts:           session.NewTimeouts(cfg.Session.Timeouts...),
		PersistentRole:     cfg.Session.PersistentRole,
		RespectTokenExpiry: cfg.Session.RespectTokenExpiry,
		VendorSlotMaxAge:   cfg.Session.VendorSlotMaxAge,
		Logger:             logger,
		Clock:              clock,
		OnStorageError:     onStorageError,
		OnSessionExpired: func() {
			coordinator.metricInc(MetricSessionExpired)
			coordinator.emitAudit(nil, AuditEvent{EventType: AuditSessionExpired, Success: true})
		},
	})

	coordinator.ledger = pending.NewLedger(pending.LedgerConfig{
		Backend:        b.backend,
		Key:            keys.PendingAction,
		TTL:            cfg.Pending.TTL,
		Logger:         logger,
		Clock:          clock,
		OnStorageError: onStorageError,
	})

	b.built = true

	return coordinator, nil
}
