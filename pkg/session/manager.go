package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/google/uuid"
)

// ErrSessionExists is returned by Start when the requested ID is taken.
var ErrSessionExists = errors.New("session already exists")

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs machines step by step on behalf of callers that come back
// between steps, persisting each paused run as a Snapshot.
// It serializes access per session and uses reference counting to garbage
// collect unused locks.
type Manager struct {
	store  ports.SessionStore
	loader ports.MachineLoader

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks is passed to every machine the Manager compiles.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// NewManager creates a new session Manager over a store and a machine source.
func NewManager(store ports.SessionStore, loader ports.MachineLoader, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		loader:  loader,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a session running machine on input. An empty id gets a
// random one. The returned snapshot has taken no steps yet.
func (m *Manager) Start(ctx context.Context, id, machine, input string) (*domain.Snapshot, error) {
	if id == "" {
		id = uuid.NewString()
	}

	mach, err := m.compile(machine)
	if err != nil {
		return nil, err
	}

	var snap *domain.Snapshot
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, id)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, id)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		cfg := mach.Start(ctx, input)
		snap = domain.NewSnapshot(id, machine, input, cfg, domain.StatusRunning)
		if err := m.store.Save(ctx, id, snap); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("session started", "session_id", id, "machine", machine)
	return snap, nil
}

// Step advances the session by at most n transitions (at least one) and
// persists the result. Runs that end in a table error are recorded in the
// snapshot as failed rather than returned as errors. Halted and failed
// sessions are terminal: stepping them returns the snapshot unchanged.
func (m *Manager) Step(ctx context.Context, id string, n int) (*domain.Snapshot, error) {
	if n < 1 {
		n = 1
	}

	var snap *domain.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if snap.Status.Halted() {
			return nil
		}

		mach, err := m.compile(snap.Machine)
		if err != nil {
			return err
		}

		cfg := snap.Configuration()
		status, runErr := runner.StepN[string](ctx, mach, cfg, n)
		snap.Update(cfg, status, runErr)
		if runErr != nil {
			m.logger.Debug("session failed", "session_id", id, "kind", snap.ErrorKind, "err", runErr)
		}

		if err := m.store.Save(ctx, id, snap); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, id)
		return err
	})
	return snap, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) compile(name string) (*turing.Machine[string], error) {
	def, err := m.loader.GetMachine(name)
	if err != nil {
		return nil, err
	}
	return def.Compile(turing.WithLogger(m.logger), turing.WithLifecycleHooks(m.hooks))
}
