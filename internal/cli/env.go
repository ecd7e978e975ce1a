package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Dir        string
	Verbose    bool
}

// Env is what every command needs, built once from flags and config.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Machines ports.MachineLoader
	Verbose  bool
}

// Setup loads the configuration, applies flag overrides and builds the
// logger and the machine source.
func Setup(opts Options) (*Env, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	if opts.Dir != "" {
		cfg.MachinesDir = opts.Dir
	}

	logger, err := createLogger(opts.Verbose, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	loader, err := newMachineLoader(cfg.MachinesDir, logger)
	if err != nil {
		return nil, err
	}

	return &Env{
		Config:   cfg,
		Logger:   logger,
		Machines: loader,
		Verbose:  opts.Verbose,
	}, nil
}

// newMachineLoader layers the definitions directory, when set, over the
// embedded library.
func newMachineLoader(dir string, logger *slog.Logger) (ports.MachineLoader, error) {
	lib, err := machines.Library()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded machines: %w", err)
	}
	if dir == "" {
		return &layeredLoader{layers: []ports.MachineLoader{lib}}, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("machines directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("machines directory: %s is not a directory", dir)
	}

	fl := file.NewLoader(dir)
	fl.Logger = logger
	return &layeredLoader{layers: []ports.MachineLoader{fl, lib}}, nil
}

// Resolve returns the machine named target, or when target is the path of
// an existing definition file, that file.
func (e *Env) Resolve(target string) (*schema.Definition, error) {
	if schema.IsDefinitionFile(target) {
		if _, err := os.Stat(target); err == nil {
			return schema.LoadFile(target)
		}
	}
	return e.Machines.GetMachine(target)
}

// Hooks are attached to every machine a command compiles.
func (e *Env) Hooks() domain.LifecycleHooks {
	return observability.LoggingHooks(e.Logger)
}

// SessionBackend opens the configured session store, plus a distributed
// locker when the store is shared. When persistent is set a memory store
// is replaced by a file store, since the CLI exits between steps.
func (e *Env) SessionBackend(ctx context.Context, persistent bool) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch e.Config.Store {
	case config.StoreRedis:
		rc := e.Config.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithTTL(rc.TTL), redis.WithPrefix(rc.Prefix))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		return store, redis.NewLocker(store.Client(), rc.Prefix), store.Close, nil
	case config.StoreFile:
		return file.NewStore(e.Config.SessionsDir), nil, noop, nil
	default:
		if persistent {
			return file.NewStore(e.Config.SessionsDir), nil, noop, nil
		}
		return memory.NewStore(), nil, noop, nil
	}
}

// SessionManager builds a session Manager over the configured backend.
func (e *Env) SessionManager(ctx context.Context, persistent bool, hooks domain.LifecycleHooks) (*session.Manager, func() error, error) {
	store, locker, closer, err := e.SessionBackend(ctx, persistent)
	if err != nil {
		return nil, nil, err
	}
	opts := []session.Option{
		session.WithLogger(e.Logger),
		session.WithLifecycleHooks(hooks),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker), session.WithLockTTL(e.Config.Redis.LockTTL))
	}
	return session.NewManager(store, e.Machines, opts...), closer, nil
}

// budget turns a configured step budget into a runner budget.
// Negative means unbounded.
func budget(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
