package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/adapters/mcp"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	Port     int
	Metrics  bool
	MaxSteps int
}

// NewServer wires the HTTP API: machines, sessions over the configured
// store and, when enabled, Prometheus metrics on their own registry.
func NewServer(ctx context.Context, env *Env, opts ServeOptions) (http.Handler, func() error, error) {
	hooks := env.Hooks()
	serverOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(env.Logger),
		httpAdapter.WithMaxSteps(opts.MaxSteps),
		httpAdapter.WithLifecycleHooks(hooks),
	}

	if opts.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := observability.NewMetrics(reg)
		serverOpts = append(serverOpts, httpAdapter.WithMetrics(metrics, reg))
		// sessions compile their own machines
		hooks = hooks.Merge(metrics.Hooks())
	}

	mgr, closer, err := env.SessionManager(ctx, false, hooks)
	if err != nil {
		return nil, nil, err
	}
	serverOpts = append(serverOpts, httpAdapter.WithSessions(mgr))

	return httpAdapter.NewHandler(env.Machines, serverOpts...), closer, nil
}

// Serve runs the HTTP API until ctx is done.
func Serve(ctx context.Context, env *Env, opts ServeOptions, w io.Writer) error {
	handler, closer, err := NewServer(ctx, env, opts)
	if err != nil {
		return err
	}
	defer closer()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchMachines(ctx, env)

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Starting Turing Server on %s", srv.Addr)
		if env.Config.MachinesDir != "" {
			printSystemMessage(w, "Serving machines from: %s", env.Config.MachinesDir)
		}
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		printSystemMessage(w, "Turing Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server over stdio or SSE until ctx is done.
func ServeMCP(ctx context.Context, env *Env, transport string, port, maxSteps int) error {
	srv := mcp.NewServer(env.Machines,
		mcp.WithLogger(env.Logger),
		mcp.WithMaxSteps(maxSteps),
		mcp.WithLifecycleHooks(env.Hooks()),
	)

	switch transport {
	case "stdio":
		env.Logger.Info("Starting Turing MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		env.Logger.Info("Starting Turing MCP Server (SSE)", "port", port)
		err := srv.ServeSSE(ctx, port)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}

// watchMachines logs definition changes while the server runs. Loaders
// read definitions on demand, so nothing needs reloading.
func watchMachines(ctx context.Context, env *Env) {
	if env.Config.MachinesDir == "" {
		return
	}
	w, ok := env.Machines.(ports.Watchable)
	if !ok {
		return
	}
	events, err := w.Watch(ctx)
	if err != nil {
		env.Logger.Warn("machine watch disabled", "err", err)
		return
	}
	go func() {
		for range events {
			names, err := env.Machines.ListMachines()
			env.Logger.Info("machines changed", "machines", names, "err", err)
		}
	}()
}
