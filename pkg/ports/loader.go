package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/schema"
)

// MachineLoader defines how adapters retrieve machine definitions.
// This allows the definition source (embedded library, directory, memory)
// to be decoupled from the surfaces that run machines.
type MachineLoader interface {
	// GetMachine returns the definition registered under name.
	// Returns domain.ErrMachineNotFound if there is none.
	GetMachine(name string) (*schema.Definition, error)

	// ListMachines returns the names of all available definitions, sorted.
	// This is used for introspection tools (e.g. 'turing graph', GET /machines).
	ListMachines() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying definitions change.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
