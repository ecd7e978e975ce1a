package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
)

// Library implements ports.MachineLoader using an in-memory map.
// Safe for concurrent use.
type Library struct {
	mu   sync.RWMutex
	defs map[string]*schema.Definition
}

// NewLibrary creates a Library holding the given definitions.
func NewLibrary(defs ...*schema.Definition) (*Library, error) {
	l := &Library{defs: make(map[string]*schema.Definition, len(defs))}
	for _, d := range defs {
		if err := l.Add(d); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewLoader creates a Library from raw YAML or JSON documents keyed by name.
// A document's own name field is overridden by its key.
func NewLoader(data map[string]string) (*Library, error) {
	l := &Library{defs: make(map[string]*schema.Definition, len(data))}
	for name, doc := range data {
		def, err := schema.Parse([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", name, err)
		}
		def.Name = name
		l.defs[name] = def
	}
	return l, nil
}

// Add registers def under its name, replacing any previous definition.
func (l *Library) Add(def *schema.Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("definition missing name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defs[def.Name] = def.Clone()
	return nil
}

// GetMachine returns a copy of the named definition.
func (l *Library) GetMachine(name string) (*schema.Definition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	def, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return def.Clone(), nil
}

// ListMachines returns all available machine names.
func (l *Library) ListMachines() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.defs))
	for k := range l.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
