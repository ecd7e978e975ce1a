package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/schema"
)

// ErrNotWatchable is returned by Watch when no layer can be watched.
var ErrNotWatchable = errors.New("machine source cannot be watched")

// layeredLoader looks machines up in each layer in turn. The first layer
// holding a name wins, so a definitions directory placed first shadows
// embedded machines of the same name.
type layeredLoader struct {
	layers []ports.MachineLoader
}

var (
	_ ports.MachineLoader = (*layeredLoader)(nil)
	_ ports.Watchable     = (*layeredLoader)(nil)
)

func (l *layeredLoader) GetMachine(name string) (*schema.Definition, error) {
	for _, layer := range l.layers {
		def, err := layer.GetMachine(name)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, domain.ErrMachineNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

func (l *layeredLoader) ListMachines() ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, layer := range l.layers {
		list, err := layer.ListMachines()
		if err != nil {
			return nil, err
		}
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Watch delegates to the first watchable layer.
func (l *layeredLoader) Watch(ctx context.Context) (<-chan struct{}, error) {
	for _, layer := range l.layers {
		if w, ok := layer.(ports.Watchable); ok {
			return w.Watch(ctx)
		}
	}
	return nil, ErrNotWatchable
}
