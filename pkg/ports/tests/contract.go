package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// MachineLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.MachineLoader.
// expected maps each machine name to its initial state.
func MachineLoaderContractTest(t *testing.T, loader ports.MachineLoader, expected map[string]string) {
	t.Helper()

	// 1. Test GetMachine (Success)
	t.Run("GetMachine_Success", func(t *testing.T) {
		for name, initial := range expected {
			def, err := loader.GetMachine(name)
			if err != nil {
				t.Fatalf("unexpected error getting machine %s: %v", name, err)
			}
			if def.Name != name {
				t.Errorf("name mismatch: got %q, want %q", def.Name, name)
			}
			if def.Initial != initial {
				t.Errorf("initial state mismatch for %s: got %q, want %q", name, def.Initial, initial)
			}
		}
	})

	// 2. Test GetMachine (NotFound)
	t.Run("GetMachine_NotFound", func(t *testing.T) {
		_, err := loader.GetMachine("non-existent-machine")
		if !errors.Is(err, domain.ErrMachineNotFound) {
			t.Errorf("expected ErrMachineNotFound for non-existent machine, got %v", err)
		}
	})

	// 3. Test ListMachines
	t.Run("ListMachines", func(t *testing.T) {
		names, err := loader.ListMachines()
		if err != nil {
			t.Fatalf("unexpected error listing machines: %v", err)
		}

		if len(names) != len(expected) {
			t.Errorf("expected %d machines, got %d", len(expected), len(names))
		}

		// Verify all expected names are present
		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for name := range expected {
			if !lookup[name] {
				t.Errorf("machine %s missing from list", name)
			}
		}
	})
}
