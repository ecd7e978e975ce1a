package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	contract "github.com/aretw0/turing/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "always.yaml", "initial: done\naccept: done\n")
	writeFile(t, dir, "never.json", `{"name": "never", "initial": "stop", "reject": "stop"}`)
	writeFile(t, dir, "renamed.yml", "name: other\ninitial: q\naccept: q\n")
	writeFile(t, dir, "README.md", "# not a machine")
	writeFile(t, dir, "broken.yaml", "states: [")

	contract.MachineLoaderContractTest(t, file.NewLoader(dir), map[string]string{
		"always": "done",
		"never":  "stop",
		"other":  "q",
	})
}

func TestFileLoader_PicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	loader := file.NewLoader(dir)

	_, err := loader.GetMachine("m")
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)

	writeFile(t, dir, "m.yaml", "initial: a\naccept: a\n")
	def, err := loader.GetMachine("m")
	require.NoError(t, err)
	assert.Equal(t, "a", def.Initial)

	writeFile(t, dir, "m.yaml", "initial: b\naccept: b\n")
	def, err = loader.GetMachine("m")
	require.NoError(t, err)
	assert.Equal(t, "b", def.Initial)
}

func TestFileLoader_MissingDir(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "nope")).ListMachines()
	assert.Error(t, err)
}

func TestFileLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	loader := file.NewLoader(dir)
	loader.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	// non-definition files are ignored
	writeFile(t, dir, "notes.txt", "hello")
	writeFile(t, dir, "m.yaml", "initial: a\naccept: a\n")

	select {
	case _, ok := <-ch:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
