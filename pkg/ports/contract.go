package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string) *domain.Snapshot {
		cfg := domain.NewConfiguration("0110", "q0")
		return domain.NewSnapshot(id, "palindrome", "0110", cfg, domain.StatusRunning)
	}

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a snapshot mid-run
		snap := newSnapshot(sessionID)
		cfg := snap.Configuration()
		cfg.Tape[1] = '_'
		cfg.Head = 2
		cfg.State = "seen0"
		cfg.Steps = 1
		snap.Update(cfg, domain.StatusRunning, nil)

		// 2. Save
		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.ID, loaded.ID)
		assert.Equal(t, "palindrome", loaded.Machine)
		assert.Equal(t, "0110", loaded.Input)
		assert.Equal(t, "__110", loaded.Tape)
		assert.Equal(t, 2, loaded.Head)
		assert.Equal(t, "seen0", loaded.State)
		assert.Equal(t, 1, loaded.Steps)
		assert.Equal(t, domain.StatusRunning, loaded.Status)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := newSnapshot(sessionID)
		snap.Update(snap.Configuration(), domain.StatusFailed, domain.ErrUnknownSymbol)
		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, loaded.Status)
		assert.Equal(t, domain.KindUnknownSymbol, loaded.ErrorKind)
		assert.NotEmpty(t, loaded.Error)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, sessionID, newSnapshot(sessionID))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 sessions
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSnapshot(id1))
		_ = store.Save(ctx, id2, newSnapshot(id2))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
