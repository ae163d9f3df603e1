package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
)

func TestSilentCoalescing(t *testing.T) {
	ctx := context.Background()
	sink := NewSilentSink(ctx, store.NewMemoryStore(), nil)

	for i := 0; i < 4; i++ {
		sink.Add(ctx, "Données non disponibles", KindWarning)
	}

	entries := sink.Notifications()
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Count)
	assert.Equal(t, 4, sink.Count())
}

func TestSilentCapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	sink := NewSilentSink(ctx, store.NewMemoryStore(), nil)

	for i := 0; i < 12; i++ {
		sink.Add(ctx, fmt.Sprintf("message %d", i), KindInfo)
	}

	entries := sink.Notifications()
	require.Len(t, entries, 10)
	// Newest first; the two oldest were evicted.
	assert.Equal(t, "message 11", entries[0].Message)
	assert.Equal(t, "message 2", entries[9].Message)
}

func TestSilentPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	sink := NewSilentSink(ctx, st, nil)
	sink.Add(ctx, "Connexion temporairement indisponible", KindError)
	sink.Add(ctx, "Connexion temporairement indisponible", KindError)

	restored := NewSilentSink(ctx, st, nil)
	assert.Equal(t, 2, restored.Count())
	entries := restored.Notifications()
	require.Len(t, entries, 1)
	assert.Equal(t, KindError, entries[0].Kind)
}

func TestSilentRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	sink := NewSilentSink(ctx, store.NewMemoryStore(), nil)

	sink.Add(ctx, "a", KindInfo)
	sink.Add(ctx, "b", KindInfo)
	entries := sink.Notifications()
	require.Len(t, entries, 2)

	sink.Remove(ctx, entries[0].ID)
	assert.Equal(t, 1, sink.Count())

	sink.ClearAll(ctx)
	assert.Equal(t, 0, sink.Count())
	assert.Empty(t, sink.Notifications())
}

func TestSilentSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	sink := NewSilentSink(ctx, store.NewMemoryStore(), nil)

	var snapshots [][]SilentNotification
	sink.Subscribe(func(s []SilentNotification) { snapshots = append(snapshots, s) })

	sink.Add(ctx, "x", KindWarning)
	sink.Add(ctx, "x", KindWarning)

	require.Len(t, snapshots, 2)
	assert.Equal(t, 2, snapshots[1][0].Count)
}
