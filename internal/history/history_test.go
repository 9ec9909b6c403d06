package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndLatest(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Append(ctx, Record{
		BuildID: "b-1", ContentHash: "aaa", Status: "success", DurationMS: 120,
	}))
	require.NoError(t, store.Append(ctx, Record{
		BuildID: "b-2", ContentHash: "bbb", Status: "success", DurationMS: 90,
	}))

	rec, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b-2", rec.BuildID)
	require.Equal(t, "bbb", rec.ContentHash)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestStore_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(context.Background(), Record{
		BuildID: "b-1", ContentHash: "aaa", Status: "failed",
	}))

	rec, ok, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "failed", rec.Status)
}
