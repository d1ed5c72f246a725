package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestShouldBuild_UnknownVersion_True(t *testing.T) {
	store := newTestStore(t)

	needed, err := store.ShouldBuild(context.Background(), "v0.12.0", "abc")
	require.NoError(t, err)
	require.True(t, needed)
}

func TestShouldBuild_SameHash_False(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBuild(ctx, BuildRecord{
		Version:    "v0.12.0",
		ExportHash: "abc",
		BuildID:    "build-1",
		Pages:      10,
		BuiltAt:    time.Now(),
	}))

	needed, err := store.ShouldBuild(ctx, "v0.12.0", "abc")
	require.NoError(t, err)
	require.False(t, needed)
}

func TestShouldBuild_ChangedHash_True(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBuild(ctx, BuildRecord{
		Version:    "v0.12.0",
		ExportHash: "abc",
		BuildID:    "build-1",
		BuiltAt:    time.Now(),
	}))

	needed, err := store.ShouldBuild(ctx, "v0.12.0", "def")
	require.NoError(t, err)
	require.True(t, needed)
}

func TestRecordBuild_Upsert_ReplacesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordBuild(ctx, BuildRecord{
		Version: "v0.12.0", ExportHash: "abc", BuildID: "build-1", Pages: 5, BuiltAt: time.Now(),
	}))
	require.NoError(t, store.RecordBuild(ctx, BuildRecord{
		Version: "v0.12.0", ExportHash: "def", BuildID: "build-2", Pages: 7, Failures: 1, BuiltAt: time.Now(),
	}))

	rec, err := store.LastBuild(ctx, "v0.12.0")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "def", rec.ExportHash)
	require.Equal(t, "build-2", rec.BuildID)
	require.Equal(t, 7, rec.Pages)
	require.Equal(t, 1, rec.Failures)
}

func TestLastBuild_UnknownVersion_Nil(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.LastBuild(context.Background(), "v0.99.0")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestLastBuild_BuiltAtRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	builtAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordBuild(ctx, BuildRecord{
		Version: "v0.12.0", ExportHash: "abc", BuildID: "build-1", BuiltAt: builtAt,
	}))

	rec, err := store.LastBuild(ctx, "v0.12.0")
	require.NoError(t, err)
	require.Equal(t, builtAt.Unix(), rec.BuiltAt.Unix())
}

func TestHashFile_KnownDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)
}

func TestHashFile_MissingFile_Error(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
