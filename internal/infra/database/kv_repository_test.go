package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

func newSQLiteRepo(t *testing.T, path string) *KVRepository {
	t.Helper()
	ctx := context.Background()

	db, err := NewDBConnection(ctx, "sqlite", path)
	require.NoError(t, err)

	repo, err := NewKVRepository(db, "sqlite")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx), "migrate must be idempotent")

	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestKVRepositoryGetPut(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "kv.db"))

	_, found, err := repo.Get(ctx, "leads")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.PutMany(ctx, map[string][]byte{
		"leads":      []byte(`[]`),
		"vpnEnabled": []byte(`false`),
	}))
	require.NoError(t, repo.PutMany(ctx, map[string][]byte{"vpnEnabled": []byte(`true`)}))

	value, found, err := repo.Get(ctx, "vpnEnabled")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", string(value))

	value, _, err = repo.Get(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))

	assert.NoError(t, repo.Ping(ctx))
}

func TestKVRepositoryBacksStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first := newSQLiteRepo(t, path)
	store, err := usecase.OpenStore(ctx, first)
	require.NoError(t, err)

	lead, err := store.AddLead(ctx, usecase.AddLeadInput{Name: "Ann", Tag: "new", Status: "contacted"})
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx))
	require.NoError(t, first.Close())

	second := newSQLiteRepo(t, path)
	reopened, err := usecase.OpenStore(ctx, second)
	require.NoError(t, err)

	got, ok := reopened.GetLead(lead.ID)
	require.True(t, ok)
	assert.Equal(t, lead, got)
	assert.Equal(t, store.Snapshot(), reopened.Snapshot())
}

func TestKVRepositoryRejectsWriteOverUnseenChange(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	first := newSQLiteRepo(t, path)
	second := newSQLiteRepo(t, path)

	_, _, err := first.Get(ctx, "leads")
	require.NoError(t, err)
	_, _, err = second.Get(ctx, "leads")
	require.NoError(t, err)

	require.NoError(t, first.PutMany(ctx, map[string][]byte{"leads": []byte(`["first"]`)}))

	err = second.PutMany(ctx, map[string][]byte{"leads": []byte(`["second"]`)})
	require.ErrorIs(t, err, usecase.ErrStaleMirror)

	value, _, err := second.Get(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, `["first"]`, string(value), "rejected write must leave the row alone")

	require.NoError(t, second.PutMany(ctx, map[string][]byte{"leads": []byte(`["second"]`)}), "a fresh read makes the write current")
	require.ErrorIs(t, first.PutMany(ctx, map[string][]byte{"leads": []byte(`["late"]`)}), usecase.ErrStaleMirror)
}

func TestTwoStoresOverOneDatabaseKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	apiStore, err := usecase.OpenStore(ctx, newSQLiteRepo(t, path))
	require.NoError(t, err)

	cliStore, err := usecase.OpenStore(ctx, newSQLiteRepo(t, path))
	require.NoError(t, err)
	imported := entity.Lead{ID: "x", Name: "Imported", Tag: entity.LeadTagNew, Status: entity.LeadStatusContacted, DateAdded: "2024-01-01"}
	require.NoError(t, cliStore.Restore(ctx, usecase.Snapshot{Leads: []entity.Lead{imported}}))
	require.NoError(t, cliStore.Close(ctx))

	_, err = apiStore.ToggleVPN(ctx)
	require.ErrorIs(t, err, usecase.ErrStaleMirror)
	require.Len(t, apiStore.Leads(), 1, "stale store reloads the other process's data")

	enabled, err := apiStore.ToggleVPN(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NoError(t, apiStore.Close(ctx))

	reopened, err := usecase.OpenStore(ctx, newSQLiteRepo(t, path))
	require.NoError(t, err)
	leads := reopened.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "Imported", leads[0].Name)
	assert.True(t, reopened.Settings().VPNEnabled)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewKVRepository(nil, "oracle")
	assert.Error(t, err)

	_, err = NewDBConnection(context.Background(), "oracle", "")
	assert.Error(t, err)
}
