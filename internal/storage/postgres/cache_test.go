package postgres

// Интеграционные тесты кэша результатов (cache.go):
//  - SaveCacheEntry/LatestValidEntry: чтение самой свежей валидной записи,
//    сосуществование нескольких записей по одному слову (append-only);
//  - фильтрация просроченных записей при чтении;
//  - изоляция по scope;
//  - DeleteExpiredEntries: удаляются только просроченные.

import (
	"context"
	"testing"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
	"github.com/stretchr/testify/require"
)

// saveEntry — хелпер записи кэша со смещениями относительно now.
func saveEntry(t *testing.T, st *Storage, keyword, scope string, searchedAgo, ttl time.Duration, ids ...string) {
	t.Helper()
	now := time.Now().UTC()
	entry := models.CacheEntry{
		Keyword:      keyword,
		Scope:        scope,
		SearchedAt:   now.Add(-searchedAgo),
		ExpiresAt:    now.Add(-searchedAgo).Add(ttl),
		ItemIDs:      ids,
		ResultCount:  len(ids),
		APICallsUsed: 1,
		SearchParams: map[string]string{"strategy": "deep"},
	}
	require.NoError(t, st.SaveCacheEntry(context.Background(), &entry))
}

func TestIntegration_LatestValidEntry_PicksFreshest(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	ttl := 96 * time.Hour

	// Две валидные записи по одному слову: читается более свежая.
	saveEntry(t, st, "golang", "", 10*time.Hour, ttl, "101", "102")
	saveEntry(t, st, "golang", "", time.Hour, ttl, "103", "104")

	entry, err := st.LatestValidEntry(ctx, "golang", "", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, []string{"103", "104"}, entry.ItemIDs)
	require.Equal(t, 2, entry.ResultCount)
	require.Equal(t, "deep", entry.SearchParams["strategy"])
}

func TestIntegration_LatestValidEntry_SkipsExpired(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	// Свежая по searched_at, но уже просроченная запись не читается,
	// даже если физически присутствует.
	saveEntry(t, st, "golang", "", time.Hour, 30*time.Minute, "201")
	saveEntry(t, st, "golang", "", 10*time.Hour, 96*time.Hour, "101")

	entry, err := st.LatestValidEntry(ctx, "golang", "", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, []string{"101"}, entry.ItemIDs)
}

func TestIntegration_LatestValidEntry_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.LatestValidEntry(context.Background(), "missing", "", time.Now().UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_LatestValidEntry_ScopeIsolation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	ttl := 96 * time.Hour
	saveEntry(t, st, "golang", "campaign-1", time.Hour, ttl, "101")

	_, err := st.LatestValidEntry(ctx, "golang", "", time.Now().UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)

	entry, err := st.LatestValidEntry(ctx, "golang", "campaign-1", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, []string{"101"}, entry.ItemIDs)
}

func TestIntegration_DeleteExpiredEntries(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	saveEntry(t, st, "golang", "", 2*time.Hour, time.Hour, "201")
	saveEntry(t, st, "golang", "", time.Hour, 96*time.Hour, "101")

	deleted, err := st.DeleteExpiredEntries(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	entry, err := st.LatestValidEntry(ctx, "golang", "", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, []string{"101"}, entry.ItemIDs)
}
