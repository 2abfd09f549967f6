package postgres

// Интеграционные тесты чекпоинтов (checkpoints.go):
//  - SaveCheckpoint/CheckpointByKeyword: upsert и ErrNotFound;
//  - ExtendCheckpoint: создание из первой пачки, монотонное расширение
//    границ числовым компаратором, игнор «сужающих» значений;
//  - DeleteCheckpoint: идемпотентность;
//  - DeleteStaleCheckpoints: cutoff по last_search_time;
//  - Checkpoints: сортировка по слову.

import (
	"context"
	"testing"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestIntegration_SaveCheckpoint_And_CheckpointByKeyword_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	want := models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastSearchTime:   time.Now().UTC().Truncate(time.Microsecond),
		LastResultCount:  50,
		SearchWindowDays: 7,
	}
	require.NoError(t, st.SaveCheckpoint(context.Background(), &want))

	got, err := st.CheckpointByKeyword(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, want, *got)

	// Upsert: повторная запись полностью перезаписывает строку.
	want.NewestID = "300"
	want.LastResultCount = 10
	require.NoError(t, st.SaveCheckpoint(context.Background(), &want))

	got, err = st.CheckpointByKeyword(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, "300", got.NewestID)
	require.Equal(t, 10, got.LastResultCount)
}

func TestIntegration_CheckpointByKeyword_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.CheckpointByKeyword(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Первая пачка создаёт чекпоинт напрямую.
func TestIntegration_ExtendCheckpoint_CreatesWhenMissing(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	cp := models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastSearchTime:   time.Now().UTC(),
		LastResultCount:  5,
		SearchWindowDays: 7,
	}
	require.NoError(t, st.ExtendCheckpoint(context.Background(), &cp, models.CompareNumericIDs))

	got, err := st.CheckpointByKeyword(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, "200", got.NewestID)
	require.Equal(t, "100", got.OldestID)
}

// Монотонность: newest_id двигается только «свежее», oldest_id — только
// «старше». Пачка внутри уже известного диапазона границы не меняет.
func TestIntegration_ExtendCheckpoint_Monotonic(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	base := models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastSearchTime:   time.Now().UTC(),
		LastResultCount:  5,
		SearchWindowDays: 7,
	}
	require.NoError(t, st.ExtendCheckpoint(ctx, &base, models.CompareNumericIDs))

	// Пачка внутри диапазона: границы не трогаются.
	inner := base
	inner.NewestID = "180"
	inner.OldestID = "120"
	require.NoError(t, st.ExtendCheckpoint(ctx, &inner, models.CompareNumericIDs))

	got, err := st.CheckpointByKeyword(ctx, "golang")
	require.NoError(t, err)
	require.Equal(t, "200", got.NewestID)
	require.Equal(t, "100", got.OldestID)

	// Пачка шире с обеих сторон: обе границы расширяются. Числовой
	// компаратор: "1000" свежее "200", "99" старше "100".
	wider := base
	wider.NewestID = "1000"
	wider.OldestID = "99"
	require.NoError(t, st.ExtendCheckpoint(ctx, &wider, models.CompareNumericIDs))

	got, err = st.CheckpointByKeyword(ctx, "golang")
	require.NoError(t, err)
	require.Equal(t, "1000", got.NewestID)
	require.Equal(t, "99", got.OldestID)
}

func TestIntegration_DeleteCheckpoint_Idempotent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	cp := models.Checkpoint{
		Keyword:        "golang",
		NewestID:       "2",
		OldestID:       "1",
		LastSearchTime: time.Now().UTC(),
	}
	require.NoError(t, st.SaveCheckpoint(ctx, &cp))

	require.NoError(t, st.DeleteCheckpoint(ctx, "golang"))
	_, err := st.CheckpointByKeyword(ctx, "golang")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Повторное удаление — не ошибка.
	require.NoError(t, st.DeleteCheckpoint(ctx, "golang"))
}

func TestIntegration_DeleteStaleCheckpoints(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	stale := models.Checkpoint{Keyword: "old", NewestID: "2", OldestID: "1", LastSearchTime: now.AddDate(0, 0, -40)}
	live := models.Checkpoint{Keyword: "live", NewestID: "2", OldestID: "1", LastSearchTime: now}
	require.NoError(t, st.SaveCheckpoint(ctx, &stale))
	require.NoError(t, st.SaveCheckpoint(ctx, &live))

	deleted, err := st.DeleteStaleCheckpoints(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = st.CheckpointByKeyword(ctx, "old")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.CheckpointByKeyword(ctx, "live")
	require.NoError(t, err)
}

func TestIntegration_Checkpoints_SortedByKeyword(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	for _, kw := range []string{"zig", "golang", "rustlang"} {
		cp := models.Checkpoint{Keyword: kw, NewestID: "2", OldestID: "1", LastSearchTime: now}
		require.NoError(t, st.SaveCheckpoint(ctx, &cp))
	}

	cps, err := st.Checkpoints(ctx)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	require.Equal(t, "golang", cps[0].Keyword)
	require.Equal(t, "rustlang", cps[1].Keyword)
	require.Equal(t, "zig", cps[2].Keyword)
}
