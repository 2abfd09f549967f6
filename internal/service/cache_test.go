package service

// Тесты кэша результатов поиска (internal/service/cache.go).
//
//  Проверяем:
//  - валидацию входов;
//  - попадание/промах по свежести записи (в т.ч. по границе TTL);
//  - сводку пакетной проверки;
//  - инвариант записи expires_at = searched_at + TTL;
//  - чистку просроченных записей.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestService_CheckCache_InvalidArgument(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.CheckCache(context.Background(), "", "", 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Записи нет — промах без ошибки.
func TestService_CheckCache_Miss_NotFound(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().
		LatestValidEntry(gomock.Any(), "golang", "", gomock.Any()).
		Return(nil, storage.ErrNotFound)

	hit, err := s.CheckCache(context.Background(), "golang", "", 0)
	require.NoError(t, err)
	require.False(t, hit.Cached)
}

// Запись моложе TTL (3.9 суток при TTL 4 суток) — попадание.
func TestService_CheckCache_Hit_WithinTTL(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	age := time.Duration(3.9 * 24 * float64(time.Hour))
	st.EXPECT().
		LatestValidEntry(gomock.Any(), "golang", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, now time.Time) (*models.CacheEntry, error) {
			return &models.CacheEntry{
				Keyword:    "golang",
				SearchedAt: now.Add(-age),
				ExpiresAt:  now.Add(time.Hour),
				ItemIDs:    []string{"101", "102"},
			}, nil
		})

	hit, err := s.CheckCache(context.Background(), "golang", "", 0)
	require.NoError(t, err)
	require.True(t, hit.Cached)
	require.Equal(t, []string{"101", "102"}, hit.ItemIDs)
	require.InDelta(t, age.Seconds(), hit.Age.Seconds(), 5)
}

// Запись старше maxAge — промах, даже если хранилище её вернуло.
func TestService_CheckCache_Miss_TooOld(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	age := time.Duration(4.1 * 24 * float64(time.Hour))
	st.EXPECT().
		LatestValidEntry(gomock.Any(), "golang", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, now time.Time) (*models.CacheEntry, error) {
			return &models.CacheEntry{
				Keyword:    "golang",
				SearchedAt: now.Add(-age),
				ExpiresAt:  now.Add(time.Hour),
			}, nil
		})

	hit, err := s.CheckCache(context.Background(), "golang", "", 0)
	require.NoError(t, err)
	require.False(t, hit.Cached)
}

// Явный maxAge сужает порог свежести относительно TTL.
func TestService_CheckCache_ExplicitMaxAge(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().
		LatestValidEntry(gomock.Any(), "golang", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, now time.Time) (*models.CacheEntry, error) {
			return &models.CacheEntry{
				Keyword:    "golang",
				SearchedAt: now.Add(-2 * time.Hour),
				ExpiresAt:  now.Add(90 * time.Hour),
			}, nil
		})

	hit, err := s.CheckCache(context.Background(), "golang", "", time.Hour)
	require.NoError(t, err)
	require.False(t, hit.Cached)
}

// Пакетная проверка: одно попадание из двух слов -> hit rate 0.5.
func TestService_CheckCacheMany_Summary(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().
		LatestValidEntry(gomock.Any(), "golang", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, now time.Time) (*models.CacheEntry, error) {
			return &models.CacheEntry{Keyword: "golang", SearchedAt: now.Add(-time.Hour)}, nil
		})
	st.EXPECT().
		LatestValidEntry(gomock.Any(), "rustlang", "", gomock.Any()).
		Return(nil, storage.ErrNotFound)

	hits, summary, err := s.CheckCacheMany(context.Background(), []string{"golang", "rustlang"}, "")
	require.NoError(t, err)
	require.True(t, hits["golang"].Cached)
	require.False(t, hits["rustlang"].Cached)
	require.Equal(t, 1, summary.CachedCount)
	require.Equal(t, 1, summary.UncachedCount)
	require.InDelta(t, 0.5, summary.HitRate, 1e-9)
}

func TestService_CheckCacheMany_InvalidArgument(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, _, err := s.CheckCacheMany(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Запись кэша: expires_at = searched_at + TTL, счётчики заполнены.
func TestService_SaveCacheResult_OK(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().
		SaveCacheEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.CacheEntry) error {
			require.Equal(t, "golang", entry.Keyword)
			require.Equal(t, entry.SearchedAt.Add(96*time.Hour), entry.ExpiresAt)
			require.Equal(t, 2, entry.ResultCount)
			require.Equal(t, 1, entry.APICallsUsed)
			require.Equal(t, "deep", entry.SearchParams["strategy"])
			return nil
		})

	err := s.SaveCacheResult(context.Background(), "golang", []string{"101", "102"}, "",
		map[string]string{"strategy": "deep"}, 1)
	require.NoError(t, err)
}

func TestService_SaveCacheResult_InvalidArgument(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	err := s.SaveCacheResult(context.Background(), "", nil, "", nil, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_CleanupCache_OK(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteExpiredEntries(gomock.Any(), gomock.Any()).Return(7, nil)

	deleted, err := s.CleanupCache(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, deleted)
}

func TestService_CleanupCache_StorageError(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	boom := errors.New("pg down")
	st.EXPECT().DeleteExpiredEntries(gomock.Any(), gomock.Any()).Return(0, boom)

	_, err := s.CleanupCache(context.Background())
	require.ErrorIs(t, err, boom)
}
