package service

// Тесты сервисного слоя менеджера границ (internal/service/boundary.go).
//
//  Проверяем:
//  - валидацию входов;
//  - выбор типа поиска по чекпоинту (initial / new_only / new_and_old / old_only);
//  - инвалидацию чекпоинта при росте окна поиска более чем в 1.5 раза;
//  - правило неполной пачки (until_id не выставляется);
//  - фиксацию границ пачки и монотонность компаратора по умолчанию;
//  - best-effort семантику зеркала (ошибка зеркала не ломает операцию);
//  - оценку экономии и чистку устаревших чекпоинтов.
//
// Запуск:
//   go test ./internal/service -v -race -count=1
//
// Примечание: моки сгенерированы в пакете /mocks (MockStorage, MockSearchSource).

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/morozovaek/harvest-service/internal/config"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
	"github.com/morozovaek/harvest-service/mocks"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Harvest: config.HarvestConfig{
			TargetCount:         50,
			MaxAPICalls:         10,
			SearchWindowDays:    7,
			CheckpointStaleDays: 30,
		},
		Cache: config.CacheConfig{TTL: 96 * time.Hour},
		Dedup: config.DedupConfig{Enabled: true, SkipThreshold: 0.8, AvgItemsPerCall: 80},
		Queue: config.QueueConfig{MaxRetries: 3, ClaimLimit: 10},
	}
}

func newServiceWithMocks(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockSearchSource, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	src := mocks.NewMockSearchSource(ctrl)
	s := New(st, src, testConfig())
	return s, st, src, ctrl
}

// mirrorStub — управляемая заглушка зеркала чекпоинтов.
type mirrorStub struct {
	stored chan models.Checkpoint
	err    error
}

func (m *mirrorStub) Store(_ context.Context, cp *models.Checkpoint) error {
	if m.stored != nil {
		m.stored <- *cp
	}
	return m.err
}

func (m *mirrorStub) Load(_ context.Context, _ string) (*models.Checkpoint, bool, error) {
	return nil, false, nil
}

func (m *mirrorStub) Close() error { return nil }

// Валидация: пустое слово, нулевая цель, нулевое окно.
func TestService_SearchParamsFor_InvalidArgument(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.SearchParamsFor(context.Background(), "", 50, 7)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.SearchParamsFor(context.Background(), "golang", 0, 7)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.SearchParamsFor(context.Background(), "golang", 50, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Чекпоинта нет -> полный первичный поиск без границ.
func TestService_SearchParamsFor_Initial_NoCheckpoint(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(nil, storage.ErrNotFound)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 7)
	require.NoError(t, err)
	require.Equal(t, models.SearchInitial, params.Type)
	require.Empty(t, params.SinceID)
	require.Empty(t, params.UntilID)
}

// Рост окна 7 -> 11 дней (> 1.5x): чекпоинт сбрасывается, поиск снова initial.
func TestService_SearchParamsFor_WindowGrowth_Invalidates(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cp := &models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastResultCount:  50,
		SearchWindowDays: 7,
	}
	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(cp, nil)
	st.EXPECT().DeleteCheckpoint(gomock.Any(), "golang").Return(nil)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 11)
	require.NoError(t, err)
	require.Equal(t, models.SearchInitial, params.Type)
	require.Empty(t, params.SinceID)
	require.Empty(t, params.UntilID)
}

// Рост окна 7 -> 10 дней (ровно в пределах 1.5x): границы остаются в силе.
func TestService_SearchParamsFor_WindowWithinLimit(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cp := &models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastResultCount:  10,
		SearchWindowDays: 7,
	}
	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(cp, nil)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 10)
	require.NoError(t, err)
	require.Equal(t, models.SearchNewOnly, params.Type)
	require.Equal(t, "200", params.SinceID)
}

// Неполная прошлая пачка: старая часть окна исчерпана, until_id не выставляется.
func TestService_SearchParamsFor_PartialBatch_NewOnly(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cp := &models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastResultCount:  30,
		SearchWindowDays: 7,
	}
	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(cp, nil)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 7)
	require.NoError(t, err)
	require.Equal(t, models.SearchNewOnly, params.Type)
	require.Equal(t, "200", params.SinceID)
	require.Empty(t, params.UntilID)
}

// Полная прошлая пачка: искать и новее newest_id, и старее oldest_id.
func TestService_SearchParamsFor_FullBatch_NewAndOld(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cp := &models.Checkpoint{
		Keyword:          "golang",
		NewestID:         "200",
		OldestID:         "100",
		LastResultCount:  50,
		SearchWindowDays: 7,
	}
	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(cp, nil)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 7)
	require.NoError(t, err)
	require.Equal(t, models.SearchNewAndOld, params.Type)
	require.Equal(t, "200", params.SinceID)
	require.Equal(t, "100", params.UntilID)
}

// Вырожденный чекпоинт без newest_id при полной пачке -> только старая часть окна.
func TestService_SearchParamsFor_FullBatch_OldOnly(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cp := &models.Checkpoint{
		Keyword:          "golang",
		OldestID:         "100",
		LastResultCount:  50,
		SearchWindowDays: 7,
	}
	st.EXPECT().CheckpointByKeyword(gomock.Any(), "golang").Return(cp, nil)

	params, err := s.SearchParamsFor(context.Background(), "golang", 50, 7)
	require.NoError(t, err)
	require.Equal(t, models.SearchOldOnly, params.Type)
	require.Empty(t, params.SinceID)
	require.Equal(t, "100", params.UntilID)
}

// Валидация UpdateBoundaries.
func TestService_UpdateBoundaries_InvalidArgument(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	err := s.UpdateBoundaries(context.Background(), "", []models.Item{{ExternalID: "1"}}, 7)
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = s.UpdateBoundaries(context.Background(), "golang", []models.Item{{ExternalID: "1"}}, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Пустая пачка — no-op: хранилище не трогается.
func TestService_UpdateBoundaries_EmptyBatch_NoOp(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	require.NoError(t, s.UpdateBoundaries(context.Background(), "golang", nil, 7))
}

// Границы пачки: первый элемент — newest, последний — oldest; компаратор
// по умолчанию числовой (200 свежее 99 несмотря на лексикографию).
func TestService_UpdateBoundaries_OK(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	items := []models.Item{
		{ExternalID: "200"},
		{ExternalID: "150"},
		{ExternalID: "99"},
	}

	st.EXPECT().
		ExtendCheckpoint(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cp *models.Checkpoint, cmp models.IDComparator) error {
			require.Equal(t, "golang", cp.Keyword)
			require.Equal(t, "200", cp.NewestID)
			require.Equal(t, "99", cp.OldestID)
			require.Equal(t, 3, cp.LastResultCount)
			require.Equal(t, 7, cp.SearchWindowDays)
			require.WithinDuration(t, time.Now().UTC(), cp.LastSearchTime, 5*time.Second)
			require.NotNil(t, cmp)
			require.Positive(t, cmp("200", "99"))
			return nil
		})

	require.NoError(t, s.UpdateBoundaries(context.Background(), "golang", items, 7))
}

// Ошибка зеркала логируется и не влияет на результат операции.
func TestService_UpdateBoundaries_MirrorErrorIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	src := mocks.NewMockSearchSource(ctrl)
	mirror := &mirrorStub{stored: make(chan models.Checkpoint, 1), err: errors.New("redis down")}

	s := New(st, src, testConfig(), WithMirror(mirror))

	st.EXPECT().ExtendCheckpoint(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	items := []models.Item{{ExternalID: "200"}, {ExternalID: "100"}}
	require.NoError(t, s.UpdateBoundaries(context.Background(), "golang", items, 7))

	select {
	case cp := <-mirror.stored:
		require.Equal(t, "golang", cp.Keyword)
		require.Equal(t, "200", cp.NewestID)
	case <-time.After(3 * time.Second):
		t.Fatal("mirror.Store was not called")
	}
}

// Ошибка хранилища пробрасывается.
func TestService_UpdateBoundaries_StorageError(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	boom := errors.New("pg down")
	st.EXPECT().ExtendCheckpoint(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	err := s.UpdateBoundaries(context.Background(), "golang", []models.Item{{ExternalID: "1"}}, 7)
	require.ErrorIs(t, err, boom)
}

// Оценка экономии: 2 чекпоинта по 80 постов при avg=80 -> 2 сэкономленных
// вызова против 2 неизбежных, доля 0.5.
func TestService_EstimateSavings_OK(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	cps := []models.Checkpoint{
		{Keyword: "golang", LastResultCount: 80},
		{Keyword: "rustlang", LastResultCount: 80},
	}
	st.EXPECT().Checkpoints(gomock.Any()).Return(cps, nil)

	est, err := s.EstimateSavings(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, est.KeywordsTracked)
	require.Equal(t, 160, est.EstimatedDuplicatesAvoided)
	require.InDelta(t, 0.5, est.QuotaSavedFraction, 1e-9)
}

// Без чекпоинтов экономии нет.
func TestService_EstimateSavings_Empty(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().Checkpoints(gomock.Any()).Return(nil, nil)

	est, err := s.EstimateSavings(context.Background())
	require.NoError(t, err)
	require.Zero(t, est.KeywordsTracked)
	require.Zero(t, est.QuotaSavedFraction)
}

// Чистка устаревших чекпоинтов: cutoff = now - 30 дней из конфига.
func TestService_CleanupStaleCheckpoints_OK(t *testing.T) {
	s, st, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	st.EXPECT().
		DeleteStaleCheckpoints(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, olderThan time.Time) (int, error) {
			require.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), olderThan, 5*time.Second)
			return 3, nil
		})

	deleted, err := s.CleanupStaleCheckpoints(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, deleted)
}
