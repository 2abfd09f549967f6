package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/pkg/log"
	"github.com/morozovaek/harvest-service/internal/storage"
)

// windowGrowthLimit — во сколько раз запрошенное окно поиска может
// превышать записанное в чекпоинте, прежде чем чекпоинт сбрасывается:
// при большем росте смысл границ newest/oldest меняется.
const windowGrowthLimit = 1.5

// mirrorTimeout — бюджет асинхронной записи в зеркало чекпоинтов.
const mirrorTimeout = 2 * time.Second

// SearchParamsFor решает, какой срез результатов по слову ещё нужно искать.
//
// Правила:
//   - чекпоинта нет — полный первичный поиск (initial) без границ;
//   - запрошенное окно больше записанного более чем в 1.5 раза —
//     чекпоинт сбрасывается и поиск снова трактуется как initial
//     (инвалидация по смене окна; это внутренний сигнал, не ошибка);
//   - иначе since_id = newest_id (искать новее, new_only); until_id =
//     oldest_id добавляется только если прошлая пачка была полной
//     (last_result_count >= maxResults) — неполная пачка означает, что
//     старая часть окна уже исчерпана.
func (s *Service) SearchParamsFor(ctx context.Context, keyword string, maxResults, windowDays int) (*models.SearchParams, error) {
	const op = "service.boundary.SearchParamsFor"

	if keyword == "" || maxResults <= 0 || windowDays <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)

	cp, err := s.storage.CheckpointByKeyword(ctx, keyword)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.SearchParams{Type: models.SearchInitial}, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if float64(windowDays) > float64(cp.SearchWindowDays)*windowGrowthLimit {
		lg.Info("checkpoint_window_changed",
			slog.String("op", op),
			slog.String("keyword", keyword),
			slog.Int("recorded_days", cp.SearchWindowDays),
			slog.Int("requested_days", windowDays),
		)

		if err := s.storage.DeleteCheckpoint(ctx, keyword); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &models.SearchParams{Type: models.SearchInitial}, nil
	}

	params := &models.SearchParams{
		SinceID: cp.NewestID,
		Type:    models.SearchNewOnly,
	}

	if cp.LastResultCount >= maxResults {
		params.UntilID = cp.OldestID
		params.Type = models.SearchNewAndOld
		if params.SinceID == "" {
			params.Type = models.SearchOldOnly
		}
	}

	return params, nil
}

// UpdateBoundaries фиксирует границы обработанной пачки в чекпоинте слова.
//
// Пачка считается упорядоченной от самых свежих к самым старым (порядок
// источника): первый элемент — newest пачки, последний — oldest. Если
// чекпоинта нет — он создаётся из этих значений напрямую; существующий
// расширяется монотонно через компаратор (newest только «свежее»,
// oldest только «старше»). Пустая пачка — no-op с логом.
//
// Первичная запись синхронна. Если настроено зеркало, копия уходит в
// него асинхронно; ошибки зеркала логируются и никогда не влияют на
// результат вызова.
func (s *Service) UpdateBoundaries(ctx context.Context, keyword string, items []models.Item, windowDays int) error {
	const op = "service.boundary.UpdateBoundaries"

	if keyword == "" || windowDays <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)

	if len(items) == 0 {
		lg.Info("boundary_update_skipped_empty",
			slog.String("op", op),
			slog.String("keyword", keyword),
		)
		return nil
	}

	cp := &models.Checkpoint{
		Keyword:          keyword,
		NewestID:         items[0].ExternalID,
		OldestID:         items[len(items)-1].ExternalID,
		LastSearchTime:   time.Now().UTC(),
		LastResultCount:  len(items),
		SearchWindowDays: windowDays,
	}

	if err := s.storage.ExtendCheckpoint(ctx, cp, s.cmp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.mirror != nil {
		go func(cp models.Checkpoint) {
			mctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()

			if err := s.mirror.Store(mctx, &cp); err != nil {
				lg.Warn("checkpoint_mirror_failed",
					slog.String("op", op),
					slog.String("keyword", cp.Keyword),
					slog.String("err", err.Error()),
				)
			}
		}(*cp)
	}

	lg.Debug("boundary_updated",
		slog.String("op", op),
		slog.String("keyword", keyword),
		slog.Int("batch", len(items)),
	)

	return nil
}

// EstimateSavings возвращает оценку экономии квоты за счёт чекпоинтов.
//
// Эвристика: каждый чекпоинт избавляет от повторной закачки своей
// последней пачки; сэкономленные вызовы считаются по среднему числу
// постов на вызов, а доля квоты — против одного неизбежного вызова на
// отслеживаемое слово за прогон. Оценка не претендует на точность и
// используется только для наблюдаемости.
func (s *Service) EstimateSavings(ctx context.Context) (*models.SavingsEstimate, error) {
	const op = "service.boundary.EstimateSavings"

	cps, err := s.storage.Checkpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	estimate := &models.SavingsEstimate{KeywordsTracked: len(cps)}
	for _, cp := range cps {
		estimate.EstimatedDuplicatesAvoided += cp.LastResultCount
	}

	if len(cps) > 0 {
		avg := s.cfg.Dedup.AvgItemsPerCall
		callsAvoided := (estimate.EstimatedDuplicatesAvoided + avg - 1) / avg
		estimate.QuotaSavedFraction = float64(callsAvoided) / float64(callsAvoided+len(cps))
	}

	return estimate, nil
}

// CleanupStaleCheckpoints удаляет чекпоинты, не обновлявшиеся дольше
// настроенного срока (по умолчанию 30 дней). Возвращает число удалённых.
func (s *Service) CleanupStaleCheckpoints(ctx context.Context) (int, error) {
	const op = "service.boundary.CleanupStaleCheckpoints"

	lg := log.From(ctx)

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.Harvest.CheckpointStaleDays)

	deleted, err := s.storage.DeleteStaleCheckpoints(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if deleted > 0 {
		lg.Info("stale_checkpoints_deleted",
			slog.String("op", op),
			slog.Int("count", deleted),
		)
	}

	return deleted, nil
}
