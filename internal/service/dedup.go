package service

import (
	"context"
	"fmt"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
)

// ExistingIDs возвращает идентификаторы уже известных постов по набору
// слов в пределах окна времени. Шлюз дедупликации отвечает на вопрос
// «сколько из того, что вернул бы поиск, у нас уже есть» до того, как
// потрачен хоть один внешний вызов.
func (s *Service) ExistingIDs(ctx context.Context, keywords []string, window time.Duration) (map[string]struct{}, error) {
	const op = "service.dedup.ExistingIDs"

	if len(keywords) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	since := time.Now().UTC().Add(-window)

	existing, err := s.storage.ExistingIDs(ctx, keywords, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return existing, nil
}

// EstimateDedupSavings — эвристическая проекция экономии от дедупликации.
//
// Не авторитетна: считает по фиксированному среднему числу постов на
// вызов из конфига. Используется для наблюдаемости и планирования, а не
// для корректности.
func (s *Service) EstimateDedupSavings(maxItems, existingCount int) *models.DedupEstimate {
	if maxItems < 0 {
		maxItems = 0
	}
	if existingCount < 0 {
		existingCount = 0
	}

	reused := existingCount
	if reused > maxItems {
		reused = maxItems
	}

	avg := s.cfg.Dedup.AvgItemsPerCall

	return &models.DedupEstimate{
		CallsSaved:       (reused + avg - 1) / avg,
		ItemsReused:      reused,
		ItemsStillNeeded: maxItems - reused,
	}
}

// ShouldSkipFetch советует пропустить внешний вызов, когда уже имеющееся
// покрытие достигает threshold × maxItems (порог — из конфига, по
// умолчанию 0.8). Решение совещательное: вызывающий волен его не
// учитывать.
func (s *Service) ShouldSkipFetch(existingCount, maxItems int) bool {
	if maxItems <= 0 {
		return false
	}

	return float64(existingCount) >= s.cfg.Dedup.SkipThreshold*float64(maxItems)
}

// StaleCandidates возвращает из переданных идентификаторов те, что есть
// в хранилище, но не обновлялись дольше maxAge — кандидаты на
// необязательную повторную загрузку.
func (s *Service) StaleCandidates(ctx context.Context, ids []string, maxAge time.Duration) ([]string, error) {
	const op = "service.dedup.StaleCandidates"

	if maxAge <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	stale, err := s.storage.StaleCandidates(ctx, ids, maxAge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stale, nil
}
