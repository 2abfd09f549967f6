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

// CheckCache отвечает, можно ли закрыть поиск по слову из кэша.
//
// Читается самая свежая непросроченная запись по (keyword, scope);
// дополнительно запись должна быть не старше maxAge (maxAge <= 0 —
// берётся TTL кэша из конфига). Кэш — только оптимизация: проверка
// никогда не трогает чекпоинты.
func (s *Service) CheckCache(ctx context.Context, keyword, scope string, maxAge time.Duration) (*models.CacheHit, error) {
	const op = "service.cache.CheckCache"

	if keyword == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if maxAge <= 0 {
		maxAge = s.cfg.Cache.TTL
	}

	now := time.Now().UTC()

	entry, err := s.storage.LatestValidEntry(ctx, keyword, scope, now)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metricCacheLookups.WithLabelValues("miss").Inc()
			return &models.CacheHit{Cached: false}, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	age := now.Sub(entry.SearchedAt)
	if age > maxAge {
		metricCacheLookups.WithLabelValues("miss").Inc()
		return &models.CacheHit{Cached: false}, nil
	}

	metricCacheLookups.WithLabelValues("hit").Inc()

	return &models.CacheHit{
		Cached:     true,
		ItemIDs:    entry.ItemIDs,
		SearchedAt: entry.SearchedAt,
		Age:        age,
	}, nil
}

// CheckCacheMany проверяет кэш по набору слов и возвращает сводку.
func (s *Service) CheckCacheMany(ctx context.Context, keywords []string, scope string) (map[string]models.CacheHit, *models.CacheSummary, error) {
	const op = "service.cache.CheckCacheMany"

	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	hits := make(map[string]models.CacheHit, len(keywords))
	summary := &models.CacheSummary{}

	for _, kw := range keywords {
		hit, err := s.CheckCache(ctx, kw, scope, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		hits[kw] = *hit
		if hit.Cached {
			summary.CachedCount++
		} else {
			summary.UncachedCount++
		}
	}

	summary.HitRate = float64(summary.CachedCount) / float64(len(keywords))

	return hits, summary, nil
}

// SaveCacheResult записывает результат внешнего поиска в кэш.
//
// Запись добавляется с expires_at = now + TTL; предыдущие записи по
// слову не удаляются и не сливаются (append-only история, чтение берёт
// самую свежую валидную).
func (s *Service) SaveCacheResult(ctx context.Context, keyword string, itemIDs []string, scope string, params map[string]string, apiCallsUsed int) error {
	const op = "service.cache.SaveCacheResult"

	if keyword == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	now := time.Now().UTC()
	entry := &models.CacheEntry{
		Keyword:      keyword,
		Scope:        scope,
		SearchedAt:   now,
		ExpiresAt:    now.Add(s.cfg.Cache.TTL),
		ItemIDs:      itemIDs,
		ResultCount:  len(itemIDs),
		APICallsUsed: apiCallsUsed,
		SearchParams: params,
	}

	if err := s.storage.SaveCacheEntry(ctx, entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CleanupCache удаляет просроченные записи кэша. Возвращает число
// удалённых. Безопасно выполняется параллельно с чтением/записью:
// чтение в любом случае отфильтровывает просроченные записи.
func (s *Service) CleanupCache(ctx context.Context) (int, error) {
	const op = "service.cache.CleanupCache"

	lg := log.From(ctx)

	deleted, err := s.storage.DeleteExpiredEntries(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if deleted > 0 {
		lg.Info("cache_entries_deleted",
			slog.String("op", op),
			slog.Int("count", deleted),
		)
	}

	return deleted, nil
}
