package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/pkg/log"
	"github.com/morozovaek/harvest-service/internal/storage"
)

// EnqueueInput — параметры постановки элемента в очередь.
type EnqueueInput struct {
	// ExternalItemID - идентификатор поста у внешнего источника.
	ExternalItemID string
	// Source - происхождение элемента (harvest, manual и т.п.).
	Source string
	// Priority - приоритет, больше — срочнее.
	Priority int
	// ScopeID - необязательная привязка к области.
	ScopeID string
	// AddedBy - кто поставил элемент.
	AddedBy string
	// Metadata - непрозрачный payload для downstream-обработчиков.
	Metadata map[string]any
}

// EnqueueItem ставит элемент в очередь задач.
//
// Дубликат по external_item_id — идемпотентный no-op: возвращается
// inserted=false без ошибки, с логом низкой важности. Так один и тот же
// пост, найденный независимыми прогонами, попадает в очередь ровно один
// раз.
func (s *Service) EnqueueItem(ctx context.Context, in EnqueueInput) (bool, error) {
	const op = "service.queue.EnqueueItem"

	if in.ExternalItemID == "" {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)

	item := &models.QueueItem{
		ID:             uuid.New(),
		ExternalItemID: in.ExternalItemID,
		Source:         in.Source,
		Priority:       in.Priority,
		ScopeID:        in.ScopeID,
		AddedBy:        in.AddedBy,
		AddedAt:        time.Now().UTC(),
		Metadata:       in.Metadata,
	}

	inserted, err := s.storage.Enqueue(ctx, item)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if !inserted {
		metricQueueDuplicates.Inc()
		lg.Debug("duplicate_enqueue_skipped",
			slog.String("op", op),
			slog.String("external_item_id", in.ExternalItemID),
		)
		return false, nil
	}

	metricQueueEnqueued.Inc()

	return true, nil
}

// ClaimBatch атомарно забирает до limit элементов pending в обработку.
//
// Порядок детерминирован по текущему содержимому очереди: priority DESC,
// затем added_at ASC. Строки, занятые конкурентным клеймером,
// пропускаются, а не ожидаются — два конкурентных вызова никогда не
// получат пересекающиеся наборы. При limit <= 0 применяется лимит из
// конфига.
func (s *Service) ClaimBatch(ctx context.Context, limit int) ([]models.QueueItem, error) {
	const op = "service.queue.ClaimBatch"

	lg := log.From(ctx)

	if limit <= 0 {
		limit = s.cfg.Queue.ClaimLimit
	}

	items, err := s.storage.ClaimBatch(ctx, limit, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(items) > 0 {
		metricQueueClaimed.Add(float64(len(items)))
		lg.Info("queue_batch_claimed",
			slog.String("op", op),
			slog.Int("count", len(items)),
		)
	}

	return items, nil
}

// MarkCompleted переводит элемент processing -> completed.
// patch сливается с metadata (union), не затирая её целиком.
//
// Ошибки:
// - ErrNotFound — элемента нет или он не в processing.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	const op = "service.queue.MarkCompleted"

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.MarkCompleted(ctx, id, patch); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	metricQueueCompleted.Inc()

	return nil
}

// MarkFailed фиксирует неудачу обработки элемента.
//
// Пока retry-бюджет не исчерпан — элемент возвращается в pending и
// доступен повторному клейму; иначе переходит в терминальный failed и
// больше никогда не выбирается claim_batch. Автоматического dead-letter
// переноса нет: терминальный failed остаётся, пока его не тронет
// оператор.
func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, procErr error) (models.QueueStatus, error) {
	const op = "service.queue.MarkFailed"

	if id == uuid.Nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)

	msg := ""
	if procErr != nil {
		msg = procErr.Error()
	}

	status, err := s.storage.MarkFailed(ctx, id, msg, s.cfg.Queue.MaxRetries)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if status == models.StatusFailed {
		metricQueueFailures.WithLabelValues("terminal").Inc()
		lg.Warn("queue_item_failed_terminal",
			slog.String("op", op),
			slog.String("id", id.String()),
			slog.String("err", msg),
		)
	} else {
		metricQueueFailures.WithLabelValues("retry").Inc()
		lg.Info("queue_item_requeued",
			slog.String("op", op),
			slog.String("id", id.String()),
			slog.String("err", msg),
		)
	}

	return status, nil
}

// QueueItemByID возвращает элемент очереди по идентификатору.
func (s *Service) QueueItemByID(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	const op = "service.queue.QueueItemByID"

	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	item, err := s.storage.QueueItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// QueueCounts возвращает количество элементов очереди по статусам.
func (s *Service) QueueCounts(ctx context.Context) (*models.QueueCounts, error) {
	const op = "service.queue.QueueCounts"

	counts, err := s.storage.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return counts, nil
}
