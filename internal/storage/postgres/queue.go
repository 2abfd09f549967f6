package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
)

const queueColumns = `id, external_item_id, source, priority, status, scope_id, added_by, added_at, processed_at, metadata, retry_count`

// Enqueue ставит элемент в очередь.
//
// Дубликат по external_item_id — идемпотентный no-op: ON CONFLICT DO
// NOTHING, возвращается inserted=false без ошибки. Тем самым один и тот
// же найденный пост никогда не встаёт в очередь дважды из независимых
// прогонов fetcher-а.
func (s *Storage) Enqueue(ctx context.Context, item *models.QueueItem) (bool, error) {
	const op = "storage.postgres.Enqueue"

	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var scopeID *string
	if item.ScopeID != "" {
		scopeID = &item.ScopeID
	}

	query := `
        INSERT INTO work_queue (id, external_item_id, source, priority, status, scope_id, added_by, added_at, metadata, retry_count)
        VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8, 0)
        ON CONFLICT (external_item_id) DO NOTHING
    `

	cmdTag, err := s.db.Exec(ctx, query,
		id,
		item.ExternalItemID,
		item.Source,
		item.Priority,
		scopeID,
		item.AddedBy,
		item.AddedAt.UTC(),
		metadata,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// ClaimBatch атомарно выбирает до limit элементов pending и переводит их
// в processing.
//
// Порядок выборки детерминирован: priority DESC, added_at ASC. Строки,
// уже заблокированные конкурентным клеймером, пропускаются (SKIP LOCKED),
// а не ожидаются — медленный потребитель не тормозит остальных, и два
// конкурентных вызова никогда не получают пересекающиеся наборы.
// Выборка и перевод статуса выполняются одним SQL-запросом, то есть в
// одной транзакции.
func (s *Storage) ClaimBatch(ctx context.Context, limit int, now time.Time) ([]models.QueueItem, error) {
	const op = "storage.postgres.ClaimBatch"

	if limit <= 0 {
		return nil, nil
	}

	query := `
        WITH picked AS (
            SELECT id
            FROM work_queue
            WHERE status = 'pending'
            ORDER BY priority DESC, added_at ASC
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        UPDATE work_queue q
        SET status = 'processing',
            processed_at = $2
        FROM picked
        WHERE q.id = picked.id
        RETURNING ` + qualifiedQueueColumns("q")

	rows, err := s.db.Query(ctx, query, limit, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items, err := scanQueueItems(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// RETURNING из UPDATE не гарантирует порядок — восстанавливаем
	// детерминированный порядок выборки на стороне клиента.
	sortClaimed(items)

	return items, nil
}

// MarkCompleted переводит элемент processing -> completed.
//
// patch сливается с metadata оператором || (union), существующие ключи
// перезаписываются точечно, остальная metadata сохраняется.
// Если элемента нет или он не в processing — storage.ErrNotFound.
func (s *Storage) MarkCompleted(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	const op = "storage.postgres.MarkCompleted"

	if patch == nil {
		patch = map[string]any{}
	}

	query := `
        UPDATE work_queue
        SET status = 'completed',
            metadata = metadata || $2::jsonb
        WHERE id = $1 AND status = 'processing'
    `

	cmdTag, err := s.db.Exec(ctx, query, id, patch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// MarkFailed фиксирует неудачу обработки элемента.
//
// retry_count увеличивается ровно здесь и больше нигде. Пока новый
// счётчик меньше maxRetries — элемент возвращается в pending и доступен
// повторному клейму; иначе переходит в терминальный failed. Текст ошибки
// пишется в metadata. Вся логика — один UPDATE: инкремент и выбор
// статуса атомарны относительно конкурентных вызовов.
func (s *Storage) MarkFailed(ctx context.Context, id uuid.UUID, procErr string, maxRetries int) (models.QueueStatus, error) {
	const op = "storage.postgres.MarkFailed"

	query := `
        UPDATE work_queue
        SET retry_count = retry_count + 1,
            status = CASE WHEN retry_count + 1 >= $2 THEN 'failed' ELSE 'pending' END,
            metadata = metadata || jsonb_build_object('last_error', $3::text, 'failed_at', $4::text)
        WHERE id = $1 AND status = 'processing'
        RETURNING status
    `

	var status string
	err := s.db.QueryRow(ctx, query, id, maxRetries, procErr, time.Now().UTC().Format(time.RFC3339)).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return models.QueueStatus(status), nil
}

// QueueItemByID возвращает элемент очереди по идентификатору.
func (s *Storage) QueueItemByID(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	const op = "storage.postgres.QueueItemByID"

	rows, err := s.db.Query(ctx, `
        SELECT `+queueColumns+`
        FROM work_queue
        WHERE id = $1
    `, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items, err := scanQueueItems(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &items[0], nil
}

// CountByStatus возвращает количество элементов очереди по статусам.
func (s *Storage) CountByStatus(ctx context.Context) (*models.QueueCounts, error) {
	const op = "storage.postgres.CountByStatus"

	rows, err := s.db.Query(ctx, `
        SELECT status, COUNT(*)
        FROM work_queue
        GROUP BY status
    `)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var counts models.QueueCounts
	for rows.Next() {
		var status string
		var n int
		if scanErr := rows.Scan(&status, &n); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		switch models.QueueStatus(status) {
		case models.StatusPending:
			counts.Pending = n
		case models.StatusProcessing:
			counts.Processing = n
		case models.StatusCompleted:
			counts.Completed = n
		case models.StatusFailed:
			counts.Failed = n
		}
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return &counts, nil
}

// qualifiedQueueColumns возвращает список колонок очереди с префиксом алиаса.
func qualifiedQueueColumns(alias string) string {
	return alias + ".id, " + alias + ".external_item_id, " + alias + ".source, " +
		alias + ".priority, " + alias + ".status, " + alias + ".scope_id, " +
		alias + ".added_by, " + alias + ".added_at, " + alias + ".processed_at, " +
		alias + ".metadata, " + alias + ".retry_count"
}

// scanQueueItems вычитывает строки очереди в доменные объекты.
func scanQueueItems(rows pgx.Rows) ([]models.QueueItem, error) {
	var items []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		var scopeID *string
		var processedAt *time.Time

		if err := rows.Scan(
			&item.ID,
			&item.ExternalItemID,
			&item.Source,
			&item.Priority,
			&item.Status,
			&scopeID,
			&item.AddedBy,
			&item.AddedAt,
			&processedAt,
			&item.Metadata,
			&item.RetryCount,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if scopeID != nil {
			item.ScopeID = *scopeID
		}
		if processedAt != nil {
			item.ProcessedAt = processedAt.UTC()
		}
		item.AddedAt = item.AddedAt.UTC()

		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows: %w", rows.Err())
	}

	return items, nil
}

// sortClaimed сортирует выбранные элементы в порядке priority DESC, added_at ASC.
func sortClaimed(items []models.QueueItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}

		return items[i].AddedAt.Before(items[j].AddedAt)
	})
}
