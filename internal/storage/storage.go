// storage определяет контракты доступа к БД для harvest-сервиса.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/morozovaek/harvest-service/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (например, по external_item_id).
	ErrAlreadyExists = errors.New("already exists")
)

// CheckpointStorage описывает операции над чекпоинтами поиска.
//
// Расширение границ — конкурентная операция: несколько процессов могут
// одновременно обновлять один чекпоинт, поэтому реализация обязана
// выполнять read-then-extend атомарно (транзакция с блокировкой строки).
type CheckpointStorage interface {
	// CheckpointByKeyword возвращает чекпоинт слова или ErrNotFound.
	CheckpointByKeyword(ctx context.Context, keyword string) (*models.Checkpoint, error)
	// SaveCheckpoint создаёт или полностью перезаписывает чекпоинт (upsert).
	SaveCheckpoint(ctx context.Context, cp *models.Checkpoint) error
	// ExtendCheckpoint атомарно расширяет границы существующего чекпоинта:
	// читает строку под блокировкой, применяет компаратор и пишет только
	// те границы, которые действительно расширились. Если чекпоинта нет —
	// создаёт его из переданных значений.
	ExtendCheckpoint(ctx context.Context, cp *models.Checkpoint, cmp models.IDComparator) error
	// DeleteCheckpoint удаляет чекпоинт слова; отсутствие — не ошибка.
	DeleteCheckpoint(ctx context.Context, keyword string) error
	// DeleteStaleCheckpoints удаляет чекпоинты, не обновлявшиеся с момента olderThan.
	// Возвращает количество удалённых.
	DeleteStaleCheckpoints(ctx context.Context, olderThan time.Time) (int, error)
	// Checkpoints возвращает все чекпоинты (для оценки экономии).
	Checkpoints(ctx context.Context) ([]models.Checkpoint, error)
}

// CacheStorage описывает операции над кэшем результатов поиска.
//
// Записи append-only: Save никогда не сливает и не удаляет предыдущие
// записи, приоритет «самой свежей валидной» обеспечивает чтение.
type CacheStorage interface {
	// SaveCacheEntry добавляет новую запись кэша.
	SaveCacheEntry(ctx context.Context, entry *models.CacheEntry) error
	// LatestValidEntry возвращает самую свежую запись по (keyword, scope)
	// с expires_at > now; если такой нет — ErrNotFound.
	LatestValidEntry(ctx context.Context, keyword, scope string, now time.Time) (*models.CacheEntry, error)
	// DeleteExpiredEntries удаляет записи с expires_at < now.
	// Возвращает количество удалённых.
	DeleteExpiredEntries(ctx context.Context, now time.Time) (int, error)
}

// QueueStorage описывает операции над устойчивой очередью задач.
type QueueStorage interface {
	// Enqueue ставит элемент в очередь. Дубликат по external_item_id —
	// идемпотентный no-op: возвращается inserted=false без ошибки.
	Enqueue(ctx context.Context, item *models.QueueItem) (inserted bool, err error)
	// ClaimBatch атомарно выбирает до limit элементов pending в порядке
	// (priority DESC, added_at ASC), пропуская строки, заблокированные
	// конкурентными клеймерами, и переводит их в processing.
	ClaimBatch(ctx context.Context, limit int, now time.Time) ([]models.QueueItem, error)
	// MarkCompleted переводит processing -> completed; patch сливается
	// с metadata (union), не затирая её целиком. Если элемента нет или
	// он не в processing — ErrNotFound.
	MarkCompleted(ctx context.Context, id uuid.UUID, patch map[string]any) error
	// MarkFailed фиксирует неудачу обработки: retry_count+1 и переход в
	// pending (при retry_count < maxRetries) либо в терминальный failed.
	// Возвращает итоговый статус.
	MarkFailed(ctx context.Context, id uuid.UUID, procErr string, maxRetries int) (models.QueueStatus, error)
	// QueueItemByID возвращает элемент очереди или ErrNotFound.
	QueueItemByID(ctx context.Context, id uuid.UUID) (*models.QueueItem, error)
	// CountByStatus возвращает количество элементов по статусам.
	CountByStatus(ctx context.Context) (*models.QueueCounts, error)
}

// ItemStorage описывает операции над хранилищем постов.
type ItemStorage interface {
	// SaveItems сохраняет пачку постов (upsert по external_id).
	SaveItems(ctx context.Context, items []models.Item) error
	// ExistingIDs возвращает внешние идентификаторы уже известных постов,
	// совпадающих с любым из слов и созданных не раньше since.
	ExistingIDs(ctx context.Context, keywords []string, since time.Time) (map[string]struct{}, error)
	// StaleCandidates возвращает из переданных идентификаторов те, что
	// присутствуют в хранилище, но не обновлялись дольше maxAge.
	StaleCandidates(ctx context.Context, ids []string, maxAge time.Duration) ([]string, error)
}

// Storage задаёт контракт доступа к хранилищу для harvest-сервиса.
type Storage interface {
	CheckpointStorage
	CacheStorage
	QueueStorage
	ItemStorage
	Close()
}
