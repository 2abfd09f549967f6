// models содержит доменные сущности harvest-сервиса.
// Эти типы используются слоями бизнес-логики и хранилища.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Keyword — ключевое слово поиска с обученным весом релевантности.
//
// Вес задаётся внешним сервисом взвешивания (0.0–1.0, новые слова
// получают завышенный вес для исследования); ядро веса не изменяет.
type Keyword struct {
	// Text - текст поискового запроса.
	Text string
	// Weight - вес релевантности в диапазоне [0.0, 1.0].
	Weight float64
}

// SearchType — тип поискового запроса, вычисляемый по чекпоинту.
type SearchType string

const (
	// SearchInitial — первый поиск по слову (чекпоинта нет или он сброшен).
	SearchInitial SearchType = "initial"
	// SearchNewOnly — только новые посты (since_id = newest_id чекпоинта).
	SearchNewOnly SearchType = "new_only"
	// SearchNewAndOld — новые и старые посты (обе границы).
	SearchNewAndOld SearchType = "new_and_old"
	// SearchOldOnly — только старая часть окна.
	SearchOldOnly SearchType = "old_only"
)

// Checkpoint — границы уже просканированного диапазона результатов
// по одному ключевому слову.
//
// Инварианты:
//   - NewestID двигается только в сторону «свежее»;
//   - OldestID двигается только в сторону «старше»;
//   - при росте запрошенного окна более чем в 1.5 раза чекпоинт
//     сбрасывается, а не расширяется (меняется смысл границ).
type Checkpoint struct {
	// Keyword - ключевое слово, к которому привязан чекпоинт.
	Keyword string
	// NewestID - идентификатор самого свежего известного поста.
	NewestID string
	// OldestID - идентификатор самого старого известного поста.
	OldestID string
	// LastSearchTime - время последнего поиска (UTC).
	LastSearchTime time.Time
	// LastResultCount - размер последней пачки результатов.
	LastResultCount int
	// SearchWindowDays - окно поиска, под которое записаны границы.
	SearchWindowDays int
}

// SearchParams — параметры очередного внешнего запроса по слову.
type SearchParams struct {
	// SinceID - нижняя граница «искать новее» (пустая строка — нет).
	SinceID string
	// UntilID - верхняя граница «искать старее» (пустая строка — нет).
	UntilID string
	// Type - тип поиска, см. SearchType.
	Type SearchType
}

// CacheEntry — запись кэша результатов поиска.
//
// Инвариант: ExpiresAt = SearchedAt + TTL; запись валидна только пока
// now < ExpiresAt. История append-only: записи по одному слову могут
// сосуществовать, читается самая свежая валидная.
type CacheEntry struct {
	// ID - идентификатор записи.
	ID uuid.UUID
	// Keyword - ключевое слово поиска.
	Keyword string
	// Scope - необязательная область поиска (кампания/проект).
	Scope string
	// SearchedAt - время выполнения поиска (UTC).
	SearchedAt time.Time
	// ExpiresAt - момент истечения записи (UTC).
	ExpiresAt time.Time
	// ItemIDs - внешние идентификаторы найденных постов.
	ItemIDs []string
	// ResultCount - количество найденных постов.
	ResultCount int
	// APICallsUsed - сколько вызовов внешнего API потрачено.
	APICallsUsed int
	// SearchParams - параметры поиска на момент записи (для диагностики).
	SearchParams map[string]string
}

// CacheHit — результат проверки кэша по одному слову.
type CacheHit struct {
	// Cached - найдена ли валидная запись.
	Cached bool
	// ItemIDs - идентификаторы постов из записи (если Cached).
	ItemIDs []string
	// SearchedAt - когда был выполнен закэшированный поиск.
	SearchedAt time.Time
	// Age - возраст записи на момент проверки.
	Age time.Duration
}

// CacheSummary — сводка пакетной проверки кэша.
type CacheSummary struct {
	CachedCount   int
	UncachedCount int
	// HitRate - доля слов с валидным кэшем, [0.0, 1.0].
	HitRate float64
}

// QueueStatus — статус элемента очереди задач.
type QueueStatus string

const (
	StatusPending    QueueStatus = "pending"
	StatusProcessing QueueStatus = "processing"
	StatusCompleted  QueueStatus = "completed"
	// StatusFailed — терминальный статус после исчерпания retry-бюджета.
	StatusFailed QueueStatus = "failed"
)

// QueueItem — элемент устойчивой очереди задач.
//
// Инварианты:
//   - RetryCount только растёт;
//   - StatusFailed достижим только при RetryCount >= max_retries;
//   - уникальность по ExternalItemID: один и тот же пост не встаёт
//     в очередь дважды из независимых прогонов.
type QueueItem struct {
	// ID - идентификатор строки очереди.
	ID uuid.UUID
	// ExternalItemID - идентификатор поста во внешнем источнике.
	ExternalItemID string
	// Source - происхождение элемента (harvest, manual и т.п.).
	Source string
	// Priority - приоритет, больше — срочнее.
	Priority int
	// Status - текущий статус, см. QueueStatus.
	Status QueueStatus
	// ScopeID - необязательная привязка к области.
	ScopeID string
	// AddedBy - кто поставил элемент в очередь.
	AddedBy string
	// AddedAt - время постановки (UTC).
	AddedAt time.Time
	// ProcessedAt - время последнего перехода в processing (UTC).
	ProcessedAt time.Time
	// Metadata - непрозрачный структурированный payload.
	Metadata map[string]any
	// RetryCount - количество зафиксированных неудач обработки.
	RetryCount int
}

// Item — нормализованный пост из внешнего источника.
//
// Нормализация выполняется один раз на границе fetcher-а: дальше по
// конвейеру ходит только этот тип.
type Item struct {
	// ExternalID - идентификатор поста у источника.
	ExternalID string
	// Keyword - слово, по которому пост был найден.
	Keyword string
	// Author - автор поста.
	Author string
	// Content - текст поста.
	Content string
	// CreatedAt - время публикации у источника (UTC).
	CreatedAt time.Time
	// FetchedAt - время загрузки в хранилище (UTC).
	FetchedAt time.Time
}

// FetchStats — статистика одного прогона fetcher-а.
//
// Используется для наблюдаемости и бюджетирования вызовов на стороне
// вызывающего; на корректность результата не влияет.
type FetchStats struct {
	// APICalls - сделано вызовов внешнего API.
	APICalls int
	// TotalFetched - всего получено постов (включая дубликаты).
	TotalFetched int
	// DuplicatesFiltered - отфильтровано уже известных постов.
	DuplicatesFiltered int
	// FreshItems - собрано свежих постов (после обрезки до цели).
	FreshItems int
	// CacheHits - слов, закрытых кэшем без внешнего вызова.
	CacheHits int
	// ExhaustedKeywords - слова, исчерпанные в этом прогоне.
	ExhaustedKeywords []string
	// Strategy - выбранная стратегия пагинации (deep/shallow).
	Strategy string
}

// SavingsEstimate — оценка экономии квоты за счёт чекпоинтов.
type SavingsEstimate struct {
	// KeywordsTracked - слов под чекпоинтами.
	KeywordsTracked int
	// EstimatedDuplicatesAvoided - оценка постов, которые не пришлось перекачивать.
	EstimatedDuplicatesAvoided int
	// QuotaSavedFraction - оценка сэкономленной доли квоты, [0.0, 1.0].
	QuotaSavedFraction float64
}

// DedupEstimate — эвристическая проекция экономии шлюза дедупликации.
type DedupEstimate struct {
	// CallsSaved - оценка сэкономленных вызовов API.
	CallsSaved int
	// ItemsReused - постов, уже имеющихся в хранилище.
	ItemsReused int
	// ItemsStillNeeded - постов, которые всё ещё нужно добрать.
	ItemsStillNeeded int
}

// QueueCounts — количество элементов очереди по статусам.
type QueueCounts struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
