// source определяет контракт внешнего поискового источника.
//
// Транспорт источника реализуется вне ядра; здесь — только интерфейс,
// таксономия его ошибок и тротлинг-обёртка для защиты жёсткой квоты.
package source

import (
	"context"
	"errors"

	"github.com/morozovaek/harvest-service/internal/models"
)

var (
	// ErrQuotaExceeded — источник отказал в дальнейших вызовах.
	// Прерывает текущий прогон fetcher-а с сохранением частичного результата.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrSourceUnavailable — временный сбой сети/сервиса.
	// Локальная ошибка одного слова: слово помечается исчерпанным на прогон,
	// прогон продолжается.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// SearchRequest — параметры одного вызова поиска.
type SearchRequest struct {
	// Query - текст поискового запроса (ключевое слово).
	Query string
	// SinceID - искать только посты новее этого идентификатора.
	SinceID string
	// UntilID - искать только посты старее этого идентификатора.
	UntilID string
	// ContinuationToken - токен продолжения пагинации предыдущего вызова.
	ContinuationToken string
	// MaxResults - максимум постов в ответе.
	MaxResults int
	// MinEngagement - минимальный порог вовлечённости (0 — без порога).
	MinEngagement int
	// ExcludeReposts - исключать перепосты.
	ExcludeReposts bool
	// ExcludeReplies - исключать ответы.
	ExcludeReplies bool
}

// SearchResult — ответ источника на один вызов.
//
// Items упорядочены от самых свежих к самым старым — на этом порядке
// строится обновление границ чекпоинтов. Пустой ContinuationToken
// означает, что дальнейших страниц нет.
type SearchResult struct {
	Items             []models.Item
	ContinuationToken string
}

// SearchSource описывает абстракцию внешнего поискового API.
//
// Требования к реализации:
//  1. Items в ответе — от самых свежих к самым старым.
//  2. Отказ по квоте/лимитам транслируется в ErrQuotaExceeded,
//     временные сбои — в ErrSourceUnavailable.
//  3. Пустой список Items — значимый сигнал «результатов больше нет»,
//     а не ошибка.
//  4. Реализация обязана уважать ctx (отмена/таймауты).
type SearchSource interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

// limiter — минимальный контракт токен-бакета (совместим с rate.Limiter).
type limiter interface {
	Wait(ctx context.Context) error
}

// ThrottledSource — обёртка над SearchSource с проактивным тротлингом.
//
// Перед каждым вызовом ждёт разрешения токен-бакета: даже при большом
// max_api_calls прогон не выжигает жёсткую квоту источника залпом.
type ThrottledSource struct {
	src SearchSource
	lim limiter
}

// NewThrottled оборачивает источник тротлингом lim.
func NewThrottled(src SearchSource, lim limiter) *ThrottledSource {
	return &ThrottledSource{src: src, lim: lim}
}

// Search ждёт токен и делегирует вызов обёрнутому источнику.
func (t *ThrottledSource) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := t.lim.Wait(ctx); err != nil {
		return nil, err
	}

	return t.src.Search(ctx, req)
}

var _ SearchSource = (*ThrottledSource)(nil)
