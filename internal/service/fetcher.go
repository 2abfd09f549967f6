package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/pkg/log"
	"github.com/morozovaek/harvest-service/internal/source"
)

const (
	// maxFetchSize — жёсткий потолок размера одного вызова источника.
	maxFetchSize = 100

	// deepKeywordLimit — при таком количестве слов и меньше выбирается
	// глубокая стратегия (исчерпывающая пагинация слова за словом);
	// при большем — широкая, по одному ограниченному проходу на слово,
	// чтобы доминирующее слово не душило покрытие остальных.
	deepKeywordLimit = 2

	// deepBuffer — запас глубокой стратегии на дубликаты.
	deepBuffer = 1.5
	// shallowBuffer — запас широкой стратегии на дубликаты.
	shallowBuffer = 1.2

	strategyDeep    = "deep"
	strategyShallow = "shallow"
)

// fetchRunState — переходное состояние одного прогона fetcher-а.
//
// Принадлежит ровно одному вызову FetchFresh и никогда не разделяется
// между конкурентными прогонами, поэтому блокировки внутри fetcher-а не
// нужны. Кросс-прогонных инвариантов не несёт.
type fetchRunState struct {
	// tokens - токены продолжения пагинации по словам.
	tokens map[string]string
	// exhausted - слова, исчерпанные до конца прогона.
	exhausted map[string]struct{}
	// passed - слова, уже получившие свой единственный проход (shallow).
	passed map[string]struct{}
	// known - уже известные идентификаторы: из шлюза дедупликации плюс
	// собранные в этом прогоне.
	known map[string]struct{}
	// perKeyword - найденные идентификаторы и число вызовов по словам
	// (для записи в кэш результатов).
	perKeyword map[string]*keywordRun

	apiCalls     int
	okCalls      int
	totalFetched int
	duplicates   int
	cacheHits    int
}

type keywordRun struct {
	itemIDs []string
	calls   int
}

func newFetchRunState() *fetchRunState {
	return &fetchRunState{
		tokens:     make(map[string]string),
		exhausted:  make(map[string]struct{}),
		passed:     make(map[string]struct{}),
		known:      make(map[string]struct{}),
		perKeyword: make(map[string]*keywordRun),
	}
}

func (r *fetchRunState) skip(keyword string) bool {
	if _, ok := r.exhausted[keyword]; ok {
		return true
	}
	_, ok := r.passed[keyword]
	return ok
}

func (r *fetchRunState) forKeyword(keyword string) *keywordRun {
	kr, ok := r.perKeyword[keyword]
	if !ok {
		kr = &keywordRun{}
		r.perKeyword[keyword] = kr
	}
	return kr
}

// FetchFresh добирает targetCount свежих постов по взвешенному набору
// слов, оставаясь в бюджете вызовов внешнего API.
//
// Порядок действий: слова сортируются по весу; шлюз дедупликации и кэш
// результатов закрывают всё, что можно, без внешних вызовов; остаток
// добирается внешними вызовами по параметрам менеджера границ. Свежие
// посты пишутся в хранилище постов и встают в очередь задач, результат
// обрезается ровно до targetCount.
//
// Ошибки источника по одному слову восстанавливаются локально (слово
// исчерпано на прогон), отказ по квоте прерывает прогон с сохранением
// частичного результата; и то и другое видно в статистике, а не в
// ошибке. Ошибкой вызов заканчивается только при недоступности
// хранилища или полной недоступности источника.
func (s *Service) FetchFresh(ctx context.Context, keywords []models.Keyword, targetCount int) ([]models.Item, *models.FetchStats, error) {
	const op = "service.fetcher.FetchFresh"

	if len(keywords) == 0 || targetCount <= 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx)

	sorted := make([]models.Keyword, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	strategy := strategyShallow
	if len(sorted) <= deepKeywordLimit {
		strategy = strategyDeep
	}

	run := newFetchRunState()

	// Шлюз дедупликации: один запрос к хранилищу до любых внешних вызовов.
	if s.cfg.Dedup.Enabled {
		texts := make([]string, 0, len(sorted))
		for _, kw := range sorted {
			texts = append(texts, kw.Text)
		}

		window := time.Duration(s.cfg.Harvest.SearchWindowDays) * 24 * time.Hour
		existing, err := s.ExistingIDs(ctx, texts, window)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		run.known = existing
	}

	// Кэш результатов: слово с валидной записью уже искали недавно, его
	// посты давно в хранилище и в очереди — внешний вызов не нужен.
	for _, kw := range sorted {
		hit, err := s.CheckCache(ctx, kw.Text, "", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		if hit.Cached {
			run.cacheHits++
			run.passed[kw.Text] = struct{}{}
			lg.Debug("fetch_keyword_cached",
				slog.String("op", op),
				slog.String("keyword", kw.Text),
				slog.Duration("age", hit.Age),
			)
		}
	}

	lg.Info("fetch_run_start",
		slog.String("op", op),
		slog.Int("keywords", len(sorted)),
		slog.Int("target", targetCount),
		slog.String("strategy", strategy),
		slog.Int("known_ids", len(run.known)),
	)

	fresh, sourceDown, err := s.fetchLoop(ctx, run, sorted, targetCount, strategy)
	if err != nil {
		// Недоступность хранилища фатальна для операции: частично
		// закоммиченное состояние не предполагается, вызывающий решает,
		// повторять ли прогон целиком.
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	// Обрезка ровно до цели: лишнее, набранное с запасом на дубликаты,
	// не отдаётся.
	if len(fresh) > targetCount {
		fresh = fresh[:targetCount]
	}

	if len(fresh) > 0 {
		now := time.Now().UTC()
		for i := range fresh {
			fresh[i].FetchedAt = now
		}

		if err := s.storage.SaveItems(ctx, fresh); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := s.enqueueFetched(ctx, fresh, sorted); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Результаты прогона — в кэш: повторный поиск этих слов в пределах
	// TTL обойдётся без внешних вызовов.
	for kw, kr := range run.perKeyword {
		if kr.calls == 0 {
			continue
		}
		params := map[string]string{"strategy": strategy}
		if err := s.SaveCacheResult(ctx, kw, kr.itemIDs, "", params, kr.calls); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	stats := run.stats(strategy, len(fresh))

	metricAPICalls.Add(float64(stats.APICalls))
	metricItemsFetched.Add(float64(stats.TotalFetched))
	metricItemsFresh.Add(float64(stats.FreshItems))
	metricDuplicatesFiltered.Add(float64(stats.DuplicatesFiltered))

	lg.Info("fetch_run_done",
		slog.String("op", op),
		slog.Int("fresh", stats.FreshItems),
		slog.Int("api_calls", stats.APICalls),
		slog.Int("total_fetched", stats.TotalFetched),
		slog.Int("duplicates", stats.DuplicatesFiltered),
		slog.Int("cache_hits", stats.CacheHits),
	)

	// Полная недоступность источника: ни одного удачного вызова за весь
	// прогон — жёсткая ошибка операции, частичных результатов нет.
	if sourceDown && run.okCalls == 0 && len(fresh) == 0 {
		return nil, stats, fmt.Errorf("%s: %w", op, ErrSourceUnavailable)
	}

	return fresh, stats, nil
}

// fetchLoop — основной цикл добора: проходит слова в порядке приоритета,
// пока не набрана цель, не исчерпан бюджет вызовов или очередной полный
// проход не дал прогресса. Возвращает собранные свежие посты и признак
// «источник не ответил ни разу»; ошибка — только при недоступности
// хранилища.
func (s *Service) fetchLoop(ctx context.Context, run *fetchRunState, sorted []models.Keyword, targetCount int, strategy string) ([]models.Item, bool, error) {
	const op = "service.fetcher.fetchLoop"

	lg := log.From(ctx)

	var fresh []models.Item
	sourceDown := false

	for len(fresh) < targetCount && run.apiCalls < s.cfg.Harvest.MaxAPICalls {
		progress := false

		for _, kw := range sorted {
			// Кооперативная остановка: начатый вызов не прерывается,
			// следующий не начинается.
			if ctx.Err() != nil {
				return fresh, sourceDown, nil
			}

			if len(fresh) >= targetCount || run.apiCalls >= s.cfg.Harvest.MaxAPICalls {
				break
			}

			if run.skip(kw.Text) {
				continue
			}

			needed := targetCount - len(fresh)
			fetchSize := s.fetchSize(strategy, needed, targetCount, len(sorted))

			params, err := s.SearchParamsFor(ctx, kw.Text, fetchSize, s.cfg.Harvest.SearchWindowDays)
			if err != nil {
				return nil, sourceDown, fmt.Errorf("%s: %w", op, err)
			}

			req := source.SearchRequest{
				Query:             kw.Text,
				SinceID:           params.SinceID,
				UntilID:           params.UntilID,
				ContinuationToken: run.tokens[kw.Text],
				MaxResults:        fetchSize,
				ExcludeReposts:    true,
			}

			run.apiCalls++

			res, err := s.source.Search(ctx, req)
			if err != nil {
				if errors.Is(err, source.ErrQuotaExceeded) {
					lg.Warn("fetch_quota_exceeded",
						slog.String("op", op),
						slog.Int("api_calls", run.apiCalls),
					)
					return fresh, sourceDown, nil
				}

				sourceDown = true
				run.exhausted[kw.Text] = struct{}{}
				lg.Warn("fetch_keyword_failed",
					slog.String("op", op),
					slog.String("keyword", kw.Text),
					slog.String("err", err.Error()),
				)
				continue
			}

			// Учёт для кэша идёт только по удачным вызовам: неудачный
			// поиск не должен закэшировать слову пустой результат.
			run.okCalls++
			run.forKeyword(kw.Text).calls++
			run.totalFetched += len(res.Items)

			if len(res.Items) == 0 {
				run.exhausted[kw.Text] = struct{}{}
				continue
			}

			progress = true

			// Чекпоинт фиксирует, что искали, а не что пригодилось:
			// обновляется и тогда, когда вся пачка — дубликаты.
			if err := s.UpdateBoundaries(ctx, kw.Text, res.Items, s.cfg.Harvest.SearchWindowDays); err != nil {
				return nil, sourceDown, fmt.Errorf("%s: %w", op, err)
			}

			kr := run.forKeyword(kw.Text)
			for _, item := range res.Items {
				kr.itemIDs = append(kr.itemIDs, item.ExternalID)

				if _, dup := run.known[item.ExternalID]; dup {
					run.duplicates++
					continue
				}

				run.known[item.ExternalID] = struct{}{}
				item.Keyword = kw.Text
				fresh = append(fresh, item)
			}

			if res.ContinuationToken == "" {
				run.exhausted[kw.Text] = struct{}{}
			} else {
				run.tokens[kw.Text] = res.ContinuationToken
			}

			if strategy == strategyShallow {
				run.passed[kw.Text] = struct{}{}
			}
		}

		// Полный проход без прогресса: квота, кэш или данные исчерпаны.
		if !progress {
			break
		}
	}

	return fresh, sourceDown, nil
}

// fetchSize вычисляет размер очередного вызова по слову.
//
// Глубокая стратегия берёт сразу с запасом на дубликаты; широкая делит
// цель между всеми словами, чтобы один проход покрыл весь набор.
func (s *Service) fetchSize(strategy string, needed, targetCount, keywordCount int) int {
	var size int

	switch strategy {
	case strategyDeep:
		size = int(math.Ceil(float64(needed) * deepBuffer))
	default:
		share := int(math.Ceil(float64(targetCount) / float64(keywordCount) * shallowBuffer))
		size = share
		if needed < size {
			size = needed
		}
	}

	if size > maxFetchSize {
		size = maxFetchSize
	}
	if size < 1 {
		size = 1
	}

	return size
}

// enqueueFetched ставит свежие посты в очередь задач. Приоритет
// выводится из веса слова, по которому пост найден: более релевантные
// слова обрабатываются раньше.
func (s *Service) enqueueFetched(ctx context.Context, items []models.Item, keywords []models.Keyword) error {
	const op = "service.fetcher.enqueueFetched"

	weights := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		weights[kw.Text] = kw.Weight
	}

	for _, item := range items {
		in := EnqueueInput{
			ExternalItemID: item.ExternalID,
			Source:         "harvest",
			Priority:       int(math.Round(weights[item.Keyword] * 10)),
			AddedBy:        "smart_fetcher",
			Metadata: map[string]any{
				"keyword": item.Keyword,
			},
		}

		if _, err := s.EnqueueItem(ctx, in); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// stats собирает статистику прогона.
func (r *fetchRunState) stats(strategy string, freshCount int) *models.FetchStats {
	exhausted := make([]string, 0, len(r.exhausted))
	for kw := range r.exhausted {
		exhausted = append(exhausted, kw)
	}
	sort.Strings(exhausted)

	return &models.FetchStats{
		APICalls:           r.apiCalls,
		TotalFetched:       r.totalFetched,
		DuplicatesFiltered: r.duplicates,
		FreshItems:         freshCount,
		CacheHits:          r.cacheHits,
		ExhaustedKeywords:  exhausted,
		Strategy:           strategy,
	}
}
