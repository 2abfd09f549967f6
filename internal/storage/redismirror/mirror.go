// redismirror — необязательное быстрое зеркало чекпоинтов в Redis.
//
// Зеркало строго best-effort: первичная запись в PostgreSQL всегда
// синхронна и является источником истины, запись сюда выполняется
// асинхронно, а её ошибки только логируются и никогда не доходят до
// вызывающего.
package redismirror

import (
	"context"
	"strconv"
	"time"

	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// Mirror — минимальный контракт зеркала чекпоинтов.
type Mirror interface {
	// Store записывает чекпоинт в зеркало.
	Store(ctx context.Context, cp *models.Checkpoint) error
	// Load возвращает чекпоинт из зеркала и признак его наличия.
	Load(ctx context.Context, keyword string) (*models.Checkpoint, bool, error)
	// Close закрывает клиент Redis.
	Close() error
}

type redisMirror struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "harvest:cp:".
func New(redisURL, prefix string, ttl time.Duration) (Mirror, error) {
	if prefix == "" {
		prefix = "harvest:cp:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisMirror{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (m *redisMirror) key(keyword string) string { return m.prefix + keyword }

// Храним как Redis Hash с полями: newest, oldest, ts (unix), cnt, win.
func (m *redisMirror) Store(ctx context.Context, cp *models.Checkpoint) error {
	kv := map[string]string{
		"newest": cp.NewestID,
		"oldest": cp.OldestID,
		"ts":     strconv.FormatInt(cp.LastSearchTime.Unix(), 10),
		"cnt":    strconv.Itoa(cp.LastResultCount),
		"win":    strconv.Itoa(cp.SearchWindowDays),
	}

	pipe := m.rdb.TxPipeline()
	pipe.HSet(ctx, m.key(cp.Keyword), kv)
	if m.ttl > 0 {
		pipe.Expire(ctx, m.key(cp.Keyword), m.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (m *redisMirror) Load(ctx context.Context, keyword string) (*models.Checkpoint, bool, error) {
	kv, err := m.rdb.HGetAll(ctx, m.key(keyword)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(kv) == 0 {
		return nil, false, nil
	}

	ts, err := strconv.ParseInt(kv["ts"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	cnt, err := strconv.Atoi(kv["cnt"])
	if err != nil {
		return nil, false, err
	}

	win, err := strconv.Atoi(kv["win"])
	if err != nil {
		return nil, false, err
	}

	return &models.Checkpoint{
		Keyword:          keyword,
		NewestID:         kv["newest"],
		OldestID:         kv["oldest"],
		LastSearchTime:   time.Unix(ts, 0).UTC(),
		LastResultCount:  cnt,
		SearchWindowDays: win,
	}, true, nil
}

func (m *redisMirror) Close() error { return m.rdb.Close() }
