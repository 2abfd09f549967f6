package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
)

// SaveCacheEntry добавляет новую запись кэша результатов.
//
// История append-only: предыдущие записи по тому же слову не удаляются
// и не сливаются; приоритет «самой свежей валидной» обеспечивает чтение.
func (s *Storage) SaveCacheEntry(ctx context.Context, entry *models.CacheEntry) error {
	const op = "storage.postgres.SaveCacheEntry"

	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	params := entry.SearchParams
	if params == nil {
		params = map[string]string{}
	}

	query := `
        INSERT INTO search_cache (id, keyword, scope, searched_at, expires_at, item_ids, result_count, api_calls_used, search_params)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := s.db.Exec(ctx, query,
		id,
		entry.Keyword,
		entry.Scope,
		entry.SearchedAt.UTC(),
		entry.ExpiresAt.UTC(),
		entry.ItemIDs,
		entry.ResultCount,
		entry.APICallsUsed,
		params,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LatestValidEntry возвращает самую свежую непросроченную запись по
// (keyword, scope). Просроченные записи не читаются, даже если ещё
// физически присутствуют. Если валидной записи нет — storage.ErrNotFound.
func (s *Storage) LatestValidEntry(ctx context.Context, keyword, scope string, now time.Time) (*models.CacheEntry, error) {
	const op = "storage.postgres.LatestValidEntry"

	query := `
        SELECT id, keyword, scope, searched_at, expires_at, item_ids, result_count, api_calls_used, search_params
        FROM search_cache
        WHERE keyword = $1 AND scope = $2 AND expires_at > $3
        ORDER BY searched_at DESC
        LIMIT 1
    `

	var entry models.CacheEntry
	err := s.db.QueryRow(ctx, query, keyword, scope, now.UTC()).Scan(
		&entry.ID,
		&entry.Keyword,
		&entry.Scope,
		&entry.SearchedAt,
		&entry.ExpiresAt,
		&entry.ItemIDs,
		&entry.ResultCount,
		&entry.APICallsUsed,
		&entry.SearchParams,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry.SearchedAt = entry.SearchedAt.UTC()
	entry.ExpiresAt = entry.ExpiresAt.UTC()

	return &entry, nil
}

// DeleteExpiredEntries удаляет записи с истёкшим expires_at.
// Безопасно выполняется параллельно с чтением/записью: чтение в любом
// случае фильтрует по expires_at.
func (s *Storage) DeleteExpiredEntries(ctx context.Context, now time.Time) (int, error) {
	const op = "storage.postgres.DeleteExpiredEntries"

	cmdTag, err := s.db.Exec(ctx, `
        DELETE FROM search_cache
        WHERE expires_at < $1
    `, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(cmdTag.RowsAffected()), nil
}
