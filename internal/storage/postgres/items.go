package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/morozovaek/harvest-service/internal/models"
)

// SaveItems сохраняет пачку постов с upsert по external_id.
//
// Политика обновления:
//   - content/author — обновляются, если пришли непустые значения;
//   - created_at — не меняется;
//   - fetched_at и last_refreshed_at — обновляются всегда.
func (s *Storage) SaveItems(ctx context.Context, items []models.Item) error {
	const op = "storage.postgres.SaveItems"

	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
        INSERT INTO items (external_id, keyword, author, content, created_at, fetched_at, last_refreshed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        ON CONFLICT (external_id) DO UPDATE
        SET
        content = CASE WHEN EXCLUDED.content <> '' THEN EXCLUDED.content ELSE items.content END,
        author = CASE WHEN EXCLUDED.author <> '' THEN EXCLUDED.author ELSE items.author END,
        fetched_at = EXCLUDED.fetched_at,
        last_refreshed_at = EXCLUDED.last_refreshed_at
        `, item.ExternalID, item.Keyword, item.Author, item.Content,
			item.CreatedAt.UTC(), item.FetchedAt.UTC())
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%s: batch item %d: %w", op, i, err)
		}
	}

	return nil
}

// ExistingIDs возвращает идентификаторы уже известных постов, совпадающих
// с любым из слов (по тексту или по слову находки) и созданных не раньше since.
func (s *Storage) ExistingIDs(ctx context.Context, keywords []string, since time.Time) (map[string]struct{}, error) {
	const op = "storage.postgres.ExistingIDs"

	if len(keywords) == 0 {
		return map[string]struct{}{}, nil
	}

	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, "%"+kw+"%")
	}

	rows, err := s.db.Query(ctx, `
        SELECT external_id
        FROM items
        WHERE created_at >= $1
          AND (keyword = ANY($2::text[]) OR content ILIKE ANY($3::text[]))
    `, since.UTC(), keywords, patterns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}
		result[id] = struct{}{}
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return result, nil
}

// StaleCandidates возвращает из переданных идентификаторов те, что есть
// в хранилище, но не обновлялись дольше maxAge (кандидаты на повторную
// загрузку).
func (s *Storage) StaleCandidates(ctx context.Context, ids []string, maxAge time.Duration) ([]string, error) {
	const op = "storage.postgres.StaleCandidates"

	if len(ids) == 0 {
		return nil, nil
	}

	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := s.db.Query(ctx, `
        SELECT external_id
        FROM items
        WHERE external_id = ANY($1::text[])
          AND COALESCE(last_refreshed_at, fetched_at) < $2
        ORDER BY external_id
    `, ids, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}
		result = append(result, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return result, nil
}
