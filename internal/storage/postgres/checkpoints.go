package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/storage"
)

// CheckpointByKeyword возвращает чекпоинт слова.
// Если запись не найдена — storage.ErrNotFound.
func (s *Storage) CheckpointByKeyword(ctx context.Context, keyword string) (*models.Checkpoint, error) {
	const op = "storage.postgres.CheckpointByKeyword"

	query := `
        SELECT keyword, newest_id, oldest_id, last_search_time, last_result_count, search_window_days
        FROM checkpoints
        WHERE keyword = $1
    `

	var cp models.Checkpoint
	err := s.db.QueryRow(ctx, query, keyword).Scan(
		&cp.Keyword,
		&cp.NewestID,
		&cp.OldestID,
		&cp.LastSearchTime,
		&cp.LastResultCount,
		&cp.SearchWindowDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cp.LastSearchTime = cp.LastSearchTime.UTC()

	return &cp, nil
}

// SaveCheckpoint создаёт или полностью перезаписывает чекпоинт слова.
func (s *Storage) SaveCheckpoint(ctx context.Context, cp *models.Checkpoint) error {
	const op = "storage.postgres.SaveCheckpoint"

	query := `
        INSERT INTO checkpoints (keyword, newest_id, oldest_id, last_search_time, last_result_count, search_window_days)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (keyword) DO UPDATE
        SET newest_id = EXCLUDED.newest_id,
            oldest_id = EXCLUDED.oldest_id,
            last_search_time = EXCLUDED.last_search_time,
            last_result_count = EXCLUDED.last_result_count,
            search_window_days = EXCLUDED.search_window_days
    `

	_, err := s.db.Exec(ctx, query,
		cp.Keyword,
		cp.NewestID,
		cp.OldestID,
		cp.LastSearchTime.UTC(),
		cp.LastResultCount,
		cp.SearchWindowDays,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ExtendCheckpoint атомарно расширяет границы чекпоинта.
//
// Строка читается под блокировкой FOR UPDATE, решение о расширении
// каждой границы принимается компаратором cmp, запись — в той же
// транзакции. Если чекпоинта нет — создаётся из переданных значений
// без сравнения (первая пачка задаёт обе границы).
func (s *Storage) ExtendCheckpoint(ctx context.Context, cp *models.Checkpoint, cmp models.IDComparator) error {
	const op = "storage.postgres.ExtendCheckpoint"

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur models.Checkpoint
	err = tx.QueryRow(ctx, `
        SELECT keyword, newest_id, oldest_id
        FROM checkpoints
        WHERE keyword = $1
        FOR UPDATE
    `, cp.Keyword).Scan(&cur.Keyword, &cur.NewestID, &cur.OldestID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx, `
            INSERT INTO checkpoints (keyword, newest_id, oldest_id, last_search_time, last_result_count, search_window_days)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, cp.Keyword, cp.NewestID, cp.OldestID, cp.LastSearchTime.UTC(), cp.LastResultCount, cp.SearchWindowDays)
		if err != nil {
			return fmt.Errorf("%s: insert: %w", op, err)
		}
	case err != nil:
		return fmt.Errorf("%s: select: %w", op, err)
	default:
		newest := cur.NewestID
		if cmp(cp.NewestID, newest) > 0 {
			newest = cp.NewestID
		}

		oldest := cur.OldestID
		if cmp(cp.OldestID, oldest) < 0 {
			oldest = cp.OldestID
		}

		_, err = tx.Exec(ctx, `
            UPDATE checkpoints
            SET newest_id = $2,
                oldest_id = $3,
                last_search_time = $4,
                last_result_count = $5,
                search_window_days = $6
            WHERE keyword = $1
        `, cp.Keyword, newest, oldest, cp.LastSearchTime.UTC(), cp.LastResultCount, cp.SearchWindowDays)
		if err != nil {
			return fmt.Errorf("%s: update: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// DeleteCheckpoint удаляет чекпоинт слова. Отсутствие записи — не ошибка:
// сброс уже сброшенного чекпоинта идемпотентен.
func (s *Storage) DeleteCheckpoint(ctx context.Context, keyword string) error {
	const op = "storage.postgres.DeleteCheckpoint"

	_, err := s.db.Exec(ctx, `DELETE FROM checkpoints WHERE keyword = $1`, keyword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteStaleCheckpoints удаляет чекпоинты, не обновлявшиеся с olderThan.
func (s *Storage) DeleteStaleCheckpoints(ctx context.Context, olderThan time.Time) (int, error) {
	const op = "storage.postgres.DeleteStaleCheckpoints"

	cmdTag, err := s.db.Exec(ctx, `
        DELETE FROM checkpoints
        WHERE last_search_time < $1
    `, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(cmdTag.RowsAffected()), nil
}

// Checkpoints возвращает все чекпоинты, отсортированные по слову.
func (s *Storage) Checkpoints(ctx context.Context) ([]models.Checkpoint, error) {
	const op = "storage.postgres.Checkpoints"

	rows, err := s.db.Query(ctx, `
        SELECT keyword, newest_id, oldest_id, last_search_time, last_result_count, search_window_days
        FROM checkpoints
        ORDER BY keyword
    `)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Checkpoint
	for rows.Next() {
		var cp models.Checkpoint
		if scanErr := rows.Scan(
			&cp.Keyword,
			&cp.NewestID,
			&cp.OldestID,
			&cp.LastSearchTime,
			&cp.LastResultCount,
			&cp.SearchWindowDays,
		); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		cp.LastSearchTime = cp.LastSearchTime.UTC()
		result = append(result, cp)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return result, nil
}
