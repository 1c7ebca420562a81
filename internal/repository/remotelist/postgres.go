package remotelist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logging.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *logging.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

func (r *postgresRepo) Get(ctx context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error) {
	table := list.Table()
	if table == "" {
		return nil, domain.ErrInvalidList
	}
	q := fmt.Sprintf(`
SELECT id::text, user_id, items, updated_at
FROM %s
WHERE user_id = $1
`, table)
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, userID), list)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debugf("remotelist repo: get list=%s user_id=%s not found", list, userID)
			return nil, domain.ErrNotFound
		}
		r.logger.Warnf("remotelist repo: get list=%s user_id=%s error=%v", list, userID, err)
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error) {
	table := list.Table()
	if table == "" {
		return nil, domain.ErrInvalidList
	}
	q := fmt.Sprintf(`
INSERT INTO %s (user_id, items, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET
    items = EXCLUDED.items,
    updated_at = EXCLUDED.updated_at
RETURNING id::text, user_id, items, updated_at
`, table)
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, userID, []byte(normalizeItems(items))), list)
	if err != nil {
		r.logger.Warnf("remotelist repo: upsert list=%s user_id=%s error=%v", list, userID, err)
		return nil, err
	}
	r.logger.Debugf("remotelist repo: upserted list=%s user_id=%s", list, userID)
	return rec, nil
}

func scanRecord(row pgx.Row, list domain.ListName) (*domain.RemoteListRecord, error) {
	var rec domain.RemoteListRecord
	var items []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &items, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.List = list
	rec.Items = json.RawMessage(items)
	return &rec, nil
}
