package remotelist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/google/uuid"
)

// SQLite is a single-node backend for the list records, used when no
// Postgres is available.
type SQLite struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewSQLite(db *sql.DB, logger *logging.Logger) *SQLite {
	return &SQLite{db: db, logger: logging.OrDiscard(logger)}
}

// EnsureSchema creates the list tables if they do not exist yet.
func (r *SQLite) EnsureSchema(ctx context.Context) error {
	for _, list := range []domain.ListName{domain.ListCart, domain.ListFavorites} {
		stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	items TEXT NOT NULL DEFAULT '[]',
	updated_at DATETIME NOT NULL
)`, list.Table())
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", list.Table(), err)
		}
	}
	return nil
}

func (r *SQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLite) Get(ctx context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error) {
	table := list.Table()
	if table == "" {
		return nil, domain.ErrInvalidList
	}
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, items, updated_at FROM %s WHERE user_id = ?
	`, table), userID)
	var rec domain.RemoteListRecord
	var items string
	if err := row.Scan(&rec.ID, &rec.UserID, &items, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Warnf("remotelist sqlite: get list=%s user_id=%s error=%v", list, userID, err)
		return nil, err
	}
	rec.List = list
	rec.Items = json.RawMessage(items)
	return &rec, nil
}

func (r *SQLite) Upsert(ctx context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error) {
	table := list.Table()
	if table == "" {
		return nil, domain.ErrInvalidList
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_id, items, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			items = excluded.items,
			updated_at = excluded.updated_at
	`, table), uuid.NewString(), userID, string(normalizeItems(items)), now)
	if err != nil {
		r.logger.Warnf("remotelist sqlite: upsert list=%s user_id=%s error=%v", list, userID, err)
		return nil, err
	}
	return r.Get(ctx, list, userID)
}
