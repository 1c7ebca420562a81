package product

import (
	"context"
	"errors"
	"fmt"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id::text, key, title, COALESCE(description, ''), price::text, image, rating, category, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logging.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *logging.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Warnf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warnf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Debugf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debugf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Warnf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Upsert inserts or updates by key. A non-empty ID must match the stored row.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, key, title, description, price, image, rating, category)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5::numeric, $6, $7, $8)
ON CONFLICT (key) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image = EXCLUDED.image,
    rating = EXCLUDED.rating,
    category = EXCLUDED.category
RETURNING id::text, created_at
`
	res := product
	var id string
	err := r.pool.QueryRow(ctx, q,
		product.ID.String(),
		product.Key,
		product.Title,
		product.Description,
		product.Price.StringFixed(2),
		product.Image,
		product.Rating,
		product.Category,
	).Scan(&id, &res.CreatedAt)
	if err != nil {
		r.logger.Warnf("product repo: upsert key=%s error=%v", product.Key, err)
		return nil, err
	}
	if product.ID != "" && domain.ProductID(id) != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", product.Key, id, product.ID)
	}
	res.ID = domain.ProductID(id)
	r.logger.Debugf("product repo: upserted key=%s id=%s", res.Key, res.ID)
	return &res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var id, price string
	if err := row.Scan(&id, &p.Key, &p.Title, &p.Description, &price, &p.Image, &p.Rating, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s price %q: %w", id, price, err)
	}
	p.ID = domain.ProductID(id)
	p.Price = parsed
	return &p, nil
}
