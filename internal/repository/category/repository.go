package category

import (
	"context"

	"ramana-bouquets/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
