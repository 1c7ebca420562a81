package seed

import (
	"context"
	"fmt"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/shopspring/decimal"
)

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Key         string
	Title       string
	Description string
	Price       string
	Image       string
	Rating      float64
	Category    string
}

var demoProducts = []productSeed{
	{
		Key:         "peony-box",
		Title:       "Peony box",
		Description: "Pink peonies arranged in a round hat box",
		Price:       "45.00",
		Image:       "https://images.example.com/peony-box.jpg",
		Rating:      4.9,
		Category:    "boxes",
	},
	{
		Key:         "tulip-bunch",
		Title:       "Tulip bunch",
		Description: "Fifteen seasonal tulips wrapped in kraft paper",
		Price:       "15.00",
		Image:       "https://images.example.com/tulips.jpg",
		Rating:      4.6,
		Category:    "bouquets",
	},
	{
		Key:         "dried-lavender",
		Title:       "Dried lavender wreath",
		Description: "Handmade wreath of dried lavender and eucalyptus",
		Price:       "29.90",
		Image:       "https://images.example.com/lavender.jpg",
		Category:    "dried",
	},
}

// Apply inserts demo catalog data for manual testing. It is idempotent since
// products are upserted by key.
func Apply(ctx context.Context, repo productWriter, logger *logging.Logger) error {
	logger = logging.OrDiscard(logger)
	for _, s := range demoProducts {
		p, err := s.product()
		if err != nil {
			return err
		}
		saved, err := repo.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", s.Key, err)
		}
		logger.Debugf("seed: product key=%s id=%s", saved.Key, saved.ID)
	}
	logger.Infof("seed: %d demo products in place", len(demoProducts))
	return nil
}

func (s productSeed) product() (domain.Product, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("seed %s price: %w", s.Key, err)
	}
	p := domain.Product{
		Key:         s.Key,
		Title:       s.Title,
		Description: s.Description,
		Price:       price,
		Image:       s.Image,
		Category:    s.Category,
	}
	if s.Rating > 0 {
		rating := s.Rating
		p.Rating = &rating
	}
	return p, nil
}
