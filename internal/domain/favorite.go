package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FavoriteItem struct {
	ID       ProductID       `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Rating   *float64        `json:"rating,omitempty"`
	Category string          `json:"category,omitempty"`
	AddedAt  time.Time       `json:"addedAt"`
}

func (f FavoriteItem) Key() string {
	return string(f.ID)
}
