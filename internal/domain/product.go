package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          ProductID       `json:"id"`
	Key         string          `json:"key,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
