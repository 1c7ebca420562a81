package domain

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// ProductID identifies a product. Lists written by older storefront builds
// carry numeric ids, so decoding accepts both JSON strings and numbers.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// ProductIDFromInt is a convenience for catalogs keyed by integers.
func ProductIDFromInt(v int64) ProductID {
	return ProductID(strconv.FormatInt(v, 10))
}

// CartLine is a snapshot of a product taken when it was added to the cart.
// Price is not refreshed afterwards.
type CartLine struct {
	ID       ProductID       `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Rating   *float64        `json:"rating,omitempty"`
}

func (l CartLine) Key() string {
	return string(l.ID)
}

// Total is price * quantity for the line.
func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
