package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ListName names one of the per-user synchronized lists.
type ListName string

const (
	ListCart      ListName = "cart"
	ListFavorites ListName = "favorites"
)

// ParseListName validates a list name coming from the outside world.
func ParseListName(raw string) (ListName, error) {
	switch ListName(strings.ToLower(strings.TrimSpace(raw))) {
	case ListCart:
		return ListCart, nil
	case ListFavorites:
		return ListFavorites, nil
	default:
		return "", ErrInvalidList
	}
}

// Table is the backend table holding the per-user records of this list.
func (n ListName) Table() string {
	switch n {
	case ListCart:
		return "user_cart"
	case ListFavorites:
		return "user_favorites"
	default:
		return ""
	}
}

// LocalKey is the key the list is stored under in client-side storage.
func (n ListName) LocalKey() string {
	return "ramana-" + string(n)
}

// RemoteListRecord is the per-user backend row for one list.
type RemoteListRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	List      ListName        `json:"list"`
	Items     json.RawMessage `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}
