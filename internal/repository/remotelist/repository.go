package remotelist

import (
	"context"
	"encoding/json"

	"ramana-bouquets/internal/domain"
)

// Repository stores one record per (list, user). Get returns
// domain.ErrNotFound when the user has never synced the list.
type Repository interface {
	Get(ctx context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error)
	Upsert(ctx context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error)
}

func normalizeItems(items json.RawMessage) json.RawMessage {
	if len(items) == 0 || string(items) == "null" {
		return json.RawMessage("[]")
	}
	return items
}
