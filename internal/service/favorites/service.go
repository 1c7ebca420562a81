package favorites

import (
	"context"
	"time"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/liststore"
)

// Service is the favorites mutation API. Conflicts always resolve by union,
// and the local key is dropped once a signed-in sync settles.
type Service struct {
	store *liststore.Store[domain.FavoriteItem]
	now   func() time.Time
}

func New(opts liststore.Options) *Service {
	return &Service{
		store: liststore.New(liststore.Policy[domain.FavoriteItem]{
			List: domain.ListFavorites,
			Resolve: func(_ context.Context, local, remote []domain.FavoriteItem) []domain.FavoriteItem {
				return Union(remote, local)
			},
			ClearLocalAfterSync: true,
		}, opts),
		now: time.Now,
	}
}

// Union keeps remote order and lets a local item replace the remote item
// with the same id as a whole.
func Union(remote, local []domain.FavoriteItem) []domain.FavoriteItem {
	out := make([]domain.FavoriteItem, 0, len(remote)+len(local))
	index := make(map[domain.ProductID]int, len(remote)+len(local))
	for _, src := range [][]domain.FavoriteItem{remote, local} {
		for _, item := range src {
			if i, ok := index[item.ID]; ok {
				out[i] = item
				continue
			}
			index[item.ID] = len(out)
			out = append(out, item)
		}
	}
	return out
}

func ItemFromProduct(p domain.Product) domain.FavoriteItem {
	return domain.FavoriteItem{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Rating:   p.Rating,
		Category: p.Category,
	}
}

// Add is a no-op for an id that is already a favorite. AddedAt is stamped
// when the item does not carry one.
func (s *Service) Add(item domain.FavoriteItem) {
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	s.store.Update(func(items []domain.FavoriteItem) []domain.FavoriteItem {
		if indexOf(items, item.ID) >= 0 {
			return items
		}
		return append(items, item)
	})
}

func (s *Service) Remove(id domain.ProductID) {
	s.store.Update(func(items []domain.FavoriteItem) []domain.FavoriteItem {
		if i := indexOf(items, id); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

// Toggle adds or removes item and reports whether it is a favorite afterwards.
// A re-added item gets a fresh AddedAt.
func (s *Service) Toggle(item domain.FavoriteItem) bool {
	item.AddedAt = s.now().UTC()
	var on bool
	s.store.Update(func(items []domain.FavoriteItem) []domain.FavoriteItem {
		if i := indexOf(items, item.ID); i >= 0 {
			on = false
			return append(items[:i], items[i+1:]...)
		}
		on = true
		return append(items, item)
	})
	return on
}

func (s *Service) Clear() {
	s.store.Update(func([]domain.FavoriteItem) []domain.FavoriteItem {
		return nil
	})
}

func (s *Service) IsFavorite(id domain.ProductID) bool {
	return indexOf(s.store.Items(), id) >= 0
}

func (s *Service) TotalFavorites() int {
	return len(s.store.Items())
}

func (s *Service) Items() []domain.FavoriteItem {
	return s.store.Items()
}

func (s *Service) OnAuthChange(userID string) {
	s.store.OnAuthChange(userID)
}

func (s *Service) Reconcile(ctx context.Context) liststore.Result {
	return s.store.Reconcile(ctx)
}

func (s *Service) State() liststore.SyncState {
	return s.store.State()
}

func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

func (s *Service) Close(ctx context.Context) error {
	return s.store.Close(ctx)
}

func indexOf(items []domain.FavoriteItem, id domain.ProductID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
