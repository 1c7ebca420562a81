package cart

import (
	"context"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/liststore"

	"github.com/shopspring/decimal"
)

// Service is the cart mutation API over a reconciled list.
type Service struct {
	store    *liststore.Store[domain.CartLine]
	resolver ConflictResolver
}

// New builds the cart. A nil resolver merges every conflict.
func New(opts liststore.Options, resolver ConflictResolver) *Service {
	s := &Service{resolver: resolver}
	s.store = liststore.New(liststore.Policy[domain.CartLine]{
		List:    domain.ListCart,
		Equal:   Equal,
		Resolve: s.resolve,
	}, opts)
	return s
}

func (s *Service) resolve(ctx context.Context, local, remote []domain.CartLine) []domain.CartLine {
	strategy := StrategyMerge
	if s.resolver != nil {
		strategy = s.resolver.ResolveConflict(ctx, local, remote)
	}
	switch strategy {
	case StrategyRemote:
		return remote
	case StrategyLocal:
		return local
	default:
		return Merge(remote, local)
	}
}

// LineFromProduct snapshots a catalog product as a cart line.
func LineFromProduct(p domain.Product, quantity int) domain.CartLine {
	return domain.CartLine{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: quantity,
		Rating:   p.Rating,
	}
}

// Add appends line, or adds its quantity to the existing line with the same id.
func (s *Service) Add(line domain.CartLine) error {
	if line.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	s.store.Update(func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].ID == line.ID {
				lines[i].Quantity += line.Quantity
				return lines
			}
		}
		return append(lines, line)
	})
	return nil
}

func (s *Service) Increase(id domain.ProductID) {
	s.changeQuantity(id, 1)
}

// Decrease removes the line once its quantity reaches zero.
func (s *Service) Decrease(id domain.ProductID) {
	s.changeQuantity(id, -1)
}

func (s *Service) changeQuantity(id domain.ProductID, delta int) {
	s.store.Update(func(lines []domain.CartLine) []domain.CartLine {
		out := lines[:0]
		for _, line := range lines {
			if line.ID == id {
				line.Quantity += delta
			}
			if line.Quantity > 0 {
				out = append(out, line)
			}
		}
		return out
	})
}

func (s *Service) Remove(id domain.ProductID) {
	s.store.Update(func(lines []domain.CartLine) []domain.CartLine {
		out := lines[:0]
		for _, line := range lines {
			if line.ID != id {
				out = append(out, line)
			}
		}
		return out
	})
}

func (s *Service) Clear() {
	s.store.Update(func([]domain.CartLine) []domain.CartLine {
		return nil
	})
}

func (s *Service) Lines() []domain.CartLine {
	return s.store.Items()
}

func (s *Service) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.store.Items() {
		total = total.Add(line.Total())
	}
	return total
}

func (s *Service) TotalItems() int {
	n := 0
	for _, line := range s.store.Items() {
		n += line.Quantity
	}
	return n
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
