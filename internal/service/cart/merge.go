package cart

import (
	"context"
	"fmt"
	"strings"

	"ramana-bouquets/internal/domain"
)

// Strategy decides a cart conflict between the local and the remote list.
type Strategy int

const (
	StrategyMerge Strategy = iota
	StrategyRemote
	StrategyLocal
)

func (s Strategy) String() string {
	switch s {
	case StrategyRemote:
		return "remote"
	case StrategyLocal:
		return "local"
	default:
		return "merge"
	}
}

func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "merge":
		return StrategyMerge, nil
	case "remote":
		return StrategyRemote, nil
	case "local":
		return StrategyLocal, nil
	default:
		return StrategyMerge, fmt.Errorf("unknown conflict strategy %q", raw)
	}
}

// ConflictResolver is asked once per conflicting sign-in.
type ConflictResolver interface {
	ResolveConflict(ctx context.Context, local, remote []domain.CartLine) Strategy
}

type ResolverFunc func(ctx context.Context, local, remote []domain.CartLine) Strategy

func (f ResolverFunc) ResolveConflict(ctx context.Context, local, remote []domain.CartLine) Strategy {
	return f(ctx, local, remote)
}

// FixedResolver always answers with the same strategy.
type FixedResolver Strategy

func (r FixedResolver) ResolveConflict(context.Context, []domain.CartLine, []domain.CartLine) Strategy {
	return Strategy(r)
}

// Merge combines remote and local lines by id. Remote lines come first;
// on collision quantities are summed and the local display fields win.
func Merge(remote, local []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(remote)+len(local))
	index := make(map[domain.ProductID]int, len(remote)+len(local))
	for _, src := range [][]domain.CartLine{remote, local} {
		for _, line := range src {
			if line.Quantity <= 0 {
				continue
			}
			i, ok := index[line.ID]
			if !ok {
				index[line.ID] = len(out)
				out = append(out, line)
				continue
			}
			line.Quantity += out[i].Quantity
			out[i] = line
		}
	}
	return out
}

// Equal compares two carts ignoring line order.
func Equal(a, b []domain.CartLine) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[domain.ProductID]domain.CartLine, len(a))
	for _, line := range a {
		byID[line.ID] = line
	}
	if len(byID) != len(a) {
		return false
	}
	for _, line := range b {
		other, ok := byID[line.ID]
		if !ok || !sameLine(line, other) {
			return false
		}
		delete(byID, line.ID)
	}
	return len(byID) == 0
}

func sameLine(a, b domain.CartLine) bool {
	if a.Quantity != b.Quantity || a.Title != b.Title || a.Image != b.Image || !a.Price.Equal(b.Price) {
		return false
	}
	switch {
	case a.Rating == nil && b.Rating == nil:
		return true
	case a.Rating == nil || b.Rating == nil:
		return false
	default:
		return *a.Rating == *b.Rating
	}
}
