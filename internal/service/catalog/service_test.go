package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"ramana-bouquets/internal/domain"

	"github.com/shopspring/decimal"
)

type stubRepo struct {
	products []domain.Product
	err      error
}

func (s *stubRepo) List(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubRepo) GetByID(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func fixtures() []domain.Product {
	r := func(v float64) *float64 { return &v }
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{ID: "1", Title: "Tulip bunch", Price: decimal.NewFromInt(15), Category: "bouquets", Rating: r(4.1), CreatedAt: base},
		{ID: "2", Title: "Peony box", Description: "pink peonies", Price: decimal.NewFromInt(45), Category: "boxes", Rating: r(4.9), CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "rose bouquet", Price: decimal.RequireFromString("29.90"), Category: "Bouquets", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "4", Title: "Anemones", Price: decimal.NewFromInt(22), Category: "bouquets", Rating: r(4.5), CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(items []domain.Product) string {
	out := ""
	for _, p := range items {
		out += string(p.ID)
	}
	return out
}

func TestApplyDefaultsToNameAsc(t *testing.T) {
	page := Apply(fixtures(), Query{})
	if got := ids(page.Items); got != "4231" {
		t.Fatalf("expected name order 4231, got %s", got)
	}
	if page.Page != 1 || page.PageSize != DefaultPageSize || page.Pages != 1 || page.Total != 4 {
		t.Fatalf("unexpected paging %+v", page)
	}
}

func TestApplyFilters(t *testing.T) {
	page := Apply(fixtures(), Query{Category: "BOUQUETS", MinPrice: price("20"), MaxPrice: price("30")})
	if got := ids(page.Items); got != "43" {
		t.Fatalf("expected 43, got %s", got)
	}
	page = Apply(fixtures(), Query{Text: "PEON"})
	if got := ids(page.Items); got != "2" {
		t.Fatalf("expected text match on title/description, got %s", got)
	}
}

func TestApplySorts(t *testing.T) {
	cases := map[string]string{
		"price_asc":  "1432",
		"price_desc": "2341",
		"newest":     "4321",
		"rating":     "2413",
	}
	for sortBy, want := range cases {
		if got := ids(Apply(fixtures(), Query{Sort: sortBy}).Items); got != want {
			t.Fatalf("sort %s: expected %s, got %s", sortBy, want, got)
		}
	}
}

func TestApplyPaginates(t *testing.T) {
	page := Apply(fixtures(), Query{Sort: "price_asc", Page: 2, PageSize: 3})
	if got := ids(page.Items); got != "2" || page.Pages != 2 || page.Total != 4 {
		t.Fatalf("unexpected page %+v", page)
	}
	page = Apply(fixtures(), Query{Page: 9, PageSize: 500})
	if len(page.Items) != 0 || page.Items == nil || page.PageSize != MaxPageSize {
		t.Fatalf("unexpected out-of-range page %+v", page)
	}
}

func TestSearchPropagatesRepoError(t *testing.T) {
	svc := New(&stubRepo{err: errors.New("boom")}, nil)
	if _, err := svc.Search(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGet(t *testing.T) {
	svc := New(&stubRepo{products: fixtures()}, nil)
	p, err := svc.Get(context.Background(), "2")
	if err != nil || p.Title != "Peony box" {
		t.Fatalf("unexpected %+v %v", p, err)
	}
	if _, err := svc.Get(context.Background(), "9"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubCategories struct{ cats []domain.Category }

func (s stubCategories) List(context.Context) ([]domain.Category, error) { return s.cats, nil }

func TestCategoriesCountsProducts(t *testing.T) {
	got, err := New(&stubRepo{products: fixtures()}, nil).Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 2 || got[0].Name != "bouquets" || got[0].Count != 3 || got[1].Name != "boxes" || got[1].Count != 1 {
		t.Fatalf("unexpected categories %+v", got)
	}
}

func TestCategoriesPrefersSource(t *testing.T) {
	src := stubCategories{cats: []domain.Category{{Name: "wreaths", Count: 7}}}
	got, err := New(&stubRepo{err: errors.New("unused")}, src).Categories(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "wreaths" {
		t.Fatalf("unexpected %+v %v", got, err)
	}
}
