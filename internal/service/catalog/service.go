package catalog

import (
	"context"
	"sort"
	"strings"

	"ramana-bouquets/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type productLister interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
}

type categoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type Service struct {
	repo       productLister
	categories categoryLister
}

// New builds the catalog. A nil categories source makes Categories count
// over the full product list instead.
func New(repo productLister, categories categoryLister) *Service {
	return &Service{repo: repo, categories: categories}
}

// Query filters, sorts and pages the catalog. Zero values mean "no filter".
type Query struct {
	Category string
	Text     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	PageSize int
}

type Page struct {
	Items    []domain.Product `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Pages    int              `json:"pages"`
}

func (s *Service) Get(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return Page{}, err
	}
	return Apply(products, q), nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.categories != nil {
		return s.categories.List(ctx)
	}
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return CountCategories(products), nil
}

// CountCategories groups products by category name, case-insensitively,
// keeping the first spelling seen. Uncategorized products are skipped.
func CountCategories(products []domain.Product) []domain.Category {
	index := map[string]int{}
	out := []domain.Category{}
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, domain.Category{Name: name, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// Apply runs the filter, sort and paginate pipeline over products.
func Apply(products []domain.Product, q Query) Page {
	filtered := filterProducts(products, q)
	sortProducts(filtered, q.Sort)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	pages := (len(filtered) + size - 1) / size
	page := q.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	items := filtered[start:end]
	if items == nil {
		items = []domain.Product{}
	}
	return Page{Items: items, Total: len(filtered), Page: page, PageSize: size, Pages: pages}
}

func filterProducts(products []domain.Product, q Query) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Title), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(products []domain.Product, by string) {
	var less func(a, b domain.Product) bool
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "price_asc":
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case "price_desc":
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case "newest":
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case "rating":
		less = func(a, b domain.Product) bool { return rating(a) > rating(b) }
	default:
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func rating(p domain.Product) float64 {
	if p.Rating == nil {
		return -1
	}
	return *p.Rating
}
