package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

const (
	testSecret = "test-secret"
	userA      = "4d7f3c1e-2f54-4a8b-9b1e-0e5a7c2d9f10"
	userB      = "9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubListRepo struct {
	mu      sync.Mutex
	records map[string]*domain.RemoteListRecord
	err     error
}

func newStubListRepo() *stubListRepo {
	return &stubListRepo{records: map[string]*domain.RemoteListRecord{}}
}

func (s *stubListRepo) Get(_ context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[string(list)+"/"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (s *stubListRepo) Upsert(_ context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rec := &domain.RemoteListRecord{ID: "rec-" + userID, UserID: userID, List: list, Items: items, UpdatedAt: time.Now().UTC()}
	s.records[string(list)+"/"+userID] = rec
	return rec, nil
}

type stubCatalog struct {
	lastQuery catalog.Query
	page      catalog.Page
	product   *domain.Product
	cats      []domain.Category
	err       error
}

func (s *stubCatalog) Search(_ context.Context, q catalog.Query) (catalog.Page, error) {
	s.lastQuery = q
	return s.page, s.err
}

func (s *stubCatalog) Get(_ context.Context, _ domain.ProductID) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	return s.product, nil
}

func (s *stubCatalog) Categories(context.Context) ([]domain.Category, error) {
	return s.cats, s.err
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Lists == nil {
		deps.Lists = newStubListRepo()
	}
	if deps.Verifier == nil {
		deps.Verifier = auth.NewVerifier(testSecret)
	}
	router, err := buildRouter(logging.Discard(), deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.NewIssuer(testSecret).Issue(userID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func do(router http.Handler, method, path, authz, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	if _, err := buildRouter(logging.Discard(), Deps{}); err == nil {
		t.Fatalf("expected error without list repository")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := do(router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name string
		db   Pinger
		want int
	}{
		{"not configured", nil, http.StatusServiceUnavailable},
		{"unreachable", stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
		{"ready", stubPinger{}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, Deps{DB: tc.db})
			if rec := do(router, http.MethodGet, "/readyz", "", ""); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, Deps{})
	req := httptest.NewRequest(http.MethodOptions, "/v1/users/"+userA+"/lists/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected allow origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
