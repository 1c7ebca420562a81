package localstore

import (
	"context"
	"errors"
	"testing"

	"ramana-bouquets/internal/domain"
)

type item struct {
	ID  string `json:"id"`
	Qty int    `json:"quantity"`
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestSQLite(t)

	if _, err := s.Get("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	WriteList(s, "ramana-cart", []item{{ID: "a", Qty: 2}}, nil)
	WriteList(s, "ramana-cart", []item{{ID: "a", Qty: 3}, {ID: "b", Qty: 1}}, nil)

	got := ReadList[item](s, "ramana-cart", nil)
	if len(got) != 2 || got[0].Qty != 3 || got[1].ID != "b" {
		t.Fatalf("unexpected list %+v", got)
	}

	Clear(s, "ramana-cart", nil)
	if got := ReadList[item](s, "ramana-cart", nil); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %+v", got)
	}
}

func TestReadListMalformedIsEmpty(t *testing.T) {
	m := NewMemory()
	if err := m.Set("ramana-cart", "{not json"); err != nil {
		t.Fatal(err)
	}
	if got := ReadList[item](m, "ramana-cart", nil); got != nil {
		t.Fatalf("expected nil list, got %+v", got)
	}
}

func TestWriteListNilStoresEmptyArray(t *testing.T) {
	m := NewMemory()
	WriteList[item](m, "k", nil, nil)
	raw, err := m.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if raw != "[]" {
		t.Fatalf("expected [], got %q", raw)
	}
}

func TestNoopIsInert(t *testing.T) {
	var s Storage = Noop{}
	WriteList(s, "k", []item{{ID: "a", Qty: 1}}, nil)
	if got := ReadList[item](s, "k", nil); got != nil {
		t.Fatalf("expected nothing from noop, got %+v", got)
	}
	Clear(s, "k", nil)
}
