package storefront

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/liststore"
	"ramana-bouquets/internal/localstore"
	"ramana-bouquets/internal/repository/remotelist"
	"ramana-bouquets/internal/service/cart"
	"ramana-bouquets/internal/service/favorites"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type fixture struct {
	sf      *Storefront
	session *auth.Session
	local   *localstore.Memory
	remote  *remotelist.SQLite
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithSession(t, auth.NewSession(), nil)
}

// newFixtureWithSession builds the storefront over session after seed has
// prepared the remote backend.
func newFixtureWithSession(t *testing.T, session *auth.Session, seed func(*remotelist.SQLite)) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	remote := remotelist.NewSQLite(db, nil)
	if err := remote.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seed != nil {
		seed(remote)
	}

	local := localstore.NewMemory()
	opts := liststore.Options{Local: local, Remote: remote, Tokens: session}
	sf := New(Deps{
		Session:   session,
		Cart:      cart.New(opts, nil),
		Favorites: favorites.New(opts),
	})
	t.Cleanup(func() { _ = sf.Close(context.Background()) })
	return &fixture{sf: sf, session: session, local: local, remote: remote}
}

func line(id string, qty int) domain.CartLine {
	return domain.CartLine{ID: domain.ProductID(id), Title: id, Price: decimal.NewFromInt(10), Quantity: qty}
}

func (f *fixture) seedRemoteCart(t *testing.T, userID string, lines []domain.CartLine) {
	t.Helper()
	raw, err := json.Marshal(lines)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.remote.Upsert(context.Background(), domain.ListCart, userID, raw); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) remoteCart(t *testing.T, userID string) []domain.CartLine {
	t.Helper()
	rec, err := f.remote.Get(context.Background(), domain.ListCart, userID)
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	var out []domain.CartLine
	if err := json.Unmarshal(rec.Items, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSignInReconcilesBothLists(t *testing.T) {
	f := newFixture(t)
	c, favs := f.sf.Cart(), f.sf.Favorites()
	_ = c.Add(line("a", 1))
	favs.Add(domain.FavoriteItem{ID: "7", Title: "Roses"})
	f.seedRemoteCart(t, "u1", []domain.CartLine{line("b", 4)})

	f.session.SignIn("u1", "token")
	f.sf.Wait()

	if c.State() != liststore.Synced || favs.State() != liststore.Synced {
		t.Fatalf("expected both synced, got %s and %s", c.State(), favs.State())
	}
	got := c.Lines()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected merged cart [b a], got %+v", got)
	}
	if !favs.IsFavorite("7") {
		t.Fatalf("expected local favorite adopted on first sync")
	}
}

func TestNewSyncsSignedInSession(t *testing.T) {
	session := auth.NewSession()
	session.SignIn("u1", "token")
	f := newFixtureWithSession(t, session, func(remote *remotelist.SQLite) {
		raw, _ := json.Marshal([]domain.CartLine{line("b", 2)})
		if _, err := remote.Upsert(context.Background(), domain.ListCart, "u1", raw); err != nil {
			t.Fatal(err)
		}
	})
	f.sf.Wait()

	c := f.sf.Cart()
	if c.State() != liststore.Synced || f.sf.Favorites().State() != liststore.Synced {
		t.Fatalf("expected both synced without an explicit Sync, got %s and %s", c.State(), f.sf.Favorites().State())
	}
	if got := c.Lines(); len(got) != 1 || got[0].ID != "b" || got[0].Quantity != 2 {
		t.Fatalf("expected remote cart adopted, got %+v", got)
	}
}

func TestSignOutPreservesLists(t *testing.T) {
	f := newFixture(t)
	c := f.sf.Cart()
	f.session.SignIn("u1", "token")
	f.sf.Wait()
	_ = c.Add(line("a", 2))
	before := c.Lines()

	f.session.SignOut()
	f.sf.Wait()

	after := c.Lines()
	if len(after) != 1 || len(before) != 1 || after[0].ID != before[0].ID || after[0].Quantity != before[0].Quantity {
		t.Fatalf("sign-out changed cart: %+v -> %+v", before, after)
	}
	if c.State() != liststore.Synced {
		t.Fatalf("expected synced after sign-out, got %s", c.State())
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedRemoteCart(t, "u1", []domain.CartLine{line("b", 4)})
	_ = f.sf.Cart().Add(line("a", 1))

	f.session.SignIn("u1", "token")
	f.sf.Wait()
	before := f.sf.Cart().Lines()

	rep := f.sf.Sync(context.Background())
	if rep.Cart.Outcome != liststore.OutcomeSkipped || rep.Favorites.Outcome != liststore.OutcomeSkipped {
		t.Fatalf("expected both skipped, got %s and %s", rep.Cart.Outcome, rep.Favorites.Outcome)
	}
	after := f.sf.Cart().Lines()
	if len(after) != len(before) {
		t.Fatalf("second sync changed cart: %+v -> %+v", before, after)
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Quantity != before[i].Quantity {
			t.Fatalf("second sync changed cart: %+v -> %+v", before, after)
		}
	}
}

func TestCloseDrainsWrites(t *testing.T) {
	f := newFixture(t)
	f.session.SignIn("u1", "token")
	f.sf.Wait()
	_ = f.sf.Cart().Add(line("z", 3))

	if err := f.sf.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := f.remoteCart(t, "u1")
	if len(got) != 1 || got[0].ID != "z" || got[0].Quantity != 3 {
		t.Fatalf("expected cart written before close, got %+v", got)
	}

	f.session.SignOut()
	f.sf.Wait()
	if f.sf.Cart().State() != liststore.Synced {
		t.Fatalf("closed storefront must not follow the session")
	}
}
