// Package storefront wires the cart and favorites stores to the auth session.
package storefront

import (
	"context"
	"errors"
	"sync"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/liststore"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/service/cart"
	"ramana-bouquets/internal/service/favorites"

	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Session   *auth.Session
	Cart      *cart.Service
	Favorites *favorites.Service
	Logger    *logging.Logger
}

// Report holds the reconciliation results of one sync pass.
type Report struct {
	Cart      liststore.Result
	Favorites liststore.Result
}

type Storefront struct {
	session   *auth.Session
	cart      *cart.Service
	favorites *favorites.Service
	logger    *logging.Logger

	bg          context.Context
	stop        context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
	closeOnce   sync.Once
}

// New hands the current identity to both stores and reconciles them in the
// background, then does the same for every later transition. Wait blocks
// until those runs finish.
func New(d Deps) *Storefront {
	bg, stop := context.WithCancel(context.Background())
	sf := &Storefront{
		session:   d.Session,
		cart:      d.Cart,
		favorites: d.Favorites,
		logger:    logging.OrDiscard(d.Logger),
		bg:        bg,
		stop:      stop,
	}
	sf.unsubscribe = d.Session.Subscribe(sf.onChange)
	userID := d.Session.UserID()
	sf.cart.OnAuthChange(userID)
	sf.favorites.OnAuthChange(userID)
	sf.syncInBackground()
	return sf
}

func (sf *Storefront) Session() *auth.Session {
	return sf.session
}

func (sf *Storefront) Cart() *cart.Service {
	return sf.cart
}

func (sf *Storefront) Favorites() *favorites.Service {
	return sf.favorites
}

func (sf *Storefront) onChange(c auth.Change) {
	sf.logger.Infof("storefront: auth change %q -> %q", c.Previous, c.UserID)
	sf.cart.OnAuthChange(c.UserID)
	sf.favorites.OnAuthChange(c.UserID)
	sf.syncInBackground()
}

func (sf *Storefront) syncInBackground() {
	sf.wg.Add(1)
	go func() {
		defer sf.wg.Done()
		sf.Sync(sf.bg)
	}()
}

// Sync reconciles both lists concurrently. Lists already synced for the
// current identity are skipped.
func (sf *Storefront) Sync(ctx context.Context) Report {
	var rep Report
	var g errgroup.Group
	g.Go(func() error {
		rep.Cart = sf.cart.Reconcile(ctx)
		return nil
	})
	g.Go(func() error {
		rep.Favorites = sf.favorites.Reconcile(ctx)
		return nil
	})
	_ = g.Wait()

	for _, r := range []liststore.Result{rep.Cart, rep.Favorites} {
		if r.Err != nil {
			sf.logger.Warnf("storefront: sync user_id=%s outcome=%s error=%v", r.UserID, r.Outcome, r.Err)
		}
	}
	return rep
}

// Wait blocks until background syncs started so far have finished.
func (sf *Storefront) Wait() {
	sf.wg.Wait()
}

// Close stops following the session, waits for background syncs and
// drains pending writes of both stores.
func (sf *Storefront) Close(ctx context.Context) error {
	var err error
	sf.closeOnce.Do(func() {
		sf.unsubscribe()

		done := make(chan struct{})
		go func() {
			sf.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			sf.stop()
			<-done
		}
		sf.stop()

		err = errors.Join(sf.cart.Close(ctx), sf.favorites.Close(ctx))
	})
	return err
}
