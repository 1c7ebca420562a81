// Package liststore keeps one per-user list in memory and reconciles it
// with the local and remote persistence layers on every identity change.
package liststore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/localstore"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/repository/remotelist"
)

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Keyed items have a stable identity within a list.
type Keyed interface {
	Key() string
}

// Policy holds what differs between lists.
type Policy[T Keyed] struct {
	List domain.ListName
	// Equal compares local and remote lists. Defaults to SameItems.
	Equal func(a, b []T) bool
	// Resolve settles a genuine conflict. It may block, e.g. on a prompt.
	Resolve func(ctx context.Context, local, remote []T) []T
	// ClearLocalAfterSync drops the local key once a sync has settled.
	ClearLocalAfterSync bool
}

// TokenSource hands out the bearer token of userID while that user is
// signed in.
type TokenSource interface {
	TokenFor(userID string) (string, bool)
}

type Options struct {
	Local  localstore.Storage
	Remote remotelist.Repository
	// Tokens, when set, pins the signed-in user's token on every remote call
	// at the moment it is queued.
	Tokens       TokenSource
	Logger       *logging.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store is the in-memory source of truth for one list.
type Store[T Keyed] struct {
	policy       Policy[T]
	local        localstore.Storage
	remote       remotelist.Repository
	tokens       TokenSource
	logger       *logging.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
	writer       *writer

	mu      sync.Mutex
	items   []T
	userID  string
	token   string
	state   SyncState
	gen     uint64
	pending []func([]T) []T
}

// New loads the list from local storage and starts its writer. The store
// starts signed out and Unsynced.
func New[T Keyed](policy Policy[T], opts Options) *Store[T] {
	if policy.Equal == nil {
		policy.Equal = SameItems[T]
	}
	if opts.Local == nil {
		opts.Local = localstore.Noop{}
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	logger := logging.OrDiscard(opts.Logger)
	return &Store[T]{
		policy:       policy,
		local:        opts.Local,
		remote:       opts.Remote,
		tokens:       opts.Tokens,
		logger:       logger,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		writer:       newWriter(),
		items:        localstore.ReadList[T](opts.Local, policy.List.LocalKey(), logger),
	}
}

func (s *Store[T]) List() domain.ListName {
	return s.policy.List
}

// Items returns a copy of the current list.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

func (s *Store[T]) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store[T]) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Update applies fn to a copy of the list and persists the result to the
// active layer: local when signed out, remote when signed in. While a
// signed-in store is not yet synced the result is kept in memory only and
// fn is replayed on the reconciled list.
func (s *Store[T]) Update(fn func([]T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = fn(clone(s.items))
	if s.userID != "" && s.state != Synced {
		s.pending = append(s.pending, fn)
		return
	}
	s.persistLocked(s.userID, clone(s.items))
}

// OnAuthChange records an identity transition. The list itself is left
// untouched; the next Reconcile decides what to adopt.
func (s *Store[T]) OnAuthChange(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == s.userID {
		return
	}
	s.logger.Debugf("liststore: list=%s auth change %q -> %q", s.policy.List, s.userID, userID)
	s.userID = userID
	s.token = ""
	s.tokenLocked()
	s.gen++
	s.state = Unsynced
	s.pending = nil
}

// Reconcile runs once per identity. Errors from the persistence layers are
// logged and reported in the Result, never returned.
func (s *Store[T]) Reconcile(ctx context.Context) Result {
	s.mu.Lock()
	if s.state != Unsynced {
		res := Result{Outcome: OutcomeSkipped, UserID: s.userID, Items: len(s.items)}
		s.mu.Unlock()
		return res
	}
	userID, gen := s.userID, s.gen
	token := s.tokenLocked()
	snapshot := clone(s.items)
	if userID == "" {
		s.state = Synced
		n := len(s.items)
		s.mu.Unlock()
		s.logger.Infof("liststore: list=%s signed out, keeping %d items", s.policy.List, n)
		return Result{Outcome: OutcomeSignedOut, Items: n}
	}
	s.state = Syncing
	s.mu.Unlock()

	// Local writes queued before the transition must land before the read.
	if err := s.writer.flush(ctx); err != nil {
		s.logger.Warnf("liststore: list=%s flush before sync error=%v", s.policy.List, err)
	}
	local := snapshot
	if s.local.Available() {
		local = localstore.ReadList[T](s.local, s.policy.List.LocalKey(), s.logger)
	}

	outcome, resolved, readErr := s.resolve(s.withToken(ctx, token), userID, local)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Infof("liststore: list=%s user_id=%s sync superseded", s.policy.List, userID)
		return Result{Outcome: OutcomeSuperseded, UserID: userID, Err: readErr}
	}

	replayed := len(s.pending)
	s.state = Synced
	if outcome == OutcomeFailed {
		s.pending = nil
		s.logger.Warnf("liststore: list=%s user_id=%s sync failed, keeping in-memory list error=%v", s.policy.List, userID, readErr)
		return Result{Outcome: outcome, UserID: userID, Items: len(s.items), Err: readErr}
	}

	items := resolved
	for _, fn := range s.pending {
		items = fn(clone(items))
	}
	s.pending = nil
	s.items = items

	if outcome != OutcomeEqual || replayed > 0 {
		s.persistLocked(userID, clone(items))
	}
	if s.policy.ClearLocalAfterSync {
		key := s.policy.List.LocalKey()
		s.enqueue(func(context.Context) {
			localstore.Clear(s.local, key, s.logger)
		})
	}
	s.logger.Infof("liststore: list=%s user_id=%s sync outcome=%s items=%d replayed=%d", s.policy.List, userID, outcome, len(items), replayed)
	return Result{Outcome: outcome, UserID: userID, Items: len(items), Replayed: replayed}
}

func (s *Store[T]) resolve(ctx context.Context, userID string, local []T) (Outcome, []T, error) {
	if s.remote == nil {
		return OutcomeFailed, nil, errors.New("no remote repository")
	}
	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	rec, err := s.remote.Get(readCtx, s.policy.List, userID)
	cancel()
	if errors.Is(err, domain.ErrNotFound) {
		return OutcomeFirstSync, local, nil
	}
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("read remote %s: %w", s.policy.List, err)
	}

	var remote []T
	if len(rec.Items) > 0 {
		if err := json.Unmarshal(rec.Items, &remote); err != nil {
			return OutcomeFailed, nil, fmt.Errorf("decode remote %s: %w", s.policy.List, err)
		}
	}
	if s.policy.Equal(local, remote) {
		return OutcomeEqual, remote, nil
	}
	if s.policy.Resolve == nil {
		return OutcomeResolved, remote, nil
	}
	return OutcomeResolved, s.policy.Resolve(ctx, clone(local), clone(remote)), nil
}

// Flush waits until every write queued so far has completed.
func (s *Store[T]) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close drains pending writes. Later updates stay in memory.
func (s *Store[T]) Close(ctx context.Context) error {
	return s.writer.close(ctx)
}

func (s *Store[T]) persistLocked(userID string, items []T) {
	list := s.policy.List
	if userID == "" {
		s.enqueue(func(context.Context) {
			localstore.WriteList(s.local, list.LocalKey(), items, s.logger)
		})
		return
	}
	if s.remote == nil {
		return
	}
	token := s.tokenLocked()
	s.enqueue(func(ctx context.Context) {
		ctx = s.withToken(ctx, token)
		if items == nil {
			items = []T{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			s.logger.Warnf("liststore: list=%s user_id=%s encode error=%v", list, userID, err)
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
		if _, err := s.remote.Upsert(ctx, list, userID, raw); err != nil {
			s.logger.Warnf("liststore: list=%s user_id=%s remote write error=%v", list, userID, err)
		}
	})
}

// tokenLocked refreshes the cached token of the store's user from the token
// source. The cached value is kept once the source has moved to another user.
func (s *Store[T]) tokenLocked() string {
	if s.tokens == nil || s.userID == "" {
		return s.token
	}
	if token, ok := s.tokens.TokenFor(s.userID); ok {
		s.token = token
	}
	return s.token
}

func (s *Store[T]) withToken(ctx context.Context, token string) context.Context {
	if s.tokens == nil {
		return ctx
	}
	return remotelist.WithToken(ctx, token)
}

func (s *Store[T]) enqueue(run func(context.Context)) {
	if !s.writer.enqueue(run) {
		s.logger.Debugf("liststore: list=%s closed, write dropped", s.policy.List)
	}
}

// SameItems reports whether a and b hold the same items regardless of
// order, comparing their JSON encodings key by key.
func SameItems[T Keyed](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	for i := range ca {
		if ca[i].key != cb[i].key || !bytes.Equal(ca[i].raw, cb[i].raw) {
			return false
		}
	}
	return true
}

type keyedJSON struct {
	key string
	raw []byte
}

func canonical[T Keyed](items []T) ([]keyedJSON, error) {
	out := make([]keyedJSON, 0, len(items))
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		out = append(out, keyedJSON{key: it.Key(), raw: raw})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].key != out[j].key {
			return out[i].key < out[j].key
		}
		return bytes.Compare(out[i].raw, out[j].raw) < 0
	})
	return out, nil
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
