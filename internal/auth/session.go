// Package auth tracks who is signed in on the client and validates the
// bearer tokens the list API accepts.
package auth

import (
	"sync"
)

// Change describes an identity transition. An empty UserID means signed out.
type Change struct {
	Previous string
	UserID   string
}

// SignedIn reports whether the transition ends with a user signed in.
func (c Change) SignedIn() bool {
	return c.UserID != ""
}

// Session is the client-side auth state observer.
type Session struct {
	mu     sync.RWMutex
	userID string
	token  string

	nextID int
	subs   map[int]func(Change)
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(Change))}
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Token returns the bearer token of the current user, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenFor returns the current token only while userID is the signed-in user.
func (s *Session) TokenFor(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID == "" || userID != s.userID {
		return "", false
	}
	return s.token, true
}

// Subscribe registers fn for identity transitions and returns a function
// that removes it.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SignIn switches to userID. Refreshing the token of the same user is not a
// transition and notifies nobody.
func (s *Session) SignIn(userID, token string) {
	s.set(userID, token)
}

// SignInWithToken verifies token and signs in as its subject.
func (s *Session) SignInWithToken(v *Verifier, token string) (string, error) {
	userID, err := v.UserID(token)
	if err != nil {
		return "", err
	}
	s.set(userID, token)
	return userID, nil
}

func (s *Session) SignOut() {
	s.set("", "")
}

func (s *Session) set(userID, token string) {
	s.mu.Lock()
	prev := s.userID
	s.userID = userID
	s.token = token
	if prev == userID {
		s.mu.Unlock()
		return
	}
	subs := make([]func(Change), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	change := Change{Previous: prev, UserID: userID}
	for _, fn := range subs {
		fn(change)
	}
}
