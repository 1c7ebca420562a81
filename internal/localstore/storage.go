// Package localstore is the client-side durable key/value storage used while
// no user is signed in.
package localstore

import (
	"encoding/json"
	"errors"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"
)

// Storage is a string-keyed store scoped to one client. Get returns
// domain.ErrNotFound for a missing key.
type Storage interface {
	Available() bool
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// ReadList decodes the list stored under key. Missing, malformed or
// unavailable storage all yield an empty list.
func ReadList[T any](s Storage, key string, logger *logging.Logger) []T {
	if s == nil || !s.Available() {
		return nil
	}
	raw, err := s.Get(key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.OrDiscard(logger).Warnf("localstore: read key=%s error=%v", key, err)
		}
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.OrDiscard(logger).Debugf("localstore: discard malformed key=%s error=%v", key, err)
		return nil
	}
	return items
}

// WriteList stores items under key. Failures are logged, never returned.
func WriteList[T any](s Storage, key string, items []T, logger *logging.Logger) {
	if s == nil || !s.Available() {
		return
	}
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		logging.OrDiscard(logger).Warnf("localstore: encode key=%s error=%v", key, err)
		return
	}
	if err := s.Set(key, string(b)); err != nil {
		logging.OrDiscard(logger).Warnf("localstore: write key=%s error=%v", key, err)
	}
}

// Clear removes key, logging failures.
func Clear(s Storage, key string, logger *logging.Logger) {
	if s == nil || !s.Available() {
		return
	}
	if err := s.Remove(key); err != nil {
		logging.OrDiscard(logger).Warnf("localstore: remove key=%s error=%v", key, err)
	}
}
