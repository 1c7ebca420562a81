package localstore

import "ramana-bouquets/internal/domain"

// Noop stands in where no client storage exists (server processes, batch jobs).
type Noop struct{}

func (Noop) Available() bool { return false }

func (Noop) Get(string) (string, error) { return "", domain.ErrNotFound }

func (Noop) Set(string, string) error { return nil }

func (Noop) Remove(string) error { return nil }
