// Package memory implements an in-memory currency catalog store, used in
// tests and as a reference for the conformance suite.
package memory

import (
	"context"
	"slices"
	"sync"

	"fxpub/internal/data/currency"
	"fxpub/internal/fxpb"
)

type store struct {
	mu         sync.Mutex
	saved      bool
	currencies []*fxpb.Currency
}

// New creates an empty in-memory catalog store.
func New() currency.Store {
	return &store{}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = false
	s.currencies = nil
}

func (s *store) Load(_ context.Context) (map[string]*fxpb.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return nil, currency.ErrNotFound
	}
	catalog := make(map[string]*fxpb.Currency, len(s.currencies))
	for _, c := range s.currencies {
		catalog[c.AlphabeticCode] = c
	}
	return catalog, nil
}

func (s *store) Save(_ context.Context, currencies []*fxpb.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = true
	s.currencies = slices.Clone(currencies)
	return nil
}
