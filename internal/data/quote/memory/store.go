// Package memory implements an in-memory quote store, used in tests and as
// a reference for the conformance suite.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
)

type store struct {
	mu    sync.Mutex
	lists map[quote.Key][]*fxpb.Quote
}

// New creates an empty in-memory quote store.
func New() quote.Store {
	return &store{lists: make(map[quote.Key][]*fxpb.Quote)}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = make(map[quote.Key][]*fxpb.Quote)
}

func (s *store) Read(_ context.Context, key quote.Key) (*fxpb.QuoteList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", quote.ErrNotFound, key)
	}
	return &fxpb.QuoteList{Quotes: slices.Clone(list)}, nil
}

func (s *store) Merge(_ context.Context, key quote.Key, quotes []*fxpb.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = quote.Merge(s.lists[key], quotes)
	return nil
}

func (s *store) Keys(_ context.Context, providerCode string) ([]quote.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []quote.Key
	for key := range s.lists {
		if key.Provider == providerCode {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b quote.Key) int {
		return cmp.Or(
			strings.Compare(a.Base, b.Base),
			strings.Compare(a.Quote, b.Quote),
			cmp.Compare(a.Year, b.Year),
		)
	})
	return keys, nil
}
