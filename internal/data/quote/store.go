// Package quote persists exchange-rate quotes as per-year lists keyed by
// provider and currency pair.
package quote

import (
	"context"
	"errors"
	"fmt"

	"fxpub/internal/fxpb"
)

// ErrNotFound reports that no quote list is stored under a key.
var ErrNotFound = errors.New("quote list not found")

// Key addresses one stored quote list. Every quote in the list belongs to
// the same provider and currency pair and is dated within the same year.
type Key struct {
	Provider string
	Base     string
	Quote    string
	Year     int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%04d", k.Provider, k.Base, k.Quote, k.Year)
}

// Store is a quote data store. Stored lists are kept sorted chronologically
// and free of duplicate identities.
type Store interface {
	// Read returns the quote list stored under key. It returns ErrNotFound
	// when nothing is stored, and an error wrapping fxpb.ErrDecode when the
	// stored bytes are corrupt.
	Read(ctx context.Context, key Key) (*fxpb.QuoteList, error)

	// Merge combines quotes with the stored list, new quotes winning
	// identity ties, and replaces the stored list with the result. Merging
	// into a missing list creates it.
	Merge(ctx context.Context, key Key, quotes []*fxpb.Quote) error

	// Keys enumerates the keys stored for a provider, ordered by base
	// currency, quote currency and year.
	Keys(ctx context.Context, providerCode string) ([]Key, error)
}
