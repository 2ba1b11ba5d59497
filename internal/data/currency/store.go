// Package currency persists the ISO 4217 currency catalog.
package currency

import (
	"context"
	"errors"

	"fxpub/internal/fxpb"
)

// ErrNotFound reports that no catalog has been saved yet.
var ErrNotFound = errors.New("currency catalog not found")

// Store is a currency catalog store. The catalog is small and always read
// and replaced as a whole.
type Store interface {
	// Load returns the saved catalog keyed by alphabetic code. It returns
	// ErrNotFound when no catalog was saved, and an error wrapping
	// fxpb.ErrDecode when the stored bytes are corrupt.
	Load(ctx context.Context) (map[string]*fxpb.Currency, error)

	// Save replaces the saved catalog wholesale.
	Save(ctx context.Context, currencies []*fxpb.Currency) error
}
