// Package provider defines the quote provider contract and a registry of
// the known providers.
package provider

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"fxpub/internal/fxpb"
)

// Provider fetches exchange-rate quotes from one external data source.
type Provider interface {
	// Descriptor returns the provider's static catalog metadata, including
	// the currency pairs it can quote.
	Descriptor() *fxpb.Provider

	// GetQuote returns the provider's quote for a currency pair on a day,
	// or nil when the provider published no quote for that day.
	GetQuote(ctx context.Context, baseCode, quoteCode string, day time.Time) (*fxpb.Quote, error)
}

// Factory builds a ready-to-use provider instance.
type Factory func() (Provider, error)

type registration struct {
	descriptor *fxpb.Provider
	factory    Factory
}

// Registry maps provider codes to catalog metadata and factories. The
// metadata is available without instantiating the provider, so publishing
// does not require network clients.
type Registry struct {
	registrations map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{registrations: make(map[string]registration)}
}

// Register adds a provider under its descriptor's code.
func (r *Registry) Register(descriptor *fxpb.Provider, factory Factory) {
	r.registrations[descriptor.Code] = registration{descriptor: descriptor, factory: factory}
}

// Codes lists the registered provider codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.registrations))
	for code := range r.registrations {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Descriptors lists the catalog metadata of every registered provider,
// ordered by code.
func (r *Registry) Descriptors() []*fxpb.Provider {
	descriptors := make([]*fxpb.Provider, 0, len(r.registrations))
	for _, code := range r.Codes() {
		descriptors = append(descriptors, r.registrations[code].descriptor)
	}
	return descriptors
}

// Resolve builds provider instances for the given codes, in the given
// order, or for every registered provider when codes is empty.
func (r *Registry) Resolve(codes []string) ([]Provider, error) {
	if len(codes) == 0 {
		codes = r.Codes()
	}

	providers := make([]Provider, 0, len(codes))
	for _, code := range codes {
		reg, ok := r.registrations[code]
		if !ok {
			return nil, errors.Errorf("unknown provider %q (choose from %s)", code, strings.Join(r.Codes(), ", "))
		}
		p, err := reg.factory()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider %s", code)
		}
		providers = append(providers, p)
	}
	return providers, nil
}
