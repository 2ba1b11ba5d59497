package quote

import (
	"cmp"
	"slices"
	"strings"

	"fxpub/internal/fxpb"
)

// Pair identifies a provider's currency pair across years.
type Pair struct {
	Provider string
	Base     string
	Quote    string
}

// LatestTracker keeps the most recent quote seen for each currency pair.
// A quote replaces the held one only when its date is strictly later, so
// of two quotes dated the same day the first observed wins.
type LatestTracker struct {
	latest map[Pair]*fxpb.Quote
}

func NewLatestTracker() *LatestTracker {
	return &LatestTracker{latest: make(map[Pair]*fxpb.Quote)}
}

// Observe feeds quotes scanned for a provider into the tracker.
func (t *LatestTracker) Observe(providerCode string, quotes []*fxpb.Quote) {
	for _, q := range quotes {
		pair := Pair{Provider: providerCode, Base: q.BaseCurrencyCode, Quote: q.QuoteCurrencyCode}
		current, ok := t.latest[pair]
		if !ok || q.Date.Compare(current.Date) > 0 {
			t.latest[pair] = q
		}
	}
}

// Pairs lists the tracked pairs ordered by provider, base and quote code.
func (t *LatestTracker) Pairs() []Pair {
	pairs := make([]Pair, 0, len(t.latest))
	for pair := range t.latest {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		return cmp.Or(
			strings.Compare(a.Provider, b.Provider),
			strings.Compare(a.Base, b.Base),
			strings.Compare(a.Quote, b.Quote),
		)
	})
	return pairs
}

// Latest returns the most recent quote observed for a pair.
func (t *LatestTracker) Latest(pair Pair) (*fxpb.Quote, bool) {
	q, ok := t.latest[pair]
	return q, ok
}
