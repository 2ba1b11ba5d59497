package quote

import (
	"slices"

	"fxpub/internal/fxpb"
)

// Identity identifies a quote within a store: one provider, one currency
// pair, one day. Prices are not part of the identity.
type Identity struct {
	Provider string
	Base     string
	Quote    string
	Year     int32
	Month    int32
	Day      int32
}

// IdentityOf extracts the identity of a quote.
func IdentityOf(q *fxpb.Quote) Identity {
	id := Identity{
		Provider: q.ProviderCode,
		Base:     q.BaseCurrencyCode,
		Quote:    q.QuoteCurrencyCode,
	}
	if q.Date != nil {
		id.Year, id.Month, id.Day = q.Date.Year, q.Date.Month, q.Date.Day
	}
	return id
}

// Merge combines existing and incoming quotes. An incoming quote replaces
// any existing quote with the same identity, existing quotes without a
// replacement are kept, and the result is sorted chronologically. Neither
// input slice is modified.
func Merge(existing, incoming []*fxpb.Quote) []*fxpb.Quote {
	merged := slices.Clone(incoming)

	seen := make(map[Identity]struct{}, len(incoming))
	for _, q := range incoming {
		seen[IdentityOf(q)] = struct{}{}
	}
	for _, q := range existing {
		if _, ok := seen[IdentityOf(q)]; !ok {
			merged = append(merged, q)
		}
	}

	Sort(merged)
	return merged
}

// Sort orders quotes chronologically, earliest first. The sort is stable,
// so quotes dated the same day keep their relative order.
func Sort(quotes []*fxpb.Quote) {
	slices.SortStableFunc(quotes, func(a, b *fxpb.Quote) int {
		return a.Date.Compare(b.Date)
	})
}
