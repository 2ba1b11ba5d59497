// Package tests holds a conformance suite that every quote store backing
// must pass.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
)

func RunTests(t *testing.T, s quote.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s quote.Store){
		testReadMissing,
		testMergeAndRead,
		testMergeReplacesByIdentity,
		testMergeIdempotent,
		testMergeSortsChronologically,
		testMergeEmptyCreatesList,
		testKeys,
	} {
		tf(t, s)
		teardown()
	}
}

func testKey(year int) quote.Key {
	return quote.Key{Provider: "MOCK", Base: "USD", Quote: "JPY", Year: year}
}

func testQuote(day int32, mid string) *fxpb.Quote {
	m, err := fxpb.ParseMoney("JPY", mid)
	if err != nil {
		panic(err)
	}
	return &fxpb.Quote{
		ProviderCode:      "MOCK",
		Date:              &fxpb.Date{Year: 2023, Month: 1, Day: day},
		BaseCurrencyCode:  "USD",
		QuoteCurrencyCode: "JPY",
		Mid:               m,
	}
}

func testReadMissing(t *testing.T, s quote.Store) {
	t.Run("testReadMissing", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Read(ctx, testKey(2023))
		assert.ErrorIs(t, err, quote.ErrNotFound)
	})
}

func testMergeAndRead(t *testing.T, s quote.Store) {
	t.Run("testMergeAndRead", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(1, "130"), testQuote(2, "131")}))

		list, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)
		require.Len(t, list.Quotes, 2)
		assert.Equal(t, int32(1), list.Quotes[0].Date.Day)
		assert.Equal(t, int32(2), list.Quotes[1].Date.Day)
		assert.Equal(t, "130", fxpb.FormatMoney(list.Quotes[0].Mid))
	})
}

func testMergeReplacesByIdentity(t *testing.T, s quote.Store) {
	t.Run("testMergeReplacesByIdentity", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(1, "130"), testQuote(2, "131")}))
		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(2, "140")}))

		list, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)
		require.Len(t, list.Quotes, 2)
		assert.Equal(t, "130", fxpb.FormatMoney(list.Quotes[0].Mid))
		assert.Equal(t, "140", fxpb.FormatMoney(list.Quotes[1].Mid))
	})
}

func testMergeIdempotent(t *testing.T, s quote.Store) {
	t.Run("testMergeIdempotent", func(t *testing.T) {
		ctx := context.Background()
		quotes := []*fxpb.Quote{testQuote(1, "130"), testQuote(2, "131")}

		require.NoError(t, s.Merge(ctx, testKey(2023), quotes))
		first, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)

		require.NoError(t, s.Merge(ctx, testKey(2023), quotes))
		second, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func testMergeSortsChronologically(t *testing.T, s quote.Store) {
	t.Run("testMergeSortsChronologically", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(3, "132")}))
		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(5, "134"), testQuote(1, "130")}))

		list, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)
		require.Len(t, list.Quotes, 3)
		var days []int32
		for _, q := range list.Quotes {
			days = append(days, q.Date.Day)
		}
		assert.Equal(t, []int32{1, 3, 5}, days)
	})
}

func testMergeEmptyCreatesList(t *testing.T, s quote.Store) {
	t.Run("testMergeEmptyCreatesList", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Merge(ctx, testKey(2023), nil))

		list, err := s.Read(ctx, testKey(2023))
		require.NoError(t, err)
		assert.Empty(t, list.Quotes)

		keys, err := s.Keys(ctx, "MOCK")
		require.NoError(t, err)
		assert.Equal(t, []quote.Key{testKey(2023)}, keys)
	})
}

func testKeys(t *testing.T, s quote.Store) {
	t.Run("testKeys", func(t *testing.T) {
		ctx := context.Background()

		eur := testQuote(1, "160")
		eur.BaseCurrencyCode = "EUR"
		other := testQuote(1, "130")
		other.ProviderCode = "OTHER"

		require.NoError(t, s.Merge(ctx, testKey(2023), []*fxpb.Quote{testQuote(1, "130")}))
		require.NoError(t, s.Merge(ctx, testKey(2022), []*fxpb.Quote{testQuote(1, "128")}))
		require.NoError(t, s.Merge(ctx, quote.Key{Provider: "MOCK", Base: "EUR", Quote: "JPY", Year: 2023}, []*fxpb.Quote{eur}))
		require.NoError(t, s.Merge(ctx, quote.Key{Provider: "OTHER", Base: "USD", Quote: "JPY", Year: 2023}, []*fxpb.Quote{other}))

		keys, err := s.Keys(ctx, "MOCK")
		require.NoError(t, err)
		assert.Equal(t, []quote.Key{
			{Provider: "MOCK", Base: "EUR", Quote: "JPY", Year: 2023},
			{Provider: "MOCK", Base: "USD", Quote: "JPY", Year: 2022},
			{Provider: "MOCK", Base: "USD", Quote: "JPY", Year: 2023},
		}, keys)

		keys, err = s.Keys(ctx, "NONE")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
