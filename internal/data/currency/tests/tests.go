// Package tests holds a conformance suite that every currency catalog
// store backing must pass.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxpub/internal/data/currency"
	"fxpub/internal/fxpb"
)

func RunTests(t *testing.T, s currency.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s currency.Store){
		testLoadMissing,
		testSaveAndLoad,
		testSaveReplacesWholesale,
		testSaveEmptyCatalog,
	} {
		tf(t, s)
		teardown()
	}
}

func usd() *fxpb.Currency {
	return &fxpb.Currency{
		AlphabeticCode: "USD",
		NumericCode:    "840",
		Name:           "US Dollar",
		MinorUnits:     2,
		Countries:      []string{"UNITED STATES OF AMERICA (THE)"},
	}
}

func jpy() *fxpb.Currency {
	return &fxpb.Currency{
		AlphabeticCode: "JPY",
		NumericCode:    "392",
		Name:           "Yen",
		Countries:      []string{"JAPAN"},
	}
}

func testLoadMissing(t *testing.T, s currency.Store) {
	t.Run("testLoadMissing", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, currency.ErrNotFound)
	})
}

func testSaveAndLoad(t *testing.T, s currency.Store) {
	t.Run("testSaveAndLoad", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, []*fxpb.Currency{usd(), jpy()}))

		catalog, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 2)
		assert.Equal(t, usd(), catalog["USD"])
		assert.Equal(t, jpy(), catalog["JPY"])
	})
}

func testSaveReplacesWholesale(t *testing.T, s currency.Store) {
	t.Run("testSaveReplacesWholesale", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, []*fxpb.Currency{usd(), jpy()}))
		require.NoError(t, s.Save(ctx, []*fxpb.Currency{jpy()}))

		catalog, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 1)
		assert.NotContains(t, catalog, "USD")
		assert.Equal(t, jpy(), catalog["JPY"])
	})
}

func testSaveEmptyCatalog(t *testing.T, s currency.Store) {
	t.Run("testSaveEmptyCatalog", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, nil))

		catalog, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, catalog)
	})
}
