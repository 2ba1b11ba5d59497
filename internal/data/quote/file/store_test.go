package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxpub/internal/data/quote"
	"fxpub/internal/data/quote/tests"
	"fxpub/internal/fxpb"
)

func TestQuoteFileStore(t *testing.T) {
	dir := t.TempDir()
	testStore := New(dir)
	teardown := func() {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, entry := range entries {
			require.NoError(t, os.RemoveAll(filepath.Join(dir, entry.Name())))
		}
	}
	tests.RunTests(t, testStore, teardown)
}

func TestQuoteFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	testStore := New(dir)
	key := quote.Key{Provider: "MUFG", Base: "USD", Quote: "JPY", Year: 2023}

	require.NoError(t, testStore.Merge(ctx, key, []*fxpb.Quote{{
		ProviderCode:      "MUFG",
		Date:              &fxpb.Date{Year: 2023, Month: 1, Day: 2},
		BaseCurrencyCode:  "USD",
		QuoteCurrencyCode: "JPY",
	}}))

	data, err := os.ReadFile(filepath.Join(dir, "MUFG", "USD", "JPY", "2023.binpb"))
	require.NoError(t, err)

	var list fxpb.QuoteList
	require.NoError(t, fxpb.Unmarshal(data, &list))
	require.Len(t, list.Quotes, 1)
}

func TestQuoteFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	testStore := New(dir)
	key := quote.Key{Provider: "MUFG", Base: "USD", Quote: "JPY", Year: 2023}

	path := filepath.Join(dir, "MUFG", "USD", "JPY", "2023.binpb")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xFF}, 0o644))

	_, err := testStore.Read(ctx, key)
	assert.ErrorIs(t, err, fxpb.ErrDecode)

	err = testStore.Merge(ctx, key, nil)
	assert.ErrorIs(t, err, fxpb.ErrDecode)
}

func TestQuoteFileStore_KeysIgnoresStrayFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	testStore := New(dir)
	key := quote.Key{Provider: "MUFG", Base: "USD", Quote: "JPY", Year: 2023}

	require.NoError(t, testStore.Merge(ctx, key, nil))
	for _, stray := range []string{
		filepath.Join(dir, "MUFG", "README.md"),
		filepath.Join(dir, "MUFG", "USD", "JPY", "notes.txt"),
		filepath.Join(dir, "MUFG", "USD", "JPY", "23.binpb"),
	} {
		require.NoError(t, os.WriteFile(stray, []byte("stray"), 0o644))
	}

	keys, err := testStore.Keys(ctx, "MUFG")
	require.NoError(t, err)
	assert.Equal(t, []quote.Key{key}, keys)
}

func TestQuoteFileStore_KeysMissingRoot(t *testing.T) {
	ctx := context.Background()
	testStore := New(filepath.Join(t.TempDir(), "missing"))

	keys, err := testStore.Keys(ctx, "MUFG")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
