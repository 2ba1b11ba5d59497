package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"fxpub/internal/data/currency"
	currencyfile "fxpub/internal/data/currency/file"
	currencypg "fxpub/internal/data/currency/postgres"
	"fxpub/internal/data/quote"
	quotefile "fxpub/internal/data/quote/file"
	quotepg "fxpub/internal/data/quote/postgres"
	"fxpub/internal/platform/db"
)

// openStores opens the quote and currency stores for the configured
// backing: the file store rooted at the data dir, or PostgreSQL when a
// database URL is configured. The returned func releases the backing.
func openStores(ctx context.Context, dataDir, databaseURL string) (quote.Store, currency.Store, func(), error) {
	if databaseURL == "" {
		return quotefile.New(dataDir), currencyfile.New(dataDir), func() {}, nil
	}

	if err := db.Migrate(ctx, databaseURL); err != nil {
		return nil, nil, nil, err
	}

	pool, err := db.CreatePoolAndPing(ctx, databaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	logrus.Info("✅ Postgres connection successful")

	return quotepg.New(pool), currencypg.New(pool), pool.Close, nil
}
