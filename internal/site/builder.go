// Package site renders the versioned static API files from the persisted
// quote and currency data.
package site

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"fxpub/internal/data/currency"
	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
)

// Builder writes the static API site for a set of providers from the data
// stores. Every document is written at v1/ in three encodings: JSON, CSV
// and length-delimited binary records.
type Builder struct {
	quotes     quote.Store
	currencies currency.Store
	providers  []*fxpb.Provider
	siteDir    string
	log        *logrus.Entry
}

// Build renders the whole site: the provider catalog, the currency catalog
// and the quote rollups for every stored year, ending with the latest quote
// per currency pair.
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()
	v1Dir := filepath.Join(b.siteDir, "v1")

	if err := b.writeProviders(v1Dir); err != nil {
		return err
	}

	catalog, err := b.currencies.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load currency catalog")
	}
	if err := b.writeCurrencies(v1Dir, catalog); err != nil {
		return err
	}

	tracker := quote.NewLatestTracker()
	for _, p := range b.providers {
		if err := b.buildProviderQuotes(ctx, v1Dir, p.Code, tracker); err != nil {
			return err
		}
	}

	for _, pair := range tracker.Pairs() {
		latest, ok := tracker.Latest(pair)
		if !ok {
			continue
		}
		dir := pairDir(v1Dir, pair.Provider, pair.Base, pair.Quote)
		if err := writeQuote(dir, "latest", latest, b.log); err != nil {
			return err
		}
	}

	b.log.Infof("API built in %.2f seconds", time.Since(start).Seconds())
	return nil
}

func (b *Builder) buildProviderQuotes(ctx context.Context, v1Dir, providerCode string, tracker *quote.LatestTracker) error {
	keys, err := b.quotes.Keys(ctx, providerCode)
	if err != nil {
		return errors.Wrapf(err, "failed to list quote data for provider %s", providerCode)
	}

	for _, key := range keys {
		b.log.Infof("building %s/%s for %d...", key.Base, key.Quote, key.Year)

		// A single missing or corrupt year file loses that file's documents,
		// not the whole publish.
		list, err := b.quotes.Read(ctx, key)
		if err != nil {
			b.log.WithError(err).Warnf("skipping quote data %s", key)
			continue
		}

		tracker.Observe(providerCode, list.Quotes)

		if err := writeYearQuotes(pairDir(v1Dir, key.Provider, key.Base, key.Quote), key.Year, list, b.log); err != nil {
			return err
		}
	}
	return nil
}

func pairDir(v1Dir, providerCode, baseCode, quoteCode string) string {
	return filepath.Join(v1Dir, "provider", providerCode, "quote", baseCode, quoteCode)
}

func csvDoc(columns []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func writeFile(path string, data []byte, log *logrus.Entry) error {
	log.Debugf("writing %s...", path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func NewBuilder(quotes quote.Store, currencies currency.Store, providers []*fxpb.Provider, siteDir string) *Builder {
	return &Builder{
		quotes:     quotes,
		currencies: currencies,
		providers:  providers,
		siteDir:    siteDir,
		log:        logrus.WithField("component", "site"),
	}
}
