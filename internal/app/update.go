package app

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"fxpub/internal/config"
	"fxpub/internal/data/currency"
	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
	"fxpub/internal/iso"
	"fxpub/internal/provider"
)

// CatalogClient refreshes the ISO 4217 currency catalog.
type CatalogClient interface {
	Refresh(ctx context.Context) ([]*fxpb.Currency, error)
}

var newCatalogClient = func(appCfg *config.AppConfig) CatalogClient {
	return iso.NewClient(newHTTPClient(appCfg), newRetrier(appCfg))
}

func updateCommand(ctx context.Context, appCfg *config.AppConfig, registry *provider.Registry, args []string) error {
	today := time.Now().UTC().Format(dateLayout)

	flags := flag.NewFlagSet("update", flag.ContinueOnError)
	var providerCodes multiFlag
	flags.Var(&providerCodes, "provider", "update these providers (repeatable, default all)")
	start := flags.String("start", today, "update data starting with this date")
	end := flags.String("end", today, "update data up to and including this date")
	dataDir := flags.String("data-dir", appCfg.Data.Dir, "data directory")
	if err := flags.Parse(args); err != nil {
		return err
	}

	startDate, err := time.Parse(dateLayout, *start)
	if err != nil {
		return errors.Wrapf(err, "invalid start date %q", *start)
	}
	endDate, err := time.Parse(dateLayout, *end)
	if err != nil {
		return errors.Wrapf(err, "invalid end date %q", *end)
	}

	providers, err := registry.Resolve(providerCodes)
	if err != nil {
		return err
	}

	quotes, currencies, cleanup, err := openStores(ctx, *dataDir, appCfg.Data.DatabaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	return updateData(ctx, uuid.NewString(), newCatalogClient(appCfg), currencies, providers, quotes, startDate, endDate)
}

// updateData refreshes the currency catalog and merges every provider's
// quotes for the date range into the store, one year partition at a time.
func updateData(ctx context.Context, execID string, catalog CatalogClient, currencies currency.Store, providers []provider.Provider, quotes quote.Store, start, end time.Time) error {
	log := logrus.WithField("execution_id", execID)
	log.Debug("running update")

	if err := refreshCatalog(ctx, catalog, currencies, log); err != nil {
		return err
	}

	for _, p := range providers {
		if err := updateProviderQuotes(ctx, p, quotes, start, end, log); err != nil {
			return err
		}
	}
	return nil
}

func refreshCatalog(ctx context.Context, catalog CatalogClient, currencies currency.Store, log *logrus.Entry) error {
	list, err := catalog.Refresh(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to refresh currency catalog")
	}
	if err := currencies.Save(ctx, list); err != nil {
		return errors.Wrap(err, "failed to save currency catalog")
	}
	log.Infof("refreshed %d currencies", len(list))
	return nil
}

func updateProviderQuotes(ctx context.Context, p provider.Provider, quotes quote.Store, start, end time.Time, log *logrus.Entry) error {
	descriptor := p.Descriptor()

	for yearStart := time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC); !yearStart.After(end); yearStart = yearStart.AddDate(1, 0, 0) {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Clamp the year partition's range to the requested dates.
		rangeStart := yearStart
		if start.Year() == yearStart.Year() {
			rangeStart = start
		}
		rangeEnd := time.Date(yearStart.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		if end.Year() == yearStart.Year() {
			rangeEnd = end
		}

		for _, baseCode := range descriptor.SupportedBaseCurrencies {
			for _, quoteCode := range descriptor.SupportedQuoteCurrencies {
				downloaded, err := downloadQuotes(ctx, p, baseCode, quoteCode, rangeStart, rangeEnd, log)
				if err != nil {
					return err
				}

				key := quote.Key{Provider: descriptor.Code, Base: baseCode, Quote: quoteCode, Year: yearStart.Year()}
				if err := quotes.Merge(ctx, key, downloaded); err != nil {
					return errors.Wrapf(err, "failed to merge quotes for %s", key)
				}
			}
		}
	}
	return nil
}

// downloadQuotes fetches one quote per day over the range. Days without a
// published quote are dropped; failed days are logged and skipped so one
// bad page does not lose the rest of the range.
func downloadQuotes(ctx context.Context, p provider.Provider, baseCode, quoteCode string, start, end time.Time, log *logrus.Entry) ([]*fxpb.Quote, error) {
	log.Infof("downloading %s quotes for currency pair %s/%s for %s to %s...",
		p.Descriptor().Code, baseCode, quoteCode, start.Format(dateLayout), end.Format(dateLayout))

	var quotes []*fxpb.Quote
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		q, err := p.GetQuote(ctx, baseCode, quoteCode, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warnf("skipping %s/%s quote for %s", baseCode, quoteCode, day.Format(dateLayout))
			continue
		}
		if q != nil {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
