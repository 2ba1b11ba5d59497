package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"fxpub/internal/fxpb"
)

var providerCSVColumns = []string{"name", "code"}

var currencyCSVColumns = []string{
	"alphabeticCode",
	"numericCode",
	"name",
	"minorUnits",
	"countries",
	"withdrawalDate",
}

// writeProviders publishes the provider catalog: the full list as
// provider.* plus one provider/<CODE>.* per provider.
func (b *Builder) writeProviders(v1Dir string) error {
	list := &fxpb.ProviderList{Providers: b.providers}
	b.log.Debugf("writing %d providers to %s...", len(list.Providers), filepath.Join(v1Dir, "provider.json"))

	if err := os.MkdirAll(v1Dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", v1Dir)
	}

	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "failed to encode provider.json")
	}
	if err := writeFile(filepath.Join(v1Dir, "provider.json"), data, b.log); err != nil {
		return err
	}

	// An empty catalog still publishes the CSV file, with no header.
	var csvData []byte
	if len(list.Providers) > 0 {
		rows := make([][]string, 0, len(list.Providers))
		for _, p := range list.Providers {
			rows = append(rows, []string{p.Name, p.Code})
		}
		if csvData, err = csvDoc(providerCSVColumns, rows); err != nil {
			return errors.Wrap(err, "failed to encode provider.csv")
		}
	}
	if err := writeFile(filepath.Join(v1Dir, "provider.csv"), csvData, b.log); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(v1Dir, "provider.binpb"), fxpb.Marshal(list), b.log); err != nil {
		return err
	}

	providerDir := filepath.Join(v1Dir, "provider")
	if err := os.MkdirAll(providerDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", providerDir)
	}

	for _, p := range list.Providers {
		data, err := json.Marshal(p)
		if err != nil {
			return errors.Wrapf(err, "failed to encode provider %s", p.Code)
		}
		if err := writeFile(filepath.Join(providerDir, p.Code+".json"), data, b.log); err != nil {
			return err
		}

		csvData, err := csvDoc(providerCSVColumns, [][]string{{p.Name, p.Code}})
		if err != nil {
			return errors.Wrapf(err, "failed to encode provider %s", p.Code)
		}
		if err := writeFile(filepath.Join(providerDir, p.Code+".csv"), csvData, b.log); err != nil {
			return err
		}

		if err := writeFile(filepath.Join(providerDir, p.Code+".binpb"), fxpb.Marshal(p), b.log); err != nil {
			return err
		}
	}
	return nil
}

// writeCurrencies publishes the currency catalog as currency.* plus one
// currency/<CODE>.* per currency, ordered by alphabetic code.
func (b *Builder) writeCurrencies(v1Dir string, catalog map[string]*fxpb.Currency) error {
	codes := make([]string, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	list := &fxpb.CurrencyList{Currencies: make([]*fxpb.Currency, 0, len(codes))}
	for _, code := range codes {
		list.Currencies = append(list.Currencies, catalog[code])
	}

	b.log.Debugf("writing %d currencies to %s...", len(list.Currencies), filepath.Join(v1Dir, "currency.json"))

	if err := os.MkdirAll(v1Dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", v1Dir)
	}

	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "failed to encode currency.json")
	}
	if err := writeFile(filepath.Join(v1Dir, "currency.json"), data, b.log); err != nil {
		return err
	}

	var csvData []byte
	if len(list.Currencies) > 0 {
		rows := make([][]string, 0, len(list.Currencies))
		for _, c := range list.Currencies {
			row, err := currencyCSVRow(c)
			if err != nil {
				return errors.Wrapf(err, "failed to encode currency %s", c.AlphabeticCode)
			}
			rows = append(rows, row)
		}
		if csvData, err = csvDoc(currencyCSVColumns, rows); err != nil {
			return errors.Wrap(err, "failed to encode currency.csv")
		}
	}
	if err := writeFile(filepath.Join(v1Dir, "currency.csv"), csvData, b.log); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(v1Dir, "currency.binpb"), fxpb.Marshal(list), b.log); err != nil {
		return err
	}

	currencyDir := filepath.Join(v1Dir, "currency")
	if err := os.MkdirAll(currencyDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", currencyDir)
	}

	for _, c := range list.Currencies {
		data, err := json.Marshal(c)
		if err != nil {
			return errors.Wrapf(err, "failed to encode currency %s", c.AlphabeticCode)
		}
		if err := writeFile(filepath.Join(currencyDir, c.AlphabeticCode+".json"), data, b.log); err != nil {
			return err
		}

		row, err := currencyCSVRow(c)
		if err != nil {
			return errors.Wrapf(err, "failed to encode currency %s", c.AlphabeticCode)
		}
		csvData, err := csvDoc(currencyCSVColumns, [][]string{row})
		if err != nil {
			return errors.Wrapf(err, "failed to encode currency %s", c.AlphabeticCode)
		}
		if err := writeFile(filepath.Join(currencyDir, c.AlphabeticCode+".csv"), csvData, b.log); err != nil {
			return err
		}

		if err := writeFile(filepath.Join(currencyDir, c.AlphabeticCode+".binpb"), fxpb.Marshal(c), b.log); err != nil {
			return err
		}
	}
	return nil
}

func currencyCSVRow(c *fxpb.Currency) ([]string, error) {
	withdrawal, err := fxpb.FormatDate(c.WithdrawalDate)
	if err != nil {
		return nil, err
	}
	return []string{
		c.AlphabeticCode,
		c.NumericCode,
		c.Name,
		strconv.Itoa(int(c.MinorUnits)),
		strings.Join(c.Countries, ","),
		withdrawal,
	}, nil
}
