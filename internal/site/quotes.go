package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"fxpub/internal/fxpb"
)

var quoteCSVColumns = []string{
	"date",
	"providerCode",
	"baseCurrencyCode",
	"quoteCurrencyCode",
	"ask",
	"bid",
	"mid",
}

// writeYearQuotes writes a year's rollup files and fans out into the month
// and day rollups below them.
func writeYearQuotes(dir string, year int, list *fxpb.QuoteList, log *logrus.Entry) error {
	stem := fmt.Sprintf("%04d", year)
	log.Debugf("writing %d quotes to %s...", len(list.Quotes), filepath.Join(dir, stem+".json"))

	if err := writeQuoteList(dir, stem, list, log); err != nil {
		return err
	}

	months, order := partitionByMonth(list)
	for _, month := range order {
		if err := writeMonthQuotes(filepath.Join(dir, stem), month, months[month], log); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthQuotes(dir string, month int32, list *fxpb.QuoteList, log *logrus.Entry) error {
	stem := fmt.Sprintf("%02d", month)
	log.Debugf("writing %d quotes to %s...", len(list.Quotes), filepath.Join(dir, stem+".json"))

	if err := writeQuoteList(dir, stem, list, log); err != nil {
		return err
	}

	for _, q := range list.Quotes {
		if err := writeQuote(filepath.Join(dir, stem), fmt.Sprintf("%02d", q.Date.Day), q, log); err != nil {
			return err
		}
	}
	return nil
}

// partitionByMonth groups a year's quotes into per-month lists, keeping
// months in first-appearance order.
func partitionByMonth(list *fxpb.QuoteList) (map[int32]*fxpb.QuoteList, []int32) {
	months := make(map[int32]*fxpb.QuoteList)
	var order []int32
	for _, q := range list.Quotes {
		m, ok := months[q.Date.Month]
		if !ok {
			m = &fxpb.QuoteList{}
			months[q.Date.Month] = m
			order = append(order, q.Date.Month)
		}
		m.Quotes = append(m.Quotes, q)
	}
	return months, order
}

func writeQuoteList(dir, stem string, list *fxpb.QuoteList, log *logrus.Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s.json", stem)
	}
	if err := writeFile(filepath.Join(dir, stem+".json"), data, log); err != nil {
		return err
	}

	csvData, err := quotesCSV(list.Quotes)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s.csv", stem)
	}
	if err := writeFile(filepath.Join(dir, stem+".csv"), csvData, log); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, stem+".binpb"), fxpb.Marshal(list), log)
}

// writeQuote writes a single quote's files, used for the day and latest
// stems.
func writeQuote(dir, stem string, q *fxpb.Quote, log *logrus.Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	data, err := json.Marshal(q)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s.json", stem)
	}
	if err := writeFile(filepath.Join(dir, stem+".json"), data, log); err != nil {
		return err
	}

	csvData, err := quotesCSV([]*fxpb.Quote{q})
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s.csv", stem)
	}
	if err := writeFile(filepath.Join(dir, stem+".csv"), csvData, log); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, stem+".binpb"), fxpb.Marshal(q), log)
}

// quotesCSV renders quotes in the fixed column order. The header row is
// always present, even for an empty list.
func quotesCSV(quotes []*fxpb.Quote) ([]byte, error) {
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		date, err := fxpb.FormatDate(q.Date)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{
			date,
			q.ProviderCode,
			q.BaseCurrencyCode,
			q.QuoteCurrencyCode,
			fxpb.FormatMoney(q.Ask),
			fxpb.FormatMoney(q.Bid),
			fxpb.FormatMoney(q.Mid),
		})
	}
	return csvDoc(quoteCSVColumns, rows)
}
