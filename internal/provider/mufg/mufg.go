// Package mufg scrapes the daily JPY exchange rates published by MUFG Bank.
package mufg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/japanese"

	"fxpub/internal/fxpb"
	"fxpub/internal/retry"
)

const (
	// ProviderCode identifies MUFG in the provider registry and data store.
	ProviderCode = "MUFG"

	providerName = "MUFG Bank, Ltd."

	defaultBaseURL = "https://murc-kawasesouba.jp"

	jpyCode = "JPY"

	// quoteTableClass marks the rate table on the daily page.
	quoteTableClass = "data-table5"

	// cellsPerQuote is one table row: English name, Japanese name, code,
	// TTS, TTB and TTM prices.
	cellsPerQuote = 6

	// dayCacheSize bounds the page memo cache. Update runs revisit the
	// same day once per base currency, a year partition at a time, so the
	// cache must hold at least a year of day pages.
	dayCacheSize = 366
)

var supportedBaseCurrencies = []string{
	"USD", "EUR", "CAD", "GBP", "CHF", "DKK", "NOK", "SEK", "AUD", "NZD",
	"HKD", "MYR", "SGD", "SAR", "AED", "CNY", "THB", "INR", "PKR", "KWD",
	"QAR", "IDR", "MXN", "KRW", "PHP", "ZAR", "CZK", "RUB", "HUF", "PLN",
	"TRY",
}

var supportedQuoteCurrencies = []string{jpyCode}

// Descriptor returns MUFG's static catalog metadata.
func Descriptor() *fxpb.Provider {
	return &fxpb.Provider{
		Code:                     ProviderCode,
		Name:                     providerName,
		SupportedBaseCurrencies:  slices.Clone(supportedBaseCurrencies),
		SupportedQuoteCurrencies: slices.Clone(supportedQuoteCurrencies),
	}
}

type Provider struct {
	httpClient *http.Client
	retrier    retry.Retrier
	cache      *ristretto.Cache
	log        *logrus.Entry

	baseURL string
}

func (p *Provider) Descriptor() *fxpb.Provider { return Descriptor() }

// GetQuote returns MUFG's quote for a currency pair on a day, or nil when
// the bank published no rate, as on weekends and holidays. The daily page
// carries every base currency at once, so it is fetched once and memoized.
func (p *Provider) GetQuote(ctx context.Context, baseCode, quoteCode string, day time.Time) (*fxpb.Quote, error) {
	quotes, err := p.dayQuotes(ctx, quoteCode, day)
	if err != nil {
		return nil, err
	}

	for _, q := range quotes {
		if q.BaseCurrencyCode == baseCode {
			return q, nil
		}
	}
	return nil, nil
}

func (p *Provider) dayQuotes(ctx context.Context, quoteCode string, day time.Time) ([]*fxpb.Quote, error) {
	if !slices.Contains(supportedQuoteCurrencies, quoteCode) {
		return nil, errors.Errorf("currency %q not supported", quoteCode)
	}

	key := quoteCode + ":" + day.Format("2006-01-02")
	if v, ok := p.cache.Get(key); ok {
		if quotes, ok := v.([]*fxpb.Quote); ok {
			return quotes, nil
		}
	}

	quotes, err := p.fetchDayQuotes(ctx, day)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, quotes, 1)
	// Wait until the entry is applied so the page is not refetched for the
	// next base currency of the same day.
	p.cache.Wait()
	return quotes, nil
}

func (p *Provider) fetchDayQuotes(ctx context.Context, day time.Time) ([]*fxpb.Quote, error) {
	url := fmt.Sprintf("%s/fx/past_3month_result.php?y=%04d&m=%02d&d=%02d",
		p.baseURL, day.Year(), int(day.Month()), day.Day())
	p.log.Debugf("GET %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	var httpResp *http.Response
	_, err = p.retrier.Retry(
		func() error {
			httpResp, err = p.httpClient.Do(req)
			return err
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("received non-200 status code: %d", httpResp.StatusCode)
	}

	// Pages declare EUC-JP but are actually Shift-JIS, so the charset is
	// forced here. Bytes that fail to decode become replacement runes.
	body, err := io.ReadAll(japanese.ShiftJIS.NewDecoder().Reader(httpResp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse page")
	}

	return p.parseQuotes(doc, day), nil
}

func (p *Provider) parseQuotes(doc *html.Node, day time.Time) []*fxpb.Quote {
	table := findQuoteTable(doc)
	if table == nil {
		// Most likely a day without published quotes.
		return nil
	}

	// The page's markup is broken: rows after the first close with </tr>
	// but never open, so cells are read straight off the table instead of
	// row by row.
	var quotes []*fxpb.Quote
	var q *fxpb.Quote
	for i, text := range cellTexts(table) {
		switch i % cellsPerQuote {
		case 0:
			// English currency name, ignored.
			q = &fxpb.Quote{
				ProviderCode:      ProviderCode,
				Date:              fxpb.DateOf(day),
				QuoteCurrencyCode: jpyCode,
			}
		case 1:
			// Japanese currency name, ignored.
		case 2:
			q.BaseCurrencyCode = text
		case 3:
			if m, err := fxpb.ParseMoney(jpyCode, text); err != nil {
				p.log.Debugf("tts: %v", err)
			} else {
				q.Ask = m
			}
		case 4:
			if m, err := fxpb.ParseMoney(jpyCode, text); err != nil {
				p.log.Debugf("ttb: %v", err)
			} else {
				q.Bid = m
			}
		case 5:
			if m, err := fxpb.ParseMoney(jpyCode, text); err != nil {
				p.log.Debugf("ttm: %v", err)
			} else {
				q.Mid = m
			}

			if q.BaseCurrencyCode != "" && (q.Ask != nil || q.Bid != nil || q.Mid != nil) {
				quotes = append(quotes, q)
			}
		}
	}
	return quotes
}

func findQuoteTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, quoteTableClass) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if table := findQuoteTable(c); table != nil {
			return table
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && slices.Contains(strings.Fields(attr.Val), class) {
			return true
		}
	}
	return false
}

func cellTexts(table *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "td" {
			cells = append(cells, nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return cells
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func New(httpClient *http.Client, retrier retry.Retrier) (*Provider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * dayCacheSize,
		MaxCost:     dayCacheSize,
		BufferItems: 64,
		// Costs are day-page counts, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create day quote cache failed: %w", err)
	}
	return &Provider{
		httpClient: httpClient,
		retrier:    retrier,
		cache:      cache,
		log:        logrus.WithField("provider", ProviderCode),
		baseURL:    defaultBaseURL,
	}, nil
}
