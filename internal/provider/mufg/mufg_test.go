package mufg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"fxpub/internal/fxpb"
	"fxpub/internal/retry"
)

// dayPage mirrors the live markup, including the rows after the first that
// never open with <tr>.
const dayPage = `<html>
<head><meta http-equiv="Content-Type" content="text/html; charset=euc-jp"></head>
<body>
<table class="data-table5" border="1">
<tr><th>Currency Name</th><th>通貨名</th><th>通貨</th><th>TTS</th><th>TTB</th><th>TTM</th></tr>
<tr>
<td>US Dollar</td><td>米ドル</td><td>USD</td><td>112.25</td><td>110.25</td><td>111.25</td>
</tr>
<td>Euro</td><td>ユーロ</td><td>EUR</td><td>131.5</td><td>129.5</td><td>130.5</td>
</tr>
<td>UAE Dirham</td><td>ＵＡＥディルハム</td><td>AED</td><td>*****</td><td>*****</td><td>30.29</td>
</tr>
<td>Nameless</td><td>通貨コードなし</td><td></td><td>1.00</td><td>1.00</td><td>1.00</td>
</tr>
<td>All Bad</td><td>値なし</td><td>XXX</td><td>*</td><td>*</td><td>*</td>
</tr>
</table>
</body>
</html>
`

const holidayPage = `<html>
<head><meta http-equiv="Content-Type" content="text/html; charset=euc-jp"></head>
<body><p>該当するデータはありません。</p></body>
</html>
`

func shiftJIS(t *testing.T, page string) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(page))
	require.NoError(t, err)
	return encoded
}

func newProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(server.Client(), retry.NewRetrier(retry.Limit(1)))
	require.NoError(t, err)
	p.baseURL = server.URL
	return p
}

func servePage(t *testing.T, page string) (*Provider, *int) {
	t.Helper()
	var mu sync.Mutex
	requests := 0
	p := newProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		_, _ = w.Write(shiftJIS(t, page))
	}))
	return p, &requests
}

// --- descriptor ---

func TestDescriptor(t *testing.T) {
	descriptor := Descriptor()

	require.Equal(t, "MUFG", descriptor.Code)
	require.Equal(t, "MUFG Bank, Ltd.", descriptor.Name)
	require.Len(t, descriptor.SupportedBaseCurrencies, 31)
	require.Contains(t, descriptor.SupportedBaseCurrencies, "USD")
	require.Contains(t, descriptor.SupportedBaseCurrencies, "TRY")
	require.Equal(t, []string{"JPY"}, descriptor.SupportedQuoteCurrencies)
}

// --- quotes ---

func TestProvider_GetQuote(t *testing.T) {
	var requestedURL string
	p := newProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedURL = r.URL.String()
		_, _ = w.Write(shiftJIS(t, dayPage))
	}))

	quote, err := p.GetQuote(context.Background(), "USD", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Equal(t, "/fx/past_3month_result.php?y=2023&m=01&d=02", requestedURL)
	require.NotNil(t, quote)
	require.Equal(t, "MUFG", quote.ProviderCode)
	require.Equal(t, &fxpb.Date{Year: 2023, Month: 1, Day: 2}, quote.Date)
	require.Equal(t, "USD", quote.BaseCurrencyCode)
	require.Equal(t, "JPY", quote.QuoteCurrencyCode)
	require.Equal(t, "112.25", fxpb.FormatMoney(quote.Ask))
	require.Equal(t, "110.25", fxpb.FormatMoney(quote.Bid))
	require.Equal(t, "111.25", fxpb.FormatMoney(quote.Mid))
}

func TestProvider_GetQuote_KeepsPartialPrices(t *testing.T) {
	p, _ := servePage(t, dayPage)

	quote, err := p.GetQuote(context.Background(), "AED", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.NotNil(t, quote)
	require.Nil(t, quote.Ask)
	require.Nil(t, quote.Bid)
	require.Equal(t, "30.29", fxpb.FormatMoney(quote.Mid))
}

func TestProvider_GetQuote_SkipsRowsWithoutPrices(t *testing.T) {
	p, _ := servePage(t, dayPage)

	quote, err := p.GetQuote(context.Background(), "XXX", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Nil(t, quote)
}

func TestProvider_GetQuote_BaseNotOnPage(t *testing.T) {
	p, _ := servePage(t, dayPage)

	quote, err := p.GetQuote(context.Background(), "GBP", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Nil(t, quote)
}

func TestProvider_GetQuote_NoQuoteTable(t *testing.T) {
	p, _ := servePage(t, holidayPage)

	quote, err := p.GetQuote(context.Background(), "USD", "JPY", time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Nil(t, quote)
}

func TestProvider_GetQuote_CachesDayPage(t *testing.T) {
	p, requests := servePage(t, dayPage)
	ctx := context.Background()

	_, err := p.GetQuote(ctx, "USD", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = p.GetQuote(ctx, "EUR", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 1, *requests)

	_, err = p.GetQuote(ctx, "USD", "JPY", time.Date(2023, time.January, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 2, *requests)
}

func TestProvider_GetQuote_UnsupportedQuoteCurrency(t *testing.T) {
	p, requests := servePage(t, dayPage)

	_, err := p.GetQuote(context.Background(), "USD", "USD", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.ErrorContains(t, err, `currency "USD" not supported`)
	require.Equal(t, 0, *requests)
}

func TestProvider_GetQuote_ServerError(t *testing.T) {
	p := newProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := p.GetQuote(context.Background(), "USD", "JPY", time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC))

	require.ErrorContains(t, err, "non-200 status code")
}
