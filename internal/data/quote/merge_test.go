package quote

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fxpub/internal/fxpb"
)

func mockQuote(day int32, mid string) *fxpb.Quote {
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

func TestMerge_NewQuotesWinIdentityTies(t *testing.T) {
	existing := []*fxpb.Quote{mockQuote(1, "130"), mockQuote(2, "131")}
	incoming := []*fxpb.Quote{mockQuote(2, "140")}

	merged := Merge(existing, incoming)

	require.Len(t, merged, 2)
	require.Equal(t, "130", fxpb.FormatMoney(merged[0].Mid))
	require.Equal(t, "140", fxpb.FormatMoney(merged[1].Mid))
}

func TestMerge_KeepsExistingQuotes(t *testing.T) {
	existing := []*fxpb.Quote{mockQuote(1, "130")}
	incoming := []*fxpb.Quote{mockQuote(2, "140")}

	merged := Merge(existing, incoming)

	require.Len(t, merged, 2)
	require.Equal(t, int32(1), merged[0].Date.Day)
	require.Equal(t, int32(2), merged[1].Date.Day)
}

func TestMerge_Idempotent(t *testing.T) {
	existing := []*fxpb.Quote{mockQuote(1, "130")}
	incoming := []*fxpb.Quote{mockQuote(2, "140"), mockQuote(3, "141")}

	once := Merge(existing, incoming)
	twice := Merge(once, incoming)

	require.Equal(t, once, twice)
}

func TestMerge_SortsChronologically(t *testing.T) {
	existing := []*fxpb.Quote{mockQuote(4, "133")}
	incoming := []*fxpb.Quote{mockQuote(3, "132"), mockQuote(1, "130"), mockQuote(2, "131")}

	merged := Merge(existing, incoming)

	var days []int32
	for _, q := range merged {
		days = append(days, q.Date.Day)
	}
	require.Equal(t, []int32{1, 2, 3, 4}, days)
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	existing := []*fxpb.Quote{mockQuote(2, "131")}
	incoming := []*fxpb.Quote{mockQuote(3, "132"), mockQuote(1, "130")}

	Merge(existing, incoming)

	require.Equal(t, int32(3), incoming[0].Date.Day)
	require.Equal(t, int32(1), incoming[1].Date.Day)
	require.Equal(t, int32(2), existing[0].Date.Day)
}

func TestIdentityOf_IgnoresPrices(t *testing.T) {
	a := mockQuote(1, "130")
	b := mockQuote(1, "999")

	require.Equal(t, IdentityOf(a), IdentityOf(b))
}

func TestIdentityOf_NilDate(t *testing.T) {
	q := &fxpb.Quote{ProviderCode: "MOCK", BaseCurrencyCode: "USD", QuoteCurrencyCode: "JPY"}

	id := IdentityOf(q)

	require.Equal(t, Identity{Provider: "MOCK", Base: "USD", Quote: "JPY"}, id)
}

func TestKey_String(t *testing.T) {
	key := Key{Provider: "MUFG", Base: "USD", Quote: "JPY", Year: 2023}

	require.Equal(t, "MUFG/USD/JPY/2023", key.String())
}
