package fxpb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestMarshal_MatchesProtobufWireFormat(t *testing.T) {
	// Golden bytes produced by a reference protobuf implementation for
	// Date{year: 2023, month: 1, day: 2}.
	expected := []byte{0x08, 0xE7, 0x0F, 0x10, 0x01, 0x18, 0x02}

	require.Equal(t, expected, Marshal(&Date{Year: 2023, Month: 1, Day: 2}))
}

func TestMarshal_OmitsZeroValues(t *testing.T) {
	require.Empty(t, Marshal(&Quote{}))
	require.Empty(t, Marshal(&Money{}))
	require.Empty(t, Marshal(&CurrencyList{}))
}

func TestMarshalUnmarshal_Quote(t *testing.T) {
	quote := &Quote{
		ProviderCode:      "MUFG",
		Date:              &Date{Year: 2023, Month: 1, Day: 2},
		BaseCurrencyCode:  "USD",
		QuoteCurrencyCode: "JPY",
		Ask:               &Money{CurrencyCode: "JPY", Units: 112, Nanos: 250000000},
		Bid:               &Money{CurrencyCode: "JPY", Units: 110, Nanos: 250000000},
		Mid:               &Money{CurrencyCode: "JPY", Units: 111, Nanos: 250000000},
	}

	var decoded Quote
	require.NoError(t, Unmarshal(Marshal(quote), &decoded))

	require.Equal(t, quote, &decoded)
}

func TestMarshalUnmarshal_NegativeAmounts(t *testing.T) {
	// Negative varints are sign-extended to ten bytes on the wire.
	money := &Money{CurrencyCode: "JPY", Units: -1, Nanos: -750000000}

	var decoded Money
	require.NoError(t, Unmarshal(Marshal(money), &decoded))

	require.Equal(t, money, &decoded)
}

func TestMarshalUnmarshal_QuoteList(t *testing.T) {
	list := &QuoteList{Quotes: []*Quote{
		{ProviderCode: "MOCK", Date: &Date{Year: 2023, Month: 1, Day: 1}, BaseCurrencyCode: "USD", QuoteCurrencyCode: "JPY"},
		{ProviderCode: "MOCK", Date: &Date{Year: 2023, Month: 1, Day: 2}, BaseCurrencyCode: "USD", QuoteCurrencyCode: "JPY"},
	}}

	var decoded QuoteList
	require.NoError(t, Unmarshal(Marshal(list), &decoded))

	require.Equal(t, list, &decoded)
}

func TestMarshalUnmarshal_CurrencyList(t *testing.T) {
	list := &CurrencyList{Currencies: []*Currency{
		{
			AlphabeticCode: "USD",
			NumericCode:    "840",
			Name:           "US Dollar",
			MinorUnits:     2,
			Countries:      []string{"UNITED STATES OF AMERICA (THE)", "ECUADOR"},
		},
		{
			AlphabeticCode: "XEU",
			NumericCode:    "954",
			Name:           "European Currency Unit (E.C.U)",
			WithdrawalDate: &Date{Year: 1999, Month: 1},
		},
	}}

	var decoded CurrencyList
	require.NoError(t, Unmarshal(Marshal(list), &decoded))

	require.Equal(t, list, &decoded)
}

func TestMarshalUnmarshal_ProviderList(t *testing.T) {
	list := &ProviderList{Providers: []*Provider{
		{
			Code:                     "MUFG",
			Name:                     "MUFG Bank, Ltd.",
			SupportedBaseCurrencies:  []string{"USD", "EUR"},
			SupportedQuoteCurrencies: []string{"JPY"},
		},
	}}

	var decoded ProviderList
	require.NoError(t, Unmarshal(Marshal(list), &decoded))

	require.Equal(t, list, &decoded)
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	b := Marshal(&Money{CurrencyCode: "JPY", Units: 112})
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "from a future schema revision")
	b = protowire.AppendTag(b, 16, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	var decoded Money
	require.NoError(t, Unmarshal(b, &decoded))

	require.Equal(t, &Money{CurrencyCode: "JPY", Units: 112}, &decoded)
}

func TestUnmarshal_Corrupt(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "garbage", data: []byte{0xFF, 0xFF, 0xFF}},
		{name: "truncated length prefix", data: []byte{0x0A, 0x05, 0x01}},
		{name: "truncated varint", data: []byte{0x10, 0x80}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var decoded Quote
			err := Unmarshal(tc.data, &decoded)

			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestUnmarshal_CorruptNestedRecord(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0xFF})

	var decoded Quote
	err := Unmarshal(b, &decoded)

	require.ErrorIs(t, err, ErrDecode)
}

func TestQuote_JSONUsesProtoNames(t *testing.T) {
	quote := &Quote{
		ProviderCode:      "MUFG",
		Date:              &Date{Year: 2023, Month: 1, Day: 2},
		BaseCurrencyCode:  "USD",
		QuoteCurrencyCode: "JPY",
		Mid:               &Money{CurrencyCode: "JPY", Units: 111, Nanos: 250000000},
	}

	b, err := json.Marshal(quote)
	require.NoError(t, err)

	expected := `{` +
		`"providerCode":"MUFG",` +
		`"date":{"year":2023,"month":1,"day":2},` +
		`"baseCurrencyCode":"USD",` +
		`"quoteCurrencyCode":"JPY",` +
		`"mid":{"currencyCode":"JPY","units":"111","nanos":250000000}` +
		`}`
	require.JSONEq(t, expected, string(b))
}

func TestQuote_JSONOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(&Quote{ProviderCode: "MUFG"})
	require.NoError(t, err)

	require.JSONEq(t, `{"providerCode":"MUFG"}`, string(b))
}
