// Package fxpb defines the v1 record schema shared by the data store and the
// published site, together with its binary, JSON and string codecs.
//
// The binary form is protobuf wire format (.binpb files). Field numbers are
// part of the persisted contract and must never be reused or renumbered.
// JSON tags follow proto3 JSON conventions: lowerCamelCase names, zero values
// omitted, int64 rendered as a string.
package fxpb

// Date is a calendar date with optional month and day. A zero Year means the
// date is absent.
type Date struct {
	Year  int32 `json:"year,omitempty"`
	Month int32 `json:"month,omitempty"`
	Day   int32 `json:"day,omitempty"`
}

// Money is an amount of a single currency as whole units plus nanos
// (billionths of a unit). Nanos carries the same sign as the amount, so
// -0.5 is Units 0, Nanos -500000000.
type Money struct {
	CurrencyCode string `json:"currencyCode,omitempty"`
	Units        int64  `json:"units,omitempty,string"`
	Nanos        int32  `json:"nanos,omitempty"`
}

// Currency is one ISO 4217 currency. WithdrawalDate is set only for
// historical currencies and never carries a day.
type Currency struct {
	AlphabeticCode string   `json:"alphabeticCode,omitempty"`
	NumericCode    string   `json:"numericCode,omitempty"`
	Name           string   `json:"name,omitempty"`
	MinorUnits     int32    `json:"minorUnits,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	WithdrawalDate *Date    `json:"withdrawalDate,omitempty"`
}

type CurrencyList struct {
	Currencies []*Currency `json:"currencies,omitempty"`
}

// Provider is the static catalog metadata of a quote provider.
type Provider struct {
	Code                     string   `json:"code,omitempty"`
	Name                     string   `json:"name,omitempty"`
	SupportedBaseCurrencies  []string `json:"supportedBaseCurrencies,omitempty"`
	SupportedQuoteCurrencies []string `json:"supportedQuoteCurrencies,omitempty"`
}

type ProviderList struct {
	Providers []*Provider `json:"providers,omitempty"`
}

// Quote is one provider's exchange rate for a currency pair on one day.
// Any of the three prices may be absent.
type Quote struct {
	ProviderCode      string `json:"providerCode,omitempty"`
	Date              *Date  `json:"date,omitempty"`
	BaseCurrencyCode  string `json:"baseCurrencyCode,omitempty"`
	QuoteCurrencyCode string `json:"quoteCurrencyCode,omitempty"`
	Ask               *Money `json:"ask,omitempty"`
	Bid               *Money `json:"bid,omitempty"`
	Mid               *Money `json:"mid,omitempty"`
}

type QuoteList struct {
	Quotes []*Quote `json:"quotes,omitempty"`
}
