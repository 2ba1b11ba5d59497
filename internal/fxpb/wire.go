package fxpb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrDecode reports that persisted bytes are not a valid wire-format record.
var ErrDecode = errors.New("failed to decode record")

type message interface {
	appendWire(b []byte) []byte
	consumeWire(b []byte) error
}

// Marshal renders a record in protobuf wire format. Zero-valued scalar
// fields and nil sub-records are omitted. The result is never nil, so an
// empty record still stores as zero-length bytes rather than SQL NULL.
func Marshal(m message) []byte {
	return m.appendWire([]byte{})
}

// Unmarshal parses protobuf wire format into a record. Unknown fields are
// skipped so records written by newer schema revisions still load. Malformed
// input yields an error wrapping ErrDecode.
func Unmarshal(data []byte, m message) error {
	if err := m.consumeWire(data); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// --- encoding helpers ---

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendStrings(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendMessage(b []byte, num protowire.Number, m message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendWire(nil))
}

// --- decoding helpers ---

// fieldFunc consumes the payload of one known field. Payload interpretation
// depends on the wire type recorded alongside.
type fieldFunc func(payload []byte, varint uint64) error

// consumeFields walks every field in b, dispatching known (number, type)
// pairs to fields and skipping everything else.
func consumeFields(b []byte, fields map[protowire.Number]map[protowire.Type]fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		fn := fields[num][typ]
		if fn == nil {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(nil, v); err != nil {
				return err
			}
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(v, 0); err != nil {
				return err
			}
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func setString(dst *string) map[protowire.Type]fieldFunc {
	return bytesField(func(payload []byte) error {
		*dst = string(payload)
		return nil
	})
}

func addString(dst *[]string) map[protowire.Type]fieldFunc {
	return bytesField(func(payload []byte) error {
		*dst = append(*dst, string(payload))
		return nil
	})
}

func setInt32(dst *int32) map[protowire.Type]fieldFunc {
	return varintField(func(v uint64) error {
		*dst = int32(v)
		return nil
	})
}

func setInt64(dst *int64) map[protowire.Type]fieldFunc {
	return varintField(func(v uint64) error {
		*dst = int64(v)
		return nil
	})
}

func bytesField(fn func(payload []byte) error) map[protowire.Type]fieldFunc {
	return map[protowire.Type]fieldFunc{
		protowire.BytesType: func(payload []byte, _ uint64) error { return fn(payload) },
	}
}

func varintField(fn func(v uint64) error) map[protowire.Type]fieldFunc {
	return map[protowire.Type]fieldFunc{
		protowire.VarintType: func(_ []byte, v uint64) error { return fn(v) },
	}
}

// --- per-record codecs ---

func (d *Date) appendWire(b []byte) []byte {
	b = appendInt32(b, 1, d.Year)
	b = appendInt32(b, 2, d.Month)
	b = appendInt32(b, 3, d.Day)
	return b
}

func (d *Date) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: setInt32(&d.Year),
		2: setInt32(&d.Month),
		3: setInt32(&d.Day),
	})
}

func (m *Money) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.CurrencyCode)
	b = appendInt64(b, 2, m.Units)
	b = appendInt32(b, 3, m.Nanos)
	return b
}

func (m *Money) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: setString(&m.CurrencyCode),
		2: setInt64(&m.Units),
		3: setInt32(&m.Nanos),
	})
}

func (c *Currency) appendWire(b []byte) []byte {
	b = appendString(b, 1, c.AlphabeticCode)
	b = appendString(b, 2, c.NumericCode)
	b = appendString(b, 3, c.Name)
	b = appendInt32(b, 4, c.MinorUnits)
	b = appendStrings(b, 5, c.Countries)
	if c.WithdrawalDate != nil {
		b = appendMessage(b, 6, c.WithdrawalDate)
	}
	return b
}

func (c *Currency) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: setString(&c.AlphabeticCode),
		2: setString(&c.NumericCode),
		3: setString(&c.Name),
		4: setInt32(&c.MinorUnits),
		5: addString(&c.Countries),
		6: bytesField(func(payload []byte) error {
			d := new(Date)
			if err := d.consumeWire(payload); err != nil {
				return err
			}
			c.WithdrawalDate = d
			return nil
		}),
	})
}

func (l *CurrencyList) appendWire(b []byte) []byte {
	for _, c := range l.Currencies {
		b = appendMessage(b, 1, c)
	}
	return b
}

func (l *CurrencyList) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: bytesField(func(payload []byte) error {
			c := new(Currency)
			if err := c.consumeWire(payload); err != nil {
				return err
			}
			l.Currencies = append(l.Currencies, c)
			return nil
		}),
	})
}

func (p *Provider) appendWire(b []byte) []byte {
	b = appendString(b, 1, p.Code)
	b = appendString(b, 2, p.Name)
	b = appendStrings(b, 3, p.SupportedBaseCurrencies)
	b = appendStrings(b, 4, p.SupportedQuoteCurrencies)
	return b
}

func (p *Provider) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: setString(&p.Code),
		2: setString(&p.Name),
		3: addString(&p.SupportedBaseCurrencies),
		4: addString(&p.SupportedQuoteCurrencies),
	})
}

func (l *ProviderList) appendWire(b []byte) []byte {
	for _, p := range l.Providers {
		b = appendMessage(b, 1, p)
	}
	return b
}

func (l *ProviderList) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: bytesField(func(payload []byte) error {
			p := new(Provider)
			if err := p.consumeWire(payload); err != nil {
				return err
			}
			l.Providers = append(l.Providers, p)
			return nil
		}),
	})
}

func (q *Quote) appendWire(b []byte) []byte {
	b = appendString(b, 1, q.ProviderCode)
	if q.Date != nil {
		b = appendMessage(b, 2, q.Date)
	}
	b = appendString(b, 3, q.BaseCurrencyCode)
	b = appendString(b, 4, q.QuoteCurrencyCode)
	if q.Ask != nil {
		b = appendMessage(b, 5, q.Ask)
	}
	if q.Bid != nil {
		b = appendMessage(b, 6, q.Bid)
	}
	if q.Mid != nil {
		b = appendMessage(b, 7, q.Mid)
	}
	return b
}

func (q *Quote) consumeWire(b []byte) error {
	moneyField := func(dst **Money) map[protowire.Type]fieldFunc {
		return bytesField(func(payload []byte) error {
			m := new(Money)
			if err := m.consumeWire(payload); err != nil {
				return err
			}
			*dst = m
			return nil
		})
	}
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: setString(&q.ProviderCode),
		2: bytesField(func(payload []byte) error {
			d := new(Date)
			if err := d.consumeWire(payload); err != nil {
				return err
			}
			q.Date = d
			return nil
		}),
		3: setString(&q.BaseCurrencyCode),
		4: setString(&q.QuoteCurrencyCode),
		5: moneyField(&q.Ask),
		6: moneyField(&q.Bid),
		7: moneyField(&q.Mid),
	})
}

func (l *QuoteList) appendWire(b []byte) []byte {
	for _, q := range l.Quotes {
		b = appendMessage(b, 1, q)
	}
	return b
}

func (l *QuoteList) consumeWire(b []byte) error {
	return consumeFields(b, map[protowire.Number]map[protowire.Type]fieldFunc{
		1: bytesField(func(payload []byte) error {
			q := new(Quote)
			if err := q.consumeWire(payload); err != nil {
				return err
			}
			l.Quotes = append(l.Quotes, q)
			return nil
		}),
	})
}
