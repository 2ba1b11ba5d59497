// Package postgres implements a currency catalog store on PostgreSQL. The
// whole catalog lives in a single wire-encoded row.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fxpub/internal/data/currency"
	"fxpub/internal/fxpb"
)

type store struct {
	pool *pgxpool.Pool
}

func (s *store) Load(ctx context.Context) (map[string]*fxpb.Currency, error) {
	const q = `
        select data from fx_currency_catalog where id = 1;
    `

	var data []byte
	if err := s.pool.QueryRow(ctx, q).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, currency.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select currency catalog: %w", err)
	}

	list := new(fxpb.CurrencyList)
	if err := fxpb.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("currency catalog: %w", err)
	}

	catalog := make(map[string]*fxpb.Currency, len(list.Currencies))
	for _, c := range list.Currencies {
		catalog[c.AlphabeticCode] = c
	}
	return catalog, nil
}

func (s *store) Save(ctx context.Context, currencies []*fxpb.Currency) error {
	const q = `
        insert into fx_currency_catalog (id, data)
        values (1, $1)
        on conflict (id)
        do update set data = excluded.data, updated_at = now();
    `

	list := &fxpb.CurrencyList{Currencies: currencies}
	if _, err := s.pool.Exec(ctx, q, fxpb.Marshal(list)); err != nil {
		return fmt.Errorf("failed to upsert currency catalog: %w", err)
	}
	return nil
}

func New(pool *pgxpool.Pool) currency.Store {
	return &store{pool: pool}
}
