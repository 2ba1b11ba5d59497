// Package postgres implements a quote store on PostgreSQL. Lists are kept
// in their wire encoding, one row per (provider, base, quote, year).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
)

type store struct {
	pool *pgxpool.Pool
}

func (s *store) Read(ctx context.Context, key quote.Key) (*fxpb.QuoteList, error) {
	const q = `
        select data from fx_quote_lists
        where provider_code = $1 and base_code = $2 and quote_code = $3 and year = $4;
    `

	var data []byte
	if err := s.pool.QueryRow(ctx, q, key.Provider, key.Base, key.Quote, key.Year).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", quote.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to select quote list %s: %w", key, err)
	}

	list := new(fxpb.QuoteList)
	if err := fxpb.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("quote list %s: %w", key, err)
	}
	return list, nil
}

func (s *store) Merge(ctx context.Context, key quote.Key, quotes []*fxpb.Quote) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const selectQ = `
        select data from fx_quote_lists
        where provider_code = $1 and base_code = $2 and quote_code = $3 and year = $4
        for update;
    `

	existing := new(fxpb.QuoteList)
	var data []byte
	err = tx.QueryRow(ctx, selectQ, key.Provider, key.Base, key.Quote, key.Year).Scan(&data)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to select quote list %s: %w", key, err)
	default:
		if err := fxpb.Unmarshal(data, existing); err != nil {
			return fmt.Errorf("quote list %s: %w", key, err)
		}
	}

	merged := &fxpb.QuoteList{Quotes: quote.Merge(existing.Quotes, quotes)}

	const upsertQ = `
        insert into fx_quote_lists (provider_code, base_code, quote_code, year, data)
        values ($1, $2, $3, $4, $5)
        on conflict (provider_code, base_code, quote_code, year)
        do update set data = excluded.data, updated_at = now();
    `

	if _, err := tx.Exec(ctx, upsertQ, key.Provider, key.Base, key.Quote, key.Year, fxpb.Marshal(merged)); err != nil {
		return fmt.Errorf("failed to upsert quote list %s: %w", key, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func (s *store) Keys(ctx context.Context, providerCode string) ([]quote.Key, error) {
	const q = `
        select base_code, quote_code, year from fx_quote_lists
        where provider_code = $1
        order by base_code, quote_code, year;
    `

	rows, err := s.pool.Query(ctx, q, providerCode)
	if err != nil {
		return nil, fmt.Errorf("failed to select quote keys: %w", err)
	}
	defer rows.Close()

	var keys []quote.Key
	for rows.Next() {
		key := quote.Key{Provider: providerCode}
		if err := rows.Scan(&key.Base, &key.Quote, &key.Year); err != nil {
			return nil, fmt.Errorf("failed to scan quote key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote keys: %w", err)
	}
	return keys, nil
}

func New(pool *pgxpool.Pool) quote.Store {
	return &store{pool: pool}
}
