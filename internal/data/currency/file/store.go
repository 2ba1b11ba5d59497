// Package file implements a currency catalog store on a single
// <dir>/currencies.binpb file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"fxpub/internal/data/currency"
	"fxpub/internal/fxpb"
)

const catalogFile = "currencies.binpb"

type store struct {
	dir string
	log *logrus.Entry
}

// New creates a catalog store rooted at dir. The directory is created on
// the first save.
func New(dir string) currency.Store {
	return &store{
		dir: dir,
		log: logrus.WithField("store", "currency/file"),
	}
}

func (s *store) Load(_ context.Context) (map[string]*fxpb.Currency, error) {
	path := filepath.Join(s.dir, catalogFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", currency.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read currency catalog: %w", err)
	}

	list := new(fxpb.CurrencyList)
	if err := fxpb.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("currency catalog: %w", err)
	}

	catalog := make(map[string]*fxpb.Currency, len(list.Currencies))
	for _, c := range list.Currencies {
		catalog[c.AlphabeticCode] = c
	}
	s.log.Debugf("loaded %d currencies from %s", len(catalog), path)
	return catalog, nil
}

func (s *store) Save(_ context.Context, currencies []*fxpb.Currency) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(s.dir, catalogFile)
	list := &fxpb.CurrencyList{Currencies: currencies}
	if err := os.WriteFile(path, fxpb.Marshal(list), 0o644); err != nil {
		return fmt.Errorf("failed to write currency catalog: %w", err)
	}

	s.log.Debugf("wrote %d currencies to %s", len(currencies), path)
	return nil
}
