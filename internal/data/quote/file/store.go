// Package file implements a quote store on a directory tree laid out as
// <dir>/<provider>/<base>/<quote>/<year>.binpb.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"fxpub/internal/data/quote"
	"fxpub/internal/fxpb"
)

// keyPattern matches quote list paths relative to a provider directory.
// Anything else under the tree is ignored.
var keyPattern = regexp.MustCompile(`^([A-Za-z]{3})/([A-Za-z]{3})/([0-9]{4})\.binpb$`)

type store struct {
	dir string
	log *logrus.Entry
}

// New creates a quote store rooted at dir. The directory is created on the
// first write.
func New(dir string) quote.Store {
	return &store{
		dir: dir,
		log: logrus.WithField("store", "quote/file"),
	}
}

func (s *store) Read(_ context.Context, key quote.Key) (*fxpb.QuoteList, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", quote.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote list %s: %w", key, err)
	}

	list := new(fxpb.QuoteList)
	if err := fxpb.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("quote list %s: %w", key, err)
	}

	s.log.Debugf("read %d quotes from %s", len(list.Quotes), path)
	return list, nil
}

func (s *store) Merge(ctx context.Context, key quote.Key, quotes []*fxpb.Quote) error {
	existing, err := s.Read(ctx, key)
	if errors.Is(err, quote.ErrNotFound) {
		existing = new(fxpb.QuoteList)
	} else if err != nil {
		return err
	}

	merged := &fxpb.QuoteList{Quotes: quote.Merge(existing.Quotes, quotes)}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create quote directory: %w", err)
	}
	if err := os.WriteFile(path, fxpb.Marshal(merged), 0o644); err != nil {
		return fmt.Errorf("failed to write quote list %s: %w", key, err)
	}

	s.log.Debugf("wrote %d quotes to %s", len(merged.Quotes), path)
	return nil
}

func (s *store) Keys(_ context.Context, providerCode string) ([]quote.Key, error) {
	root := filepath.Join(s.dir, providerCode)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var keys []quote.Key
	walk := func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		m := keyPattern.FindStringSubmatch(filepath.ToSlash(rel))
		if m == nil {
			return nil
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			return err
		}
		keys = append(keys, quote.Key{Provider: providerCode, Base: m[1], Quote: m[2], Year: year})
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("failed to scan quote store: %w", err)
	}

	// WalkDir visits entries in lexical order, so keys come out ordered by
	// base, quote and year already.
	return keys, nil
}

func (s *store) path(key quote.Key) string {
	return filepath.Join(s.dir, key.Provider, key.Base, key.Quote, fmt.Sprintf("%04d.binpb", key.Year))
}
