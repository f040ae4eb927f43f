package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// DefaultPebbleOptions returns the options used for the ledger database.
func DefaultPebbleOptions(cache *pebble.Cache) *pebble.Options {
	return &pebble.Options{
		Cache:              cache,
		FormatMajorVersion: pebble.FormatNewest,
	}
}

// OpenDefaultPebbleDB opens the database in dir, creating it if needed.
func OpenDefaultPebbleDB(dir string) (*pebble.DB, error) {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()

	db, err := pebble.Open(dir, DefaultPebbleOptions(cache))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	return db, nil
}
