package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// keyPrefix namespaces cache entries inside the badger keyspace.
const keyPrefix = "cache:"

// BadgerCache is the slow persistent tier, an embedded badger key/value
// store holding JSON entry envelopes. Expiry stays lazy in this layer so
// both tiers share the same TTL semantics.
type BadgerCache struct {
	db     *badger.DB
	now    func() time.Time
	logger *zap.Logger
}

// OpenBadger opens (or creates) the persistent tier at the given directory.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logging is too chatty; zap covers us

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	if logger != nil {
		logger.Info("Persistent cache opened", zap.String("dir", dir))
	}
	return &BadgerCache{db: db, now: time.Now, logger: logger}, nil
}

// Set stores the entry envelope under the namespaced key.
func (c *BadgerCache) Set(key string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Get returns the live entry. An expired or undecodable entry is deleted
// as a side effect and reported absent.
func (c *BadgerCache) Get(key string) (Entry, bool, error) {
	var e Entry
	var found bool

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &e); err != nil {
				// Treat undecodable payloads as absent; drop them below.
				return nil
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if !found || e.Expired(c.now()) {
		_ = c.Delete(key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Delete removes the exact key; unknown keys are a no-op.
func (c *BadgerCache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry, leaving other namespaces untouched.
func (c *BadgerCache) Clear() error {
	keys, err := c.Keys("")
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(keyPrefix + key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keys enumerates stored keys with the given prefix (empty for all),
// without the internal namespace.
func (c *BadgerCache) Keys(prefix string) ([]string, error) {
	full := []byte(keyPrefix + prefix)
	var keys []string

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = full

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(full); it.ValidForPrefix(full); it.Next() {
			key := string(it.Item().Key())
			keys = append(keys, key[len(keyPrefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate cache keys: %w", err)
	}
	return keys, nil
}

// Close releases the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
