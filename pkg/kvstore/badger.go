package kvstore

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/luxfi/safehash/pkg/encoding"
	"github.com/luxfi/safehash/pkg/logger"
)

var ErrNotFound = errors.New("kvstore: key not found")

// KVStore is the byte-level store used for lookup caches.
type KVStore interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// BadgerKVStore is an implementation of the KVStore interface using BadgerDB.
type BadgerKVStore struct {
	db  *badger.DB
	ttl time.Duration
}

type BadgerConfig struct {
	// DBPath is the data directory. Empty opens an in-memory store.
	DBPath string
	// TTL applies to every Put; zero keeps entries forever.
	TTL time.Duration
}

// NewBadgerKVStore opens the BadgerDB at config.DBPath.
func NewBadgerKVStore(config BadgerConfig) (*BadgerKVStore, error) {
	opts := badger.DefaultOptions(config.DBPath)
	if config.DBPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{}).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logger.Info("Connected to BadgerDB successfully!", "path", config.DBPath, "in_memory", config.DBPath == "")
	return &BadgerKVStore{db: db, ttl: config.TTL}, nil
}

// Put stores a key-value pair in BadgerDB.
func (b *BadgerKVStore) Put(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get retrieves the value associated with a key. Missing and expired keys
// return ErrNotFound.
func (b *BadgerKVStore) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

// Keys lists the live keys starting with prefix.
func (b *BadgerKVStore) Keys(prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Delete removes a key-value pair from BadgerDB.
func (b *BadgerKVStore) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Backup streams a full backup of the store to w.
func (b *BadgerKVStore) Backup(w io.Writer) error {
	_, err := b.db.Backup(w, 0)
	return err
}

// Close closes the BadgerDB.
func (b *BadgerKVStore) Close() error {
	return b.db.Close()
}

// PutObject stores v CBOR-encoded under key.
func PutObject(store KVStore, key string, v interface{}) error {
	data, err := encoding.StructToCborBytes(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Put(key, data)
}

// GetObject decodes the CBOR value under key into v.
func GetObject(store KVStore, key string, v interface{}) error {
	data, err := store.Get(key)
	if err != nil {
		return err
	}
	if err := encoding.CborBytesToStruct(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// badgerLogger routes badger's internal logging into the shared logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error("badger: "+strings.TrimSpace(fmt.Sprintf(format, args...)), nil)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn("badger: " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug("badger: " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug("badger: " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}
