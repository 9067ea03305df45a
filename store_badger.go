// ═══════════════════════════════════════════════════════════════════════════════
// BADGER STORE: The Default Transactional Backend
// ═══════════════════════════════════════════════════════════════════════════════
// BadgerStore implements Store on top of dgraph-io/badger/v4, an embedded
// LSM-tree key/value store with MVCC snapshot transactions — exactly the
// ordered-range, point read/write, snapshot-isolated contract Store asks
// for, with nothing above this file needing to know badger is involved.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore wraps a badger.DB to satisfy Store.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadgerStore opens (creating if necessary) a badger database rooted at
// dir. Pass "" for an in-memory store, useful for tests.
func OpenBadgerStore(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil) // badger's own logger is noisy at info level; we log lifecycle events ourselves

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("storage opened", "dir", dir, "in_memory", dir == "")
	return &BadgerStore{db: db, logger: logger}, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	s.logger.Info("storage closing")
	return s.db.Close()
}

// View runs fn in a read-only badger transaction.
func (s *BadgerStore) View(fn func(txn Txn) error) error {
	return s.db.View(func(btxn *badger.Txn) error {
		return fn(&badgerTxn{txn: btxn, writable: false})
	})
}

// Update runs fn in a read-write badger transaction, committing on success.
func (s *BadgerStore) Update(fn func(txn Txn) error) error {
	return s.db.Update(func(btxn *badger.Txn) error {
		return fn(&badgerTxn{txn: btxn, writable: true})
	})
}

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key, value []byte) error {
	if !t.writable {
		return ErrInvalidParameter
	}
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	if !t.writable {
		return ErrInvalidParameter
	}
	return t.txn.Delete(key)
}

func (t *badgerTxn) PrefixScan(prefix []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		key := make([]byte, len(item.Key()))
		copy(key, item.Key())
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}
