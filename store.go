// ═══════════════════════════════════════════════════════════════════════════════
// STORE: The Transactional Key/Value Contract
// ═══════════════════════════════════════════════════════════════════════════════
// Everything this module persists — postings runs, per-document fields, the
// words vocabulary, the synonym table, the schema, update ids and results —
// lives behind
// one narrow interface: ordered byte-key reads and writes inside either a
// read-only snapshot transaction or a single read-write transaction. The
// concrete backend (store_badger.go) is swappable; nothing above this file
// knows it is talking to badger specifically.
//
// KEY LAYOUT:
// -----------
//
//	main:words                     → serialized FST of every indexed word
//	main:synonyms                  → serialized synonym key → alternatives table
//	main:schema                    → serialized Schema
//	main:rankedmap                 → key reserved; nothing is written under it
//	main:customsettings            → opaque CustomSettings payload
//	posting:<word>                 → flat sorted DocIndex run (docindex.go)
//	docfield:<doc_id_be><attr_be>  → raw attribute value bytes
//	docswords:<doc_id_be>          → serialized FST of words touched by doc
//	update:<id_be>                 → key reserved; nothing is written under it
//	updateresult:<id_be>           → serialized ProcessedUpdateResult
//
// All multi-byte integers in keys are big-endian so that byte-lexicographic
// key order matches numeric order, which lets range scans (e.g. "every
// docfield key for this document") work as a plain prefix match.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"encoding/binary"
)

// Txn is one transaction against the store: a consistent read-only snapshot,
// or the single read-write transaction permitted at a time.
type Txn interface {
	// Get returns the value stored at key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)

	// Set writes value at key. It is only valid inside a read-write
	// transaction; read-only transactions return an error.
	Set(key, value []byte) error

	// Delete removes key. Only valid inside a read-write transaction.
	Delete(key []byte) error

	// PrefixScan calls fn for every key with the given prefix, in
	// ascending key order, until fn returns an error or the keys are
	// exhausted.
	PrefixScan(prefix []byte, fn func(key, value []byte) error) error
}

// Store is the transactional key/value storage primitive this module is
// built on top of. Implementations must give every View call a consistent
// point-in-time snapshot even while an Update transaction is in flight, and
// must serialize Update calls against one another.
type Store interface {
	// View runs fn in a read-only, snapshot-isolated transaction.
	View(fn func(txn Txn) error) error

	// Update runs fn in the single read-write transaction; if fn returns a
	// non-nil error the transaction is rolled back.
	Update(fn func(txn Txn) error) error

	// Close releases the store's resources.
	Close() error
}

const (
	keyMainWords          = "main:words"
	keyMainSynonyms       = "main:synonyms"
	keyMainSchema         = "main:schema"
	keyMainRankedMap      = "main:rankedmap"
	keyMainLastUpdateID   = "main:lastupdateid"
	keyMainCustomSettings = "main:customsettings"

	prefixPosting      = "posting:"
	prefixDocField     = "docfield:"
	prefixDocsWords    = "docswords:"
	prefixUpdate       = "update:"
	prefixUpdateResult = "updateresult:"
)

func postingKey(word []byte) []byte {
	return append([]byte(prefixPosting), word...)
}

func docFieldKey(id DocumentId, attr SchemaAttr) []byte {
	key := make([]byte, len(prefixDocField)+10)
	n := copy(key, prefixDocField)
	binary.BigEndian.PutUint64(key[n:], uint64(id))
	binary.BigEndian.PutUint16(key[n+8:], uint16(attr))
	return key
}

func docFieldPrefix(id DocumentId) []byte {
	key := make([]byte, len(prefixDocField)+8)
	n := copy(key, prefixDocField)
	binary.BigEndian.PutUint64(key[n:], uint64(id))
	return key
}

func docsWordsKey(id DocumentId) []byte {
	key := make([]byte, len(prefixDocsWords)+8)
	n := copy(key, prefixDocsWords)
	binary.BigEndian.PutUint64(key[n:], uint64(id))
	return key
}

func updateKey(id uint64) []byte {
	key := make([]byte, len(prefixUpdate)+8)
	n := copy(key, prefixUpdate)
	binary.BigEndian.PutUint64(key[n:], id)
	return key
}

func updateResultKey(id uint64) []byte {
	key := make([]byte, len(prefixUpdateResult)+8)
	n := copy(key, prefixUpdateResult)
	binary.BigEndian.PutUint64(key[n:], id)
	return key
}

// decodeAttrFromDocFieldKey extracts the SchemaAttr suffix of a docfield key
// produced by docFieldKey.
func decodeAttrFromDocFieldKey(key []byte) SchemaAttr {
	return SchemaAttr(binary.BigEndian.Uint16(key[len(key)-2:]))
}
