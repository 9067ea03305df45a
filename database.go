// ═══════════════════════════════════════════════════════════════════════════════
// DATABASE: The Embedded Index Handle
// ═══════════════════════════════════════════════════════════════════════════════
// Database is the library's single entry point: open it over a Store, submit
// updates (schema changes, document batches, deletions, synonym lists), and
// query it. Reads never block on writes and never see a half-applied update:
// the committed vocabulary/schema/synonyms triple is held behind an
// atomic.Pointer and swapped only after a write transaction commits, mirroring
// the original engine's ArcSwap<InnerIndex> snapshot discipline. Writes are
// serialized through a single mutex, matching the contract Store documents
// (one read-write transaction in flight at a time).
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// innerIndex is one immutable, queryable snapshot of committed index state.
type innerIndex struct {
	schema           Schema
	words            *Vocabulary
	synonyms         *Vocabulary
	synonymAlternate map[string][]string
}

// Database is an embedded, durable search index.
type Database struct {
	store  Store
	logger *slog.Logger
	config Config

	writeMu sync.Mutex
	inner   atomic.Pointer[innerIndex]
}

// OpenDatabase loads (or initializes) a Database over store, using
// DefaultConfig with logger substituted in. Kept for callers that only want
// to override logging; use OpenDatabaseWithConfig to also tune word limits
// or indexing concurrency.
func OpenDatabase(store Store, logger *slog.Logger) (*Database, error) {
	cfg := DefaultConfig()
	cfg.Logger = logger
	return OpenDatabaseWithConfig(store, cfg)
}

// OpenDatabaseWithConfig loads (or initializes) a Database over store with
// explicit tuning.
func OpenDatabaseWithConfig(store Store, config Config) (*Database, error) {
	config = config.normalized()
	db := &Database{store: store, logger: config.Logger, config: config}

	snap := &innerIndex{synonymAlternate: map[string][]string{}}
	err := store.View(func(txn Txn) error {
		if raw, err := txn.Get([]byte(keyMainSchema)); err == nil {
			schema, err := DecodeSchema(raw)
			if err != nil {
				return err
			}
			snap.schema = schema
		} else if err != ErrKeyNotFound {
			return err
		}

		if raw, err := txn.Get([]byte(keyMainWords)); err == nil {
			voc, err := LoadVocabulary(raw)
			if err != nil {
				return err
			}
			snap.words = voc
		} else if err != ErrKeyNotFound {
			return err
		}

		if raw, err := txn.Get([]byte(keyMainSynonyms)); err == nil {
			alt, err := DecodeSynonymAlternatives(raw)
			if err != nil {
				return err
			}
			snap.synonymAlternate = alt
			keys := make([]string, 0, len(alt))
			for k := range alt {
				keys = append(keys, k)
			}
			voc, err := BuildVocabulary(keys)
			if err != nil {
				return err
			}
			snap.synonyms = voc
		} else if err != ErrKeyNotFound {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	db.inner.Store(snap)
	db.logger.Info("database opened", "has_schema", snap.schema.Len() > 0 || snap.schema.IdentifierName() != "")
	return db, nil
}

// Close releases the underlying store.
func (db *Database) Close() error {
	return db.store.Close()
}

// Schema returns the currently committed schema.
func (db *Database) Schema() Schema {
	return db.inner.Load().schema
}

// UpdateSchema validates and commits a new schema. When an Indexed or Ranked
// flip makes the plan require a reindex, the affected attributes are logged;
// existing postings are not rebuilt and documents are not reindexed.
func (db *Database) UpdateSchema(candidate Schema) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	snap := db.inner.Load()

	var plan SchemaUpdatePlan
	var updateID uint64
	err := db.store.Update(func(txn Txn) error {
		id, err := NextUpdateID(txn)
		if err != nil {
			return err
		}
		updateID = id

		if snap.schema.Len() == 0 && snap.schema.IdentifierName() == "" {
			plan = SchemaUpdatePlan{Schema: candidate}
		} else {
			p, err := ApplySchemaUpdate(snap.schema, candidate)
			if err != nil {
				return err
			}
			plan = p
		}

		return txn.Set([]byte(keyMainSchema), EncodeSchema(plan.Schema))
	})

	result := ProcessedUpdateResult{UpdateID: updateID, Kind: SchemaUpdate, Duration: time.Since(start)}
	if err != nil {
		result.Err = err.Error()
		db.recordResult(result)
		return result, err
	}

	next := *snap
	next.schema = plan.Schema
	db.inner.Store(&next)

	if plan.ReindexRequired {
		db.logger.Info("schema update requires reindex", "attrs", plan.ReindexAttrs)
	}
	db.recordResult(result)
	return result, nil
}

// AddDocuments indexes docs, merging their postings into the committed
// index and persisting their raw field values for later retrieval.
func (db *Database) AddDocuments(docs []InputDocument) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	snap := db.inner.Load()
	schema := snap.schema
	identifier := schema.IdentifierName()
	if identifier == "" {
		err := fmt.Errorf("%w: no schema committed", ErrSchemaMissing)
		return db.failedResult(start, DocumentsAddition, err)
	}

	touched := NewTouchedDocuments()
	docFieldValues := make(map[DocumentId]map[SchemaAttr]string, len(docs))
	ids := make([]DocumentId, len(docs))

	for i, doc := range docs {
		identValue, ok := doc[identifier]
		if !ok || identValue == "" {
			err := fmt.Errorf("%w: document missing identifier field %q", ErrInvalidParameter, identifier)
			return db.failedResult(start, DocumentsAddition, err)
		}
		id := NewDocumentId(identValue)
		ids[i] = id
		touched.Touch(id)

		fields := make(map[SchemaAttr]string)
		for name, value := range doc {
			attr, ok := schema.Attribute(name)
			if !ok {
				continue
			}
			fields[attr] = value
		}
		docFieldValues[id] = fields
	}

	indexed, err := db.indexDocumentsConcurrently(ids, docs, schema, identifier)
	if err != nil {
		return db.failedResult(start, DocumentsAddition, err)
	}

	var newWordsVocab *Vocabulary
	var updateID uint64
	err = db.store.Update(func(txn Txn) error {
		id, err := NextUpdateID(txn)
		if err != nil {
			return err
		}
		updateID = id

		for word, additions := range indexed.WordsDocIndexes {
			merged, err := mergePostings(txn, word, additions)
			if err != nil {
				return err
			}
			if err := txn.Set(postingKey([]byte(word)), EncodeDocIndexes(merged)); err != nil {
				return err
			}
		}

		for id, fields := range docFieldValues {
			for attr, value := range fields {
				if err := txn.Set(docFieldKey(id, attr), []byte(value)); err != nil {
					return err
				}
			}
		}

		for id, voc := range indexed.DocsWords {
			raw, err := voc.Bytes()
			if err != nil {
				return err
			}
			if err := txn.Set(docsWordsKey(id), raw); err != nil {
				return err
			}
		}

		allWords, err := collectWords(txn, snap.words, indexed.WordsDocIndexes)
		if err != nil {
			return err
		}
		newWordsVocab, err = BuildVocabulary(allWords)
		if err != nil {
			return err
		}
		wordsBytes, err := newWordsVocab.Bytes()
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyMainWords), wordsBytes)
	})

	result := ProcessedUpdateResult{
		UpdateID:         updateID,
		Kind:             DocumentsAddition,
		Duration:         time.Since(start),
		DocumentsTouched: touched.Len(),
	}
	if err != nil {
		result.Err = err.Error()
		db.recordResult(result)
		return result, err
	}

	next := *snap
	next.words = newWordsVocab
	db.inner.Store(&next)

	db.recordResult(result)
	return result, nil
}

// indexDocumentsConcurrently fans docs out across db.config.IndexConcurrency
// goroutines, each tokenizing its share of the batch into an independent
// Indexer, then merges the partial results. Splitting work this way (rather
// than sharing one Indexer behind a mutex) avoids lock contention on the
// postings accumulator while every word's final postings run is still sorted
// and deduplicated once, in mergePostings, when the batch commits.
func (db *Database) indexDocumentsConcurrently(ids []DocumentId, docs []InputDocument, schema Schema, identifier string) (*Indexed, error) {
	if len(docs) == 0 {
		return &Indexed{WordsDocIndexes: map[string][]DocIndex{}, DocsWords: map[DocumentId]*Vocabulary{}}, nil
	}

	workers := db.config.IndexConcurrency
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	chunks := partitionIndices(len(docs), workers)
	partials := make([]*Indexed, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for ci, chunk := range chunks {
		wg.Add(1)
		go func(ci int, chunk []int) {
			defer wg.Done()
			ix := NewIndexerWithWordLimit(db.config.WordLimit)
			for _, i := range chunk {
				id, doc := ids[i], docs[i]
				for name, value := range doc {
					attr, ok := schema.Attribute(name)
					if !ok || !schema.Props(attr).Indexed {
						continue
					}
					ix.IndexText(id, attr, value)
				}
			}
			built, err := ix.Build()
			if err != nil {
				errs[ci] = err
				return
			}
			partials[ci] = built
		}(ci, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return mergeIndexed(partials), nil
}

// partitionIndices splits [0,n) into up to workers contiguous, roughly
// equal-sized chunks.
func partitionIndices(n, workers int) [][]int {
	chunkSize := (n + workers - 1) / workers
	var chunks [][]int
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		idx := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			idx = append(idx, i)
		}
		chunks = append(chunks, idx)
	}
	return chunks
}

// mergeIndexed combines the independent Indexer outputs of every worker
// chunk into one Indexed: per-word postings concatenate (mergePostings sorts
// and dedups the combined run against the store at commit time), and
// per-document word sets union directly since each document is tokenized by
// exactly one worker.
func mergeIndexed(partials []*Indexed) *Indexed {
	words := make(map[string][]DocIndex)
	docsWords := make(map[DocumentId]*Vocabulary)
	for _, p := range partials {
		if p == nil {
			continue
		}
		for word, additions := range p.WordsDocIndexes {
			words[word] = append(words[word], additions...)
		}
		for id, voc := range p.DocsWords {
			docsWords[id] = voc
		}
	}
	return &Indexed{WordsDocIndexes: words, DocsWords: docsWords}
}

// DeleteDocuments removes the given documents' postings, field values, and
// per-document word sets.
func (db *Database) DeleteDocuments(ids []DocumentId) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	snap := db.inner.Load()
	touched := NewTouchedDocuments()

	var updateID uint64
	touchedWords := make(map[string]struct{})

	err := db.store.Update(func(txn Txn) error {
		id, err := NextUpdateID(txn)
		if err != nil {
			return err
		}
		updateID = id

		for _, docID := range ids {
			touched.Touch(docID)

			raw, err := txn.Get(docsWordsKey(docID))
			if err == ErrKeyNotFound {
				continue
			} else if err != nil {
				return err
			}
			voc, err := LoadVocabulary(raw)
			if err != nil {
				return err
			}
			if err := voc.WithPrefix("", func(word string) error {
				touchedWords[word] = struct{}{}
				return nil
			}); err != nil {
				return err
			}

			if err := txn.Delete(docsWordsKey(docID)); err != nil {
				return err
			}
			if err := txn.PrefixScan(docFieldPrefix(docID), func(key, _ []byte) error {
				return txn.Delete(key)
			}); err != nil {
				return err
			}
		}

		removed := make(map[DocumentId]struct{}, len(ids))
		for _, id := range ids {
			removed[id] = struct{}{}
		}

		for word := range touchedWords {
			raw, err := txn.Get(postingKey([]byte(word)))
			if err == ErrKeyNotFound {
				continue
			} else if err != nil {
				return err
			}
			all, err := DecodeDocIndexes(raw)
			if err != nil {
				return err
			}
			kept := all[:0]
			for _, di := range all {
				if _, gone := removed[di.DocumentID]; !gone {
					kept = append(kept, di)
				}
			}
			if len(kept) == 0 {
				if err := txn.Delete(postingKey([]byte(word))); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(postingKey([]byte(word)), EncodeDocIndexes(kept)); err != nil {
				return err
			}
		}

		return nil
	})

	result := ProcessedUpdateResult{
		UpdateID:         updateID,
		Kind:             DocumentsDeletion,
		Duration:         time.Since(start),
		DocumentsTouched: touched.Len(),
	}
	if err != nil {
		result.Err = err.Error()
		db.recordResult(result)
		return result, err
	}

	db.recordResult(result)
	return result, nil
}

// AddSynonyms merges additions into the committed synonym table: each key's
// alternatives are unioned with whatever alternatives already exist for that
// key, deduplicated. Existing keys not mentioned in additions are untouched.
func (db *Database) AddSynonyms(additions map[string][]string) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	snap := db.inner.Load()

	merged := make(map[string][]string, len(snap.synonymAlternate)+len(additions))
	for k, v := range snap.synonymAlternate {
		merged[k] = append([]string(nil), v...)
	}
	for k, add := range additions {
		merged[k] = dedupSorted(append(merged[k], add...))
	}

	result, err := db.commitSynonyms(start, SynonymsAddition, merged)
	if err != nil {
		return result, err
	}
	return result, nil
}

// DeleteSynonyms removes entries from the committed synonym table. For each
// key in deletions: a nil alternatives slice removes the key entirely; a
// non-nil slice removes only those specific alternatives, leaving any
// remaining alternatives for that key in place (and dropping the key
// entirely if none remain).
func (db *Database) DeleteSynonyms(deletions map[string][]string) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	snap := db.inner.Load()

	merged := make(map[string][]string, len(snap.synonymAlternate))
	for k, v := range snap.synonymAlternate {
		merged[k] = append([]string(nil), v...)
	}
	for key, remove := range deletions {
		if remove == nil {
			delete(merged, key)
			continue
		}
		remaining := subtractStrings(merged[key], remove)
		if len(remaining) == 0 {
			delete(merged, key)
		} else {
			merged[key] = remaining
		}
	}

	result, err := db.commitSynonyms(start, SynonymsDeletion, merged)
	if err != nil {
		return result, err
	}
	return result, nil
}

// commitSynonyms persists the full next-state synonym table, rebuilds its
// FST, and swaps it into the live snapshot. Both AddSynonyms and
// DeleteSynonyms compute their next state in memory and call this to apply
// it, so the FST rebuild and snapshot swap only happen in one place.
func (db *Database) commitSynonyms(start time.Time, kind UpdateKind, next map[string][]string) (ProcessedUpdateResult, error) {
	snap := db.inner.Load()

	keys := make([]string, 0, len(next))
	for k := range next {
		keys = append(keys, k)
	}
	voc, err := BuildVocabulary(keys)
	if err != nil {
		return db.failedResult(start, kind, err)
	}

	var updateID uint64
	err = db.store.Update(func(txn Txn) error {
		id, err := NextUpdateID(txn)
		if err != nil {
			return err
		}
		updateID = id
		return txn.Set([]byte(keyMainSynonyms), EncodeSynonymAlternatives(next))
	})

	result := ProcessedUpdateResult{UpdateID: updateID, Kind: kind, Duration: time.Since(start)}
	if err != nil {
		result.Err = err.Error()
		db.recordResult(result)
		return result, err
	}

	updated := *snap
	updated.synonyms = voc
	updated.synonymAlternate = next
	db.inner.Store(&updated)

	db.recordResult(result)
	return result, nil
}

// subtractStrings returns the elements of from not present in remove.
func subtractStrings(from, remove []string) []string {
	if len(from) == 0 {
		return nil
	}
	skip := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		skip[r] = struct{}{}
	}
	out := make([]string, 0, len(from))
	for _, s := range from {
		if _, drop := skip[s]; !drop {
			out = append(out, s)
		}
	}
	return out
}

// ApplyCustomSettings persists an opaque settings payload, recorded as a
// CustomSettings update. The payload's structure and interpretation is left
// to callers; the database only stores and version-stamps it.
func (db *Database) ApplyCustomSettings(blob []byte) (ProcessedUpdateResult, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	start := time.Now()

	var updateID uint64
	err := db.store.Update(func(txn Txn) error {
		id, err := NextUpdateID(txn)
		if err != nil {
			return err
		}
		updateID = id
		return txn.Set([]byte(keyMainCustomSettings), blob)
	})

	result := ProcessedUpdateResult{UpdateID: updateID, Kind: CustomSettings, Duration: time.Since(start)}
	if err != nil {
		result.Err = err.Error()
		db.recordResult(result)
		return result, err
	}

	db.recordResult(result)
	return result, nil
}

// CustomSettings returns the most recently applied custom settings payload,
// or ErrKeyNotFound if none has ever been applied.
func (db *Database) CustomSettings() ([]byte, error) {
	var blob []byte
	err := db.store.View(func(txn Txn) error {
		raw, err := txn.Get([]byte(keyMainCustomSettings))
		if err != nil {
			return err
		}
		blob = append([]byte(nil), raw...)
		return nil
	})
	return blob, err
}

// Document retrieves the stored field values of id, restricted to displayed
// attributes.
func (db *Database) Document(id DocumentId) (InputDocument, error) {
	snap := db.inner.Load()
	doc := make(InputDocument)
	err := db.store.View(func(txn Txn) error {
		return txn.PrefixScan(docFieldPrefix(id), func(key, value []byte) error {
			attr := decodeAttrFromDocFieldKey(key)
			if !snap.schema.Props(attr).Displayed {
				return nil
			}
			doc[snap.schema.AttributeName(attr)] = string(value)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// QueryBuilder returns a QueryBuilder reading the currently committed
// snapshot, with distinct-by-value resolution wired to real field storage.
func (db *Database) QueryBuilder() *QueryBuilder {
	snap := db.inner.Load()
	reader := &databaseIndexReader{db: db, snap: snap}
	return NewQueryBuilder(reader).WithDistinctResolver(func(id DocumentId, attr SchemaAttr) (string, bool) {
		var value string
		var found bool
		_ = db.store.View(func(txn Txn) error {
			raw, err := txn.Get(docFieldKey(id, attr))
			if err == nil {
				value, found = string(raw), true
			}
			return nil
		})
		return value, found
	})
}

func (db *Database) recordResult(result ProcessedUpdateResult) {
	if err := db.store.Update(func(txn Txn) error {
		return PutUpdateResult(txn, result)
	}); err != nil {
		db.logger.Error("failed to record update result", "update_id", result.UpdateID, "error", err)
	}
}

func (db *Database) failedResult(start time.Time, kind UpdateKind, err error) (ProcessedUpdateResult, error) {
	result := ProcessedUpdateResult{Kind: kind, Duration: time.Since(start), Err: err.Error()}
	db.recordResult(result)
	return result, err
}

// databaseIndexReader adapts a Database snapshot + its Store into the
// IndexReader query.go needs.
type databaseIndexReader struct {
	db   *Database
	snap *innerIndex
}

func (r *databaseIndexReader) Words() *Vocabulary    { return r.snap.words }
func (r *databaseIndexReader) Synonyms() *Vocabulary { return r.snap.synonyms }

func (r *databaseIndexReader) Alternatives(word string) []string {
	return r.snap.synonymAlternate[word]
}

func (r *databaseIndexReader) WordOccurrences(word string) ([]DocIndex, error) {
	var occurrences []DocIndex
	err := r.db.store.View(func(txn Txn) error {
		raw, err := txn.Get(postingKey([]byte(word)))
		if err == ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		occurrences, err = DecodeDocIndexes(raw)
		return err
	})
	return occurrences, err
}

// mergePostings reads word's existing postings run (if any) inside txn and
// returns it merged with additions, sorted and deduplicated.
func mergePostings(txn Txn, word string, additions []DocIndex) ([]DocIndex, error) {
	existing, err := txn.Get(postingKey([]byte(word)))
	var all []DocIndex
	switch err {
	case nil:
		all, err = DecodeDocIndexes(existing)
		if err != nil {
			return nil, err
		}
	case ErrKeyNotFound:
	default:
		return nil, err
	}

	all = append(all, additions...)
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })

	out := all[:0]
	for i, di := range all {
		if i == 0 || !out[len(out)-1].Equal(di) {
			out = append(out, di)
		}
	}
	return out, nil
}

// collectWords merges the words newly produced by one indexing batch with
// every word already present in the committed vocabulary.
func collectWords(txn Txn, existing *Vocabulary, additions map[string][]DocIndex) ([]string, error) {
	seen := make(map[string]struct{}, len(additions))
	var out []string

	if existing != nil {
		if err := existing.WithPrefix("", func(word string) error {
			if _, ok := seen[word]; !ok {
				seen[word] = struct{}{}
				out = append(out, word)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}
	for word := range additions {
		if _, ok := seen[word]; !ok {
			seen[word] = struct{}{}
			out = append(out, word)
		}
	}
	_ = txn
	return out, nil
}

// EncodeSchema serializes a Schema into a flat binary record.
func EncodeSchema(s Schema) []byte {
	var buf []byte
	buf = appendLenPrefixed(buf, []byte(s.identifier))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.props)))
	for _, a := range s.props {
		buf = appendLenPrefixed(buf, []byte(a.name))
		buf = append(buf, encodeSchemaProps(a.props))
	}
	return buf
}

// DecodeSchema is the inverse of EncodeSchema.
func DecodeSchema(buf []byte) (Schema, error) {
	ident, rest, err := readLenPrefixed(buf)
	if err != nil {
		return Schema{}, err
	}
	if len(rest) < 4 {
		return Schema{}, ErrInvalidParameter
	}
	count := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]

	b := NewSchemaBuilder(string(ident))
	for i := uint32(0); i < count; i++ {
		name, next, err := readLenPrefixed(rest)
		if err != nil {
			return Schema{}, err
		}
		if len(next) < 1 {
			return Schema{}, ErrInvalidParameter
		}
		props := decodeSchemaProps(next[0])
		rest = next[1:]
		b.NewAttribute(string(name), props)
	}
	return b.Build(), nil
}

func encodeSchemaProps(p SchemaProps) byte {
	var b byte
	if p.Displayed {
		b |= 1
	}
	if p.Indexed {
		b |= 2
	}
	if p.Ranked {
		b |= 4
	}
	return b
}

func decodeSchemaProps(b byte) SchemaProps {
	return SchemaProps{
		Displayed: b&1 != 0,
		Indexed:   b&2 != 0,
		Ranked:    b&4 != 0,
	}
}

// EncodeSynonymAlternatives serializes a word->alternatives map.
func EncodeSynonymAlternatives(synonyms map[string][]string) []byte {
	keys := make([]string, 0, len(synonyms))
	for k := range synonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(keys)))
	for _, k := range keys {
		buf = appendLenPrefixed(buf, []byte(k))
		alts := synonyms[k]
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(alts)))
		for _, alt := range alts {
			buf = appendLenPrefixed(buf, []byte(alt))
		}
	}
	return buf
}

// DecodeSynonymAlternatives is the inverse of EncodeSynonymAlternatives.
func DecodeSynonymAlternatives(buf []byte) (map[string][]string, error) {
	if len(buf) < 4 {
		return nil, ErrInvalidParameter
	}
	count := binary.BigEndian.Uint32(buf[:4])
	rest := buf[4:]

	out := make(map[string][]string, count)
	for i := uint32(0); i < count; i++ {
		key, next, err := readLenPrefixed(rest)
		if err != nil {
			return nil, err
		}
		if len(next) < 4 {
			return nil, ErrInvalidParameter
		}
		altCount := binary.BigEndian.Uint32(next[:4])
		rest = next[4:]

		alts := make([]string, altCount)
		for j := uint32(0); j < altCount; j++ {
			alt, next2, err := readLenPrefixed(rest)
			if err != nil {
				return nil, err
			}
			alts[j] = string(alt)
			rest = next2
		}
		out[string(key)] = alts
	}
	return out, nil
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func readLenPrefixed(buf []byte) (data []byte, rest []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, ErrInvalidParameter
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, ErrInvalidParameter
	}
	return buf[:n], buf[n:], nil
}
