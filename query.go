// ═══════════════════════════════════════════════════════════════════════════════
// QUERY ENGINE: From a Query String to Ranked Documents
// ═══════════════════════════════════════════════════════════════════════════════
// QueryBuilder is the fluent entry point callers use to run a search,
// mirroring the original QueryBuilder API shape (a builder with chained
// configuration methods and a terminal Execute) but driven by the
// automaton/postings/criteria pipeline instead of boolean term combinators:
// tokenize the query, expand each word against the vocabulary (exact +
// typo-tolerant + prefix + synonym), fetch postings for every expanded
// word, group occurrences by document into TmpMatch lists, rank with the
// criterion cascade, then apply the distinct-attribute window and result
// limit.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"sort"
	"time"
)

// IndexReader is everything the query engine needs from a committed index
// snapshot: its vocabulary, its synonyms, and per-word postings. database.go
// supplies the concrete implementation backed by a snapshot + Store.
type IndexReader interface {
	Words() *Vocabulary
	Synonyms() *Vocabulary
	Alternatives(word string) []string
	WordOccurrences(word string) ([]DocIndex, error)
}

// QueryBuilder configures and executes one search against an IndexReader.
type QueryBuilder struct {
	index           IndexReader
	criteria        []Criterion
	limit           int
	offset          int
	distinctAttr    *SchemaAttr
	distinctSize    int
	distinctValue   func(DocumentId, SchemaAttr) (string, bool)
	searchableAttrs map[uint16]struct{}
	timeout         time.Duration
}

// NewQueryBuilder starts a query against index, using the default criterion
// cascade and no result limit.
func NewQueryBuilder(index IndexReader) *QueryBuilder {
	return &QueryBuilder{
		index:    index,
		criteria: DefaultCriteria(),
		limit:    -1,
	}
}

// WithCriteria overrides the ranking cascade.
func (qb *QueryBuilder) WithCriteria(criteria []Criterion) *QueryBuilder {
	qb.criteria = criteria
	return qb
}

// Limit caps the number of results returned.
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = n
	return qb
}

// Offset skips the first n ranked results before applying Limit.
func (qb *QueryBuilder) Offset(n int) *QueryBuilder {
	qb.offset = n
	return qb
}

// WithDistinct restricts the result set to at most size documents sharing
// the same value of attr (deduplicating, for example, several size variants
// of the same product down to one representative hit per group). A nil
// distinct attribute (the default) disables distinct filtering.
func (qb *QueryBuilder) WithDistinct(attr SchemaAttr, size int) *QueryBuilder {
	qb.distinctAttr = &attr
	qb.distinctSize = size
	return qb
}

// WithDistinctResolver supplies the function used to read a document's
// value for the distinct attribute. Database.QueryBuilder wires this to a
// real field lookup; without it, WithDistinct has no effect because there
// is no value to group documents by.
func (qb *QueryBuilder) WithDistinctResolver(fn func(id DocumentId, attr SchemaAttr) (string, bool)) *QueryBuilder {
	qb.distinctValue = fn
	return qb
}

// WithSearchableAttrs restricts matching to occurrences in the given
// attributes; matches in any other attribute are dropped before grouping by
// document. A nil/empty set (the default) searches every indexed attribute.
func (qb *QueryBuilder) WithSearchableAttrs(attrs []SchemaAttr) *QueryBuilder {
	if len(attrs) == 0 {
		qb.searchableAttrs = nil
		return qb
	}
	set := make(map[uint16]struct{}, len(attrs))
	for _, a := range attrs {
		set[uint16(a)] = struct{}{}
	}
	qb.searchableAttrs = set
	return qb
}

// WithTimeout bounds how long Execute/Search may spend past automaton
// construction. The deadline is checked before each expanded word's
// postings are fetched and once more before ranking. Once it has passed, no
// further postings are fetched, the criterion cascade is skipped, and the
// candidates gathered so far are returned in ascending document id order
// with Truncated set; there is no check between individual criteria. A zero
// timeout (the default) disables the deadline.
func (qb *QueryBuilder) WithTimeout(d time.Duration) *QueryBuilder {
	qb.timeout = d
	return qb
}

// SearchResult is the full outcome of one Search: the ranked, windowed
// documents plus whether a configured timeout cut the pipeline short.
type SearchResult struct {
	Documents []*Document
	Truncated bool
}

// Execute runs the query and returns ranked results, discarding the
// truncated flag Search reports. Kept for callers that don't configure a
// timeout and so never need it.
func (qb *QueryBuilder) Execute(query string) ([]*Document, error) {
	result, err := qb.Search(query)
	if err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// Search runs the full query pipeline: automaton construction, postings
// retrieval (respecting WithSearchableAttrs), candidate grouping, criterion
// ranking, distinct/window selection, and cooperative timeout checks before
// each postings fetch and before ranking (WithTimeout).
func (qb *QueryBuilder) Search(query string) (*SearchResult, error) {
	automaton := BuildQueryAutomaton(query)
	if len(automaton.Words) == 0 {
		return &SearchResult{}, nil
	}

	var deadline time.Time
	hasDeadline := qb.timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(qb.timeout)
	}
	truncated := false
	pastDeadline := func() bool {
		if !hasDeadline {
			return false
		}
		if time.Now().After(deadline) {
			truncated = true
			return true
		}
		return false
	}

	expanded, err := automaton.Expand(qb.index.Words(), qb.index.Synonyms(), qb.index.Alternatives)
	if err != nil {
		return nil, err
	}

	matchesByDoc := make(map[DocumentId][]TmpMatch)
	highlightsByDoc := make(map[DocumentId][]Highlight)

	for _, ew := range expanded {
		if pastDeadline() {
			break
		}
		occurrences, err := qb.index.WordOccurrences(ew.Word)
		if err != nil {
			return nil, err
		}
		for _, occ := range occurrences {
			if qb.searchableAttrs != nil {
				if _, ok := qb.searchableAttrs[occ.Attribute]; !ok {
					continue
				}
			}
			matchesByDoc[occ.DocumentID] = append(matchesByDoc[occ.DocumentID], TmpMatch{
				QueryIndex: uint32(ew.QueryIndex),
				Distance:   uint8(ew.Distance),
				Attribute:  occ.Attribute,
				WordIndex:  occ.WordIndex,
				IsExact:    ew.IsExact,
			})
			highlightsByDoc[occ.DocumentID] = append(highlightsByDoc[occ.DocumentID], Highlight{
				Attribute:  occ.Attribute,
				CharIndex:  occ.CharIndex,
				CharLength: occ.CharLength,
			})
		}
	}

	docs := make([]*RawDocument, 0, len(matchesByDoc))
	for id, matches := range matchesByDoc {
		docs = append(docs, NewRawDocument(id, matches))
	}

	if !pastDeadline() {
		SortDocuments(docs, qb.criteria)
	} else {
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}

	if qb.distinctAttr != nil {
		docs = qb.applyDistinct(docs)
	}

	docs = applyWindow(docs, qb.offset, qb.limit)

	results := make([]*Document, len(docs))
	for i, d := range docs {
		results[i] = &Document{
			ID:         d.ID,
			Matches:    d.Matches,
			Highlights: dedupHighlights(highlightsByDoc[d.ID]),
		}
	}
	return &SearchResult{Documents: results, Truncated: truncated}, nil
}

// dedupHighlights sorts highlights lexicographically on
// (attribute, char_index, char_length) and removes exact duplicates, since
// several matched query words can land on the same underlying occurrence.
func dedupHighlights(highlights []Highlight) []Highlight {
	if len(highlights) == 0 {
		return nil
	}
	sorted := make([]Highlight, len(highlights))
	copy(sorted, highlights)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		if a.CharIndex != b.CharIndex {
			return a.CharIndex < b.CharIndex
		}
		return a.CharLength < b.CharLength
	})
	out := sorted[:1]
	for _, h := range sorted[1:] {
		if h != out[len(out)-1] {
			out = append(out, h)
		}
	}
	return out
}

// applyDistinct keeps at most distinctSize documents per distinct value of
// distinctAttr, preserving rank order. Documents whose value can't be
// resolved (distinctValue returns ok=false, or no resolver was configured)
// pass through ungrouped, since there's nothing to deduplicate them
// against.
func (qb *QueryBuilder) applyDistinct(docs []*RawDocument) []*RawDocument {
	if qb.distinctValue == nil {
		return docs
	}
	counts := make(map[string]int)
	out := make([]*RawDocument, 0, len(docs))
	for _, d := range docs {
		value, ok := qb.distinctValue(d.ID, *qb.distinctAttr)
		if !ok {
			out = append(out, d)
			continue
		}
		counts[value]++
		if counts[value] > qb.distinctSize {
			continue
		}
		out = append(out, d)
	}
	return out
}

// applyWindow slices docs to the requested offset/limit window. A negative
// limit means "no limit."
func applyWindow(docs []*RawDocument, offset, limit int) []*RawDocument {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(docs) {
		return nil
	}
	docs = docs[offset:]
	if limit < 0 || limit >= len(docs) {
		return docs
	}
	return docs[:limit]
}
