// ═══════════════════════════════════════════════════════════════════════════════
// CRITERION CASCADE: Multi-Stage Relevance Ranking
// ═══════════════════════════════════════════════════════════════════════════════
// A Criterion compares two candidate documents and reports which one ranks
// higher. Criteria are applied in sequence: the first criterion that tells
// the two documents apart decides their relative order; if it calls them
// equal, the next criterion gets to break the tie. DocumentId, last in the
// default cascade, never calls two distinct documents equal, so the overall
// ordering is always total and deterministic.
//
// This mirrors the original engine's relevance scoring in spirit (compare
// candidates by cheaper signals before expensive ones) but the actual
// criteria are the engine's seven: fewer typos beats more typos, more
// distinct query words matched beats fewer, words found closer together beat
// words scattered apart, words in more important attributes beat less
// important ones, words found earlier in an attribute beat later, an exact
// (untypo'd) match beats a fuzzy one, and finally document id order breaks
// any remaining tie.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import "sort"

// RawDocument is one candidate document mid-ranking: its id and every
// TmpMatch the query automaton produced against it, plus the statistics the
// criteria read. Call NewRawDocument once per candidate; the statistics are
// computed eagerly since every criterion needs them and candidates are
// compared many times during a sort.
type RawDocument struct {
	ID         DocumentId
	Matches    []TmpMatch
	Highlights []Highlight

	sumOfTypos          int
	numberOfWords       int
	wordsProximity      int
	sumOfWordsAttribute int
	sumOfWordsPosition  int
	exactMatches        int
}

// NewRawDocument builds a RawDocument and precomputes its ranking
// statistics from matches.
func NewRawDocument(id DocumentId, matches []TmpMatch) *RawDocument {
	doc := &RawDocument{ID: id, Matches: matches}
	doc.prepare()
	return doc
}

// querySlot aggregates every TmpMatch sharing one query_index into the
// per-slot values the criteria read: the smallest edit distance seen for
// that slot, the attribute/word_index of its first match (in the
// (attribute, word_index, query_index) order the query engine sorts matches
// by), and whether any match for the slot was exact.
type querySlot struct {
	minDistance  int
	hasDistance  bool
	firstAttr    uint16
	firstWordIdx int
	hasFirst     bool
	exact        bool
}

// prepare aggregates d.Matches by query_index before computing any
// criterion statistic. Every criterion in the default cascade operates on
// one value per distinct query slot, never on the raw per-occurrence match
// list, so slot aggregation has to happen first: a query word matching the
// same document three times (three occurrences of one word) must contribute
// once to SumOfTypos/SumOfWordsAttribute/SumOfWordsPosition/Exact, exactly
// like NumberOfWords already counts distinct slots rather than raw matches.
func (d *RawDocument) prepare() {
	sorted := make([]TmpMatch, len(d.Matches))
	copy(sorted, d.Matches)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		if a.WordIndex != b.WordIndex {
			return a.WordIndex < b.WordIndex
		}
		return a.QueryIndex < b.QueryIndex
	})

	slots := make(map[uint32]*querySlot)
	for _, m := range sorted {
		slot, ok := slots[m.QueryIndex]
		if !ok {
			slot = &querySlot{}
			slots[m.QueryIndex] = slot
		}
		if !slot.hasDistance || int(m.Distance) < slot.minDistance {
			slot.minDistance = int(m.Distance)
			slot.hasDistance = true
		}
		if !slot.hasFirst {
			slot.firstAttr = m.Attribute
			slot.firstWordIdx = int(m.WordIndex)
			slot.hasFirst = true
		}
		if m.IsExact && m.Distance == 0 {
			slot.exact = true
		}
	}
	d.numberOfWords = len(slots)

	queryIndexes := make([]uint32, 0, len(slots))
	for qi := range slots {
		queryIndexes = append(queryIndexes, qi)
	}
	sort.Slice(queryIndexes, func(i, j int) bool { return queryIndexes[i] < queryIndexes[j] })

	for _, qi := range queryIndexes {
		slot := slots[qi]
		d.sumOfTypos += slot.minDistance
		d.sumOfWordsAttribute += int(slot.firstAttr)
		d.sumOfWordsPosition += slot.firstWordIdx
		if slot.exact {
			d.exactMatches++
		}
	}

	for i := 1; i < len(queryIndexes); i++ {
		prev := slots[queryIndexes[i-1]]
		cur := slots[queryIndexes[i]]
		if prev.firstAttr != cur.firstAttr {
			d.wordsProximity += 8
			continue
		}
		gap := cur.firstWordIdx - prev.firstWordIdx
		if gap < 0 {
			gap = -gap
		}
		d.wordsProximity += gap
	}
}

// Criterion compares two candidate documents, reporting lhs's place
// relative to rhs: negative means lhs ranks higher (better), positive means
// rhs ranks higher, zero means this criterion can't tell them apart.
type Criterion interface {
	Evaluate(lhs, rhs *RawDocument) int
	Name() string
}

type criterionFunc struct {
	name string
	eval func(lhs, rhs *RawDocument) int
}

func (c criterionFunc) Evaluate(lhs, rhs *RawDocument) int { return c.eval(lhs, rhs) }
func (c criterionFunc) Name() string                       { return c.name }

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CriterionSumOfTypos ranks documents with fewer accumulated edit-distance
// typos ahead of documents with more.
var CriterionSumOfTypos = criterionFunc{"SumOfTypos", func(lhs, rhs *RawDocument) int {
	return compareInts(lhs.sumOfTypos, rhs.sumOfTypos)
}}

// CriterionNumberOfWords ranks documents matching more distinct query words
// ahead of documents matching fewer — a document matching every word of the
// query is a better answer than one matching only half of them, even if the
// words it did match are closer together or less typo'd.
var CriterionNumberOfWords = criterionFunc{"NumberOfWords", func(lhs, rhs *RawDocument) int {
	return compareInts(rhs.numberOfWords, lhs.numberOfWords)
}}

// CriterionWordsProximity ranks documents whose matched query words sit
// closer together (smaller total word-index gap) ahead of documents where
// they're scattered further apart.
var CriterionWordsProximity = criterionFunc{"WordsProximity", func(lhs, rhs *RawDocument) int {
	return compareInts(lhs.wordsProximity, rhs.wordsProximity)
}}

// CriterionSumOfWordsAttribute ranks documents whose matches land in
// lower-numbered (by convention, more important) attributes ahead of
// matches in higher-numbered ones.
var CriterionSumOfWordsAttribute = criterionFunc{"SumOfWordsAttribute", func(lhs, rhs *RawDocument) int {
	return compareInts(lhs.sumOfWordsAttribute, rhs.sumOfWordsAttribute)
}}

// CriterionSumOfWordsPosition ranks documents whose matches land earlier in
// their attribute's text ahead of matches landing later.
var CriterionSumOfWordsPosition = criterionFunc{"SumOfWordsPosition", func(lhs, rhs *RawDocument) int {
	return compareInts(lhs.sumOfWordsPosition, rhs.sumOfWordsPosition)
}}

// CriterionExact ranks documents with more exact (non-typo-tolerant)
// matches ahead of documents relying more heavily on fuzzy matches.
var CriterionExact = criterionFunc{"Exact", func(lhs, rhs *RawDocument) int {
	return compareInts(rhs.exactMatches, lhs.exactMatches)
}}

// CriterionDocumentID is the deterministic final tie-break: plain ascending
// document id order. It never calls two distinct documents equal, which is
// what guarantees the overall cascade produces a total order.
var CriterionDocumentID = criterionFunc{"DocumentId", func(lhs, rhs *RawDocument) int {
	if lhs.ID < rhs.ID {
		return -1
	}
	if lhs.ID > rhs.ID {
		return 1
	}
	return 0
}}

// DefaultCriteria is the engine's default ranking cascade, applied in this
// fixed order.
func DefaultCriteria() []Criterion {
	return []Criterion{
		CriterionSumOfTypos,
		CriterionNumberOfWords,
		CriterionWordsProximity,
		CriterionSumOfWordsAttribute,
		CriterionSumOfWordsPosition,
		CriterionExact,
		CriterionDocumentID,
	}
}

// SortDocuments orders docs in place according to criteria, applied as a
// cascade: the first criterion that distinguishes a pair of documents
// decides their order.
func SortDocuments(docs []*RawDocument, criteria []Criterion) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, c := range criteria {
			switch c.Evaluate(docs[i], docs[j]) {
			case -1:
				return true
			case 1:
				return false
			}
		}
		return false
	})
}
