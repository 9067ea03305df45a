// ═══════════════════════════════════════════════════════════════════════════════
// VOCABULARY: The FST-Backed Word and Synonym Sets
// ═══════════════════════════════════════════════════════════════════════════════
// Vocabulary wraps a finite-state transducer (github.com/blevesearch/vellum)
// over a sorted set of words. It is the ordered-set container named in the
// Automaton Builder's external-collaborator contract: it can confirm exact
// membership, stream every word sharing a prefix, and stream every word
// within a bounded Levenshtein edit distance of a query, all without
// materializing the full word list.
//
// Both the words collection and the synonyms collection are Vocabularies;
// the difference is only which strings were inserted.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"bytes"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"
)

// Vocabulary is an immutable, queryable set of words.
type Vocabulary struct {
	fst *vellum.FST
}

// BuildVocabulary constructs a Vocabulary from words, which need not already
// be sorted or deduplicated.
func BuildVocabulary(words []string) (*Vocabulary, error) {
	uniq := dedupSorted(words)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	for _, w := range uniq {
		if err := builder.Insert([]byte(w), 0); err != nil {
			return nil, err
		}
	}
	if err := builder.Close(); err != nil {
		return nil, err
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &Vocabulary{fst: fst}, nil
}

// LoadVocabulary wraps a previously-serialized FST (as produced by Bytes).
func LoadVocabulary(data []byte) (*Vocabulary, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, err
	}
	return &Vocabulary{fst: fst}, nil
}

// Bytes returns the serialized FST, suitable for persisting under
// main:words or main:synonyms.
func (v *Vocabulary) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := v.fst.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Contains reports whether word is an exact member of the vocabulary.
func (v *Vocabulary) Contains(word string) bool {
	if v == nil || v.fst == nil {
		return false
	}
	ok, err := v.fst.Contains([]byte(word))
	return err == nil && ok
}

// Len returns the number of distinct words in the vocabulary.
func (v *Vocabulary) Len() int {
	if v == nil || v.fst == nil {
		return 0
	}
	return v.fst.Len()
}

// WithPrefix streams every vocabulary word starting with prefix, in sorted
// order, calling fn for each. Used to complete a partially-typed final query
// word.
func (v *Vocabulary) WithPrefix(prefix string, fn func(word string) error) error {
	if v == nil || v.fst == nil {
		return nil
	}
	start := []byte(prefix)
	end := prefixUpperBound(start)

	it, err := v.fst.Iterator(start, end)
	for err == nil {
		key, _ := it.Current()
		if err := fn(string(key)); err != nil {
			return err
		}
		err = it.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return err
	}
	return nil
}

// FuzzyMatch is one word found within the requested edit distance.
type FuzzyMatch struct {
	Word     string
	Distance int
}

// WithinEditDistance streams every vocabulary word within maxEdits of
// query, confirming the exact Levenshtein distance with
// github.com/agnivade/levenshtein once vellum's bounded automaton has
// narrowed the candidate set. This is the Automaton Builder's core
// operation: build the fuzzy automaton once per query word, then stream.
func (v *Vocabulary) WithinEditDistance(query string, maxEdits int, fn func(FuzzyMatch) error) error {
	if v == nil || v.fst == nil {
		return nil
	}
	aut, err := levenshtein.New(query, uint8(maxEdits))
	if err != nil {
		return err
	}

	it, err := v.fst.Search(aut, nil, nil)
	for err == nil {
		key, _ := it.Current()
		word := string(key)
		dist := exactLevenshtein(query, word)
		if dist <= maxEdits {
			if err := fn(FuzzyMatch{Word: word, Distance: dist}); err != nil {
				return err
			}
		}
		err = it.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return err
	}
	return nil
}

func dedupSorted(words []string) []string {
	cp := make([]string, len(words))
	copy(cp, words)
	sort.Strings(cp)
	out := cp[:0]
	for i, w := range cp {
		if i == 0 || w != cp[i-1] {
			out = append(out, w)
		}
	}
	return out
}

// prefixUpperBound returns the smallest byte string that is strictly
// greater than every string sharing prefix, for use as an exclusive range
// end. Returns nil (meaning "no upper bound") if prefix is all 0xff bytes.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
