// ═══════════════════════════════════════════════════════════════════════════════
// INDEXER: Turning Tokenized Text Into Postings
// ═══════════════════════════════════════════════════════════════════════════════
// Indexer accumulates, across one update batch, every word occurrence found
// in every indexed attribute of every touched document. It never talks to
// storage directly — Build() hands back the finished word→postings map and
// the per-document word sets, which the caller (database.go's AddDocuments)
// is responsible for merging into the committed index.
//
// Two extra behaviors beyond plain tokenization, both grounded in how the
// original indexer folded text:
//
//  1. A per-field word-count budget (WordLimit, default 1000): once a
//     field has produced that many word positions, indexing of that field
//     stops. This bounds how much a single pathological document (a
//     multi-megabyte blob misfiled into a text attribute) can cost.
//  2. Alongside the token's own form, a second occurrence is indexed under
//     its diacritic-folded ASCII form when the two differ and the token
//     contains no CJK codepoint — so searching "cafe" still finds a
//     document containing "café". CJK text is excluded because folding
//     would destroy it rather than normalize it.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const defaultWordLimit = 1000

// Indexer accumulates postings for one update batch.
type Indexer struct {
	wordLimit    int
	accumulators map[string]*postingSkipList
	docsWords    map[DocumentId]map[string]struct{}
}

// NewIndexer creates an Indexer with the default word limit.
func NewIndexer() *Indexer {
	return NewIndexerWithWordLimit(defaultWordLimit)
}

// NewIndexerWithWordLimit creates an Indexer with an explicit per-field word
// position budget.
func NewIndexerWithWordLimit(limit int) *Indexer {
	return &Indexer{
		wordLimit:    limit,
		accumulators: make(map[string]*postingSkipList),
		docsWords:    make(map[DocumentId]map[string]struct{}),
	}
}

// IndexText tokenizes text as one attribute value of document id.
func (ix *Indexer) IndexText(id DocumentId, attr SchemaAttr, text string) {
	tok := NewTokenizer(text)
	for {
		t, ok := tok.Next()
		if !ok {
			return
		}
		if !ix.indexToken(t, id, attr) {
			return
		}
	}
}

// IndexTextSeq tokenizes values as the several elements of one array-valued
// attribute, treating them as one continuous sequence (see SeqTokenizer).
func (ix *Indexer) IndexTextSeq(id DocumentId, attr SchemaAttr, values []string) {
	seq := NewSeqTokenizer(values)
	for {
		t, ok := seq.Next()
		if !ok {
			return
		}
		if !ix.indexToken(t, id, attr) {
			return
		}
	}
}

// indexToken folds and accumulates a single token, returning false once the
// word limit for this field has been reached.
func (ix *Indexer) indexToken(tok Token, id DocumentId, attr SchemaAttr) bool {
	if tok.WordIndex >= ix.wordLimit {
		return false
	}

	lower := strings.ToLower(tok.Word)
	if di, ok := tokenToDocIndex(id, attr, lower, tok.WordIndex, tok.CharIndex); ok {
		ix.accumulate(lower, di, id)
	} else {
		return false
	}

	if !containsCJK(lower) {
		if folded := foldASCII(lower); folded != lower && folded != "" {
			if di, ok := tokenToDocIndex(id, attr, folded, tok.WordIndex, tok.CharIndex); ok {
				ix.accumulate(folded, di, id)
			}
		}
	}

	return true
}

func (ix *Indexer) accumulate(word string, di DocIndex, id DocumentId) {
	acc, ok := ix.accumulators[word]
	if !ok {
		acc = newPostingSkipList()
		ix.accumulators[word] = acc
	}
	acc.Insert(di)

	words, ok := ix.docsWords[id]
	if !ok {
		words = make(map[string]struct{})
		ix.docsWords[id] = words
	}
	words[word] = struct{}{}
}

func tokenToDocIndex(id DocumentId, attr SchemaAttr, word string, wordIndex, charIndex int) (DocIndex, bool) {
	if wordIndex < 0 || wordIndex > 0xffff || charIndex < 0 || charIndex > 0xffff {
		return DocIndex{}, false
	}
	charLength := len([]rune(word))
	if charLength > 0xffff {
		return DocIndex{}, false
	}
	return DocIndex{
		DocumentID: id,
		Attribute:  uint16(attr),
		WordIndex:  uint16(wordIndex),
		CharIndex:  uint16(charIndex),
		CharLength: uint16(charLength),
	}, true
}

func containsCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}

// foldASCII strips combining diacritical marks, turning e.g. "café" into
// "cafe". It leaves codepoints with no decomposition (including CJK, which
// callers are expected to have already excluded) unchanged.
func foldASCII(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Indexed is the finished output of one Indexer pass: the sorted postings
// run for every word touched, and the set of words touched per document.
type Indexed struct {
	WordsDocIndexes map[string][]DocIndex
	DocsWords       map[DocumentId]*Vocabulary
}

// Build finalizes the accumulators into sorted postings runs and per-document
// word-set vocabularies.
func (ix *Indexer) Build() (*Indexed, error) {
	wordsDocIndexes := make(map[string][]DocIndex, len(ix.accumulators))
	for word, acc := range ix.accumulators {
		wordsDocIndexes[word] = acc.Sorted()
	}

	docsWords := make(map[DocumentId]*Vocabulary, len(ix.docsWords))
	for id, words := range ix.docsWords {
		list := make([]string, 0, len(words))
		for w := range words {
			list = append(list, w)
		}
		voc, err := BuildVocabulary(list)
		if err != nil {
			return nil, err
		}
		docsWords[id] = voc
	}

	return &Indexed{WordsDocIndexes: wordsDocIndexes, DocsWords: docsWords}, nil
}
