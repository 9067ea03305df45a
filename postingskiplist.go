// ═══════════════════════════════════════════════════════════════════════════════
// POSTING SKIP LIST: The Indexer's Per-Word Accumulator
// ═══════════════════════════════════════════════════════════════════════════════
// While a single update batch is being indexed, every distinct word needs a
// sorted accumulator of the DocIndex occurrences discovered for it so far,
// so that once the batch finishes the word's postings can be flushed to
// storage as one sorted run (the on-disk format never stores anything but
// flat sorted DocIndex runs; see docindex.go).
//
// This is the same skip list shape used elsewhere for ordered positional
// data: multiple "express lane" levels over a bottom level that holds every
// element in order, with a randomized tower height per node giving O(log n)
// expected search/insert. Only the key type and comparison changed: instead
// of a float64-encoded Position with +/-Inf sentinels, a PostingKey carries
// either a real DocIndex or one of two boolean sentinel flags, ordered
// BOF < any real DocIndex < EOF.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"math/rand"
)

const postingMaxHeight = 32

// PostingKey is an ordered key in a postingSkipList: either a real DocIndex
// occurrence or one of the two boundary sentinels.
type PostingKey struct {
	IsBOF bool
	IsEOF bool
	Index DocIndex
}

var (
	bofKey = PostingKey{IsBOF: true}
	eofKey = PostingKey{IsEOF: true}
)

// Before reports whether k sorts strictly before other.
func (k PostingKey) Before(other PostingKey) bool {
	if k.IsBOF {
		return !other.IsBOF
	}
	if other.IsEOF {
		return !k.IsEOF
	}
	if k.IsEOF {
		return false
	}
	return k.Index.Less(other.Index)
}

// Equal reports whether k and other are the same key.
func (k PostingKey) Equal(other PostingKey) bool {
	if k.IsBOF != other.IsBOF || k.IsEOF != other.IsEOF {
		return false
	}
	if k.IsBOF || k.IsEOF {
		return true
	}
	return k.Index.Equal(other.Index)
}

type postingNode struct {
	key   PostingKey
	tower [postingMaxHeight]*postingNode
}

// postingSkipList accumulates DocIndex occurrences for one word in sorted
// order while an update batch is being indexed.
type postingSkipList struct {
	head   *postingNode
	height int
}

func newPostingSkipList() *postingSkipList {
	return &postingSkipList{head: &postingNode{}, height: 1}
}

func (sl *postingSkipList) search(key PostingKey) (*postingNode, [postingMaxHeight]*postingNode) {
	var journey [postingMaxHeight]*postingNode
	current := sl.head

	for level := sl.height - 1; level >= 0; level-- {
		next := current.tower[level]
		for next != nil && next.key.Before(key) {
			current = next
			next = current.tower[level]
		}
		journey[level] = current
	}

	next := current.tower[0]
	if next != nil && next.key.Equal(key) {
		return next, journey
	}
	return nil, journey
}

// Insert adds a DocIndex occurrence to the accumulator. Duplicate
// occurrences (same document, attribute, word and char position) collapse
// into the existing node rather than growing the list; the tokenizer never
// emits the same DocIndex twice for one pass, but a word-limit truncation
// re-run could, so this stays idempotent.
func (sl *postingSkipList) Insert(idx DocIndex) {
	key := PostingKey{Index: idx}
	found, journey := sl.search(key)
	if found != nil {
		return
	}

	height := randomPostingHeight()
	node := &postingNode{key: key}

	for level := 0; level < height; level++ {
		pred := journey[level]
		if pred == nil {
			pred = sl.head
		}
		node.tower[level] = pred.tower[level]
		pred.tower[level] = node
	}

	if height > sl.height {
		sl.height = height
	}
}

// Len returns the number of occurrences currently accumulated.
func (sl *postingSkipList) Len() int {
	n := 0
	for cur := sl.head.tower[0]; cur != nil; cur = cur.tower[0] {
		n++
	}
	return n
}

// Sorted drains the accumulator into a sorted slice of DocIndex values,
// ready to be flushed as one postings run via EncodeDocIndexes.
func (sl *postingSkipList) Sorted() []DocIndex {
	out := make([]DocIndex, 0, sl.Len())
	for cur := sl.head.tower[0]; cur != nil; cur = cur.tower[0] {
		out = append(out, cur.key.Index)
	}
	return out
}

func randomPostingHeight() int {
	height := 1
	for rand.Float64() < 0.5 && height < postingMaxHeight {
		height++
	}
	return height
}
