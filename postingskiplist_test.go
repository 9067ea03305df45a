package blaze

import (
	"sort"
	"testing"
)

func TestPostingSkipListSortedOrder(t *testing.T) {
	sl := newPostingSkipList()
	indexes := []DocIndex{
		{DocumentID: 3, Attribute: 0, WordIndex: 1, CharIndex: 0, CharLength: 4},
		{DocumentID: 1, Attribute: 0, WordIndex: 0, CharIndex: 0, CharLength: 3},
		{DocumentID: 1, Attribute: 1, WordIndex: 0, CharIndex: 0, CharLength: 3},
		{DocumentID: 2, Attribute: 0, WordIndex: 5, CharIndex: 2, CharLength: 2},
	}
	for _, idx := range indexes {
		sl.Insert(idx)
	}

	got := sl.Sorted()
	if len(got) != len(indexes) {
		t.Fatalf("expected %d entries, got %d", len(indexes), len(got))
	}

	want := make([]DocIndex, len(indexes))
	copy(want, indexes)
	sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPostingSkipListDeduplicatesExactOccurrence(t *testing.T) {
	sl := newPostingSkipList()
	idx := DocIndex{DocumentID: 1, Attribute: 0, WordIndex: 0, CharIndex: 0, CharLength: 3}
	sl.Insert(idx)
	sl.Insert(idx)
	if sl.Len() != 1 {
		t.Fatalf("expected duplicate insert to collapse, got Len()=%d", sl.Len())
	}
}

func TestPostingKeyOrdering(t *testing.T) {
	a := PostingKey{Index: DocIndex{DocumentID: 1}}
	b := PostingKey{Index: DocIndex{DocumentID: 2}}
	if !bofKey.Before(a) {
		t.Fatalf("expected BOF to sort before any real key")
	}
	if !a.Before(eofKey) {
		t.Fatalf("expected any real key to sort before EOF")
	}
	if !a.Before(b) {
		t.Fatalf("expected doc 1 key to sort before doc 2 key")
	}
	if eofKey.Before(eofKey) {
		t.Fatalf("expected EOF not to sort before itself")
	}
}
