package blaze

import "testing"

func TestDocIndexEncodeDecodeRoundTrip(t *testing.T) {
	d := DocIndex{DocumentID: DocumentId(0x1122334455667788), Attribute: 3, WordIndex: 42, CharIndex: 7, CharLength: 5}
	buf := make([]byte, docIndexSize)
	if n := EncodeDocIndex(buf, d); n != docIndexSize {
		t.Fatalf("expected %d bytes written, got %d", docIndexSize, n)
	}
	got := DecodeDocIndex(buf)
	if got != d {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, d)
	}
}

func TestDocIndexLessOrdersByDeclaredFields(t *testing.T) {
	base := DocIndex{DocumentID: 1, Attribute: 1, WordIndex: 1, CharIndex: 1, CharLength: 1}

	higherDoc := base
	higherDoc.DocumentID = 2
	if !base.Less(higherDoc) {
		t.Fatalf("expected lower DocumentID to sort first")
	}

	higherAttr := base
	higherAttr.Attribute = 2
	if !base.Less(higherAttr) {
		t.Fatalf("expected lower Attribute to sort first when DocumentID ties")
	}

	higherWord := base
	higherWord.WordIndex = 2
	if !base.Less(higherWord) {
		t.Fatalf("expected lower WordIndex to sort first when DocumentID/Attribute tie")
	}

	higherChar := base
	higherChar.CharIndex = 2
	if !base.Less(higherChar) {
		t.Fatalf("expected lower CharIndex to sort first when earlier fields tie")
	}

	if base.Less(base) {
		t.Fatalf("a value must not be Less than itself")
	}
}

func TestDocIndexesEncodeDecodeRoundTrip(t *testing.T) {
	indexes := []DocIndex{
		{DocumentID: 1, Attribute: 0, WordIndex: 0, CharIndex: 0, CharLength: 4},
		{DocumentID: 1, Attribute: 0, WordIndex: 1, CharIndex: 5, CharLength: 6},
		{DocumentID: 2, Attribute: 1, WordIndex: 0, CharIndex: 0, CharLength: 3},
	}
	buf := EncodeDocIndexes(indexes)
	if len(buf) != len(indexes)*docIndexSize {
		t.Fatalf("expected %d bytes, got %d", len(indexes)*docIndexSize, len(buf))
	}
	decoded, err := DecodeDocIndexes(buf)
	if err != nil {
		t.Fatalf("DecodeDocIndexes: %v", err)
	}
	if len(decoded) != len(indexes) {
		t.Fatalf("expected %d decoded entries, got %d", len(indexes), len(decoded))
	}
	for i := range indexes {
		if decoded[i] != indexes[i] {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, decoded[i], indexes[i])
		}
	}
}

func TestDecodeDocIndexesRejectsMisalignedBuffer(t *testing.T) {
	if _, err := DecodeDocIndexes(make([]byte, docIndexSize+1)); err != ErrInvalidParameter {
		t.Fatalf("expected ErrInvalidParameter for misaligned buffer, got %v", err)
	}
}

func TestDecodeDocIndexesEmptyBuffer(t *testing.T) {
	decoded, err := DecodeDocIndexes(nil)
	if err != nil {
		t.Fatalf("DecodeDocIndexes(nil): %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected no entries, got %d", len(decoded))
	}
}
