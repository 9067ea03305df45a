// ═══════════════════════════════════════════════════════════════════════════════
// DOCINDEX: The Fixed-Width Postings Record
// ═══════════════════════════════════════════════════════════════════════════════
// DocIndex pins a single word occurrence to a document, an attribute within
// that document, and a position within the attribute's tokenized text. It is
// the unit the Vocabulary→Postings collection stores: every word in the
// index maps to a sorted run of DocIndex values.
//
// LAYOUT (16 bytes, little-endian, matches the storage key/value contract):
//
//	offset 0  document_id  uint64
//	offset 8  attribute    uint16
//	offset 10 word_index   uint16
//	offset 12 char_index   uint16
//	offset 14 char_length  uint16
//
// Fixed width means postings lists are flat byte slices: no length prefixes,
// no pointer chasing, and a posting run of N occurrences is read as a single
// N*16 byte slab and split by index.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import "encoding/binary"

const docIndexSize = 16

// DocIndex locates one occurrence of an indexed word.
type DocIndex struct {
	DocumentID DocumentId
	Attribute  uint16
	WordIndex  uint16
	CharIndex  uint16
	CharLength uint16
}

// Less reports whether d sorts before other. DocIndex values are ordered by
// the same field order they're declared in: document, then attribute, then
// word position, then character position. This ordering is the invariant
// postings runs are stored and merged under.
func (d DocIndex) Less(other DocIndex) bool {
	if d.DocumentID != other.DocumentID {
		return d.DocumentID < other.DocumentID
	}
	if d.Attribute != other.Attribute {
		return d.Attribute < other.Attribute
	}
	if d.WordIndex != other.WordIndex {
		return d.WordIndex < other.WordIndex
	}
	if d.CharIndex != other.CharIndex {
		return d.CharIndex < other.CharIndex
	}
	return d.CharLength < other.CharLength
}

// Equal reports field-wise equality.
func (d DocIndex) Equal(other DocIndex) bool {
	return d == other
}

// EncodeDocIndex writes the fixed 16-byte representation of d into dst,
// which must be at least docIndexSize bytes long, and returns the number of
// bytes written.
func EncodeDocIndex(dst []byte, d DocIndex) int {
	binary.LittleEndian.PutUint64(dst[0:8], uint64(d.DocumentID))
	binary.LittleEndian.PutUint16(dst[8:10], d.Attribute)
	binary.LittleEndian.PutUint16(dst[10:12], d.WordIndex)
	binary.LittleEndian.PutUint16(dst[12:14], d.CharIndex)
	binary.LittleEndian.PutUint16(dst[14:16], d.CharLength)
	return docIndexSize
}

// DecodeDocIndex reads one DocIndex from the front of src, which must be at
// least docIndexSize bytes long.
func DecodeDocIndex(src []byte) DocIndex {
	return DocIndex{
		DocumentID: DocumentId(binary.LittleEndian.Uint64(src[0:8])),
		Attribute:  binary.LittleEndian.Uint16(src[8:10]),
		WordIndex:  binary.LittleEndian.Uint16(src[10:12]),
		CharIndex:  binary.LittleEndian.Uint16(src[12:14]),
		CharLength: binary.LittleEndian.Uint16(src[14:16]),
	}
}

// EncodeDocIndexes serializes a sorted slice of DocIndex values into a flat
// postings run, one docIndexSize slab per element.
func EncodeDocIndexes(indexes []DocIndex) []byte {
	buf := make([]byte, len(indexes)*docIndexSize)
	for i, d := range indexes {
		EncodeDocIndex(buf[i*docIndexSize:], d)
	}
	return buf
}

// DecodeDocIndexes splits a flat postings run back into DocIndex values. It
// returns an error if the run length is not a multiple of docIndexSize.
func DecodeDocIndexes(buf []byte) ([]DocIndex, error) {
	if len(buf)%docIndexSize != 0 {
		return nil, ErrInvalidParameter
	}
	n := len(buf) / docIndexSize
	out := make([]DocIndex, n)
	for i := 0; i < n; i++ {
		out[i] = DecodeDocIndex(buf[i*docIndexSize:])
	}
	return out, nil
}

// Highlight describes where a matched word sits in displayed source text,
// stripped of the ranking-only fields DocIndex carries. Query results return
// Highlight values so callers can underline matches without re-tokenizing.
type Highlight struct {
	Attribute  uint16
	CharIndex  uint16
	CharLength uint16
}

// TmpMatch is the scratch record the query engine accumulates per candidate
// document while criteria are being evaluated. It is never persisted; it
// exists only for the lifetime of one query.
type TmpMatch struct {
	QueryIndex uint32
	Distance   uint8
	Attribute  uint16
	WordIndex  uint16
	IsExact    bool
}

// Document is one ranked query result: the matched document's id, the
// highlights to render, and (for ranking/debugging purposes) the raw
// TmpMatch values that produced it.
type Document struct {
	ID         DocumentId
	Highlights []Highlight
	Matches    []TmpMatch
}
