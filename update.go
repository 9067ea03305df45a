// ═══════════════════════════════════════════════════════════════════════════════
// UPDATES: Versioned Changes to an Index
// ═══════════════════════════════════════════════════════════════════════════════
// Every change to a committed index — a new schema, a batch of documents, a
// set of deletions, a synonym list — is applied synchronously by a Database
// method, one at a time under its write lock, and is given the next id from
// a monotonically increasing counter. Applying an update produces a
// ProcessedUpdateResult recorded under its update id, which GetUpdateResult
// reads back. The Update type describes these changes as values; nothing
// queues or persists Update values themselves.
//
// The one legality gate enforced here, independent of storage: a schema
// update may only change attribute display/index/rank properties in place.
// Renaming the identifier, reordering attributes, or adding/removing
// attributes through an update (rather than a fresh index) is rejected before
// it ever reaches the store.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// UpdateKind distinguishes the six shapes an Update can take. Synonyms are
// split into Addition and Deletion rather than one wholesale-replace variant:
// additions merge into the existing table, deletions remove either a whole
// synonym key or only specific alternatives under it.
type UpdateKind int

const (
	SchemaUpdate UpdateKind = iota
	DocumentsAddition
	DocumentsDeletion
	SynonymsAddition
	SynonymsDeletion
	CustomSettings
)

func (k UpdateKind) String() string {
	switch k {
	case SchemaUpdate:
		return "SchemaUpdate"
	case DocumentsAddition:
		return "DocumentsAddition"
	case DocumentsDeletion:
		return "DocumentsDeletion"
	case SynonymsAddition:
		return "SynonymsAddition"
	case SynonymsDeletion:
		return "SynonymsDeletion"
	case CustomSettings:
		return "CustomSettings"
	default:
		return fmt.Sprintf("UpdateKind(%d)", int(k))
	}
}

// InputDocument is one caller-supplied document: field values keyed by
// attribute name, exactly as submitted, before schema resolution or
// tokenization. (Not to be confused with criteria.go's RawDocument, which is
// a mid-ranking query candidate; the two never appear in the same context.)
type InputDocument map[string]string

// Update is one pending change to an index. Only the fields relevant to Kind
// are populated.
type Update struct {
	Kind UpdateKind

	Schema Schema

	Documents []InputDocument

	DocumentIds []DocumentId

	// Synonyms carries the alternatives to merge into the table for
	// SynonymsAddition.
	Synonyms map[string][]string

	// SynonymDeletions carries, for SynonymsDeletion, one entry per
	// synonym key to modify: a nil slice removes the key entirely, a
	// non-nil slice removes only those specific alternatives (leaving the
	// rest of the key's alternatives in place).
	SynonymDeletions map[string][]string

	// CustomSettingsBlob carries the opaque payload for CustomSettings.
	CustomSettingsBlob []byte
}

// ProcessedUpdateResult records the outcome of one applied update.
type ProcessedUpdateResult struct {
	UpdateID         uint64
	Kind             UpdateKind
	Duration         time.Duration
	DocumentsTouched uint64
	Err              string
}

// Succeeded reports whether the update applied without error.
func (r ProcessedUpdateResult) Succeeded() bool { return r.Err == "" }

// EncodeUpdateResult serializes r into a flat, versionless binary record.
func EncodeUpdateResult(r ProcessedUpdateResult) []byte {
	errBytes := []byte(r.Err)
	buf := make([]byte, 8+4+8+8+4+len(errBytes))
	binary.BigEndian.PutUint64(buf[0:8], r.UpdateID)
	binary.BigEndian.PutUint32(buf[8:12], uint32(r.Kind))
	binary.BigEndian.PutUint64(buf[12:20], uint64(r.Duration))
	binary.BigEndian.PutUint64(buf[20:28], r.DocumentsTouched)
	binary.BigEndian.PutUint32(buf[28:32], uint32(len(errBytes)))
	copy(buf[32:], errBytes)
	return buf
}

// DecodeUpdateResult is the inverse of EncodeUpdateResult.
func DecodeUpdateResult(buf []byte) (ProcessedUpdateResult, error) {
	if len(buf) < 32 {
		return ProcessedUpdateResult{}, ErrInvalidParameter
	}
	errLen := binary.BigEndian.Uint32(buf[28:32])
	if uint32(len(buf)-32) != errLen {
		return ProcessedUpdateResult{}, ErrInvalidParameter
	}
	return ProcessedUpdateResult{
		UpdateID:         binary.BigEndian.Uint64(buf[0:8]),
		Kind:             UpdateKind(binary.BigEndian.Uint32(buf[8:12])),
		Duration:         time.Duration(binary.BigEndian.Uint64(buf[12:20])),
		DocumentsTouched: binary.BigEndian.Uint64(buf[20:28]),
		Err:              string(buf[32:]),
	}, nil
}

// NextUpdateID allocates and persists the next monotonic update id inside an
// already-open write transaction.
func NextUpdateID(txn Txn) (uint64, error) {
	var next uint64
	raw, err := txn.Get([]byte(keyMainLastUpdateID))
	switch err {
	case nil:
		if len(raw) != 8 {
			return 0, ErrInvalidParameter
		}
		next = binary.BigEndian.Uint64(raw) + 1
	case ErrKeyNotFound:
		next = 0
	default:
		return 0, err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := txn.Set([]byte(keyMainLastUpdateID), buf); err != nil {
		return 0, err
	}
	return next, nil
}

// PutUpdateResult records the outcome of an applied update under its id.
func PutUpdateResult(txn Txn, result ProcessedUpdateResult) error {
	return txn.Set(updateResultKey(result.UpdateID), EncodeUpdateResult(result))
}

// GetUpdateResult looks up a previously recorded update outcome.
func GetUpdateResult(store Store, id uint64) (ProcessedUpdateResult, error) {
	var result ProcessedUpdateResult
	err := store.View(func(txn Txn) error {
		raw, err := txn.Get(updateResultKey(id))
		if err != nil {
			return err
		}
		result, err = DecodeUpdateResult(raw)
		return err
	})
	return result, err
}

// SchemaUpdatePlan is the decision ApplySchemaUpdate reaches: either the
// change is rejected outright, or it's legal and (possibly) requires
// reindexing every attribute whose Indexed or Ranked property flipped.
type SchemaUpdatePlan struct {
	Schema          Schema
	ReindexRequired bool
	ReindexAttrs    []SchemaAttr
}

// ApplySchemaUpdate validates candidate against current and, if legal,
// returns the plan for applying it. A schema update may only change
// attribute SchemaProps in place: renaming the identifier, reordering
// attributes, introducing new attributes, or removing attributes through an
// update (as opposed to building a fresh index) are all rejected with
// ErrUnsupportedSchemaChange wrapping the specific UnsupportedOperation.
func ApplySchemaUpdate(current, candidate Schema) (SchemaUpdatePlan, error) {
	diffs := DiffSchemas(current, candidate)

	var reindexAttrs []SchemaAttr
	for _, d := range diffs {
		switch d.Kind {
		case DiffIdentChange:
			return SchemaUpdatePlan{}, fmt.Errorf("%w: %s", ErrUnsupportedSchemaChange, CannotUpdateSchemaIdentifier)
		case DiffAttrMove:
			return SchemaUpdatePlan{}, fmt.Errorf("%w: %s", ErrUnsupportedSchemaChange, CannotReorderSchemaAttribute)
		case DiffNewAttr:
			return SchemaUpdatePlan{}, fmt.Errorf("%w: %s", ErrUnsupportedSchemaChange, CannotIntroduceNewSchemaAttribute)
		case DiffRemovedAttr:
			return SchemaUpdatePlan{}, fmt.Errorf("%w: %s", ErrUnsupportedSchemaChange, CannotRemoveSchemaAttribute)
		case DiffAttrPropsChange:
			if d.OldProps.Indexed != d.NewProps.Indexed || d.OldProps.Ranked != d.NewProps.Ranked {
				attr, _ := candidate.Attribute(d.Name)
				reindexAttrs = append(reindexAttrs, attr)
			}
		}
	}

	return SchemaUpdatePlan{
		Schema:          candidate,
		ReindexRequired: len(reindexAttrs) > 0,
		ReindexAttrs:    reindexAttrs,
	}, nil
}

// TouchedDocuments tracks, as a roaring bitmap, which document ids one
// update batch has added, modified, or deleted. Database uses it to count
// the distinct documents a batch touched (ProcessedUpdateResult's
// DocumentsTouched).
type TouchedDocuments struct {
	bitmap *roaring64.Bitmap
}

// NewTouchedDocuments returns an empty tracker.
func NewTouchedDocuments() *TouchedDocuments {
	return &TouchedDocuments{bitmap: roaring64.New()}
}

// Touch marks id as touched by the current batch.
func (t *TouchedDocuments) Touch(id DocumentId) {
	t.bitmap.Add(uint64(id))
}

// Contains reports whether id was touched.
func (t *TouchedDocuments) Contains(id DocumentId) bool {
	return t.bitmap.Contains(uint64(id))
}

// Len returns the number of distinct documents touched.
func (t *TouchedDocuments) Len() uint64 {
	return t.bitmap.GetCardinality()
}

// Ids returns every touched document id in ascending order.
func (t *TouchedDocuments) Ids() []DocumentId {
	vals := t.bitmap.ToArray()
	out := make([]DocumentId, len(vals))
	for i, v := range vals {
		out[i] = DocumentId(v)
	}
	return out
}
