package blaze

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore("", nil)
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpdateResultRoundTrip(t *testing.T) {
	store := openTestStore(t)

	result := ProcessedUpdateResult{
		UpdateID:         7,
		Kind:             DocumentsAddition,
		Duration:         150 * time.Millisecond,
		DocumentsTouched: 42,
	}

	err := store.Update(func(txn Txn) error {
		return PutUpdateResult(txn, result)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := GetUpdateResult(store, 7)
	if err != nil {
		t.Fatalf("GetUpdateResult: %v", err)
	}
	if got != result {
		t.Fatalf("got %+v, want %+v", got, result)
	}
	if !got.Succeeded() {
		t.Fatalf("expected Succeeded() to be true for an empty Err")
	}
}

func TestUpdateResultRoundTripWithError(t *testing.T) {
	store := openTestStore(t)

	result := ProcessedUpdateResult{
		UpdateID: 1,
		Kind:     SchemaUpdate,
		Err:      "cannot reorder schema attributes",
	}
	if err := store.Update(func(txn Txn) error { return PutUpdateResult(txn, result) }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := GetUpdateResult(store, 1)
	if err != nil {
		t.Fatalf("GetUpdateResult: %v", err)
	}
	if got.Succeeded() {
		t.Fatalf("expected Succeeded() to be false when Err is set")
	}
	if got.Err != result.Err {
		t.Fatalf("got Err %q, want %q", got.Err, result.Err)
	}
}

func TestNextUpdateIDIsMonotonic(t *testing.T) {
	store := openTestStore(t)

	var ids []uint64
	for i := 0; i < 3; i++ {
		err := store.Update(func(txn Txn) error {
			id, err := NextUpdateID(txn)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	for i, id := range ids {
		if id != uint64(i) {
			t.Fatalf("expected sequential ids starting at 0, got %v", ids)
		}
	}
}

func buildTestSchema(t *testing.T, attrs map[string]SchemaProps) Schema {
	t.Helper()
	b := NewSchemaBuilder("id")
	for name, props := range attrs {
		b.NewAttribute(name, props)
	}
	return b.Build()
}

func TestApplySchemaUpdateAcceptsPropsChange(t *testing.T) {
	current := buildTestSchema(t, map[string]SchemaProps{"title": Displayed.Or(Indexed)})
	candidate := buildTestSchema(t, map[string]SchemaProps{"title": Displayed.Or(Indexed).Or(Ranked)})

	plan, err := ApplySchemaUpdate(current, candidate)
	if err != nil {
		t.Fatalf("ApplySchemaUpdate: %v", err)
	}
	if !plan.ReindexRequired {
		t.Fatalf("expected reindex to be required when Ranked flips")
	}
	if len(plan.ReindexAttrs) != 1 {
		t.Fatalf("expected exactly one attribute flagged for reindex, got %v", plan.ReindexAttrs)
	}
}

func TestApplySchemaUpdateNoReindexWhenOnlyDisplayedChanges(t *testing.T) {
	current := buildTestSchema(t, map[string]SchemaProps{"title": Displayed.Or(Indexed)})
	candidate := buildTestSchema(t, map[string]SchemaProps{"title": Indexed})

	plan, err := ApplySchemaUpdate(current, candidate)
	if err != nil {
		t.Fatalf("ApplySchemaUpdate: %v", err)
	}
	if plan.ReindexRequired {
		t.Fatalf("expected no reindex when only Displayed changes")
	}
}

func TestApplySchemaUpdateRejectsNewAttribute(t *testing.T) {
	current := buildTestSchema(t, map[string]SchemaProps{"title": Displayed})

	builder := NewSchemaBuilder("id")
	builder.NewAttribute("title", Displayed)
	builder.NewAttribute("body", Indexed)
	candidate := builder.Build()

	_, err := ApplySchemaUpdate(current, candidate)
	if !errors.Is(err, ErrUnsupportedSchemaChange) {
		t.Fatalf("expected ErrUnsupportedSchemaChange, got %v", err)
	}
}

func TestApplySchemaUpdateRejectsIdentifierChange(t *testing.T) {
	current := NewSchemaBuilder("id").Build()
	candidate := NewSchemaBuilder("uuid").Build()

	_, err := ApplySchemaUpdate(current, candidate)
	if !errors.Is(err, ErrUnsupportedSchemaChange) {
		t.Fatalf("expected ErrUnsupportedSchemaChange, got %v", err)
	}
}

func TestApplySchemaUpdateRejectsAttributeReorder(t *testing.T) {
	builderOld := NewSchemaBuilder("id")
	builderOld.NewAttribute("title", Displayed)
	builderOld.NewAttribute("body", Indexed)
	current := builderOld.Build()

	builderNew := NewSchemaBuilder("id")
	builderNew.NewAttribute("body", Indexed)
	builderNew.NewAttribute("title", Displayed)
	candidate := builderNew.Build()

	_, err := ApplySchemaUpdate(current, candidate)
	if !errors.Is(err, ErrUnsupportedSchemaChange) {
		t.Fatalf("expected ErrUnsupportedSchemaChange, got %v", err)
	}
}

func TestTouchedDocumentsTracksLargeIds(t *testing.T) {
	touched := NewTouchedDocuments()
	ids := []DocumentId{1, 2, DocumentId(1) << 40, DocumentId(0xffffffffff)}
	for _, id := range ids {
		touched.Touch(id)
	}

	if touched.Len() != uint64(len(ids)) {
		t.Fatalf("expected %d touched documents, got %d", len(ids), touched.Len())
	}
	for _, id := range ids {
		if !touched.Contains(id) {
			t.Fatalf("expected %d to be marked touched", id)
		}
	}
	if touched.Contains(999) {
		t.Fatalf("expected an untouched id to report false")
	}
}
