package blaze

import (
	"sort"
	"testing"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	store, err := OpenBadgerStore("", nil)
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	db, err := OpenDatabase(store, nil)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func movieSchema() Schema {
	b := NewSchemaBuilder("id")
	b.NewAttribute("id", Displayed)
	b.NewAttribute("title", Displayed.Or(Indexed))
	b.NewAttribute("overview", Indexed)
	return b.Build()
}

func TestDatabaseAddDocumentsConcurrentIndexingMergesAllWords(t *testing.T) {
	store, err := OpenBadgerStore("", nil)
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	cfg := DefaultConfig()
	cfg.IndexConcurrency = 4
	db, err := OpenDatabaseWithConfig(store, cfg)
	if err != nil {
		t.Fatalf("OpenDatabaseWithConfig: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}

	docs := make([]InputDocument, 0, 20)
	for i := 0; i < 20; i++ {
		docs = append(docs, InputDocument{
			"id":       string(rune('a' + i)),
			"title":    "shared title word",
			"overview": "unique overview text",
		})
	}
	if _, err := db.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := db.QueryBuilder().Execute("shared")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != len(docs) {
		t.Fatalf("expected every document indexed by every worker chunk to match, got %d want %d", len(results), len(docs))
	}
}

func TestDatabaseUpdateSchemaThenAddAndQueryDocuments(t *testing.T) {
	db := newTestDatabase(t)

	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}

	docs := []InputDocument{
		{"id": "1", "title": "the matrix", "overview": "a hacker discovers reality is a simulation"},
		{"id": "2", "title": "the matrix reloaded", "overview": "neo fights agents again"},
	}
	if _, err := db.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := db.QueryBuilder().Execute("matrix")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both documents to match 'matrix', got %d: %+v", len(results), results)
	}
}

func TestDatabaseDocumentRetrievalRespectsDisplayed(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}
	doc := InputDocument{"id": "1", "title": "the matrix", "overview": "secret plot details"}
	if _, err := db.AddDocuments([]InputDocument{doc}); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	id := NewDocumentId("1")
	got, err := db.Document(id)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got["title"] != "the matrix" {
		t.Fatalf("expected displayed title field, got %+v", got)
	}
	if _, ok := got["overview"]; ok {
		t.Fatalf("overview is Indexed but not Displayed, should not be retrievable: %+v", got)
	}
}

func TestDatabaseDeleteDocumentsRemovesPostings(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}
	docs := []InputDocument{
		{"id": "1", "title": "the matrix", "overview": "a hacker discovers reality is a simulation"},
		{"id": "2", "title": "inception", "overview": "a thief steals secrets through dreams"},
	}
	if _, err := db.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	matrixID := NewDocumentId("1")
	if _, err := db.DeleteDocuments([]DocumentId{matrixID}); err != nil {
		t.Fatalf("DeleteDocuments: %v", err)
	}

	results, err := db.QueryBuilder().Execute("matrix")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected deleted document's postings to be gone, got %+v", results)
	}

	if _, err := db.Document(matrixID); err == nil {
		t.Fatalf("expected deleted document to be unretrievable")
	}
}

func TestDatabaseAddSynonymsExpandsQuery(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}
	docs := []InputDocument{
		{"id": "1", "title": "fast vehicle", "overview": "a quick car chase"},
	}
	if _, err := db.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if _, err := db.AddSynonyms(map[string][]string{"speedy": {"quick"}}); err != nil {
		t.Fatalf("AddSynonyms: %v", err)
	}

	results, err := db.QueryBuilder().Execute("speedy")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected synonym expansion to surface the document, got %+v", results)
	}
}

func TestDatabaseAddSynonymsMergesRatherThanReplaces(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.AddSynonyms(map[string][]string{"speedy": {"quick"}}); err != nil {
		t.Fatalf("AddSynonyms: %v", err)
	}
	if _, err := db.AddSynonyms(map[string][]string{"speedy": {"fast"}, "big": {"large"}}); err != nil {
		t.Fatalf("AddSynonyms: %v", err)
	}

	snap := db.inner.Load()
	got := append([]string(nil), snap.synonymAlternate["speedy"]...)
	sort.Strings(got)
	want := []string{"fast", "quick"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected speedy's alternatives to merge to %v, got %v", want, got)
	}
	if len(snap.synonymAlternate["big"]) != 1 || snap.synonymAlternate["big"][0] != "large" {
		t.Fatalf("expected the second AddSynonyms call to add the new key 'big', got %+v", snap.synonymAlternate)
	}
}

func TestDatabaseDeleteSynonymsRemovesKeyOrAlternatives(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.AddSynonyms(map[string][]string{
		"speedy": {"quick", "fast"},
		"big":    {"large"},
	}); err != nil {
		t.Fatalf("AddSynonyms: %v", err)
	}

	if _, err := db.DeleteSynonyms(map[string][]string{"speedy": {"fast"}}); err != nil {
		t.Fatalf("DeleteSynonyms (partial): %v", err)
	}
	snap := db.inner.Load()
	if len(snap.synonymAlternate["speedy"]) != 1 || snap.synonymAlternate["speedy"][0] != "quick" {
		t.Fatalf("expected only 'fast' to be removed from speedy, got %+v", snap.synonymAlternate["speedy"])
	}

	if _, err := db.DeleteSynonyms(map[string][]string{"big": nil}); err != nil {
		t.Fatalf("DeleteSynonyms (whole key): %v", err)
	}
	snap = db.inner.Load()
	if _, exists := snap.synonymAlternate["big"]; exists {
		t.Fatalf("expected a nil-valued deletion to remove the whole key, got %+v", snap.synonymAlternate)
	}
}

func TestDatabaseApplyCustomSettingsRoundTrips(t *testing.T) {
	db := newTestDatabase(t)
	blob := []byte(`{"ranking_order":["typo","words"]}`)
	if _, err := db.ApplyCustomSettings(blob); err != nil {
		t.Fatalf("ApplyCustomSettings: %v", err)
	}
	got, err := db.CustomSettings()
	if err != nil {
		t.Fatalf("CustomSettings: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("expected CustomSettings to round-trip the stored blob, got %q want %q", got, blob)
	}
}

func TestDatabaseUpdateSchemaRejectsIllegalChange(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.UpdateSchema(movieSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}

	b := NewSchemaBuilder("id")
	b.NewAttribute("id", Displayed)
	b.NewAttribute("title", Displayed.Or(Indexed))
	b.NewAttribute("overview", Indexed)
	b.NewAttribute("tagline", Displayed)
	illegal := b.Build()

	if _, err := db.UpdateSchema(illegal); err == nil {
		t.Fatalf("expected adding a new attribute through UpdateSchema to be rejected")
	}
}

func TestEncodeDecodeSchemaRoundTrip(t *testing.T) {
	schema := movieSchema()
	decoded, err := DecodeSchema(EncodeSchema(schema))
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	if decoded.IdentifierName() != schema.IdentifierName() {
		t.Fatalf("identifier mismatch: got %q want %q", decoded.IdentifierName(), schema.IdentifierName())
	}
	if decoded.Len() != schema.Len() {
		t.Fatalf("attribute count mismatch: got %d want %d", decoded.Len(), schema.Len())
	}
	attr, ok := decoded.Attribute("title")
	if !ok {
		t.Fatalf("expected title attribute to survive round trip")
	}
	if decoded.Props(attr) != (Displayed.Or(Indexed)) {
		t.Fatalf("expected title's props to survive round trip, got %+v", decoded.Props(attr))
	}
}

func TestEncodeDecodeSynonymAlternativesRoundTrip(t *testing.T) {
	synonyms := map[string][]string{
		"quick": {"fast", "speedy"},
		"slow":  {"sluggish"},
	}
	decoded, err := DecodeSynonymAlternatives(EncodeSynonymAlternatives(synonyms))
	if err != nil {
		t.Fatalf("DecodeSynonymAlternatives: %v", err)
	}
	if len(decoded["quick"]) != 2 || decoded["quick"][0] != "fast" || decoded["quick"][1] != "speedy" {
		t.Fatalf("unexpected decoded alternatives for 'quick': %+v", decoded["quick"])
	}
	if len(decoded["slow"]) != 1 || decoded["slow"][0] != "sluggish" {
		t.Fatalf("unexpected decoded alternatives for 'slow': %+v", decoded["slow"])
	}
}

// The following tests exercise the engine end to end against the same
// three-document dataset throughout: doc 1 has "hello world" in its title,
// doc 2 has "world" in its title and "hello" in its body, doc 3 has
// "hellish" in its title only. Several of them put two matches under the
// same query_index in one document (the case the criterion-cascade
// aggregation bugs hid behind), and together they cover a plain query, a
// typo'd query, a synonym query, a prefix query, and a query after deletion.

func helloWorldSchema() Schema {
	b := NewSchemaBuilder("id")
	b.NewAttribute("id", Displayed)
	b.NewAttribute("title", Displayed.Or(Indexed))
	b.NewAttribute("body", Displayed.Or(Indexed))
	return b.Build()
}

func seedHelloWorldDocs(t *testing.T, db *Database) {
	t.Helper()
	if _, err := db.UpdateSchema(helloWorldSchema()); err != nil {
		t.Fatalf("UpdateSchema: %v", err)
	}
	docs := []InputDocument{
		{"id": "1", "title": "hello world", "body": ""},
		{"id": "2", "title": "world", "body": "hello"},
		{"id": "3", "title": "hellish", "body": ""},
	}
	if _, err := db.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
}

func docIDs(results []*Document) []DocumentId {
	out := make([]DocumentId, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestEndToEndQueryHelloRanksDoc1AheadOfDoc2ByAttribute(t *testing.T) {
	db := newTestDatabase(t)
	seedHelloWorldDocs(t, db)

	results, err := db.QueryBuilder().Execute("hello")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []DocumentId{NewDocumentId("1"), NewDocumentId("2")}
	got := docIDs(results)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected [doc1, doc2] (doc1 wins on SumOfWordsAttribute: title beats body), got %+v", got)
	}
	// "hellish" sits at a genuine edit distance of 3 from "hello", outside
	// the budget a 5-letter query is allowed (1 edit), so it correctly never
	// matches a bare "hello" query.
	for _, id := range got {
		if id == NewDocumentId("3") {
			t.Fatalf("expected 'hellish' to stay outside the typo budget for 'hello', got %+v", got)
		}
	}
}

func TestEndToEndQueryTypoStillRanksDoc1AheadOfDoc2(t *testing.T) {
	db := newTestDatabase(t)
	seedHelloWorldDocs(t, db)

	// "hallo" is a 5-letter query (typo budget 1) at edit distance 1 from
	// "hello" (a substituted for e).
	results, err := db.QueryBuilder().Execute("hallo")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []DocumentId{NewDocumentId("1"), NewDocumentId("2")}
	got := docIDs(results)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected a 1-edit typo query to still find 'hello' in both documents and rank by SumOfWordsAttribute, got %+v", got)
	}
}

func TestEndToEndSynonymQueryCountsExactDistanceZero(t *testing.T) {
	db := newTestDatabase(t)
	seedHelloWorldDocs(t, db)
	if _, err := db.AddSynonyms(map[string][]string{"hi": {"hello"}}); err != nil {
		t.Fatalf("AddSynonyms: %v", err)
	}

	results, err := db.QueryBuilder().Execute("hi")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []DocumentId{NewDocumentId("1"), NewDocumentId("2")}
	got := docIDs(results)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected the synonym query to surface both documents ranked by attribute, got %+v", got)
	}
	for _, r := range results {
		for _, m := range r.Matches {
			if m.Distance != 0 || !m.IsExact {
				t.Fatalf("expected every synonym match to count as distance=0, is_exact=true, got %+v", m)
			}
		}
	}
}

func TestEndToEndPrefixQueryRanksByNumberOfWords(t *testing.T) {
	db := newTestDatabase(t)
	seedHelloWorldDocs(t, db)
	schema := db.Schema()
	titleAttr, ok := schema.Attribute("title")
	if !ok {
		t.Fatalf("expected a title attribute in the schema")
	}

	// Restricted to title: doc 1's title ("hello world") matches both query
	// words, doc 2's title ("world") only matches the second — doc 2's
	// "hello" lives in its body, out of scope for this search. Two matches
	// under the same document, different query_index slots, is exactly the
	// NumberOfWords comparison this is meant to exercise.
	results, err := db.QueryBuilder().WithSearchableAttrs([]SchemaAttr{titleAttr}).Execute("hello wor")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []DocumentId{NewDocumentId("1"), NewDocumentId("2")}
	got := docIDs(results)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected doc 1 (matches both title words) to rank ahead of doc 2 (matches one), got %+v", got)
	}
}

func TestEndToEndQueryAfterDeletionKeepsVocabulary(t *testing.T) {
	db := newTestDatabase(t)
	seedHelloWorldDocs(t, db)

	if _, err := db.DeleteDocuments([]DocumentId{NewDocumentId("1")}); err != nil {
		t.Fatalf("DeleteDocuments: %v", err)
	}

	results, err := db.QueryBuilder().Execute("hello")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := docIDs(results)
	want := []DocumentId{NewDocumentId("2")}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("expected only doc 2 to remain after deleting doc 1, got %+v", got)
	}

	snap := db.inner.Load()
	if !snap.words.Contains("hello") {
		t.Fatalf("expected 'hello' to remain in the vocabulary (doc 2 still references it)")
	}
	if !snap.words.Contains("hellish") {
		t.Fatalf("expected 'hellish' to remain in the vocabulary (doc 3 still references it)")
	}
}
