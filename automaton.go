// ═══════════════════════════════════════════════════════════════════════════════
// AUTOMATON BUILDER: Typo Tolerance and Synonym Expansion
// ═══════════════════════════════════════════════════════════════════════════════
// Given a tokenized query, BuildQueryAutomaton decides, per query word, how
// many edits a candidate vocabulary word may differ by and still count as a
// match, then Expand streams every vocabulary word (and every configured
// synonym) satisfying that budget.
//
// TYPO BUDGET:
// ------------
//
//	word length <= 4   → 0 edits allowed (must match exactly)
//	5 <= length <= 8    → 1 edit allowed
//	length > 8          → 2 edits allowed
//
// Short words carry little redundancy, so even a single substitution would
// make them ambiguous with an unrelated word; long words can absorb a typo
// or two and still be recognizable. This is the same tiered rule the
// original engine used, preserved here rather than a flat per-query budget.
//
// The final word of a query is additionally treated as a prefix: a user
// mid-keystroke on the last word hasn't finished typing it, so it expands
// against WithPrefix in addition to the exact and WithinEditDistance lookups
// every word gets.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

// AutomatonWord is one query word's matching parameters.
type AutomatonWord struct {
	QueryIndex int
	Query      string
	MaxEdits   int
	IsPrefix   bool
}

// QueryAutomaton is a built, ready-to-expand automaton for one query.
type QueryAutomaton struct {
	Words []AutomatonWord

	// Queries is the query's raw word list, in order, parallel to the
	// query_index space of Words. Expand uses it to check contiguous
	// multi-word subranges against the synonyms vocabulary.
	Queries []string
}

// typoBudget returns the number of edits a word of this length may differ
// by and still be considered typo-tolerant match.
func typoBudget(word string) int {
	n := len([]rune(word))
	switch {
	case n <= 4:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}

// BuildQueryAutomaton tokenizes query and assigns a typo budget to each
// word, marking the final word as a prefix match.
func BuildQueryAutomaton(query string) *QueryAutomaton {
	words := SplitQueryString(query)
	out := make([]AutomatonWord, len(words))
	for i, w := range words {
		out[i] = AutomatonWord{
			QueryIndex: i,
			Query:      w,
			MaxEdits:   typoBudget(w),
			IsPrefix:   i == len(words)-1,
		}
	}
	return &QueryAutomaton{Words: out, Queries: words}
}

// ExpandedWord is one vocabulary or synonym word matched against one query
// word, with enough information for the criterion cascade to score it.
type ExpandedWord struct {
	QueryIndex int
	Word       string
	Distance   int
	IsExact    bool
	IsSynonym  bool
}

// Expand streams every match for every word of the automaton: exact and
// typo-tolerant matches from words, a prefix sweep for the final query word,
// and — when synonyms is non-nil — every configured synonym alternative for
// each query word and each contiguous run of query words.
func (qa *QueryAutomaton) Expand(words, synonyms *Vocabulary, alternatives func(word string) []string) ([]ExpandedWord, error) {
	var out []ExpandedWord
	seen := make(map[string]struct{})

	for _, aw := range qa.Words {
		emit := func(word string, dist int) {
			key := wordExpansionKey(aw.QueryIndex, word)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			out = append(out, ExpandedWord{
				QueryIndex: aw.QueryIndex,
				Word:       word,
				Distance:   dist,
				IsExact:    dist == 0,
			})
		}

		if aw.IsPrefix {
			// A prefix match is, by definition, a legitimate completion of
			// what the user has typed so far, not a typo: every word
			// WithPrefix streams starts with aw.Query exactly, so it always
			// counts as distance 0 regardless of the word's own length.
			if err := words.WithPrefix(aw.Query, func(word string) error {
				emit(word, 0)
				return nil
			}); err != nil {
				return nil, err
			}
		}

		if words.Contains(aw.Query) {
			emit(aw.Query, 0)
		}

		if aw.MaxEdits > 0 {
			if err := words.WithinEditDistance(aw.Query, aw.MaxEdits, func(m FuzzyMatch) error {
				emit(m.Word, m.Distance)
				return nil
			}); err != nil {
				return nil, err
			}
		}
	}

	if synonyms != nil && alternatives != nil {
		out = append(out, qa.expandSynonymPhrases(synonyms, alternatives, seen)...)
	}

	return out, nil
}

// expandSynonymPhrases checks every contiguous subrange of the query's
// words — concatenated with no separator, starting from each word and
// growing one word at a time — against synonyms, so a synonym keyed on a
// multi-word phrase (for example "new york" mapping to "ny") can match, not
// just single-word keys. Each match emits one additional automaton group per
// word of the alternative phrase, all sharing the subrange's first
// query_index, so the criterion cascade aggregates them as one slot exactly
// like a single-word synonym match.
func (qa *QueryAutomaton) expandSynonymPhrases(synonyms *Vocabulary, alternatives func(word string) []string, seen map[string]struct{}) []ExpandedWord {
	var out []ExpandedWord
	n := len(qa.Queries)
	for i := 0; i < n; i++ {
		concat := qa.Queries[i]
		for j := i; j < n; j++ {
			if j > i {
				concat += qa.Queries[j]
			}
			if !synonyms.Contains(concat) {
				continue
			}
			for _, alt := range alternatives(concat) {
				for _, altWord := range SplitQueryString(alt) {
					key := wordExpansionKey(i, altWord)
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					out = append(out, ExpandedWord{
						QueryIndex: i,
						Word:       altWord,
						Distance:   0,
						IsExact:    true,
						IsSynonym:  true,
					})
				}
			}
		}
	}
	return out
}

func wordExpansionKey(queryIndex int, word string) string {
	return string(rune(queryIndex)) + "\x00" + word
}
