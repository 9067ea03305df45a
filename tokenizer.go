// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZER: Turning Text Into Indexable Words
// ═══════════════════════════════════════════════════════════════════════════════
// The tokenizer walks a string once, grouping consecutive runes into maximal
// runs of the same category, and turns each word-shaped run into a Token
// carrying its word_index and char_index. Separator runs are consumed
// silently but still advance word_index, by an amount that depends on
// whether any hard separator (a sentence-ending punctuation mark) appeared
// in the run.
//
// CATEGORIES:
// -----------
//   - Separator (soft):  space - _ ' : "   → word_index += 1 per group
//   - Separator (hard):  . ; , ! ? ( )     → word_index += 8 per group
//     (soft and hard separators merge into one group; if the group contains
//     any hard separator the whole group counts as hard)
//   - CJK:  a single CJK codepoint never groups with its neighbours, not
//     even with another CJK codepoint, so every CJK character is its own
//     word-index slot
//   - Other: anything else groups with adjacent "other" runes into a word
//
// Two adjacent word groups with nothing separating them (this only happens
// around a CJK singleton) still advance word_index by exactly 1, the same
// as a single soft separator would.
//
// This exact behaviour, including the +1/+8 word_index steps, is load
// bearing: it is what the ranking criteria and phrase proximity scoring
// use as their notion of "distance" between two words.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

// IsCJK reports whether c falls in one of the CJK Unicode blocks this
// tokenizer treats as single-rune words.
func IsCJK(c rune) bool {
	return (c >= '⺀' && c <= '⻿') ||
		(c >= '⼀' && c <= '⿟') ||
		(c >= '぀' && c <= 'ゟ') ||
		(c >= '゠' && c <= 'ヿ') ||
		(c >= '㄀' && c <= 'ㄯ') ||
		(c >= '㈀' && c <= '㋿') ||
		(c >= '㐀' && c <= '䶿') ||
		(c >= '一' && c <= '鿿') ||
		(c >= '豈' && c <= '﫿')
}

type separatorSeverity int

const (
	severitySoft separatorSeverity = 1
	severityHard separatorSeverity = 8
)

func (s separatorSeverity) merge(other separatorSeverity) separatorSeverity {
	if s == severitySoft && other == severitySoft {
		return severitySoft
	}
	return severityHard
}

// classifySeparator reports whether c is a separator rune and, if so, its
// severity.
func classifySeparator(c rune) (separatorSeverity, bool) {
	switch c {
	case ' ', '-', '_', '\'', ':', '"':
		return severitySoft, true
	case '.', ';', ',', '!', '?', '(', ')':
		return severityHard, true
	default:
		return 0, false
	}
}

func isSeparator(c rune) bool {
	_, ok := classifySeparator(c)
	return ok
}

type runeCategory int

const (
	categorySeparator runeCategory = iota
	categoryCJK
	categoryOther
)

func classifyCategory(c rune) runeCategory {
	if isSeparator(c) {
		return categorySeparator
	}
	if IsCJK(c) {
		return categoryCJK
	}
	return categoryOther
}

// isWordGroup reports whether a rune group (as produced by splitNextGroup)
// represents a word rather than a separator run.
func isWordGroup(group []rune) bool {
	for _, c := range group {
		if isSeparator(c) {
			return false
		}
	}
	return true
}

// splitNextGroup peels the first maximal same-category run off rs and
// returns it along with the remainder. A CJK rune is always a group of one.
func splitNextGroup(rs []rune) (group, rest []rune) {
	if len(rs) == 0 {
		return nil, nil
	}
	if classifyCategory(rs[0]) == categoryCJK {
		return rs[:1], rs[1:]
	}
	cat0 := classifyCategory(rs[0])
	i := 1
	for i < len(rs) {
		ci := classifyCategory(rs[i])
		if ci == categoryCJK {
			break
		}
		if cat0 == categorySeparator {
			if ci != categorySeparator {
				break
			}
		} else if ci != categoryOther {
			break
		}
		i++
	}
	return rs[:i], rs[i:]
}

// Token is one word produced by a Tokenizer, with its position recorded in
// both word-index space (used for proximity/distance ranking) and
// char-index space (used to locate the word in the original text).
type Token struct {
	Word      string
	WordIndex int
	CharIndex int
}

// Tokenizer splits a single attribute value into a stream of Tokens.
type Tokenizer struct {
	inner     []rune
	wordIndex int
	charIndex int
}

// NewTokenizer builds a Tokenizer over s, skipping any leading separators.
func NewTokenizer(s string) *Tokenizer {
	rs := []rune(s)
	skipped := 0
	for skipped < len(rs) && classifyCategory(rs[skipped]) == categorySeparator {
		skipped++
	}
	return &Tokenizer{
		inner:     rs[skipped:],
		wordIndex: 0,
		charIndex: skipped,
	}
}

// Next returns the next word Token, or ok=false once the text is exhausted.
func (t *Tokenizer) Next() (Token, bool) {
	for len(t.inner) > 0 {
		group, rest := splitNextGroup(t.inner)

		if !isWordGroup(group) {
			sev := severitySoft
			for _, c := range group {
				if s, ok := classifySeparator(c); ok {
					sev = sev.merge(s)
				}
			}
			t.wordIndex += int(sev)
			t.charIndex += len(group)
			t.inner = rest
			continue
		}

		tok := Token{Word: string(group), WordIndex: t.wordIndex, CharIndex: t.charIndex}

		if len(rest) > 0 {
			nextGroup, _ := splitNextGroup(rest)
			if isWordGroup(nextGroup) {
				t.wordIndex++
			}
		}

		t.charIndex += len(group)
		t.inner = rest
		return tok, true
	}
	return Token{}, false
}

// Tokens drains the Tokenizer into a slice, for callers that don't need
// streaming behaviour.
func (t *Tokenizer) Tokens() []Token {
	var out []Token
	for {
		tok, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

// SplitQueryString tokenizes a query string into its constituent words,
// discarding position information.
func SplitQueryString(query string) []string {
	tok := NewTokenizer(query)
	var words []string
	for {
		t, ok := tok.Next()
		if !ok {
			return words
		}
		words = append(words, t.Word)
	}
}

// SeqTokenizer tokenizes a sequence of attribute values (for example, the
// several string elements of an array-valued field) as though they were one
// continuous text, inserting a hard separator's worth of distance between
// the end of one value and the start of the next so that a phrase can never
// accidentally span two unrelated values.
type SeqTokenizer struct {
	texts      []string
	textIndex  int
	current    *Tokenizer
	peeked     Token
	hasPeeked  bool
	wordOffset int
	charOffset int
}

// NewSeqTokenizer builds a SeqTokenizer over texts, tokenized in order.
func NewSeqTokenizer(texts []string) *SeqTokenizer {
	s := &SeqTokenizer{texts: texts}
	s.advanceText()
	return s
}

func (s *SeqTokenizer) advanceText() {
	for s.textIndex < len(s.texts) {
		s.current = NewTokenizer(s.texts[s.textIndex])
		s.textIndex++
		if tok, ok := s.current.Next(); ok {
			s.peeked, s.hasPeeked = tok, true
			return
		}
	}
	s.current = nil
	s.hasPeeked = false
}

// Next returns the next Token across the whole sequence of texts, or
// ok=false once every text has been exhausted.
func (s *SeqTokenizer) Next() (Token, bool) {
	if s.current == nil {
		return Token{}, false
	}

	tok := s.peeked
	tok.WordIndex += s.wordOffset
	tok.CharIndex += s.charOffset

	nextTok, ok := s.current.Next()
	if ok {
		s.peeked, s.hasPeeked = nextTok, true
	} else {
		hard := int(severityHard)
		s.wordOffset = tok.WordIndex + hard
		s.charOffset = tok.CharIndex + hard
		s.advanceText()
	}

	return tok, true
}
