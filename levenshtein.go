// exactLevenshtein confirms the precise edit distance between two words
// after vellum's fuzzy automaton has already bounded the candidate set to
// "within k edits or fewer." The automaton's own distance bookkeeping isn't
// exposed per-match, so this recomputes it directly.
package blaze

import "github.com/agnivade/levenshtein"

func exactLevenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
