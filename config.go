// ═══════════════════════════════════════════════════════════════════════════════
// CONFIG: Tuning Knobs for Opening a Database
// ═══════════════════════════════════════════════════════════════════════════════
// The teacher takes its tuning as constructor parameters (NewInvertedIndex's
// k1/b, Indexer.with_word_limit) rather than a config struct with env-var or
// file loading behind it. Config keeps that shape: a small, plain struct of
// documented-default fields passed once to OpenDatabaseWithConfig, with no
// implicit global state.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"log/slog"
	"runtime"
)

// Config tunes one Database. The zero value is not valid on its own; use
// DefaultConfig and override only the fields that matter to the caller.
type Config struct {
	// WordLimit caps how many word positions the indexer will consume from a
	// single attribute value before abandoning that field (§4.3). Matches
	// meilidb-data's indexer default of 1000.
	WordLimit int

	// IndexConcurrency is the number of goroutines AddDocuments fans a batch
	// of documents out across for tokenization. Each worker owns an
	// independent Indexer; their outputs are merged before the write
	// transaction commits, so word postings still end up globally sorted and
	// deduplicated regardless of how the batch was partitioned.
	IndexConcurrency int

	// Logger receives lifecycle events (database opened, a schema update
	// that requires a reindex, a failure to record an update result). Never
	// used on the per-query hot path.
	// Defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the engine's default tuning: the original indexer's
// word limit and one indexing worker per available CPU.
func DefaultConfig() Config {
	return Config{
		WordLimit:        defaultWordLimit,
		IndexConcurrency: runtime.NumCPU(),
	}
}

func (c Config) normalized() Config {
	if c.WordLimit <= 0 {
		c.WordLimit = defaultWordLimit
	}
	if c.IndexConcurrency <= 0 {
		c.IndexConcurrency = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
