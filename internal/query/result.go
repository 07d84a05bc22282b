// Package query implements the two line-oriented output grammars of the
// per-repository indexer's query command: the terse "quiet" format and the
// metadata-rich emoji-tagged format.
//
// Both grammars are an unversioned wire format owned by the indexer.
// Parsers and renderers round-trip byte-for-byte; do not normalize spacing,
// score formatting, or tag placement.
package query

import "strconv"

// Result is one parsed query hit.
//
// FilePath is mutated exactly once after parsing, when the aggregator
// prefixes it with the originating repository's display name. Everything
// else is immutable once parsed.
type Result struct {
	// Score is the parsed relevance score in [0, 1], used for ranking.
	Score float64

	// RawScore is the score exactly as it appeared on the wire (the
	// indexer sometimes omits the leading zero, e.g. ".789"). Renderers
	// prefer it so merged output reproduces the input bytes.
	RawScore string

	FilePath  string
	StartLine int
	EndLine   int

	// Content holds the raw content lines (typically line-numbered code),
	// newline-joined, without a trailing newline.
	Content string

	// Repository is the display name of the repo this result came from.
	// Empty until the aggregator stamps it.
	Repository string

	// Rich-format metadata; zero values mean the segment was absent.
	Language  string
	Size      int64
	IndexedAt string
	Branch    string
	Commit    string
	Project   string
}

func (r Result) scoreText() string {
	if r.RawScore != "" {
		return r.RawScore
	}
	return strconv.FormatFloat(r.Score, 'f', 3, 64)
}
