// Package aggregate merges heterogeneous per-repository outputs into one
// view: ranked query results for the two query grammars, concatenated
// free-text output plus diagnostics for everything else.
package aggregate

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"repofan/internal/executor"
	"repofan/internal/query"
)

// Parser turns one repository's raw query stdout into ordered results.
type Parser func(raw string, log zerolog.Logger) []query.Result

// knownErrorPhrases marks stdout that is really an error report in
// disguise; such output is skipped rather than fed to a parser. Matching
// is case-insensitive substring.
var knownErrorPhrases = []string{
	"error:",
	"cannot connect",
	"permission denied",
	"no such file",
	"connection refused",
	"failed to",
}

func looksLikeError(stdout string) bool {
	lower := strings.ToLower(stdout)
	for _, phrase := range knownErrorPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Merge runs the shared query pipeline: per repo (in result-list order) —
// skip blank or error-looking stdout, parse, prefix each result's file
// path with the repo's display name — then stable-sort the global list
// descending by score and truncate to limit (0 = unlimited).
//
// The stable sort means score ties keep first-encountered-repo order,
// which is input order, not a map-iteration artifact.
func Merge(results []executor.RepoResult, parse Parser, limit int, log zerolog.Logger) []query.Result {
	var merged []query.Result
	for _, res := range results {
		if res.Failed() {
			continue
		}
		if strings.TrimSpace(res.Stdout) == "" || looksLikeError(res.Stdout) {
			if looksLikeError(res.Stdout) {
				log.Debug().Str("repo", res.Repo.Name).Msg("skipping error-looking query output")
			}
			continue
		}

		parsed := parse(res.Stdout, log)
		for i := range parsed {
			parsed[i].Repository = res.Repo.Name
			parsed[i].FilePath = res.Repo.Name + "/" + parsed[i].FilePath
		}
		merged = append(merged, parsed...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Quiet merges per-repo quiet-format output and re-renders it in the same
// grammar. Empty input renders as "".
func Quiet(results []executor.RepoResult, limit int, log zerolog.Logger) string {
	return query.RenderQuiet(Merge(results, query.ParseQuiet, limit, log))
}

// Rich merges per-repo rich-format output and re-renders it in the same
// grammar. Empty input renders as "".
func Rich(results []executor.RepoResult, limit int, log zerolog.Logger) string {
	return query.RenderRich(Merge(results, query.ParseRich, limit, log))
}
