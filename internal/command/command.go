// Package command classifies indexer commands for proxy execution.
//
// Every command the proxy understands is either parallel-safe (read-only,
// safe to run against all repositories at once) or sequential-only
// (lifecycle commands that bind ports or mutate service state and must not
// race each other). Anything else is rejected before a single subprocess
// is spawned.
package command

import (
	"fmt"
	"sort"
	"strings"
)

// parallelCommands are read-only and run through the bounded worker pool.
var parallelCommands = map[string]string{
	"fix-config": "Repair the indexer configuration in each repository",
	"query":      "Search indexed code across all repositories",
	"status":     "Show indexing service status for each repository",
}

// sequentialCommands mutate per-repo service state (ports, daemons, installs)
// and run one repository at a time to avoid resource contention.
//
// "watch" is classified sequential for validation purposes, but the
// dispatcher routes it to the watch subsystem before the sequential engine
// is ever consulted.
var sequentialCommands = map[string]string{
	"start":     "Start the indexing service in each repository",
	"stop":      "Stop the indexing service in each repository",
	"uninstall": "Remove the indexer from each repository",
	"watch":     "Watch all repositories and reindex on change",
}

// IsParallel reports whether name is a parallel-safe proxy command.
func IsParallel(name string) bool {
	_, ok := parallelCommands[name]
	return ok
}

// IsSequential reports whether name is a sequential-only proxy command.
func IsSequential(name string) bool {
	_, ok := sequentialCommands[name]
	return ok
}

// Supported returns all proxy-supported command names in alphabetical order.
func Supported() []string {
	out := make([]string, 0, len(parallelCommands)+len(sequentialCommands))
	for name := range parallelCommands {
		out = append(out, name)
	}
	for name := range sequentialCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// describe returns the one-line description for a supported command.
func describe(name string) string {
	if d, ok := parallelCommands[name]; ok {
		return d
	}
	return sequentialCommands[name]
}

// UnsupportedError is returned by Validate for commands the proxy cannot
// fan out. Its message enumerates every supported command so an agent can
// self-correct without a second round trip.
type UnsupportedError struct {
	Command string
}

func (e *UnsupportedError) Error() string {
	names := Supported()
	width := 0
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "command %q is not supported in proxy mode\n\n", e.Command)
	b.WriteString("Supported commands:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, n, describe(n))
	}
	fmt.Fprintf(&b, "\nTo run %q against a single repository, run it directly in that repository.", e.Command)
	return b.String()
}

// Validate is the pre-flight gate for proxy execution. It must be called
// before any subprocess is spawned; a non-nil error maps to exit code 3.
func Validate(name string) error {
	if IsParallel(name) || IsSequential(name) {
		return nil
	}
	return &UnsupportedError{Command: name}
}
