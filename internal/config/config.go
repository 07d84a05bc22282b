package config

import (
	"errors"
	"fmt"
	"strings"
)

// maxConcurrency is the hard ceiling on parallel workers. Each worker owns
// one indexer subprocess; more than this saturates the embedding service
// the per-repo indexers share.
const maxConcurrency = 10

type Config struct {
	Proxy   Proxy
	Query   Query
	Runtime Runtime
}

type Proxy struct {
	// Exe is the per-repository indexer executable invoked for every
	// proxied command (see --exe). It is resolved via PATH.
	Exe string

	// Marker is the directory name whose presence marks a subdirectory as
	// an independently-indexed repository (see --marker). It is the
	// indexer's own config directory, so the proxy is not bound to one
	// indexer build.
	Marker string
}

type Query struct {
	// Limit caps the number of merged query results (see --limit).
	// 0 means unlimited.
	Limit int

	// Quiet selects the terse score/path/range output grammar for query
	// commands (see --quiet). Default is the rich metadata grammar.
	Quiet bool
}

type Runtime struct {
	// Concurrency controls the parallel worker pool (see --concurrency).
	// Must be between 1 and 10; the effective pool is further capped at
	// the number of repositories.
	Concurrency int

	// Verbose enables debug-level diagnostics (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{
		Proxy: Proxy{
			Exe:    "cidx",
			Marker: ".cidx",
		},
		Runtime: Runtime{
			Concurrency: maxConcurrency,
		},
	}
}

func (c *Config) Validate() error {
	c.Proxy.Exe = strings.TrimSpace(c.Proxy.Exe)
	if c.Proxy.Exe == "" {
		return errors.New("--exe must not be empty")
	}

	c.Proxy.Marker = strings.TrimSpace(c.Proxy.Marker)
	if c.Proxy.Marker == "" {
		return errors.New("--marker must not be empty")
	}
	if strings.ContainsAny(c.Proxy.Marker, "/\\") {
		return fmt.Errorf("--marker must be a bare directory name, got %q", c.Proxy.Marker)
	}

	if c.Query.Limit < 0 {
		return errors.New("--limit must be >= 0")
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Concurrency > maxConcurrency {
		return fmt.Errorf("--concurrency must be <= %d", maxConcurrency)
	}

	return nil
}
