package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"repofan/internal/aggregate"
	"repofan/internal/command"
	"repofan/internal/config"
	"repofan/internal/diagnose"
	"repofan/internal/executor"
	"repofan/internal/logging"
	"repofan/internal/proxy"
)

var runCmd = &cobra.Command{
	Use:   "run <command> [args...]",
	Short: "Fan one indexer command out to every member repository",
	Long: `Fan one indexer command out to every member repository of this proxy root.

Read-only commands (fix-config, query, status) run through a bounded
parallel worker pool. Lifecycle commands (start, stop, uninstall) run
strictly one repository at a time to avoid port and resource contention.
"watch" is routed to the watch subsystem (see "repofan watch --help").

A failure in one repository never aborts the others; each failure is
reported with a category-specific hint. For query, per-repository results
are merged, ranked by score, and re-rendered in the indexer's own output
grammar (rich by default, --quiet for the terse format).

Exit codes:
	0 = all repositories succeeded
	1 = all repositories failed
	2 = partial success
	3 = unsupported command, missing proxy config, or zero repositories

Examples:
  repofan run query "jwt validation" --limit 5 --quiet
  repofan run status
  repofan run stop`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runProxy(args[0], args[1:]))
	},
}

func init() {
	runCmd.Flags().IntVar(&cfg.Query.Limit, flagLimit, 0, "Maximum merged query results (0 = unlimited)")
	runCmd.Flags().BoolVar(&cfg.Query.Quiet, flagQuiet, false, "Use the terse quiet output grammar for query")
	runCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flagConcurrency, cfg.Runtime.Concurrency, "Parallel workers (1-10)")
	rootCmd.AddCommand(runCmd)
}

// loadProxy performs the shared pre-flight: config validation, record
// load, repo resolution. These are the only checks allowed to abort a
// whole batch, and they run before any subprocess is spawned.
func loadProxy() ([]proxy.Repo, zerolog.Logger, int) {
	log := logging.New(nil, cfg.Runtime.Verbose)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, log, 3
	}

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, log, 3
	}
	if !config.HasRecord(root) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", proxy.ErrNotAProxy)
		return nil, log, 3
	}
	rec, err := config.LoadRecord(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, log, 3
	}

	repos := proxy.Resolve(root, rec)
	if len(repos) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no member repositories discovered (run 'repofan refresh')")
		return nil, log, 3
	}
	return repos, log, 0
}

func runProxy(name string, args []string) int {
	// Pre-flight gate: reject unsupported commands before anything else.
	if err := command.Validate(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	repos, log, code := loadProxy()
	if code != 0 {
		return code
	}

	if name == "watch" {
		return runWatch(repos, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := executor.NewRunner(cfg.Proxy.Exe, log)

	if command.IsParallel(name) {
		results := runner.ExecuteParallel(ctx, name, args, repos, cfg.Runtime.Concurrency)
		if name == "query" {
			return renderQuery(name, results, log)
		}
		return aggregate.Generic(cfg.Proxy.Exe, name, results, os.Stdout, os.Stderr)
	}

	result := runner.ExecuteSequential(ctx, name, args, repos, os.Stdout)
	result.WriteSummary(os.Stdout, cfg.Proxy.Exe)
	return result.ExitCode()
}

// renderQuery merges query output onto stdout and reports failing repos
// on stderr with hints (including the grep/ripgrep fallback).
func renderQuery(name string, results []executor.RepoResult, log zerolog.Logger) int {
	var merged string
	if cfg.Query.Quiet {
		merged = aggregate.Quiet(results, cfg.Query.Limit, log)
	} else {
		merged = aggregate.Rich(results, cfg.Query.Limit, log)
	}
	fmt.Print(merged)

	for _, res := range results {
		if !res.Failed() {
			continue
		}
		msg := diagnose.NewErrorMessage(cfg.Proxy.Exe, name, res.Repo.Name, res.ErrorText(), res.ExitCode)
		fmt.Fprint(os.Stderr, diagnose.FormatError(msg))
	}

	return executor.ExitCode(results)
}
