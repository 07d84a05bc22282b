package executor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"repofan/internal/diagnose"
	"repofan/internal/proxy"
)

// sequentialTimeout bounds one lifecycle invocation. Lifecycle commands
// (service start/stop, uninstall) are slower than single-shot reads, so
// they get a larger ceiling. Never retried.
const sequentialTimeout = 600 * time.Second

// SequentialResult accumulates per-repo outcomes of a sequential batch.
// The sequential engine mutates it incrementally; callers read it after
// the batch to pick an exit code.
type SequentialResult struct {
	Command      string
	Results      []RepoResult
	SuccessCount int
	FailureCount int
}

func (s *SequentialResult) TotalRepos() int {
	return len(s.Results)
}

// CompleteSuccess reports whether every repo succeeded. An empty batch is
// not a success.
func (s *SequentialResult) CompleteSuccess() bool {
	return s.FailureCount == 0 && len(s.Results) > 0
}

// FailedRepositories returns the display names of failing repos, in
// processing order.
func (s *SequentialResult) FailedRepositories() []string {
	var out []string
	for _, res := range s.Results {
		if res.Failed() {
			out = append(out, res.Repo.Name)
		}
	}
	return out
}

// ExitCode maps the batch outcome to the dispatcher contract: 0 all
// succeeded, 1 all failed, 2 partial.
func (s *SequentialResult) ExitCode() int {
	switch {
	case s.FailureCount == 0:
		return 0
	case s.SuccessCount == 0:
		return 1
	default:
		return 2
	}
}

// ExecuteSequential runs command against repos strictly one at a time in
// the given order, continuing past failures. Progress lines and per-repo
// success/failure one-liners are written to out as each repo completes.
//
// A timeout or launch failure is captured with exit code 1, matching the
// lifecycle-command contract: the rest of the batch still runs.
func (r *Runner) ExecuteSequential(ctx context.Context, command string, args []string, repos []proxy.Repo, out io.Writer) *SequentialResult {
	result := &SequentialResult{Command: command}
	total := len(repos)

	for i, repo := range repos {
		fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, repo.Name)

		inv := r.invoke(ctx, repo.Path, command, args, sequentialTimeout)
		if inv.ExitCode == launchFailureExitCode {
			inv.ExitCode = 1
		}

		result.Results = append(result.Results, RepoResult{Repo: repo, Invocation: inv})
		if inv.ExitCode == 0 {
			result.SuccessCount++
			fmt.Fprintln(out, diagnose.SuccessLine(repo.Name))
		} else {
			result.FailureCount++
			fmt.Fprintln(out, diagnose.FailureLine(repo.Name, firstLine(inv.ErrorText())))
		}
	}

	return result
}

// WriteSummary prints the batch summary and, for each failure, a boxed
// detail block with a category-specific hint. exe is the indexer
// executable name used in suggested commands.
func (s *SequentialResult) WriteSummary(out io.Writer, exe string) {
	fmt.Fprintf(out, "\n%d succeeded, %d failed (of %d)\n", s.SuccessCount, s.FailureCount, s.TotalRepos())

	for _, res := range s.Results {
		if !res.Failed() {
			continue
		}
		fmt.Fprint(out, "\n")
		msg := diagnose.NewErrorMessage(exe, s.Command, res.Repo.Name, res.ErrorText(), res.ExitCode)
		fmt.Fprint(out, diagnose.FormatError(msg))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
