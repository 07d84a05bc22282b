package executor

import (
	"context"
	"sync"
	"time"

	"repofan/internal/proxy"
)

const (
	// maxParallelWorkers is the hard worker-pool ceiling; the effective
	// pool is min(len(repos), maxParallelWorkers).
	maxParallelWorkers = 10

	// parallelTimeout bounds one single-shot invocation. Never retried.
	parallelTimeout = 300 * time.Second
)

// ExecuteParallel fans command out to every repo through a bounded worker
// pool and returns one result per repo in input order. The slice is
// complete only after every worker has finished; each worker writes its
// own slot exactly once and nothing reads the slice before the join.
//
// concurrency further lowers the pool below the hard cap (values <= 0 or
// above the cap mean the cap). An empty repo list returns nil and spawns
// zero workers.
func (r *Runner) ExecuteParallel(ctx context.Context, command string, args []string, repos []proxy.Repo, concurrency int) []RepoResult {
	if len(repos) == 0 {
		return nil
	}

	if concurrency <= 0 || concurrency > maxParallelWorkers {
		concurrency = maxParallelWorkers
	}
	if concurrency > len(repos) {
		concurrency = len(repos)
	}

	results := make([]RepoResult, len(repos))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, repo := range repos {
		if ctx.Err() != nil {
			// Remaining repos are recorded as captured failures so the
			// result list stays complete.
			results[i] = RepoResult{
				Repo:       repo,
				Invocation: Invocation{Stderr: "command canceled", ExitCode: launchFailureExitCode},
			}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, repo proxy.Repo) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = RepoResult{
				Repo:       repo,
				Invocation: r.invoke(ctx, repo.Path, command, args, parallelTimeout),
			}
		}(i, repo)
	}

	wg.Wait()
	return results
}

// ExitCode derives the dispatcher exit code from a complete result list:
// 0 if every repo succeeded, 1 if every repo failed, 2 for partial
// success.
func ExitCode(results []RepoResult) int {
	if len(results) == 0 {
		return 0
	}
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	switch failed {
	case 0:
		return 0
	case len(results):
		return 1
	default:
		return 2
	}
}
