// Package executor invokes the per-repository indexer executable and
// implements the parallel and sequential fan-out engines on top of it.
//
// Failure policy: a per-repo invocation never returns an error. Launch
// failures, timeouts and non-zero exits are all captured as data on the
// result so one repository can never abort another's run.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"repofan/internal/proxy"
)

// launchFailureExitCode marks invocations that never produced a process
// exit status (spawn failure, timeout, cancellation).
const launchFailureExitCode = -1

// wideColumns is forced into the subprocess environment so the indexer
// never soft-wraps structured output that the parsers consume downstream.
const wideColumns = "COLUMNS=200"

// Invocation is the captured outcome of one indexer run in one repo.
type Invocation struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether the invocation did not complete cleanly.
func (i Invocation) Failed() bool {
	return i.ExitCode != 0
}

// ErrorText returns the most useful failure text for diagnostics: stderr
// if present, else stdout.
func (i Invocation) ErrorText() string {
	if i.Stderr != "" {
		return i.Stderr
	}
	return i.Stdout
}

// RepoResult pairs a member repository with its invocation outcome.
// Executors return these as an ordered association list (input order),
// never as a map, so iteration order is part of the contract.
type RepoResult struct {
	Repo proxy.Repo
	Invocation
}

// Runner invokes the indexer executable.
type Runner struct {
	Exe string
	Log zerolog.Logger

	// invoke is a test seam; production runners call run.
	invoke func(ctx context.Context, dir, command string, args []string, timeout time.Duration) Invocation
}

func NewRunner(exe string, log zerolog.Logger) *Runner {
	r := &Runner{Exe: exe, Log: log}
	r.invoke = r.run
	return r
}

func (r *Runner) run(ctx context.Context, dir, command string, args []string, timeout time.Duration) Invocation {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string{command}, args...)
	cmd := exec.CommandContext(runCtx, r.Exe, argv...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), wideColumns)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() != nil {
		reason := fmt.Sprintf("command timed out after %s", timeout)
		if errors.Is(runCtx.Err(), context.Canceled) {
			reason = "command canceled"
		}
		r.Log.Debug().Str("dir", dir).Str("command", command).Msg(reason)
		return Invocation{Stdout: stdout.String(), Stderr: reason, ExitCode: launchFailureExitCode}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Invocation{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitErr.ExitCode()}
		}
		// Launch failure: the executable was never started.
		return Invocation{Stderr: err.Error(), ExitCode: launchFailureExitCode}
	}

	return Invocation{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: 0}
}
