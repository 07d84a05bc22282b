package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func shRunner() *Runner {
	// The runner execs "exe command args..."; with sh as the executable
	// and "-c" as the command, the first arg is an arbitrary script.
	return NewRunner("/bin/sh", zerolog.Nop())
}

func TestRunCapturesStreamsAndExitCode(t *testing.T) {
	r := shRunner()
	inv := r.run(context.Background(), t.TempDir(), "-c", []string{"echo out; echo err 1>&2; exit 3"}, time.Minute)

	if inv.Stdout != "out\n" {
		t.Errorf("stdout = %q", inv.Stdout)
	}
	if inv.Stderr != "err\n" {
		t.Errorf("stderr = %q", inv.Stderr)
	}
	if inv.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", inv.ExitCode)
	}
	if !inv.Failed() {
		t.Error("Failed() = false for exit 3")
	}
}

func TestRunForcesWideTerminal(t *testing.T) {
	r := shRunner()
	inv := r.run(context.Background(), t.TempDir(), "-c", []string{"echo $COLUMNS"}, time.Minute)
	if strings.TrimSpace(inv.Stdout) != "200" {
		t.Errorf("COLUMNS = %q, want 200", strings.TrimSpace(inv.Stdout))
	}
}

func TestRunSetsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := shRunner()
	inv := r.run(context.Background(), dir, "-c", []string{"pwd"}, time.Minute)
	if got := strings.TrimSpace(inv.Stdout); !strings.HasSuffix(got, dirBase(dir)) {
		t.Errorf("pwd = %q, want suffix %q", got, dirBase(dir))
	}
}

func dirBase(dir string) string {
	i := strings.LastIndexByte(dir, '/')
	return dir[i+1:]
}

func TestRunTimeoutIsCapturedNotRaised(t *testing.T) {
	r := shRunner()
	start := time.Now()
	inv := r.run(context.Background(), t.TempDir(), "-c", []string{"sleep 5"}, 100*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}

	if inv.ExitCode != launchFailureExitCode {
		t.Errorf("exit code = %d, want %d", inv.ExitCode, launchFailureExitCode)
	}
	if !strings.Contains(inv.Stderr, "timed out") {
		t.Errorf("stderr = %q, want timeout text", inv.Stderr)
	}
}

func TestRunLaunchFailureIsCaptured(t *testing.T) {
	r := NewRunner("/nonexistent/indexer-binary", zerolog.Nop())
	inv := r.run(context.Background(), t.TempDir(), "status", nil, time.Minute)
	if inv.ExitCode != launchFailureExitCode {
		t.Errorf("exit code = %d, want %d", inv.ExitCode, launchFailureExitCode)
	}
	if inv.Stderr == "" {
		t.Error("stderr empty, want launch failure text")
	}
}

func TestErrorTextPrefersStderr(t *testing.T) {
	if got := (Invocation{Stdout: "o", Stderr: "e"}).ErrorText(); got != "e" {
		t.Errorf("ErrorText = %q, want stderr", got)
	}
	if got := (Invocation{Stdout: "o"}).ErrorText(); got != "o" {
		t.Errorf("ErrorText = %q, want stdout fallback", got)
	}
}
