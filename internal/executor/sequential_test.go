package executor

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"repofan/internal/proxy"
)

func TestExecuteSequentialContinuesOnTimeout(t *testing.T) {
	repos := []proxy.Repo{
		{Name: "one", Path: "/tmp/one"},
		{Name: "two", Path: "/tmp/two"},
		{Name: "three", Path: "/tmp/three"},
	}

	r := NewRunner("cidx", zerolog.Nop())
	var order []string
	r.invoke = func(ctx context.Context, dir, command string, args []string, timeout time.Duration) Invocation {
		order = append(order, dir)
		if dir == "/tmp/two" {
			// Simulates the runner's captured-timeout outcome.
			return Invocation{Stderr: "command timed out after 10m0s", ExitCode: launchFailureExitCode}
		}
		return Invocation{Stdout: "started"}
	}

	var out bytes.Buffer
	result := r.ExecuteSequential(context.Background(), "start", nil, repos, &out)

	if result.TotalRepos() != 3 || result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Fatalf("counts = total %d success %d failure %d", result.TotalRepos(), result.SuccessCount, result.FailureCount)
	}
	if !reflect.DeepEqual(result.FailedRepositories(), []string{"two"}) {
		t.Errorf("FailedRepositories = %v", result.FailedRepositories())
	}
	// Timeouts are captured as exit 1, per the lifecycle contract.
	if result.Results[1].ExitCode != 1 {
		t.Errorf("timed-out repo exit code = %d, want 1", result.Results[1].ExitCode)
	}
	// Strict input order, one at a time.
	if !reflect.DeepEqual(order, []string{"/tmp/one", "/tmp/two", "/tmp/three"}) {
		t.Errorf("processing order = %v", order)
	}
	if result.CompleteSuccess() {
		t.Error("CompleteSuccess = true with a failure")
	}

	text := out.String()
	for _, want := range []string{"[1/3] Processing one...", "[2/3] Processing two...", "[3/3] Processing three..."} {
		if !strings.Contains(text, want) {
			t.Errorf("progress output missing %q:\n%s", want, text)
		}
	}
}

func TestCompleteSuccess(t *testing.T) {
	empty := &SequentialResult{}
	if empty.CompleteSuccess() {
		t.Error("empty batch must not count as success")
	}

	ok := &SequentialResult{Results: []RepoResult{{}}, SuccessCount: 1}
	if !ok.CompleteSuccess() {
		t.Error("CompleteSuccess = false for clean non-empty batch")
	}
}

func TestSequentialExitCode(t *testing.T) {
	cases := []struct {
		success, failure int
		want             int
	}{
		{2, 0, 0},
		{0, 2, 1},
		{1, 1, 2},
	}
	for _, tc := range cases {
		s := &SequentialResult{SuccessCount: tc.success, FailureCount: tc.failure}
		if got := s.ExitCode(); got != tc.want {
			t.Errorf("ExitCode(%d ok, %d failed) = %d, want %d", tc.success, tc.failure, got, tc.want)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	s := &SequentialResult{
		Command: "start",
		Results: []RepoResult{
			{Repo: proxy.Repo{Name: "one"}, Invocation: Invocation{ExitCode: 0}},
			{Repo: proxy.Repo{Name: "two"}, Invocation: Invocation{Stderr: "address already in use", ExitCode: 1}},
		},
		SuccessCount: 1,
		FailureCount: 1,
	}

	var out bytes.Buffer
	s.WriteSummary(&out, "cidx")
	text := out.String()

	if !strings.Contains(text, "1 succeeded, 1 failed (of 2)") {
		t.Errorf("summary line missing:\n%s", text)
	}
	if !strings.Contains(text, "Repository: two") || !strings.Contains(text, "address already in use") {
		t.Errorf("failure detail block missing:\n%s", text)
	}
	if strings.Contains(text, "Repository: one") {
		t.Errorf("successful repo got a detail block:\n%s", text)
	}
}
