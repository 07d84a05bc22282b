package aggregate

import (
	"bytes"
	"strings"
	"testing"

	"repofan/internal/executor"
	"repofan/internal/proxy"
)

func TestGenericConcatenatesAndReportsPartialFailure(t *testing.T) {
	results := []executor.RepoResult{
		{Repo: proxy.Repo{Name: "web"}, Invocation: executor.Invocation{Stdout: "service running\n"}},
		{Repo: proxy.Repo{Name: "api"}, Invocation: executor.Invocation{Stderr: "Cannot connect to indexing service", ExitCode: 1}},
		{Repo: proxy.Repo{Name: "db"}, Invocation: executor.Invocation{Stdout: ""}},
	}

	var out, errOut bytes.Buffer
	code := Generic("cidx", "status", results, &out, &errOut)

	if code != 2 {
		t.Errorf("exit code = %d, want 2 (partial success)", code)
	}

	text := out.String()
	if !strings.Contains(text, "=== web ===\nservice running") {
		t.Errorf("stdout missing web banner:\n%s", text)
	}
	if strings.Contains(text, "=== db ===") {
		t.Errorf("blank stdout got a banner:\n%s", text)
	}

	diag := errOut.String()
	if !strings.Contains(diag, "Repository: api") || !strings.Contains(diag, "Cannot connect") {
		t.Errorf("stderr missing failure block:\n%s", diag)
	}
	if !strings.Contains(diag, "Hint:") {
		t.Errorf("failure block missing hint:\n%s", diag)
	}
}

func TestGenericExitCodes(t *testing.T) {
	ok := executor.RepoResult{Repo: proxy.Repo{Name: "a"}}
	bad := executor.RepoResult{Repo: proxy.Repo{Name: "b"}, Invocation: executor.Invocation{ExitCode: 1}}

	var out, errOut bytes.Buffer
	if code := Generic("cidx", "status", []executor.RepoResult{ok, ok}, &out, &errOut); code != 0 {
		t.Errorf("all ok = %d, want 0", code)
	}
	if code := Generic("cidx", "status", []executor.RepoResult{bad, bad}, &out, &errOut); code != 1 {
		t.Errorf("all failed = %d, want 1", code)
	}
}
