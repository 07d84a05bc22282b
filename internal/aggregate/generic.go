package aggregate

import (
	"fmt"
	"io"
	"strings"

	"repofan/internal/diagnose"
	"repofan/internal/executor"
)

// Generic aggregates non-query parallel output: non-empty stdouts are
// concatenated under per-repo banners on out, and each failing repo gets a
// boxed error block with a category-specific hint on errOut. The returned
// exit code follows the dispatcher contract (0 all ok, 1 all failed, 2
// partial).
func Generic(exe, command string, results []executor.RepoResult, out, errOut io.Writer) int {
	for _, res := range results {
		if res.Failed() {
			continue
		}
		stdout := strings.TrimRight(res.Stdout, "\n")
		if stdout == "" {
			continue
		}
		fmt.Fprintf(out, "=== %s ===\n%s\n", res.Repo.Name, stdout)
	}

	for _, res := range results {
		if !res.Failed() {
			continue
		}
		msg := diagnose.NewErrorMessage(exe, command, res.Repo.Name, res.ErrorText(), res.ExitCode)
		fmt.Fprint(errOut, diagnose.FormatError(msg))
	}

	return executor.ExitCode(results)
}
