package diagnose

import "fmt"

// Hint is an actionable remediation attached to a failure: a one-line
// message, concretely runnable commands in the order they should be tried,
// and an optional rationale.
type Hint struct {
	Message     string
	Commands    []string
	Explanation string
}

// hintBuilder produces a hint for one command family. exe is the indexer
// executable name and repo the failing repository's display name, so every
// suggested command is copy-pasteable as-is.
type hintBuilder func(exe, repo string, cat Category) Hint

// hintBuilders is a closed dispatch table keyed by command name. Commands
// not listed here fall through to defaultHint.
var hintBuilders = map[string]hintBuilder{
	"query":      queryHint,
	"start":      lifecycleHint,
	"stop":       lifecycleHint,
	"status":     statusHint,
	"fix-config": fixConfigHint,
}

// HintFor classifies errorText and builds the hint for the failing
// command. Product requirement: a query failure always offers grep/ripgrep
// as a fallback search method, whatever the category.
func HintFor(exe, command, errorText, repo string) Hint {
	cat := Classify(errorText)
	if build, ok := hintBuilders[command]; ok {
		return build(exe, repo, cat)
	}
	return defaultHint(exe, repo, cat)
}

func grepFallback(repo string) []string {
	return []string{
		fmt.Sprintf("grep -rn \"<pattern>\" %s", repo),
		fmt.Sprintf("rg \"<pattern>\" %s", repo),
	}
}

func queryHint(exe, repo string, cat Category) Hint {
	switch cat {
	case CategoryConnection:
		return Hint{
			Message: "The indexing service in this repository is not reachable; search with grep/ripgrep instead, or restart the service.",
			Commands: append(grepFallback(repo),
				fmt.Sprintf("cd %s && %s start", repo, exe),
			),
			Explanation: "grep and ripgrep search the working tree directly and do not need the indexing service.",
		}
	case CategoryConfiguration:
		return Hint{
			Message: "The indexer configuration in this repository looks broken; repair it, or search with grep/ripgrep instead.",
			Commands: append([]string{
				fmt.Sprintf("cd %s && %s fix-config", repo, exe),
			}, grepFallback(repo)...),
		}
	default:
		return Hint{
			Message: "The query failed in this repository; check the service status, or search with grep/ripgrep instead.",
			Commands: append([]string{
				fmt.Sprintf("cd %s && %s status", repo, exe),
			}, grepFallback(repo)...),
			Explanation: "grep and ripgrep search the working tree directly and do not need the indexing service.",
		}
	}
}

func lifecycleHint(exe, repo string, cat Category) Hint {
	switch cat {
	case CategoryPortConflict:
		return Hint{
			Message: "A service port is already taken; stop the conflicting service in this repository first.",
			Commands: []string{
				fmt.Sprintf("cd %s && %s stop", repo, exe),
				fmt.Sprintf("cd %s && %s start", repo, exe),
			},
			Explanation: "Lifecycle commands run one repository at a time, but a service left over from an earlier run can still hold the port.",
		}
	case CategoryPermission:
		return Hint{
			Message: "The service files in this repository are not writable by the current user.",
			Commands: []string{
				fmt.Sprintf("ls -la %s", repo),
				fmt.Sprintf("cd %s && %s fix-config", repo, exe),
			},
		}
	case CategoryTimeout:
		return Hint{
			Message: "The service did not finish starting or stopping in time; check its status and retry.",
			Commands: []string{
				fmt.Sprintf("cd %s && %s status", repo, exe),
			},
		}
	default:
		return Hint{
			Message: "The lifecycle command failed in this repository; check the service status there.",
			Commands: []string{
				fmt.Sprintf("cd %s && %s status", repo, exe),
			},
		}
	}
}

func statusHint(exe, repo string, cat Category) Hint {
	if cat == CategoryConnection {
		return Hint{
			Message: "The indexing service is not running in this repository.",
			Commands: []string{
				fmt.Sprintf("cd %s && %s start", repo, exe),
			},
		}
	}
	return Hint{
		Message: "Status reporting failed in this repository; the local configuration may need repair.",
		Commands: []string{
			fmt.Sprintf("cd %s && %s fix-config", repo, exe),
		},
	}
}

func fixConfigHint(exe, repo string, cat Category) Hint {
	if cat == CategoryPermission {
		return Hint{
			Message: "Configuration repair was denied; fix ownership of the indexer directory first.",
			Commands: []string{
				fmt.Sprintf("ls -la %s", repo),
			},
		}
	}
	return Hint{
		Message: "Configuration repair failed; inspect the indexer state in this repository directly.",
		Commands: []string{
			fmt.Sprintf("cd %s && %s status", repo, exe),
		},
	}
}

func defaultHint(exe, repo string, cat Category) Hint {
	return Hint{
		Message: "The command failed in this repository; run it there directly for full output.",
		Commands: []string{
			fmt.Sprintf("cd %s && %s status", repo, exe),
		},
	}
}
