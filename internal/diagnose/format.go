package diagnose

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorMessage is one failing repository's captured outcome, rendered as a
// boxed detail block in batch summaries. It is built per failure and never
// persisted.
type ErrorMessage struct {
	Repository string
	Command    string
	ErrorText  string
	ExitCode   int
	Hint       *Hint
}

var blockRule = strings.Repeat("─", 60)

var (
	redSprint    = color.New(color.FgRed).Sprint
	greenSprint  = color.New(color.FgGreen).Sprint
	yellowSprint = color.New(color.FgYellow).Sprint
)

// NewErrorMessage builds an ErrorMessage with its category-specific hint
// attached. exe is the indexer executable name used in suggested commands.
func NewErrorMessage(exe, command, repo, errorText string, exitCode int) ErrorMessage {
	hint := HintFor(exe, command, errorText, repo)
	return ErrorMessage{
		Repository: repo,
		Command:    command,
		ErrorText:  errorText,
		ExitCode:   exitCode,
		Hint:       &hint,
	}
}

// FormatError renders the boxed, separator-delimited detail block.
func FormatError(m ErrorMessage) string {
	var b strings.Builder
	b.WriteString(blockRule)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s Command failed\n", redSprint("✗"))
	fmt.Fprintf(&b, "  Repository: %s\n", m.Repository)
	fmt.Fprintf(&b, "  Command:    %s\n", m.Command)
	fmt.Fprintf(&b, "  Exit code:  %d\n", m.ExitCode)

	text := strings.TrimSpace(m.ErrorText)
	if text == "" {
		text = "(no error output)"
	}
	b.WriteString("  Error:\n")
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}

	if m.Hint != nil {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  %s %s\n", yellowSprint("Hint:"), m.Hint.Message)
		if len(m.Hint.Commands) > 0 {
			b.WriteString("  Try:\n")
			for i, cmd := range m.Hint.Commands {
				fmt.Fprintf(&b, "    %d. %s\n", i+1, cmd)
			}
		}
		if m.Hint.Explanation != "" {
			fmt.Fprintf(&b, "  Why: %s\n", m.Hint.Explanation)
		}
	}

	b.WriteString(blockRule)
	b.WriteByte('\n')
	return b.String()
}

// SuccessLine is the inline one-liner for a repository that succeeded.
func SuccessLine(repo string) string {
	return fmt.Sprintf("%s %s", greenSprint("✓"), repo)
}

// FailureLine is the inline one-liner for a repository that failed.
func FailureLine(repo, note string) string {
	if note == "" {
		return fmt.Sprintf("%s %s", redSprint("✗"), repo)
	}
	return fmt.Sprintf("%s %s: %s", redSprint("✗"), repo, note)
}
