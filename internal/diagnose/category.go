// Package diagnose turns captured per-repository failures into actionable
// diagnostics: an error category, a command-specific hint with runnable
// suggestions, and a boxed detail block for batch summaries.
package diagnose

import "regexp"

// Category is the coarse failure class inferred from error text.
type Category string

const (
	CategoryConnection    Category = "connection"
	CategoryPortConflict  Category = "port-conflict"
	CategoryPermission    Category = "permission"
	CategoryConfiguration Category = "configuration"
	CategoryTimeout       Category = "timeout"
	CategoryUnknown       Category = "unknown"
)

// categoryTable is evaluated in order; the first matching pattern wins.
// Patterns are case-insensitive. Order matters: "connection timed out"
// must classify as connection, not timeout, because the remediation is
// to restart the service, not to wait longer.
var categoryTable = []struct {
	re       *regexp.Regexp
	category Category
}{
	{regexp.MustCompile(`(?i)cannot connect|connection refused|connection reset|no route to host|service (is )?not running|not responding|broken pipe`), CategoryConnection},
	{regexp.MustCompile(`(?i)address already in use|port .*(in use|conflict|taken)|bind(ing)? failed`), CategoryPortConflict},
	{regexp.MustCompile(`(?i)permission denied|access denied|operation not permitted|read-only file system`), CategoryPermission},
	{regexp.MustCompile(`(?i)config(uration)?.*(invalid|missing|corrupt|not found)|invalid config|no such file|missing required setting`), CategoryConfiguration},
	{regexp.MustCompile(`(?i)timed? ?out|deadline exceeded`), CategoryTimeout},
}

// Classify maps error text to a Category via first-match over the ordered
// pattern table. Unmatched text is CategoryUnknown.
func Classify(errorText string) Category {
	for _, entry := range categoryTable {
		if entry.re.MatchString(errorText) {
			return entry.category
		}
	}
	return CategoryUnknown
}
