package cli

// Canonical CLI flag names, without leading dashes. Keeping them as
// constants avoids drift between Cobra wiring and code that needs to
// mention flags in messages.
const (
	// Persistent
	flagVerbose = "verbose"
	flagExe     = "exe"
	flagMarker  = "marker"

	// init
	flagForce = "force"

	// run
	flagLimit       = "limit"
	flagQuiet       = "quiet"
	flagConcurrency = "concurrency"
)
