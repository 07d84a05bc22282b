package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repofan/internal/config"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "repofan",
	Short: "Fan indexer commands out to every indexed repository under one root",
	Long: `RepoFan turns a parent directory into a proxy root: one command is fanned
out to every independently-indexed repository beneath it, executed by the
per-repository indexer, and the outputs are merged into one view.

RepoFan never indexes anything itself. It orchestrates the indexer
executable (default: cidx), classifies commands as parallel-safe or
sequential-only, captures per-repository failures as data, and renders
actionable hints for whatever went wrong.

Examples:
	# Configure the current directory as a proxy root
	repofan init

	# Search all member repositories and merge the ranked results
	repofan run query "connection pooling" --limit 10

	# Stop the indexing service in every repository, one at a time
	repofan run stop

	# Watch all repositories with live multiplexed output
	repofan watch

Exit codes (run):
	0 = all repositories succeeded
	1 = all repositories failed
	2 = partial success
	3 = invalid command, missing proxy config, or zero repositories`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flagVerbose, false, "Enable debug-level diagnostics on stderr")
	rootCmd.PersistentFlags().StringVar(&cfg.Proxy.Exe, flagExe, cfg.Proxy.Exe, "Per-repository indexer executable")
	rootCmd.PersistentFlags().StringVar(&cfg.Proxy.Marker, flagMarker, cfg.Proxy.Marker, "Directory name marking an indexed repository")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
