package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repofan/internal/logging"
	"repofan/internal/proxy"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure the current directory as a proxy root",
	Long: `Configure the current directory as a proxy root.

Init refuses to nest: if any ancestor directory is already a proxy root,
initialization fails. It then discovers every independently-indexed
repository beneath the current directory (identified by the indexer's
marker directory, following symlinks safely) and persists the member list.

Examples:
  cd ~/code && repofan init
  repofan init --force   # reinitialize, rediscovering members`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runInit())
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-discover member repositories and rewrite the proxy record",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runRefresh())
	},
}

func runInit() int {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}
	log := logging.New(nil, cfg.Runtime.Verbose)

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	rec, err := proxy.Init(root, cfg.Proxy.Marker, initForce, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	fmt.Printf("Initialized proxy root with %d repositories:\n", len(rec.Repositories))
	for _, r := range rec.Repositories {
		fmt.Printf("  %s\n", r)
	}
	if len(rec.Repositories) == 0 {
		fmt.Println("  (none found; run 'repofan refresh' after indexing repositories)")
	}
	return 0
}

func runRefresh() int {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}
	log := logging.New(nil, cfg.Runtime.Verbose)

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	rec, err := proxy.Refresh(root, cfg.Proxy.Marker, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}
	fmt.Printf("Refreshed proxy root: %d repositories.\n", len(rec.Repositories))
	return 0
}

func init() {
	initCmd.Flags().BoolVar(&initForce, flagForce, false, "Reinitialize even if this directory is already a proxy root")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(refreshCmd)
}
