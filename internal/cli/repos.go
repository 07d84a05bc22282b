package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repofan/internal/config"
	"repofan/internal/proxy"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the member repositories of this proxy root",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		if !config.HasRecord(root) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", proxy.ErrNotAProxy)
			os.Exit(3)
		}
		rec, err := config.LoadRecord(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		for _, r := range rec.Repositories {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
