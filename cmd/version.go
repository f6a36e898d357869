package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vavoo/internal/assets"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vavoo %s (identity %s)\n", Version, assets.IdentityVersion)
	},
}
