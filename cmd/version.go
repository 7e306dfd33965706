package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of pgpolicy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pgpolicy v%s@%s %s %s\n",
			version.Version(), version.GetGitCommit(), version.Platform(), version.GetBuildDate())
	},
}
