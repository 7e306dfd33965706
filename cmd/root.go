package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/cmd/apply"
	"github.com/pgpolicy/pgpolicy/cmd/dump"
	"github.com/pgpolicy/pgpolicy/cmd/grant"
	"github.com/pgpolicy/pgpolicy/cmd/initdb"
	"github.com/pgpolicy/pgpolicy/cmd/revoke"
	"github.com/pgpolicy/pgpolicy/internal/logger"
	"github.com/pgpolicy/pgpolicy/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgpolicy",
	Short: "PostgreSQL policy rule storage for access-control engines",
	Long: fmt.Sprintf(`pgpolicy stores access-control policy rules in a PostgreSQL table and
manages them from the command line.

Version: %s@%s %s %s

Commands:
  init    Create the policy rule table
  dump    Print stored policy rules as CSV lines
  apply   Atomically replace stored rules from a policy file
  grant   Add a single policy rule
  revoke  Remove policy rules, exact or by pattern

Use "pgpolicy [command] --help" for more information about a command.`,
		version.Version(), version.GetGitCommit(), version.Platform(), version.GetBuildDate()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(initdb.InitCmd)
	RootCmd.AddCommand(dump.DumpCmd)
	RootCmd.AddCommand(apply.ApplyCmd)
	RootCmd.AddCommand(grant.GrantCmd)
	RootCmd.AddCommand(revoke.RevokeCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
