// Package dump implements the dump command: it prints stored policy rules
// as CSV policy lines.
package dump

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/cmd/util"
	"github.com/pgpolicy/pgpolicy/internal/adapter"
	"github.com/pgpolicy/pgpolicy/internal/model"
)

var (
	dumpFlags util.ConnFlags
	dumpPType string
	dumpFile  string
)

var DumpCmd = &cobra.Command{
	Use:     "dump",
	Short:   "Print stored policy rules as CSV lines",
	Long:    "Load the stored policy rules and write them out as CSV policy lines, to stdout or to a file.",
	PreRunE: util.PreRunEWithEnvVars(&dumpFlags),
	RunE:    runDump,
}

func init() {
	dumpFlags.Register(DumpCmd)
	DumpCmd.Flags().StringVar(&dumpPType, "ptype", "", "Only dump rules of this rule set (e.g. p or g)")
	DumpCmd.Flags().StringVar(&dumpFile, "file", "", "Output file path (defaults to stdout)")
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Borrow the connection so dump never creates the table as a side
	// effect.
	conn, err := util.Connect(dumpFlags.ConnectionConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	a, err := adapter.NewWithDB(ctx, conn, dumpFlags.Table)
	if err != nil {
		return err
	}
	defer a.Close()

	m := model.New()
	if dumpPType != "" {
		err = a.LoadFilteredPolicy(ctx, m, adapter.Filter{PType: dumpPType})
	} else {
		err = a.LoadPolicy(ctx, m)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dumpFile != "" {
		f, err := os.Create(dumpFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return model.WriteCSV(out, m)
}
