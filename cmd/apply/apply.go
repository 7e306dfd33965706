// Package apply implements the apply command: an atomic full replace of the
// stored rule set from a CSV policy file.
package apply

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
	applyFlags  util.ConnFlags
	applyFile   string
	applyDryRun bool
)

var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Atomically replace stored rules from a policy file",
	Long: "Replace the entire stored rule set with the contents of a CSV policy file. " +
		"The replace runs in a single transaction: on any failure the store keeps its " +
		"prior rules. Use grant for incremental additions.",
	PreRunE: util.PreRunEWithEnvVars(&applyFlags),
	RunE:    runApply,
}

func init() {
	applyFlags.Register(ApplyCmd)
	ApplyCmd.Flags().StringVar(&applyFile, "file", "", "Path to the CSV policy file (required)")
	ApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would be stored without writing")
	ApplyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := os.Open(applyFile)
	if err != nil {
		return fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	m, err := model.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	if applyDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would store %d rules:\n", m.RuleCount())
		return model.WriteCSV(cmd.OutOrStdout(), m)
	}

	a, err := adapter.Open(ctx, applyFlags.AdapterConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SavePolicy(ctx, m); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d rules.\n", m.RuleCount())
	return nil
}
