// Package revoke implements the revoke command: removing policy rules
// either by exact match or by a partial positional pattern.
package revoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/cmd/util"
	"github.com/pgpolicy/pgpolicy/internal/adapter"
	"github.com/pgpolicy/pgpolicy/internal/rule"
)

var (
	revokeFlags      util.ConnFlags
	revokeFieldIndex int
)

var RevokeCmd = &cobra.Command{
	Use:   "revoke <ptype> [param...]",
	Short: "Remove policy rules, exact or by pattern",
	Long: "Remove policy rules from the store.\n\n" +
		"Without --field-index the rule must match exactly, including its length:\n\n" +
		"  pgpolicy revoke p alice data1 read\n\n" +
		"With --field-index the params form a pattern starting at that slot; empty\n" +
		"strings leave a position unconstrained. Revoking everything alice can do:\n\n" +
		"  pgpolicy revoke --field-index 0 p alice\n\n" +
		"Revoking a rule that is not stored succeeds and removes nothing.",
	Args:    cobra.RangeArgs(1, 1+rule.MaxParams),
	PreRunE: util.PreRunEWithEnvVars(&revokeFlags),
	RunE:    runRevoke,
}

func init() {
	revokeFlags.Register(RevokeCmd)
	RevokeCmd.Flags().IntVar(&revokeFieldIndex, "field-index", -1, "Treat params as a pattern starting at this slot")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ptype, params := args[0], args[1:]

	a, err := adapter.Open(ctx, revokeFlags.AdapterConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("field-index") {
		err = a.RemoveFilteredPolicy(ctx, "", ptype, revokeFieldIndex, params...)
	} else {
		err = a.RemovePolicy(ctx, "", ptype, params)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s, %s\n", ptype, strings.Join(params, ", "))
	return nil
}
