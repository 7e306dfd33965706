// Package grant implements the grant command: adding a single policy rule.
package grant

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/cmd/util"
	"github.com/pgpolicy/pgpolicy/internal/adapter"
	"github.com/pgpolicy/pgpolicy/internal/rule"
)

var grantFlags util.ConnFlags

var GrantCmd = &cobra.Command{
	Use:   "grant <ptype> [param...]",
	Short: "Add a single policy rule",
	Long: "Insert one policy rule into the store, e.g.\n\n" +
		"  pgpolicy grant p alice data1 read\n" +
		"  pgpolicy grant g alice admin\n\n" +
		"Duplicates are not checked; granting the same rule twice stores it twice.",
	Args:    cobra.RangeArgs(1, 1+rule.MaxParams),
	PreRunE: util.PreRunEWithEnvVars(&grantFlags),
	RunE:    runGrant,
}

func init() {
	grantFlags.Register(GrantCmd)
}

func runGrant(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ptype, params := args[0], args[1:]

	a, err := adapter.Open(ctx, grantFlags.AdapterConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.AddPolicy(ctx, "", ptype, params); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Granted %s, %s\n", ptype, strings.Join(params, ", "))
	return nil
}
