// Package initdb implements the init command: it creates the policy rule
// table, either from the built-in definition or from an operator-supplied
// DDL file.
package initdb

import (
	"context"
	"fmt"
	"os"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/cmd/util"
	"github.com/pgpolicy/pgpolicy/internal/adapter"
)

var (
	initFlags util.ConnFlags
	initFile  string
)

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the policy rule table",
	Long: "Create the policy rule table if it does not exist. With --file, execute the " +
		"given DDL file instead of the built-in table definition, for operators who " +
		"manage schema themselves.",
	PreRunE: util.PreRunEWithEnvVars(&initFlags),
	RunE:    runInit,
}

func init() {
	initFlags.Register(InitCmd)
	InitCmd.Flags().StringVar(&initFile, "file", "", "Path to a DDL file to execute instead of the built-in definition")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if initFile == "" {
		// Open creates the table when it is missing.
		a, err := adapter.Open(ctx, initFlags.AdapterConfig())
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Table %q is ready.\n", a.TableName())
		return nil
	}

	ddl, err := os.ReadFile(initFile)
	if err != nil {
		return fmt.Errorf("failed to read DDL file: %w", err)
	}

	conn, err := util.Connect(initFlags.ConnectionConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	// DDL files may contain statements that cannot run inside an implicit
	// transaction, so each statement is executed individually.
	statements, err := pg_query.SplitWithParser(string(ddl), true)
	if err != nil {
		return fmt.Errorf("failed to split DDL statements: %w", err)
	}

	for _, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement '%s': %w", strings.TrimSpace(stmt), err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Executed %d statements from %s.\n", len(statements), initFile)
	return nil
}
