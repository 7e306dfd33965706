package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pgpolicy/pgpolicy/internal/adapter"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConnFlags bundles the database connection flags shared by every command
// that talks to the rule store.
type ConnFlags struct {
	Host     string
	Port     int
	DB       string
	User     string
	Password string
	Table    string
}

// Register wires the connection flags onto a command.
func (f *ConnFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Host, "host", "localhost", "Database server host")
	cmd.Flags().IntVar(&f.Port, "port", 5432, "Database server port")
	cmd.Flags().StringVar(&f.DB, "db", "", "Database name (required)")
	cmd.Flags().StringVar(&f.User, "user", "", "Database user name (required)")
	cmd.Flags().StringVar(&f.Password, "password", "", "Database password (optional)")
	cmd.Flags().StringVar(&f.Table, "table", adapter.DefaultTableName, "Policy rule table name")
}

// AdapterConfig converts the flags into an adapter connection config.
func (f *ConnFlags) AdapterConfig() adapter.Config {
	return adapter.Config{
		Host:      f.Host,
		Port:      f.Port,
		Database:  f.DB,
		User:      f.User,
		Password:  f.Password,
		SSLMode:   "prefer",
		TableName: f.Table,
	}
}

// ConnectionConfig converts the flags into a raw connection config.
func (f *ConnFlags) ConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Host:     f.Host,
		Port:     f.Port,
		Database: f.DB,
		User:     f.User,
		Password: f.Password,
		SSLMode:  "prefer",
	}
}

// PreRunEWithEnvVars creates a PreRunE function that fills connection flags
// from the conventional PG* environment variables when the flags weren't
// explicitly set, then validates that the required values are present.
func PreRunEWithEnvVars(f *ConnFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if GetEnvWithDefault("PGDATABASE", "") != "" && !cmd.Flags().Changed("db") {
			f.DB = GetEnvWithDefault("PGDATABASE", "")
		}
		if GetEnvWithDefault("PGUSER", "") != "" && !cmd.Flags().Changed("user") {
			f.User = GetEnvWithDefault("PGUSER", "")
		}
		if GetEnvWithDefault("PGHOST", "") != "" && !cmd.Flags().Changed("host") {
			f.Host = GetEnvWithDefault("PGHOST", "")
		}
		if GetEnvIntWithDefault("PGPORT", 0) != 0 && !cmd.Flags().Changed("port") {
			f.Port = GetEnvIntWithDefault("PGPORT", 0)
		}
		if GetEnvWithDefault("PGPASSWORD", "") != "" && !cmd.Flags().Changed("password") {
			f.Password = GetEnvWithDefault("PGPASSWORD", "")
		}

		if f.DB == "" {
			return fmt.Errorf("database name is required (use --db flag or PGDATABASE environment variable)")
		}
		if f.User == "" {
			return fmt.Errorf("database user is required (use --user flag or PGUSER environment variable)")
		}

		return nil
	}
}
