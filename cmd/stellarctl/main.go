// Command stellarctl runs maintenance tasks against the Stellar Journal database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stellar/internal/db"
	"stellar/internal/logging"
	"stellar/internal/store"
)

var (
	logger *zap.Logger

	dbDriver string
	dbURL    string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "stellarctl",
	Short: "Stellar Journal maintenance tool",
	Long: `stellarctl manages the Stellar Journal database outside the HTTP API:
schema migrations, development users, test-user cleanup and record inspection.

Connection settings default to DATABASE_DRIVER and DATABASE_URL (a .env file is read if present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		var err error
		logger, err = logging.New(os.Getenv("ENVIRONMENT"), verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", envOr("DATABASE_DRIVER", db.DriverPostgres), "database driver (pgx or sqlite)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", os.Getenv("DATABASE_URL"), "database connection string")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd, seedUserCmd, deleteUsersCmd, recordsCmd)
}

// openStore connects and migrates so every command sees the current schema.
func openStore() (*store.Store, func(), error) {
	conn, err := db.Open(dbDriver, dbURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store.New(conn), func() { conn.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
