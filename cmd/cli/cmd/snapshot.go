package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"shipping-cost/core/ui"
	"shipping-cost/db/ingestion"
	"shipping-cost/internal/config"
	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Load reference data and show the resulting snapshot",
	Long: `Load the catalog and zone table from the configured source, run
ingestion validation, and print the snapshot ID, content hash, counts and
any ingestion warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formatter()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		return f.RenderSnapshot(os.Stdout, snap.Info())
	},
}

var snapshotInitDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the PostgreSQL source tables",
	Long: `Create shipping_destinations and shipping_item_rates in the database
named by locations.postgres_dsn. Existing tables are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := config.Get().Locations.PostgresDSN
		if dsn == "" {
			return errors.Config("locations.postgres_dsn is not configured")
		}
		db, err := ingestion.OpenPostgres(dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		src := &ingestion.PostgresSource{DB: db, Logger: logging.Named("ingestion")}
		if err := src.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		ui.NewWriter(os.Stdout, noColor).Success("schema ready")
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotInitDBCmd)
}
