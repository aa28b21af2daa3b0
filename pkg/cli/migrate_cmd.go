package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"racing-api/internal/db"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the racing tables in a SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, pools, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer pools.Close() //nolint:errcheck

			if pools.Driver != db.DriverSQLite {
				return fmt.Errorf("migrate supports only the %s driver, got %s", db.DriverSQLite, pools.Driver)
			}
			if err := db.RunMigrations(pools.Write); err != nil {
				return err
			}
			v, err := db.MigrationVersion(pools.Write)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"version": v})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return err
		},
	}
}
