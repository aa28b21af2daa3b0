package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"racing-api/internal/db/repository"
	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
)

func newDescribeCmd(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "describe [table...]",
		Short: "Show the introspected schema of the exposed tables",
		Long: `Describe introspects tables exactly as the server does at startup and
prints each field with its API type, nullability and identity flag.

Without arguments the configured TABLES are described.`,
		Example: `  racing describe
  racing describe drivers results -o json
  racing describe --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pools, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer pools.Close() //nolint:errcheck

			ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.StoreTimeout)
			defer cancel()

			repo := repository.NewSchemaRepo(pools.Read, pools.Driver)
			tables := args
			switch {
			case all:
				if tables, err = repo.ListTables(ctx); err != nil {
					return err
				}
			case len(tables) == 0:
				tables = cfg.Tables
			}

			registry, err := recordschema.LoadRegistry(ctx, repo, tables)
			if err != nil {
				return err
			}
			schemas := make([]domain.TableSchema, 0, len(tables))
			for _, name := range registry.Tables() {
				rs, _ := registry.Lookup(name)
				schemas = append(schemas, rs.Table())
			}
			return printSchemas(cmd, schemas)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Describe every user table in the store")
	return cmd
}

func printSchemas(cmd *cobra.Command, schemas []domain.TableSchema) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), schemas)
	}
	var rows [][]string
	for _, s := range schemas {
		for _, f := range s.Fields {
			rows = append(rows, []string{
				s.Name, f.Name, string(f.Type), f.StoreType,
				strconv.FormatBool(f.Nullable), strconv.FormatBool(f.HasDefault), strconv.FormatBool(f.Identity),
			})
		}
	}
	return printTable(cmd.OutOrStdout(),
		[]string{"TABLE", "FIELD", "TYPE", "STORE TYPE", "NULLABLE", "DEFAULT", "IDENTITY"}, rows)
}
