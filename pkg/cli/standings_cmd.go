package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"racing-api/internal/config"
	"racing-api/internal/db/repository"
	"racing-api/internal/domain"
	"racing-api/internal/service/standings"
)

func newStandingsCmd(flags *globalFlags) *cobra.Command {
	var (
		season int
		limit  int
	)
	cmd := &cobra.Command{
		Use:       "standings {" + strings.Join(config.StandingsViews, "|") + "}",
		Short:     "Print a standings table",
		Example:   "  racing standings driver_standings --season 2023 --limit 5\n  racing standings top_drivers_by_wins",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.StandingsViews,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			if !slices.Contains(config.StandingsViews, view) {
				return fmt.Errorf("unknown standings view %q", view)
			}
			cfg, pools, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer pools.Close() //nolint:errcheck

			vc := cfg.Standings.For(view)
			if cmd.Flags().Changed("season") {
				vc.Season = season
			}
			if cmd.Flags().Changed("limit") {
				vc.Limit = limit
			}
			cfg.Standings.Views[view] = vc
			if err := cfg.Standings.Validate(); err != nil {
				return err
			}

			svc := standings.NewService(repository.NewStandingsRepo(pools.Read), cfg.Standings, cfg.StoreTimeout, nil)
			rows, _, err := svc.Standings(commandContext(cmd), view)
			if err != nil {
				return err
			}
			return printStandings(cmd, rows)
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default from config; 0 counts every season for top_drivers_by_wins)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (default from config)")
	return cmd
}

func printStandings(cmd *cobra.Command, rows []domain.StandingsRow) error {
	if rows == nil {
		rows = []domain.StandingsRow{}
	}
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	headers := []string{"POS", "ID"}
	var labels []string
	metric := domain.PointsMetric
	if len(rows) > 0 {
		for _, l := range rows[0].Labels {
			labels = append(labels, l.Name)
		}
		metric = rows[0].MetricName()
	}
	headers = append(headers, labels...)
	headers = append(headers, metric)

	table := make([][]string, 0, len(rows))
	for i, r := range rows {
		line := []string{strconv.Itoa(i + 1), strconv.FormatInt(r.ID, 10)}
		for _, name := range labels {
			line = append(line, r.Label(name))
		}
		line = append(line, strconv.FormatFloat(r.Value, 'f', -1, 64))
		table = append(table, line)
	}
	return printTable(cmd.OutOrStdout(), headers, table)
}
