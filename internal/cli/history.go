package cli

import (
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/history"
)

func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent evaluation runs",
		Long:  `List recent evaluation runs. Runs are only recorded when history.backend is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--limit must be positive")
			}
			if c.cfg.History.Backend == string(history.BackendNone) {
				printInfo(c.out, "History is disabled. Set history.backend to record runs.")
				return nil
			}

			hs, err := history.Open(cmd.Context(), history.Backend(c.cfg.History.Backend), c.cfg.historyDSN())
			if err != nil {
				return err
			}
			defer hs.Close()

			runs, err := hs.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo(c.out, "No runs recorded yet")
				return nil
			}
			return writeHistory(c, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func writeHistory(c *CLI, runs []history.Run) error {
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header([]string{"Started", "Duration", "Metric", "Repos", "Failing", "Run"})
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		failing := strconv.Itoa(r.Failing())
		if r.Failing() > 0 {
			failing = StyleWarning.Render(failing)
		}
		data = append(data, []string{
			r.Started.Local().Format(time.DateTime),
			r.Finished.Sub(r.Started).Round(time.Second).String(),
			r.Metric,
			strconv.Itoa(len(r.Repos)),
			failing,
			r.ID[:min(8, len(r.ID))],
		})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}
