package cli

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/aunovis/secure-sum/pkg/metric"
)

// probesCommand lists every probe name a metric may reference, with the
// weight it has in the selected metric.
func (c *CLI) probesCommand() *cobra.Command {
	var metricFile string

	cmd := &cobra.Command{
		Use:   "probes",
		Short: "List the probes a metric can reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMetric(metricFile)
			if err != nil {
				return err
			}
			return writeProbeList(c, m)
		},
	}
	cmd.Flags().StringVarP(&metricFile, "metric", "m", "", "metric file (default: built-in metric)")
	return cmd
}

func writeProbeList(c *CLI, m *metric.Metric) error {
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header([]string{"Probe", "Weight", "Max Times"})

	var data [][]string
	for _, name := range metric.AllProbeNames {
		weight, maxTimes := "", ""
		if spec, ok := m.Spec(name); ok {
			weight = strconv.FormatFloat(spec.Weight, 'g', -1, 64)
			if spec.MaxTimes != nil {
				maxTimes = strconv.Itoa(*spec.MaxTimes)
			}
		}
		data = append(data, []string{string(name), weight, maxTimes})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	printDetail(c.out, "%d of %d probes used by the %s metric", len(m.Probes), len(metric.AllProbeNames), m.Source)
	return nil
}
