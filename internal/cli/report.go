package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/evaluate"
	"github.com/aunovis/secure-sum/pkg/score"
)

// Report formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
)

type reportOptions struct {
	format     string
	details    bool
	thresholds evaluate.Thresholds
}

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputCSV:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (want table, json or csv)", format)
}

// writeReport renders repos, which are expected to be sorted already.
func writeReport(w io.Writer, repos []score.RepoData, opts reportOptions) error {
	switch opts.format {
	case outputJSON:
		return writeJSONReport(w, repos, opts.thresholds)
	case outputCSV:
		return writeCSVReport(w, repos, opts.thresholds)
	}

	if _, err := fmt.Fprintln(w, summaryTable(repos, opts.thresholds)); err != nil {
		return err
	}
	for _, r := range repos {
		if r.ErrorMessage != "" {
			fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s could not be evaluated: %s", r.Repo, r.ErrorMessage)))
		}
	}
	if opts.details {
		for _, r := range repos {
			if err := writeDetails(w, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// Table
// =============================================================================

func summaryTable(repos []score.RepoData, th evaluate.Thresholds) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Repo", "Score", "Probes", "Label").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(colorCyan)
			}
			if col == 1 || col == 2 {
				return s.Align(lipgloss.Right)
			}
			return s
		})

	for _, r := range repos {
		t.Row(r.Repo, formatScore(r.Score), probeSummary(r), coloredLabel(r.Score, th))
	}
	return t.Render()
}

// writeDetails prints the cumulated outcomes of one repository.
func writeDetails(w io.Writer, r score.RepoData) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render(r.Repo))

	tbl := tablewriter.NewWriter(w)
	tbl.Header([]string{"Probe", "Weight", "True"})
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, o := range r.Outcomes {
		data = append(data, []string{string(o.Probe), strconv.FormatFloat(o.Weight, 'g', -1, 64), formatCount(o)})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', 1, 64)
}

func formatCount(o score.CumulatedOutcome) string {
	if !o.Applicable() {
		return "-"
	}
	return strconv.Itoa(*o.TrueCount)
}

// probeSummary is the share of probes with a boolean outcome.
func probeSummary(r score.RepoData) string {
	applicable := 0
	for _, o := range r.Outcomes {
		if o.Applicable() {
			applicable++
		}
	}
	return fmt.Sprintf("%d/%d", applicable, len(r.Outcomes))
}

// =============================================================================
// Labels
// =============================================================================

const (
	labelOK   = "OK"
	labelWarn = "WARN"
	labelFail = "FAIL"
)

func plainLabel(s float64, th evaluate.Thresholds) string {
	switch {
	case s < th.Error:
		return labelFail
	case s < th.Warn:
		return labelWarn
	default:
		return labelOK
	}
}

func coloredLabel(s float64, th evaluate.Thresholds) string {
	label := plainLabel(s, th)
	switch label {
	case labelFail:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case labelWarn:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgGreen).Sprint(label)
	}
}

// =============================================================================
// Machine readable
// =============================================================================

type jsonOutcome struct {
	Probe     string  `json:"probe"`
	Weight    float64 `json:"weight"`
	TrueCount *int    `json:"trueCount"`
}

type jsonRepo struct {
	Repo         string        `json:"repo"`
	Score        float64       `json:"score"`
	Label        string        `json:"label"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Probes       []jsonOutcome `json:"probes"`
}

func writeJSONReport(w io.Writer, repos []score.RepoData, th evaluate.Thresholds) error {
	out := make([]jsonRepo, len(repos))
	for i, r := range repos {
		out[i] = jsonRepo{
			Repo:         r.Repo,
			Score:        r.Score,
			Label:        plainLabel(r.Score, th),
			ErrorMessage: r.ErrorMessage,
			Probes:       make([]jsonOutcome, len(r.Outcomes)),
		}
		for j, o := range r.Outcomes {
			out[i].Probes[j] = jsonOutcome{Probe: string(o.Probe), Weight: o.Weight, TrueCount: o.TrueCount}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSVReport(w io.Writer, repos []score.RepoData, th evaluate.Thresholds) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "repo", "score", "label", "error"}); err != nil {
		return err
	}
	for i, r := range repos {
		rec := []string{
			strconv.Itoa(i + 1),
			r.Repo,
			strconv.FormatFloat(r.Score, 'f', 3, 64),
			plainLabel(r.Score, th),
			r.ErrorMessage,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
