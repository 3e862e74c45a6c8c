// Package score turns probe records into one comparable number per
// repository.
//
// Weights always come from the current metric, never from the stored
// record, so editing a weight applies retroactively without rerunning any
// probes.
//
// The total score is an affine map of the achieved weight sum onto [0, 10]:
// the worst attainable outcome profile scores 0 and the best scores 10,
// independent of the number of probes or the skew of their weights. Only
// True and False findings participate.
package score

import (
	"cmp"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/probe"
)

// Max is the best possible score.
const Max = 10.0

// epsilon is the smallest score range that is not treated as empty.
const epsilon = 1e-10

// WeighedFinding is a finding paired with the weight its probe has in the
// current metric.
type WeighedFinding struct {
	Probe   metric.ProbeName
	Weight  float64
	Outcome probe.Outcome
}

// WeighedFindings collects the findings of r for every probe of m, in
// metric order, keeping at most max_times findings per probe. The result is
// sorted by descending absolute weight, then by probe name.
func WeighedFindings(r *probe.Result, m *metric.Metric) []WeighedFinding {
	var weighed []WeighedFinding
	for _, spec := range m.Probes {
		matches := r.FindingsFor(spec.Name)
		if len(matches) == 0 {
			log.Debug("No findings for probe", "probe", spec.Name, "repo", r.Repo.Name)
			continue
		}
		if spec.MaxTimes != nil && len(matches) > *spec.MaxTimes {
			matches = matches[:*spec.MaxTimes]
		}
		for _, f := range matches {
			weighed = append(weighed, WeighedFinding{Probe: spec.Name, Weight: spec.Weight, Outcome: f.Outcome})
		}
	}

	slices.SortStableFunc(weighed, func(a, b WeighedFinding) int {
		if c := cmp.Compare(math.Abs(b.Weight), math.Abs(a.Weight)); c != 0 {
			return c
		}
		return cmp.Compare(a.Probe, b.Probe)
	})
	return weighed
}

// TotalScore normalizes the weighed findings to a score between 0 and [Max].
//
// Negative weights of boolean findings span the lower end of the range and
// positive weights the upper end, regardless of their outcome. A True
// outcome adds its weight to the achieved sum. Without boolean findings the
// score is 0.
func TotalScore(findings []WeighedFinding) float64 {
	var lowest, highest, achieved float64
	for _, f := range findings {
		if !f.Outcome.IsBoolean() {
			continue
		}
		if f.Weight < 0 {
			lowest += f.Weight
		} else {
			highest += f.Weight
		}
		if f.Outcome == probe.OutcomeTrue {
			achieved += f.Weight
		}
	}

	span := highest - lowest
	if span < epsilon {
		log.Warn("No boolean findings to score, the score is 0")
		return 0
	}
	return (achieved - lowest) / span * Max
}

// CumulatedOutcome summarizes all findings of one probe.
type CumulatedOutcome struct {
	Probe  metric.ProbeName
	Weight float64
	// TrueCount is 0 if any finding is False, the number of True findings
	// otherwise, and nil if no finding is boolean.
	TrueCount *int
}

// Applicable reports whether the probe produced a boolean finding.
func (c CumulatedOutcome) Applicable() bool {
	return c.TrueCount != nil
}

// CumulatedOutcomes groups findings by probe, sorted by probe name.
func CumulatedOutcomes(findings []WeighedFinding) []CumulatedOutcome {
	index := make(map[metric.ProbeName]int)
	var out []CumulatedOutcome
	falsified := make(map[metric.ProbeName]bool)

	for _, f := range findings {
		i, ok := index[f.Probe]
		if !ok {
			i = len(out)
			index[f.Probe] = i
			out = append(out, CumulatedOutcome{Probe: f.Probe, Weight: f.Weight})
		}
		c := &out[i]
		switch f.Outcome {
		case probe.OutcomeFalse:
			falsified[f.Probe] = true
			c.TrueCount = new(int)
		case probe.OutcomeTrue:
			if c.TrueCount == nil {
				c.TrueCount = new(int)
			}
			if !falsified[f.Probe] {
				*c.TrueCount++
			}
		}
	}

	slices.SortFunc(out, func(a, b CumulatedOutcome) int {
		return cmp.Compare(a.Probe, b.Probe)
	})
	return out
}
