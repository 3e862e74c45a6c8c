package probe

import (
	"time"

	"github.com/aunovis/secure-sum/pkg/metric"
)

// MaxAge is how long a stored record stays valid.
const MaxAge = 7 * 24 * time.Hour

// NeedsRerun decides whether the stored record r has to be refreshed
// before it can be scored against m.
//
//  1. A record at least [MaxAge] old is always rerun.
//  2. A younger record of a failed invocation is never rerun; it uses up
//     the whole validity window.
//  3. Otherwise the record is rerun if any probe configured in m has no
//     finding in it.
func NeedsRerun(r *Result, m *metric.Metric, now time.Time) bool {
	if r == nil {
		return true
	}
	if now.Sub(r.Date.Time) >= MaxAge {
		return true
	}
	if r.HasError() {
		return false
	}

	covered := make(map[metric.ProbeName]bool, len(r.Findings))
	for _, f := range r.Findings {
		covered[f.Probe] = true
	}
	for _, p := range m.Probes {
		if !covered[p.Name] {
			return true
		}
	}
	return false
}
