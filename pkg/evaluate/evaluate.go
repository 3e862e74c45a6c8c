// Package evaluate decides whether scored repositories pass.
//
// Thresholds resolve with the precedence command line > metric file >
// built-in default. A score below the error threshold fails the run, a
// score below the warn threshold only produces a warning. The check never
// stops early: every repository is reported before the failure is returned.
package evaluate

import (
	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/score"
)

// Built-in thresholds.
const (
	DefaultErrorThreshold = 3.0
	// WarnOffset is added to the error threshold when no warn threshold is
	// configured.
	WarnOffset = 1.0
)

// Thresholds are the resolved score limits of a run.
type Thresholds struct {
	Error float64
	Warn  float64
}

// Resolve applies the threshold precedence. Nil values are unset.
func Resolve(cliError, cliWarn *float64, m *metric.Metric) Thresholds {
	th := Thresholds{Error: DefaultErrorThreshold}
	switch {
	case cliError != nil:
		th.Error = *cliError
	case m != nil && m.ErrorThreshold != nil:
		th.Error = *m.ErrorThreshold
	}

	th.Warn = th.Error + WarnOffset
	switch {
	case cliWarn != nil:
		th.Warn = *cliWarn
	case m != nil && m.WarnThreshold != nil:
		th.Warn = *m.WarnThreshold
	}

	th.diagnose()
	return th
}

func (th Thresholds) diagnose() {
	if th.Warn < th.Error {
		log.Warn("The warn threshold is below the error threshold, no warnings will be emitted", "warn", th.Warn, "error", th.Error)
	}
	for _, v := range []float64{th.Error, th.Warn} {
		if v < 0 || v > score.Max {
			log.Error("Threshold outside of the score range", "threshold", v, "min", 0, "max", score.Max)
		}
	}
}

// Check logs every repository below a threshold and returns a
// [errors.ErrCodeScoreTooLow] error if any of them is below th.Error.
func Check(repos []score.RepoData, th Thresholds) error {
	failed := false
	for _, r := range repos {
		switch {
		case r.Score < th.Error:
			failed = true
			log.Errorf("Repo %s has a score of %.1f, which is below the error threshold of %.1f.", r.Repo, r.Score, th.Error)
		case r.Score < th.Warn:
			log.Warnf("Repo %s has a score of %.1f, which is dangerously close to the error threshold of %.1f.", r.Repo, r.Score, th.Error)
		}
	}
	if failed {
		return errors.ScoreTooLow()
	}
	return nil
}

// Failing returns the repositories scoring below th.Error.
func Failing(repos []score.RepoData, th Thresholds) []score.RepoData {
	var out []score.RepoData
	for _, r := range repos {
		if r.Score < th.Error {
			out = append(out, r)
		}
	}
	return out
}
