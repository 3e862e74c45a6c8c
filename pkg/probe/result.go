// Package probe holds the runner's probe record format and the on-disk
// store of those records.
//
// The runner prints one JSON document per evaluated repository. Successful
// output is stored verbatim, one file per target; failures are stored as a
// synthesized record without findings and with an errorMessage. Whether a
// stored record can be reused is decided by [NeedsRerun].
package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aunovis/secure-sum/pkg/metric"
)

// Outcome is the result of one probe finding.
type Outcome string

const (
	OutcomeTrue          Outcome = "True"
	OutcomeFalse         Outcome = "False"
	OutcomeNotAvailable  Outcome = "NotAvailable"
	OutcomeError         Outcome = "Error"
	OutcomeNotSupported  Outcome = "NotSupported"
	OutcomeNotApplicable Outcome = "NotApplicable"
)

var outcomes = []Outcome{
	OutcomeTrue, OutcomeFalse, OutcomeNotAvailable,
	OutcomeError, OutcomeNotSupported, OutcomeNotApplicable,
}

// IsBoolean reports whether the outcome is True or False. Only boolean
// outcomes take part in scoring.
func (o Outcome) IsBoolean() bool {
	return o == OutcomeTrue || o == OutcomeFalse
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, known := range outcomes {
		if Outcome(s) == known {
			*o = known
			return nil
		}
	}
	return fmt.Errorf("unknown probe outcome %q", s)
}

// Finding is one observed outcome of one probe.
type Finding struct {
	Probe       metric.ProbeName `json:"probe"`
	Message     string           `json:"message,omitempty"`
	Outcome     Outcome          `json:"outcome"`
	Remediation *Remediation     `json:"remediation,omitempty"`
}

// Remediation is the runner's advice for a failed finding.
type Remediation struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Effort   int    `json:"effort,omitempty"`
}

// Repo identifies the evaluated repository.
type Repo struct {
	Name   string `json:"name"`
	Commit string `json:"commit,omitempty"`
}

// RunnerInfo identifies the runner build that produced a record.
type RunnerInfo struct {
	Version string `json:"version,omitempty"`
	Commit  string `json:"commit,omitempty"`
}

// Result is the probe record of one target.
type Result struct {
	Date         Date        `json:"date"`
	Repo         Repo        `json:"repo"`
	Scorecard    *RunnerInfo `json:"scorecard,omitempty"`
	Findings     []Finding   `json:"findings"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// ErrorResult synthesizes the record stored for a failed invocation.
func ErrorResult(repo, message string, now time.Time) *Result {
	return &Result{
		Date:         Date{Time: now.UTC()},
		Repo:         Repo{Name: repo},
		Findings:     []Finding{},
		ErrorMessage: message,
	}
}

// HasError reports whether the record describes a failed invocation.
func (r *Result) HasError() bool {
	return r.ErrorMessage != ""
}

// FindingsFor returns the findings of the named probe in their original order.
func (r *Result) FindingsFor(name metric.ProbeName) []Finding {
	var found []Finding
	for _, f := range r.Findings {
		if f.Probe == name {
			found = append(found, f)
		}
	}
	return found
}

// Decode parses runner output.
func Decode(data []byte) (*Result, error) {
	var r Result
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	if r.Date.IsZero() {
		return nil, fmt.Errorf("probe record has no date")
	}
	return &r, nil
}

const dateLayout = "2006-01-02"

// Date is a record timestamp. The runner writes plain dates; synthesized
// records carry a full timestamp.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	t := d.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return json.Marshal(t.Format(dateLayout))
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}
