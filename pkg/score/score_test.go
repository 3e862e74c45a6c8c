package score

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/probe"
)

func intPtr(i int) *int { return &i }

func finding(name metric.ProbeName, o probe.Outcome) probe.Finding {
	return probe.Finding{Probe: name, Outcome: o}
}

func TestTotalScore(t *testing.T) {
	tests := []struct {
		name     string
		findings []WeighedFinding
		want     float64
	}{
		{
			name: "mixed weights",
			findings: []WeighedFinding{
				{metric.Archived, -1, probe.OutcomeTrue},
				{metric.CodeApproved, 1, probe.OutcomeTrue},
				{metric.Fuzzed, 1, probe.OutcomeTrue},
			},
			want: 20.0 / 3.0,
		},
		{
			name:     "single true finding",
			findings: []WeighedFinding{{metric.CodeApproved, 1.234, probe.OutcomeTrue}},
			want:     10,
		},
		{
			name:     "single false finding",
			findings: []WeighedFinding{{metric.CodeApproved, 1.234, probe.OutcomeFalse}},
			want:     0,
		},
		{
			name:     "negative probe not triggered",
			findings: []WeighedFinding{{metric.Archived, -2, probe.OutcomeFalse}},
			want:     10,
		},
		{
			name: "non-boolean outcomes are ignored",
			findings: []WeighedFinding{
				{metric.CodeApproved, 1, probe.OutcomeTrue},
				{metric.Fuzzed, 5, probe.OutcomeNotApplicable},
				{metric.Archived, -5, probe.OutcomeError},
			},
			want: 10,
		},
		{
			name: "only non-boolean outcomes",
			findings: []WeighedFinding{
				{metric.Fuzzed, 1, probe.OutcomeNotAvailable},
				{metric.Archived, -1, probe.OutcomeNotSupported},
			},
			want: 0,
		},
		{
			name: "no findings",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalScore(tt.findings)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TotalScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalScoreStaysInRange(t *testing.T) {
	outcomes := []probe.Outcome{probe.OutcomeTrue, probe.OutcomeFalse}
	weights := []float64{-3, -0.5, 0.25, 2}
	for _, o1 := range outcomes {
		for _, o2 := range outcomes {
			for _, w1 := range weights {
				for _, w2 := range weights {
					got := TotalScore([]WeighedFinding{
						{metric.Archived, w1, o1},
						{metric.Fuzzed, w2, o2},
					})
					if got < 0 || got > Max {
						t.Errorf("TotalScore(%v %v, %v %v) = %v out of range", w1, o1, w2, o2, got)
					}
				}
			}
		}
	}
}

func TestWeighedFindings(t *testing.T) {
	m := &metric.Metric{Probes: []metric.ProbeSpec{
		{Name: metric.Fuzzed, Weight: 0.5},
		{Name: metric.HasOSVVulnerabilities, Weight: -2, MaxTimes: intPtr(2)},
		{Name: metric.CodeApproved, Weight: 2},
		{Name: metric.Archived, Weight: -1},
	}}
	r := &probe.Result{Findings: []probe.Finding{
		finding(metric.HasOSVVulnerabilities, probe.OutcomeTrue),
		finding(metric.Fuzzed, probe.OutcomeFalse),
		finding(metric.HasOSVVulnerabilities, probe.OutcomeFalse),
		finding(metric.HasOSVVulnerabilities, probe.OutcomeTrue),
		finding(metric.CodeApproved, probe.OutcomeTrue),
		finding(metric.HasSBOM, probe.OutcomeTrue),
	}}

	got := WeighedFindings(r, m)
	want := []WeighedFinding{
		{metric.CodeApproved, 2, probe.OutcomeTrue},
		{metric.HasOSVVulnerabilities, -2, probe.OutcomeTrue},
		{metric.HasOSVVulnerabilities, -2, probe.OutcomeFalse},
		{metric.Fuzzed, 0.5, probe.OutcomeFalse},
	}
	if !slices.Equal(got, want) {
		t.Errorf("WeighedFindings =\n%v\nwant\n%v", got, want)
	}
}

func TestWeighedFindingsMaxTimes(t *testing.T) {
	m := &metric.Metric{Probes: []metric.ProbeSpec{
		{Name: metric.HasOSVVulnerabilities, Weight: -1, MaxTimes: intPtr(2)},
	}}
	r := &probe.Result{Findings: []probe.Finding{
		finding(metric.HasOSVVulnerabilities, probe.OutcomeTrue),
		finding(metric.HasOSVVulnerabilities, probe.OutcomeTrue),
		finding(metric.HasOSVVulnerabilities, probe.OutcomeTrue),
	}}

	if got := WeighedFindings(r, m); len(got) != 2 {
		t.Errorf("len(WeighedFindings) = %d, want 2", len(got))
	}
}

func TestWeighedFindingsUseCurrentWeights(t *testing.T) {
	r := &probe.Result{Findings: []probe.Finding{
		finding(metric.CodeApproved, probe.OutcomeTrue),
		finding(metric.Fuzzed, probe.OutcomeFalse),
	}}
	before := &metric.Metric{Probes: []metric.ProbeSpec{
		{Name: metric.CodeApproved, Weight: 1},
		{Name: metric.Fuzzed, Weight: 1},
	}}
	after := &metric.Metric{Probes: []metric.ProbeSpec{
		{Name: metric.CodeApproved, Weight: 3},
		{Name: metric.Fuzzed, Weight: 1},
	}}

	if got := TotalScore(WeighedFindings(r, before)); got != 5 {
		t.Errorf("score before = %v, want 5", got)
	}
	if got := TotalScore(WeighedFindings(r, after)); got != 7.5 {
		t.Errorf("score after = %v, want 7.5", got)
	}
}

func TestCumulatedOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []probe.Outcome
		want     *int
	}{
		{"all true", []probe.Outcome{probe.OutcomeTrue, probe.OutcomeTrue}, intPtr(2)},
		{"false dominates", []probe.Outcome{probe.OutcomeTrue, probe.OutcomeFalse, probe.OutcomeTrue}, intPtr(0)},
		{"single false", []probe.Outcome{probe.OutcomeFalse}, intPtr(0)},
		{"true among non-boolean", []probe.Outcome{probe.OutcomeNotApplicable, probe.OutcomeTrue}, intPtr(1)},
		{"non-boolean only", []probe.Outcome{probe.OutcomeNotApplicable, probe.OutcomeError}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var weighed []WeighedFinding
			for _, o := range tt.outcomes {
				weighed = append(weighed, WeighedFinding{metric.Fuzzed, 1, o})
			}
			got := CumulatedOutcomes(weighed)
			if len(got) != 1 {
				t.Fatalf("len(CumulatedOutcomes) = %d, want 1", len(got))
			}
			switch {
			case tt.want == nil && got[0].TrueCount != nil:
				t.Errorf("TrueCount = %d, want none", *got[0].TrueCount)
			case tt.want != nil && got[0].TrueCount == nil:
				t.Errorf("TrueCount = none, want %d", *tt.want)
			case tt.want != nil && *got[0].TrueCount != *tt.want:
				t.Errorf("TrueCount = %d, want %d", *got[0].TrueCount, *tt.want)
			}
			if got[0].Applicable() != (tt.want != nil) {
				t.Errorf("Applicable = %v", got[0].Applicable())
			}
		})
	}
}

func TestCumulatedOutcomesSortedByName(t *testing.T) {
	got := CumulatedOutcomes([]WeighedFinding{
		{metric.Fuzzed, 5, probe.OutcomeTrue},
		{metric.Archived, -1, probe.OutcomeFalse},
		{metric.CodeApproved, 2, probe.OutcomeTrue},
	})
	var names []metric.ProbeName
	for _, c := range got {
		names = append(names, c.Probe)
	}
	want := []metric.ProbeName{metric.Archived, metric.CodeApproved, metric.Fuzzed}
	if !slices.Equal(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestNewRepoData(t *testing.T) {
	m := &metric.Metric{Probes: []metric.ProbeSpec{{Name: metric.CodeApproved, Weight: 1}}}
	r := &probe.Result{
		Repo:     probe.Repo{Name: "github.com/a/b"},
		Findings: []probe.Finding{finding(metric.CodeApproved, probe.OutcomeTrue)},
	}

	rd := NewRepoData(r, m)
	if rd.Repo != "github.com/a/b" || rd.Score != 10 || len(rd.Outcomes) != 1 {
		t.Errorf("NewRepoData = %+v", rd)
	}

	failed := NewRepoData(&probe.Result{Repo: probe.Repo{Name: "x"}, Findings: []probe.Finding{}, ErrorMessage: "boom"}, m)
	if failed.Score != 0 || failed.ErrorMessage != "boom" {
		t.Errorf("NewRepoData(error record) = %+v", failed)
	}
}

func TestSort(t *testing.T) {
	repos := []RepoData{
		{Repo: "b", Score: 5},
		{Repo: "c", Score: 9},
		{Repo: "a", Score: 5},
		{Repo: "d", Score: 1},
	}
	Sort(repos)

	var got []string
	for _, r := range repos {
		got = append(got, r.Repo)
	}
	if want := []string{"c", "a", "b", "d"}; !slices.Equal(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestWeighedFindingsMissingProbeIsDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	prev := log.Default()
	log.SetDefault(logger)
	t.Cleanup(func() { log.SetDefault(prev) })

	m := &metric.Metric{Probes: []metric.ProbeSpec{
		{Name: metric.CodeApproved, Weight: 1},
		{Name: metric.Fuzzed, Weight: 1},
	}}
	r := &probe.Result{Findings: []probe.Finding{finding(metric.CodeApproved, probe.OutcomeTrue)}}

	logger.SetLevel(log.InfoLevel)
	WeighedFindings(r, m)
	if buf.Len() != 0 {
		t.Errorf("info level log = %q, want nothing", buf.String())
	}

	logger.SetLevel(log.DebugLevel)
	WeighedFindings(r, m)
	if !strings.Contains(buf.String(), "No findings for probe") {
		t.Errorf("debug level log = %q, want the missing probe", buf.String())
	}
}
