package metric

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aunovis/secure-sum/pkg/errors"
)

func TestParse(t *testing.T) {
	data := `
errorThreshold = 2.5

[[probe]]
name = "archived"
weight = -1.0

[[probe]]
name = "hasOSVVulnerabilities"
weight = -0.5
max_times = 3

[[probe]]
name = "codeApproved"
weight = 1
`
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.ErrorThreshold == nil || *m.ErrorThreshold != 2.5 {
		t.Errorf("ErrorThreshold = %v, want 2.5", m.ErrorThreshold)
	}
	if m.WarnThreshold != nil {
		t.Errorf("WarnThreshold = %v, want nil", *m.WarnThreshold)
	}

	want := []ProbeName{Archived, HasOSVVulnerabilities, CodeApproved}
	if got := m.ProbeNames(); !slices.Equal(got, want) {
		t.Errorf("ProbeNames = %v, want %v", got, want)
	}

	osv, ok := m.Spec(HasOSVVulnerabilities)
	if !ok {
		t.Fatal("Spec(hasOSVVulnerabilities) not found")
	}
	if osv.MaxTimes == nil || *osv.MaxTimes != 3 {
		t.Errorf("MaxTimes = %v, want 3", osv.MaxTimes)
	}
	if approved, _ := m.Spec(CodeApproved); approved.Weight != 1 || approved.MaxTimes != nil {
		t.Errorf("codeApproved = %+v, want weight 1 without max_times", approved)
	}
}

func TestParseDropsZeroEntries(t *testing.T) {
	data := `
[[probe]]
name = "archived"
weight = 0.0

[[probe]]
name = "fuzzed"
weight = 1.0
max_times = 0

[[probe]]
name = "hasSBOM"
weight = 0.2
`
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := m.ProbeNames(); !slices.Equal(got, []ProbeName{HasSBOM}) {
		t.Errorf("ProbeNames = %v, want [hasSBOM]", got)
	}
	if m.Contains(Archived) {
		t.Error("zero-weight probe should be dropped")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"all weights zero", "[[probe]]\nname = \"archived\"\nweight = 0.0\n"},
		{"unknown probe", "[[probe]]\nname = \"notAProbe\"\nweight = 1.0\n"},
		{"duplicate probe", "[[probe]]\nname = \"archived\"\nweight = 1.0\n[[probe]]\nname = \"archived\"\nweight = 2.0\n"},
		{"duplicate of dropped probe", "[[probe]]\nname = \"archived\"\nweight = 0.0\n[[probe]]\nname = \"archived\"\nweight = 2.0\n"},
		{"missing weight", "[[probe]]\nname = \"archived\"\n"},
		{"negative max_times", "[[probe]]\nname = \"archived\"\nweight = 1.0\nmax_times = -1\n"},
		{"unknown key", "[[probe]]\nname = \"archived\"\nweight = 1.0\ncolour = \"red\"\n"},
		{"unknown top-level key", "archived = 0.1\n[[probe]]\nname = \"fuzzed\"\nweight = 1.0\n"},
		{"malformed", "[[probe]\nname = "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidMetric) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMetric)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metric.toml")
	if err := os.WriteFile(path, []byte("[[probe]]\nname = \"fuzzed\"\nweight = 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Source != path {
		t.Errorf("Source = %q, want %q", m.Source, path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidMetric) {
		t.Errorf("Load(missing) error = %v, want %v", err, errors.ErrCodeInvalidMetric)
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if len(m.Probes) == 0 {
		t.Fatal("default metric has no probes")
	}
	if m.Source != DefaultSource {
		t.Errorf("Source = %q, want %q", m.Source, DefaultSource)
	}
}

func TestProbeNames(t *testing.T) {
	if len(AllProbeNames) != 48 {
		t.Errorf("len(AllProbeNames) = %d, want 48", len(AllProbeNames))
	}
	if !slices.IsSorted(AllProbeNames) {
		t.Error("AllProbeNames is not sorted")
	}
	if p, ok := ParseProbeName("webhooksUseSecrets"); !ok || p != WebhooksUseSecrets {
		t.Errorf("ParseProbeName(webhooksUseSecrets) = %q, %v", p, ok)
	}
	if _, ok := ParseProbeName("Archived"); ok {
		t.Error("probe names are case sensitive")
	}
}
