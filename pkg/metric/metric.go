// Package metric loads the user-authored metric document.
//
// A metric selects which runner probes matter for the score and how much
// each of them weighs. It is a TOML document:
//
//	errorThreshold = 3.0
//	warnThreshold = 4.0
//
//	[[probe]]
//	name = "archived"
//	weight = -1.0
//
//	[[probe]]
//	name = "hasOSVVulnerabilities"
//	weight = -0.5
//	max_times = 3
//
// Entries with a weight of zero or a max_times of zero are dropped. Unknown
// probe names, unknown keys and duplicate probe names are errors, and at
// least one probe has to survive.
package metric

import (
	_ "embed"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aunovis/secure-sum/pkg/errors"
)

//go:embed default.toml
var defaultMetric []byte

// DefaultSource is the [Metric.Source] of the built-in metric.
const DefaultSource = "built-in default"

// ProbeSpec configures one probe of a metric.
type ProbeSpec struct {
	Name   ProbeName
	Weight float64
	// MaxTimes caps how many findings of this probe count. Nil means all.
	MaxTimes *int
}

// Metric is an immutable, validated metric document.
type Metric struct {
	ErrorThreshold *float64
	WarnThreshold  *float64
	Probes         []ProbeSpec
	// Source is the file the metric was read from.
	Source string
}

type document struct {
	ErrorThreshold *float64   `toml:"errorThreshold"`
	WarnThreshold  *float64   `toml:"warnThreshold"`
	Probes         []probeDoc `toml:"probe"`
}

type probeDoc struct {
	Name     string   `toml:"name"`
	Weight   *float64 `toml:"weight"`
	MaxTimes *int     `toml:"max_times"`
}

// Load reads and validates the metric file at path.
func Load(path string) (*Metric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetric, err, "unable to read metric %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.Source = path
	return m, nil
}

// Default returns the built-in metric used when no file is given.
func Default() *Metric {
	m, err := Parse(defaultMetric)
	if err != nil {
		panic("metric: invalid built-in metric: " + err.Error())
	}
	m.Source = DefaultSource
	return m
}

// Parse decodes and validates a metric document.
func Parse(data []byte) (*Metric, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetric, err, "malformed metric")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidMetric, "unknown keys in metric: %s", strings.Join(keys, ", "))
	}

	m := &Metric{
		ErrorThreshold: doc.ErrorThreshold,
		WarnThreshold:  doc.WarnThreshold,
	}
	seen := make(map[ProbeName]bool, len(doc.Probes))
	for i, p := range doc.Probes {
		name, ok := ParseProbeName(p.Name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidMetric, "unknown probe %q in entry %d", p.Name, i+1)
		}
		if seen[name] {
			return nil, errors.New(errors.ErrCodeInvalidMetric, "probe %s is listed more than once", name)
		}
		seen[name] = true

		if p.Weight == nil {
			return nil, errors.New(errors.ErrCodeInvalidMetric, "probe %s has no weight", name)
		}
		if p.MaxTimes != nil && *p.MaxTimes < 0 {
			return nil, errors.New(errors.ErrCodeInvalidMetric, "probe %s has a negative max_times", name)
		}
		if *p.Weight == 0 || (p.MaxTimes != nil && *p.MaxTimes == 0) {
			continue
		}
		m.Probes = append(m.Probes, ProbeSpec{Name: name, Weight: *p.Weight, MaxTimes: p.MaxTimes})
	}

	if len(m.Probes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidMetric, "Metric needs to contain at least one probe")
	}
	return m, nil
}

// ProbeNames returns the configured probe names in metric order.
func (m *Metric) ProbeNames() []ProbeName {
	names := make([]ProbeName, len(m.Probes))
	for i, p := range m.Probes {
		names[i] = p.Name
	}
	return names
}

// Spec returns the configuration of the named probe.
func (m *Metric) Spec(name ProbeName) (ProbeSpec, bool) {
	for _, p := range m.Probes {
		if p.Name == name {
			return p, true
		}
	}
	return ProbeSpec{}, false
}

// Contains reports whether the named probe is configured.
func (m *Metric) Contains(name ProbeName) bool {
	_, ok := m.Spec(name)
	return ok
}
