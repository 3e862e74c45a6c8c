package scorecard

import (
	"context"
	"strings"

	"github.com/aunovis/secure-sum/pkg/ecosystem"
	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/target"
)

// FormatFlag selects the runner's machine readable probe output.
const FormatFlag = "--format=probe"

// RepoLookup resolves a package name to its source repository URL.
type RepoLookup func(ctx context.Context, name string) (string, error)

// Args builds the runner command line for one target selector.
func Args(selector string, probes []metric.ProbeName) []string {
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = string(p)
	}
	return []string{selector, "--probes=" + strings.Join(names, ","), FormatFlag}
}

// selector returns the argument naming t for the runner.
func (d *Dispatcher) selector(ctx context.Context, t target.SingleTarget) (string, error) {
	if t.IsURL() {
		return "--repo=" + t.URL(), nil
	}

	switch t.Ecosystem() {
	case ecosystem.NodeJS:
		return "--npm=" + t.PackageName(), nil
	case ecosystem.NuGet:
		return "--nuget=" + t.PackageName(), nil
	}

	lookup, ok := d.Lookups[t.Ecosystem()]
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupported, "no repository lookup for %s packages", t.Ecosystem())
	}
	url, err := lookup(ctx, t.PackageName())
	if err != nil {
		return "", err
	}
	return "--repo=" + url, nil
}
