// Package target turns raw command line inputs into evaluation targets.
//
// A raw input is either a repository URL (http:// or https://) or the path
// of a dependency manifest understood by package ecosystem. Manifests are
// expanded into one package target per first-level dependency. The
// resulting set is sorted and free of duplicates. Package targets are not
// resolved to repositories here; that happens per target during dispatch.
package target

import (
	"cmp"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/ecosystem"
	"github.com/aunovis/secure-sum/pkg/errors"
)

// Kind discriminates the variants of [SingleTarget].
type Kind int

const (
	KindURL Kind = iota + 1
	KindPackage
)

// SingleTarget is one unit of evaluation: a repository URL or a package
// within an ecosystem. The zero value is invalid.
type SingleTarget struct {
	kind Kind
	url  string
	name string
	eco  ecosystem.Ecosystem
}

// NewURL returns a URL target.
func NewURL(url string) SingleTarget {
	return SingleTarget{kind: KindURL, url: url}
}

// NewPackage returns a package target.
func NewPackage(name string, eco ecosystem.Ecosystem) SingleTarget {
	return SingleTarget{kind: KindPackage, name: name, eco: eco}
}

func (t SingleTarget) Kind() Kind                     { return t.kind }
func (t SingleTarget) IsURL() bool                    { return t.kind == KindURL }
func (t SingleTarget) URL() string                    { return t.url }
func (t SingleTarget) PackageName() string            { return t.name }
func (t SingleTarget) Ecosystem() ecosystem.Ecosystem { return t.eco }

func (t SingleTarget) String() string {
	if t.kind == KindPackage {
		return t.name + " (" + t.eco.String() + ")"
	}
	return t.url
}

// Identity is the canonical name of the target. URLs lose their protocol so
// that http and https variants of one repository share an identity; packages
// are named "<ecosystem slug>:<name>".
func (t SingleTarget) Identity() string {
	if t.kind == KindPackage {
		return t.eco.Slug() + ":" + t.name
	}
	return StripProtocol(t.url)
}

// Compare orders URL targets before package targets, URLs by identity and
// packages by ecosystem, then name. Among URLs of one identity, https://
// sorts first.
func Compare(a, b SingleTarget) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	if a.kind == KindURL {
		if c := strings.Compare(a.Identity(), b.Identity()); c != 0 {
			return c
		}
		return strings.Compare(b.url, a.url)
	}
	if c := cmp.Compare(a.eco, b.eco); c != 0 {
		return c
	}
	return strings.Compare(a.name, b.name)
}

// IsURL reports whether s is meant as a repository URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// StripProtocol removes a leading http:// or https://.
func StripProtocol(url string) string {
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimPrefix(url, "https://")
}

// Normalize classifies raw inputs, expands manifests and returns the sorted,
// deduplicated targets. Any input that is neither a URL nor a readable
// manifest fails the whole call before anything is evaluated.
func Normalize(inputs []string) ([]SingleTarget, error) {
	var targets []SingleTarget
	for _, raw := range inputs {
		expanded, err := classify(raw)
		if err != nil {
			return nil, err
		}
		targets = append(targets, expanded...)
	}

	slices.SortFunc(targets, Compare)
	// One record file per identity, so http and https variants are one target.
	targets = slices.CompactFunc(targets, func(a, b SingleTarget) bool {
		return a.kind == b.kind && a.Identity() == b.Identity()
	})
	log.Debug("Normalized targets", "inputs", len(inputs), "targets", len(targets))
	return targets, nil
}

func classify(raw string) ([]SingleTarget, error) {
	if IsURL(raw) {
		if err := errors.ValidateURL(raw); err != nil {
			return nil, err
		}
		log.Debug("Input is a URL", "input", raw)
		return []SingleTarget{NewURL(raw)}, nil
	}

	info, err := os.Stat(raw)
	if err != nil || info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Unable to understand %s", raw)
	}

	m, err := ecosystem.Parse(raw)
	if err != nil {
		return nil, err
	}

	deps := m.FirstLevelDependencies()
	targets := make([]SingleTarget, 0, len(deps))
	for _, d := range deps {
		if err := validatePackage(d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid dependency in %s", raw)
		}
		targets = append(targets, NewPackage(d.Name, d.Ecosystem))
	}
	log.Debug("Input is a dependency file", "input", raw, "type", m.Type(), "dependencies", len(targets))
	return targets, nil
}

func validatePackage(d ecosystem.Dependency) error {
	switch d.Ecosystem {
	case ecosystem.NodeJS:
		return errors.ValidateNpmPackageName(d.Name)
	case ecosystem.NuGet:
		return errors.ValidateNuGetPackageID(d.Name)
	case ecosystem.Rust:
		return errors.ValidateCratesPackageName(d.Name)
	default:
		return errors.ValidatePackageName(d.Name)
	}
}
