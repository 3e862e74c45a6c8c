package ecosystem

import (
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/errors"
)

// Manifest is a successfully parsed dependency file.
type Manifest interface {
	// Ecosystem returns the ecosystem the manifest belongs to.
	Ecosystem() Ecosystem
	// Type returns the manifest format identifier (e.g. "Cargo.toml").
	Type() string
	// FirstLevelDependencies returns the directly declared dependencies,
	// sorted by name and without duplicates.
	FirstLevelDependencies() []Dependency
}

// Parser reads one manifest format.
type Parser interface {
	// Type returns the manifest format identifier.
	Type() string
	// Parse decodes data, failing if it is not structurally this format.
	Parse(data []byte) (Manifest, error)
}

// Parsers lists the supported formats in priority order.
var Parsers = []Parser{
	CargoParser{},
	CsprojParser{},
	PackageJSONParser{},
	PackagesConfigParser{},
}

// Parse reads the file at path and decodes it with the first parser in
// [Parsers] that accepts it.
func Parse(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "unable to read %s", path)
	}
	return ParseBytes(path, data)
}

// ParseBytes decodes data that was read from path. The path is only used
// for messages.
func ParseBytes(path string, data []byte) (Manifest, error) {
	for _, p := range Parsers {
		m, err := p.Parse(data)
		if err != nil {
			log.Debug("Not a manifest of this type", "path", path, "type", p.Type(), "err", err)
			continue
		}
		log.Debug("Parsed dependency file", "path", path, "type", p.Type(), "ecosystem", m.Ecosystem())
		return m, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest,
		"Could not parse %s as a dependency file. Is the ecosystem perhaps not yet supported?", path)
}

// dependencies turns names into sorted, deduplicated dependencies.
func dependencies(eco Ecosystem, names []string) []Dependency {
	names = slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == "" })
	slices.Sort(names)
	names = slices.Compact(names)

	deps := make([]Dependency, len(names))
	for i, n := range names {
		deps[i] = Dependency{Name: n, Ecosystem: eco}
	}
	return deps
}
