package ecosystem

import (
	"bytes"
	"encoding/json"
	"errors"
)

// PackageJSONParser reads package.json files. It extracts dependencies,
// devDependencies, peerDependencies and optionalDependencies.
type PackageJSONParser struct{}

func (PackageJSONParser) Type() string { return "package.json" }

func (PackageJSONParser) Parse(data []byte) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("not a JSON object")
	}

	var pkg packageFile
	if err := json.Unmarshal(trimmed, &pkg); err != nil {
		return nil, err
	}

	var names []string
	for _, group := range []map[string]string{
		pkg.Dependencies,
		pkg.DevDependencies,
		pkg.PeerDependencies,
		pkg.OptionalDependencies,
	} {
		for name := range group {
			names = append(names, name)
		}
	}
	return &PackageJSONManifest{Name: pkg.Name, deps: dependencies(NodeJS, names)}, nil
}

// PackageJSONManifest is a parsed package.json.
type PackageJSONManifest struct {
	Name string
	deps []Dependency
}

func (m *PackageJSONManifest) Ecosystem() Ecosystem                 { return NodeJS }
func (m *PackageJSONManifest) Type() string                         { return PackageJSONParser{}.Type() }
func (m *PackageJSONManifest) FirstLevelDependencies() []Dependency { return m.deps }

type packageFile struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}
