package ecosystem

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CargoParser reads Cargo.toml manifests.
//
// Dependencies are collected from every dependency table: the top-level
// [dependencies], [dev-dependencies] and [build-dependencies], the
// [workspace.dependencies] table, and all [target.<cfg>.*] variants.
// Local path-only dependencies are skipped because they are not published.
type CargoParser struct{}

func (CargoParser) Type() string { return "Cargo.toml" }

func (p CargoParser) Parse(data []byte) (Manifest, error) {
	var cargo cargoFile
	md, err := toml.Decode(string(data), &cargo)
	if err != nil {
		return nil, err
	}
	if !md.IsDefined("package") && !md.IsDefined("workspace") {
		return nil, fmt.Errorf("neither [package] nor [workspace] table present")
	}
	return &CargoManifest{
		Package: cargo.Package.Name,
		deps:    dependencies(Rust, cargo.names()),
	}, nil
}

// CargoManifest is a parsed Cargo.toml.
type CargoManifest struct {
	Package string // package name, empty for virtual workspaces
	deps    []Dependency
}

func (m *CargoManifest) Ecosystem() Ecosystem                 { return Rust }
func (m *CargoManifest) Type() string                         { return CargoParser{}.Type() }
func (m *CargoManifest) FirstLevelDependencies() []Dependency { return m.deps }

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
	cargoDepTables
	Workspace struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
	Target map[string]cargoDepTables `toml:"target"`
}

type cargoDepTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func (c cargoFile) names() []string {
	var names []string
	names = append(names, c.cargoDepTables.names()...)
	names = append(names, crateNames(c.Workspace.Dependencies)...)
	for _, t := range c.Target {
		names = append(names, t.names()...)
	}
	return names
}

func (t cargoDepTables) names() []string {
	var names []string
	names = append(names, crateNames(t.Dependencies)...)
	names = append(names, crateNames(t.DevDependencies)...)
	names = append(names, crateNames(t.BuildDependencies)...)
	return names
}

// crateNames resolves the published crate name of each entry, honoring the
// `package = "..."` rename key.
func crateNames(table map[string]any) []string {
	var names []string
	for key, spec := range table {
		detail, ok := spec.(map[string]any)
		if !ok {
			names = append(names, key)
			continue
		}
		_, hasPath := detail["path"]
		_, hasVersion := detail["version"]
		_, hasGit := detail["git"]
		_, inherited := detail["workspace"]
		if hasPath && !hasVersion && !hasGit && !inherited {
			continue
		}
		if renamed, ok := detail["package"].(string); ok && renamed != "" {
			names = append(names, renamed)
			continue
		}
		names = append(names, key)
	}
	return names
}
