package ecosystem

import (
	"encoding/xml"
)

// CsprojParser reads SDK-style and legacy MSBuild project files.
//
// PackageReference items may be spread over any number of ItemGroup
// elements, including conditional groups and groups nested in
// Choose/When/Otherwise blocks. All of them are collected.
type CsprojParser struct{}

func (CsprojParser) Type() string { return "csproj" }

func (CsprojParser) Parse(data []byte) (Manifest, error) {
	var proj csprojProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	var names []string
	for _, g := range proj.allItemGroups() {
		for _, ref := range g.PackageReferences {
			name := ref.Include
			if name == "" {
				name = ref.Update
			}
			names = append(names, name)
		}
	}
	return &nugetManifest{typ: "csproj", deps: dependencies(NuGet, names)}, nil
}

// PackagesConfigParser reads legacy packages.config files.
type PackagesConfigParser struct{}

func (PackagesConfigParser) Type() string { return "packages.config" }

func (PackagesConfigParser) Parse(data []byte) (Manifest, error) {
	var cfg packagesConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Packages))
	for _, p := range cfg.Packages {
		names = append(names, p.ID)
	}
	return &nugetManifest{typ: "packages.config", deps: dependencies(NuGet, names)}, nil
}

type nugetManifest struct {
	typ  string
	deps []Dependency
}

func (m *nugetManifest) Ecosystem() Ecosystem                 { return NuGet }
func (m *nugetManifest) Type() string                         { return m.typ }
func (m *nugetManifest) FirstLevelDependencies() []Dependency { return m.deps }

type csprojProject struct {
	XMLName    xml.Name          `xml:"Project"`
	ItemGroups []csprojItemGroup `xml:"ItemGroup"`
	Chooses    []csprojChoose    `xml:"Choose"`
}

type csprojChoose struct {
	Whens     []csprojBranch `xml:"When"`
	Otherwise *csprojBranch  `xml:"Otherwise"`
}

type csprojBranch struct {
	ItemGroups []csprojItemGroup `xml:"ItemGroup"`
	Chooses    []csprojChoose    `xml:"Choose"`
}

type csprojItemGroup struct {
	Condition         string                   `xml:"Condition,attr"`
	PackageReferences []csprojPackageReference `xml:"PackageReference"`
}

type csprojPackageReference struct {
	Include string `xml:"Include,attr"`
	Update  string `xml:"Update,attr"`
}

func (p *csprojProject) allItemGroups() []csprojItemGroup {
	groups := append([]csprojItemGroup(nil), p.ItemGroups...)
	return appendChooseGroups(groups, p.Chooses)
}

func appendChooseGroups(groups []csprojItemGroup, chooses []csprojChoose) []csprojItemGroup {
	for _, c := range chooses {
		branches := c.Whens
		if c.Otherwise != nil {
			branches = append(branches, *c.Otherwise)
		}
		for _, b := range branches {
			groups = append(groups, b.ItemGroups...)
			groups = appendChooseGroups(groups, b.Chooses)
		}
	}
	return groups
}

type packagesConfig struct {
	XMLName  xml.Name `xml:"packages"`
	Packages []struct {
		ID      string `xml:"id,attr"`
		Version string `xml:"version,attr"`
	} `xml:"package"`
}
