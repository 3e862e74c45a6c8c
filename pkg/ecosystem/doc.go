// Package ecosystem parses dependency manifests of the supported package
// ecosystems and yields their first-level dependencies.
//
// # Supported Formats
//
// Formats are tried in a fixed priority order; the first one that parses
// structurally wins:
//
//   - Cargo.toml (Rust)
//   - *.csproj (NuGet PackageReference items)
//   - package.json (Node.js)
//   - packages.config (legacy NuGet)
//
// Detection looks at file content, not file names, so a manifest may be
// stored under any name.
//
// # Usage
//
//	m, err := ecosystem.Parse("path/to/Cargo.toml")
//	if err != nil {
//	    return err
//	}
//	for _, dep := range m.FirstLevelDependencies() {
//	    fmt.Println(dep.Ecosystem, dep.Name)
//	}
package ecosystem
