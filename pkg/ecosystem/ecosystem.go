package ecosystem

import "fmt"

// Ecosystem identifies a package-management system.
// The zero value is not a valid ecosystem.
type Ecosystem int

const (
	NodeJS Ecosystem = iota + 1
	NuGet
	Rust
)

// All lists every supported ecosystem in their canonical order.
var All = []Ecosystem{NodeJS, NuGet, Rust}

// String returns the display name (e.g. "Node.js").
func (e Ecosystem) String() string {
	switch e {
	case NodeJS:
		return "Node.js"
	case NuGet:
		return "NuGet"
	case Rust:
		return "Rust"
	default:
		return fmt.Sprintf("Ecosystem(%d)", int(e))
	}
}

// Slug returns a lowercase identifier safe for keys and file names.
func (e Ecosystem) Slug() string {
	switch e {
	case NodeJS:
		return "nodejs"
	case NuGet:
		return "nuget"
	case Rust:
		return "rust"
	default:
		return "unknown"
	}
}

// FromSlug is the inverse of [Ecosystem.Slug].
func FromSlug(s string) (Ecosystem, bool) {
	for _, e := range All {
		if e.Slug() == s {
			return e, true
		}
	}
	return 0, false
}

// Dependency is a first-level package dependency declared in a manifest.
type Dependency struct {
	Name      string
	Ecosystem Ecosystem
}

func (d Dependency) String() string {
	return d.Ecosystem.Slug() + ":" + d.Name
}
