// Package pkgrepo holds the solver's notion of a package and an ordered
// repository of packages.
package pkgrepo

import (
	"fmt"

	"github.com/depsolver/depsolver/pkg/version"
)

// Package is a name, a version, and the requirements it brings with it.
// Identity is (Name, Version); two packages with equal identity are the
// same package.
type Package struct {
	Name    string
	Version version.Version

	// InstallRequires are the dependency requirements that must each
	// match at least one other selected package.
	InstallRequires []version.Requirement

	// Conflicts are requirements this package forbids from being
	// simultaneously selected.
	Conflicts []version.Requirement

	// Provides contributes this package as a candidate for matching
	// requirements by an alternate name, for dependency resolution only.
	// It never participates in same-name uniqueness.
	Provides []version.Requirement
}

// Identity returns the (name, version) pair that uniquely identifies p.
func (p *Package) Identity() string {
	return p.Name + "@" + p.Version.String()
}

// Equal reports whether p and o have the same identity.
func (p *Package) Equal(o *Package) bool {
	return p.Name == o.Name && version.Equal(p.Version, o.Version)
}

func (p *Package) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// MatchesOwnName reports whether req matches p directly by name and
// version (as opposed to matching via a Provides entry).
func (p *Package) MatchesOwnName(req version.Requirement) bool {
	return p.Name == req.Name && req.Matches(p.Version)
}

// MatchesProvides reports whether any Provides entry of p satisfies req.
func (p *Package) MatchesProvides(req version.Requirement) bool {
	for _, pr := range p.Provides {
		if pr.Name == req.Name && req.Matches(p.Version) {
			return true
		}
	}
	return false
}
