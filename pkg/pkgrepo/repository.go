package pkgrepo

import (
	"sort"

	"github.com/depsolver/depsolver/pkg/version"
)

// Repository is an ordered multiset of packages, semantically collapsed
// by identity. Packages() preserves ingestion order, which the pool
// relies on for its tie-break ordering.
type Repository struct {
	pkgs           []*Package
	seen           map[string]bool
	byName         map[string][]*Package
	byProvidesName map[string][]*Package
}

// New builds an empty Repository.
func New() *Repository {
	return &Repository{
		seen:           make(map[string]bool),
		byName:         make(map[string][]*Package),
		byProvidesName: make(map[string][]*Package),
	}
}

// Add ingests p into the repository. A package with an identity already
// present is a no-op, and Add reports whether p was newly added.
func (r *Repository) Add(p *Package) bool {
	id := p.Identity()
	if r.seen[id] {
		return false
	}
	r.seen[id] = true
	r.pkgs = append(r.pkgs, p)
	insertNewestFirst(r.byName, p.Name, p)
	for _, pr := range p.Provides {
		insertNewestFirst(r.byProvidesName, pr.Name, p)
	}

	return true
}

func insertNewestFirst(idx map[string][]*Package, name string, p *Package) {
	lst := idx[name]
	i := sort.Search(len(lst), func(i int) bool {
		return version.Compare(lst[i].Version, p.Version) <= 0
	})
	lst = append(lst, nil)
	copy(lst[i+1:], lst[i:])
	lst[i] = p
	idx[name] = lst
}

// Packages returns every package in ingestion order.
func (r *Repository) Packages() []*Package {
	out := make([]*Package, len(r.pkgs))
	copy(out, r.pkgs)
	return out
}

// Len reports the number of distinct packages in the repository.
func (r *Repository) Len() int { return len(r.pkgs) }

// PackagesWithName returns every package with the given name, newest
// version first.
func (r *Repository) PackagesWithName(name string) []*Package {
	lst := r.byName[name]
	out := make([]*Package, len(lst))
	copy(out, lst)
	return out
}

// PackagesMatching returns every package matching req, newest-first,
// whether matched directly by name and version (Package.MatchesOwnName)
// or through a Provides entry (Package.MatchesProvides). A package that
// matches both ways is returned once, ordered among the direct matches.
func (r *Repository) PackagesMatching(req version.Requirement) []*Package {
	var out []*Package
	for _, p := range r.PackagesWithName(req.Name) {
		if p.MatchesOwnName(req) {
			out = append(out, p)
		}
	}
	seen := make(map[string]bool, len(out))
	for _, p := range out {
		seen[p.Identity()] = true
	}
	for _, p := range r.byProvidesName[req.Name] {
		if !seen[p.Identity()] && p.MatchesProvides(req) {
			out = append(out, p)
			seen[p.Identity()] = true
		}
	}
	return out
}

// Contains reports whether p (by identity) is present in the repository.
func (r *Repository) Contains(p *Package) bool {
	return r.seen[p.Identity()]
}

// Names returns the distinct package names present, in first-ingestion
// order.
func (r *Repository) Names() []string {
	var out []string
	emitted := make(map[string]bool)
	for _, p := range r.pkgs {
		if !emitted[p.Name] {
			emitted[p.Name] = true
			out = append(out, p.Name)
		}
	}
	return out
}
