// Package pool interns packages into stable positive integer ids. A
// Pool is built fresh for one solve call and never shared across calls.
package pool

import (
	"sort"

	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/version"
)

// Pool is a bijection between packages and positive integer ids. Ids
// begin at 1 and are dense (invariant I5); id 0 is never assigned.
type Pool struct {
	pkgs []*pkgrepo.Package // pkgs[0] is unused
	id   map[string]int

	// byName holds, for each package name, the ids of packages directly
	// named that, newest-version-first, ties broken by id (which already
	// encodes repository priority then ingestion order, since ids are
	// handed out in exactly that traversal order).
	byName map[string][]int

	// providesName additionally indexes ids by the names packages
	// *provide*, for dependency resolution only. Never consulted for
	// same-name uniqueness.
	providesName map[string][]int

	// names lists distinct package names in first-intern order, so rule
	// generation can walk them deterministically instead of ranging over
	// byName directly.
	names     []string
	seenNames map[string]bool
}

// New builds a Pool from repos, in priority order: the first repository
// has the highest priority, and a later-added repository has lower
// priority than earlier ones. A package already interned (by identity)
// from an earlier, higher-priority repository keeps its original id.
func New(repos ...*pkgrepo.Repository) *Pool {
	p := &Pool{
		pkgs:         []*pkgrepo.Package{nil},
		id:           make(map[string]int),
		byName:       make(map[string][]int),
		providesName: make(map[string][]int),
		seenNames:    make(map[string]bool),
	}
	for _, repo := range repos {
		for _, pkg := range repo.Packages() {
			p.intern(pkg)
		}
	}
	return p
}

func (p *Pool) intern(pkg *pkgrepo.Package) int {
	key := pkg.Identity()
	if id, ok := p.id[key]; ok {
		return id
	}

	id := len(p.pkgs)
	p.pkgs = append(p.pkgs, pkg)
	p.id[key] = id

	if !p.seenNames[pkg.Name] {
		p.seenNames[pkg.Name] = true
		p.names = append(p.names, pkg.Name)
	}
	insertNewestFirst(p.byName, pkg.Name, id, pkg.Version, p.pkgs)
	for _, pr := range pkg.Provides {
		insertNewestFirst(p.providesName, pr.Name, id, pkg.Version, p.pkgs)
	}

	return id
}

func insertNewestFirst(idx map[string][]int, name string, id int, v version.Version, pkgs []*pkgrepo.Package) {
	lst := idx[name]
	i := sort.Search(len(lst), func(i int) bool {
		return version.Compare(pkgs[lst[i]].Version, v) < 0
	})
	lst = append(lst, 0)
	copy(lst[i+1:], lst[i:])
	lst[i] = id
	idx[name] = lst
}

// IDOf returns the id interned for pkg, or ok=false if pkg was never
// added to any repository this pool was built from.
func (p *Pool) IDOf(pkg *pkgrepo.Package) (id int, ok bool) {
	id, ok = p.id[pkg.Identity()]
	return id, ok
}

// PackageOf returns the package interned at id. It panics if id is out
// of range, which can only happen on an internal invariant violation:
// every id a caller legitimately holds came from this same Pool.
func (p *Pool) PackageOf(id int) *pkgrepo.Package {
	return p.pkgs[id]
}

// Len reports the number of distinct packages interned.
func (p *Pool) Len() int { return len(p.pkgs) - 1 }

// IDs returns every interned id, ascending (invariant I5: dense, from 1).
func (p *Pool) IDs() []int {
	ids := make([]int, 0, p.Len())
	for i := 1; i < len(p.pkgs); i++ {
		ids = append(ids, i)
	}
	return ids
}

// Names returns every distinct package name interned, in first-intern
// order, the order deterministic same-name exclusion clause generation
// relies on.
func (p *Pool) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// IDsWithName returns the ids of packages literally named name,
// newest-version-first.
func (p *Pool) IDsWithName(name string) []int {
	return cloneInts(p.byName[name])
}

// IDsMatching returns the ids of packages matching req, either directly
// by name or via a Provides entry, deduplicated, newest-version-first,
// ties broken by id ascending (repository priority then ingestion
// order).
func (p *Pool) IDsMatching(req version.Requirement) []int {
	seen := make(map[int]bool)
	var out []int
	for _, id := range p.byName[req.Name] {
		if req.Matches(p.pkgs[id].Version) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range p.providesName[req.Name] {
		if req.Matches(p.pkgs[id].Version) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := version.Compare(p.pkgs[out[i]].Version, p.pkgs[out[j]].Version)
		if c != 0 {
			return c > 0
		}
		return out[i] < out[j]
	})
	return out
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
