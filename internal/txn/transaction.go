// Package txn builds the operation list that transforms the installed
// repository into a satisfying assignment, and prunes install operations
// unreachable from the request's roots.
//
// Operations are built the way a lock file diff is built: a prior
// selection (the installed repository) is compared against a freshly
// solved one (the SAT assignment), and the difference is categorized
// package by package.
package txn

import (
	"sort"

	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/sat"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
)

// OpKind distinguishes a raw operation in a Transaction's value.
type OpKind uint8

const (
	Install OpKind = iota
	Remove
)

// Operation is one entry of a Transaction's raw operations list.
type Operation struct {
	Kind OpKind
	Pkg  *pkgrepo.Package
}

// PrettyOp is one entry of pretty_operations: same as Operation, except
// a same-name (Remove, Install) pair collapses into a single Update.
type PrettyOp struct {
	Kind OpKind           // Install, Remove, or Update
	New  *pkgrepo.Package // for Install and Update
	Old  *pkgrepo.Package // for Remove and Update
}

const UpdateKind OpKind = 2

// Transaction is the result of a successful solve.
type Transaction struct {
	Operations       []Operation
	PrettyOperations []PrettyOp
}

// Build diffs the final assignment against installed, in dependency-
// topological order for installs and reverse-topological for removes,
// then pairs same-name (install, remove) operations into updates for
// PrettyOperations.
func Build(p *pool.Pool, installed *pkgrepo.Repository, asg *sat.Assignment) *Transaction {
	var toInstall, toRemove []*pkgrepo.Package

	for _, id := range p.IDs() {
		val, ok := asg.Value(int32(id))
		if !ok {
			continue
		}
		pkg := p.PackageOf(id)
		if val {
			if !installed.Contains(pkg) {
				toInstall = append(toInstall, pkg)
			}
		} else if installed.Contains(pkg) {
			toRemove = append(toRemove, pkg)
		}
	}

	installOrder := topoSortInstalls(p, toInstall)
	removeOrder := reverseTopoSortRemoves(toRemove)

	ops := make([]Operation, 0, len(installOrder)+len(removeOrder))
	for _, pkg := range removeOrder {
		ops = append(ops, Operation{Kind: Remove, Pkg: pkg})
	}
	for _, pkg := range installOrder {
		ops = append(ops, Operation{Kind: Install, Pkg: pkg})
	}

	return &Transaction{
		Operations:       ops,
		PrettyOperations: pairUpdates(ops),
	}
}

// topoSortInstalls orders installs so a package appears after every
// other install it depends on, tie-breaking lexicographically by name at
// equal rank.
func topoSortInstalls(p *pool.Pool, pkgs []*pkgrepo.Package) []*pkgrepo.Package {
	byName := make(map[string]*pkgrepo.Package, len(pkgs))
	for _, pkg := range pkgs {
		byName[pkg.Name] = pkg
	}

	var order []*pkgrepo.Package
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	rank := make(map[string]int, len(pkgs))

	sorted := append([]*pkgrepo.Package(nil), pkgs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var visit func(pkg *pkgrepo.Package)
	visit = func(pkg *pkgrepo.Package) {
		if visited[pkg.Name] || visiting[pkg.Name] {
			return
		}
		visiting[pkg.Name] = true
		for _, req := range pkg.InstallRequires {
			if dep, ok := byName[req.Name]; ok {
				visit(dep)
				if dep != pkg && rank[dep.Name] >= rank[pkg.Name] {
					rank[pkg.Name] = rank[dep.Name] + 1
				}
			}
		}
		visiting[pkg.Name] = false
		visited[pkg.Name] = true
		order = append(order, pkg)
	}

	for _, pkg := range sorted {
		visit(pkg)
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := rank[order[i].Name], rank[order[j].Name]
		return ri < rj || (ri == rj && order[i].Name < order[j].Name)
	})
	return order
}

// reverseTopoSortRemoves orders removes in the reverse of their
// dependency order (dependents removed before their dependencies),
// lexicographic by name at equal rank.
func reverseTopoSortRemoves(pkgs []*pkgrepo.Package) []*pkgrepo.Package {
	byName := make(map[string]*pkgrepo.Package, len(pkgs))
	for _, pkg := range pkgs {
		byName[pkg.Name] = pkg
	}

	var order []*pkgrepo.Package
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	rank := make(map[string]int, len(pkgs))

	sorted := append([]*pkgrepo.Package(nil), pkgs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var visit func(pkg *pkgrepo.Package)
	visit = func(pkg *pkgrepo.Package) {
		if visited[pkg.Name] || visiting[pkg.Name] {
			return
		}
		visiting[pkg.Name] = true
		for _, req := range pkg.InstallRequires {
			if dep, ok := byName[req.Name]; ok {
				visit(dep)
				if dep != pkg && rank[dep.Name] >= rank[pkg.Name] {
					rank[pkg.Name] = rank[dep.Name] + 1
				}
			}
		}
		visiting[pkg.Name] = false
		visited[pkg.Name] = true
		order = append(order, pkg)
	}

	for _, pkg := range sorted {
		visit(pkg)
	}

	// Removes go the other way from installs: highest rank (deepest
	// dependent) first, by name within equal rank.
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := rank[order[i].Name], rank[order[j].Name]
		return ri > rj || (ri == rj && order[i].Name < order[j].Name)
	})
	return order
}

// pairUpdates collapses a same-name (Remove, Install) pair in ops into a
// single Update entry for PrettyOperations.
func pairUpdates(ops []Operation) []PrettyOp {
	removedByName := make(map[string]*pkgrepo.Package)
	for _, op := range ops {
		if op.Kind == Remove {
			removedByName[op.Pkg.Name] = op.Pkg
		}
	}

	var out []PrettyOp
	paired := make(map[string]bool)
	for _, op := range ops {
		if op.Kind != Install {
			continue
		}
		if old, ok := removedByName[op.Pkg.Name]; ok {
			out = append(out, PrettyOp{Kind: UpdateKind, New: op.Pkg, Old: old})
			paired[op.Pkg.Name] = true
			continue
		}
		out = append(out, PrettyOp{Kind: Install, New: op.Pkg})
	}
	for _, op := range ops {
		if op.Kind == Remove && !paired[op.Pkg.Name] {
			out = append(out, PrettyOp{Kind: Remove, Old: op.Pkg})
			paired[op.Pkg.Name] = true
		}
	}
	return out
}
