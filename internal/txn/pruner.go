package txn

import (
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
)

// Prune walks install_requires from the packages that directly satisfy a
// job's requirement, drops any Install operation for a package not
// reached by that walk (the solver pulled it in, but nothing in the
// final tree actually needs it), and leaves every Remove operation
// untouched. It trims packages the same way a dependency graph walk
// trims anything not actually imported by the selected tree, with
// "imported by" generalized to "required, transitively, by a job root."
func Prune(t *Transaction, req request.Request, priorInstalled *pkgrepo.Repository) *Transaction {
	installed := make(map[string]*pkgrepo.Package)
	for _, op := range t.Operations {
		if op.Kind == Install {
			installed[op.Pkg.Name] = op.Pkg
		}
	}
	for _, pkg := range priorInstalled.Packages() {
		if _, ok := installed[pkg.Name]; !ok {
			installed[pkg.Name] = pkg
		}
	}

	reached := make(map[string]bool)
	var walk func(pkg *pkgrepo.Package)
	walk = func(pkg *pkgrepo.Package) {
		if pkg == nil || reached[pkg.Name] {
			return
		}
		reached[pkg.Name] = true
		for _, req := range pkg.InstallRequires {
			for _, cand := range installed {
				if cand.MatchesOwnName(req) {
					walk(cand)
				}
			}
		}
	}

	for _, job := range req.Jobs {
		if job.Kind == request.Remove {
			continue
		}
		for _, pkg := range installed {
			if pkg.MatchesOwnName(job.Requirement) {
				walk(pkg)
			}
		}
	}

	var ops []Operation
	for _, op := range t.Operations {
		if op.Kind == Install && !reached[op.Pkg.Name] {
			continue
		}
		ops = append(ops, op)
	}

	return &Transaction{
		Operations:       ops,
		PrettyOperations: pairUpdates(ops),
	}
}
