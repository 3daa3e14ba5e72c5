// Package rules translates a pool, an installed repository, and a
// request into CNF clauses with provenance tags. It is the only package
// that attaches domain meaning to internal/sat's otherwise opaque
// integer variables: pool ids are used directly as SAT variable
// numbers, so no separate id-to-variable indirection exists.
//
// Generate walks pool.IDs() and pool.Names(), both already in
// deterministic intern order, rather than ranging over a map, so
// identical inputs always produce an identical clause sequence.
package rules

import (
	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/sat"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
	"github.com/depsolver/depsolver/pkg/solveerr"
	"github.com/depsolver/depsolver/pkg/version"
)

// Options configures rule generation.
type Options struct {
	// Strict, when set, refuses to emit a unit "impossible package"
	// clause for an unmet install_requires and instead returns a
	// *solveerr.MissingInstallRequiresError immediately.
	Strict bool
}

// JobDisjunction names the ids offered to satisfy one Install or Update
// job. The policy layer consults it first: if a job has an unsatisfied
// install-disjunction whose literals are all unassigned, it picks the
// most preferred candidate among them.
type JobDisjunction struct {
	JobIndex int
	Job      request.Job
	IDs      []int
}

// Bias carries everything rule generation learned that is not itself a
// hard clause: the installed-package preference, the job-driven install
// disjunctions policy branches on first, and the names an Update job or
// adhoc constraint prefers newest for.
type Bias struct {
	// DefaultTrue holds ids that should default to true absent any
	// contrary signal (installed, and not targeted by a Remove/Update
	// job for the same name).
	DefaultTrue map[int]bool

	// PreferNewest holds package names an Update job touched: a policy
	// hint preferring the newest match.
	PreferNewest map[string]bool

	// Disjunctions lists one entry per Install/Update job, in job order.
	Disjunctions []JobDisjunction
}

// Generate builds a sat.Solver populated with every clause describing
// dependencies, conflicts, same-name exclusion, and jobs, plus the Bias
// the policy layer needs for its installed-preference and adhoc-upgrade
// heuristics. It returns a *solveerr.MissingInstallRequiresError only in
// strict mode when a package's install_requires has no candidate; every
// other failure (no candidate for a job, an unsatisfiable conflict) is
// left for the SAT core to discover as a normal Unsatisfiable outcome,
// returned rather than thrown from the core.
func Generate(p *pool.Pool, installed *pkgrepo.Repository, req request.Request, opts Options) (*sat.Solver, *Bias, error) {
	s := sat.NewSolver(int32(p.Len()))
	bias := &Bias{
		DefaultTrue:  make(map[int]bool),
		PreferNewest: make(map[string]bool),
	}

	if err := addDependencyAndConflictRules(s, p, opts); err != nil {
		return nil, nil, err
	}
	addSameNameExclusion(s, p)
	addInstalledBias(p, installed, req, bias)
	addJobRules(s, p, installed, req, bias)

	return s, bias, nil
}

// addDependencyAndConflictRules adds one clause per install_requires
// entry (the dependency is a disjunction over every matching candidate)
// and one clause per Conflicts entry (a pairwise exclusion).
func addDependencyAndConflictRules(s *sat.Solver, p *pool.Pool, opts Options) error {
	for _, id := range p.IDs() {
		pkg := p.PackageOf(id)

		for _, req := range pkg.InstallRequires {
			matches := p.IDsMatching(req)
			if len(matches) == 0 {
				if opts.Strict {
					return &solveerr.MissingInstallRequiresError{Package: pkg, Requirement: req}
				}
				s.AddClause([]sat.Lit{negLit(id)}, Reason{Kind: DependencyRule, Package: pkg, Requirement: req})
				continue
			}
			lits := make([]sat.Lit, 0, len(matches)+1)
			lits = append(lits, negLit(id))
			for _, q := range matches {
				lits = append(lits, posLit(q))
			}
			s.AddClause(lits, Reason{Kind: DependencyRule, Package: pkg, Requirement: req})
		}

		for _, req := range pkg.Conflicts {
			for _, q := range p.IDsMatching(req) {
				if q == id {
					continue
				}
				s.AddClause([]sat.Lit{negLit(id), negLit(q)}, Reason{Kind: ConflictRule, Package: pkg, Requirement: req})
			}
		}
	}
	return nil
}

// addSameNameExclusion adds a pairwise exclusion clause between every
// two packages sharing a name, so at most one version of a name is ever
// selected.
func addSameNameExclusion(s *sat.Solver, p *pool.Pool) {
	for _, name := range p.Names() {
		ids := p.IDsWithName(name)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				s.AddClause([]sat.Lit{negLit(ids[i]), negLit(ids[j])}, Reason{Kind: PackageRule, Requirement: version.Named(name)})
			}
		}
	}
}

// addInstalledBias defaults every installed id to true, unless a Remove
// or Update job names its package, which suppresses the bias for that
// name entirely (the job rule, or the policy's newest-preference, takes
// over instead).
func addInstalledBias(p *pool.Pool, installed *pkgrepo.Repository, req request.Request, bias *Bias) {
	suppressed := make(map[string]bool)
	for _, job := range req.Jobs {
		if job.Kind == request.Remove || job.Kind == request.Update {
			suppressed[job.Requirement.Name] = true
		}
	}
	for _, pkg := range installed.Packages() {
		if suppressed[pkg.Name] {
			continue
		}
		if id, ok := p.IDOf(pkg); ok {
			bias.DefaultTrue[id] = true
		}
	}
}

// addJobRules adds one disjunction clause per Install/Update job over
// its matching candidates, and one unit clause per installed package an
// explicit Remove job targets.
func addJobRules(s *sat.Solver, p *pool.Pool, installed *pkgrepo.Repository, req request.Request, bias *Bias) {
	for idx, job := range req.Jobs {
		switch job.Kind {
		case request.Install, request.Update:
			matches := p.IDsMatching(job.Requirement)
			lits := make([]sat.Lit, len(matches))
			for i, id := range matches {
				lits[i] = posLit(id)
			}
			// An empty disjunction is an immediate, unconditional
			// contradiction; AddClause accepts the empty slice and the
			// SAT core reports it through the normal Unsatisfiable path.
			s.AddClause(lits, Reason{Kind: JobRule, Job: &req.Jobs[idx]})
			bias.Disjunctions = append(bias.Disjunctions, JobDisjunction{JobIndex: idx, Job: job, IDs: matches})
			if job.Kind == request.Update {
				bias.PreferNewest[job.Requirement.Name] = true
			}

		case request.Remove:
			for _, pkg := range installed.Packages() {
				if !pkg.MatchesOwnName(job.Requirement) {
					continue
				}
				if id, ok := p.IDOf(pkg); ok {
					s.AddClause([]sat.Lit{negLit(id)}, Reason{Kind: JobRule, Job: &req.Jobs[idx]})
				}
			}
		}
	}
}

func posLit(id int) sat.Lit { return sat.Lit(int32(id)) }
func negLit(id int) sat.Lit { return -sat.Lit(int32(id)) }
