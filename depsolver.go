// Package depsolver solves package dependency problems: given a pool of
// candidate packages, an installed repository, and a request, it decides
// whether the request is satisfiable and, if so, produces the
// transaction that realizes it.
package depsolver

import (
	"time"

	"github.com/pkg/errors"

	"github.com/depsolver/depsolver/internal/diagnostics"
	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/policy"
	"github.com/depsolver/depsolver/internal/rules"
	"github.com/depsolver/depsolver/internal/sat"
	"github.com/depsolver/depsolver/internal/txn"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
	"github.com/depsolver/depsolver/pkg/solveerr"
	"github.com/depsolver/depsolver/pkg/version"
)

// Request, Job, JobKind, and AdhocConstraints are re-exported from
// pkg/request so callers of this package don't need a second import for
// the types every Solve call takes. pkg/request exists as its own leaf
// package (rather than living here) so internal/rules, internal/policy,
// and internal/txn can all depend on the request shape without an import
// cycle back through this package, which in turn depends on them.
type (
	Request          = request.Request
	Job              = request.Job
	JobKind          = request.JobKind
	AdhocConstraints = request.AdhocConstraints
)

const (
	Install = request.Install
	Remove  = request.Remove
	Update  = request.Update
)

// NewRequest and NewAdhocConstraints forward to pkg/request for the same
// re-export reason.
var (
	NewRequest          = request.NewRequest
	NewAdhocConstraints = request.NewAdhocConstraints
)

// SolveOptions configures one Solve call.
type SolveOptions struct {
	// NoPrune disables the post-pass that drops solver-introduced
	// installs unreachable from the request's roots. Pruning is enabled
	// by default (the zero value), matching the CLI's opt-out
	// "--no-prune" flag.
	NoPrune bool
	// Strict enables rule-generation's strict mode: an unmet
	// install_requires surfaces immediately as
	// *solveerr.MissingInstallRequiresError instead of becoming a unit
	// "impossible package" clause.
	Strict bool
	// ConflictBudget bounds CDCL search to at most this many conflicts
	// (0 = unbounded, the default).
	ConflictBudget int
	// Deadline bounds CDCL search to before this time (zero value =
	// unbounded).
	Deadline time.Time
	// Logger receives the policy's decision log after Solve returns, for
	// --debug style tracing.
	Logger DecisionLogger
}

// DecisionLogger receives the policy's full decision log once a solve
// concludes. *log.Logger does not satisfy this directly; cmd/depsolve's
// --debug flag supplies an implementation that keeps the entries and
// prints them to stderr.
type DecisionLogger interface {
	LogDecisions(entries []policy.LogEntry)
}

// Solve runs one full solve: pool construction is the caller's
// responsibility (so the same pool can be reused across
// RequirementsAreSatisfiable-style helper calls), but everything from
// rule generation onward happens here.
//
// An internal invariant violation inside the search (a watcher-list or
// trail inconsistency) panics; Solve recovers it into a returned error
// so a solver bug never takes down the caller's process.
func Solve(p *pool.Pool, installed *pkgrepo.Repository, req Request, opts SolveOptions) (t *txn.Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, errors.Errorf("depsolver: internal invariant violation: %v", r)
		}
	}()

	s, bias, err := rules.Generate(p, installed, req, rules.Options{Strict: opts.Strict})
	if err != nil {
		return nil, err
	}

	if opts.ConflictBudget > 0 {
		s.SetConflictBudget(opts.ConflictBudget)
	}
	if !opts.Deadline.IsZero() {
		s.SetDeadline(opts.Deadline)
	}

	pl := policy.New(p, installed, req, bias)
	outcome, asg, conflict := s.Solve(pl)

	if opts.Logger != nil {
		opts.Logger.LogDecisions(pl.Log())
	}

	switch outcome {
	case sat.Satisfied:
		t = txn.Build(p, installed, asg)
		if !opts.NoPrune {
			t = txn.Prune(t, req, installed)
		}
		return t, nil
	case sat.BudgetExceeded:
		return nil, &solveerr.BudgetExceededError{}
	default:
		rulesInvolved := diagnostics.InvolvedRules(s, conflict)
		return nil, &solveerr.SatisfiabilityError{Rules: rulesInvolved}
	}
}

// RequirementsAreSatisfiable reports whether reqs can all be installed
// together from the union of repos, starting from an empty installed
// state. It is a thin convenience over Solve: build a fresh pool and a
// fresh "install everything" request and see whether Solve raises.
func RequirementsAreSatisfiable(repos []*pkgrepo.Repository, reqs []version.Requirement) (bool, error) {
	p := pool.New(repos...)
	jobs := make([]Job, len(reqs))
	for i, r := range reqs {
		jobs[i] = Job{Kind: Install, Requirement: r}
	}
	_, err := Solve(p, pkgrepo.New(), NewRequest(jobs...), SolveOptions{})
	if err == nil {
		return true, nil
	}
	var satErr *solveerr.SatisfiabilityError
	if errors.As(err, &satErr) {
		return false, nil
	}
	return false, err
}

// RequirementsAreComplete reports whether reqs already closes over
// dependencies inside the union of repos: true iff every package
// matching some req has every install_requires requirement itself
// matched by some req in the set. A requirement that no package in the
// union satisfies at all is not counted against completeness (see
// anyReqMatches).
func RequirementsAreComplete(repos []*pkgrepo.Repository, reqs []version.Requirement) (bool, error) {
	union := pkgrepo.New()
	for _, repo := range repos {
		for _, pkg := range repo.Packages() {
			union.Add(pkg)
		}
	}

	covered := make([]*pkgrepo.Package, 0)
	for _, r := range reqs {
		covered = append(covered, union.PackagesMatching(r)...)
	}

	for _, pkg := range covered {
		for _, dep := range pkg.InstallRequires {
			if !anyReqMatches(reqs, union, dep) {
				return false, nil
			}
		}
	}
	return true, nil
}

// anyReqMatches reports whether some requirement in reqs, applied
// against union, yields a candidate set that also satisfies dep (i.e.
// dep's own candidates are a subset of some req's candidates sharing
// dep's name). In practice this collapses to "some req in reqs names
// dep.Name and dep's matches are covered by it"; repos are the only
// source of truth for what "covered" means, so the check runs through
// PackagesMatching rather than string-comparing constraint sets.
func anyReqMatches(reqs []version.Requirement, union *pkgrepo.Repository, dep version.Requirement) bool {
	depCandidates := union.PackagesMatching(dep)
	if len(depCandidates) == 0 {
		// Nothing in the repo union satisfies dep at all; that's a
		// consistency problem (see RepositoryIsConsistent), not an
		// incompleteness one. Treat it as "covered" here so
		// RequirementsAreComplete answers the narrower question it's
		// named for.
		return true
	}
	for _, r := range reqs {
		if r.Name != dep.Name {
			continue
		}
		rCandidates := union.PackagesMatching(r)
		if coversAll(rCandidates, depCandidates) {
			return true
		}
	}
	return false
}

func coversAll(superset, subset []*pkgrepo.Package) bool {
	have := make(map[string]bool, len(superset))
	for _, p := range superset {
		have[p.Identity()] = true
	}
	for _, p := range subset {
		if !have[p.Identity()] {
			return false
		}
	}
	return true
}

// RepositoryIsConsistent reports whether every package's install_requires
// is satisfiable from within repo alone.
func RepositoryIsConsistent(repo *pkgrepo.Repository) (bool, error) {
	for _, pkg := range repo.Packages() {
		for _, dep := range pkg.InstallRequires {
			if len(repo.PackagesMatching(dep)) == 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

// RepositoryFromRequirements projects repos down to exactly the packages
// matching some requirement in reqs. Idempotent: applying it again to
// its own output, with one exact-version requirement per contained
// package (RequirementsFromRepository's output), reselects exactly the
// same packages.
func RepositoryFromRequirements(repos []*pkgrepo.Repository, reqs []version.Requirement) *pkgrepo.Repository {
	out := pkgrepo.New()
	for _, repo := range repos {
		for _, r := range reqs {
			for _, pkg := range repo.PackagesMatching(r) {
				out.Add(pkg)
			}
		}
	}
	return out
}

// RequirementsFromRepository returns one exact-version requirement per
// package in repo, in ingestion order.
func RequirementsFromRepository(repo *pkgrepo.Repository) []version.Requirement {
	pkgs := repo.Packages()
	out := make([]version.Requirement, len(pkgs))
	for i, pkg := range pkgs {
		out[i] = version.New(pkg.Name, version.NewEqualTo(pkg.Version))
	}
	return out
}
