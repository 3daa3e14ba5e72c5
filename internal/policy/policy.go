// Package policy implements the solver's branching heuristic: a
// sat.Decider that steers CDCL search toward preferred (installed,
// newest-acceptable) package ids so the first satisfying assignment
// found is also the one a user would want.
//
// Decide's log records one entry per branching event, the same shape a
// backtracking search's own trace would log, and its candidate ordering
// (locked, then preferred, then newest) is consulted wherever a choice
// among several matching candidates has to be made.
package policy

import (
	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/rules"
	"github.com/depsolver/depsolver/internal/sat"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
	"github.com/depsolver/depsolver/pkg/version"
)

// LogEntry is one decision record: a literal, the reason it was chosen,
// and a sequence number. Seq is a monotonic decision ordinal, not a
// wall-clock timestamp, so that two solves over identical inputs produce
// an identical log.
type LogEntry struct {
	Seq    int
	Lit    sat.Lit
	Reason string
}

// Policy is a sat.Decider consulted once per decision literal.
type Policy struct {
	pool  *pool.Pool
	adhoc request.AdhocConstraints
	bias  *rules.Bias

	installedID map[string]int // package name -> installed id, when known to the pool

	log []LogEntry
}

// New builds a Policy from the rules layer's output bias and the
// request's adhoc constraints.
func New(p *pool.Pool, installed *pkgrepo.Repository, req request.Request, bias *rules.Bias) *Policy {
	pl := &Policy{
		pool:        p,
		adhoc:       req.Adhoc,
		bias:        bias,
		installedID: make(map[string]int),
	}
	for _, pkg := range installed.Packages() {
		if id, ok := p.IDOf(pkg); ok {
			pl.installedID[pkg.Name] = id
		}
	}
	return pl
}

// Log returns the decision log accumulated so far.
func (pl *Policy) Log() []LogEntry { return pl.log }

// Decide implements sat.Decider.
func (pl *Policy) Decide(s *sat.Solver) (sat.Lit, bool) {
	if lit, ok := pl.decideFromJobDisjunction(s); ok {
		return lit, true
	}
	if lit, ok := pl.decideFromActivity(s); ok {
		return lit, true
	}
	return 0, false
}

// decideFromJobDisjunction branches on an unsatisfied job's disjunction
// of matching candidate ids before falling back to activity-driven
// branching.
func (pl *Policy) decideFromJobDisjunction(s *sat.Solver) (sat.Lit, bool) {
	for _, d := range pl.bias.Disjunctions {
		satisfied := false
		var unassigned []int
		for _, id := range d.IDs {
			val, ok := s.Value(int32(id))
			if ok && val {
				satisfied = true
				break
			}
			if !ok {
				unassigned = append(unassigned, id)
			}
		}
		if satisfied || len(unassigned) == 0 {
			continue
		}
		id := pl.preferredCandidate(unassigned, d.Job.Requirement.Name)
		lit := sat.Lit(int32(id))
		pl.record(s, lit, "job-disjunction")
		return lit, true
	}
	return 0, false
}

// decideFromActivity picks the highest-activity unassigned variable from
// any currently unsatisfied clause, then assigns it its default polarity.
func (pl *Policy) decideFromActivity(s *sat.Solver) (sat.Lit, bool) {
	best := int32(0)
	bestActivity := -1.0
	s.EachUnsatisfiedClause(func(lits []sat.Lit) {
		for _, l := range lits {
			v := l.Var()
			if _, ok := s.Value(v); ok {
				continue
			}
			a := s.Activity(v)
			if a > bestActivity || (a == bestActivity && v < best) {
				bestActivity = a
				best = v
			}
		}
	})
	if best == 0 {
		return 0, false
	}

	lit := pl.defaultPolarity(s, best)
	pl.record(s, lit, "vsids")
	return lit, true
}

// defaultPolarity is true if the package is installed (and not targeted
// for removal/update-away) or is a preferred upgrade target under
// job/adhoc rules, else false.
func (pl *Policy) defaultPolarity(s *sat.Solver, v int32) sat.Lit {
	id := int(v)
	if pl.bias.DefaultTrue[id] {
		return sat.Lit(v)
	}
	pkg := pl.pool.PackageOf(id)
	if pl.isPreferredUpgradeTarget(pkg.Name, id) {
		return sat.Lit(v)
	}
	return -sat.Lit(v)
}

func (pl *Policy) isPreferredUpgradeTarget(name string, id int) bool {
	if !pl.bias.PreferNewest[name] && !pl.adhoc.AllowsNewer(name) && !pl.adhoc.AllowsAny(name) {
		return false
	}
	newest := pl.pool.IDsWithName(name)
	return len(newest) > 0 && newest[0] == id
}

// preferredCandidate orders candidates matching the same requirement:
// already-installed (unless suppressed by a Remove/Update job) > newest
// acceptable > any. ids is assumed already newest-first /
// repository-priority ordered (the order pool.IDsMatching produces), so
// "newest acceptable" is simply its first element once the installed
// candidate is ruled out.
func (pl *Policy) preferredCandidate(ids []int, name string) int {
	for _, id := range ids {
		if pl.bias.DefaultTrue[id] {
			return id
		}
	}
	if installedID, ok := pl.installedID[name]; ok && pl.adhoc.AllowsOlder(name) {
		// allow_older with no installed candidate left in the
		// disjunction (it was suppressed by an Update job) means
		// "prefer the newest id strictly older than the one installed."
		installedVersion := pl.pool.PackageOf(installedID).Version
		for _, id := range ids {
			if version.Compare(pl.pool.PackageOf(id).Version, installedVersion) < 0 {
				return id
			}
		}
	}
	return ids[0]
}

func (pl *Policy) record(s *sat.Solver, lit sat.Lit, reason string) {
	pl.log = append(pl.log, LogEntry{Seq: len(pl.log) + 1, Lit: lit, Reason: reason})
}
