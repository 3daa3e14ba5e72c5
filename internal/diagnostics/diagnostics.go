// Package diagnostics turns an UNSAT outcome from internal/sat into a
// human-readable failure: walk the learned-clause stack from the final
// conflict, collect the original rules transitively involved (by reason
// tag), and render them grouped by kind.
//
// solveerr.SatisfiabilityError.Error() gives a flat view of a conflict,
// one line per rule tagged with its kind; Render gives the grouped one.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depsolver/depsolver/internal/rules"
	"github.com/depsolver/depsolver/internal/sat"
	"github.com/depsolver/depsolver/pkg/solveerr"
)

// InvolvedRules walks the learned-clause stack from conflict's final
// clause, collecting every original (non-learned) clause transitively
// resolved into it, and returns their rules.Reason tags converted to
// solveerr.InvolvedRule values: an advisory list, not structured error
// data meant for programmatic inspection.
//
// The walk is a plain worklist over Antecedents: a learned clause's
// antecedents are the clauses resolved together to produce it (recorded
// by internal/sat's conflict analysis), and an original clause is a leaf
// of that walk.
func InvolvedRules(s *sat.Solver, conflict *sat.Conflict) []solveerr.InvolvedRule {
	seen := make(map[sat.ClauseID]bool)
	var leaves []sat.ClauseID

	var walk func(id sat.ClauseID)
	walk = func(id sat.ClauseID) {
		if seen[id] {
			return
		}
		seen[id] = true
		if !s.IsLearned(id) {
			leaves = append(leaves, id)
			return
		}
		for _, a := range s.Antecedents(id) {
			walk(a)
		}
	}

	walk(conflict.FinalClause)
	for _, id := range conflict.LearnedStack {
		walk(id)
	}

	out := make([]solveerr.InvolvedRule, 0, len(leaves))
	for _, id := range leaves {
		tag := s.ClauseTag(id)
		reason, ok := tag.(rules.Reason)
		if !ok {
			continue
		}
		out = append(out, solveerr.InvolvedRule{
			Kind:        string(reason.Kind),
			Description: reason.String(),
		})
	}
	out = dedupe(out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Description < out[j].Description
	})
	return out
}

func dedupe(in []solveerr.InvolvedRule) []solveerr.InvolvedRule {
	seen := make(map[string]bool, len(in))
	out := make([]solveerr.InvolvedRule, 0, len(in))
	for _, r := range in {
		key := r.Kind + "\x00" + r.Description
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Render groups rules by kind and produces a multi-line message: one
// line per rule, grouped by kind, citing the package or job that
// introduced it.
func Render(rules []solveerr.InvolvedRule) string {
	if len(rules) == 0 {
		return "request is unsatisfiable (no rules could be isolated)"
	}
	byKind := make(map[string][]string)
	var kinds []string
	for _, r := range rules {
		if _, ok := byKind[r.Kind]; !ok {
			kinds = append(kinds, r.Kind)
		}
		byKind[r.Kind] = append(byKind[r.Kind], r.Description)
	}
	sort.Strings(kinds)

	var b strings.Builder
	b.WriteString("request is unsatisfiable; rules involved:\n")
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %s:\n", k)
		for _, d := range byKind[k] {
			fmt.Fprintf(&b, "    - %s\n", d)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
