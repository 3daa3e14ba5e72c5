// Package solveerr defines the error kinds a solve can fail with. It is
// factored out of the root depsolver package so that internal/rules can
// construct a *MissingInstallRequiresError directly at rule-generation
// time (the strict-mode short-circuit) without depsolver needing to
// import internal/rules for the type and internal/rules needing to
// import depsolver for the error. A leaf error package imported by
// everything upstream of it avoids that cycle.
package solveerr

import (
	"fmt"
	"strings"

	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/version"
)

// InvolvedRule is one entry of a SatisfiabilityError's rule list: a
// human-readable description plus the reason kind it came from, enough
// for internal/diagnostics to group and for callers to render without
// reaching back into the solver's internals. It is advisory, not
// structured error data meant for programmatic inspection.
type InvolvedRule struct {
	Kind        string // e.g. "DependencyRule", "ConflictRule", "JobRule"
	Description string
}

// SatisfiabilityError reports that a request has no satisfying
// assignment. It carries the rules the diagnostics walk found
// transitively involved in the final conflict.
type SatisfiabilityError struct {
	Rules []InvolvedRule
}

func (e *SatisfiabilityError) Error() string {
	if len(e.Rules) == 0 {
		return "depsolver: request is unsatisfiable"
	}
	var b strings.Builder
	b.WriteString("depsolver: request is unsatisfiable:\n")
	for _, r := range e.Rules {
		fmt.Fprintf(&b, "  [%s] %s\n", r.Kind, r.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BudgetExceededError reports that an optional conflict budget or
// deadline was exhausted before the search concluded either way. It is
// distinct from SatisfiabilityError: the request was never shown
// unsatisfiable, the caller just stopped looking.
type BudgetExceededError struct{}

func (e *BudgetExceededError) Error() string {
	return "depsolver: conflict budget or deadline exceeded before the search concluded"
}

// MissingInstallRequiresError reports that, in strict mode, a package's
// install_requires requirement had no candidate in the pool.
type MissingInstallRequiresError struct {
	Package     *pkgrepo.Package
	Requirement version.Requirement
}

func (e *MissingInstallRequiresError) Error() string {
	return fmt.Sprintf("depsolver: %s has no candidate satisfying install_requires %s", e.Package, e.Requirement)
}
