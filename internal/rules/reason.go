package rules

import (
	"fmt"

	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
	"github.com/depsolver/depsolver/pkg/version"
)

// Kind names the reason a clause was generated. Propagation never
// inspects it; it exists purely for internal/diagnostics.
type Kind string

const (
	PackageRule    Kind = "PackageRule"
	DependencyRule Kind = "DependencyRule"
	ConflictRule   Kind = "ConflictRule"
	JobRule        Kind = "JobRule"
	InstalledRule  Kind = "InstalledRule"
)

// Reason is the tag attached to every clause AddClause registers here.
// It is stored as an opaque interface{} inside internal/sat (which never
// imports this package, avoiding a cycle) and type-asserted back out by
// internal/diagnostics.
type Reason struct {
	Kind        Kind
	Package     *pkgrepo.Package // the rule's originating package, if any
	Requirement version.Requirement
	Job         *request.Job
}

func (r Reason) String() string {
	switch r.Kind {
	case DependencyRule:
		return fmt.Sprintf("%s requires %s", r.Package, r.Requirement)
	case ConflictRule:
		return fmt.Sprintf("%s conflicts with %s", r.Package, r.Requirement)
	case JobRule:
		return fmt.Sprintf("%s %s", r.Job.Kind, r.Job.Requirement)
	case InstalledRule:
		return fmt.Sprintf("%s is installed", r.Package)
	case PackageRule:
		return fmt.Sprintf("at most one version of %s", r.Requirement.Name)
	default:
		return "unknown rule"
	}
}
