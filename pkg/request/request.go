// Package request holds the solver's notion of a user request: an
// ordered list of jobs plus the adhoc constraints that relax the
// default upgrade/downgrade policy bias.
//
// It lives apart from the root depsolver package so that internal/rules,
// internal/policy, and internal/txn can all depend on it without an
// import cycle back through depsolver (which in turn depends on those
// packages), the same way every stage of a solve pipeline reads from one
// shared parameters value.
package request

import "github.com/depsolver/depsolver/pkg/version"

// JobKind is a Go tagged-sum-type replacement for dynamically typed job
// objects.
type JobKind uint8

const (
	Install JobKind = iota
	Remove
	Update
)

func (k JobKind) String() string {
	switch k {
	case Install:
		return "install"
	case Remove:
		return "remove"
	case Update:
		return "update"
	default:
		return "?"
	}
}

// Job is one entry of a Request: "do Kind to whatever matches
// Requirement."
type Job struct {
	Requirement version.Requirement
	Kind        JobKind
}

// AdhocConstraints are the three disjoint-intent name sets that relax
// the default "no downgrade, no unrelated upgrade" policy bias. A name
// should appear in at most one set; callers that violate this get
// undefined precedence (AllowAny wins, then AllowNewer, then AllowOlder).
type AdhocConstraints struct {
	AllowNewer map[string]bool
	AllowOlder map[string]bool
	AllowAny   map[string]bool
}

// NewAdhocConstraints returns an AdhocConstraints with all three sets
// initialized empty, ready for its Allow* helpers.
func NewAdhocConstraints() AdhocConstraints {
	return AdhocConstraints{
		AllowNewer: make(map[string]bool),
		AllowOlder: make(map[string]bool),
		AllowAny:   make(map[string]bool),
	}
}

func (a AdhocConstraints) allows(set map[string]bool, name string) bool {
	if set == nil {
		return false
	}
	return set[name]
}

// AllowsNewer reports whether name may be branched newer than installed
// without an explicit Update job.
func (a AdhocConstraints) AllowsNewer(name string) bool {
	return a.allows(a.AllowAny, name) || a.allows(a.AllowNewer, name)
}

// AllowsOlder reports whether name may be branched older than installed.
func (a AdhocConstraints) AllowsOlder(name string) bool {
	return a.allows(a.AllowAny, name) || a.allows(a.AllowOlder, name)
}

// AllowsAny reports whether the no-change bias is disabled entirely for
// name.
func (a AdhocConstraints) AllowsAny(name string) bool {
	return a.allows(a.AllowAny, name)
}

// Request is an ordered list of Jobs plus AdhocConstraints. Job order
// matters: rule generation records each job's position in its install
// disjunction, and the policy consults those disjunctions in job order.
type Request struct {
	Jobs  []Job
	Adhoc AdhocConstraints
}

// NewRequest builds a Request with empty AdhocConstraints.
func NewRequest(jobs ...Job) Request {
	return Request{Jobs: jobs, Adhoc: NewAdhocConstraints()}
}
