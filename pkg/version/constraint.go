package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ConstraintKind enumerates a Requirement's possible single-constraint
// operators: a Go tagged-sum-type replacement for dynamically-typed
// constraint objects.
type ConstraintKind uint8

const (
	Any ConstraintKind = iota
	EqualTo
	NotEqualTo
	GreaterThan
	GreaterEqual
	LessThan
	LessEqual
	CompatibleWith
)

func (k ConstraintKind) String() string {
	switch k {
	case Any:
		return "*"
	case EqualTo:
		return "=="
	case NotEqualTo:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterEqual:
		return ">="
	case LessThan:
		return "<"
	case LessEqual:
		return "<="
	case CompatibleWith:
		return "^="
	default:
		return "?"
	}
}

// Constraint is one interval restriction on a Version. A Requirement is a
// conjunction of Constraints.
type Constraint struct {
	Kind ConstraintKind
	V    Version // unused (nil) when Kind == Any
}

func AnyConstraint() Constraint              { return Constraint{Kind: Any} }
func NewEqualTo(v Version) Constraint        { return Constraint{Kind: EqualTo, V: v} }
func NewNotEqualTo(v Version) Constraint     { return Constraint{Kind: NotEqualTo, V: v} }
func NewGreaterThan(v Version) Constraint    { return Constraint{Kind: GreaterThan, V: v} }
func NewGreaterEqual(v Version) Constraint   { return Constraint{Kind: GreaterEqual, V: v} }
func NewLessThan(v Version) Constraint       { return Constraint{Kind: LessThan, V: v} }
func NewLessEqual(v Version) Constraint      { return Constraint{Kind: LessEqual, V: v} }
func NewCompatibleWith(v Version) Constraint { return Constraint{Kind: CompatibleWith, V: v} }

// Matches reports whether v satisfies this single constraint.
func (c Constraint) Matches(v Version) bool {
	switch c.Kind {
	case Any:
		return true
	case EqualTo:
		return Equal(v, c.V)
	case NotEqualTo:
		return !Equal(v, c.V)
	case GreaterThan:
		return Compare(v, c.V) > 0
	case GreaterEqual:
		return Compare(v, c.V) >= 0
	case LessThan:
		return Compare(v, c.V) < 0
	case LessEqual:
		return Compare(v, c.V) <= 0
	case CompatibleWith:
		return compatibleWith(v, c.V)
	default:
		return false
	}
}

// compatibleWith reports whether w matches v's compatibility class: w must
// be no older than v and share its class. For semver versions the class is
// delegated to Masterminds/semver's caret-range rules (same-major, or
// same-minor below 1.0.0), applied to the upstream version with any build
// suffix stripped off so a build number is never mistaken for a narrower
// class. For opaque revisions there is no class narrower than "every
// version", so CompatibleWith degrades to GreaterEqual.
func compatibleWith(w, v Version) bool {
	sv, ok := v.(semverVersion)
	if !ok {
		return Compare(w, v) >= 0
	}
	sw, ok := w.(semverVersion)
	if !ok {
		return false
	}
	if Compare(w, v) < 0 {
		return false
	}
	c, err := semver.NewConstraint("^" + sv.v.Original())
	if err != nil {
		// sv.v parsed successfully as a *semver.Version already, so this
		// can only happen for pre-1.0 forms semver's caret parser rejects
		// outright; treat as "no narrower class than >=".
		return sw.v.Compare(sv.v) >= 0
	}
	return c.Check(sw.v)
}

func (c Constraint) String() string {
	if c.Kind == Any {
		return "*"
	}
	return fmt.Sprintf("%s%s", c.Kind, c.V)
}
