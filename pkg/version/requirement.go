package version

import (
	"strings"

	"github.com/pkg/errors"
)

// Requirement is a package name plus a set of constraints; matching is
// conjunction over the constraint set.
type Requirement struct {
	Name        string
	Constraints []Constraint
}

// Named builds a Requirement that matches any version of name.
func Named(name string) Requirement {
	return Requirement{Name: name, Constraints: []Constraint{AnyConstraint()}}
}

// New builds a Requirement over name with the given constraints. An empty
// constraint list is treated as Any.
func New(name string, cs ...Constraint) Requirement {
	if len(cs) == 0 {
		cs = []Constraint{AnyConstraint()}
	}
	return Requirement{Name: name, Constraints: cs}
}

// Matches reports whether v satisfies every constraint in r.
func (r Requirement) Matches(v Version) bool {
	for _, c := range r.Constraints {
		if !c.Matches(v) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether r can be shown, from its constraints alone and
// without enumerating any concrete repository, to admit no version at
// all. This is necessarily conservative: it only catches directly
// contradictory shapes (distinct EqualTo constraints, an EqualTo version
// that another constraint rejects, or an upper bound at or below a lower
// bound). Anything subtler is resolved the way the
// rest of the solver resolves everything else: by trying it against the
// pool.
func (r Requirement) IsEmpty() bool {
	var eq Version
	var lt, lte, gt, gte Version
	for _, c := range r.Constraints {
		switch c.Kind {
		case EqualTo:
			if eq != nil && !Equal(eq, c.V) {
				return true
			}
			eq = c.V
		case LessThan:
			if lt == nil || Compare(c.V, lt) < 0 {
				lt = c.V
			}
		case LessEqual:
			if lte == nil || Compare(c.V, lte) < 0 {
				lte = c.V
			}
		case GreaterThan:
			if gt == nil || Compare(c.V, gt) > 0 {
				gt = c.V
			}
		case GreaterEqual:
			if gte == nil || Compare(c.V, gte) > 0 {
				gte = c.V
			}
		}
	}
	if eq != nil {
		for _, c := range r.Constraints {
			if !c.Matches(eq) {
				return true
			}
		}
	}
	if gt != nil && lt != nil && Compare(gt, lt) >= 0 {
		return true
	}
	if gt != nil && lte != nil && Compare(gt, lte) >= 0 {
		return true
	}
	if gte != nil && lt != nil && Compare(gte, lt) >= 0 {
		return true
	}
	if gte != nil && lte != nil && Compare(gte, lte) > 0 {
		return true
	}
	return false
}

// Intersect combines a and b, which must name the same package, into a
// single conjunctive Requirement. It reports ok=false if the combined
// constraint set can be shown empty by IsEmpty.
func Intersect(a, b Requirement) (Requirement, bool) {
	if a.Name != b.Name {
		return Requirement{}, false
	}
	merged := make([]Constraint, 0, len(a.Constraints)+len(b.Constraints))
	merged = append(merged, a.Constraints...)
	merged = append(merged, b.Constraints...)
	r := Requirement{Name: a.Name, Constraints: merged}
	return r, !r.IsEmpty()
}

func (r Requirement) String() string {
	if len(r.Constraints) == 1 && r.Constraints[0].Kind == Any {
		return r.Name
	}
	parts := make([]string, len(r.Constraints))
	for i, c := range r.Constraints {
		parts[i] = c.String()
	}
	return r.Name + strings.Join(parts, ",")
}

// ParseRequirement reads the compact textual requirement form used by the
// scenario file format: "<name>", "<name><op><version>", or
// "<name><op><version>,<op><version>,...". It is a convenience for
// scenario loading and tests; the solver core never parses strings.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	name, rest := splitName(s)
	if name == "" {
		return Requirement{}, errors.Errorf("version: empty requirement name in %q", s)
	}
	if rest == "" {
		return Named(name), nil
	}
	var cs []Constraint
	for _, clause := range strings.Split(rest, ",") {
		c, err := parseConstraint(clause)
		if err != nil {
			return Requirement{}, errors.Wrapf(err, "version: parsing requirement %q", s)
		}
		cs = append(cs, c)
	}
	return New(name, cs...), nil
}

// splitName separates the leading package name from a trailing
// constraint clause, splitting at the first operator character.
func splitName(s string) (name, rest string) {
	for i, r := range s {
		if r == '=' || r == '!' || r == '>' || r == '<' || r == '^' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func parseConstraint(s string) (Constraint, error) {
	ops := []struct {
		prefix string
		kind   ConstraintKind
	}{
		{"==", EqualTo},
		{"!=", NotEqualTo},
		{">=", GreaterEqual},
		{"<=", LessEqual},
		{"^=", CompatibleWith},
		{">", GreaterThan},
		{"<", LessThan},
	}
	for _, op := range ops {
		if strings.HasPrefix(s, op.prefix) {
			vs := strings.TrimSpace(strings.TrimPrefix(s, op.prefix))
			return Constraint{Kind: op.kind, V: Parse(vs)}, nil
		}
	}
	return Constraint{}, errors.Errorf("version: unrecognized constraint clause %q", s)
}
