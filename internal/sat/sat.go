// Package sat implements a CDCL (conflict-driven clause learning) core:
// watched-literal unit propagation, 1-UIP conflict analysis,
// non-chronological backjumping, Luby restarts, VSIDS activity, and
// activity-based clause reduction.
//
// The package knows nothing about packages, versions, or requirements.
// It operates purely on integer variables and literals; whatever meaning
// a variable carries comes entirely from the clauses its caller adds,
// never from the solver's own logic. Variable numbers are expected to be
// pool package ids directly; the rules package is the only place that
// meaning is attached.
package sat

import (
	"fmt"
	"time"
)

// Lit is a literal over a variable: positive means "var is true",
// negative means "var is false". Variable 0 is never used (pool ids
// start at 1, per invariant I5).
type Lit int32

// Var returns the variable a literal refers to.
func (l Lit) Var() int32 {
	if l < 0 {
		return int32(-l)
	}
	return int32(l)
}

// Positive reports whether the literal asserts its variable true.
func (l Lit) Positive() bool { return l > 0 }

// Negate returns the complementary literal.
func (l Lit) Negate() Lit { return -l }

func (l Lit) String() string {
	if l < 0 {
		return fmt.Sprintf("-%d", -l)
	}
	return fmt.Sprintf("+%d", l)
}

// ClauseID indexes the clause database. Ids are stable for the lifetime
// of a single Solver.
type ClauseID int32

type clause struct {
	lits     []Lit
	learned  bool
	activity float64
	// tag carries caller-supplied provenance (e.g. a rules.Reason) for
	// original clauses; nil for learned clauses, which carry
	// antecedents instead.
	tag interface{}
	// antecedents names the clauses resolved together to produce this
	// (learned) clause, for diagnostics to walk.
	antecedents []ClauseID
	locked      bool // never set; maybeReduceClauseDB derives locked clauses from the assignment
	deleted     bool
}

// Assignment is an external, read-only view of the solver's final
// variable assignment once Solve returns Satisfied.
type Assignment struct {
	values map[int32]bool
}

// Value reports the truth value assigned to v, and whether v was
// assigned at all.
func (a *Assignment) Value(v int32) (val bool, ok bool) {
	val, ok = a.values[v]
	return val, ok
}

// Decider is consulted by the Solver every time a new decision literal
// is needed. It returns an unassigned literal to branch true on, or
// ok=false to indicate "nothing left to decide" (the solver then checks
// satisfaction).
type Decider interface {
	Decide(s *Solver) (lit Lit, ok bool)
}

// Outcome is the terminal result of a Solve call.
type Outcome int

const (
	Satisfied Outcome = iota
	Unsatisfiable
	// BudgetExceeded is returned when an optional conflict budget or
	// deadline is exhausted before the search concludes. It is neither
	// Satisfied nor Unsatisfiable: the caller simply stopped looking.
	BudgetExceeded
)

// Conflict describes why Solve returned Unsatisfiable: the clause that
// produced the empty learned clause (level-0 conflict), plus every
// learned clause produced along the way, for Diagnostics to walk.
type Conflict struct {
	FinalClause  ClauseID
	LearnedStack []ClauseID
}

// State names a point in the CDCL lifecycle. It is exposed for --debug
// tracing; the solver's control flow does not dispatch on it (it's a
// straight-line Go loop, not an interpreted FSM).
type State uint8

const (
	Ready State = iota
	PropagatingState
	ConflictState
	AnalysingState
	BackjumpingState
	SatisfiedState
	UnsatisfiableState
	BudgetExceededState
)

const (
	varUnassigned int8 = iota
	varTrue
	varFalse
)

type varInfo struct {
	value      int8
	level      int32
	antecedent ClauseID
	hasAnte    bool
}

// Solver is one CDCL search over a fixed variable universe. It is
// single-use: construct with NewSolver, add clauses, call Solve once.
// Nothing here is safe for concurrent use.
type Solver struct {
	numVars int32
	clauses []clause

	watches map[Lit][]ClauseID // literal -> clauses watching its negation

	assign          []varInfo // 1-indexed by variable
	trail           []Lit
	qhead           int32     // next trail index to propagate from
	trailLevelStart []int32   // trail index where each decision level began

	activity []float64
	bumped   map[int32]bool

	decisionLevel int32

	state State

	conflictsSinceRestart int
	restartCount          int
	reductions            int

	initConflict ClauseID
	learnedStack []ClauseID

	// conflictBudget and deadline are an optional caller-set search
	// bound; zero value of either means unbounded.
	conflictBudget int
	totalConflicts int
	deadline       time.Time
}

// NewSolver allocates a solver over variables 1..numVars.
func NewSolver(numVars int32) *Solver {
	return &Solver{
		numVars:      numVars,
		watches:      make(map[Lit][]ClauseID),
		assign:       make([]varInfo, numVars+1),
		activity:     make([]float64, numVars+1),
		bumped:       make(map[int32]bool),
		state:        Ready,
		initConflict: -1,
	}
}

// SetConflictBudget bounds search to at most n conflicts (0 = unbounded,
// the default). Exceeding it surfaces as outcome BudgetExceeded.
func (s *Solver) SetConflictBudget(n int) { s.conflictBudget = n }

// SetDeadline bounds search to before t (zero value = unbounded). It is
// checked once per conflict, the same cadence as the conflict budget, so
// it only adds the cost of a single time.Now() comparison per conflict.
func (s *Solver) SetDeadline(t time.Time) { s.deadline = t }

// NumVars reports the size of the variable universe.
func (s *Solver) NumVars() int32 { return s.numVars }

// SolveState reports where in the CDCL lifecycle the solver currently
// is; terminal once Solve returns.
func (s *Solver) SolveState() State { return s.state }

// AddClause registers an original (non-learned) clause with an opaque
// provenance tag. A nil/empty clause represents an immediate,
// unconditional contradiction (an empty disjunction is always false);
// AddClause still accepts it so Solve can report it uniformly through
// the normal Unsatisfiable path rather than a special construction-time
// error.
func (s *Solver) AddClause(lits []Lit, tag interface{}) ClauseID {
	cp := make([]Lit, len(lits))
	copy(cp, lits)
	id := ClauseID(len(s.clauses))
	s.clauses = append(s.clauses, clause{lits: cp, tag: tag})

	switch len(cp) {
	case 0:
		if s.initConflict < 0 {
			s.initConflict = id
		}
	case 1:
		lit := cp[0]
		if val, ok := s.Value(lit.Var()); ok {
			if val != lit.Positive() && s.initConflict < 0 {
				s.initConflict = id
			}
		} else {
			s.enqueue(lit, id, true)
		}
	default:
		s.watches[cp[0].Negate()] = append(s.watches[cp[0].Negate()], id)
		s.watches[cp[1].Negate()] = append(s.watches[cp[1].Negate()], id)
	}
	return id
}

// ClauseTag returns the provenance tag attached when the clause was
// added via AddClause, or nil for a learned clause.
func (s *Solver) ClauseTag(id ClauseID) interface{} {
	return s.clauses[id].tag
}

// ClauseLits returns a clause's literals (read-only; callers must not
// mutate the returned slice).
func (s *Solver) ClauseLits(id ClauseID) []Lit {
	return s.clauses[id].lits
}

// IsLearned reports whether id names a learned clause.
func (s *Solver) IsLearned(id ClauseID) bool { return s.clauses[id].learned }

// Antecedents returns the clauses resolved to produce a learned clause.
func (s *Solver) Antecedents(id ClauseID) []ClauseID { return s.clauses[id].antecedents }

// NumClauses reports the total number of clauses, original and learned.
func (s *Solver) NumClauses() int { return len(s.clauses) }

// Value reports the current assignment of variable v.
func (s *Solver) Value(v int32) (val bool, assigned bool) {
	vi := s.assign[v]
	switch vi.value {
	case varTrue:
		return true, true
	case varFalse:
		return false, true
	default:
		return false, false
	}
}

// Activity reports v's current VSIDS activity score.
func (s *Solver) Activity(v int32) float64 { return s.activity[v] }

// DecisionLevel reports the solver's current decision level.
func (s *Solver) DecisionLevel() int32 { return s.decisionLevel }

// EachUnsatisfiedClause invokes fn with the literals of every clause not
// yet satisfied by the current (possibly partial) assignment. Used by
// the policy layer to find branching candidates.
func (s *Solver) EachUnsatisfiedClause(fn func(lits []Lit)) {
	for i := range s.clauses {
		c := &s.clauses[i]
		if c.deleted {
			continue
		}
		if s.clauseSatisfied(c) {
			continue
		}
		fn(c.lits)
	}
}

func (s *Solver) clauseSatisfied(c *clause) bool {
	for _, l := range c.lits {
		if val, ok := s.Value(l.Var()); ok && val == l.Positive() {
			return true
		}
	}
	return false
}
