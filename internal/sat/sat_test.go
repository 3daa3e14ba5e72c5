package sat

import "testing"

// firstUnassignedTrue is a minimal Decider for tests: it always picks
// the lowest-numbered unassigned variable and branches it true.
type firstUnassignedTrue struct{}

func (firstUnassignedTrue) Decide(s *Solver) (Lit, bool) {
	for v := int32(1); v <= s.NumVars(); v++ {
		if _, ok := s.Value(v); !ok {
			return Lit(v), true
		}
	}
	return 0, false
}

func TestSolveSatisfiable(t *testing.T) {
	s := NewSolver(2)
	s.AddClause([]Lit{1, 2}, nil)
	s.AddClause([]Lit{-1, 2}, nil)

	outcome, asg, _ := s.Solve(firstUnassignedTrue{})
	if outcome != Satisfied {
		t.Fatalf("expected Satisfied, got %v", outcome)
	}
	if s.SolveState() != SatisfiedState {
		t.Fatalf("expected terminal SatisfiedState, got %v", s.SolveState())
	}
	v2, ok := asg.Value(2)
	if !ok || !v2 {
		t.Fatalf("expected var 2 = true, got %v (ok=%v)", v2, ok)
	}
}

func TestSolveUnsatTrivial(t *testing.T) {
	s := NewSolver(1)
	s.AddClause([]Lit{1}, nil)
	s.AddClause([]Lit{-1}, nil)

	outcome, _, confl := s.Solve(firstUnassignedTrue{})
	if outcome != Unsatisfiable {
		t.Fatalf("expected Unsatisfiable, got %v", outcome)
	}
	if s.SolveState() != UnsatisfiableState {
		t.Fatalf("expected terminal UnsatisfiableState, got %v", s.SolveState())
	}
	if confl == nil {
		t.Fatalf("expected a conflict record")
	}
}

func TestSolveRequiresBacktracking(t *testing.T) {
	// (-x1 v x2) & (-x1 v -x2) & (x1 v x3)
	// deciding x1=true first forces x2=true (clause 1) then conflicts
	// with clause 2, so the solver must learn -x1 and backjump to
	// level 0 before clause 3 can force x3=true.
	s := NewSolver(3)
	s.AddClause([]Lit{-1, 2}, nil)
	s.AddClause([]Lit{-1, -2}, nil)
	s.AddClause([]Lit{1, 3}, nil)

	outcome, asg, _ := s.Solve(firstUnassignedTrue{})
	if outcome != Satisfied {
		t.Fatalf("expected Satisfiable, got %v", outcome)
	}
	v1, _ := asg.Value(1)
	if v1 {
		t.Fatalf("expected x1 = false after backtracking, got true")
	}
	v3, ok := asg.Value(3)
	if !ok || !v3 {
		t.Fatalf("expected x3 = true, got %v (ok=%v)", v3, ok)
	}
}

func TestSolveConflictBudget(t *testing.T) {
	// Same instance as TestSolveRequiresBacktracking: satisfiable, but
	// only after one conflict, which a budget of 1 refuses to spend.
	s := NewSolver(3)
	s.AddClause([]Lit{-1, 2}, nil)
	s.AddClause([]Lit{-1, -2}, nil)
	s.AddClause([]Lit{1, 3}, nil)
	s.SetConflictBudget(1)

	outcome, _, _ := s.Solve(firstUnassignedTrue{})
	if outcome != BudgetExceeded {
		t.Fatalf("expected BudgetExceeded, got %v", outcome)
	}
}
