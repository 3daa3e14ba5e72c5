package sat

import (
	"sort"
	"time"
)

// reductionBaseThreshold and reductionGrowth set a growing
// learned-clause-count threshold ("2000 + 300·reductions") past which
// the clause database is reduced.
const (
	reductionBaseThreshold = 2000
	reductionGrowth        = 300
)

func (s *Solver) newDecisionLevel() {
	s.decisionLevel++
	s.trailLevelStart = append(s.trailLevelStart, int32(len(s.trail)))
}

// backjumpTo undoes every assignment made above level: a backjump goes
// to the second-highest decision level in the learned clause.
func (s *Solver) backjumpTo(level int32) {
	for len(s.trail) > 0 {
		lit := s.trail[len(s.trail)-1]
		if s.assign[lit.Var()].level <= level {
			break
		}
		s.assign[lit.Var()] = varInfo{}
		s.trail = s.trail[:len(s.trail)-1]
	}
	s.qhead = int32(len(s.trail))
	if int(level) < len(s.trailLevelStart) {
		s.trailLevelStart = s.trailLevelStart[:level]
	}
	s.decisionLevel = level
}

func (s *Solver) buildAssignment() *Assignment {
	values := make(map[int32]bool, len(s.trail))
	for v := int32(1); v <= s.numVars; v++ {
		if val, ok := s.Value(v); ok {
			values[v] = val
		}
	}
	return &Assignment{values: values}
}

// maybeReduceClauseDB reduces the clause database: once the
// learned-clause count exceeds a growing threshold, the lower-activity
// half of learned clauses not currently acting as an assignment's reason
// are dropped.
func (s *Solver) maybeReduceClauseDB() {
	threshold := reductionBaseThreshold + reductionGrowth*s.reductions

	var learned []ClauseID
	for i := range s.clauses {
		c := &s.clauses[i]
		if c.learned && !c.deleted {
			learned = append(learned, ClauseID(i))
		}
	}
	if len(learned) <= threshold {
		return
	}
	s.reductions++

	locked := make(map[ClauseID]bool)
	for v := int32(1); v <= s.numVars; v++ {
		vi := s.assign[v]
		if vi.value != varUnassigned && vi.hasAnte {
			locked[vi.antecedent] = true
		}
	}

	var candidates []ClauseID
	for _, id := range learned {
		if !locked[id] {
			candidates = append(candidates, id)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return s.clauses[candidates[i]].activity < s.clauses[candidates[j]].activity
	})
	for i := 0; i < len(candidates)/2; i++ {
		s.clauses[candidates[i]].deleted = true
	}
}

func (s *Solver) bumpClauseActivities(chain []ClauseID) {
	for _, id := range chain {
		s.clauses[id].activity += activityBumpIncrement
	}
}

// Solve runs CDCL search to completion, consulting d for every decision
// literal. It moves through the state sequence Ready → Propagating →
// (Satisfied | Conflict → Analysing → Backjumping → Propagating) →
// Unsatisfiable.
func (s *Solver) Solve(d Decider) (Outcome, *Assignment, *Conflict) {
	if s.initConflict >= 0 {
		s.state = UnsatisfiableState
		return Unsatisfiable, nil, &Conflict{FinalClause: s.initConflict}
	}

	s.state = PropagatingState
	for {
		confl := s.propagate()
		if confl >= 0 {
			s.state = ConflictState
			if s.decisionLevel == 0 {
				s.state = UnsatisfiableState
				s.learnedStack = append(s.learnedStack, confl)
				return Unsatisfiable, nil, &Conflict{FinalClause: confl, LearnedStack: s.learnedStack}
			}

			s.state = AnalysingState
			learnt, backjumpLvl, chain := s.analyze(confl)
			s.bumpClauseActivities(chain)

			s.state = BackjumpingState
			s.backjumpTo(backjumpLvl)

			lc := s.learnClause(learnt, chain)
			s.learnedStack = append(s.learnedStack, lc)
			s.enqueue(learnt[0], lc, true)

			s.conflictsSinceRestart++
			s.totalConflicts++
			s.decayActivity()
			s.maybeReduceClauseDB()
			if s.conflictsSinceRestart >= restartThreshold(s.restartCount+1) {
				s.restart()
			}

			if s.conflictBudget > 0 && s.totalConflicts >= s.conflictBudget {
				s.state = BudgetExceededState
				return BudgetExceeded, nil, nil
			}
			if !s.deadline.IsZero() && time.Now().After(s.deadline) {
				s.state = BudgetExceededState
				return BudgetExceeded, nil, nil
			}

			s.state = PropagatingState
			continue
		}

		lit, ok := d.Decide(s)
		if !ok {
			s.state = SatisfiedState
			return Satisfied, s.buildAssignment(), nil
		}

		s.newDecisionLevel()
		s.enqueue(lit, -1, false)
		s.state = PropagatingState
	}
}
