package sat

// enqueue assigns lit true at the current decision level, with the given
// antecedent clause (hasAnte=false for decisions). It does not itself
// propagate; call propagate() to drain the queue.
func (s *Solver) enqueue(lit Lit, antecedent ClauseID, hasAnte bool) {
	v := lit.Var()
	val := int8(varFalse)
	if lit.Positive() {
		val = varTrue
	}
	s.assign[v] = varInfo{value: val, level: s.decisionLevel, antecedent: antecedent, hasAnte: hasAnte}
	s.trail = append(s.trail, lit)
}

// propagate drains the propagation queue using the two-watched-literal
// scheme: assigning the negation of a watched literal triggers a search
// for a replacement watch, falling back to unit propagation (or
// conflict) when none exists. It returns the id of a falsified clause on
// conflict, or -1 if propagation reached a fixpoint.
func (s *Solver) propagate() ClauseID {
	for s.qhead < int32(len(s.trail)) {
		lit := s.trail[s.qhead]
		s.qhead++

		// Clauses watching literal W are registered under key
		// Negate(W) (see AddClause/learnClause), so the clauses that
		// need rechecking when lit is enqueued true are those filed
		// under key lit itself.
		falseLit := lit.Negate()
		watchers := s.watches[lit]

		keep := make([]ClauseID, 0, len(watchers))
		conflictID := ClauseID(-1)

		for i := 0; i < len(watchers); i++ {
			cid := watchers[i]
			c := &s.clauses[cid]
			if c.deleted {
				continue
			}

			// Normalize so falseLit is lits[1].
			if c.lits[0] == falseLit {
				c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
			}

			if val, ok := s.Value(c.lits[0].Var()); ok && val == c.lits[0].Positive() {
				// Already satisfied via the other watched literal.
				keep = append(keep, cid)
				continue
			}

			replaced := false
			for k := 2; k < len(c.lits); k++ {
				cand := c.lits[k]
				if val, ok := s.Value(cand.Var()); ok && val != cand.Positive() {
					continue // cand is false, cannot become a watch
				}
				c.lits[1], c.lits[k] = c.lits[k], c.lits[1]
				s.watches[cand.Negate()] = append(s.watches[cand.Negate()], cid)
				replaced = true
				break
			}
			if replaced {
				continue
			}

			keep = append(keep, cid)

			if val, ok := s.Value(c.lits[0].Var()); ok && val != c.lits[0].Positive() {
				// Both watches false: conflict. Keep draining the
				// remaining watchers into keep so the watch list stays
				// consistent; the caller stops the search regardless.
				conflictID = cid
				continue
			}

			// lits[0] unassigned: unit propagation.
			s.enqueue(c.lits[0], cid, true)
		}

		s.watches[lit] = keep

		if conflictID >= 0 {
			return conflictID
		}
	}
	return -1
}
