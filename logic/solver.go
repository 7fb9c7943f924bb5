package logic

import (
	"sable/envs"
	"sable/report"
)

// Solver consumes one equation tree for one entry point and searches for an
// assignment of every reachable variable that satisfies every conjunct.  It
// performs depth-first search over Any branches, propagating Bind, Predicate
// and Domain constraints between choice points and pruning a branch as soon
// as one constraint is violated.  A Bind whose source side is an unbound
// variable is stalled and rescheduled, so evaluation order follows the
// dependency structure rather than the textual one.
//
// When several branch combinations are globally consistent, the solver
// commits to the first in declaration order.  With CheckAmbiguity set it
// keeps searching for a second, different solution and fails if one exists.
type Solver struct {
	rels   *Relations
	states []*solutionState

	// domained lists variables in first-restriction order, giving the
	// labeling step a deterministic pick.
	domained []*Var

	// CheckAmbiguity makes Solve fail when two distinct solutions exist.
	CheckAmbiguity bool

	ambiguous bool
}

// binding is a variable's solver state: unbound, restricted to a finite
// domain, or bound to a single value.  Once bound within one solve, a
// variable is never rebound.
type binding struct {
	bound  bool
	value  envs.Entity
	domain []envs.Entity
}

// solutionState is one frame of the backtracking stack.  Lookups read the
// stack top-down; writes go to the top frame, so discarding the top frame
// undoes everything a branch trial did.
type solutionState struct {
	bindings map[*Var]binding
}

func newSolutionState() *solutionState {
	return &solutionState{bindings: make(map[*Var]binding)}
}

func NewSolver(rels *Relations) *Solver {
	return &Solver{rels: rels}
}

// applyResult classifies one constraint application.
type applyResult int

const (
	applied applyResult = iota // constraint consumed
	stalled                    // waiting on an unbound variable
	failed                     // constraint violated: the branch is dead
)

// Solve searches for a consistent assignment.  On success the bindings of
// the committed solution are queryable through Value; on failure no binding
// is meaningful.
func (s *Solver) Solve(eq Equation) bool {
	s.states = []*solutionState{newSolutionState()}
	s.domained = nil
	s.ambiguous = false

	var vars []*Var
	collectVars(eq, make(map[*Var]bool), &vars)

	var first map[*Var]binding
	found := 0

	s.solve(appendFlat(nil, eq), func() bool {
		for _, v := range vars {
			if !s.lookup(v).bound {
				// Not a global solution: some reachable variable never got
				// a value.  Keep searching.
				return false
			}
		}

		solution := make(map[*Var]binding, len(vars))
		for _, v := range vars {
			solution[v] = s.lookup(v)
		}

		if found == 0 {
			found = 1
			first = solution

			// First solution wins unless the caller asked for an ambiguity
			// check, in which case the search continues.
			return !s.CheckAmbiguity
		}

		if sameSolution(first, solution) {
			return false
		}

		found = 2
		return true
	})

	if found != 1 {
		s.ambiguous = found > 1
		return false
	}

	s.states = []*solutionState{{bindings: first}}
	return true
}

// Value returns the committed value of the variable after a successful
// Solve.
func (s *Solver) Value(v *Var) (envs.Entity, bool) {
	b := s.lookup(v)
	return b.value, b.bound
}

// Ambiguous reports whether the last Solve failed because two distinct
// solutions existed (only meaningful with CheckAmbiguity set).
func (s *Solver) Ambiguous() bool {
	return s.ambiguous
}

// -----------------------------------------------------------------------------

// solve propagates the pending conjuncts to a fixpoint, then branches over
// the first disjunction, then labels a domain-restricted variable, and at a
// fully determined leaf asks `accept` whether to commit.  It returns whether
// the search below it committed.
func (s *Solver) solve(pending []Equation, accept func() bool) bool {
	pending, ok := s.propagate(pending)
	if !ok {
		return false
	}

	// Branch over the first disjunction in order.
	for i, c := range pending {
		any, isAny := c.(*Any)
		if !isAny {
			continue
		}

		rest := make([]Equation, 0, len(pending)-1)
		rest = append(rest, pending[:i]...)
		rest = append(rest, pending[i+1:]...)

		for _, branch := range any.Ops {
			s.pushState()
			if s.solve(append(appendFlat(nil, branch), rest...), accept) {
				s.mergeState()
				return true
			}
			s.discardState()
		}

		return false
	}

	// No disjunctions left: enumerate a domain-restricted variable, which
	// can unstall the remaining binds.
	if v := s.firstUnboundDomained(); v != nil {
		for _, val := range s.lookup(v).domain {
			s.pushState()
			s.store(v, binding{bound: true, value: val})
			if s.solve(pending, accept) {
				s.mergeState()
				return true
			}
			s.discardState()
		}

		return false
	}

	if len(pending) > 0 {
		// Constraints are stalled with nothing left to branch on: the
		// equation is under-determined here.
		return false
	}

	return accept()
}

// propagate applies deterministic constraints until none makes progress.
// It returns the still-pending conjuncts, or ok=false if one failed.
func (s *Solver) propagate(pending []Equation) ([]Equation, bool) {
	for {
		progress := false
		next := make([]Equation, 0, len(pending))

		for _, c := range pending {
			switch c := c.(type) {
			case True:
				progress = true

			case *And:
				next = appendFlat(next, c)
				progress = true

			case *Any:
				next = append(next, c)

			case *Bind:
				switch s.applyBind(c) {
				case applied:
					progress = true
				case stalled:
					next = append(next, c)
				case failed:
					return nil, false
				}

			case *Predicate:
				switch s.applyPredicate(c) {
				case applied:
					progress = true
				case stalled:
					next = append(next, c)
				case failed:
					return nil, false
				}

			case *Domain:
				if s.applyDomain(c) == failed {
					return nil, false
				}
				progress = true
			}
		}

		pending = next
		if !progress {
			return pending, true
		}
	}
}

// applyBind evaluates one Bind constraint.
func (s *Solver) applyBind(b *Bind) applyResult {
	eqf, ok := s.rels.eq(b.Eq)
	if !ok {
		report.ReportICE("undefined equality relation `%s`", b.Eq)
	}

	convf, ok := s.rels.conv(b.Conv)
	if !ok {
		report.ReportICE("undefined conversion `%s`", b.Conv)
	}

	var sval envs.Entity
	if b.Source != nil {
		sb := s.lookup(b.Source)
		if !sb.bound {
			// The source is not evaluable yet.  If the target is already
			// bound and no conversion intervenes, propagate backward;
			// otherwise reschedule.
			tb := s.lookup(b.Target)
			if tb.bound && b.Conv == "" {
				flipped := func(a, c envs.Entity) bool { return eqf(c, a) }
				return s.bindValue(b.Source, tb.value, flipped)
			}

			return stalled
		}

		sval = sb.value
	} else {
		sval = b.Value
	}

	cv, ok := convf(sval)
	if !ok {
		return failed
	}

	return s.bindValue(b.Target, cv, eqf)
}

// bindValue constrains v against val under the equality relation: an
// unbound, unrestricted v is assigned val; a bound v is checked; a
// domain-restricted v is narrowed to the relating candidates.
func (s *Solver) bindValue(v *Var, val envs.Entity, eqf EqFunc) applyResult {
	b := s.lookup(v)

	if b.bound {
		if eqf(b.value, val) {
			return applied
		}

		return failed
	}

	if b.domain != nil {
		var matches []envs.Entity
		for _, d := range b.domain {
			if eqf(d, val) {
				matches = append(matches, d)
			}
		}

		return s.narrow(v, matches)
	}

	s.store(v, binding{bound: true, value: val})
	return applied
}

// applyPredicate evaluates one Predicate constraint.
func (s *Solver) applyPredicate(p *Predicate) applyResult {
	predf, ok := s.rels.pred(p.Pred)
	if !ok {
		report.ReportICE("undefined predicate `%s`", p.Pred)
	}

	b := s.lookup(p.Var)

	if b.bound {
		if predf(b.value, p.Arg) {
			return applied
		}

		return failed
	}

	if b.domain != nil {
		var matches []envs.Entity
		for _, d := range b.domain {
			if predf(d, p.Arg) {
				matches = append(matches, d)
			}
		}

		return s.narrow(p.Var, matches)
	}

	return stalled
}

// applyDomain evaluates one Domain constraint.  Domains are monotonic: a
// second domain on the same variable intersects the first.
func (s *Solver) applyDomain(d *Domain) applyResult {
	b := s.lookup(d.Var)

	if b.bound {
		for _, val := range d.Values {
			if b.value.Equal(val) {
				return applied
			}
		}

		return failed
	}

	if b.domain == nil {
		s.domained = append(s.domained, d.Var)
		return s.narrow(d.Var, d.Values)
	}

	var inter []envs.Entity
	for _, have := range b.domain {
		for _, val := range d.Values {
			if have.Equal(val) {
				inter = append(inter, have)
				break
			}
		}
	}

	return s.narrow(d.Var, inter)
}

// narrow restricts v to the candidate set, binding it outright when only
// one candidate remains.
func (s *Solver) narrow(v *Var, values []envs.Entity) applyResult {
	switch len(values) {
	case 0:
		return failed
	case 1:
		s.store(v, binding{bound: true, value: values[0]})
	default:
		s.store(v, binding{domain: values})
	}

	return applied
}

// firstUnboundDomained returns the first variable, in restriction order,
// that still has a multi-candidate domain.
func (s *Solver) firstUnboundDomained() *Var {
	for _, v := range s.domained {
		if b := s.lookup(v); !b.bound && len(b.domain) > 0 {
			return v
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (s *Solver) lookup(v *Var) binding {
	for i := len(s.states) - 1; i >= 0; i-- {
		if b, ok := s.states[i].bindings[v]; ok {
			return b
		}
	}

	return binding{}
}

func (s *Solver) store(v *Var, b binding) {
	s.states[len(s.states)-1].bindings[v] = b
}

func (s *Solver) pushState() {
	s.states = append(s.states, newSolutionState())
}

func (s *Solver) discardState() {
	s.states = s.states[:len(s.states)-1]
}

func (s *Solver) mergeState() {
	top := s.states[len(s.states)-1]
	s.states = s.states[:len(s.states)-1]

	below := s.states[len(s.states)-1]
	for v, b := range top.bindings {
		below.bindings[v] = b
	}
}

// appendFlat appends the equation to the conjunct list, splicing
// conjunctions in and dropping True.
func appendFlat(out []Equation, eq Equation) []Equation {
	switch eq := eq.(type) {
	case True:
		return out
	case *And:
		for _, op := range eq.Ops {
			out = appendFlat(out, op)
		}
		return out
	default:
		return append(out, eq)
	}
}

// sameSolution compares two full assignments.
func sameSolution(a, b map[*Var]binding) bool {
	if len(a) != len(b) {
		return false
	}

	for v, ba := range a {
		bb, ok := b[v]
		if !ok || !ba.value.Equal(bb.value) {
			return false
		}
	}

	return true
}
