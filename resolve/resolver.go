package resolve

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"sable/ast"
	"sable/depm"
	"sable/envs"
	"sable/logic"
	"sable/report"
	"sable/sem"
)

// UnitRef names one compilation unit to resolve.
type UnitRef struct {
	Name string
	Kind depm.UnitKind
}

// ResolveUnit loads, populates, and resolves one unit: every entry point
// under its library item gets an equation built and solved, and the
// solver's bindings are harvested into the session tables.  It returns
// false when the unit cannot be loaded at all; resolution errors inside a
// loaded unit are reported and counted but do not fail the call.
func (s *Session) ResolveUnit(name string, kind depm.UnitKind) bool {
	u, ok := s.graph.EnsureUnit(name, kind)
	if !ok || u.Decl == nil {
		return false
	}

	s.resolveTree(u)
	return true
}

// ResolveUnits resolves several units concurrently and reports whether all
// of them were found.
func (s *Session) ResolveUnits(refs []UnitRef) bool {
	eg := new(errgroup.Group)
	if s.opts.Workers > 0 {
		eg.SetLimit(s.opts.Workers)
	}

	for _, ref := range refs {
		ref := ref
		eg.Go(func() error {
			if !s.ResolveUnit(ref.Name, ref.Kind) {
				return fmt.Errorf("unit `%s` (%s) not found", ref.Name, ref.Kind)
			}

			return nil
		})
	}

	return eg.Wait() == nil
}

// ResolveEntryPoint builds and solves the equation of a single entry point
// inside a loaded unit and reports whether every variable of the equation
// committed.  Re-invoking it on an unmodified tree re-derives the same
// bindings.  Nodes below a non-entry point resolve only as part of their
// nearest enclosing entry point, never independently.
func (s *Session) ResolveEntryPoint(u *depm.Unit, entry *ast.Node) bool {
	if u == nil || u.Decl == nil || !sem.EntryPoint(entry) {
		return false
	}

	ok := false
	func() {
		defer report.CatchErrors(u.Path, u.Path)
		ok = s.resolveEntry(u, entry)
	}()

	return ok
}

// resolveTree walks the unit's library item and solves each entry point.
func (s *Session) resolveTree(u *depm.Unit) {
	defer report.CatchErrors(u.Path, u.Path)

	u.Decl.Walk(func(n *ast.Node) bool {
		if sem.EntryPoint(n) {
			s.resolveEntry(u, n)
		}

		return true
	})
}

// resolveEntry builds and solves one entry point's equation.  A local error
// fails the entry alone; a structural error re-panics to the unit boundary.
func (s *Session) resolveEntry(u *depm.Unit, entry *ast.Node) (ok bool) {
	defer func() {
		if x := recover(); x != nil {
			if le, isLocal := x.(*report.LocalError); isLocal {
				report.ReportResolveError(u.Path, u.Path, le.Span, le.Message)
				return
			}

			panic(x)
		}
	}()

	b := sem.NewBuilder(s.graph)
	eq := b.Build(entry)

	solver := logic.NewSolver(s.rels)
	solver.CheckAmbiguity = s.opts.CheckAmbiguity

	if !solver.Solve(eq) {
		if solver.Ambiguous() {
			report.ReportResolveError(u.Path, u.Path, entry.Span,
				"ambiguous expression requires qualification")
		} else {
			report.ReportResolveError(u.Path, u.Path, entry.Span,
				"unresolvable reference or type mismatch")
		}

		return false
	}

	s.harvest(b, solver)
	return s.solveDeferred(u, b)
}

// solveDeferred resolves the aggregates discovered while building the
// entry.  An aggregate's sub-equation is built only after its own type has
// been committed, and may defer nested aggregates in turn, so the list is
// drained by index.  It reports whether every deferred aggregate resolved.
func (s *Session) solveDeferred(u *depm.Unit, b *sem.Builder) bool {
	all := true

	for i := 0; i < len(b.DeferredAggregates()); i++ {
		agg := b.DeferredAggregates()[i]

		t, ok := s.ResolvedType(agg)
		if !ok || t.IsNull() {
			report.ReportResolveError(u.Path, u.Path, agg.Span,
				"cannot determine a type for this aggregate")
			all = false
			continue
		}

		sub, built := s.buildAggregate(u, b, agg, t)
		if !built {
			all = false
			continue
		}

		solver := logic.NewSolver(s.rels)
		solver.CheckAmbiguity = s.opts.CheckAmbiguity

		if !solver.Solve(sub) {
			report.ReportResolveError(u.Path, u.Path, agg.Span,
				"aggregate does not match its type")
			all = false
			continue
		}

		s.harvest(b, solver)
	}

	return all
}

// buildAggregate wraps the aggregate's equation construction in the same
// local-error recovery an entry point gets.
func (s *Session) buildAggregate(u *depm.Unit, b *sem.Builder, agg *ast.Node, t envs.Entity) (eq logic.Equation, ok bool) {
	defer func() {
		if x := recover(); x != nil {
			if le, isLocal := x.(*report.LocalError); isLocal {
				report.ReportResolveError(u.Path, u.Path, le.Span, le.Message)
				eq, ok = nil, false
				return
			}

			panic(x)
		}
	}()

	return b.BuildAggregate(agg, t), true
}

// harvest copies the solver's bindings into the session tables.  Null
// bindings carry no information (procedure calls, pure scope prefixes) and
// are skipped.
func (s *Session) harvest(b *sem.Builder, solver *logic.Solver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n, v := range b.TypeBindings() {
		if val, ok := solver.Value(v); ok && !val.IsNull() {
			s.types[n] = val
		}
	}

	for n, v := range b.RefBindings() {
		if val, ok := solver.Value(v); ok && !val.IsNull() {
			s.refs[n] = val
		}
	}
}
