package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
	"sable/report"
	"sable/util"
)

// nameChoice is one way a name can denote an entity, paired with the
// conjuncts that commit the name's reference variables to that way.  A
// name's equation is the disjunction of its choices.
type nameChoice struct {
	ref envs.Entity
	eq  logic.Equation
}

// nameChoices enumerates the visible denotations of a name.  Dotted names
// multiply out: each prefix denotation opens a scope whose suffix
// candidates each yield a choice.  Every choice binds the same variable
// set, so whichever branch the solver commits leaves no variable dangling.
func (b *Builder) nameChoices(n *ast.Node, ctx context) []nameChoice {
	switch n.Kind {
	case ast.Identifier:
		cands := collapseDottable(envs.Get(ctx.env, n.Text, envs.LookupOptions{
			Recursive: true,
			FromTick:  ctx.fromTick,
		}))

		return util.Map(cands, func(c envs.Entity) nameChoice {
			return nameChoice{ref: c, eq: bindValue(b.rv(n), c, "")}
		})

	case ast.DottedName:
		return b.dottedChoices(n, ctx)
	}

	panic(report.Raise(n.Span, "unsupported name form %s", n.Kind))
}

func (b *Builder) dottedChoices(n *ast.Node, ctx context) []nameChoice {
	if len(n.Children) != 2 {
		panic(report.RaiseStructural(n.Span, "malformed dotted name"))
	}

	prefix, suffix := n.Child(0), n.Child(1)
	if suffix.Kind != ast.Identifier {
		panic(report.RaiseStructural(n.Span, "dotted name selects a %s", suffix.Kind))
	}

	var choices []nameChoice

	for _, pc := range b.nameChoices(prefix, ctx) {
		g := envs.NewGuard()

		scope, deref, ok := DesignatedScopeOf(b.sc, pc.ref, g)
		if !ok {
			continue
		}

		// The prefix's type variable is bound in every branch: to the
		// prefix's value type when it has one, or to null for pure scopes
		// like packages.
		prefixType := envs.Null
		if t, ok := TypeOfRef(b.sc, pc.ref, g); ok {
			prefixType = t
		}

		cands := collapseDottable(envs.Get(scope, suffix.Text, envs.LookupOptions{FromTick: ctx.fromTick}))

		for _, s := range cands {
			if deref {
				md := s.MD
				md.ImplicitDeref = true
				s = s.WithMetadata(md)
			}

			choices = append(choices, nameChoice{
				ref: s,
				eq: logic.NewAnd(
					pc.eq,
					bindValue(b.tv(prefix), prefixType, EqMatchingType),
					bindValue(b.rv(suffix), s, ""),
					bindValue(b.rv(n), s, ""),
				),
			})
		}
	}

	return choices
}

// buildNameExpr builds the equation of a name in value position: the
// disjunction of its denotations plus the bind deriving the name's type
// from whichever reference the solver commits.  Denotations without a value
// type (packages, procedures) fail that bind and are pruned here, while
// remaining usable in call or prefix positions.
func (b *Builder) buildNameExpr(n *ast.Node, ctx context) logic.Equation {
	branches := util.Map(b.nameChoices(n, ctx), func(ch nameChoice) logic.Equation {
		return ch.eq
	})

	return logic.NewAnd(
		logic.NewAny(branches...),
		bindVar(b.tv(n), b.rv(n), ConvTypeOfRef, EqMatchingType),
	)
}

// -----------------------------------------------------------------------------

// actualArg is one element of a call's actual list: a bare positional
// expression or a named association.
type actualArg struct {
	desig *ast.Node // designator identifier, nil when positional
	expr  *ast.Node
}

// actualMatch pairs an actual expression with the formal it feeds.
type actualMatch struct {
	expr   *ast.Node
	desig  *ast.Node
	formal Formal
}

// splitActuals decomposes an actuals list into arguments.
func splitActuals(list *ast.Node) []actualArg {
	if list == nil {
		return nil
	}

	var args []actualArg
	for _, a := range list.Children {
		if a.Kind == ast.ParamAssoc {
			desig := a.Child(0)
			expr := a.Child(1)
			if desig == nil || desig.Kind != ast.Identifier || expr == nil {
				panic(report.RaiseStructural(a.Span, "malformed parameter association"))
			}

			args = append(args, actualArg{desig: desig, expr: expr})
			continue
		}

		args = append(args, actualArg{expr: a})
	}

	return args
}

// matchActuals matches arguments to formals: positionally until the first
// named association, then by designator, at most one actual per formal,
// every formal without a default covered.  A dot-notation prefix supplies
// the first formal before any explicit argument.  It reports false when the
// profile cannot accept the arguments, which disqualifies the candidate
// without touching the solver.
func matchActuals(args []actualArg, formals []Formal, prefixExpr *ast.Node) ([]actualMatch, bool) {
	used := make([]bool, len(formals))

	var out []actualMatch
	next := 0

	if prefixExpr != nil {
		if len(formals) == 0 {
			return nil, false
		}

		out = append(out, actualMatch{expr: prefixExpr, formal: formals[0]})
		used[0] = true
		next = 1
	}

	named := false
	for _, a := range args {
		if a.desig == nil {
			if named || next >= len(formals) {
				return nil, false
			}

			out = append(out, actualMatch{expr: a.expr, formal: formals[next]})
			used[next] = true
			next++
			continue
		}

		named = true

		sym := envs.Fold(a.desig.Text)
		idx := -1
		for i, f := range formals {
			if f.Name == sym {
				idx = i
				break
			}
		}

		if idx < 0 || used[idx] {
			return nil, false
		}

		used[idx] = true
		out = append(out, actualMatch{expr: a.expr, desig: a.desig, formal: formals[idx]})
	}

	for i, f := range formals {
		if !used[i] && !f.HasDefault {
			return nil, false
		}
	}

	return out, true
}

// -----------------------------------------------------------------------------

// buildCall builds the equation of a call expression: the actuals'
// sub-equations conjoined with a disjunction over every usable denotation
// of the called name.  A denotation contributes a subprogram branch, a type
// conversion branch or an array indexing branch depending on what it is.
func (b *Builder) buildCall(n *ast.Node, ctx context) logic.Equation {
	name := n.Child(0)
	if name == nil {
		panic(report.RaiseStructural(n.Span, "call without a name"))
	}

	args := splitActuals(n.FirstOfKind(ast.ActualsList))

	eqs := util.Map(args, func(a actualArg) logic.Equation {
		return b.buildExpr(a.expr, ctx)
	})

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		branches = append(branches, b.callBranch(n, name, ch, args)...)
	}

	eqs = append(eqs, logic.NewAny(branches...))
	return logic.NewAnd(eqs...)
}

// callBranch builds the branch equations one denotation of the called name
// contributes, or nil when the denotation cannot accept the call shape.
func (b *Builder) callBranch(call, name *ast.Node, ch nameChoice, args []actualArg) []logic.Equation {
	g := envs.NewGuard()
	c := ch.ref

	switch {
	case IsCallableEntity(c):
		formals, result, ok := FormalsOf(b.sc, c, g)
		if !ok {
			return nil
		}

		var prefixExpr *ast.Node
		if c.MD.DottableSubp && name.Kind == ast.DottedName {
			prefixExpr = name.Child(0)
		}

		pairs, ok := matchActuals(args, formals, prefixExpr)
		if !ok {
			return nil
		}

		eqs := []logic.Equation{ch.eq, bindValue(b.tv(call), result, EqMatchingType)}
		for _, p := range pairs {
			eqs = append(eqs, bindValue(b.tv(p.expr), p.formal.Type, EqMatchingFormalType))
			if p.desig != nil {
				eqs = append(eqs, bindValue(b.rv(p.desig), envs.Entity{Node: p.formal.Spec}, ""))
			}
		}

		return []logic.Equation{logic.NewAnd(eqs...)}

	case IsTypeEntity(c):
		// A type name with one positional argument is a conversion.
		if len(args) != 1 || args[0].desig != nil {
			return nil
		}

		return []logic.Equation{logic.NewAnd(
			ch.eq,
			bindValue(b.tv(call), c, EqMatchingType),
			&logic.Predicate{Var: b.tv(args[0].expr), Pred: PredConvertibleTo, Arg: c},
		)}
	}

	// An array-valued denotation makes the call an indexing.
	t, ok := TypeOfRef(b.sc, c, g)
	if !ok {
		return nil
	}

	t = CanonicalType(b.sc, t, g)
	idx := IndexTypesOf(b.sc, t, g)
	if len(idx) == 0 {
		// Indexing an access-to-array value dereferences implicitly.
		at, ok := AccessedType(b.sc, t, g)
		if !ok {
			return nil
		}

		t = at
		idx = IndexTypesOf(b.sc, t, g)
	}

	if len(idx) != len(args) {
		return nil
	}

	ct, ok := ComponentTypeOf(b.sc, t, g)
	if !ok {
		return nil
	}

	eqs := []logic.Equation{ch.eq, bindValue(b.tv(call), ct, EqMatchingType)}
	for i, a := range args {
		if a.desig != nil {
			return nil
		}

		eqs = append(eqs, bindValue(b.tv(a.expr), idx[i], EqMatchingFormalType))
	}

	return []logic.Equation{logic.NewAnd(eqs...)}
}

// buildProcCallName builds the equation of a bare-name procedure call
// statement: every denotation that is a procedure callable with no
// explicit actuals.
func (b *Builder) buildProcCallName(n *ast.Node, ctx context) logic.Equation {
	var branches []logic.Equation

	for _, ch := range b.nameChoices(n, ctx) {
		g := envs.NewGuard()
		if !IsCallableEntity(ch.ref) {
			continue
		}

		formals, result, ok := FormalsOf(b.sc, ch.ref, g)
		if !ok || !result.IsNull() {
			continue
		}

		var prefixExpr *ast.Node
		if ch.ref.MD.DottableSubp && n.Kind == ast.DottedName {
			prefixExpr = n.Child(0)
		}

		pairs, ok := matchActuals(nil, formals, prefixExpr)
		if !ok {
			continue
		}

		eqs := []logic.Equation{ch.eq}
		for _, p := range pairs {
			eqs = append(eqs, bindValue(b.tv(p.expr), p.formal.Type, EqMatchingFormalType))
		}

		branches = append(branches, logic.NewAnd(eqs...))
	}

	return logic.NewAny(branches...)
}

// buildAttr builds the equation of an attribute reference over the minimal
// attribute set: First, Last, Range and Length.
func (b *Builder) buildAttr(n *ast.Node, ctx context) logic.Equation {
	prefix, attr := n.Child(0), n.Child(1)
	if prefix == nil || attr == nil || attr.Kind != ast.Identifier {
		panic(report.RaiseStructural(n.Span, "malformed attribute reference"))
	}

	prefixEq := b.buildNameExpr(prefix, ctx)

	switch envs.Fold(attr.Text) {
	case "first", "last", "range":
		return logic.NewAnd(
			prefixEq,
			bindVar(b.tv(n), b.tv(prefix), ConvIndexOrScalarType, EqMatchingType),
		)

	case "length":
		return logic.NewAnd(
			prefixEq,
			&logic.Predicate{Var: b.tv(prefix), Pred: PredIsArrayType},
			bindValue(b.tv(n), b.sc.Std().Integer, EqMatchingType),
		)
	}

	panic(report.Raise(n.Span, "unsupported attribute `%s`", attr.Text))
}
