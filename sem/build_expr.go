package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
	"sable/report"
)

// buildExpr builds the equation of an expression.  Types flow downward:
// contexts bind an expression's type variable and the expression's own
// conjuncts mostly constrain rather than produce, except for names, whose
// committed reference determines their type.
func (b *Builder) buildExpr(n *ast.Node, ctx context) logic.Equation {
	switch n.Kind {
	case ast.IntLit:
		return &logic.Predicate{Var: b.tv(n), Pred: PredIsIntType}
	case ast.RealLit:
		return &logic.Predicate{Var: b.tv(n), Pred: PredIsRealType}
	case ast.StringLit:
		return &logic.Predicate{Var: b.tv(n), Pred: PredIsStringType}
	case ast.CharLit:
		return &logic.Predicate{Var: b.tv(n), Pred: PredIsCharType}
	case ast.NullLit:
		return &logic.Predicate{Var: b.tv(n), Pred: PredIsAccessType}

	case ast.Identifier, ast.DottedName:
		return b.buildNameExpr(n, ctx)
	case ast.CallExpr:
		return b.buildCall(n, ctx)
	case ast.AttributeRef:
		return b.buildAttr(n, ctx)

	case ast.BinOp:
		return b.buildBinOp(n, ctx)
	case ast.UnOp:
		return b.buildUnOp(n, ctx)

	case ast.QualExpr:
		return b.buildQualExpr(n, ctx)
	case ast.Allocator:
		return b.buildAllocator(n, ctx)

	case ast.ExplicitDeref:
		prefix := n.Child(0)
		if prefix == nil {
			panic(report.RaiseStructural(n.Span, "dereference without a prefix"))
		}

		return logic.NewAnd(
			b.buildExpr(prefix, ctx),
			bindVar(b.tv(n), b.tv(prefix), ConvAccessedType, EqMatchingType),
		)

	case ast.ParenExpr:
		inner := n.Child(0)
		if inner == nil {
			panic(report.RaiseStructural(n.Span, "empty parenthesized expression"))
		}

		return logic.NewAnd(b.buildExpr(inner, ctx), sameAs(b.tv(inner), b.tv(n)))

	case ast.IfExpr:
		return b.buildIfExpr(n, ctx)
	case ast.CaseExpr:
		return b.buildCaseExpr(n, ctx)
	case ast.MembershipExpr:
		return b.buildMembership(n, ctx)

	case ast.RangeExpr:
		low, high := n.Child(0), n.Child(1)
		if low == nil || high == nil {
			panic(report.RaiseStructural(n.Span, "malformed range"))
		}

		return logic.NewAnd(
			b.buildExpr(low, ctx),
			b.buildExpr(high, ctx),
			sameAs(b.tv(low), b.tv(high)),
			sameAs(b.tv(low), b.tv(n)),
		)

	case ast.Aggregate:
		// The aggregate's type must be known before its associations can
		// be matched to components, so its sub-equation is built in a
		// second solve once the enclosing equation commits.
		b.deferred = append(b.deferred, n)
		return logic.True{}

	case ast.RaiseExpr:
		return b.buildRaiseExpr(n, ctx)

	case ast.TargetName:
		assign := n.EnclosingKind(ast.AssignStmt)
		if assign == nil {
			panic(report.RaiseStructural(n.Span, "target name outside an assignment"))
		}

		return sameAs(b.tv(n), b.tv(assign.Child(0)))

	case ast.BoxExpr:
		return logic.True{}

	case ast.QuantifiedExpr, ast.DeclExpr, ast.ReduceAttributeRef:
		panic(report.Raise(n.Span, "unsupported expression form %s", n.Kind))
	}

	panic(report.RaiseStructural(n.Span, "%s is not an expression", n.Kind))
}

// literalOnly reports whether the expression is built from literals alone,
// with no name to anchor its type.  Such expressions get an explicit domain
// over the predefined scalars where the context supplies no type.
func literalOnly(n *ast.Node) bool {
	switch n.Kind {
	case ast.IntLit, ast.RealLit, ast.StringLit, ast.CharLit, ast.NullLit:
		return true
	case ast.ParenExpr:
		return n.Child(0) != nil && literalOnly(n.Child(0))
	case ast.UnOp:
		return n.Child(1) != nil && literalOnly(n.Child(1))
	case ast.BinOp:
		return n.Child(0) != nil && n.Child(2) != nil &&
			literalOnly(n.Child(0)) && literalOnly(n.Child(2))
	case ast.RangeExpr:
		return n.Child(0) != nil && n.Child(1) != nil &&
			literalOnly(n.Child(0)) && literalOnly(n.Child(1))
	}

	return false
}

// -----------------------------------------------------------------------------

// opBranches builds the branches committing an operator node to a declared
// overload of its quoted symbol: one branch per visible candidate whose
// profile takes the operands and returns a value.
func (b *Builder) opBranches(n, op *ast.Node, operands []*ast.Node, ctx context) []logic.Equation {
	sym, ok := OpSymbol(op.Kind)
	if !ok {
		return nil
	}

	cands := envs.Get(ctx.env, sym, envs.LookupOptions{
		Recursive: true,
		FromTick:  ctx.fromTick,
	})

	var branches []logic.Equation
	for _, c := range cands {
		g := envs.NewGuard()
		if !IsCallableEntity(c) {
			continue
		}

		formals, result, ok := FormalsOf(b.sc, c, g)
		if !ok || len(formals) != len(operands) || result.IsNull() {
			continue
		}

		eqs := []logic.Equation{
			bindValue(b.rv(op), c, ""),
			bindValue(b.tv(n), result, EqMatchingType),
		}
		for i, operand := range operands {
			eqs = append(eqs, bindValue(b.tv(operand), formals[i].Type, EqMatchingFormalType))
		}

		branches = append(branches, logic.NewAnd(eqs...))
	}

	return branches
}

// buildBinOp builds a binary operation: the operands' sub-equations plus a
// disjunction over declared overloads and the built-in interpretation.  The
// built-in branches bind the operator's reference to null; inherited
// operators of derived types have no declaration to resolve to.
func (b *Builder) buildBinOp(n *ast.Node, ctx context) logic.Equation {
	left, op, right := n.Child(0), n.Child(1), n.Child(2)
	if left == nil || op == nil || right == nil || !op.Kind.IsOp() {
		panic(report.RaiseStructural(n.Span, "malformed binary operation"))
	}

	// Short-circuit forms are control structures, not overloadable
	// operators.
	if op.Kind == ast.OpAndThen || op.Kind == ast.OpOrElse {
		boolean := b.sc.Std().Boolean
		return logic.NewAnd(
			b.buildExpr(left, ctx),
			b.buildExpr(right, ctx),
			bindValue(b.tv(left), boolean, EqMatchingType),
			bindValue(b.tv(right), boolean, EqMatchingType),
			bindValue(b.tv(n), boolean, EqMatchingType),
		)
	}

	branches := b.opBranches(n, op, []*ast.Node{left, right}, ctx)
	branches = append(branches, b.builtinBinOp(n, op, left, right)...)

	return logic.NewAnd(
		b.buildExpr(left, ctx),
		b.buildExpr(right, ctx),
		logic.NewAny(branches...),
	)
}

func (b *Builder) builtinBinOp(n, op, left, right *ast.Node) []logic.Equation {
	boolean := b.sc.Std().Boolean
	null := bindValue(b.rv(op), envs.Null, "")

	switch op.Kind {
	case ast.OpPlus, ast.OpMinus, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpRem:
		return []logic.Equation{logic.NewAnd(
			null,
			sameAs(b.tv(left), b.tv(n)),
			sameAs(b.tv(right), b.tv(n)),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsNumericType},
		)}

	case ast.OpPow:
		return []logic.Equation{logic.NewAnd(
			null,
			sameAs(b.tv(left), b.tv(n)),
			bindValue(b.tv(right), b.sc.Std().Integer, EqMatchingType),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsNumericType},
		)}

	case ast.OpConcat:
		return []logic.Equation{logic.NewAnd(
			null,
			sameAs(b.tv(left), b.tv(n)),
			sameAs(b.tv(right), b.tv(n)),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsArrayType},
		)}

	case ast.OpAnd, ast.OpOr, ast.OpXor:
		return []logic.Equation{logic.NewAnd(
			null,
			sameAs(b.tv(left), b.tv(n)),
			sameAs(b.tv(right), b.tv(n)),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsBoolType},
		)}

	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		// The second branch gives literal-only operands a domain to label
		// from; operands anchored by a name commit in the first.
		return []logic.Equation{
			logic.NewAnd(
				null,
				sameAs(b.tv(left), b.tv(right)),
				&logic.Predicate{Var: b.tv(left), Pred: PredIsScalarType},
				bindValue(b.tv(n), boolean, EqMatchingType),
			),
			logic.NewAnd(
				null,
				sameAs(b.tv(left), b.tv(right)),
				&logic.Domain{Var: b.tv(left), Values: b.sc.Std().Scalars()},
				bindValue(b.tv(n), boolean, EqMatchingType),
			),
		}

	case ast.OpEq, ast.OpNeq:
		return []logic.Equation{
			logic.NewAnd(
				null,
				sameAs(b.tv(left), b.tv(right)),
				bindValue(b.tv(n), boolean, EqMatchingType),
			),
			logic.NewAnd(
				null,
				sameAs(b.tv(left), b.tv(right)),
				&logic.Domain{Var: b.tv(left), Values: b.sc.Std().Scalars()},
				bindValue(b.tv(n), boolean, EqMatchingType),
			),
		}
	}

	panic(report.RaiseStructural(op.Span, "%s is not a binary operator", op.Kind))
}

// buildUnOp builds a unary operation the same way as buildBinOp.
func (b *Builder) buildUnOp(n *ast.Node, ctx context) logic.Equation {
	op, operand := n.Child(0), n.Child(1)
	if op == nil || operand == nil || !op.Kind.IsOp() {
		panic(report.RaiseStructural(n.Span, "malformed unary operation"))
	}

	branches := b.opBranches(n, op, []*ast.Node{operand}, ctx)

	null := bindValue(b.rv(op), envs.Null, "")
	switch op.Kind {
	case ast.OpPlus, ast.OpMinus, ast.OpAbs:
		branches = append(branches, logic.NewAnd(
			null,
			sameAs(b.tv(operand), b.tv(n)),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsNumericType},
		))

	case ast.OpNot:
		branches = append(branches, logic.NewAnd(
			null,
			sameAs(b.tv(operand), b.tv(n)),
			&logic.Predicate{Var: b.tv(n), Pred: PredIsBoolType},
		))

	default:
		panic(report.RaiseStructural(op.Span, "%s is not a unary operator", op.Kind))
	}

	return logic.NewAnd(b.buildExpr(operand, ctx), logic.NewAny(branches...))
}

// -----------------------------------------------------------------------------

// buildQualExpr builds a qualified expression: the named type fixes both
// the qualified value's type and the inner expression's expected type.
func (b *Builder) buildQualExpr(n *ast.Node, ctx context) logic.Equation {
	name, inner := n.Child(0), n.Child(1)
	if name == nil || inner == nil {
		panic(report.RaiseStructural(n.Span, "malformed qualified expression"))
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if !IsTypeEntity(ch.ref) {
			continue
		}

		branches = append(branches, logic.NewAnd(
			ch.eq,
			bindValue(b.tv(n), ch.ref, EqMatchingType),
			bindValue(b.tv(inner), ch.ref, EqMatchingType),
		))
	}

	return logic.NewAnd(b.buildExpr(inner, ctx), logic.NewAny(branches...))
}

// buildAllocator builds an allocator: the allocated type constrains the
// expected access type through the allocatesType predicate, which stalls
// until the context binds the allocator's own type.
func (b *Builder) buildAllocator(n *ast.Node, ctx context) logic.Equation {
	inner := n.Child(0)
	if inner == nil {
		panic(report.RaiseStructural(n.Span, "allocator without a subtype"))
	}

	var name, qualInner *ast.Node
	switch inner.Kind {
	case ast.QualExpr:
		name, qualInner = inner.Child(0), inner.Child(1)
	case ast.SubtypeIndication, ast.DiscreteSubtypeIndication:
		name = inner.Child(0)
	case ast.Identifier, ast.DottedName:
		name = inner
	default:
		panic(report.RaiseStructural(inner.Span, "unsupported allocator subtype form %s", inner.Kind))
	}

	if name == nil {
		panic(report.RaiseStructural(inner.Span, "allocator subtype without a name"))
	}

	var eqs []logic.Equation
	if qualInner != nil {
		eqs = append(eqs, b.buildExpr(qualInner, ctx))
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if !IsTypeEntity(ch.ref) {
			continue
		}

		branch := []logic.Equation{
			ch.eq,
			&logic.Predicate{Var: b.tv(n), Pred: PredAllocatesType, Arg: ch.ref},
		}
		if qualInner != nil {
			branch = append(branch,
				bindValue(b.tv(inner), ch.ref, EqMatchingType),
				bindValue(b.tv(qualInner), ch.ref, EqMatchingType),
			)
		}

		branches = append(branches, logic.NewAnd(branch...))
	}

	eqs = append(eqs, logic.NewAny(branches...))
	return logic.NewAnd(eqs...)
}

// -----------------------------------------------------------------------------

func (b *Builder) buildIfExpr(n *ast.Node, ctx context) logic.Equation {
	cond, then := n.Child(0), n.Child(1)
	if cond == nil || then == nil {
		panic(report.RaiseStructural(n.Span, "malformed conditional expression"))
	}

	boolean := b.sc.Std().Boolean
	eqs := []logic.Equation{
		b.buildExpr(cond, ctx),
		bindValue(b.tv(cond), boolean, EqMatchingType),
		b.buildExpr(then, ctx),
		sameAs(b.tv(then), b.tv(n)),
	}

	for _, part := range n.Children[2:] {
		if part.Kind == ast.ElsifExprPart {
			pc, pe := part.Child(0), part.Child(1)
			if pc == nil || pe == nil {
				panic(report.RaiseStructural(part.Span, "malformed elsif part"))
			}

			eqs = append(eqs,
				b.buildExpr(pc, ctx),
				bindValue(b.tv(pc), boolean, EqMatchingType),
				b.buildExpr(pe, ctx),
				sameAs(b.tv(pe), b.tv(n)),
			)
			continue
		}

		eqs = append(eqs, b.buildExpr(part, ctx), sameAs(b.tv(part), b.tv(n)))
	}

	return logic.NewAnd(eqs...)
}

func (b *Builder) buildCaseExpr(n *ast.Node, ctx context) logic.Equation {
	sel := n.Child(0)
	if sel == nil {
		panic(report.RaiseStructural(n.Span, "case expression without a selector"))
	}

	eqs := []logic.Equation{
		b.buildExpr(sel, ctx),
		&logic.Predicate{Var: b.tv(sel), Pred: PredIsDiscreteType},
	}

	for _, alt := range n.Children[1:] {
		if alt.Kind != ast.CaseExprAlternative {
			panic(report.RaiseStructural(alt.Span, "%s in case expression", alt.Kind))
		}

		choices, val := alt.Child(0), alt.Child(1)
		if choices == nil || choices.Kind != ast.ChoiceList || val == nil {
			panic(report.RaiseStructural(alt.Span, "malformed case alternative"))
		}

		for _, ch := range choices.Children {
			eqs = append(eqs, b.buildChoice(ch, b.tv(sel), ctx))
		}

		eqs = append(eqs, b.buildExpr(val, ctx), sameAs(b.tv(val), b.tv(n)))
	}

	return logic.NewAnd(eqs...)
}

// buildChoice builds one selector choice: an expression, a range or a
// subtype name, all of which must agree with the selector's type.  A type
// name agrees through typeOfRef mapping types to themselves.
func (b *Builder) buildChoice(ch *ast.Node, sel *logic.Var, ctx context) logic.Equation {
	switch {
	case ch.Kind == ast.OthersDesignator:
		return logic.True{}
	case ch.Kind.IsExpr():
		return logic.NewAnd(b.buildExpr(ch, ctx), sameAs(b.tv(ch), sel))
	}

	panic(report.RaiseStructural(ch.Span, "unsupported choice form %s", ch.Kind))
}

func (b *Builder) buildMembership(n *ast.Node, ctx context) logic.Equation {
	tested, op, choices := n.Child(0), n.Child(1), n.Child(2)
	if tested == nil || op == nil || choices == nil || choices.Kind != ast.ChoiceList {
		panic(report.RaiseStructural(n.Span, "malformed membership test"))
	}

	if op.Kind != ast.OpIn && op.Kind != ast.OpNotIn {
		panic(report.RaiseStructural(op.Span, "%s is not a membership operator", op.Kind))
	}

	eqs := []logic.Equation{
		b.buildExpr(tested, ctx),
		bindValue(b.tv(n), b.sc.Std().Boolean, EqMatchingType),
	}

	// A membership test over literals alone has no name to anchor the
	// tested type, so it labels from the predefined scalars.
	anchored := !literalOnly(tested)

	for _, ch := range choices.Children {
		if ch.Kind.IsExpr() && !literalOnly(ch) {
			anchored = true
		}

		eqs = append(eqs, b.buildChoice(ch, b.tv(tested), ctx))
	}

	if !anchored {
		eqs = append(eqs, &logic.Domain{Var: b.tv(tested), Values: b.sc.Std().Scalars()})
	}

	return logic.NewAnd(eqs...)
}

func (b *Builder) buildRaiseExpr(n *ast.Node, ctx context) logic.Equation {
	name := n.Child(0)
	if name == nil {
		panic(report.RaiseStructural(n.Span, "raise expression without an exception name"))
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if ch.ref.Node == nil || ch.ref.Node.Kind != ast.ExceptionDecl {
			continue
		}

		branches = append(branches, ch.eq)
	}

	eqs := []logic.Equation{logic.NewAny(branches...)}
	if msg := n.Child(1); msg != nil {
		eqs = append(eqs,
			b.buildExpr(msg, ctx),
			bindValue(b.tv(msg), b.sc.Std().String, EqMatchingType),
		)
	}

	// The raised expression itself takes whatever type the context
	// expects; no conjunct of its own constrains it.
	return logic.NewAnd(eqs...)
}

// -----------------------------------------------------------------------------

// BuildAggregate builds the sub-equation of a deferred aggregate once the
// enclosing solve has committed its type.  Record aggregates match their
// associations against the type's components like call actuals; array
// aggregates bind every element to the component type and every choice to
// the first index type.
func (b *Builder) BuildAggregate(agg *ast.Node, t envs.Entity) logic.Equation {
	ctx := context{env: b.sc.EnclosingEnv(agg)}
	for entry := agg.Parent; entry != nil; entry = entry.Parent {
		if EntryPoint(entry) {
			if entry.Kind.IsDecl() {
				ctx.fromTick = b.sc.TickOf(entry)
			}
			break
		}
	}

	g := envs.NewGuard()
	canon := CanonicalType(b.sc, t, g)

	td, _ := BaseTypeDef(b.sc, canon, g)
	if td == nil {
		panic(report.Raise(agg.Span, "aggregate of a type with no composite definition"))
	}

	switch td.Kind {
	case ast.RecordTypeDef:
		return b.recordAggregate(agg, canon, ctx, g)
	case ast.ArrayTypeDef:
		return b.arrayAggregate(agg, canon, ctx, g)
	}

	panic(report.Raise(agg.Span, "aggregate of a non-composite type"))
}

func (b *Builder) recordAggregate(agg *ast.Node, t envs.Entity, ctx context, g *envs.Guard) logic.Equation {
	comps := ComponentsOf(b.sc, t, g)
	used := make([]bool, len(comps))

	var eqs []logic.Equation
	var othersExpr *ast.Node

	bindComp := func(expr *ast.Node, f Formal) {
		eqs = append(eqs, bindValue(b.tv(expr), f.Type, EqMatchingFormalType))
	}

	next := 0
	named := false
	for _, a := range agg.Children {
		if a.Kind != ast.AggregateAssoc {
			if named || next >= len(comps) {
				panic(report.Raise(a.Span, "too many positional components in aggregate"))
			}

			eqs = append(eqs, b.buildExpr(a, ctx))
			bindComp(a, comps[next])
			used[next] = true
			next++
			continue
		}

		choices, expr := a.Child(0), a.Child(1)
		if choices == nil || choices.Kind != ast.ChoiceList || expr == nil {
			panic(report.RaiseStructural(a.Span, "malformed aggregate association"))
		}

		if choices.FirstOfKind(ast.OthersDesignator) != nil {
			othersExpr = expr
			continue
		}

		named = true
		if expr.Kind != ast.BoxExpr {
			eqs = append(eqs, b.buildExpr(expr, ctx))
		}

		for _, ch := range choices.Children {
			if ch.Kind != ast.Identifier {
				panic(report.RaiseStructural(ch.Span, "record aggregate choice must be a component name"))
			}

			sym := envs.Fold(ch.Text)
			idx := -1
			for i, f := range comps {
				if f.Name == sym {
					idx = i
					break
				}
			}

			if idx < 0 {
				panic(report.Raise(ch.Span, "no component `%s` in aggregate type", ch.Text))
			}
			if used[idx] {
				panic(report.Raise(ch.Span, "component `%s` given twice", ch.Text))
			}

			used[idx] = true
			eqs = append(eqs, bindValue(b.rv(ch), envs.Entity{Node: comps[idx].Spec}, ""))
			if expr.Kind != ast.BoxExpr {
				bindComp(expr, comps[idx])
			}
		}
	}

	othersBuilt := false
	for i, f := range comps {
		if used[i] {
			continue
		}

		if othersExpr != nil {
			if othersExpr.Kind == ast.BoxExpr {
				continue
			}

			if !othersBuilt {
				eqs = append(eqs, b.buildExpr(othersExpr, ctx))
				othersBuilt = true
			}

			bindComp(othersExpr, f)
			continue
		}

		if !f.HasDefault {
			panic(report.Raise(agg.Span, "aggregate gives no value for component `%s`", f.Name))
		}
	}

	return logic.NewAnd(eqs...)
}

func (b *Builder) arrayAggregate(agg *ast.Node, t envs.Entity, ctx context, g *envs.Guard) logic.Equation {
	idx := IndexTypesOf(b.sc, t, g)
	ct, ok := ComponentTypeOf(b.sc, t, g)
	if len(idx) == 0 || !ok {
		panic(report.Raise(agg.Span, "aggregate type has no array definition"))
	}

	var eqs []logic.Equation

	element := func(expr *ast.Node) {
		if expr.Kind == ast.BoxExpr {
			return
		}

		eqs = append(eqs, b.buildExpr(expr, ctx))
		eqs = append(eqs, bindValue(b.tv(expr), ct, EqMatchingFormalType))
	}

	for _, a := range agg.Children {
		if a.Kind != ast.AggregateAssoc {
			element(a)
			continue
		}

		choices, expr := a.Child(0), a.Child(1)
		if choices == nil || choices.Kind != ast.ChoiceList || expr == nil {
			panic(report.RaiseStructural(a.Span, "malformed aggregate association"))
		}

		for _, ch := range choices.Children {
			if ch.Kind == ast.OthersDesignator {
				continue
			}

			eqs = append(eqs, b.buildExpr(ch, ctx))
			eqs = append(eqs, bindValue(b.tv(ch), idx[0], EqMatchingFormalType))
		}

		element(expr)
	}

	return logic.NewAnd(eqs...)
}
