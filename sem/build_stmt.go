package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
	"sable/report"
)

// buildStmt builds the equation of a statement entry point.  A compound
// statement's equation covers only its header expressions; the statements
// nested inside it are entry points of their own.
func (b *Builder) buildStmt(n *ast.Node, ctx context) logic.Equation {
	switch n.Kind {
	case ast.AssignStmt:
		return b.buildAssign(n, ctx)
	case ast.CallStmt:
		return b.buildCallStmt(n, ctx)
	case ast.ReturnStmt:
		return b.buildReturn(n, ctx)

	case ast.IfStmt:
		return b.buildIf(n, ctx)
	case ast.WhileStmt:
		cond := n.Child(0)
		if cond == nil {
			panic(report.RaiseStructural(n.Span, "while loop without a condition"))
		}

		return b.condition(cond, ctx)

	case ast.ExitStmt:
		for _, c := range n.Children {
			if c.Kind.IsExpr() {
				return b.condition(c, ctx)
			}
		}

		return logic.True{}

	case ast.ForStmt:
		return b.buildFor(n, ctx)
	case ast.CaseStmt:
		return b.buildCase(n, ctx)

	case ast.DelayStmt:
		for _, c := range n.Children {
			if c.Kind.IsExpr() {
				return logic.NewAnd(
					b.buildExpr(c, ctx),
					bindValue(b.tv(c), b.sc.Std().Duration, EqMatchingType),
				)
			}
		}

		panic(report.RaiseStructural(n.Span, "delay without an expression"))

	case ast.RaiseStmt:
		return b.buildRaise(n, ctx)

	case ast.AbortStmt:
		var eqs []logic.Equation
		for _, c := range n.Children {
			if c.Kind.IsExpr() {
				eqs = append(eqs, b.buildExpr(c, ctx))
			}
		}

		return logic.NewAnd(eqs...)

	case ast.AcceptStmt, ast.RequeueStmt:
		return b.buildEntryName(n, ctx)

	case ast.BlockStmt, ast.LoopStmt, ast.NullStmt, ast.GotoStmt,
		ast.ExtendedReturnStmt, ast.SelectStmt, ast.TerminateAlternative:
		// Nothing to resolve at the header; nested statements and
		// declarations are their own entry points.
		return logic.True{}
	}

	panic(report.RaiseStructural(n.Span, "%s is not a statement entry point", n.Kind))
}

// condition builds a boolean-valued header expression.
func (b *Builder) condition(cond *ast.Node, ctx context) logic.Equation {
	return logic.NewAnd(
		b.buildExpr(cond, ctx),
		bindValue(b.tv(cond), b.sc.Std().Boolean, EqMatchingType),
	)
}

// buildAssign types the assigned value from the target.  The bind runs
// whichever way binds first: a name target propagates its type to the
// value, while a target typed only by context (a dereference of an
// inferred access value) can take its type from the value.
func (b *Builder) buildAssign(n *ast.Node, ctx context) logic.Equation {
	target, value := n.Child(0), n.Child(1)
	if target == nil || value == nil {
		panic(report.RaiseStructural(n.Span, "malformed assignment"))
	}

	return logic.NewAnd(
		b.buildExpr(target, ctx),
		b.buildExpr(value, ctx),
		&logic.Bind{Target: b.tv(value), Source: b.tv(target), Eq: EqMatchingType},
	)
}

// buildCallStmt restricts a call statement to procedure interpretations by
// forcing the call's type to null.
func (b *Builder) buildCallStmt(n *ast.Node, ctx context) logic.Equation {
	call := n.Child(0)
	if call == nil {
		panic(report.RaiseStructural(n.Span, "call statement without a call"))
	}

	switch call.Kind {
	case ast.CallExpr:
		return logic.NewAnd(
			b.buildCall(call, ctx),
			bindValue(b.tv(call), envs.Null, ""),
		)

	case ast.Identifier, ast.DottedName:
		return b.buildProcCallName(call, ctx)
	}

	panic(report.RaiseStructural(call.Span, "unsupported call form %s", call.Kind))
}

// buildReturn types the returned value by the enclosing body's result.
func (b *Builder) buildReturn(n *ast.Node, ctx context) logic.Equation {
	var value *ast.Node
	for _, c := range n.Children {
		if c.Kind.IsExpr() {
			value = c
			break
		}
	}

	if value == nil {
		return logic.True{}
	}

	enclosing := n.EnclosingKind(ast.SubpBody, ast.ExprFunction, ast.EntryBody, ast.AcceptStmt)
	if enclosing == nil {
		panic(report.Raise(n.Span, "return with a value outside a function body"))
	}

	spec := SubpSpecOf(enclosing)
	if spec == nil {
		panic(report.Raise(n.Span, "return with a value outside a function body"))
	}

	rte := resultTypeExpr(spec)
	if rte == nil {
		panic(report.Raise(n.Span, "return with a value in a procedure body"))
	}

	// The result type name resolves where the body was declared, bounded
	// by the body's own tick.
	outer := context{
		env:      b.sc.EnclosingEnv(enclosing),
		fromTick: b.sc.TickOf(enclosing),
	}

	teEq, resultName := b.buildTypeExpr(rte, outer)

	return logic.NewAnd(
		teEq,
		b.buildExpr(value, ctx),
		bindVar(b.tv(value), b.rv(resultName), ConvCanonicalType, EqMatchingType),
	)
}

func (b *Builder) buildIf(n *ast.Node, ctx context) logic.Equation {
	cond := n.Child(0)
	if cond == nil {
		panic(report.RaiseStructural(n.Span, "if statement without a condition"))
	}

	eqs := []logic.Equation{b.condition(cond, ctx)}

	for _, part := range n.Children[1:] {
		if part.Kind != ast.ElsifPart {
			continue
		}

		pc := part.Child(0)
		if pc == nil {
			panic(report.RaiseStructural(part.Span, "elsif without a condition"))
		}

		eqs = append(eqs, b.condition(pc, ctx))
	}

	return logic.NewAnd(eqs...)
}

// buildFor resolves the iterable; the loop parameter's type derives from
// it on demand when references to the parameter resolve.
func (b *Builder) buildFor(n *ast.Node, ctx context) logic.Equation {
	_, iterable := ForStmtParts(n)
	if iterable == nil {
		panic(report.RaiseStructural(n.Span, "for loop without an iterable"))
	}

	switch iterable.Kind {
	case ast.RangeExpr:
		std := b.sc.Std()

		span := std.Integer
		char := false
		iterable.Walk(func(c *ast.Node) bool {
			if c.Kind == ast.CharLit {
				char = true
			}

			return !char
		})
		if char {
			span = std.Character
		}

		return logic.NewAnd(
			b.buildExpr(iterable, ctx),
			bindValue(b.tv(iterable), span, EqMatchingType),
		)

	case ast.Identifier, ast.DottedName, ast.AttributeRef:
		return b.buildExpr(iterable, ctx)

	case ast.SubtypeIndication, ast.DiscreteSubtypeIndication:
		eq, _ := b.buildTypeExpr(iterable, ctx)
		return eq
	}

	panic(report.Raise(iterable.Span, "unsupported iterable form %s", iterable.Kind))
}

func (b *Builder) buildCase(n *ast.Node, ctx context) logic.Equation {
	sel := n.Child(0)
	if sel == nil {
		panic(report.RaiseStructural(n.Span, "case statement without a selector"))
	}

	eqs := []logic.Equation{
		b.buildExpr(sel, ctx),
		&logic.Predicate{Var: b.tv(sel), Pred: PredIsDiscreteType},
	}

	if literalOnly(sel) {
		eqs = append(eqs, &logic.Domain{Var: b.tv(sel), Values: b.sc.Std().Scalars()})
	}

	for _, alt := range n.Children[1:] {
		if alt.Kind != ast.CaseAlternative {
			continue
		}

		choices := alt.FirstOfKind(ast.ChoiceList)
		if choices == nil {
			panic(report.RaiseStructural(alt.Span, "case alternative without choices"))
		}

		for _, ch := range choices.Children {
			eqs = append(eqs, b.buildChoice(ch, b.tv(sel), ctx))
		}
	}

	return logic.NewAnd(eqs...)
}

func (b *Builder) buildRaise(n *ast.Node, ctx context) logic.Equation {
	var name, msg *ast.Node
	for _, c := range n.Children {
		switch {
		case name == nil && (c.Kind == ast.Identifier || c.Kind == ast.DottedName):
			name = c
		case name != nil && msg == nil && c.Kind.IsExpr():
			msg = c
		}
	}

	if name == nil {
		// A bare raise re-raises the active occurrence.
		return logic.True{}
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if ch.ref.Node == nil || ch.ref.Node.Kind != ast.ExceptionDecl {
			continue
		}

		branches = append(branches, ch.eq)
	}

	eqs := []logic.Equation{logic.NewAny(branches...)}
	if msg != nil {
		eqs = append(eqs,
			b.buildExpr(msg, ctx),
			bindValue(b.tv(msg), b.sc.Std().String, EqMatchingType),
		)
	}

	return logic.NewAnd(eqs...)
}

// buildEntryName commits an accept or requeue statement's name to an entry
// declaration visible from the statement.
func (b *Builder) buildEntryName(n *ast.Node, ctx context) logic.Equation {
	var name *ast.Node
	for _, c := range n.Children {
		if c.Kind == ast.Identifier || c.Kind == ast.DottedName {
			name = c
			break
		}
	}

	if name == nil {
		return logic.True{}
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if ch.ref.Node == nil || ch.ref.Node.Kind != ast.EntryDecl {
			continue
		}

		branches = append(branches, ch.eq)
	}

	return logic.NewAny(branches...)
}
