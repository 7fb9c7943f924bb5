package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
	"sable/report"
)

// buildDecl builds the equation of a declaration entry point.  A
// declaration's equation covers its own header expressions only: nested
// declarations and statements are entry points of their own.
func (b *Builder) buildDecl(n *ast.Node, ctx context) logic.Equation {
	switch n.Kind {
	case ast.ObjectDecl, ast.ComponentDecl, ast.DiscriminantSpec, ast.ParamSpec:
		return b.buildObjectLike(n, ctx)
	case ast.NumberDecl:
		return b.buildNumberDecl(n, ctx)
	case ast.TypeDecl:
		return b.buildTypeDecl(n, ctx)
	case ast.SubtypeDecl:
		return b.buildSubtypeDecl(n, ctx)
	case ast.SubpDecl, ast.SubpBody:
		eq, _ := b.buildSubpProfile(n, ctx)
		return eq
	case ast.ExprFunction:
		return b.buildExprFunction(n, ctx)
	case ast.GenericPackageInstantiation:
		return b.buildInstantiation(n, ctx, ast.GenericPackageDecl)
	case ast.GenericSubpInstantiation:
		return b.buildInstantiation(n, ctx, ast.GenericSubpDecl)
	}

	panic(report.RaiseStructural(n.Span, "%s is not a declaration entry point", n.Kind))
}

// buildTypeExpr builds the equation resolving a type expression: the
// disjunction over type denotations of its name, with any constraint bounds
// bound to the chosen type (or its index types for an index constraint).
// It returns the name node whose reference variable carries the committed
// type.
func (b *Builder) buildTypeExpr(te *ast.Node, ctx context) (logic.Equation, *ast.Node) {
	name := te
	var constraint *ast.Node

	switch te.Kind {
	case ast.SubtypeIndication, ast.DiscreteSubtypeIndication:
		name = te.Child(0)
		if len(te.Children) > 1 {
			constraint = te.Child(1)
		}
	}

	if name == nil || (name.Kind != ast.Identifier && name.Kind != ast.DottedName) {
		panic(report.RaiseStructural(te.Span, "malformed type expression"))
	}

	var eqs []logic.Equation

	bounds := constraintExprs(constraint)
	for _, e := range bounds {
		eqs = append(eqs, b.buildExpr(e, ctx))
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(name, ctx) {
		if !IsTypeEntity(ch.ref) {
			continue
		}

		g := envs.NewGuard()
		branch := []logic.Equation{ch.eq}

		idx := IndexTypesOf(b.sc, ch.ref, g)
		for i, e := range bounds {
			expected := ch.ref
			if constraint.Kind == ast.IndexList && i < len(idx) {
				expected = idx[i]
			}

			branch = append(branch, bindValue(b.tv(e), expected, EqMatchingType))
		}

		branches = append(branches, logic.NewAnd(branch...))
	}

	eqs = append(eqs, logic.NewAny(branches...))
	return logic.NewAnd(eqs...), name
}

// constraintExprs flattens a subtype constraint into the expressions it
// binds.  Discriminant constraints are association lists and contribute
// nothing here.
func constraintExprs(c *ast.Node) []*ast.Node {
	switch {
	case c == nil:
		return nil

	case c.Kind == ast.RangeSpec:
		if r := c.Child(0); r != nil {
			return []*ast.Node{r}
		}
		return nil

	case c.Kind == ast.IndexList:
		var out []*ast.Node
		for _, ix := range c.Children {
			if ix.Kind.IsExpr() {
				out = append(out, ix)
			}
		}
		return out

	case c.Kind.IsExpr():
		return []*ast.Node{c}
	}

	return nil
}

// buildObjectLike builds the equation of an object, component, discriminant
// or parameter declaration: the type expression fixes the expected type of
// the initialization or default expression.
func (b *Builder) buildObjectLike(n *ast.Node, ctx context) logic.Equation {
	te, init := declParts(n)

	var eqs []logic.Equation
	var typeName *ast.Node

	if te != nil {
		teEq, name := b.buildTypeExpr(te, ctx)
		eqs = append(eqs, teEq)
		typeName = name
	} else if td := typeDefChild(n); td != nil {
		// An anonymous array or access definition resolves its internals
		// but yields no entity to type the initializer against.
		eqs = append(eqs, b.buildTypeDef(td, ctx))
	} else {
		panic(report.RaiseStructural(n.Span, "%s without a type expression", n.Kind))
	}

	if init != nil {
		eqs = append(eqs, b.buildExpr(init, ctx))
		if typeName != nil {
			eqs = append(eqs, bindVar(b.tv(init), b.rv(typeName), ConvCanonicalType, EqMatchingType))
		}
	}

	// A renamed object resolves like an initializer of the declared type.
	if rc := n.FirstOfKind(ast.RenamingClause); rc != nil && len(rc.Children) > 0 {
		renamed := rc.Child(0)
		eqs = append(eqs, b.buildExpr(renamed, ctx))
		if typeName != nil {
			eqs = append(eqs, bindVar(b.tv(renamed), b.rv(typeName), ConvCanonicalType, EqMatchingType))
		}
	}

	return logic.NewAnd(eqs...)
}

func typeDefChild(n *ast.Node) *ast.Node {
	for _, c := range n.Children {
		if c.Kind.IsTypeDef() {
			return c
		}
	}

	return nil
}

// buildNumberDecl types a named number from its literal class: the domain
// restricts the static expression to the universal candidates and the
// literal predicates narrow it.
func (b *Builder) buildNumberDecl(n *ast.Node, ctx context) logic.Equation {
	_, init := declParts(n)
	if init == nil {
		panic(report.RaiseStructural(n.Span, "number declaration without a value"))
	}

	std := b.sc.Std()
	return logic.NewAnd(
		b.buildExpr(init, ctx),
		&logic.Domain{Var: b.tv(init), Values: []envs.Entity{std.Integer, std.Float}},
	)
}

func (b *Builder) buildTypeDecl(n *ast.Node, ctx context) logic.Equation {
	var eqs []logic.Equation
	for _, c := range n.Children {
		if c.Kind.IsTypeDef() {
			eqs = append(eqs, b.buildTypeDef(c, ctx))
		}
	}

	return logic.NewAnd(eqs...)
}

func (b *Builder) buildSubtypeDecl(n *ast.Node, ctx context) logic.Equation {
	for _, c := range n.Children {
		if isTypeExprKind(c.Kind) {
			eq, _ := b.buildTypeExpr(c, ctx)
			return eq
		}
	}

	panic(report.RaiseStructural(n.Span, "subtype declaration without an indication"))
}

// buildTypeDef builds the equation of a type definition's own expressions:
// parent and component type names, index specifications, range and digits
// expressions.  Components, discriminants and enum literals inside the
// definition are separate entry points.
func (b *Builder) buildTypeDef(td *ast.Node, ctx context) logic.Equation {
	std := b.sc.Std()

	bindRange := func(r *ast.Node, t envs.Entity) logic.Equation {
		if r == nil || r.Kind == ast.BoxExpr {
			return logic.True{}
		}

		return logic.NewAnd(b.buildExpr(r, ctx), bindValue(b.tv(r), t, EqMatchingType))
	}

	switch td.Kind {
	case ast.RecordTypeDef, ast.EnumTypeDef, ast.PrivateTypeDef, ast.InterfaceTypeDef:
		return logic.True{}

	case ast.DerivedTypeDef, ast.AccessTypeDef:
		for _, c := range td.Children {
			if isTypeExprKind(c.Kind) {
				eq, _ := b.buildTypeExpr(c, ctx)
				return eq
			}
		}

		panic(report.RaiseStructural(td.Span, "%s without a subject type", td.Kind))

	case ast.ArrayTypeDef:
		var eqs []logic.Equation

		if il := td.FirstOfKind(ast.IndexList); il != nil {
			for _, ix := range il.Children {
				eqs = append(eqs, b.buildIndexSpec(ix, ctx))
			}
		}

		for _, c := range td.Children {
			if isTypeExprKind(c.Kind) {
				eq, _ := b.buildTypeExpr(c, ctx)
				eqs = append(eqs, eq)
				break
			}
		}

		return logic.NewAnd(eqs...)

	case ast.SignedIntTypeDef:
		return bindRange(rangeExprOf(td), std.Integer)

	case ast.ModIntTypeDef:
		for _, c := range td.Children {
			if c.Kind.IsExpr() {
				return bindRange(c, std.Integer)
			}
		}

		return logic.True{}

	case ast.FloatTypeDef, ast.OrdinaryFixedTypeDef, ast.DecimalFixedTypeDef:
		// The digits/delta expression is integral respectively real; the
		// optional range constrains the type's own class.
		first := std.Float
		if td.Kind == ast.FloatTypeDef {
			first = std.Integer
		}

		var eqs []logic.Equation
		for _, c := range td.Children {
			if c.Kind == ast.RangeSpec {
				eqs = append(eqs, bindRange(c.Child(0), std.Float))
				continue
			}

			if c.Kind.IsExpr() {
				eqs = append(eqs, bindRange(c, first))
				first = std.Float
			}
		}

		return logic.NewAnd(eqs...)
	}

	panic(report.RaiseStructural(td.Span, "unsupported type definition %s", td.Kind))
}

func rangeExprOf(td *ast.Node) *ast.Node {
	if rs := td.FirstOfKind(ast.RangeSpec); rs != nil {
		return rs.Child(0)
	}

	return td.FirstOfKind(ast.RangeExpr)
}

// buildIndexSpec builds one array index specification: a type name, a
// constrained indication or a bare integer range.
func (b *Builder) buildIndexSpec(ix *ast.Node, ctx context) logic.Equation {
	switch ix.Kind {
	case ast.UnconstrainedArrayIndex:
		name := ix.Child(0)
		if name == nil {
			panic(report.RaiseStructural(ix.Span, "index without a type name"))
		}

		eq, _ := b.buildTypeExpr(name, ctx)
		return eq

	case ast.SubtypeIndication, ast.DiscreteSubtypeIndication,
		ast.Identifier, ast.DottedName:
		eq, _ := b.buildTypeExpr(ix, ctx)
		return eq

	case ast.RangeExpr:
		return logic.NewAnd(
			b.buildExpr(ix, ctx),
			bindValue(b.tv(ix), b.sc.Std().Integer, EqMatchingType),
		)

	case ast.RangeSpec:
		if r := ix.Child(0); r != nil {
			return b.buildIndexSpec(r, ctx)
		}
	}

	panic(report.RaiseStructural(ix.Span, "unsupported index form %s", ix.Kind))
}

// buildSubpProfile builds the result type equation of a subprogram
// declaration or body.  Parameter specifications are their own entry
// points; procedures contribute nothing.
func (b *Builder) buildSubpProfile(n *ast.Node, ctx context) (logic.Equation, *ast.Node) {
	spec := SubpSpecOf(n)
	if spec == nil {
		panic(report.RaiseStructural(n.Span, "%s without a subprogram spec", n.Kind))
	}

	rte := resultTypeExpr(spec)
	if rte == nil {
		return logic.True{}, nil
	}

	return b.buildTypeExpr(rte, ctx)
}

// buildExprFunction resolves the profile in the declaring scope and the
// body expression in the function's own scope, typed by the result.
func (b *Builder) buildExprFunction(n *ast.Node, ctx context) logic.Equation {
	profileEq, resultName := b.buildSubpProfile(n, ctx)
	if resultName == nil {
		panic(report.RaiseStructural(n.Span, "expression function without a result type"))
	}

	var body *ast.Node
	for _, c := range n.Children {
		if c.Kind.IsExpr() {
			body = c
			break
		}
	}

	if body == nil {
		panic(report.RaiseStructural(n.Span, "expression function without a body"))
	}

	inner := context{env: b.sc.EnclosingEnv(body)}

	return logic.NewAnd(
		profileEq,
		b.buildExpr(body, inner),
		bindVar(b.tv(body), b.rv(resultName), ConvCanonicalType, EqMatchingType),
	)
}

// -----------------------------------------------------------------------------

// formalSlot is one generic formal an instantiation actual can match.
type formalSlot struct {
	name string
	decl *ast.Node
}

func (b *Builder) genericFormalSlots(inst *ast.Node) []formalSlot {
	target, ok := b.sc.InstanceTarget(inst)
	if !ok {
		return nil
	}

	gfp := target.FirstOfKind(ast.GenericFormalPart)
	if gfp == nil {
		return nil
	}

	var slots []formalSlot
	for _, d := range gfp.Children {
		switch d.Kind {
		case ast.GenericFormalTypeDecl, ast.GenericFormalObjDecl,
			ast.GenericFormalSubpDecl, ast.GenericFormalPackageDecl:
			for _, dn := range DefiningNamesOf(d) {
				slots = append(slots, formalSlot{
					name: envs.Fold(DeclaredSymbol(dn)),
					decl: d,
				})
			}
		}
	}

	return slots
}

// buildInstantiation builds the equation of a generic instantiation: the
// generic name committed to a declaration of the wanted kind, plus one
// conjunct per actual.  Name actuals commit references filtered by the
// formal they fill; value actuals for formal objects are typed through the
// instantiation's own rebinding chain, under which the formal's type name
// resolves to the actual type.
func (b *Builder) buildInstantiation(n *ast.Node, ctx context, want ast.Kind) logic.Equation {
	var genName *ast.Node
	for _, c := range n.Children {
		if c.Kind == ast.Identifier || c.Kind == ast.DottedName {
			genName = c
			break
		}
	}

	if genName == nil {
		panic(report.RaiseStructural(n.Span, "instantiation without a generic name"))
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(genName, ctx) {
		if ch.ref.Node == nil || ch.ref.Node.Kind != want {
			continue
		}

		branches = append(branches, ch.eq)
	}

	eqs := []logic.Equation{logic.NewAny(branches...)}

	args := splitActuals(n.FirstOfKind(ast.ActualsList))
	if len(args) == 0 {
		return logic.NewAnd(eqs...)
	}

	slots := b.genericFormalSlots(n)

	var instChain []*envs.Rebinding
	if de, ok := b.sc.DesignatedEnv(n); ok {
		instChain = de.Chain
	}

	next := 0
	named := false
	for _, a := range args {
		var slot *formalSlot

		if a.desig == nil {
			if !named && next < len(slots) {
				slot = &slots[next]
				next++
			}
		} else {
			named = true
			sym := envs.Fold(a.desig.Text)
			for i := range slots {
				if slots[i].name == sym {
					slot = &slots[i]
					break
				}
			}

			if slot != nil {
				eqs = append(eqs, bindValue(b.rv(a.desig), envs.Entity{Node: slot.decl}, ""))
			}
		}

		eqs = append(eqs, b.buildActual(a.expr, slot, instChain, ctx))
	}

	return logic.NewAnd(eqs...)
}

// buildActual builds one instantiation actual.  Formal objects take value
// expressions typed by the formal's declared type resolved under the
// instantiation chain; every other formal takes a name whose denotations
// are filtered by the formal's kind.
func (b *Builder) buildActual(actual *ast.Node, slot *formalSlot, chain []*envs.Rebinding, ctx context) logic.Equation {
	isName := actual.Kind == ast.Identifier || actual.Kind == ast.DottedName

	if slot != nil && slot.decl.Kind == ast.GenericFormalObjDecl || !isName {
		eq := b.buildExpr(actual, ctx)

		if slot != nil {
			if t, ok := b.formalObjType(slot, chain); ok {
				eq = logic.NewAnd(eq, bindValue(b.tv(actual), t, EqMatchingType))
			}
		}

		return eq
	}

	var branches []logic.Equation
	for _, ch := range b.nameChoices(actual, ctx) {
		if slot != nil && !b.actualFits(ch.ref, slot, chain) {
			continue
		}

		branches = append(branches, ch.eq)
	}

	return logic.NewAny(branches...)
}

// formalObjType resolves a formal object's declared type under the
// instantiation chain, where formal type names rebind to the actual types.
func (b *Builder) formalObjType(slot *formalSlot, chain []*envs.Rebinding) (envs.Entity, bool) {
	te, _ := declParts(slot.decl)
	env := b.sc.DeclaredIn(slot.decl)
	if te == nil || env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: chain}
	return ResolveName(b.sc, ce, te, 0, envs.NewGuard(), IsTypeEntity)
}

// actualFits reports whether a denotation can fill the formal: types for
// formal types, callables with a compatible shape for formal subprograms,
// scopes for formal packages.
func (b *Builder) actualFits(c envs.Entity, slot *formalSlot, chain []*envs.Rebinding) bool {
	switch slot.decl.Kind {
	case ast.GenericFormalTypeDecl:
		return IsTypeEntity(c)

	case ast.GenericFormalSubpDecl:
		if !IsCallableEntity(c) {
			return false
		}

		g := envs.NewGuard()
		ff, fres, ok := FormalsOf(b.sc, envs.Entity{Node: slot.decl, Chain: chain}, g)
		if !ok {
			return true
		}

		cf, cres, ok := FormalsOf(b.sc, c, g)
		if !ok {
			return false
		}

		return len(ff) == len(cf) && fres.IsNull() == cres.IsNull()

	case ast.GenericFormalPackageDecl:
		return IsScopeEntity(c)
	}

	return true
}
