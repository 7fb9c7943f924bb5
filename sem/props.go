package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/util"
)

// This file computes semantic properties of entities by direct environment
// lookup: the type a declaration gives its names, the canonical form of a
// type, the scope a prefix opens, a callable's formal profile.  The
// equation builder calls them while constructing equations and the named
// relations call them while the solver evaluates constraints; both paths
// thread the caller's cycle guard through every nested lookup.

// typeWalkBound caps canonicalization and derivation walks so a malformed
// subtype or derivation cycle degrades to a stop instead of spinning.
const typeWalkBound = 32

// IsTypeEntity reports whether the entity denotes a type declaration.
func IsTypeEntity(e envs.Entity) bool {
	if e.IsNull() {
		return false
	}

	switch e.Node.Kind {
	case ast.TypeDecl, ast.IncompleteTypeDecl, ast.SubtypeDecl,
		ast.TaskTypeDecl, ast.ProtectedTypeDecl, ast.GenericFormalTypeDecl:
		return true
	}

	return false
}

// IsScopeEntity reports whether the entity opens a declarative scope a
// dotted name can select from.
func IsScopeEntity(e envs.Entity) bool {
	if e.IsNull() {
		return false
	}

	switch e.Node.Kind {
	case ast.PackageDecl, ast.GenericPackageDecl, ast.PackageRenamingDecl,
		ast.GenericPackageInstantiation,
		ast.SingleTaskDecl, ast.SingleProtectedDecl:
		return true
	}

	return false
}

// IsCallableEntity reports whether the entity may be invoked with actuals.
func IsCallableEntity(e envs.Entity) bool {
	if e.IsNull() {
		return false
	}

	switch e.Node.Kind {
	case ast.SubpDecl, ast.AbstractSubpDecl, ast.NullSubpDecl,
		ast.ExprFunction, ast.SubpBody, ast.SubpBodyStub,
		ast.SubpRenamingDecl, ast.EntryDecl, ast.GenericSubpInstantiation,
		ast.GenericFormalSubpDecl:
		return true
	}

	return false
}

// anyEntity is the candidate filter that accepts everything.
func anyEntity(envs.Entity) bool { return true }

// -----------------------------------------------------------------------------

// ResolveName resolves a name used outside an equation (type expressions,
// use clauses, instantiation targets) by direct lookup, returning the first
// visible candidate satisfying the filter.  Dotted names resolve their
// prefix to a scope first and select the suffix inside it.
func ResolveName(sc Scopes, ce envs.ChainedEnv, name *ast.Node, fromTick int, g *envs.Guard, want func(envs.Entity) bool) (envs.Entity, bool) {
	switch name.Kind {
	case ast.SubtypeIndication, ast.DiscreteSubtypeIndication:
		if len(name.Children) == 0 {
			return envs.Null, false
		}

		return ResolveName(sc, ce, name.Child(0), fromTick, g, want)

	case ast.Identifier:
		cands := envs.Get(ce, name.Text, envs.LookupOptions{
			Recursive: true,
			FromTick:  fromTick,
			Guard:     g,
		})

		for _, c := range cands {
			if want(c) {
				return c, true
			}
		}

	case ast.DottedName:
		prefix, ok := ResolveName(sc, ce, name.Child(0), fromTick, g, anyEntity)
		if !ok {
			return envs.Null, false
		}

		scope, _, ok := DesignatedScopeOf(sc, prefix, g)
		if !ok {
			return envs.Null, false
		}

		suffix := name.Child(len(name.Children) - 1)
		if suffix == nil || suffix.Kind != ast.Identifier {
			return envs.Null, false
		}

		cands := envs.Get(scope, suffix.Text, envs.LookupOptions{
			FromTick: fromTick,
			Guard:    g,
		})

		for _, c := range cands {
			if want(c) {
				return c, true
			}
		}
	}

	return envs.Null, false
}

// DesignatedScopeOf returns the environment a prefix entity opens for
// selection: a package's declarative region, a type's own environment, or
// for an object the environment of its type, dereferencing access values
// implicitly.  The second result reports whether an implicit dereference
// happened on the way.
func DesignatedScopeOf(sc Scopes, e envs.Entity, g *envs.Guard) (envs.ChainedEnv, bool, bool) {
	if e.IsNull() {
		return envs.ChainedEnv{}, false, false
	}

	switch e.Node.Kind {
	case ast.PackageDecl, ast.GenericPackageDecl, ast.GenericPackageInstantiation,
		ast.SingleTaskDecl, ast.SingleProtectedDecl,
		ast.TypeDecl, ast.TaskTypeDecl, ast.ProtectedTypeDecl:
		ce, ok := sc.DesignatedEnv(e.Node)
		return ce.Extend(e.Chain), false, ok

	case ast.GenericFormalTypeDecl:
		actual := CanonicalType(sc, e, g)
		if actual.Equal(e) {
			return envs.ChainedEnv{}, false, false
		}

		return DesignatedScopeOf(sc, actual, g)

	case ast.GenericFormalPackageDecl:
		actual, ok := formalActual(sc, e, g)
		if !ok {
			return envs.ChainedEnv{}, false, false
		}

		return DesignatedScopeOf(sc, actual, g)

	case ast.PackageRenamingDecl:
		renamed, ok := renamedEntity(sc, e, g)
		if !ok {
			return envs.ChainedEnv{}, false, false
		}

		return DesignatedScopeOf(sc, renamed, g)

	case ast.SubtypeDecl:
		return DesignatedScopeOf(sc, CanonicalType(sc, e, g), g)
	}

	// Objects open their type's environment, looking through one level of
	// access indirection.
	t, ok := TypeOfRef(sc, e, g)
	if !ok {
		return envs.ChainedEnv{}, false, false
	}

	t = CanonicalType(sc, t, g)

	deref := false
	if at, ok := AccessedType(sc, t, g); ok {
		t = CanonicalType(sc, at, g)
		deref = true
	}

	ce, ok := sc.DesignatedEnv(t.Node)
	return ce.Extend(t.Chain), deref, ok
}

// formalActual looks a generic formal's own name up under the entity's
// chain: with a rebinding active the lookup lands in the instantiation's
// actuals environment and yields the actual supplied for the formal.
func formalActual(sc Scopes, e envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	env := sc.DeclaredIn(e.Node)
	names := DefiningNamesOf(e.Node)
	if env == nil || len(names) == 0 || len(e.Chain) == 0 {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: e.Chain}
	for _, c := range envs.Get(ce, DeclaredSymbol(names[0]), envs.LookupOptions{Guard: g}) {
		if !c.Equal(e) {
			return c, true
		}
	}

	return envs.Null, false
}

// renamedEntity resolves the target of a renaming declaration.
func renamedEntity(sc Scopes, e envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	clause := e.Node.FirstOfKind(ast.RenamingClause)
	if clause == nil || len(clause.Children) == 0 {
		return envs.Null, false
	}

	env := sc.DeclaredIn(e.Node)
	if env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: e.Chain}
	return ResolveName(sc, ce, clause.Child(0), sc.TickOf(e.Node), g, anyEntity)
}

// -----------------------------------------------------------------------------

// declParts splits an object-like declaration (object, component,
// discriminant, parameter, formal object, number) into its type expression
// and its initialization/default expression, either of which may be absent.
func declParts(decl *ast.Node) (typeExpr, initExpr *ast.Node) {
	for _, c := range decl.Children {
		switch c.Kind {
		case ast.DefiningNameList, ast.ConstantNode, ast.AliasedNode,
			ast.NotNullNode, ast.AspectSpec:
			continue
		}

		if typeExpr == nil && isTypeExprKind(c.Kind) && decl.Kind != ast.NumberDecl {
			typeExpr = c
			continue
		}

		if initExpr == nil && c.Kind.IsExpr() {
			initExpr = c
		}
	}

	return typeExpr, initExpr
}

// isTypeExprKind reports whether the kind can stand in type-expression
// position.
func isTypeExprKind(k ast.Kind) bool {
	switch k {
	case ast.Identifier, ast.DottedName, ast.SubtypeIndication,
		ast.DiscreteSubtypeIndication:
		return true
	}

	return false
}

// TypeOfRef returns the type entity of a referenced declaration: the
// declared type of an object, the enum type of a literal, the return type
// of a parameterless function, a type itself for type declarations.  It
// returns false for declarations that denote no value (packages,
// procedures referenced outside a call).
func TypeOfRef(sc Scopes, e envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	if e.IsNull() {
		return envs.Null, false
	}

	switch e.Node.Kind {
	case ast.TypeDecl, ast.IncompleteTypeDecl, ast.SubtypeDecl,
		ast.TaskTypeDecl, ast.ProtectedTypeDecl, ast.GenericFormalTypeDecl:
		return e, true

	case ast.ObjectDecl, ast.ComponentDecl, ast.DiscriminantSpec,
		ast.ParamSpec, ast.GenericFormalObjDecl:
		return declaredType(sc, e, g)

	case ast.NumberDecl:
		// Named numbers type after their literal class.
		_, init := declParts(e.Node)
		if init == nil {
			return envs.Null, false
		}

		real := false
		init.Walk(func(n *ast.Node) bool {
			if n.Kind == ast.RealLit {
				real = true
			}

			return !real
		})

		if real {
			return sc.Std().Float, true
		}

		return sc.Std().Integer, true

	case ast.EnumLiteralDecl:
		owner := e.Node.EnclosingKind(ast.TypeDecl)
		if owner == nil {
			return envs.Null, false
		}

		return envs.Entity{Node: owner, Chain: e.Chain}, true

	case ast.ExceptionDecl, ast.PackageDecl, ast.GenericPackageDecl,
		ast.GenericPackageInstantiation, ast.PackageRenamingDecl:
		return envs.Null, false

	case ast.Identifier:
		// Loop parameters are registered under their bare identifier.
		if e.Node.Parent != nil && e.Node.Parent.Kind == ast.ForStmt {
			return iterationType(sc, e.Node.Parent, g)
		}

		return envs.Null, false
	}

	// A parameterless function denotes an implicit call.
	if IsCallableEntity(e) {
		formals, result, ok := FormalsOf(sc, e, g)
		if !ok || result.IsNull() {
			return envs.Null, false
		}

		for _, f := range formals {
			if !f.HasDefault {
				return envs.Null, false
			}
		}

		return result, true
	}

	return envs.Null, false
}

// declaredType resolves the type expression of an object-like declaration
// in the environment it was declared in, under the entity's chain and
// bounded by the declaration's own tick.
func declaredType(sc Scopes, e envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	te, _ := declParts(e.Node)
	if te == nil {
		return envs.Null, false
	}

	env := sc.DeclaredIn(e.Node)
	if env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: e.Chain}
	return ResolveName(sc, ce, te, sc.TickOf(e.Node), g, IsTypeEntity)
}

// CanonicalType resolves subtype chains and generic formal substitutions to
// the underlying type declaration.  Derived types are distinct types and
// are not looked through.
func CanonicalType(sc Scopes, t envs.Entity, g *envs.Guard) envs.Entity {
	for i := 0; i < typeWalkBound; i++ {
		if t.IsNull() {
			return t
		}

		switch t.Node.Kind {
		case ast.SubtypeDecl:
			te := t.Node.FirstOfKind(ast.SubtypeIndication)
			if te == nil {
				te = t.Node.FirstOfKind(ast.Identifier)
			}

			env := sc.DeclaredIn(t.Node)
			if te == nil || env == nil {
				return t
			}

			ce := envs.ChainedEnv{Env: env, Chain: t.Chain}
			parent, ok := ResolveName(sc, ce, te, sc.TickOf(t.Node), g, IsTypeEntity)
			if !ok || parent.Equal(t) {
				return t
			}

			t = parent

		case ast.GenericFormalTypeDecl:
			// Look the formal's own name up through its declaring
			// environment under the chain: an active rebinding redirects to
			// the actuals environment, yielding the instantiation's actual.
			env := sc.DeclaredIn(t.Node)
			names := DefiningNamesOf(t.Node)
			if env == nil || len(names) == 0 || len(t.Chain) == 0 {
				return t
			}

			ce := envs.ChainedEnv{Env: env, Chain: t.Chain}
			cands := envs.Get(ce, DeclaredSymbol(names[0]), envs.LookupOptions{Guard: g})

			advanced := false
			for _, c := range cands {
				if IsTypeEntity(c) && !c.Equal(t) {
					t = c
					advanced = true
					break
				}
			}

			if !advanced {
				return t
			}

		default:
			return t
		}
	}

	return t
}

// SameType reports whether two type entities canonicalize to the same
// declaration under the same rebinding chain.  Metadata is not part of a
// type's identity.
func SameType(sc Scopes, a, b envs.Entity, g *envs.Guard) bool {
	a = CanonicalType(sc, a, g)
	b = CanonicalType(sc, b, g)

	if a.Node != b.Node || len(a.Chain) != len(b.Chain) {
		return false
	}

	for i, r := range a.Chain {
		if b.Chain[i] != r {
			return false
		}
	}

	return true
}

// typeDefOf returns the type definition node under a type declaration.
func typeDefOf(t envs.Entity) *ast.Node {
	if t.IsNull() || t.Node.Kind != ast.TypeDecl {
		return nil
	}

	for _, c := range t.Node.Children {
		if c.Kind.IsTypeDef() {
			return c
		}
	}

	return nil
}

// BaseTypeDef canonicalizes the type and walks its derivation chain to the
// defining type definition, returning the definition node and the entity
// that owns it (whose chain governs lookups inside the definition).
func BaseTypeDef(sc Scopes, t envs.Entity, g *envs.Guard) (*ast.Node, envs.Entity) {
	t = CanonicalType(sc, t, g)

	for i := 0; i < typeWalkBound; i++ {
		td := typeDefOf(t)
		if td == nil {
			return nil, t
		}

		if td.Kind != ast.DerivedTypeDef {
			return td, t
		}

		parent, ok := derivationParent(sc, t, td, g)
		if !ok {
			return td, t
		}

		t = parent
	}

	return nil, t
}

// derivationParent resolves the parent type named by a derived type
// definition.
func derivationParent(sc Scopes, t envs.Entity, td *ast.Node, g *envs.Guard) (envs.Entity, bool) {
	te := td.FirstOfKind(ast.SubtypeIndication)
	if te == nil {
		te = td.FirstOfKind(ast.Identifier)
	}
	if te == nil {
		te = td.FirstOfKind(ast.DottedName)
	}

	env := sc.DeclaredIn(t.Node)
	if te == nil || env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: t.Chain}
	parent, ok := ResolveName(sc, ce, te, sc.TickOf(t.Node), g, IsTypeEntity)
	if !ok || parent.Equal(t) {
		return envs.Null, false
	}

	return CanonicalType(sc, parent, g), true
}

// DerivesFrom reports whether t is ancestor or derives from it, directly or
// transitively.
func DerivesFrom(sc Scopes, t, ancestor envs.Entity, g *envs.Guard) bool {
	t = CanonicalType(sc, t, g)

	for i := 0; i < typeWalkBound; i++ {
		if SameType(sc, t, ancestor, g) {
			return true
		}

		td := typeDefOf(t)
		if td == nil || td.Kind != ast.DerivedTypeDef {
			return false
		}

		parent, ok := derivationParent(sc, t, td, g)
		if !ok {
			return false
		}

		t = parent
	}

	return false
}

// AccessedType returns the type designated by an access type, looking
// through derivation.
func AccessedType(sc Scopes, t envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	td, owner := BaseTypeDef(sc, t, g)
	if td == nil || td.Kind != ast.AccessTypeDef {
		return envs.Null, false
	}

	var te *ast.Node
	for _, c := range td.Children {
		if isTypeExprKind(c.Kind) {
			te = c
			break
		}
	}

	env := sc.DeclaredIn(owner.Node)
	if te == nil || env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: owner.Chain}
	return ResolveName(sc, ce, te, 0, g, IsTypeEntity)
}

// ComponentTypeOf returns an array type's component type.
func ComponentTypeOf(sc Scopes, t envs.Entity, g *envs.Guard) (envs.Entity, bool) {
	td, owner := BaseTypeDef(sc, t, g)
	if td == nil || td.Kind != ast.ArrayTypeDef {
		return envs.Null, false
	}

	var te *ast.Node
	for _, c := range td.Children {
		if c.Kind == ast.IndexList {
			continue
		}

		if isTypeExprKind(c.Kind) {
			te = c
			break
		}
	}

	env := sc.DeclaredIn(owner.Node)
	if te == nil || env == nil {
		return envs.Null, false
	}

	ce := envs.ChainedEnv{Env: env, Chain: owner.Chain}
	return ResolveName(sc, ce, te, 0, g, IsTypeEntity)
}

// IndexTypesOf returns an array type's index types in order.  A range-form
// index (eg. a literal range) types as the predefined integer type.
func IndexTypesOf(sc Scopes, t envs.Entity, g *envs.Guard) []envs.Entity {
	td, owner := BaseTypeDef(sc, t, g)
	if td == nil || td.Kind != ast.ArrayTypeDef {
		return nil
	}

	il := td.FirstOfKind(ast.IndexList)
	if il == nil {
		return nil
	}

	env := sc.DeclaredIn(owner.Node)

	var idx []envs.Entity
	for _, c := range il.Children {
		switch c.Kind {
		case ast.RangeExpr, ast.RangeSpec:
			idx = append(idx, sc.Std().Integer)

		case ast.UnconstrainedArrayIndex:
			if len(c.Children) > 0 && env != nil {
				ce := envs.ChainedEnv{Env: env, Chain: owner.Chain}
				if it, ok := ResolveName(sc, ce, c.Child(0), 0, g, IsTypeEntity); ok {
					idx = append(idx, it)
					continue
				}
			}

			idx = append(idx, sc.Std().Integer)

		default:
			if isTypeExprKind(c.Kind) && env != nil {
				ce := envs.ChainedEnv{Env: env, Chain: owner.Chain}
				if it, ok := ResolveName(sc, ce, c, 0, g, IsTypeEntity); ok {
					idx = append(idx, it)
					continue
				}
			}

			idx = append(idx, sc.Std().Integer)
		}
	}

	return idx
}

// -----------------------------------------------------------------------------

// Formal describes one formal parameter (or one record component) of a
// candidate, with its type resolved under the candidate's chain.
type Formal struct {
	// Spec is the parameter specification (or component declaration) the
	// formal comes from.
	Spec *ast.Node

	// Name is the folded defining name.
	Name string

	// Type is the resolved formal type.
	Type envs.Entity

	// HasDefault marks formals an unmatched actual may leave to their
	// default expression.
	HasDefault bool
}

// FormalsOf returns a callable entity's formal profile and result type.
// Procedures yield a null result.  It returns false when the entity is not
// callable or its profile does not resolve, which disqualifies it as an
// overload candidate.
func FormalsOf(sc Scopes, c envs.Entity, g *envs.Guard) ([]Formal, envs.Entity, bool) {
	if c.IsNull() {
		return nil, envs.Null, false
	}

	node := c.Node
	chain := c.Chain

	if node.Kind == ast.GenericSubpInstantiation {
		target, ok := sc.InstanceTarget(node)
		if !ok {
			return nil, envs.Null, false
		}

		// The instantiation's rebinding chain lives on its designated
		// environment; formal types of the generic's profile resolve to the
		// actuals through it.
		if de, ok := sc.DesignatedEnv(node); ok {
			chain = (envs.ChainedEnv{Chain: chain}).Extend(de.Chain).Chain
		}

		node = target
	}

	if node.Kind == ast.SubpRenamingDecl {
		if renamed, ok := renamedEntity(sc, envs.Entity{Node: node, Chain: chain}, g); ok {
			return FormalsOf(sc, renamed, g)
		}
	}

	spec := SubpSpecOf(node)
	if spec == nil {
		return nil, envs.Null, false
	}

	var formals []Formal

	if psl := spec.FirstOfKind(ast.ParamSpecList); psl != nil {
		for _, ps := range psl.Children {
			if ps.Kind != ast.ParamSpec {
				continue
			}

			te, def := declParts(ps)
			env := sc.DeclaredIn(ps)
			if te == nil || env == nil {
				return nil, envs.Null, false
			}

			ce := envs.ChainedEnv{Env: env, Chain: chain}
			typ, ok := ResolveName(sc, ce, te, 0, g, IsTypeEntity)
			if !ok {
				return nil, envs.Null, false
			}

			for _, dn := range DefiningNamesOf(ps) {
				formals = append(formals, Formal{
					Spec:       ps,
					Name:       envs.Fold(DeclaredSymbol(dn)),
					Type:       typ,
					HasDefault: def != nil,
				})
			}
		}
	}

	result := envs.Null
	if rte := resultTypeExpr(spec); rte != nil {
		// The result resolves inside the profile's own scope, where a
		// generic's formal part is visible.
		ce := envs.ChainedEnv{Env: sc.EnclosingEnv(rte).Env, Chain: chain}
		r, ok := ResolveName(sc, ce, rte, 0, g, IsTypeEntity)
		if !ok {
			return nil, envs.Null, false
		}

		result = r
	}

	return formals, result, true
}

// resultTypeExpr returns the return-type expression of a subprogram spec,
// nil for procedures.
func resultTypeExpr(spec *ast.Node) *ast.Node {
	for _, c := range spec.Children {
		switch c.Kind {
		case ast.DefiningName, ast.ParamSpecList:
			continue
		}

		if isTypeExprKind(c.Kind) {
			return c
		}
	}

	return nil
}

// ComponentsOf returns a record type's components, base type's components
// first when the type is a record extension, discriminants ahead of
// ordinary components at each level.
func ComponentsOf(sc Scopes, t envs.Entity, g *envs.Guard) []Formal {
	var comps []Formal
	collectComponents(sc, CanonicalType(sc, t, g), g, &comps, 0)
	return comps
}

func collectComponents(sc Scopes, t envs.Entity, g *envs.Guard, out *[]Formal, depth int) {
	if depth >= typeWalkBound || t.IsNull() {
		return
	}

	td := typeDefOf(t)
	if td == nil {
		return
	}

	if td.Kind == ast.DerivedTypeDef {
		if parent, ok := derivationParent(sc, t, td, g); ok {
			collectComponents(sc, parent, g, out, depth+1)
		}

		// A record extension's own components follow the inherited ones.
		if ext := td.FirstOfKind(ast.RecordTypeDef); ext != nil {
			collectRecordParts(sc, t, ext, g, out)
		}

		return
	}

	if td.Kind != ast.RecordTypeDef {
		return
	}

	if kdp := t.Node.FirstOfKind(ast.KnownDiscriminantPart); kdp != nil {
		for _, ds := range kdp.Children {
			if ds.Kind == ast.DiscriminantSpec {
				appendComponent(sc, t, ds, g, out)
			}
		}
	}

	collectRecordParts(sc, t, td, g, out)
}

func collectRecordParts(sc Scopes, t envs.Entity, record *ast.Node, g *envs.Guard, out *[]Formal) {
	cl := record.FirstOfKind(ast.ComponentList)
	if cl == nil {
		return
	}

	for _, cd := range cl.Children {
		if cd.Kind == ast.ComponentDecl {
			appendComponent(sc, t, cd, g, out)
		}
	}
}

func appendComponent(sc Scopes, t envs.Entity, cd *ast.Node, g *envs.Guard, out *[]Formal) {
	te, def := declParts(cd)
	env := sc.DeclaredIn(cd)
	if te == nil || env == nil {
		return
	}

	ce := envs.ChainedEnv{Env: env, Chain: t.Chain}
	typ, ok := ResolveName(sc, ce, te, 0, g, IsTypeEntity)
	if !ok {
		return
	}

	for _, dn := range DefiningNamesOf(cd) {
		*out = append(*out, Formal{
			Spec:       cd,
			Name:       envs.Fold(DeclaredSymbol(dn)),
			Type:       typ,
			HasDefault: def != nil,
		})
	}
}

// MandatoryCount returns how many formals lack defaults: the lower arity
// bound of a call to the profile.
func MandatoryCount(formals []Formal) int {
	n := 0
	for _, f := range formals {
		if !f.HasDefault {
			n++
		}
	}

	return n
}

// -----------------------------------------------------------------------------

// ForStmtParts splits a for statement into its loop parameter and iterable
// expression.
func ForStmtParts(forStmt *ast.Node) (param, iterable *ast.Node) {
	for _, c := range forStmt.Children {
		switch c.Kind {
		case ast.ReverseNode, ast.StmtList:
			continue
		}

		if param == nil && c.Kind == ast.Identifier {
			param = c
			continue
		}

		if param != nil && iterable == nil {
			iterable = c
		}
	}

	return param, iterable
}

// iterationType derives the loop parameter's type from the for statement's
// iterable: a discrete type name iterates itself, an array-valued prefix of
// a Range attribute iterates its first index type, a literal range defaults
// to the predefined integer type.
func iterationType(sc Scopes, forStmt *ast.Node, g *envs.Guard) (envs.Entity, bool) {
	_, iterable := ForStmtParts(forStmt)
	if iterable == nil {
		return envs.Null, false
	}

	ce := sc.EnclosingEnv(forStmt)

	switch iterable.Kind {
	case ast.RangeExpr:
		char := false
		iterable.Walk(func(n *ast.Node) bool {
			if n.Kind == ast.CharLit {
				char = true
			}

			return !char
		})

		if char {
			return sc.Std().Character, true
		}

		return sc.Std().Integer, true

	case ast.Identifier, ast.DottedName:
		e, ok := ResolveName(sc, ce, iterable, 0, g, anyEntity)
		if !ok {
			return envs.Null, false
		}

		if IsTypeEntity(e) {
			return e, true
		}

		return TypeOfRef(sc, e, g)

	case ast.AttributeRef:
		prefix := iterable.Child(0)
		if prefix == nil {
			return envs.Null, false
		}

		e, ok := ResolveName(sc, ce, prefix, 0, g, anyEntity)
		if !ok {
			return envs.Null, false
		}

		t, ok := TypeOfRef(sc, e, g)
		if !ok {
			return envs.Null, false
		}

		if idx := IndexTypesOf(sc, t, g); len(idx) > 0 {
			return idx[0], true
		}

		return t, true
	}

	return envs.Null, false
}

// filterCandidates keeps the candidates satisfying the filter, preserving
// order.
func filterCandidates(cands []envs.Entity, want func(envs.Entity) bool) []envs.Entity {
	return util.Filter(cands, want)
}

// collapseDottable drops candidates that duplicate an earlier one except for
// the DottableSubp tag.  A type's referenced-env edge re-exposes its
// declaring scope, so lookups that start inside that scope meet the same
// declaration twice, once tagged; only one denotation is real.
func collapseDottable(cands []envs.Entity) []envs.Entity {
	var out []envs.Entity

outer:
	for _, c := range cands {
		bare := c
		bare.MD.DottableSubp = false

		for _, have := range out {
			have.MD.DottableSubp = false
			if have.Equal(bare) {
				continue outer
			}
		}

		out = append(out, c)
	}

	return out
}
