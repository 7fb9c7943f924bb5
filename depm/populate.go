package depm

import (
	"strings"

	"sable/ast"
	"sable/envs"
	"sable/report"
	"sable/sem"
)

// populator drives one unit's population: a structural pass that creates
// environments and registers declarations in source order, then a deferred
// pass that wires generic instantiations and dot-notation edges once the
// whole unit is known.
type populator struct {
	g    *Graph
	unit *Unit

	// parentRegion is the declarative region of the parent unit for child
	// units, where the child's name is registered so siblings reach it by
	// dotted name.
	parentRegion *envs.Environment

	// withAdded dedupes the direct-visibility entries with clauses add.
	withAdded map[string]bool

	// post is the deferred action queue.
	post []func()
}

// populateUnit runs population once per unit.  Callers hold popMu.  A unit
// reached while it is already populating returns immediately: mutually
// referencing units see whatever the in-progress pass has registered so
// far, which mirrors sequential elaboration.
func (g *Graph) populateUnit(u *Unit) {
	if u.state != unitLoaded {
		return
	}

	u.state = unitPopulating
	defer func() { u.state = unitPopulated }()

	defer report.CatchErrors(u.Path, u.Path)

	p := &populator{g: g, unit: u, withAdded: make(map[string]bool)}
	p.run()
}

func (p *populator) run() {
	root := p.unit.Root
	if root.Kind != ast.CompilationUnit {
		panic(report.RaiseStructural(root.Span, "unit root must be a compilation unit, found %s", root.Kind))
	}

	decl := libraryItem(root)
	if decl == nil {
		panic(report.RaiseStructural(root.Span, "compilation unit carries no library item"))
	}
	p.unit.Decl = decl

	ctx := p.contextEnv(root)
	p.unit.env = ctx
	p.g.setScope(root, ctx)

	for _, c := range root.Children {
		if c.Kind == ast.ContextClauseList {
			p.contextClauses(c, ctx)
		}
	}

	p.walk(decl, ctx)

	if p.parentRegion != nil && p.unit.Kind == Specification {
		if dns := sem.DefiningNamesOf(decl); len(dns) > 0 {
			sym := sem.DeclaredSymbol(dns[0])
			p.parentRegion.Add(sym, envs.Entity{Node: decl}, p.g.nextTick())
		}
	}

	for _, action := range p.post {
		action()
	}
	p.post = nil
}

// libraryItem returns the declaration a compilation unit contributes.
func libraryItem(root *ast.Node) *ast.Node {
	for _, c := range root.Children {
		if c.Kind.IsDecl() {
			return c
		}
	}

	return nil
}

// contextEnv builds the unit's context environment.  Root units sit on the
// graph root; child units sit inside their parent's declarative region; a
// package body sits inside the environment of its specification, seeing
// the spec's declarations and everything the spec saw.
func (p *populator) contextEnv(root *ast.Node) *envs.Environment {
	base := p.g.root

	name := p.unit.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if parent, ok := p.g.ensureLocked(name[:i], Specification, true); ok && parent.Decl != nil {
			if ce, ok := p.g.DesignatedEnv(parent.Decl); ok {
				base = ce.Env
				p.parentRegion = ce.Env
			}
		}
	}

	if p.unit.Kind == Body {
		if spec, ok := p.g.ensureLocked(name, Specification, false); ok && spec.Decl != nil {
			switch spec.Decl.Kind {
			case ast.PackageDecl, ast.GenericPackageDecl:
				if ce, ok := p.g.DesignatedEnv(spec.Decl); ok {
					base = ce.Env
				}
			}
		}
	}

	return envs.NewEnvironment(root, base)
}

// -----------------------------------------------------------------------------
// Context clauses.

func (p *populator) contextClauses(list *ast.Node, ctx *envs.Environment) {
	for _, clause := range list.Children {
		switch clause.Kind {
		case ast.WithClause:
			p.withClause(clause, ctx)

		case ast.UsePackageClause:
			p.usePackageClause(clause, ctx)

		case ast.UseTypeClause:
			p.useTypeClause(clause, ctx)
		}
	}
}

// withClause loads each named unit and its ancestors, then makes the name's
// first prefix directly visible: `with A.B;` lets `A.B` resolve as a dotted
// name while only `A` enters the context environment, which is exactly the
// visibility the clause grants.
func (p *populator) withClause(clause *ast.Node, ctx *envs.Environment) {
	for _, name := range clause.Children {
		full := flatName(name)
		if full == "" {
			panic(report.RaiseStructural(clause.Span, "malformed with clause"))
		}

		parts := strings.Split(full, ".")
		for i := range parts {
			dep, ok := p.g.ensureLocked(strings.Join(parts[:i+1], "."), Specification, true)
			if !ok {
				break
			}

			if i == 0 && dep.Decl != nil && !p.withAdded[parts[0]] {
				p.withAdded[parts[0]] = true
				ctx.Add(parts[0], envs.Entity{Node: dep.Decl}, p.g.nextTick())
			}
		}
	}
}

// usePackageClause attaches one referenced-env edge per named package.  The
// target resolves lazily on each lookup, after the unit is fully populated,
// so a use clause may name a package the clause itself cannot yet see
// completely.
func (p *populator) usePackageClause(clause *ast.Node, env *envs.Environment) {
	graph := p.g

	for _, name := range clause.Children {
		env.AddRef(&envs.RefDescriptor{
			Owner: clause,
			Resolve: func(g *envs.Guard) envs.ChainedEnv {
				pkg, ok := sem.ResolveName(graph, envs.Chained(env), name, 0, g, sem.IsScopeEntity)
				if !ok {
					return envs.ChainedEnv{}
				}

				ce, _, ok := sem.DesignatedScopeOf(graph, pkg, g)
				if !ok {
					return envs.ChainedEnv{}
				}

				return ce
			},
		})
	}
}

// useTypeClause exposes only the operator symbols declared alongside the
// named type.
func (p *populator) useTypeClause(clause *ast.Node, env *envs.Environment) {
	graph := p.g

	for _, name := range clause.Children {
		if !isNameKind(name.Kind) {
			continue
		}

		env.AddRef(&envs.RefDescriptor{
			Owner:   clause,
			OpsOnly: true,
			Resolve: func(g *envs.Guard) envs.ChainedEnv {
				t, ok := sem.ResolveName(graph, envs.Chained(env), name, 0, g, sem.IsTypeEntity)
				if !ok {
					return envs.ChainedEnv{}
				}

				declEnv := graph.DeclaredIn(t.Node)
				if declEnv == nil {
					return envs.ChainedEnv{}
				}

				return envs.ChainedEnv{Env: declEnv, Chain: t.Chain}
			},
		})
	}
}

func isNameKind(k ast.Kind) bool {
	return k == ast.Identifier || k == ast.DottedName
}

// flatName renders an Identifier or DottedName as a folded dotted string.
func flatName(n *ast.Node) string {
	switch n.Kind {
	case ast.Identifier:
		return envs.Fold(n.Text)

	case ast.DottedName:
		prefix := flatName(n.Child(0))
		suffix := flatName(n.Child(len(n.Children) - 1))
		if prefix == "" || suffix == "" {
			return ""
		}

		return prefix + "." + suffix
	}

	return ""
}

// -----------------------------------------------------------------------------
// Structural pass.

// walk performs the structural pass under one environment.
func (p *populator) walk(n *ast.Node, env *envs.Environment) {
	switch n.Kind {
	case ast.PragmaNode, ast.AspectSpec:
		return

	case ast.UsePackageClause:
		p.usePackageClause(n, env)
		return

	case ast.UseTypeClause:
		p.useTypeClause(n, env)
		return

	case ast.GenericPackageInstantiation, ast.GenericSubpInstantiation:
		p.registerDecl(n, env)
		tick := p.g.TickOf(n)
		p.post = append(p.post, func() { p.wireInstantiation(n, env, tick) })
		return
	}

	if sem.IntroducesEnv(n.Kind) && n.Kind != ast.CompilationUnit {
		p.enterScope(n, env)
		return
	}

	p.registerDecl(n, env)

	for _, c := range n.Children {
		p.walk(c, env)
	}
}

// registerDecl registers a declaration's defining names, all under one
// tick.
func (p *populator) registerDecl(n *ast.Node, env *envs.Environment) {
	dns := sem.DefiningNamesOf(n)
	if len(dns) == 0 {
		return
	}

	tick := p.g.nextTick()
	for _, dn := range dns {
		env.Add(sem.DeclaredSymbol(dn), envs.Entity{Node: n}, tick)
	}

	p.g.setDeclared(n, env, tick)
}

// enterScope creates the environment a scope-introducing node owns and
// walks its children inside it.  The node's own defining names register in
// the outer environment first, so a declaration never shadows itself.
func (p *populator) enterScope(n *ast.Node, outer *envs.Environment) {
	p.registerDecl(n, outer)

	parent := outer
	if bodyKind(n.Kind) && n != p.unit.Decl {
		if specEnv := p.bodyParent(n, outer); specEnv != nil {
			parent = specEnv
		}
	}

	own := envs.NewEnvironment(n, parent)
	p.g.setScope(n, own)

	switch n.Kind {
	case ast.PackageDecl, ast.SingleTaskDecl, ast.SingleProtectedDecl,
		ast.TaskTypeDecl, ast.ProtectedTypeDecl:
		p.g.setDesignated(n, envs.Chained(own))

	case ast.TypeDecl:
		p.g.setDesignated(n, envs.Chained(own))
		p.queueDottableEdge(n, own, outer)
	}

	switch n.Kind {
	case ast.TypeDecl:
		p.walkTypeDecl(n, own, outer)

	case ast.GenericPackageDecl:
		for _, c := range n.Children {
			p.walk(c, own)
		}

		// The generic designates its inner package's region; lookups into
		// an instantiation reach it under the instantiation's rebinding.
		if pkg := n.FirstOfKind(ast.PackageDecl); pkg != nil {
			if ce, ok := p.g.DesignatedEnv(pkg); ok {
				p.g.setDesignated(n, ce)
			}
		}

	case ast.GenericSubpDecl:
		for _, c := range n.Children {
			p.walk(c, own)
		}

		p.g.setDesignated(n, envs.Chained(own))

	case ast.ForStmt:
		if param, _ := sem.ForStmtParts(n); param != nil {
			own.Add(param.Text, envs.Entity{Node: param}, p.g.nextTick())
		}

		for _, c := range n.Children {
			p.walk(c, own)
		}

	default:
		for _, c := range n.Children {
			p.walk(c, own)
		}
	}
}

// walkTypeDecl walks a type declaration's parts.  Enumeration literals
// register in the scope enclosing the type, like the overloadable functions
// they are; discriminants and components live in the type's own
// environment.
func (p *populator) walkTypeDecl(n *ast.Node, own, outer *envs.Environment) {
	for _, c := range n.Children {
		if c.Kind == ast.EnumTypeDef {
			for _, lit := range c.Children {
				if lit.Kind == ast.EnumLiteralDecl {
					p.registerDecl(lit, outer)
				}
			}

			continue
		}

		p.walk(c, own)
	}
}

// bodyKind lists the completions whose environment chains under the
// completed declaration's.  Subprogram and entry bodies redeclare their
// profiles, so they chain lexically instead.
func bodyKind(k ast.Kind) bool {
	switch k {
	case ast.PackageBody, ast.TaskBody, ast.ProtectedBody:
		return true
	}

	return false
}

// bodyParent finds the environment a nested body completes, located by the
// body's name in the enclosing scope.
func (p *populator) bodyParent(body *ast.Node, outer *envs.Environment) *envs.Environment {
	dn := body.FirstOfKind(ast.DefiningName)
	if dn == nil {
		return nil
	}

	sym := sem.DeclaredSymbol(dn)
	for _, c := range envs.Get(envs.Chained(outer), sym, envs.LookupOptions{Recursive: true}) {
		switch c.Node.Kind {
		case ast.PackageDecl, ast.GenericPackageDecl,
			ast.TaskTypeDecl, ast.ProtectedTypeDecl,
			ast.SingleTaskDecl, ast.SingleProtectedDecl:
			if ce, ok := p.g.DesignatedEnv(c.Node); ok {
				return ce.Env
			}

			if env := p.g.scopeOf(c.Node); env != nil {
				return env
			}
		}
	}

	return nil
}

// queueDottableEdge defers attaching the dot-notation edge: selecting into
// a value of a package-level type also sees the subprograms of the type's
// declaring package, tagged so calls route the prefix into the first
// parameter.
func (p *populator) queueDottableEdge(n *ast.Node, own, declaring *envs.Environment) {
	if declaring.Owner == nil || declaring.Owner.Kind != ast.PackageDecl {
		return
	}

	p.post = append(p.post, func() {
		own.AddRef(&envs.RefDescriptor{
			Owner:   n,
			Post:    true,
			Resolve: func(*envs.Guard) envs.ChainedEnv { return envs.Chained(declaring) },
			Assert: &envs.MetadataAssertion{
				MD:   envs.Metadata{DottableSubp: true},
				Mask: envs.Metadata{DottableSubp: true},
			},
		})
	})
}

// -----------------------------------------------------------------------------
// Deferred pass: generic instantiations.

// instActual is one association of the instantiation's actual part.
type instActual struct {
	desig *ast.Node
	expr  *ast.Node
}

// wireInstantiation resolves one instantiation after the structural pass:
// the generic it targets, the actuals environment, the rebinding switching
// the generic's formal environment to it, and the environment the
// instantiation designates.  Failures degrade with a warning; the
// instantiation then resolves to nothing rather than aborting the unit.
func (p *populator) wireInstantiation(inst *ast.Node, env *envs.Environment, tick int) {
	guard := envs.NewGuard()
	ce := envs.Chained(env)

	want := ast.GenericPackageDecl
	if inst.Kind == ast.GenericSubpInstantiation {
		want = ast.GenericSubpDecl
	}

	var genName *ast.Node
	for _, c := range inst.Children {
		if isNameKind(c.Kind) {
			genName = c
			break
		}
	}

	if genName == nil {
		panic(report.RaiseStructural(inst.Span, "instantiation without a generic name"))
	}

	gen, ok := sem.ResolveName(p.g, ce, genName, tick, guard, func(e envs.Entity) bool {
		return e.Node.Kind == want
	})
	if !ok {
		report.ReportResolveWarning(p.unit.Path, p.unit.Path, genName.Span,
			"cannot resolve the generic named by this instantiation")
		return
	}

	p.g.setInstTarget(inst, gen.Node)

	formalEnv := p.g.scopeOf(gen.Node)
	if formalEnv == nil {
		return
	}

	// The actuals environment shares the formal environment's parent, so
	// entities found past the switch shed the rebinding and come out clean.
	actuals := envs.NewEnvironment(inst, formalEnv.Parent)
	r := p.g.rebinds.Of(formalEnv, actuals)

	p.fillActuals(inst, gen, ce, actuals, r, tick, guard)

	chain := append([]*envs.Rebinding{r}, gen.Chain...)
	if inst.Kind == ast.GenericPackageInstantiation {
		if de, ok := p.g.DesignatedEnv(gen.Node); ok {
			p.g.setDesignated(inst, envs.ChainedEnv{Env: de.Env, Chain: chain})
		}
	} else {
		p.g.setDesignated(inst, envs.ChainedEnv{Env: formalEnv, Chain: chain})
	}
}

// fillActuals matches the instantiation's actual part against the generic's
// formals and fills the actuals environment: each formal's name maps to the
// entity the instantiation supplies for it.
func (p *populator) fillActuals(inst *ast.Node, gen envs.Entity, ce envs.ChainedEnv,
	actuals *envs.Environment, r *envs.Rebinding, tick int, guard *envs.Guard) {

	type slot struct {
		decl *ast.Node
		sym  string
	}

	var slots []slot
	if gfp := gen.Node.FirstOfKind(ast.GenericFormalPart); gfp != nil {
		for _, d := range gfp.Children {
			for _, dn := range sem.DefiningNamesOf(d) {
				slots = append(slots, slot{decl: d, sym: envs.Fold(sem.DeclaredSymbol(dn))})
			}
		}
	}

	var positional []instActual
	named := make(map[string]*ast.Node)

	if al := inst.FirstOfKind(ast.ActualsList); al != nil {
		for _, a := range al.Children {
			if a.Kind != ast.ParamAssoc {
				positional = append(positional, instActual{expr: a})
				continue
			}

			if len(a.Children) != 2 || a.Child(0).Kind != ast.Identifier {
				report.ReportResolveWarning(p.unit.Path, p.unit.Path, a.Span,
					"malformed association in instantiation")
				continue
			}

			named[envs.Fold(a.Child(0).Text)] = a.Child(1)
		}
	}

	for i, s := range slots {
		var actual *ast.Node
		if i < len(positional) {
			actual = positional[i].expr
		} else {
			actual = named[s.sym]
		}

		switch s.decl.Kind {
		case ast.GenericFormalObjDecl:
			// Value actuals never enter the environment: the formal object
			// keeps its declared type, read through the rebinding.
			actuals.Add(s.sym, envs.Entity{Node: s.decl, Chain: []*envs.Rebinding{r}}, tick)

		case ast.GenericFormalTypeDecl:
			if actual == nil {
				report.ReportResolveWarning(p.unit.Path, p.unit.Path, inst.Span,
					"no actual for formal type `%s`", s.sym)
				continue
			}

			t, ok := sem.ResolveName(p.g, ce, actual, tick, guard, sem.IsTypeEntity)
			if !ok {
				report.ReportResolveWarning(p.unit.Path, p.unit.Path, actual.Span,
					"cannot resolve the actual for formal type `%s`", s.sym)
				continue
			}

			actuals.Add(s.sym, t, tick)

		case ast.GenericFormalSubpDecl:
			if c, ok := p.subpActual(s.sym, actual, ce, tick, guard); ok {
				actuals.Add(s.sym, c, tick)
			}

		case ast.GenericFormalPackageDecl:
			if actual == nil {
				continue
			}

			if pkg, ok := sem.ResolveName(p.g, ce, actual, tick, guard, sem.IsScopeEntity); ok {
				actuals.Add(s.sym, pkg, tick)
			}
		}
	}
}

// subpActual resolves a formal subprogram's actual to the first visible
// callable.  A missing actual falls back to the formal's own name, the box
// default.
func (p *populator) subpActual(sym string, actual *ast.Node, ce envs.ChainedEnv,
	tick int, guard *envs.Guard) (envs.Entity, bool) {

	if actual == nil {
		for _, c := range envs.Get(ce, sym, envs.LookupOptions{Recursive: true, FromTick: tick, Guard: guard}) {
			if sem.IsCallableEntity(c) {
				return c, true
			}
		}

		return envs.Null, false
	}

	if !isNameKind(actual.Kind) {
		return envs.Null, false
	}

	return sem.ResolveName(p.g, ce, actual, tick, guard, sem.IsCallableEntity)
}
