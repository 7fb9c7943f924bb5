package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
	"sable/report"
)

// Builder constructs one equation per entry point.  A builder is created
// fresh for each entry point so no logic-variable state crosses two solves;
// its node-to-variable tables are read back by the resolution driver to
// harvest the solver's bindings.
//
// Construction panics with a LocalError when the tree uses an unsupported
// form and with a StructuralError when a node's shape violates the tree
// contract for its kind; the driver recovers both at its boundaries.
type Builder struct {
	sc   Scopes
	pool logic.VarPool

	types map[*ast.Node]*logic.Var
	refs  map[*ast.Node]*logic.Var

	// deferred collects aggregates whose sub-equations need their own type
	// resolved first; the driver builds and solves them after the
	// enclosing solve commits.
	deferred []*ast.Node
}

// context carries the ambient parameters of equation construction
// explicitly: the environment visibility starts from and the population
// tick bounding sequential visibility (0 unbounded).
type context struct {
	env      envs.ChainedEnv
	fromTick int
}

func NewBuilder(sc Scopes) *Builder {
	return &Builder{
		sc:    sc,
		types: make(map[*ast.Node]*logic.Var),
		refs:  make(map[*ast.Node]*logic.Var),
	}
}

// EntryPoint reports whether a complete, self-contained equation is built
// and solved at the node.  Everything below an entry point resolves as part
// of it; nested statements are entry points of their own, so a compound
// statement's equation covers only its header expressions.
func EntryPoint(n *ast.Node) bool {
	switch n.Kind {
	case ast.ObjectDecl, ast.NumberDecl,
		ast.TypeDecl, ast.SubtypeDecl,
		ast.ComponentDecl, ast.DiscriminantSpec, ast.ParamSpec,
		ast.SubpDecl, ast.SubpBody, ast.ExprFunction,
		ast.GenericPackageInstantiation, ast.GenericSubpInstantiation:
		return true
	}

	return n.Kind.IsStmt()
}

// Build constructs the entry point's equation.
func (b *Builder) Build(entry *ast.Node) logic.Equation {
	ctx := context{env: b.sc.EnclosingEnv(entry)}
	if entry.Kind.IsDecl() {
		ctx.fromTick = b.sc.TickOf(entry)
	}

	switch {
	case entry.Kind.IsStmt():
		return b.buildStmt(entry, ctx)
	case entry.Kind.IsDecl():
		return b.buildDecl(entry, ctx)
	}

	panic(report.RaiseStructural(entry.Span, "%s is not an entry point", entry.Kind))
}

// TypeBindings returns the node-to-type-variable table the equation was
// built over.
func (b *Builder) TypeBindings() map[*ast.Node]*logic.Var {
	return b.types
}

// RefBindings returns the node-to-reference-variable table.
func (b *Builder) RefBindings() map[*ast.Node]*logic.Var {
	return b.refs
}

// DeferredAggregates returns the aggregates encountered so far whose
// sub-equations are still to be built, in discovery order.  Building an
// aggregate's sub-equation may append nested aggregates.
func (b *Builder) DeferredAggregates() []*ast.Node {
	return b.deferred
}

// tv returns the node's type variable, allocating it on first use.
func (b *Builder) tv(n *ast.Node) *logic.Var {
	if v, ok := b.types[n]; ok {
		return v
	}

	v := b.pool.New("type:" + varLabel(n))
	b.types[n] = v
	return v
}

// rv returns the node's reference variable, allocating it on first use.
func (b *Builder) rv(n *ast.Node) *logic.Var {
	if v, ok := b.refs[n]; ok {
		return v
	}

	v := b.pool.New("ref:" + varLabel(n))
	b.refs[n] = v
	return v
}

func varLabel(n *ast.Node) string {
	if n.Text != "" {
		return n.Text
	}

	return n.Kind.String()
}

// never is the unsatisfiable equation: a disjunction with no branches.
func never() logic.Equation {
	return &logic.Any{}
}

// bindValue binds the variable against a concrete entity.
func bindValue(v *logic.Var, val envs.Entity, eq logic.EqID) logic.Equation {
	return &logic.Bind{Target: v, Value: val, Eq: eq}
}

// bindVar binds the target variable against the source variable's value,
// passed through the conversion.
func bindVar(target, source *logic.Var, conv logic.ConvID, eq logic.EqID) logic.Equation {
	return &logic.Bind{Target: target, Source: source, Conv: conv, Eq: eq}
}

// sameAs links two type variables bidirectionally: whichever side binds
// first propagates to the other.
func sameAs(target, source *logic.Var) logic.Equation {
	return &logic.Bind{Target: target, Source: source}
}
