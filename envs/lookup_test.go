package envs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/ast"
)

func decl(name string) Entity {
	return Entity{Node: ast.NewNode(ast.ObjectDecl, ast.NewLeaf(ast.Identifier, name))}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "velocity", Fold("Velocity"))
	assert.Equal(t, "velocity", Fold("VELOCITY"))
	assert.Equal(t, `"+"`, Fold(`"+"`), "operator symbols keep their case and quotes")
}

func TestGetDirect(t *testing.T) {
	env := NewEnvironment(nil, nil)
	x := decl("x")
	env.Add("X", x, 1)

	got := Get(Chained(env), "x", LookupOptions{})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(x))

	assert.Empty(t, Get(Chained(env), "y", LookupOptions{}))
	assert.Equal(t, 1, env.Symbols())
}

func TestGetFoldsTheLookupSymbol(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.Add("Velocity", decl("v"), 1)

	assert.Len(t, Get(Chained(env), "VELOCITY", LookupOptions{}), 1)
	assert.Len(t, Get(Chained(env), "velocity", LookupOptions{}), 1)
}

func TestGetRecursiveOrdersInnerFirst(t *testing.T) {
	outer := NewEnvironment(nil, nil)
	inner := NewEnvironment(nil, outer)

	shadowed := decl("x")
	shadowing := decl("x")
	outer.Add("x", shadowed, 1)
	inner.Add("x", shadowing, 2)

	got := Get(Chained(inner), "x", LookupOptions{Recursive: true})
	require.Len(t, got, 2, "both declarations stay candidates for overloading")
	assert.True(t, got[0].Equal(shadowing))
	assert.True(t, got[1].Equal(shadowed))
}

func TestGetNonRecursiveStopsAtLevel(t *testing.T) {
	outer := NewEnvironment(nil, nil)
	inner := NewEnvironment(nil, outer)
	outer.Add("x", decl("x"), 1)

	assert.Empty(t, Get(Chained(inner), "x", LookupOptions{}))
}

func TestGetFromTickFiltersLaterEntries(t *testing.T) {
	env := NewEnvironment(nil, nil)
	early := decl("x")
	late := decl("x")
	env.Add("x", early, 3)
	env.Add("x", late, 7)

	got := Get(Chained(env), "x", LookupOptions{FromTick: 5})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(early))

	assert.Len(t, Get(Chained(env), "x", LookupOptions{FromTick: 7}), 2,
		"the boundary tick is included")
	assert.Len(t, Get(Chained(env), "x", LookupOptions{}), 2,
		"a zero FromTick disables the filter")
}

func TestGetDeduplicatesEqualEntities(t *testing.T) {
	env := NewEnvironment(nil, nil)
	x := decl("x")
	env.Add("x", x, 1)
	env.Add("x", x, 2)

	assert.Len(t, Get(Chained(env), "x", LookupOptions{}), 1)
}

func TestInsertionOrderIsPreserved(t *testing.T) {
	env := NewEnvironment(nil, nil)
	first := decl("f")
	second := decl("f")
	env.Add("f", first, 1)
	env.Add("f", second, 2)

	got := Get(Chained(env), "f", LookupOptions{})
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(first))
	assert.True(t, got[1].Equal(second))
}

// -----------------------------------------------------------------------------
// Referenced environments.

func TestRefEdgeContributesAfterDirectEntries(t *testing.T) {
	used := NewEnvironment(nil, nil)
	imported := decl("x")
	used.Add("x", imported, 1)

	env := NewEnvironment(nil, nil)
	local := decl("x")
	env.Add("x", local, 2)
	env.AddRef(&RefDescriptor{
		Resolve: func(*Guard) ChainedEnv { return Chained(used) },
	})

	got := Get(Chained(env), "x", LookupOptions{})
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(local))
	assert.True(t, got[1].Equal(imported))
}

func TestRefEdgeRecursionModes(t *testing.T) {
	parent := NewEnvironment(nil, nil)
	parent.Add("x", decl("outer"), 1)

	target := NewEnvironment(nil, parent)
	target.Add("x", decl("inner"), 2)

	flat := NewEnvironment(nil, nil)
	flat.AddRef(&RefDescriptor{
		Resolve: func(*Guard) ChainedEnv { return Chained(target) },
	})

	assert.Len(t, Get(Chained(flat), "x", LookupOptions{}), 1,
		"a non-recursive edge sees only the target's own entries")

	deep := NewEnvironment(nil, nil)
	deep.AddRef(&RefDescriptor{
		Recursive: true,
		Resolve:   func(*Guard) ChainedEnv { return Chained(target) },
	})

	assert.Len(t, Get(Chained(deep), "x", LookupOptions{}), 2,
		"a recursive edge walks the target's parents")
}

func TestOpsOnlyEdgeSkipsPlainSymbols(t *testing.T) {
	opsScope := NewEnvironment(nil, nil)
	plus := decl("+")
	item := decl("item")
	opsScope.Add(`"+"`, plus, 1)
	opsScope.Add("item", item, 2)

	env := NewEnvironment(nil, nil)
	env.AddRef(&RefDescriptor{
		OpsOnly: true,
		Resolve: func(*Guard) ChainedEnv { return Chained(opsScope) },
	})

	got := Get(Chained(env), `"+"`, LookupOptions{})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(plus))

	assert.Empty(t, Get(Chained(env), "item", LookupOptions{}))
}

func TestRefEdgeAssertsMetadata(t *testing.T) {
	typeScope := NewEnvironment(nil, nil)
	typeScope.Add("move", decl("move"), 1)

	env := NewEnvironment(nil, nil)
	env.AddRef(&RefDescriptor{
		Resolve: func(*Guard) ChainedEnv { return Chained(typeScope) },
		Assert: &MetadataAssertion{
			MD:   Metadata{DottableSubp: true},
			Mask: Metadata{DottableSubp: true},
		},
	})

	got := Get(Chained(env), "move", LookupOptions{})
	require.Len(t, got, 1)
	assert.True(t, got[0].MD.DottableSubp)
	assert.False(t, got[0].MD.ImplicitDeref, "unmasked tags pass through")
}

func TestSelfReferentialEdgeTerminates(t *testing.T) {
	env := NewEnvironment(nil, nil)
	x := decl("x")
	env.Add("x", x, 1)
	env.AddRef(&RefDescriptor{
		Recursive: true,
		Resolve:   func(*Guard) ChainedEnv { return Chained(env) },
	})

	got := Get(Chained(env), "x", LookupOptions{Recursive: true})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(x))
}

func TestMutuallyReferentialEdgesTerminate(t *testing.T) {
	a := NewEnvironment(nil, nil)
	b := NewEnvironment(nil, nil)
	a.Add("x", decl("ax"), 1)
	b.Add("x", decl("bx"), 2)

	a.AddRef(&RefDescriptor{Resolve: func(*Guard) ChainedEnv { return Chained(b) }})
	b.AddRef(&RefDescriptor{Resolve: func(*Guard) ChainedEnv { return Chained(a) }})

	got := Get(Chained(a), "x", LookupOptions{})
	assert.Len(t, got, 2)
}

func TestUnresolvableEdgeContributesNothing(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.AddRef(&RefDescriptor{
		Resolve: func(*Guard) ChainedEnv { return ChainedEnv{} },
	})

	assert.Empty(t, Get(Chained(env), "x", LookupOptions{}))
}

// -----------------------------------------------------------------------------
// Rebindings.

func TestRebindingSwitchesSourceToTarget(t *testing.T) {
	parent := NewEnvironment(nil, nil)
	formals := NewEnvironment(nil, parent)
	actuals := NewEnvironment(nil, parent)

	formals.Add("t", decl("formal"), 1)
	actual := decl("actual")
	actuals.Add("t", actual, 2)

	r := NewRebindTable().Of(formals, actuals)

	got := Get(ChainedEnv{Env: formals, Chain: []*Rebinding{r}}, "t", LookupOptions{})
	require.Len(t, got, 1)
	assert.Same(t, actual.Node, got[0].Node)
	assert.Empty(t, got[0].Chain, "the switch sheds its own rebinding")
}

func TestRebindingShedsAboveItsSource(t *testing.T) {
	parent := NewEnvironment(nil, nil)
	clean := decl("shared")
	parent.Add("shared", clean, 1)

	formals := NewEnvironment(nil, parent)
	actuals := NewEnvironment(nil, parent)
	r := NewRebindTable().Of(formals, actuals)

	got := Get(ChainedEnv{Env: formals, Chain: []*Rebinding{r}}, "shared",
		LookupOptions{Recursive: true})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Chain,
		"entities above the formal environment stay independent of the instantiation")
}

func TestRebindingAttachesBelowItsSource(t *testing.T) {
	formals := NewEnvironment(nil, nil)
	inner := NewEnvironment(nil, formals)

	item := decl("item")
	inner.Add("item", item, 1)

	actuals := NewEnvironment(nil, nil)
	r := NewRebindTable().Of(formals, actuals)

	got := Get(ChainedEnv{Env: inner, Chain: []*Rebinding{r}}, "item", LookupOptions{})
	require.Len(t, got, 1)
	require.Len(t, got[0].Chain, 1,
		"entities inside the generic carry the instantiation context")
	assert.Same(t, r, got[0].Chain[0])
}

func TestRebindingFallsThroughToSharedParent(t *testing.T) {
	parent := NewEnvironment(nil, nil)
	outer := decl("x")
	parent.Add("x", outer, 1)

	formals := NewEnvironment(nil, parent)
	actuals := NewEnvironment(nil, parent)
	r := NewRebindTable().Of(formals, actuals)

	// Nothing named x in the actuals: the walk continues into the shared
	// parent and finds the clean entity.
	got := Get(ChainedEnv{Env: formals, Chain: []*Rebinding{r}}, "x",
		LookupOptions{Recursive: true})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(outer))
}

func TestRebindTableMemoizes(t *testing.T) {
	a := NewEnvironment(nil, nil)
	b := NewEnvironment(nil, nil)
	c := NewEnvironment(nil, nil)

	rt := NewRebindTable()
	assert.Same(t, rt.Of(a, b), rt.Of(a, b))
	assert.NotSame(t, rt.Of(a, b), rt.Of(a, c))
}

// -----------------------------------------------------------------------------
// Entities and chained environments.

func TestEntityEquality(t *testing.T) {
	x := decl("x")
	assert.True(t, x.Equal(x))
	assert.False(t, x.Equal(decl("x")), "distinct declarations differ")

	tagged := x.WithMetadata(Metadata{DottableSubp: true})
	assert.False(t, x.Equal(tagged), "metadata distinguishes entities")

	r := NewRebindTable().Of(NewEnvironment(nil, nil), NewEnvironment(nil, nil))
	assert.False(t, x.Equal(x.Rebound(r)), "the rebinding chain distinguishes entities")
	assert.True(t, x.Rebound(r).Equal(x.Rebound(r)))
}

func TestReboundIsIdempotent(t *testing.T) {
	rt := NewRebindTable()
	r := rt.Of(NewEnvironment(nil, nil), NewEnvironment(nil, nil))

	x := decl("x").Rebound(r).Rebound(r)
	assert.Len(t, x.Chain, 1)

	x = x.ReboundAll([]*Rebinding{r, r})
	assert.Len(t, x.Chain, 1)
}

func TestReboundCopiesTheChain(t *testing.T) {
	rt := NewRebindTable()
	e1 := NewEnvironment(nil, nil)
	r1 := rt.Of(e1, NewEnvironment(nil, nil))
	r2 := rt.Of(e1, NewEnvironment(nil, nil))
	r3 := rt.Of(NewEnvironment(nil, nil), e1)

	base := decl("x").Rebound(r1)
	a := base.Rebound(r2)
	b := base.Rebound(r3)

	require.Len(t, a.Chain, 2)
	require.Len(t, b.Chain, 2)
	assert.Same(t, r2, a.Chain[1])
	assert.Same(t, r3, b.Chain[1], "extending one entity must not alias another")
}

func TestNullEntity(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, decl("x").IsNull())
	assert.True(t, Null.Equal(Entity{}))
}

func TestChainedEnvExtend(t *testing.T) {
	rt := NewRebindTable()
	e1 := NewEnvironment(nil, nil)
	r1 := rt.Of(e1, NewEnvironment(nil, nil))
	r2 := rt.Of(NewEnvironment(nil, nil), e1)

	ce := Chained(e1).Extend([]*Rebinding{r1})
	require.Len(t, ce.Chain, 1)

	ce = ce.Extend([]*Rebinding{r1, r2})
	require.Len(t, ce.Chain, 2, "already present rebindings are skipped")
	assert.Same(t, r1, ce.Chain[0])
	assert.Same(t, r2, ce.Chain[1])

	assert.True(t, ChainedEnv{}.IsEmpty())
	assert.False(t, ce.IsEmpty())
}

func TestMetadataAssertionMasks(t *testing.T) {
	a := MetadataAssertion{
		MD:   Metadata{DottableSubp: true},
		Mask: Metadata{DottableSubp: true},
	}

	md := a.Apply(Metadata{ImplicitDeref: true})
	assert.True(t, md.DottableSubp)
	assert.True(t, md.ImplicitDeref)

	clear := MetadataAssertion{Mask: Metadata{ImplicitDeref: true}}
	md = clear.Apply(md)
	assert.True(t, md.DottableSubp)
	assert.False(t, md.ImplicitDeref, "an asserted false overwrites")
}

func TestGuardScopesPerLookup(t *testing.T) {
	// Two sequential lookups through the same self-referential edge must
	// both succeed: guard state does not leak between top-level calls.
	env := NewEnvironment(nil, nil)
	env.Add("x", decl("x"), 1)
	env.AddRef(&RefDescriptor{
		Resolve: func(*Guard) ChainedEnv { return Chained(env) },
	})

	assert.Len(t, Get(Chained(env), "x", LookupOptions{}), 1)
	assert.Len(t, Get(Chained(env), "x", LookupOptions{}), 1)
}
