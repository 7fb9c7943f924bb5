package depm_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/ast"
	"sable/depm"
	"sable/envs"
	"sable/report"
	"sable/testutil"
)

func newGraph(t *testing.T) (*depm.Graph, *testutil.MapLoader) {
	t.Helper()
	report.InitReporter(report.LogLevelSilent)

	ld := testutil.NewMapLoader()
	return depm.NewGraph(ld), ld
}

func lookup(ce envs.ChainedEnv, sym string) []envs.Entity {
	return envs.Get(ce, sym, envs.LookupOptions{Recursive: true})
}

func TestStandardUnitInstalled(t *testing.T) {
	g, _ := newGraph(t)

	std := g.Std()
	require.NotNil(t, std)
	assert.Equal(t, ast.TypeDecl, std.Integer.Node.Kind)
	assert.Equal(t, ast.SubtypeDecl, std.Natural.Node.Kind)
	for _, e := range std.Scalars() {
		assert.False(t, e.IsNull())
	}

	u, ok := g.EnsureUnit("Standard", depm.Specification)
	require.True(t, ok)
	assert.Equal(t, ast.PackageDecl, u.Decl.Kind)

	// Predefined declarations are visible from every environment, the
	// graph root included.
	ce := g.EnclosingEnv(testutil.Int("1"))
	require.Len(t, lookup(ce, "integer"), 1)

	ops := lookup(ce, `"+"`)
	assert.GreaterOrEqual(t, len(ops), 4)
	for _, op := range ops {
		assert.Equal(t, ast.SubpDecl, op.Node.Kind)
	}

	assert.False(t, report.AnyErrors())
}

func TestPackagePopulation(t *testing.T) {
	g, ld := newGraph(t)

	vel := testutil.Object("Velocity", "Float", nil)
	count := testutil.Object("Count", "Integer", testutil.Int("0"))
	pkg := testutil.Package("Physics", vel, count)
	ld.Add("physics", testutil.Unit(pkg))

	u, ok := g.EnsureUnit("Physics", depm.Specification)
	require.True(t, ok)
	assert.Equal(t, "physics", u.Name)
	assert.Equal(t, depm.Specification, u.Kind)
	assert.Equal(t, "<test:physics>", u.Path)
	assert.Same(t, pkg, u.Decl)

	de, ok := g.DesignatedEnv(pkg)
	require.True(t, ok)

	got := envs.Get(de, "velocity", envs.LookupOptions{})
	require.Len(t, got, 1)
	assert.Same(t, vel, got[0].Node)
	assert.Same(t, de.Env, g.DeclaredIn(vel))

	// The package's own name registers in the region enclosing it.
	require.Len(t, lookup(g.EnclosingEnv(pkg), "physics"), 1)

	// Siblings see each other, and predefined types resolve through the
	// outer chain.
	inner := g.EnclosingEnv(vel)
	require.Len(t, lookup(inner, "count"), 1)

	floats := lookup(inner, "float")
	require.Len(t, floats, 1)
	assert.Same(t, g.Std().Float.Node, floats[0].Node)
}

func TestDeclarationTicksGateVisibility(t *testing.T) {
	g, ld := newGraph(t)

	first := testutil.Object("First", "Integer", nil)
	second := testutil.Object("Second", "Integer", nil)
	pkg := testutil.Package("P", first, second)
	ld.Add("p", testutil.Unit(pkg))

	_, ok := g.EnsureUnit("p", depm.Specification)
	require.True(t, ok)

	require.Greater(t, g.TickOf(first), 0)
	assert.Greater(t, g.TickOf(second), g.TickOf(first))

	de, ok := g.DesignatedEnv(pkg)
	require.True(t, ok)

	at := g.TickOf(first)
	assert.Len(t, envs.Get(de, "first", envs.LookupOptions{FromTick: at}), 1)
	assert.Empty(t, envs.Get(de, "second", envs.LookupOptions{FromTick: at}))
}

func TestMissingUnitWarnsOnceAndMemoizes(t *testing.T) {
	g, ld := newGraph(t)

	u, ok := g.EnsureUnit("Ghost", depm.Specification)
	assert.False(t, ok)
	assert.Nil(t, u)
	assert.Equal(t, 1, report.WarningCount())

	_, ok = g.EnsureUnit("Ghost", depm.Specification)
	assert.False(t, ok)
	assert.Equal(t, 1, report.WarningCount(), "a memoized miss should not warn again")
	assert.Equal(t, []string{"ghost"}, ld.Loads())
}

func TestWithClauseGrantsPrefixVisibility(t *testing.T) {
	g, ld := newGraph(t)

	item := testutil.Object("Item", "Integer", nil)
	prices := testutil.Package("Prices", item)
	x := testutil.Object("X", "Integer", nil)
	ld.Add("prices", testutil.Unit(prices))
	ld.Add("main", testutil.Unit(testutil.Package("Main", x), testutil.With("Prices")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)
	assert.Contains(t, ld.Loads(), "prices")

	ce := g.EnclosingEnv(x)
	got := lookup(ce, "prices")
	require.Len(t, got, 1)
	assert.Same(t, prices, got[0].Node)

	// Only the name becomes visible; the package's declarations still
	// need qualification.
	assert.Empty(t, lookup(ce, "item"))
}

func TestUsePackageClauseGrantsDirectVisibility(t *testing.T) {
	g, ld := newGraph(t)

	item := testutil.Object("Item", "Integer", nil)
	prices := testutil.Package("Prices", item)
	x := testutil.Object("X", "Integer", nil)
	ld.Add("prices", testutil.Unit(prices))
	ld.Add("main", testutil.Unit(testutil.Package("Main", x),
		testutil.With("Prices"), testutil.Use("Prices")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)

	got := lookup(g.EnclosingEnv(x), "item")
	require.Len(t, got, 1)
	assert.Same(t, item, got[0].Node)
}

func TestUseTypeClauseExposesOperatorsOnly(t *testing.T) {
	g, ld := newGraph(t)

	vec := testutil.TypeDef("Vec", testutil.RecordType(testutil.Component("X", "Float")))
	plus := testutil.Function(`"+"`, "Vec",
		testutil.Param("L", "Vec", nil), testutil.Param("R", "Vec", nil))
	origin := testutil.Object("Origin", "Vec", nil)
	ld.Add("vectors", testutil.Unit(testutil.Package("Vectors", vec, plus, origin)))

	v := testutil.Object("V", "Integer", nil)
	ld.Add("main", testutil.Unit(testutil.Package("Main", v),
		testutil.With("Vectors"), testutil.UseType("Vectors.Vec")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)

	ce := g.EnclosingEnv(v)

	var found bool
	for _, c := range lookup(ce, `"+"`) {
		if c.Node == plus {
			found = true
		}
	}
	assert.True(t, found, `the "+" declared beside the type should be visible`)

	// Ordinary names stay qualified-only.
	assert.Empty(t, lookup(ce, "origin"))
}

func TestChildUnitSitsInParentRegion(t *testing.T) {
	g, ld := newGraph(t)

	origin := testutil.Object("Origin", "Integer", nil)
	ld.Add("geo", testutil.Unit(testutil.Package("Geo", origin)))

	sides := testutil.Object("Sides", "Integer", nil)
	shapes := testutil.Package("Shapes", sides)
	ld.Add("geo.shapes", testutil.Unit(shapes))

	u, ok := g.EnsureUnit("Geo.Shapes", depm.Specification)
	require.True(t, ok)
	assert.Equal(t, "geo.shapes", u.Name)
	assert.Contains(t, ld.Loads(), "geo", "the parent loads before the child populates")

	parent, ok := g.EnsureUnit("Geo", depm.Specification)
	require.True(t, ok)

	de, ok := g.DesignatedEnv(parent.Decl)
	require.True(t, ok)

	got := envs.Get(de, "shapes", envs.LookupOptions{})
	require.Len(t, got, 1)
	assert.Same(t, shapes, got[0].Node)

	// The child's declarations see the parent's.
	require.Len(t, lookup(g.EnclosingEnv(sides), "origin"), 1)
}

func TestPackageBodyChainsUnderItsSpec(t *testing.T) {
	g, ld := newGraph(t)

	capacity := testutil.Object("Capacity", "Integer", nil)
	spec := testutil.Package("Store", capacity)
	used := testutil.Object("Used", "Integer", nil)
	body := testutil.PackageBody("Store", used)
	ld.Add("store", testutil.Unit(spec))
	ld.AddBody("store", testutil.Unit(body))

	u, ok := g.EnsureUnit("Store", depm.Body)
	require.True(t, ok)
	assert.Equal(t, depm.Body, u.Kind)
	assert.Same(t, body, u.Decl)
	assert.Contains(t, ld.Loads(), "store", "the body pulls its specification in")

	require.Len(t, lookup(g.EnclosingEnv(used), "capacity"), 1)

	// Body declarations stay invisible from the specification's region.
	de, ok := g.DesignatedEnv(spec)
	require.True(t, ok)
	assert.Empty(t, envs.Get(de, "used", envs.LookupOptions{}))
}

func TestLibrarySubprogramBodyNeedsNoSpec(t *testing.T) {
	g, ld := newGraph(t)

	run := testutil.ProcedureBody("Run",
		nil,
		[]*ast.Node{testutil.Object("X", "Integer", nil)},
		nil)
	ld.AddBody("run", testutil.Unit(run))

	u, ok := g.EnsureUnit("Run", depm.Body)
	require.True(t, ok)
	assert.Same(t, run, u.Decl)

	// The probe for a matching specification stays silent.
	assert.Zero(t, report.WarningCount())
	assert.Contains(t, ld.Loads(), "run")
	assert.Contains(t, ld.Loads(), "run#body")
}

func TestEnumLiteralsRegisterInEnclosingScope(t *testing.T) {
	g, ld := newGraph(t)

	color := testutil.TypeDef("Color", testutil.EnumType("Red", "Green", "Blue"))
	pkg := testutil.Package("Paint", color)
	ld.Add("paint", testutil.Unit(pkg))

	_, ok := g.EnsureUnit("paint", depm.Specification)
	require.True(t, ok)

	de, ok := g.DesignatedEnv(pkg)
	require.True(t, ok)

	got := envs.Get(de, "red", envs.LookupOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, ast.EnumLiteralDecl, got[0].Node.Kind)
	assert.False(t, got[0].MD.DottableSubp)

	// Literal and type share the declaring region.
	assert.Same(t, g.DeclaredIn(color), g.DeclaredIn(got[0].Node))
}

func TestTypeRegionHoldsComponentsAndDottableSubprograms(t *testing.T) {
	g, ld := newGraph(t)

	point := testutil.TypeDef("Point", testutil.RecordType(
		testutil.Component("X", "Float"),
		testutil.Component("Y", "Float"),
	))
	getX := testutil.Function("Get_X", "Float", testutil.Param("P", "Point", nil))
	ld.Add("geometry", testutil.Unit(testutil.Package("Geometry", point, getX)))

	_, ok := g.EnsureUnit("geometry", depm.Specification)
	require.True(t, ok)

	de, ok := g.DesignatedEnv(point)
	require.True(t, ok)

	comps := envs.Get(de, "x", envs.LookupOptions{})
	require.Len(t, comps, 1)
	assert.Equal(t, ast.ComponentDecl, comps[0].Node.Kind)
	assert.False(t, comps[0].MD.DottableSubp)

	// Package-level subprograms show through the type's region, tagged
	// for prefixed calls.
	subs := envs.Get(de, "get_x", envs.LookupOptions{})
	require.Len(t, subs, 1)
	assert.Same(t, getX, subs[0].Node)
	assert.True(t, subs[0].MD.DottableSubp)
}

func TestTaskEntriesLiveInTheTaskRegion(t *testing.T) {
	g, ld := newGraph(t)

	entry := ast.NewNode(ast.EntryDecl,
		testutil.DefName("Start"),
		ast.NewNode(ast.ParamSpecList, testutil.Param("Amount", "Integer", nil)),
	)
	task := ast.NewNode(ast.SingleTaskDecl, testutil.DefName("Worker"), entry)
	ld.Add("jobs", testutil.Unit(testutil.Package("Jobs", task)))

	_, ok := g.EnsureUnit("jobs", depm.Specification)
	require.True(t, ok)

	de, ok := g.DesignatedEnv(task)
	require.True(t, ok)

	got := envs.Get(de, "start", envs.LookupOptions{})
	require.Len(t, got, 1)
	assert.Same(t, entry, got[0].Node)

	// Entry parameters stay inside the entry's own environment.
	assert.Empty(t, envs.Get(de, "amount", envs.LookupOptions{}))
}

func TestPackageInstantiationRebindsFormals(t *testing.T) {
	g, ld := newGraph(t)

	value := testutil.Object("Value", "T", nil)
	gen := testutil.GenericPackage(
		[]*ast.Node{testutil.FormalType("T")},
		testutil.Package("Boxes_G", value),
	)
	ld.Add("boxes_g", testutil.Unit(gen))

	inst := testutil.NewPackageInst("Int_Boxes", "Boxes_G", testutil.Name("Integer"))
	ld.Add("main", testutil.Unit(testutil.Package("Main", inst), testutil.With("Boxes_G")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)
	assert.False(t, report.AnyErrors())
	assert.Zero(t, report.WarningCount())

	target, ok := g.InstanceTarget(inst)
	require.True(t, ok)
	assert.Same(t, gen, target)

	de, ok := g.DesignatedEnv(inst)
	require.True(t, ok)
	require.Len(t, de.Chain, 1)

	// The formal's name yields the actual, chainless: the actuals
	// environment shares the formal environment's parent, so the chain
	// sheds on the way out.
	ts := lookup(de, "t")
	require.Len(t, ts, 1)
	assert.Same(t, g.Std().Integer.Node, ts[0].Node)
	assert.Empty(t, ts[0].Chain)

	// Declarations inside the generic come out under the rebinding.
	vals := envs.Get(de, "value", envs.LookupOptions{})
	require.Len(t, vals, 1)
	assert.Same(t, value, vals[0].Node)
	require.Len(t, vals[0].Chain, 1)
	assert.Same(t, de.Chain[0], vals[0].Chain[0])

	// The instantiation's name is an ordinary declaration of its region.
	require.Len(t, lookup(g.EnclosingEnv(inst), "int_boxes"), 1)
}

func TestTwoInstantiationsKeepDistinctRebindings(t *testing.T) {
	g, ld := newGraph(t)

	value := testutil.Object("Value", "T", nil)
	gen := testutil.GenericPackage(
		[]*ast.Node{testutil.FormalType("T")},
		testutil.Package("Boxes_G", value),
	)
	ld.Add("boxes_g", testutil.Unit(gen))

	intInst := testutil.NewPackageInst("Int_Boxes", "Boxes_G", testutil.Name("Integer"))
	fltInst := testutil.NewPackageInst("Float_Boxes", "Boxes_G", testutil.Name("Float"))
	ld.Add("main", testutil.Unit(
		testutil.Package("Main", intInst, fltInst), testutil.With("Boxes_G")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)
	assert.False(t, report.AnyErrors())

	intEnv, ok := g.DesignatedEnv(intInst)
	require.True(t, ok)
	fltEnv, ok := g.DesignatedEnv(fltInst)
	require.True(t, ok)

	// The same declaration reached through each instance carries that
	// instance's own rebinding.
	iv := envs.Get(intEnv, "value", envs.LookupOptions{})
	fv := envs.Get(fltEnv, "value", envs.LookupOptions{})
	require.Len(t, iv, 1)
	require.Len(t, fv, 1)

	assert.Same(t, iv[0].Node, fv[0].Node)
	assert.False(t, iv[0].Equal(fv[0]))
	require.Len(t, iv[0].Chain, 1)
	require.Len(t, fv[0].Chain, 1)
	assert.NotSame(t, iv[0].Chain[0], fv[0].Chain[0])

	// Each formal reads its own actual.
	ts := lookup(intEnv, "t")
	require.Len(t, ts, 1)
	assert.Same(t, g.Std().Integer.Node, ts[0].Node)

	ts = lookup(fltEnv, "t")
	require.Len(t, ts, 1)
	assert.Same(t, g.Std().Float.Node, ts[0].Node)
}

func TestInstantiationFormalObjectKeepsItsDeclaredType(t *testing.T) {
	g, ld := newGraph(t)

	limit := testutil.FormalObj("Limit", "T", nil)
	gen := testutil.GenericPackage(
		[]*ast.Node{testutil.FormalType("T"), limit},
		testutil.Package("Rings_G"),
	)
	ld.Add("rings_g", testutil.Unit(gen))

	inst := testutil.NewPackageInst("Rings", "Rings_G",
		testutil.Name("Integer"), testutil.Int("8"))
	ld.Add("main", testutil.Unit(testutil.Package("Main", inst), testutil.With("Rings_G")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)

	de, ok := g.DesignatedEnv(inst)
	require.True(t, ok)

	// The value actual never enters the environment: the formal object
	// answers lookups, its declared type read through the rebinding.
	got := lookup(de, "limit")
	require.Len(t, got, 1)
	assert.Same(t, limit, got[0].Node)
	require.Len(t, got[0].Chain, 1)
	assert.Same(t, de.Chain[0], got[0].Chain[0])
}

func TestSubprogramInstantiationDesignatesTheFormalRegion(t *testing.T) {
	g, ld := newGraph(t)

	gen := testutil.GenericFunction("Twice", "T",
		[]*ast.Node{testutil.FormalType("T")},
		[]*ast.Node{testutil.Param("X", "T", nil)})
	ld.Add("twice", testutil.Unit(gen))

	inst := testutil.NewSubpInst("Twice_Int", "Twice", testutil.Name("Integer"))
	ld.Add("main", testutil.Unit(testutil.Package("Main", inst), testutil.With("Twice")))

	_, ok := g.EnsureUnit("main", depm.Specification)
	require.True(t, ok)

	target, ok := g.InstanceTarget(inst)
	require.True(t, ok)
	assert.Same(t, gen, target)

	de, ok := g.DesignatedEnv(inst)
	require.True(t, ok)

	ts := envs.Get(de, "t", envs.LookupOptions{})
	require.Len(t, ts, 1)
	assert.Same(t, g.Std().Integer.Node, ts[0].Node)
}

func TestMutuallyReferencingUnitsPopulate(t *testing.T) {
	g, ld := newGraph(t)

	pa := testutil.Object("A", "Integer", nil)
	qb := testutil.Object("B", "Integer", nil)
	p := testutil.Package("P", pa)
	q := testutil.Package("Q", qb)
	ld.Add("p", testutil.Unit(p, testutil.With("Q")))
	ld.Add("q", testutil.Unit(q, testutil.With("P")))

	_, ok := g.EnsureUnit("p", depm.Specification)
	require.True(t, ok)
	_, ok = g.EnsureUnit("q", depm.Specification)
	require.True(t, ok)

	got := lookup(g.EnclosingEnv(pa), "q")
	require.Len(t, got, 1)
	assert.Same(t, q, got[0].Node)

	got = lookup(g.EnclosingEnv(qb), "p")
	require.Len(t, got, 1)
	assert.Same(t, p, got[0].Node)

	assert.False(t, report.AnyErrors())
}

func TestConcurrentEnsureUnitLoadsOnce(t *testing.T) {
	g, ld := newGraph(t)

	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("u%d", i)
		ld.Add(name, testutil.Unit(testutil.Package(name,
			testutil.Object("V", "Integer", nil))))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("u%d", i)
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, ok := g.EnsureUnit(name, depm.Specification)
				assert.True(t, ok)
			}()
		}
	}
	wg.Wait()

	assert.Len(t, ld.Loads(), 8)
}

func TestUnitKindStrings(t *testing.T) {
	assert.Equal(t, "specification", depm.Specification.String())
	assert.Equal(t, "body", depm.Body.String())
}
