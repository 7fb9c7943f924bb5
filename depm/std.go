package depm

import (
	"sable/ast"
	"sable/envs"
	"sable/report"
	"sable/sem"
)

// This file synthesizes the standard unit.  Predefined types and operators
// are ordinary declarations in an ordinary unit populated by the ordinary
// walker, so resolution treats `Integer + Integer` exactly like a
// user-declared overload; only the tree is built programmatically instead
// of parsed.

func definingName(sym string) *ast.Node {
	return ast.NewNode(ast.DefiningName, ast.NewLeaf(ast.Identifier, sym))
}

func stdType(name string, td *ast.Node) *ast.Node {
	return ast.NewNode(ast.TypeDecl, definingName(name), td)
}

func stdSubtype(name, parent string) *ast.Node {
	return ast.NewNode(ast.SubtypeDecl, definingName(name),
		ast.NewNode(ast.SubtypeIndication, ast.NewLeaf(ast.Identifier, parent)))
}

func stdLiteral(name string) *ast.Node {
	return ast.NewNode(ast.EnumLiteralDecl, definingName(name))
}

// stdOp builds one predefined operator declaration.  Unary operators take
// Right only, matching the reference manual's profiles.
func stdOp(sym, result string, operands ...string) *ast.Node {
	names := [...]string{"Left", "Right"}
	off := 2 - len(operands)

	psl := ast.NewNode(ast.ParamSpecList)
	for i, t := range operands {
		psl.Append(ast.NewNode(ast.ParamSpec,
			ast.NewNode(ast.DefiningNameList, definingName(names[off+i])),
			ast.NewLeaf(ast.Identifier, t),
		))
	}

	return ast.NewNode(ast.SubpDecl, ast.NewNode(ast.SubpSpec,
		definingName(sym),
		psl,
		ast.NewLeaf(ast.Identifier, result),
	))
}

// stdUnitTree builds the standard unit's tree.  Declaration order matters:
// candidate order follows registration order, so Integer's operators coming
// before Float's makes Integer the first-committed interpretation of an
// all-literal expression, matching the literal domain order.
func stdUnitTree() *ast.Node {
	decls := ast.NewNode(ast.DeclList,
		stdType("Boolean", ast.NewNode(ast.EnumTypeDef, stdLiteral("False"), stdLiteral("True"))),
		stdType("Integer", ast.NewNode(ast.SignedIntTypeDef)),
		stdSubtype("Natural", "Integer"),
		stdType("Float", ast.NewNode(ast.FloatTypeDef)),
		stdType("Character", ast.NewNode(ast.EnumTypeDef)),
		stdType("String", ast.NewNode(ast.ArrayTypeDef,
			ast.NewNode(ast.IndexList,
				ast.NewNode(ast.UnconstrainedArrayIndex, ast.NewLeaf(ast.Identifier, "Natural"))),
			ast.NewLeaf(ast.Identifier, "Character"),
		)),
		stdType("Duration", ast.NewNode(ast.OrdinaryFixedTypeDef)),
	)

	for _, op := range []string{`"and"`, `"or"`, `"xor"`} {
		decls.Append(stdOp(op, "Boolean", "Boolean", "Boolean"))
	}
	decls.Append(stdOp(`"not"`, "Boolean", "Boolean"))

	for _, numeric := range []string{"Integer", "Float"} {
		for _, op := range []string{`"+"`, `"-"`, `"*"`, `"/"`} {
			decls.Append(stdOp(op, numeric, numeric, numeric))
		}

		decls.Append(stdOp(`"**"`, numeric, numeric, "Integer"))

		for _, op := range []string{`"+"`, `"-"`, `"abs"`} {
			decls.Append(stdOp(op, numeric, numeric))
		}

		for _, op := range []string{`"="`, `"/="`, `"<"`, `"<="`, `">"`, `">="`} {
			decls.Append(stdOp(op, "Boolean", numeric, numeric))
		}
	}

	decls.Append(stdOp(`"mod"`, "Integer", "Integer", "Integer"))
	decls.Append(stdOp(`"rem"`, "Integer", "Integer", "Integer"))

	decls.Append(stdOp(`"+"`, "Duration", "Duration", "Duration"))
	decls.Append(stdOp(`"-"`, "Duration", "Duration", "Duration"))
	decls.Append(stdOp(`"-"`, "Duration", "Duration"))

	decls.Append(stdOp(`"&"`, "String", "String", "String"))

	pkg := ast.NewNode(ast.PackageDecl, definingName("Standard"), decls)
	return ast.NewNode(ast.CompilationUnit, pkg)
}

// installStd synthesizes and populates the standard unit, then exposes its
// declarations to every other unit: by name through an entry on the shared
// root, and unqualified through a referenced-env edge on it.
func (g *Graph) installStd() {
	u := &Unit{Name: "standard", Kind: Specification, Path: "<standard>", Root: stdUnitTree()}

	g.mu.Lock()
	g.units[unitKey{name: "standard", kind: Specification}] = u
	g.mu.Unlock()

	g.popMu.Lock()
	g.populateUnit(u)
	g.popMu.Unlock()

	ce, ok := g.DesignatedEnv(u.Decl)
	if !ok {
		report.ReportICE("standard unit failed to populate")
		return
	}

	g.root.Add("standard", envs.Entity{Node: u.Decl}, 0)
	g.root.AddRef(&envs.RefDescriptor{
		Owner:   u.Decl,
		Resolve: func(*envs.Guard) envs.ChainedEnv { return ce },
	})

	g.std = &sem.StdEntities{
		Boolean:   g.stdEntity(ce, "boolean"),
		Integer:   g.stdEntity(ce, "integer"),
		Natural:   g.stdEntity(ce, "natural"),
		Float:     g.stdEntity(ce, "float"),
		Character: g.stdEntity(ce, "character"),
		String:    g.stdEntity(ce, "string"),
		Duration:  g.stdEntity(ce, "duration"),
	}
}

// stdEntity pulls one predefined type out of the standard environment.
func (g *Graph) stdEntity(ce envs.ChainedEnv, name string) envs.Entity {
	for _, c := range envs.Get(ce, name, envs.LookupOptions{}) {
		if sem.IsTypeEntity(c) {
			return c
		}
	}

	report.ReportICE("the standard unit is missing `%s`", name)
	return envs.Null
}
