package sem

import (
	"sable/ast"
	"sable/report"
)

// This file is the per-kind table describing how syntax shapes map onto the
// environment model: which kinds introduce an environment of their own,
// which child holds a declaration's defining names, and where a callable's
// specification lives.  The population driver and the equation builder both
// dispatch through it, so the tree contract is written down exactly once.

// IntroducesEnv reports whether a node of the kind introduces its own
// environment.  One environment is created per such node during population.
func IntroducesEnv(k ast.Kind) bool {
	switch k {
	case ast.CompilationUnit,
		ast.PackageDecl, ast.PackageBody,
		ast.SubpBody, ast.ExprFunction, ast.SubpDecl, ast.AbstractSubpDecl, ast.NullSubpDecl,
		ast.EntryDecl, ast.EntryBody, ast.TaskBody, ast.ProtectedBody,
		ast.TypeDecl, ast.TaskTypeDecl, ast.ProtectedTypeDecl,
		ast.SingleTaskDecl, ast.SingleProtectedDecl,
		ast.GenericPackageDecl, ast.GenericSubpDecl, ast.GenericFormalSubpDecl,
		ast.BlockStmt, ast.ForStmt, ast.ExtendedReturnStmt, ast.AcceptStmt:
		return true
	}

	return false
}

// DefiningNamesOf returns the defining-name nodes a declaration introduces,
// in source order.  Declarations that do not introduce a visible name (eg.
// package bodies, which complete a declaration rather than adding one)
// yield nil.
func DefiningNamesOf(decl *ast.Node) []*ast.Node {
	switch decl.Kind {
	case ast.PackageDecl, ast.PackageRenamingDecl,
		ast.TypeDecl, ast.IncompleteTypeDecl, ast.SubtypeDecl,
		ast.TaskTypeDecl, ast.ProtectedTypeDecl,
		ast.SingleTaskDecl, ast.SingleProtectedDecl,
		ast.EnumLiteralDecl,
		ast.GenericFormalTypeDecl, ast.GenericFormalPackageDecl,
		ast.GenericPackageInstantiation, ast.GenericSubpInstantiation,
		ast.EntryDecl:
		if dn := decl.FirstOfKind(ast.DefiningName); dn != nil {
			return []*ast.Node{dn}
		}

	case ast.SubpDecl, ast.AbstractSubpDecl, ast.NullSubpDecl,
		ast.ExprFunction, ast.SubpBody, ast.SubpRenamingDecl,
		ast.GenericFormalSubpDecl:
		spec := SubpSpecOf(decl)
		if spec == nil {
			break
		}

		if dn := spec.FirstOfKind(ast.DefiningName); dn != nil {
			return []*ast.Node{dn}
		}

	case ast.GenericPackageDecl:
		// The generic's name is carried by the package declaration nested
		// under the formal part.
		if pkg := decl.FirstOfKind(ast.PackageDecl); pkg != nil {
			return DefiningNamesOf(pkg)
		}

	case ast.GenericSubpDecl:
		spec := decl.FirstOfKind(ast.SubpSpec)
		if spec == nil {
			break
		}

		if dn := spec.FirstOfKind(ast.DefiningName); dn != nil {
			return []*ast.Node{dn}
		}

	case ast.ObjectDecl, ast.NumberDecl, ast.ComponentDecl,
		ast.DiscriminantSpec, ast.ParamSpec, ast.ExceptionDecl,
		ast.GenericFormalObjDecl:
		if dnl := decl.FirstOfKind(ast.DefiningNameList); dnl != nil {
			return dnl.Children
		}
	}

	return nil
}

// DeclaredSymbol returns the source symbol a defining name declares.  For a
// dotted defining name (child units) it is the last selector; operator
// symbols keep their quotes and fold like environment keys.
func DeclaredSymbol(dn *ast.Node) string {
	switch dn.Kind {
	case ast.DefiningName:
		if len(dn.Children) != 1 {
			panic(report.RaiseStructural(dn.Span, "malformed defining name"))
		}

		return DeclaredSymbol(dn.Child(0))

	case ast.Identifier:
		return dn.Text

	case ast.DottedName:
		return DeclaredSymbol(dn.Child(len(dn.Children) - 1))
	}

	panic(report.RaiseStructural(dn.Span, "expected a defining name, found %s", dn.Kind))
}

// SubpSpecOf returns the subprogram specification describing a callable
// declaration's profile, or nil when the declaration has none.  For a
// generic subprogram instantiation the profile is the generic's own
// specification; the caller supplies the instantiation's rebinding chain
// when resolving formal types through it.
func SubpSpecOf(decl *ast.Node) *ast.Node {
	switch decl.Kind {
	case ast.SubpDecl, ast.AbstractSubpDecl, ast.NullSubpDecl,
		ast.ExprFunction, ast.SubpBody, ast.SubpBodyStub,
		ast.SubpRenamingDecl, ast.GenericSubpDecl,
		ast.GenericFormalSubpDecl:
		return decl.FirstOfKind(ast.SubpSpec)

	case ast.EntryDecl:
		return decl.FirstOfKind(ast.SubpSpec)
	}

	return nil
}

// opSymbols maps operator marker kinds to the quoted operator symbol its
// user-defined overloads are declared under.
var opSymbols = map[ast.Kind]string{
	ast.OpPlus:   `"+"`,
	ast.OpMinus:  `"-"`,
	ast.OpMul:    `"*"`,
	ast.OpDiv:    `"/"`,
	ast.OpMod:    `"mod"`,
	ast.OpRem:    `"rem"`,
	ast.OpPow:    `"**"`,
	ast.OpConcat: `"&"`,
	ast.OpAnd:    `"and"`,
	ast.OpOr:     `"or"`,
	ast.OpXor:    `"xor"`,
	ast.OpNot:    `"not"`,
	ast.OpAbs:    `"abs"`,
	ast.OpEq:     `"="`,
	ast.OpNeq:    `"/="`,
	ast.OpLt:     `"<"`,
	ast.OpLte:    `"<="`,
	ast.OpGt:     `">"`,
	ast.OpGte:    `">="`,
}

// OpSymbol returns the quoted overload symbol for an operator kind.
func OpSymbol(k ast.Kind) (string, bool) {
	sym, ok := opSymbols[k]
	return sym, ok
}
