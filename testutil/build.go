package testutil

import (
	"strings"

	"sable/ast"
)

// -----------------------------------------------------------------------------
// Names and literals.

// Ident builds an identifier leaf.
func Ident(name string) *ast.Node {
	return ast.NewLeaf(ast.Identifier, name)
}

// Name builds an identifier or, for a dotted string, a left-nested dotted
// name the way the parser folds selected components.
func Name(dotted string) *ast.Node {
	parts := strings.Split(dotted, ".")

	n := Ident(parts[0])
	for _, p := range parts[1:] {
		n = ast.NewNode(ast.DottedName, n, Ident(p))
	}

	return n
}

// DefName wraps a symbol as a defining name.
func DefName(sym string) *ast.Node {
	return ast.NewNode(ast.DefiningName, Ident(sym))
}

// SubtypeInd builds a subtype indication over a (possibly dotted) type
// name.
func SubtypeInd(typeName string) *ast.Node {
	return ast.NewNode(ast.SubtypeIndication, Name(typeName))
}

func Int(text string) *ast.Node  { return ast.NewLeaf(ast.IntLit, text) }
func Real(text string) *ast.Node { return ast.NewLeaf(ast.RealLit, text) }
func Str(text string) *ast.Node  { return ast.NewLeaf(ast.StringLit, text) }
func Chr(text string) *ast.Node  { return ast.NewLeaf(ast.CharLit, text) }
func Null() *ast.Node            { return ast.NewNode(ast.NullLit) }

// -----------------------------------------------------------------------------
// Expressions.

// Bin builds a binary operation with the operator kind between the
// operands.
func Bin(op ast.Kind, left, right *ast.Node) *ast.Node {
	return ast.NewNode(ast.BinOp, left, ast.NewNode(op), right)
}

// Un builds a unary operation.
func Un(op ast.Kind, operand *ast.Node) *ast.Node {
	return ast.NewNode(ast.UnOp, ast.NewNode(op), operand)
}

// Call builds a call expression over a name and its actuals.
func Call(name *ast.Node, args ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.CallExpr, name, ast.NewNode(ast.ActualsList, args...))
}

// Assoc builds a named association for calls and instantiations.
func Assoc(desig string, value *ast.Node) *ast.Node {
	return ast.NewNode(ast.ParamAssoc, Ident(desig), value)
}

// Qual builds a qualified expression.
func Qual(typeName string, e *ast.Node) *ast.Node {
	return ast.NewNode(ast.QualExpr, Name(typeName), e)
}

// Attr builds an attribute reference.
func Attr(prefix *ast.Node, attr string) *ast.Node {
	return ast.NewNode(ast.AttributeRef, prefix, Ident(attr))
}

// Paren wraps an expression in parentheses.
func Paren(e *ast.Node) *ast.Node {
	return ast.NewNode(ast.ParenExpr, e)
}

// Rng builds a range expression.
func Rng(low, high *ast.Node) *ast.Node {
	return ast.NewNode(ast.RangeExpr, low, high)
}

// Agg builds an aggregate from positional expressions and named
// associations (see AggChoice).
func Agg(items ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.Aggregate, items...)
}

// AggChoice builds one named aggregate association.
func AggChoice(value *ast.Node, choices ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.AggregateAssoc,
		ast.NewNode(ast.ChoiceList, choices...), value)
}

// Others is the `others` designator for aggregate and case choices.
func Others() *ast.Node {
	return ast.NewNode(ast.OthersDesignator)
}

// -----------------------------------------------------------------------------
// Declarations.

// Object builds an object declaration; init may be nil.
func Object(name, typeName string, init *ast.Node) *ast.Node {
	return ast.NewNode(ast.ObjectDecl,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		SubtypeInd(typeName),
		init,
	)
}

// Renames builds an object renaming declaration.
func Renames(name, typeName string, target *ast.Node) *ast.Node {
	return ast.NewNode(ast.ObjectDecl,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		SubtypeInd(typeName),
		ast.NewNode(ast.RenamingClause, target),
	)
}

// Number builds a named number declaration.
func Number(name string, init *ast.Node) *ast.Node {
	return ast.NewNode(ast.NumberDecl,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		init,
	)
}

// TypeDef builds a full type declaration over a definition.
func TypeDef(name string, td *ast.Node) *ast.Node {
	return ast.NewNode(ast.TypeDecl, DefName(name), td)
}

// Subtype builds a subtype declaration.
func Subtype(name, parent string) *ast.Node {
	return ast.NewNode(ast.SubtypeDecl, DefName(name), SubtypeInd(parent))
}

// EnumType builds an enumeration definition over literal names.
func EnumType(lits ...string) *ast.Node {
	td := ast.NewNode(ast.EnumTypeDef)
	for _, l := range lits {
		td.Append(ast.NewNode(ast.EnumLiteralDecl, DefName(l)))
	}

	return td
}

// RecordType builds a record definition over component declarations.
func RecordType(comps ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.RecordTypeDef, ast.NewNode(ast.ComponentList, comps...))
}

// Component builds one record component.
func Component(name, typeName string) *ast.Node {
	return ast.NewNode(ast.ComponentDecl,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		SubtypeInd(typeName),
	)
}

// ArrayType builds a constrained array definition with one literal index
// range.
func ArrayType(low, high *ast.Node, component string) *ast.Node {
	return ast.NewNode(ast.ArrayTypeDef,
		ast.NewNode(ast.IndexList, Rng(low, high)),
		SubtypeInd(component),
	)
}

// AccessType builds an access-to-type definition.
func AccessType(designated string) *ast.Node {
	return ast.NewNode(ast.AccessTypeDef, SubtypeInd(designated))
}

// DerivedType builds a derived type definition.
func DerivedType(parent string) *ast.Node {
	return ast.NewNode(ast.DerivedTypeDef, SubtypeInd(parent))
}

// IntType builds a signed integer definition over a literal range.
func IntType(low, high *ast.Node) *ast.Node {
	return ast.NewNode(ast.SignedIntTypeDef, ast.NewNode(ast.RangeSpec, Rng(low, high)))
}

// Param builds one parameter specification; def may be nil.
func Param(name, typeName string, def *ast.Node) *ast.Node {
	return ast.NewNode(ast.ParamSpec,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		SubtypeInd(typeName),
		def,
	)
}

func subpSpec(name, result string, params []*ast.Node) *ast.Node {
	spec := ast.NewNode(ast.SubpSpec, DefName(name))
	if len(params) > 0 {
		spec.Append(ast.NewNode(ast.ParamSpecList, params...))
	}
	if result != "" {
		spec.Append(SubtypeInd(result))
	}

	return spec
}

// Function builds a function declaration; name quoting makes it an
// operator overload.
func Function(name, result string, params ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.SubpDecl, subpSpec(name, result, params))
}

// Procedure builds a procedure declaration.
func Procedure(name string, params ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.SubpDecl, subpSpec(name, "", params))
}

// FunctionBody builds a function body over declarations and statements.
func FunctionBody(name, result string, params, decls, stmts []*ast.Node) *ast.Node {
	return ast.NewNode(ast.SubpBody,
		subpSpec(name, result, params),
		ast.NewNode(ast.DeclList, decls...),
		HandledStmts(stmts...),
	)
}

// ProcedureBody builds a procedure body.
func ProcedureBody(name string, params, decls, stmts []*ast.Node) *ast.Node {
	return ast.NewNode(ast.SubpBody,
		subpSpec(name, "", params),
		ast.NewNode(ast.DeclList, decls...),
		HandledStmts(stmts...),
	)
}

// ExprFunc builds an expression function.
func ExprFunc(name, result string, params []*ast.Node, body *ast.Node) *ast.Node {
	return ast.NewNode(ast.ExprFunction, subpSpec(name, result, params), body)
}

// Package builds a package declaration.
func Package(name string, decls ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.PackageDecl, DefName(name), ast.NewNode(ast.DeclList, decls...))
}

// PackageBody builds a package body.
func PackageBody(name string, decls ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.PackageBody, DefName(name), ast.NewNode(ast.DeclList, decls...))
}

// -----------------------------------------------------------------------------
// Generics.

// GenericPackage wraps a package in a generic declaration with the given
// formal part.
func GenericPackage(formals []*ast.Node, pkg *ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericPackageDecl,
		ast.NewNode(ast.GenericFormalPart, formals...), pkg)
}

// GenericFunction builds a generic function declaration.
func GenericFunction(name, result string, formals, params []*ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericSubpDecl,
		ast.NewNode(ast.GenericFormalPart, formals...),
		subpSpec(name, result, params))
}

// FormalType builds a private formal type.
func FormalType(name string) *ast.Node {
	return ast.NewNode(ast.GenericFormalTypeDecl, DefName(name),
		ast.NewNode(ast.PrivateTypeDef))
}

// FormalObj builds a formal object; def may be nil.
func FormalObj(name, typeName string, def *ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericFormalObjDecl,
		ast.NewNode(ast.DefiningNameList, DefName(name)),
		SubtypeInd(typeName),
		def,
	)
}

// FormalFunction builds a formal subprogram with a function profile.
func FormalFunction(name, result string, params ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericFormalSubpDecl, subpSpec(name, result, params))
}

// NewPackageInst builds a generic package instantiation.
func NewPackageInst(name, generic string, actuals ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericPackageInstantiation,
		DefName(name), Name(generic), ast.NewNode(ast.ActualsList, actuals...))
}

// NewSubpInst builds a generic subprogram instantiation.
func NewSubpInst(name, generic string, actuals ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.GenericSubpInstantiation,
		DefName(name), Name(generic), ast.NewNode(ast.ActualsList, actuals...))
}

// -----------------------------------------------------------------------------
// Statements.

// StmtList wraps statements.
func StmtList(stmts ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.StmtList, stmts...)
}

// HandledStmts wraps statements in a handled sequence.
func HandledStmts(stmts ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.HandledStmts, StmtList(stmts...))
}

// Assign builds an assignment statement.
func Assign(target, value *ast.Node) *ast.Node {
	return ast.NewNode(ast.AssignStmt, target, value)
}

// CallTo builds a procedure call statement.
func CallTo(name *ast.Node, args ...*ast.Node) *ast.Node {
	if len(args) == 0 {
		return ast.NewNode(ast.CallStmt, name)
	}

	return ast.NewNode(ast.CallStmt, Call(name, args...))
}

// Return builds a return statement; e may be nil.
func Return(e *ast.Node) *ast.Node {
	return ast.NewNode(ast.ReturnStmt, e)
}

// IfThen builds an if statement with no elsif or else parts.
func IfThen(cond *ast.Node, then ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.IfStmt, cond, StmtList(then...))
}

// ForIn builds a for loop over an iterable.
func ForIn(param string, iterable *ast.Node, body ...*ast.Node) *ast.Node {
	return ast.NewNode(ast.ForStmt, Ident(param), iterable, StmtList(body...))
}

// -----------------------------------------------------------------------------
// Units.

// Unit wraps a library item, with optional context clauses, as a
// compilation unit.
func Unit(item *ast.Node, clauses ...*ast.Node) *ast.Node {
	u := ast.NewNode(ast.CompilationUnit)
	if len(clauses) > 0 {
		u.Append(ast.NewNode(ast.ContextClauseList, clauses...))
	}

	return u.Append(item)
}

// With builds a with clause over unit names.
func With(names ...string) *ast.Node {
	cl := ast.NewNode(ast.WithClause)
	for _, n := range names {
		cl.Append(Name(n))
	}

	return cl
}

// Use builds a use-package clause.
func Use(names ...string) *ast.Node {
	cl := ast.NewNode(ast.UsePackageClause)
	for _, n := range names {
		cl.Append(Name(n))
	}

	return cl
}

// UseType builds a use-type clause.
func UseType(names ...string) *ast.Node {
	cl := ast.NewNode(ast.UseTypeClause)
	for _, n := range names {
		cl.Append(Name(n))
	}

	return cl
}
