package ast

// Kind identifies the syntactic form of a node.  The set of kinds is closed:
// the external parser produces only these, and semantic dispatch is a switch
// over them with an explicit default for kinds that carry no special
// resolution behavior.
type Kind uint16

const (
	Invalid Kind = iota

	// Units and context clauses.
	CompilationUnit
	ContextClauseList
	WithClause
	UsePackageClause
	UseTypeClause
	PragmaNode

	// Names.
	DefiningName
	DefiningNameList
	Identifier
	DottedName

	kindDeclBegin

	// Declarations.
	PackageDecl
	PackageBody
	PackageBodyStub
	PackageRenamingDecl
	SubpDecl
	AbstractSubpDecl
	NullSubpDecl
	ExprFunction
	SubpBody
	SubpBodyStub
	SubpRenamingDecl
	EntryDecl
	EntryBody
	ObjectDecl
	NumberDecl
	ComponentDecl
	DiscriminantSpec
	ParamSpec
	TypeDecl
	IncompleteTypeDecl
	SubtypeDecl
	TaskTypeDecl
	TaskBody
	SingleTaskDecl
	ProtectedTypeDecl
	ProtectedBody
	SingleProtectedDecl
	ExceptionDecl
	EnumLiteralDecl
	GenericPackageDecl
	GenericSubpDecl
	GenericFormalTypeDecl
	GenericFormalObjDecl
	GenericFormalSubpDecl
	GenericFormalPackageDecl
	GenericPackageInstantiation
	GenericSubpInstantiation

	kindDeclEnd

	// Declaration parts.
	SubpSpec
	ParamSpecList
	DeclList
	GenericFormalPart
	RenamingClause
	KnownDiscriminantPart
	AspectSpec
	AspectAssoc

	kindTypeDefBegin

	// Type definitions.
	RecordTypeDef
	ArrayTypeDef
	AccessTypeDef
	DerivedTypeDef
	EnumTypeDef
	SignedIntTypeDef
	ModIntTypeDef
	FloatTypeDef
	OrdinaryFixedTypeDef
	DecimalFixedTypeDef
	PrivateTypeDef
	InterfaceTypeDef

	kindTypeDefEnd

	// Type definition parts.
	ComponentList
	VariantPart
	Variant
	IndexList
	RangeSpec
	SubtypeIndication
	DiscreteSubtypeIndication
	UnconstrainedArrayIndex

	kindExprBegin

	// Expressions.
	IntLit
	RealLit
	StringLit
	CharLit
	NullLit
	BinOp
	UnOp
	CallExpr
	QualExpr
	Allocator
	ExplicitDeref
	ParenExpr
	IfExpr
	ElsifExprPart
	CaseExpr
	CaseExprAlternative
	MembershipExpr
	AttributeRef
	ReduceAttributeRef
	Aggregate
	AggregateAssoc
	QuantifiedExpr
	DeclExpr
	RaiseExpr
	RangeExpr
	BoxExpr
	TargetName

	kindExprEnd

	// Association parts.
	ActualsList
	ParamAssoc
	ChoiceList
	OthersDesignator

	kindStmtBegin

	// Statements.
	AssignStmt
	CallStmt
	ReturnStmt
	ExtendedReturnStmt
	IfStmt
	CaseStmt
	LoopStmt
	WhileStmt
	ForStmt
	ExitStmt
	NullStmt
	BlockStmt
	DelayStmt
	RaiseStmt
	GotoStmt
	AbortStmt
	AcceptStmt
	SelectStmt
	RequeueStmt
	TerminateAlternative

	kindStmtEnd

	// Statement parts.
	StmtList
	HandledStmts
	ElsifPart
	ElsePart
	CaseAlternative
	ExceptionHandler
	ExceptionHandlerList
	LabelNode

	kindOpBegin

	// Operators.
	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpMod
	OpRem
	OpPow
	OpConcat
	OpAnd
	OpOr
	OpXor
	OpAndThen
	OpOrElse
	OpNot
	OpAbs
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpNotIn

	kindOpEnd

	// Marker nodes.
	TaggedNode
	AbstractNode
	LimitedNode
	PrivateNode
	AliasedNode
	ConstantNode
	ReverseNode
	AllNode
	NotNullNode
	SynchronizedNode
	UntilNode

	// Representation clauses.
	AttributeDefClause
	EnumRepClause
	RecordRepClause
	ComponentClause

	kindCount
)

var kindNames = [...]string{
	Invalid: "Invalid",

	CompilationUnit:   "CompilationUnit",
	ContextClauseList: "ContextClauseList",
	WithClause:        "WithClause",
	UsePackageClause:  "UsePackageClause",
	UseTypeClause:     "UseTypeClause",
	PragmaNode:        "PragmaNode",

	DefiningName:     "DefiningName",
	DefiningNameList: "DefiningNameList",
	Identifier:       "Identifier",
	DottedName:       "DottedName",

	PackageDecl:                 "PackageDecl",
	PackageBody:                 "PackageBody",
	PackageBodyStub:             "PackageBodyStub",
	PackageRenamingDecl:         "PackageRenamingDecl",
	SubpDecl:                    "SubpDecl",
	AbstractSubpDecl:            "AbstractSubpDecl",
	NullSubpDecl:                "NullSubpDecl",
	ExprFunction:                "ExprFunction",
	SubpBody:                    "SubpBody",
	SubpBodyStub:                "SubpBodyStub",
	SubpRenamingDecl:            "SubpRenamingDecl",
	EntryDecl:                   "EntryDecl",
	EntryBody:                   "EntryBody",
	ObjectDecl:                  "ObjectDecl",
	NumberDecl:                  "NumberDecl",
	ComponentDecl:               "ComponentDecl",
	DiscriminantSpec:            "DiscriminantSpec",
	ParamSpec:                   "ParamSpec",
	TypeDecl:                    "TypeDecl",
	IncompleteTypeDecl:          "IncompleteTypeDecl",
	SubtypeDecl:                 "SubtypeDecl",
	TaskTypeDecl:                "TaskTypeDecl",
	TaskBody:                    "TaskBody",
	SingleTaskDecl:              "SingleTaskDecl",
	ProtectedTypeDecl:           "ProtectedTypeDecl",
	ProtectedBody:               "ProtectedBody",
	SingleProtectedDecl:         "SingleProtectedDecl",
	ExceptionDecl:               "ExceptionDecl",
	EnumLiteralDecl:             "EnumLiteralDecl",
	GenericPackageDecl:          "GenericPackageDecl",
	GenericSubpDecl:             "GenericSubpDecl",
	GenericFormalTypeDecl:       "GenericFormalTypeDecl",
	GenericFormalObjDecl:        "GenericFormalObjDecl",
	GenericFormalSubpDecl:       "GenericFormalSubpDecl",
	GenericFormalPackageDecl:    "GenericFormalPackageDecl",
	GenericPackageInstantiation: "GenericPackageInstantiation",
	GenericSubpInstantiation:    "GenericSubpInstantiation",

	SubpSpec:              "SubpSpec",
	ParamSpecList:         "ParamSpecList",
	DeclList:              "DeclList",
	GenericFormalPart:     "GenericFormalPart",
	RenamingClause:        "RenamingClause",
	KnownDiscriminantPart: "KnownDiscriminantPart",
	AspectSpec:            "AspectSpec",
	AspectAssoc:           "AspectAssoc",

	RecordTypeDef:        "RecordTypeDef",
	ArrayTypeDef:         "ArrayTypeDef",
	AccessTypeDef:        "AccessTypeDef",
	DerivedTypeDef:       "DerivedTypeDef",
	EnumTypeDef:          "EnumTypeDef",
	SignedIntTypeDef:     "SignedIntTypeDef",
	ModIntTypeDef:        "ModIntTypeDef",
	FloatTypeDef:         "FloatTypeDef",
	OrdinaryFixedTypeDef: "OrdinaryFixedTypeDef",
	DecimalFixedTypeDef:  "DecimalFixedTypeDef",
	PrivateTypeDef:       "PrivateTypeDef",
	InterfaceTypeDef:     "InterfaceTypeDef",

	ComponentList:             "ComponentList",
	VariantPart:               "VariantPart",
	Variant:                   "Variant",
	IndexList:                 "IndexList",
	RangeSpec:                 "RangeSpec",
	SubtypeIndication:         "SubtypeIndication",
	DiscreteSubtypeIndication: "DiscreteSubtypeIndication",
	UnconstrainedArrayIndex:   "UnconstrainedArrayIndex",

	IntLit:              "IntLit",
	RealLit:             "RealLit",
	StringLit:           "StringLit",
	CharLit:             "CharLit",
	NullLit:             "NullLit",
	BinOp:               "BinOp",
	UnOp:                "UnOp",
	CallExpr:            "CallExpr",
	QualExpr:            "QualExpr",
	Allocator:           "Allocator",
	ExplicitDeref:       "ExplicitDeref",
	ParenExpr:           "ParenExpr",
	IfExpr:              "IfExpr",
	ElsifExprPart:       "ElsifExprPart",
	CaseExpr:            "CaseExpr",
	CaseExprAlternative: "CaseExprAlternative",
	MembershipExpr:      "MembershipExpr",
	AttributeRef:        "AttributeRef",
	ReduceAttributeRef:  "ReduceAttributeRef",
	Aggregate:           "Aggregate",
	AggregateAssoc:      "AggregateAssoc",
	QuantifiedExpr:      "QuantifiedExpr",
	DeclExpr:            "DeclExpr",
	RaiseExpr:           "RaiseExpr",
	RangeExpr:           "RangeExpr",
	BoxExpr:             "BoxExpr",
	TargetName:          "TargetName",

	ActualsList:      "ActualsList",
	ParamAssoc:       "ParamAssoc",
	ChoiceList:       "ChoiceList",
	OthersDesignator: "OthersDesignator",

	AssignStmt:           "AssignStmt",
	CallStmt:             "CallStmt",
	ReturnStmt:           "ReturnStmt",
	ExtendedReturnStmt:   "ExtendedReturnStmt",
	IfStmt:               "IfStmt",
	CaseStmt:             "CaseStmt",
	LoopStmt:             "LoopStmt",
	WhileStmt:            "WhileStmt",
	ForStmt:              "ForStmt",
	ExitStmt:             "ExitStmt",
	NullStmt:             "NullStmt",
	BlockStmt:            "BlockStmt",
	DelayStmt:            "DelayStmt",
	RaiseStmt:            "RaiseStmt",
	GotoStmt:             "GotoStmt",
	AbortStmt:            "AbortStmt",
	AcceptStmt:           "AcceptStmt",
	SelectStmt:           "SelectStmt",
	RequeueStmt:          "RequeueStmt",
	TerminateAlternative: "TerminateAlternative",

	StmtList:             "StmtList",
	HandledStmts:         "HandledStmts",
	ElsifPart:            "ElsifPart",
	ElsePart:             "ElsePart",
	CaseAlternative:      "CaseAlternative",
	ExceptionHandler:     "ExceptionHandler",
	ExceptionHandlerList: "ExceptionHandlerList",
	LabelNode:            "LabelNode",

	OpPlus:    "OpPlus",
	OpMinus:   "OpMinus",
	OpMul:     "OpMul",
	OpDiv:     "OpDiv",
	OpMod:     "OpMod",
	OpRem:     "OpRem",
	OpPow:     "OpPow",
	OpConcat:  "OpConcat",
	OpAnd:     "OpAnd",
	OpOr:      "OpOr",
	OpXor:     "OpXor",
	OpAndThen: "OpAndThen",
	OpOrElse:  "OpOrElse",
	OpNot:     "OpNot",
	OpAbs:     "OpAbs",
	OpEq:      "OpEq",
	OpNeq:     "OpNeq",
	OpLt:      "OpLt",
	OpLte:     "OpLte",
	OpGt:      "OpGt",
	OpGte:     "OpGte",
	OpIn:      "OpIn",
	OpNotIn:   "OpNotIn",

	TaggedNode:       "TaggedNode",
	AbstractNode:     "AbstractNode",
	LimitedNode:      "LimitedNode",
	PrivateNode:      "PrivateNode",
	AliasedNode:      "AliasedNode",
	ConstantNode:     "ConstantNode",
	ReverseNode:      "ReverseNode",
	AllNode:          "AllNode",
	NotNullNode:      "NotNullNode",
	SynchronizedNode: "SynchronizedNode",
	UntilNode:        "UntilNode",

	AttributeDefClause: "AttributeDefClause",
	EnumRepClause:      "EnumRepClause",
	RecordRepClause:    "RecordRepClause",
	ComponentClause:    "ComponentClause",
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}

	return "Kind(?)"
}

// IsDecl returns whether the kind is a declaration.
func (k Kind) IsDecl() bool {
	return kindDeclBegin < k && k < kindDeclEnd
}

// IsTypeDef returns whether the kind is a type definition form.
func (k Kind) IsTypeDef() bool {
	return kindTypeDefBegin < k && k < kindTypeDefEnd
}

// IsExpr returns whether the kind is an expression form.  Names (Identifier,
// DottedName) are usable as expressions but classified separately since they
// also appear in non-expression positions.
func (k Kind) IsExpr() bool {
	return kindExprBegin < k && k < kindExprEnd || k == Identifier || k == DottedName
}

// IsStmt returns whether the kind is a statement.
func (k Kind) IsStmt() bool {
	return kindStmtBegin < k && k < kindStmtEnd
}

// IsOp returns whether the kind is an operator marker.
func (k Kind) IsOp() bool {
	return kindOpBegin < k && k < kindOpEnd
}
