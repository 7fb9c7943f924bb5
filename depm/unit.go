package depm

import (
	"sable/ast"
	"sable/envs"
)

// UnitKind distinguishes the two compilation units a library name can map
// to.
type UnitKind int

const (
	// Specification is the declaration unit of a library item.
	Specification UnitKind = iota

	// Body is the completion unit.
	Body
)

func (k UnitKind) String() string {
	if k == Body {
		return "body"
	}

	return "specification"
}

// Unit is one loaded compilation unit: the parsed tree plus the population
// results the graph hangs off it.  Units are created by the graph and
// populated exactly once; after population a unit is only read.
type Unit struct {
	// Name is the folded full dotted library name (eg. `text_io.editing`).
	Name string

	// Kind selects between a specification and its body.
	Kind UnitKind

	// Path is the source path shown in diagnostics.
	Path string

	// Root is the unit's CompilationUnit tree.
	Root *ast.Node

	// Decl is the library item inside Root, located during population.
	Decl *ast.Node

	// env is the unit's context environment: the scope its context clauses
	// populate and its library item hangs under.
	env *envs.Environment

	state int
}

// Population states.  A unit reached again while it is populating (mutually
// referencing specifications) is left alone; it fills in as the original
// pass completes, mirroring sequential elaboration.
const (
	unitLoaded int = iota
	unitPopulating
	unitPopulated
)

// Loader supplies parsed unit trees by library name.  Parsing is an
// external concern: the graph consumes trees and never touches source
// text.
type Loader interface {
	// Load returns the named unit's tree and its display path.  A nil tree
	// with a nil error means the unit does not exist, which the graph
	// degrades on rather than failing the run.
	Load(name string, kind UnitKind) (*ast.Node, string, error)
}
