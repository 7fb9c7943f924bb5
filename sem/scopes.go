package sem

import (
	"sable/ast"
	"sable/envs"
)

// Scopes is the read side of a populated unit graph: everything the equation
// builder and the semantic relations need to know about where nodes live and
// what they designate.  The population driver implements it; tests may
// substitute hand-built fixtures.
type Scopes interface {
	// EnclosingEnv returns the innermost environment covering the node,
	// found by walking the parent chain to the nearest scope-introducing
	// ancestor.
	EnclosingEnv(n *ast.Node) envs.ChainedEnv

	// DesignatedEnv returns the environment a declaration designates: a
	// package's declarative environment, a type's own environment, or a
	// generic instantiation's rebound inner environment.
	DesignatedEnv(n *ast.Node) (envs.ChainedEnv, bool)

	// DeclaredIn returns the environment the declaration's defining names
	// were registered into, nil when the node declares nothing.
	DeclaredIn(n *ast.Node) *envs.Environment

	// TickOf returns the population tick at which the declaration's names
	// were registered, 0 when none was recorded.  Ticks bound sequential
	// visibility: a declaration's own equation must not see entities
	// registered after it.
	TickOf(n *ast.Node) int

	// InstanceTarget resolves a generic instantiation node to the generic
	// declaration it instantiates, recorded during population.
	InstanceTarget(n *ast.Node) (*ast.Node, bool)

	// Std returns handles to the standard unit's predefined entities.
	Std() *StdEntities
}

// StdEntities are the predefined declarations of the synthesized standard
// unit.  Relations that must name a specific predefined type (literal
// typing, attribute results) reach them through here instead of looking
// them up by name on every evaluation.
type StdEntities struct {
	Boolean   envs.Entity
	Integer   envs.Entity
	Natural   envs.Entity
	Float     envs.Entity
	Character envs.Entity
	String    envs.Entity
	Duration  envs.Entity
}

// Scalars returns the predefined scalar types in declaration order, the
// candidate set used when a literal-only expression must pick a type with
// no context to narrow it.
func (se *StdEntities) Scalars() []envs.Entity {
	return []envs.Entity{se.Integer, se.Natural, se.Float, se.Character, se.Duration}
}

// Numerics returns the predefined numeric types in declaration order.
func (se *StdEntities) Numerics() []envs.Entity {
	return []envs.Entity{se.Integer, se.Natural, se.Float, se.Duration}
}
