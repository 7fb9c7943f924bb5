package envs

import (
	"strings"

	"sable/ast"
)

// Environment is one scope's record: a symbol → entity multimap preserving
// insertion order, a nullable parent link, and an ordered list of
// referenced-environment descriptors.  One environment exists per
// scope-introducing node; population creates them and lookups never mutate
// them.
type Environment struct {
	// Owner is the scope-introducing node the environment belongs to, nil
	// for synthesized roots.
	Owner *ast.Node

	// Parent is the lexically enclosing environment, nil at the root.
	Parent *Environment

	// names maps folded symbols to their entries in insertion order.
	names map[string][]entry

	// refs are the referenced-environment descriptors in attachment order.
	refs []*RefDescriptor
}

// entry is one declared entity together with the population-order tick it
// was registered at, which drives sequential-visibility filtering.
type entry struct {
	entity Entity
	tick   int
}

// NewEnvironment creates an empty environment under the given parent.
func NewEnvironment(owner *ast.Node, parent *Environment) *Environment {
	return &Environment{
		Owner:  owner,
		Parent: parent,
		names:  make(map[string][]entry),
	}
}

// Fold normalizes a symbol for environment keys.  Identifiers fold case;
// operator symbols (written with their quotes, eg. `"+"`) are preserved.
func Fold(symbol string) string {
	if strings.HasPrefix(symbol, "\"") {
		return symbol
	}

	return strings.ToLower(symbol)
}

// Add registers an entity under the symbol.  The tick records the
// registration's position in population order; entities registered by the
// same pass are therefore ordered textually.
func (env *Environment) Add(symbol string, e Entity, tick int) {
	key := Fold(symbol)
	env.names[key] = append(env.names[key], entry{entity: e, tick: tick})
}

// AddRef attaches a referenced-environment descriptor.  Descriptor order is
// attachment order, which lookups preserve.
func (env *Environment) AddRef(rd *RefDescriptor) {
	env.refs = append(env.refs, rd)
}

// Symbols returns the number of distinct symbols declared directly in the
// environment.
func (env *Environment) Symbols() int {
	return len(env.names)
}

// -----------------------------------------------------------------------------

// RefDescriptor is a referenced-environment edge: a non-parent link bringing
// additional symbols into visibility.  The target is computed lazily on each
// traversal because it may itself require lookups (eg. resolving the package
// name of a use clause), and those nested lookups share the caller's cycle
// guard.
type RefDescriptor struct {
	// Owner is the node that introduced the edge (eg. the use clause).
	Owner *ast.Node

	// Resolve computes the target environment.  It may return an empty
	// ChainedEnv when the target cannot be determined; the edge then
	// contributes nothing.
	Resolve func(g *Guard) ChainedEnv

	// Recursive selects whether lookups through the edge walk the target's
	// parent chain as well.
	Recursive bool

	// OpsOnly restricts the edge to quoted operator symbols: the shape of
	// a use-type clause, which exposes a scope's operators and nothing
	// else.
	OpsOnly bool

	// Post records whether the edge was attached by the deferred population
	// pass.
	Post bool

	// Assert optionally overrides metadata tags on entities reached through
	// the edge.
	Assert *MetadataAssertion
}
