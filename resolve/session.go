package resolve

import (
	"sync"

	"sable/ast"
	"sable/depm"
	"sable/envs"
	"sable/logic"
	"sable/sem"
)

// Options configure a resolution session.
type Options struct {
	// CheckAmbiguity makes an entry point with two distinct solutions fail
	// instead of committing the first in declaration order.
	CheckAmbiguity bool

	// Workers bounds how many units ResolveUnits resolves at once.  Zero
	// or negative means no bound.
	Workers int
}

// Session runs name and type resolution over a unit graph and retains the
// committed results.  One session may resolve many units, concurrently:
// population serializes inside the graph, solving runs in parallel, and
// results merge under the session lock.
type Session struct {
	graph *depm.Graph
	rels  *logic.Relations
	opts  Options

	mu    sync.Mutex
	types map[*ast.Node]envs.Entity
	refs  map[*ast.Node]envs.Entity
}

// NewSession creates a session over the graph.
func NewSession(g *depm.Graph, opts Options) *Session {
	return &Session{
		graph: g,
		rels:  sem.DefineRelations(g),
		opts:  opts,
		types: make(map[*ast.Node]envs.Entity),
		refs:  make(map[*ast.Node]envs.Entity),
	}
}

// ResolvedType returns the type committed for an expression node.
func (s *Session) ResolvedType(n *ast.Node) (envs.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.types[n]
	return t, ok
}

// ResolvedReference returns the declaration committed for a name node.
func (s *Session) ResolvedReference(n *ast.Node) (envs.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refs[n]
	return r, ok
}
