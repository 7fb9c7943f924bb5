// Package testutil provides in-memory unit loading and compact tree
// construction for resolver tests.  Trees built here mirror the shapes the
// external parser produces; tests assemble units programmatically instead
// of parsing source text.
package testutil

import (
	"sync"

	"sable/ast"
	"sable/depm"
)

// MapLoader is a depm.Loader over in-memory trees.  Keys are folded unit
// names, with "#body" appended for body units.
type MapLoader struct {
	Units map[string]*ast.Node

	mu    sync.Mutex
	loads []string
}

// NewMapLoader creates an empty loader; tests fill Units directly.
func NewMapLoader() *MapLoader {
	return &MapLoader{Units: make(map[string]*ast.Node)}
}

// Add registers a specification unit under the name.
func (l *MapLoader) Add(name string, root *ast.Node) *MapLoader {
	l.Units[name] = root
	return l
}

// AddBody registers a body unit under the name.
func (l *MapLoader) AddBody(name string, root *ast.Node) *MapLoader {
	l.Units[name+"#body"] = root
	return l
}

// Load implements depm.Loader.
func (l *MapLoader) Load(name string, kind depm.UnitKind) (*ast.Node, string, error) {
	key := name
	if kind == depm.Body {
		key += "#body"
	}

	l.mu.Lock()
	l.loads = append(l.loads, key)
	l.mu.Unlock()

	root, ok := l.Units[key]
	if !ok {
		return nil, "", nil
	}

	return root, "<test:" + key + ">", nil
}

// Loads returns the keys requested so far, in order.
func (l *MapLoader) Loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.loads...)
}
