package depm

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"sable/ast"
	"sable/envs"
	"sable/report"
	"sable/sem"
)

// unitKey identifies a unit inside the graph's tables.
type unitKey struct {
	name string
	kind UnitKind
}

func (k unitKey) String() string {
	return fmt.Sprintf("%s (%s)", k.name, k.kind)
}

// declSite records where a declaration's names were registered and at which
// population tick.
type declSite struct {
	env  *envs.Environment
	tick int
}

// Graph owns every loaded unit together with the environment structure
// population hangs off their trees.  It implements sem.Scopes, so a graph
// is what resolution runs against.
//
// Loading (parsing) is concurrency-safe and deduplicated per unit;
// population is serialized under one mutex, so environments are written by
// a single goroutine at a time and only read afterwards.
type Graph struct {
	loader Loader

	group singleflight.Group // dedupes concurrent loads of one unit

	popMu sync.Mutex // serializes population passes
	tick  int        // population counter, guarded by popMu

	rebinds *envs.RebindTable

	mu         sync.RWMutex
	units      map[unitKey]*Unit
	scopes     map[*ast.Node]*envs.Environment
	designated map[*ast.Node]envs.ChainedEnv
	declared   map[*ast.Node]declSite
	instTarget map[*ast.Node]*ast.Node

	// root is the shared ancestor of every unit's context environment.  It
	// holds the standard unit's name and a referenced-env edge exposing its
	// declarations unqualified.
	root *envs.Environment

	std *sem.StdEntities
}

// NewGraph creates a graph over the loader and installs the synthesized
// standard unit into it.
func NewGraph(loader Loader) *Graph {
	g := &Graph{
		loader:     loader,
		rebinds:    envs.NewRebindTable(),
		units:      make(map[unitKey]*Unit),
		scopes:     make(map[*ast.Node]*envs.Environment),
		designated: make(map[*ast.Node]envs.ChainedEnv),
		declared:   make(map[*ast.Node]declSite),
		instTarget: make(map[*ast.Node]*ast.Node),
	}

	g.root = envs.NewEnvironment(nil, nil)
	g.installStd()
	return g
}

// EnsureUnit returns the unit for the library name, loading and populating
// it on first request.  A missing unit is reported once as a warning and
// yields false; importers then resolve degraded rather than failing the
// run.
func (g *Graph) EnsureUnit(name string, kind UnitKind) (*Unit, bool) {
	u, ok := g.loadUnit(envs.Fold(name), kind, true)
	if !ok {
		return nil, false
	}

	g.popMu.Lock()
	defer g.popMu.Unlock()

	g.populateUnit(u)
	return u, true
}

// ensureLocked is EnsureUnit for population chasing its dependencies: the
// caller already holds popMu.
func (g *Graph) ensureLocked(name string, kind UnitKind, required bool) (*Unit, bool) {
	u, ok := g.loadUnit(envs.Fold(name), kind, required)
	if !ok {
		return nil, false
	}

	g.populateUnit(u)
	return u, true
}

// loadUnit fetches a unit from the loader, deduplicating concurrent
// requests and memoizing the outcome, "does not exist" included.  When
// `required` is set a missing unit is reported; an optional probe (a body
// looking for its specification) stays silent.
func (g *Graph) loadUnit(name string, kind UnitKind, required bool) (*Unit, bool) {
	key := unitKey{name: name, kind: kind}

	g.mu.RLock()
	u, have := g.units[key]
	g.mu.RUnlock()
	if have {
		return u, u != nil
	}

	v, _, _ := g.group.Do(key.String(), func() (interface{}, error) {
		g.mu.RLock()
		u, have := g.units[key]
		g.mu.RUnlock()
		if have {
			return u, nil
		}

		root, path, err := g.loader.Load(key.name, key.kind)
		switch {
		case err != nil:
			report.ReportUnitError(key.name, "cannot load %s: %s", key.kind, err.Error())
			root = nil
		case root == nil && required:
			report.ReportUnitWarning(key.name, "no %s found; names depending on it will not resolve", key.kind)
		}

		var loaded *Unit
		if root != nil {
			loaded = &Unit{Name: key.name, Kind: key.kind, Path: path, Root: root}
		}

		g.mu.Lock()
		g.units[key] = loaded
		g.mu.Unlock()

		return loaded, nil
	})

	u, _ = v.(*Unit)
	return u, u != nil
}

// nextTick advances the population counter.  Callers hold popMu.
func (g *Graph) nextTick() int {
	g.tick++
	return g.tick
}

// -----------------------------------------------------------------------------
// sem.Scopes implementation.

// EnclosingEnv returns the innermost environment covering the node.
func (g *Graph) EnclosingEnv(n *ast.Node) envs.ChainedEnv {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for p := n.Parent; p != nil; p = p.Parent {
		if env, ok := g.scopes[p]; ok {
			return envs.Chained(env)
		}
	}

	return envs.Chained(g.root)
}

// DesignatedEnv returns the environment the declaration designates.
func (g *Graph) DesignatedEnv(n *ast.Node) (envs.ChainedEnv, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ce, ok := g.designated[n]
	return ce, ok
}

// DeclaredIn returns the environment the declaration's names were
// registered into.
func (g *Graph) DeclaredIn(n *ast.Node) *envs.Environment {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.declared[n].env
}

// TickOf returns the declaration's registration tick.
func (g *Graph) TickOf(n *ast.Node) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.declared[n].tick
}

// InstanceTarget returns the generic an instantiation resolved to.
func (g *Graph) InstanceTarget(n *ast.Node) (*ast.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.instTarget[n]
	return t, ok
}

// Std returns the predefined entity handles.
func (g *Graph) Std() *sem.StdEntities {
	return g.std
}

// -----------------------------------------------------------------------------
// Population-side table writes.  All run under popMu; the short mu sections
// keep concurrent readers of already-populated units safe.

func (g *Graph) setScope(n *ast.Node, env *envs.Environment) {
	g.mu.Lock()
	g.scopes[n] = env
	g.mu.Unlock()
}

// scopeOf returns the environment owned by the node, nil when it has none.
func (g *Graph) scopeOf(n *ast.Node) *envs.Environment {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.scopes[n]
}

func (g *Graph) setDesignated(n *ast.Node, ce envs.ChainedEnv) {
	g.mu.Lock()
	g.designated[n] = ce
	g.mu.Unlock()
}

func (g *Graph) setDeclared(n *ast.Node, env *envs.Environment, tick int) {
	g.mu.Lock()
	g.declared[n] = declSite{env: env, tick: tick}
	g.mu.Unlock()
}

func (g *Graph) setInstTarget(inst, gen *ast.Node) {
	g.mu.Lock()
	g.instTarget[inst] = gen
	g.mu.Unlock()
}
