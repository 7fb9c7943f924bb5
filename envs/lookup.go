package envs

import "strings"

// Guard is the per-call cycle guard for referenced-environment computation.
// It tracks the (environment, symbol) pairs currently being resolved on this
// call stack; re-entering one yields "no match" for that occurrence instead
// of recursing infinitely.  A guard is created per top-level lookup and
// threaded through every nested lookup a referenced-env target computation
// performs, so independent concurrent lookups never share guard state.
type Guard struct {
	visited map[guardKey]bool
}

type guardKey struct {
	env    *Environment
	symbol string
}

func NewGuard() *Guard {
	return &Guard{visited: make(map[guardKey]bool)}
}

// LookupOptions control a Get traversal.  The zero value is a non-recursive,
// unfiltered lookup with a fresh guard.
type LookupOptions struct {
	// Recursive selects whether the traversal walks the parent chain.
	Recursive bool

	// FromTick, when positive, excludes entities registered after that
	// population tick: the "no use before declaration" rule.  Callers that
	// must see later declarations (eg. mutually referential package specs)
	// leave it zero.
	FromTick int

	// Guard carries the cycle guard of an enclosing lookup.  Nil starts a
	// fresh one.
	Guard *Guard
}

// Get walks from the chained environment upward (if recursive) and returns
// the entities visible under the symbol: at each level, directly stored
// entities first in insertion order, then referenced-environment entities in
// descriptor order, all deduplicated by entity equality with innermost-scope
// results ordered before outer ones.
func Get(ce ChainedEnv, symbol string, opts LookupOptions) []Entity {
	if ce.IsEmpty() {
		return nil
	}

	key := Fold(symbol)

	g := opts.Guard
	if g == nil {
		g = NewGuard()
	}

	var results []Entity

	env, chain := ce.Env, ce.Chain
	for env != nil {
		env = applyRebindings(env, chain)

		gk := guardKey{env: env, symbol: key}
		if g.visited[gk] {
			// This (environment, symbol) pair is already being resolved
			// higher up the call stack: treat the re-entrant occurrence as
			// an empty result and keep walking.
			if !opts.Recursive {
				break
			}

			env = env.Parent
			continue
		}

		g.visited[gk] = true

		// Entities only pick up the rebindings that are relevant to the
		// level they were found at: a rebinding whose source environment
		// does not enclose this level cannot affect anything declared here,
		// so it is shed.  This keeps entities from generic-independent
		// scopes (the standard unit above all) free of instantiation
		// chains.
		eff := shedChain(env, chain)

		for _, ent := range env.names[key] {
			if opts.FromTick > 0 && ent.tick > opts.FromTick {
				continue
			}

			collect(&results, ent.entity.ReboundAll(eff))
		}

		for _, rd := range env.refs {
			if rd.OpsOnly && !strings.HasPrefix(key, "\"") {
				continue
			}

			target := rd.Resolve(g)
			if target.IsEmpty() {
				continue
			}

			sub := Get(target, symbol, LookupOptions{
				Recursive: rd.Recursive,
				FromTick:  opts.FromTick,
				Guard:     g,
			})

			for _, e := range sub {
				if rd.Assert != nil {
					e = e.WithMetadata(rd.Assert.Apply(e.MD))
				}

				collect(&results, e.ReboundAll(eff))
			}
		}

		delete(g.visited, gk)

		if !opts.Recursive {
			break
		}

		env = env.Parent
	}

	return results
}

// shedChain filters the chain to the rebindings applicable at the given
// environment: those whose source is the environment itself or one of its
// ancestors.  Note that a rebinding's own target environment shares the
// source's parent, so entities found through the switched environment come
// out clean.
func shedChain(env *Environment, chain []*Rebinding) []*Rebinding {
	if len(chain) == 0 {
		return nil
	}

	var eff []*Rebinding
	for _, r := range chain {
		for e := env; e != nil; e = e.Parent {
			if e == r.Source {
				eff = append(eff, r)
				break
			}
		}
	}

	return eff
}

// applyRebindings replaces the environment by a rebinding target as long as
// one of the chain's rebindings has it as its source.  The iteration bound
// guards against a malformed chain switching in circles.
func applyRebindings(env *Environment, chain []*Rebinding) *Environment {
	for i := 0; i <= len(chain); i++ {
		switched := false
		for _, r := range chain {
			if r.Source == env {
				env = r.Target
				switched = true
				break
			}
		}

		if !switched {
			break
		}
	}

	return env
}

// collect appends the entity unless an equal one is already present.
func collect(results *[]Entity, e Entity) {
	for _, have := range *results {
		if have.Equal(e) {
			return
		}
	}

	*results = append(*results, e)
}
