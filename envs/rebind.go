package envs

import "sync"

// Rebinding redirects one environment to another during lookup traversal:
// whenever the source environment would be visited with this rebinding
// active, the target environment is visited instead.  One rebinding is
// created per generic instantiation, mapping the generic's formal-part
// environment to the instantiation's actuals environment.
//
// Rebindings are immutable and memoized by (source, target), so repeated
// instantiations over the same pair share identity and chains compare by
// pointer.
type Rebinding struct {
	Source *Environment
	Target *Environment
}

type rebindKey struct {
	source, target *Environment
}

// RebindTable memoizes rebindings.  It is safe for concurrent use.
type RebindTable struct {
	mu    sync.Mutex
	table map[rebindKey]*Rebinding
}

func NewRebindTable() *RebindTable {
	return &RebindTable{table: make(map[rebindKey]*Rebinding)}
}

// Of returns the unique rebinding for the (source, target) pair, creating
// it on first use.
func (rt *RebindTable) Of(source, target *Environment) *Rebinding {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	key := rebindKey{source, target}
	if r, ok := rt.table[key]; ok {
		return r
	}

	r := &Rebinding{Source: source, Target: target}
	rt.table[key] = r
	return r
}

// -----------------------------------------------------------------------------

// ChainedEnv is an environment paired with the rebinding chain under which
// it is viewed.  Designated environments of instantiated generics are
// chained; most environments carry an empty chain.
type ChainedEnv struct {
	Env   *Environment
	Chain []*Rebinding
}

// Chained wraps an environment with no rebindings.
func Chained(env *Environment) ChainedEnv {
	return ChainedEnv{Env: env}
}

// IsEmpty returns whether the chained environment has no underlying
// environment, the substitute used for unresolved imports.
func (ce ChainedEnv) IsEmpty() bool {
	return ce.Env == nil
}

// Extend returns the chained environment with more rebindings appended,
// skipping ones already present.
func (ce ChainedEnv) Extend(chain []*Rebinding) ChainedEnv {
	if len(chain) == 0 {
		return ce
	}

outer:
	for _, r := range chain {
		for _, have := range ce.Chain {
			if have == r {
				continue outer
			}
		}

		next := make([]*Rebinding, len(ce.Chain), len(ce.Chain)+1)
		copy(next, ce.Chain)
		ce.Chain = append(next, r)
	}

	return ce
}
