package logic

import "fmt"

// Var is a logic variable: a resolvable cell representing an unknown type or
// reference.  Variables are allocated fresh per entry-point solve and hold
// no state themselves; all binding state lives inside the solver, so a
// failed solve leaves nothing behind.
type Var struct {
	id   int
	name string
}

func (v *Var) String() string {
	return fmt.Sprintf("%s#%d", v.name, v.id)
}

// VarPool allocates logic variables with stable ids.  Ids order variables
// deterministically wherever the solver has to pick one.
type VarPool struct {
	next int
}

// New allocates a fresh variable.  The name is purely diagnostic.
func (p *VarPool) New(name string) *Var {
	v := &Var{id: p.next, name: name}
	p.next++
	return v
}
