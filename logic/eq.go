package logic

import "sable/envs"

// Equation is one node of the constraint tree built per entry point: pure
// data, produced by the equation builder, consumed once by the solver and
// discarded.  The closed set of forms is True, Bind, Predicate, Domain, And
// and Any; no construct introduces anything beyond these.
type Equation interface {
	equation()
}

// True is the trivially satisfied equation.
type True struct{}

// And is the conjunction of its operands.
type And struct {
	Ops []Equation
}

// Any is the ordered disjunction of its operands.  The solver tries branches
// depth-first in declaration order and commits to the first one that is
// globally consistent.
type Any struct {
	Ops []Equation
}

// Bind constrains the target variable against a source value, which is
// either a concrete entity (Value) or another variable (Source), optionally
// passed through a conversion first.  The equality relation is named, not
// hardwired: an unbound target is assigned the source value, a bound or
// domain-restricted target is checked/narrowed with the relation.
type Bind struct {
	Target *Var

	// Exactly one of Source and Value is meaningful: Source when non-nil,
	// Value otherwise.
	Source *Var
	Value  envs.Entity

	// Eq names the equality relation used to compare the target side with
	// the source side; empty means entity equality.
	Eq EqID

	// Conv names the conversion applied to the source side before the
	// comparison or assignment; empty means none.
	Conv ConvID
}

// Predicate constrains the variable's value to satisfy the named predicate,
// optionally with one static argument.
type Predicate struct {
	Var  *Var
	Pred PredID
	Arg  envs.Entity
}

// Domain restricts the variable to a finite candidate set.  Domains only
// ever shrink: applying a second domain intersects it with the first.
type Domain struct {
	Var    *Var
	Values []envs.Entity
}

func (True) equation()       {}
func (*And) equation()       {}
func (*Any) equation()       {}
func (*Bind) equation()      {}
func (*Predicate) equation() {}
func (*Domain) equation()    {}

// NewAnd builds a conjunction, flattening nested conjunctions and dropping
// True operands.  It returns True when nothing remains.
func NewAnd(ops ...Equation) Equation {
	var flat []Equation

	for _, op := range ops {
		switch op := op.(type) {
		case True:
			continue
		case *And:
			flat = append(flat, op.Ops...)
		default:
			flat = append(flat, op)
		}
	}

	switch len(flat) {
	case 0:
		return True{}
	case 1:
		return flat[0]
	default:
		return &And{Ops: flat}
	}
}

// NewAny builds a disjunction, flattening directly nested disjunctions.  It
// is the caller's job to order branches in declaration order.
func NewAny(ops ...Equation) Equation {
	var flat []Equation

	for _, op := range ops {
		if any, ok := op.(*Any); ok {
			flat = append(flat, any.Ops...)
			continue
		}

		flat = append(flat, op)
	}

	if len(flat) == 1 {
		return flat[0]
	}

	return &Any{Ops: flat}
}

// collectVars gathers every variable reachable from the equation tree, in
// first-appearance order.
func collectVars(eq Equation, seen map[*Var]bool, out *[]*Var) {
	add := func(v *Var) {
		if v != nil && !seen[v] {
			seen[v] = true
			*out = append(*out, v)
		}
	}

	switch eq := eq.(type) {
	case True:
	case *And:
		for _, op := range eq.Ops {
			collectVars(op, seen, out)
		}
	case *Any:
		for _, op := range eq.Ops {
			collectVars(op, seen, out)
		}
	case *Bind:
		add(eq.Target)
		add(eq.Source)
	case *Predicate:
		add(eq.Var)
	case *Domain:
		add(eq.Var)
	}
}
