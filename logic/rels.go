package logic

import "sable/envs"

// Relation identifiers.  Equations carry these names instead of function
// values so the constraint tree stays pure data; the solver resolves them
// against a Relations table supplied at construction.
type (
	EqID   string
	ConvID string
	PredID string
)

// EqFunc compares the target side's value (held or candidate) against the
// source side's converted value.
type EqFunc func(target, source envs.Entity) bool

// ConvFunc derives a new value from a bound one, eg. the canonical type of a
// referenced declaration.  Returning false fails the constraint: the
// conversion does not apply to that value.
type ConvFunc func(envs.Entity) (envs.Entity, bool)

// PredFunc tests a property of a bound value, with an optional static
// argument.
type PredFunc func(value, arg envs.Entity) bool

// Relations is the registry of named equality, conversion and predicate
// relations a solver evaluates equations under.
type Relations struct {
	eqs   map[EqID]EqFunc
	convs map[ConvID]ConvFunc
	preds map[PredID]PredFunc
}

func NewRelations() *Relations {
	return &Relations{
		eqs:   make(map[EqID]EqFunc),
		convs: make(map[ConvID]ConvFunc),
		preds: make(map[PredID]PredFunc),
	}
}

// DefineEq registers an equality relation under the id.
func (r *Relations) DefineEq(id EqID, fn EqFunc) {
	r.eqs[id] = fn
}

// DefineConv registers a conversion under the id.
func (r *Relations) DefineConv(id ConvID, fn ConvFunc) {
	r.convs[id] = fn
}

// DefinePred registers a predicate under the id.
func (r *Relations) DefinePred(id PredID, fn PredFunc) {
	r.preds[id] = fn
}

// eq resolves an equality id; the empty id is entity equality.
func (r *Relations) eq(id EqID) (EqFunc, bool) {
	if id == "" {
		return func(a, b envs.Entity) bool { return a.Equal(b) }, true
	}

	fn, ok := r.eqs[id]
	return fn, ok
}

// conv resolves a conversion id; the empty id is the identity.
func (r *Relations) conv(id ConvID) (ConvFunc, bool) {
	if id == "" {
		return func(e envs.Entity) (envs.Entity, bool) { return e, true }, true
	}

	fn, ok := r.convs[id]
	return fn, ok
}

// pred resolves a predicate id.
func (r *Relations) pred(id PredID) (PredFunc, bool) {
	fn, ok := r.preds[id]
	return fn, ok
}
