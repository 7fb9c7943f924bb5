package envs

import (
	"fmt"

	"sable/ast"
)

// Entity is the value every lookup returns and every logic variable binds:
// a declaration node paired with the metadata and rebinding chain of the
// path it was found through.  The same declaration reached through two
// different instantiation contexts is two distinct entities.
type Entity struct {
	// Node is the declaration (or defining name) the entity denotes.
	Node *ast.Node

	// MD is the metadata accumulated along the lookup path.
	MD Metadata

	// Chain is the ordered rebinding chain accumulated along the lookup
	// path, outermost instantiation first.  Rebindings are memoized, so
	// chain elements compare by pointer.
	Chain []*Rebinding
}

// Null is the empty entity.  It is a legal bound value for logic variables:
// eg. a procedure call's type variable binds to Null.
var Null = Entity{}

// IsNull returns whether the entity denotes nothing.
func (e Entity) IsNull() bool {
	return e.Node == nil
}

// Equal reports whether two entities are the same declaration reached with
// the same metadata through the same instantiation contexts.
func (e Entity) Equal(o Entity) bool {
	if e.Node != o.Node || e.MD != o.MD || len(e.Chain) != len(o.Chain) {
		return false
	}

	for i, r := range e.Chain {
		if o.Chain[i] != r {
			return false
		}
	}

	return true
}

// Rebound returns the entity with the rebinding appended to its chain.  A
// rebinding already present in the chain is not appended again, which makes
// the operation idempotent.
func (e Entity) Rebound(r *Rebinding) Entity {
	for _, have := range e.Chain {
		if have == r {
			return e
		}
	}

	chain := make([]*Rebinding, len(e.Chain), len(e.Chain)+1)
	copy(chain, e.Chain)
	e.Chain = append(chain, r)
	return e
}

// ReboundAll applies Rebound for each rebinding of the chain in order.
func (e Entity) ReboundAll(chain []*Rebinding) Entity {
	for _, r := range chain {
		e = e.Rebound(r)
	}

	return e
}

// WithMetadata returns the entity with its metadata replaced.
func (e Entity) WithMetadata(md Metadata) Entity {
	e.MD = md
	return e
}

func (e Entity) String() string {
	if e.IsNull() {
		return "<null entity>"
	}

	if len(e.Chain) == 0 {
		return e.Node.String()
	}

	return fmt.Sprintf("%s+%d rebindings", e.Node, len(e.Chain))
}
