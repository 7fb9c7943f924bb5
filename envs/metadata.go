package envs

// Metadata is the small fixed record of boolean tags carried by every entity
// a lookup returns.  Tags describe how a declaration may be reached rather
// than what it is: eg. a subprogram inserted into a type's environment for
// dot-notation calls is tagged DottableSubp there, while its ordinary
// declaration carries no tags.
type Metadata struct {
	// DottableSubp marks a subprogram callable with dot notation: the call's
	// prefix supplies its first parameter.
	DottableSubp bool

	// ImplicitDeref marks an entity reached through an implicit dereference
	// of an access value.
	ImplicitDeref bool
}

// MetadataAssertion is a per-tag override attached to a referenced-env edge.
// Only the tags selected by Mask are asserted; an asserted tag's value
// unconditionally replaces the prior value for entities reached through the
// edge.
type MetadataAssertion struct {
	MD   Metadata
	Mask Metadata
}

// Apply combines an entity's metadata with the assertion.
func (a MetadataAssertion) Apply(md Metadata) Metadata {
	if a.Mask.DottableSubp {
		md.DottableSubp = a.MD.DottableSubp
	}

	if a.Mask.ImplicitDeref {
		md.ImplicitDeref = a.MD.ImplicitDeref
	}

	return md
}
