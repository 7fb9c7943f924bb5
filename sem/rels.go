package sem

import (
	"sable/ast"
	"sable/envs"
	"sable/logic"
)

// Relation identifiers carried by equations.  Bind and Predicate atoms name
// relations instead of holding function values, so the equation tree stays
// pure data and the same identifiers read back out of a dumped equation.
const (
	// EqMatchingType holds when both sides canonicalize to the same type.
	EqMatchingType logic.EqID = "matchingType"

	// EqMatchingFormalType matches an actual's type against a formal's.
	EqMatchingFormalType logic.EqID = "matchingFormalType"

	// ConvTypeOfRef maps a referenced declaration to the type it denotes a
	// value of.  It does not apply to valueless declarations, which prunes
	// branches that bound a reference unusable in value position.
	ConvTypeOfRef logic.ConvID = "typeOfRef"

	// ConvCanonicalType maps a type to its canonical form, resolving
	// subtype chains and generic formal substitutions.
	ConvCanonicalType logic.ConvID = "canonicalType"

	// ConvAccessedType maps an access type to its designated type.
	ConvAccessedType logic.ConvID = "accessedType"

	// ConvIndexOrScalarType maps an array type to its first index type and
	// a scalar type to itself: the type of First/Last/Range attributes.
	ConvIndexOrScalarType logic.ConvID = "indexOrScalarType"

	PredIsIntType      logic.PredID = "isIntType"
	PredIsRealType     logic.PredID = "isRealType"
	PredIsNumericType  logic.PredID = "isNumericType"
	PredIsStringType   logic.PredID = "isStringType"
	PredIsCharType     logic.PredID = "isCharType"
	PredIsBoolType     logic.PredID = "isBoolType"
	PredIsScalarType   logic.PredID = "isScalarType"
	PredIsDiscreteType logic.PredID = "isDiscreteType"
	PredIsAccessType   logic.PredID = "isAccessType"
	PredIsArrayType    logic.PredID = "isArrayType"

	// PredConvertibleTo holds when a value of the variable's type can be
	// explicitly converted to the argument type.
	PredConvertibleTo logic.PredID = "convertibleTo"

	// PredAllocatesType holds when the variable is an access type
	// designating the argument type: the constraint an allocator places on
	// its expected type.
	PredAllocatesType logic.PredID = "allocatesType"
)

// DefineRelations builds the relation registry the solver evaluates
// equations under.  Every relation resolves types by direct environment
// lookup with a fresh cycle guard per evaluation.
func DefineRelations(sc Scopes) *logic.Relations {
	rels := logic.NewRelations()

	sameType := func(target, source envs.Entity) bool {
		if target.IsNull() || source.IsNull() {
			return target.IsNull() == source.IsNull()
		}

		return SameType(sc, target, source, envs.NewGuard())
	}

	rels.DefineEq(EqMatchingType, sameType)
	rels.DefineEq(EqMatchingFormalType, sameType)

	rels.DefineConv(ConvTypeOfRef, func(e envs.Entity) (envs.Entity, bool) {
		return TypeOfRef(sc, e, envs.NewGuard())
	})

	rels.DefineConv(ConvCanonicalType, func(e envs.Entity) (envs.Entity, bool) {
		if !IsTypeEntity(e) {
			return envs.Null, false
		}

		return CanonicalType(sc, e, envs.NewGuard()), true
	})

	rels.DefineConv(ConvAccessedType, func(e envs.Entity) (envs.Entity, bool) {
		t, ok := TypeOfRef(sc, e, envs.NewGuard())
		if !ok {
			return envs.Null, false
		}

		return AccessedType(sc, t, envs.NewGuard())
	})

	rels.DefineConv(ConvIndexOrScalarType, func(e envs.Entity) (envs.Entity, bool) {
		if !IsTypeEntity(e) {
			return envs.Null, false
		}

		g := envs.NewGuard()
		if idx := IndexTypesOf(sc, e, g); len(idx) > 0 {
			return idx[0], true
		}

		return CanonicalType(sc, e, g), true
	})

	pred := func(id logic.PredID, fn func(envs.Entity, *envs.Guard) bool) {
		rels.DefinePred(id, func(value, _ envs.Entity) bool {
			if value.IsNull() {
				return false
			}

			return fn(value, envs.NewGuard())
		})
	}

	isInt := func(t envs.Entity, g *envs.Guard) bool {
		td, _ := BaseTypeDef(sc, t, g)
		return td != nil && (td.Kind == ast.SignedIntTypeDef || td.Kind == ast.ModIntTypeDef)
	}

	isReal := func(t envs.Entity, g *envs.Guard) bool {
		td, _ := BaseTypeDef(sc, t, g)
		if td == nil {
			return false
		}

		switch td.Kind {
		case ast.FloatTypeDef, ast.OrdinaryFixedTypeDef, ast.DecimalFixedTypeDef:
			return true
		}

		return false
	}

	isEnum := func(t envs.Entity, g *envs.Guard) bool {
		td, _ := BaseTypeDef(sc, t, g)
		return td != nil && td.Kind == ast.EnumTypeDef
	}

	isChar := func(t envs.Entity, g *envs.Guard) bool {
		return DerivesFrom(sc, t, sc.Std().Character, g)
	}

	isArray := func(t envs.Entity, g *envs.Guard) bool {
		td, _ := BaseTypeDef(sc, t, g)
		return td != nil && td.Kind == ast.ArrayTypeDef
	}

	pred(PredIsIntType, isInt)
	pred(PredIsRealType, isReal)

	pred(PredIsNumericType, func(t envs.Entity, g *envs.Guard) bool {
		return isInt(t, g) || isReal(t, g)
	})

	pred(PredIsStringType, func(t envs.Entity, g *envs.Guard) bool {
		if !isArray(t, g) {
			return false
		}

		ct, ok := ComponentTypeOf(sc, t, g)
		return ok && isChar(ct, g)
	})

	pred(PredIsCharType, isChar)

	pred(PredIsBoolType, func(t envs.Entity, g *envs.Guard) bool {
		return DerivesFrom(sc, t, sc.Std().Boolean, g)
	})

	pred(PredIsScalarType, func(t envs.Entity, g *envs.Guard) bool {
		return isInt(t, g) || isReal(t, g) || isEnum(t, g)
	})

	pred(PredIsDiscreteType, func(t envs.Entity, g *envs.Guard) bool {
		return isInt(t, g) || isEnum(t, g)
	})

	pred(PredIsAccessType, func(t envs.Entity, g *envs.Guard) bool {
		td, _ := BaseTypeDef(sc, t, g)
		return td != nil && td.Kind == ast.AccessTypeDef
	})

	pred(PredIsArrayType, isArray)

	rels.DefinePred(PredConvertibleTo, func(value, arg envs.Entity) bool {
		if value.IsNull() || arg.IsNull() {
			return false
		}

		g := envs.NewGuard()
		if SameType(sc, value, arg, g) {
			return true
		}

		numeric := func(t envs.Entity) bool { return isInt(t, g) || isReal(t, g) }
		if numeric(value) && numeric(arg) {
			return true
		}

		return DerivesFrom(sc, value, arg, g) || DerivesFrom(sc, arg, value, g)
	})

	rels.DefinePred(PredAllocatesType, func(value, arg envs.Entity) bool {
		if value.IsNull() || arg.IsNull() {
			return false
		}

		g := envs.NewGuard()
		dt, ok := AccessedType(sc, value, g)
		return ok && SameType(sc, dt, arg, g)
	})

	return rels
}
