package builtins

import (
	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// Ordering is the ordered fundamental facet.
type Ordering uint8

const (
	OrderedFalse Ordering = iota
	OrderedPartial
	OrderedTotal
)

// Type describes a builtin type definition.
type Type struct {
	Name       string
	Base       string
	Primitive  string
	Variety    corpus.Variety
	ItemType   string
	WhiteSpace corpus.WhiteSpace
	Space      value.Space
	Ordered    Ordering
	Numeric    bool
	Complex    bool
	// Patterns holds the builtin pattern facets, checked through Check.
	Patterns  []string
	MinLength int64
	// FractionDigits is 0 for integer-derived types and -1 elsewhere.
	FractionDigits int64
}

func primitive(name string, space value.Space, ordered Ordering, numeric bool) Type {
	ws := corpus.WhiteSpaceCollapse
	if name == TypeNameString {
		ws = corpus.WhiteSpacePreserve
	}
	return Type{
		Name:           name,
		Base:           TypeNameAnySimpleType,
		Primitive:      name,
		Variety:        corpus.VarietyAtomic,
		WhiteSpace:     ws,
		Space:          space,
		Ordered:        ordered,
		Numeric:        numeric,
		MinLength:      -1,
		FractionDigits: -1,
	}
}

func derived(name, base string) Type {
	parent := byName[base]
	t := parent
	t.Name = name
	t.Base = base
	t.Patterns = nil
	return t
}

// registry lists the builtins with every base before its derivations.
var (
	registry []Type
	byName   = map[string]Type{}
)

func add(t Type) {
	registry = append(registry, t)
	byName[t.Name] = t
}

func init() {
	add(Type{Name: TypeNameAnyType, Complex: true, MinLength: -1, FractionDigits: -1})
	add(Type{Name: TypeNameAnySimpleType, Base: TypeNameAnyType, MinLength: -1, FractionDigits: -1})

	add(primitive(TypeNameString, value.SpaceString, OrderedFalse, false))
	add(primitive(TypeNameBoolean, value.SpaceBoolean, OrderedFalse, false))
	add(primitive(TypeNameDecimal, value.SpaceDecimal, OrderedTotal, true))
	add(primitive(TypeNameFloat, value.SpaceFloat, OrderedPartial, true))
	add(primitive(TypeNameDouble, value.SpaceDouble, OrderedPartial, true))
	add(primitive(TypeNameDuration, value.SpaceDuration, OrderedPartial, false))
	add(primitive(TypeNameDateTime, value.SpaceDateTime, OrderedPartial, false))
	add(primitive(TypeNameTime, value.SpaceTime, OrderedPartial, false))
	add(primitive(TypeNameDate, value.SpaceDate, OrderedPartial, false))
	add(primitive(TypeNameGYearMonth, value.SpaceGYearMonth, OrderedPartial, false))
	add(primitive(TypeNameGYear, value.SpaceGYear, OrderedPartial, false))
	add(primitive(TypeNameGMonthDay, value.SpaceGMonthDay, OrderedPartial, false))
	add(primitive(TypeNameGDay, value.SpaceGDay, OrderedPartial, false))
	add(primitive(TypeNameGMonth, value.SpaceGMonth, OrderedPartial, false))
	add(primitive(TypeNameHexBinary, value.SpaceHexBinary, OrderedFalse, false))
	add(primitive(TypeNameBase64Binary, value.SpaceBase64Binary, OrderedFalse, false))
	add(primitive(TypeNameAnyURI, value.SpaceAnyURI, OrderedFalse, false))
	add(primitive(TypeNameQName, value.SpaceQName, OrderedFalse, false))
	add(primitive(TypeNameNOTATION, value.SpaceNotation, OrderedFalse, false))

	ns := derived(TypeNameNormalizedString, TypeNameString)
	ns.WhiteSpace = corpus.WhiteSpaceReplace
	add(ns)
	tok := derived(TypeNameToken, TypeNameNormalizedString)
	tok.WhiteSpace = corpus.WhiteSpaceCollapse
	add(tok)
	withPattern := func(name, base, pattern string) {
		t := derived(name, base)
		t.Patterns = []string{pattern}
		add(t)
	}
	withPattern(TypeNameLanguage, TypeNameToken, `[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*`)
	withPattern(TypeNameNMTOKEN, TypeNameToken, `\c+`)
	withPattern(TypeNameName, TypeNameToken, `\i\c*`)
	withPattern(TypeNameNCName, TypeNameName, `[\i-[:]][\c-[:]]*`)
	add(derived(TypeNameID, TypeNameNCName))
	add(derived(TypeNameIDREF, TypeNameNCName))
	add(derived(TypeNameENTITY, TypeNameNCName))
	list := func(name, item string) {
		t := Type{
			Name:           name,
			Base:           TypeNameAnySimpleType,
			Variety:        corpus.VarietyList,
			ItemType:       item,
			WhiteSpace:     corpus.WhiteSpaceCollapse,
			MinLength:      1,
			FractionDigits: -1,
		}
		add(t)
	}
	list(TypeNameNMTOKENS, TypeNameNMTOKEN)
	list(TypeNameIDREFS, TypeNameIDREF)
	list(TypeNameENTITIES, TypeNameENTITY)

	integer := derived(TypeNameInteger, TypeNameDecimal)
	integer.Space = value.SpaceInteger
	integer.FractionDigits = 0
	integer.Patterns = []string{`[\-+]?[0-9]+`}
	add(integer)
	for _, pair := range [][2]string{
		{TypeNameNonPositiveInteger, TypeNameInteger},
		{TypeNameNegativeInteger, TypeNameNonPositiveInteger},
		{TypeNameLong, TypeNameInteger},
		{TypeNameInt, TypeNameLong},
		{TypeNameShort, TypeNameInt},
		{TypeNameByte, TypeNameShort},
		{TypeNameNonNegativeInteger, TypeNameInteger},
		{TypeNameUnsignedLong, TypeNameNonNegativeInteger},
		{TypeNameUnsignedInt, TypeNameUnsignedLong},
		{TypeNameUnsignedShort, TypeNameUnsignedInt},
		{TypeNameUnsignedByte, TypeNameUnsignedShort},
		{TypeNamePositiveInteger, TypeNameNonNegativeInteger},
	} {
		add(derived(pair[0], pair[1]))
	}
}

// List returns the builtin types with every base listed before its derivations.
func List() []Type {
	out := make([]Type, len(registry))
	copy(out, registry)
	return out
}

// Get returns the builtin type with the given local name.
func Get(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}

// IsBuiltin reports whether {ns}local names a builtin type.
func IsBuiltin(ns, local string) bool {
	if ns != XSDNamespace {
		return false
	}
	_, ok := byName[local]
	return ok
}

// DerivesFrom reports whether builtin name equals ancestor or derives from it.
func DerivesFrom(name, ancestor string) bool {
	for name != "" {
		if name == ancestor {
			return true
		}
		name = byName[name].Base
	}
	return false
}
