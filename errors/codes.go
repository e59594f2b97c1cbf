package errors

// ErrorCode represents a W3C XSD schema component constraint code.
// See: https://www.w3.org/TR/xmlschema-1/#outcomes
type ErrorCode string

const (
	// ErrSrcResolve indicates a QName reference did not resolve to a component.
	ErrSrcResolve ErrorCode = "src-resolve"
	// ErrSrcInclude indicates an included document has a conflicting target namespace.
	ErrSrcInclude ErrorCode = "src-include"
	// ErrSrcImport indicates an import directive could not be honored.
	ErrSrcImport ErrorCode = "src-import"
	// ErrDuplicateGlobal indicates two different global components share a QName.
	ErrDuplicateGlobal ErrorCode = "sch-props-correct.2"

	// ErrComplexTypeCircular indicates a complex type derived from itself.
	ErrComplexTypeCircular ErrorCode = "ct-props-correct.3"
	// ErrComplexContentBase indicates complex content derived from a simple type.
	ErrComplexContentBase ErrorCode = "src-ct.1"
	// ErrSimpleContentBase indicates simple content whose base has no simple content.
	ErrSimpleContentBase ErrorCode = "src-ct.2"
	// ErrAttributeGroupCircular indicates an attribute group that refers to itself.
	ErrAttributeGroupCircular ErrorCode = "src-attribute_group.3"
	// ErrSimpleTypeBase indicates a simple type derived from a complex type.
	ErrSimpleTypeBase ErrorCode = "st-props-correct.1"
	// ErrDuplicateAttributeUse indicates two attribute uses with the same name.
	ErrDuplicateAttributeUse ErrorCode = "ct-props-correct.4"
	// ErrSimpleTypeCircular indicates a circular simple type definition.
	ErrSimpleTypeCircular ErrorCode = "st-props-correct.2"
	// ErrGroupCircular indicates a named model group refers to itself.
	ErrGroupCircular ErrorCode = "mg-props-correct.2"
	// ErrAllLimited indicates an invalid all group member or placement.
	ErrAllLimited ErrorCode = "cos-all-limited"
	// ErrExtensionContent indicates an extension that changes the base content kind.
	ErrExtensionContent ErrorCode = "cos-ct-extends.1"
	// ErrFacetNotApplicable indicates a facet that does not apply to the base type.
	ErrFacetNotApplicable ErrorCode = "cos-applicable-facets"
	// ErrNonDeterministic indicates a content model that violates unique particle attribution.
	ErrNonDeterministic ErrorCode = "cos-nonambig"

	// ErrDatatypeInvalid indicates a lexical value is invalid for its datatype.
	ErrDatatypeInvalid ErrorCode = "cvc-datatype-valid"
	// ErrFacetViolation indicates a facet value violates a base facet.
	ErrFacetViolation ErrorCode = "cvc-facet-valid"
	// ErrPatternInvalid indicates a pattern facet that is not a valid regular expression.
	ErrPatternInvalid ErrorCode = "pattern-valid"

	ErrLengthRestriction         ErrorCode = "length-valid-restriction"
	ErrMinLengthRestriction      ErrorCode = "minLength-valid-restriction"
	ErrMaxLengthRestriction      ErrorCode = "maxLength-valid-restriction"
	ErrLengthWithMinMax          ErrorCode = "length-minLength-maxLength"
	ErrMinLengthGreaterThanMax   ErrorCode = "minLength-less-than-equal-to-maxLength"
	ErrTotalDigitsRestriction    ErrorCode = "totalDigits-valid-restriction"
	ErrFractionDigitsRestriction ErrorCode = "fractionDigits-valid-restriction"
	ErrFractionDigitsTotalDigits ErrorCode = "fractionDigits-totalDigits"
	ErrMinInclusiveRestriction   ErrorCode = "minInclusive-valid-restriction"
	ErrMaxInclusiveRestriction   ErrorCode = "maxInclusive-valid-restriction"
	ErrMinExclusiveRestriction   ErrorCode = "minExclusive-valid-restriction"
	ErrMaxExclusiveRestriction   ErrorCode = "maxExclusive-valid-restriction"
	ErrMinInclusiveMaxInclusive  ErrorCode = "minInclusive-less-than-equal-to-maxInclusive"
	ErrMinExclusiveMaxExclusive  ErrorCode = "minExclusive-less-than-maxExclusive"
	ErrMinExclusiveMaxInclusive  ErrorCode = "minExclusive-less-than-maxInclusive"
	ErrMinInclusiveMaxExclusive  ErrorCode = "minInclusive-less-than-maxExclusive"
	ErrMinInclusiveMinExclusive  ErrorCode = "minInclusive-minExclusive"
	ErrMaxInclusiveMaxExclusive  ErrorCode = "maxInclusive-maxExclusive"
	ErrEnumerationRestriction    ErrorCode = "enumeration-valid-restriction"

	// ErrRestrictionAttributeNotAllowed indicates a restricted attribute use with no base counterpart.
	ErrRestrictionAttributeNotAllowed ErrorCode = "derivation-ok-restriction.2.2"
	// ErrRestrictionRequiredAttribute indicates a restriction that drops or weakens a required use.
	ErrRestrictionRequiredAttribute ErrorCode = "derivation-ok-restriction.3"
	// ErrRestrictionWildcard indicates an attribute wildcard broader than the base wildcard.
	ErrRestrictionWildcard ErrorCode = "derivation-ok-restriction.4"
	// ErrRestrictionParticle indicates a content particle that is not a valid restriction.
	ErrRestrictionParticle ErrorCode = "derivation-ok-restriction.5"

	// ErrElementValueConstraint indicates an element default or fixed value invalid for its type.
	ErrElementValueConstraint ErrorCode = "e-props-correct.2"
	// ErrSubstitutionType indicates a member type not derived from its head type.
	ErrSubstitutionType ErrorCode = "e-props-correct.4"
	// ErrSubstitutionCircular indicates a circular substitution group affiliation.
	ErrSubstitutionCircular ErrorCode = "e-props-correct.6"
	// ErrAttributeValueConstraint indicates an attribute default or fixed value invalid for its type.
	ErrAttributeValueConstraint ErrorCode = "a-props-correct.2"
	// ErrAttributeIDConstraint indicates a value constraint on an ID-typed attribute.
	ErrAttributeIDConstraint ErrorCode = "a-props-correct.3"
	// ErrAttributeUseValueConstraint indicates an attribute use value constraint invalid for its type.
	ErrAttributeUseValueConstraint ErrorCode = "au-props-correct.2"
)
