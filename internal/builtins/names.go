package builtins

const (
	// XSDNamespace is the XML Schema namespace.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
	// XSINamespace is the XML Schema instance namespace.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	// XMLNamespace is the namespace bound to the xml prefix.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
)

const (
	TypeNameAnyType       = "anyType"
	TypeNameAnySimpleType = "anySimpleType"

	TypeNameString       = "string"
	TypeNameBoolean      = "boolean"
	TypeNameDecimal      = "decimal"
	TypeNameFloat        = "float"
	TypeNameDouble       = "double"
	TypeNameDuration     = "duration"
	TypeNameDateTime     = "dateTime"
	TypeNameTime         = "time"
	TypeNameDate         = "date"
	TypeNameGYearMonth   = "gYearMonth"
	TypeNameGYear        = "gYear"
	TypeNameGMonthDay    = "gMonthDay"
	TypeNameGDay         = "gDay"
	TypeNameGMonth       = "gMonth"
	TypeNameHexBinary    = "hexBinary"
	TypeNameBase64Binary = "base64Binary"
	TypeNameAnyURI       = "anyURI"
	TypeNameQName        = "QName"
	TypeNameNOTATION     = "NOTATION"

	TypeNameNormalizedString = "normalizedString"
	TypeNameToken            = "token"
	TypeNameLanguage         = "language"
	TypeNameName             = "Name"
	TypeNameNCName           = "NCName"
	TypeNameID               = "ID"
	TypeNameIDREF            = "IDREF"
	TypeNameIDREFS           = "IDREFS"
	TypeNameENTITY           = "ENTITY"
	TypeNameENTITIES         = "ENTITIES"
	TypeNameNMTOKEN          = "NMTOKEN"
	TypeNameNMTOKENS         = "NMTOKENS"

	TypeNameInteger            = "integer"
	TypeNameLong               = "long"
	TypeNameInt                = "int"
	TypeNameShort              = "short"
	TypeNameByte               = "byte"
	TypeNameNonNegativeInteger = "nonNegativeInteger"
	TypeNamePositiveInteger    = "positiveInteger"
	TypeNameUnsignedLong       = "unsignedLong"
	TypeNameUnsignedInt        = "unsignedInt"
	TypeNameUnsignedShort      = "unsignedShort"
	TypeNameUnsignedByte       = "unsignedByte"
	TypeNameNegativeInteger    = "negativeInteger"
	TypeNameNonPositiveInteger = "nonPositiveInteger"
)

// XSIAttributes lists the attributes declared in the schema instance namespace.
var XSIAttributes = []XSIAttribute{
	{Name: "nil", Type: TypeNameBoolean},
	{Name: "noNamespaceSchemaLocation", Type: TypeNameAnyURI},
	{Name: "schemaLocation", Type: TypeNameAnyURI, List: true},
	{Name: "type", Type: TypeNameQName},
}

// XSIAttribute describes one schema instance attribute.
type XSIAttribute struct {
	Name string
	Type string
	// List marks an attribute whose type is an anonymous list of Type.
	List bool
}
