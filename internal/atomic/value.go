package atomic

// Type is an opaque type annotation carried by element and attribute nodes.
// Only the handful of built-in types that change tree behaviour are named;
// any other value is treated as a user-defined type.
type Type int32

const (
	// Untyped is the annotation of elements in an unvalidated document.
	Untyped Type = iota
	// UntypedAtomic is the annotation of attributes in an unvalidated document.
	UntypedAtomic
	// AnyType is the annotation of a validated element of unknown type.
	AnyType
	// String is xs:string.
	String
	// AnyURI is xs:anyURI.
	AnyURI
	// ID is xs:ID.
	ID
	// IDRef is xs:IDREF.
	IDRef
	// IDRefs is xs:IDREFS.
	IDRefs
	// firstUserType is the first value available to callers for their own annotations.
	firstUserType
)

// UserType returns an annotation distinct from every built-in type.
func UserType(n int32) Type {
	return firstUserType + Type(n)
}

// IsUntyped reports whether t needs no typed-value computation.
func (t Type) IsUntyped() bool {
	return t == Untyped || t == UntypedAtomic || t == AnyType
}

// IsID reports whether values of type t are ID values.
func (t Type) IsID() bool {
	return t == ID
}

// IsIDRef reports whether values of type t reference IDs.
func (t Type) IsIDRef() bool {
	return t == IDRef || t == IDRefs
}

// String names the built-in types.
func (t Type) String() string {
	switch t {
	case Untyped:
		return "xs:untyped"
	case UntypedAtomic:
		return "xs:untypedAtomic"
	case AnyType:
		return "xs:anyType"
	case String:
		return "xs:string"
	case AnyURI:
		return "xs:anyURI"
	case ID:
		return "xs:ID"
	case IDRef:
		return "xs:IDREF"
	case IDRefs:
		return "xs:IDREFS"
	default:
		return "user-type"
	}
}

// Value is an atomized item: a lexical form with the type it was read as.
type Value struct {
	Lexical string
	Type    Type
}

// UntypedValue wraps s as xs:untypedAtomic.
func UntypedValue(s string) Value {
	return Value{Lexical: s, Type: UntypedAtomic}
}

// StringValue wraps s as xs:string.
func StringValue(s string) Value {
	return Value{Lexical: s, Type: String}
}

// String returns the lexical form.
func (v Value) String() string {
	return v.Lexical
}
