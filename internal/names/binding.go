package names

// Binding maps a prefix to a namespace URI. An empty URI with a non-empty
// prefix, or with the empty prefix, is an undeclaration.
type Binding struct {
	Prefix string
	URI    string
}

// XMLBinding is the implicit binding of the xml prefix.
var XMLBinding = Binding{Prefix: XMLPrefix, URI: XMLNamespace}

// IsXML reports whether b is the implicit xml binding.
func (b Binding) IsXML() bool {
	return b.Prefix == XMLPrefix
}

// IsUndeclaration reports whether b removes a binding rather than adding one.
func (b Binding) IsUndeclaration() bool {
	return b.URI == ""
}
