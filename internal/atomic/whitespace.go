package atomic

import "strings"

// IsXMLWhitespace reports whether r is one of the four XML whitespace characters.
func IsXMLWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// IsAllWhitespace reports whether s contains only XML whitespace.
func IsAllWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !IsXMLWhitespace(rune(s[i])) {
			return false
		}
	}
	return true
}

// Trim strips leading and trailing XML whitespace.
func Trim(s string) string {
	return strings.TrimFunc(s, IsXMLWhitespace)
}

// Tokens splits a whitespace-separated list such as an IDREFS value.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, IsXMLWhitespace)
}

// IsNCName reports whether s is a plausible NCName: non-empty, no colon, no
// whitespace and not starting with a digit, hyphen or period.
func IsNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == ':' || IsXMLWhitespace(r):
			return false
		case i == 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
			return false
		case r < 0x20 || strings.ContainsRune("!\"#$%&'()*+,/;<=>?@[\\]^`{|}~", r):
			return false
		}
	}
	return true
}
