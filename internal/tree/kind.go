package tree

import "fmt"

// Kind is the kind tag of a stored record.
//
// The first seven kinds are the node kinds visible through Node.Kind. The
// remaining ones are storage variants: WhitespaceText and TextualElement
// report KindText and KindElement, ParentPointer and Stopper are never
// visible to navigation.
type Kind uint8

const (
	KindDocument Kind = iota
	KindElement
	KindAttribute
	KindText
	KindComment
	KindProcessingInstruction
	KindNamespace

	// KindWhitespaceText is a whitespace-only text node whose characters are
	// packed into alpha and beta.
	KindWhitespaceText
	// KindTextualElement is an element with no attributes, no namespace
	// declarations and a single text child, stored as one record.
	KindTextualElement
	// KindParentPointer is a sibling-chain record whose alpha holds the
	// parent node number.
	KindParentPointer
	// KindStopper terminates the record vector.
	KindStopper
)

var kindNames = [...]string{
	KindDocument:              "document",
	KindElement:               "element",
	KindAttribute:             "attribute",
	KindText:                  "text",
	KindComment:               "comment",
	KindProcessingInstruction: "processing-instruction",
	KindNamespace:             "namespace",
	KindWhitespaceText:        "whitespace-text",
	KindTextualElement:        "textual-element",
	KindParentPointer:         "parent-pointer",
	KindStopper:               "stopper",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Visible maps a storage kind to the node kind it presents.
func (k Kind) Visible() Kind {
	switch k {
	case KindWhitespaceText:
		return KindText
	case KindTextualElement:
		return KindElement
	default:
		return k
	}
}

// ParseKind resolves a node kind from its XPath kind-test spelling.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "document", "document-node":
		return KindDocument, true
	case "element":
		return KindElement, true
	case "attribute":
		return KindAttribute, true
	case "text":
		return KindText, true
	case "comment":
		return KindComment, true
	case "processing-instruction", "pi":
		return KindProcessingInstruction, true
	case "namespace", "namespace-node":
		return KindNamespace, true
	}
	return 0, false
}
