package tree

// NodeTest filters the nodes produced by an axis.
type NodeTest interface {
	Matches(n Node) bool
}

type anyNode struct{}

func (anyNode) Matches(Node) bool { return true }

// AnyNode matches every node.
var AnyNode NodeTest = anyNode{}

// KindTest matches nodes of one kind.
type KindTest Kind

// Matches reports whether n has the tested kind.
func (k KindTest) Matches(n Node) bool { return n.Kind() == Kind(k) }

// NameTest matches nodes of one kind by expanded name. An empty Local or a
// Local of "*" matches any local name; Namespace "*" matches any namespace.
type NameTest struct {
	Namespace string
	Local     string
	Kind      Kind
}

// Matches reports whether n has the tested kind and name.
func (t NameTest) Matches(n Node) bool {
	if n.Kind() != t.Kind {
		return false
	}
	q := n.Name()
	if t.Local != "" && t.Local != "*" && q.Local != t.Local {
		return false
	}
	return t.Namespace == "*" || q.Namespace == t.Namespace
}

// FingerprintTest matches elements or attributes by name fingerprint. It is
// the fast form of NameTest for names already present in the pool.
type FingerprintTest struct {
	Fingerprint int32
	Kind        Kind
}

// Matches reports whether n has the tested kind and fingerprint.
func (t FingerprintTest) Matches(n Node) bool {
	return n.Kind() == t.Kind && n.Fingerprint() == t.Fingerprint
}

// TestFunc adapts a predicate to a NodeTest.
type TestFunc func(Node) bool

// Matches calls f.
func (f TestFunc) Matches(n Node) bool { return f(n) }
