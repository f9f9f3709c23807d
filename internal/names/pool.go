package names

import "sync"

// Common XML namespaces.
const (
	XMLPrefix      = "xml"
	XMLNSPrefix    = "xmlns"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

const (
	fingerprintBits = 20
	fingerprintMask = 1<<fingerprintBits - 1
	maxPrefixCode   = 1<<(31-fingerprintBits) - 1
)

// NameID combines a prefix code and a fingerprint identifying an expanded
// name. The low 20 bits hold the fingerprint.
type NameID int32

// NoName marks records that carry no name.
const NoName NameID = -1

// Make builds a NameID from a prefix code and fingerprint.
func Make(prefixCode, fingerprint int32) NameID {
	return NameID(prefixCode<<fingerprintBits | fingerprint&fingerprintMask)
}

// Fingerprint returns the expanded-name part of id, ignoring the prefix.
func (id NameID) Fingerprint() int32 {
	if id < 0 {
		return -1
	}
	return int32(id) & fingerprintMask
}

// PrefixCode returns the prefix part of id.
func (id NameID) PrefixCode() int32 {
	if id < 0 {
		return -1
	}
	return int32(id) >> fingerprintBits
}

// QName is an expanded name with its lexical prefix.
type QName struct {
	Prefix    string
	Namespace string
	Local     string
}

// String renders the lexical form prefix:local.
func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// Clark renders {namespace}local.
func (q QName) Clark() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

type expandedKey struct {
	namespace string
	local     string
}

// Pool interns expanded names and prefixes. A Pool may be shared by many
// trees; all methods are safe for concurrent use.
type Pool struct {
	byName    map[expandedKey]int32
	byPrefix  map[string]int32
	names     []expandedKey
	prefixes  []string
	mu        sync.RWMutex
	initLocal sync.Once
}

// NewPool returns a pool with the empty and xml prefixes preallocated.
func NewPool() *Pool {
	p := &Pool{}
	p.init()
	return p
}

func (p *Pool) init() {
	p.initLocal.Do(func() {
		p.byName = make(map[expandedKey]int32, 64)
		p.byPrefix = make(map[string]int32, 8)
		p.prefixes = append(p.prefixes, "", XMLPrefix)
		p.byPrefix[""] = 0
		p.byPrefix[XMLPrefix] = 1
	})
}

// Allocate returns the NameID for an expanded name with the given prefix,
// interning both parts on first use.
func (p *Pool) Allocate(prefix, namespace, local string) NameID {
	fp := p.AllocateFingerprint(namespace, local)
	code := p.AllocatePrefix(prefix)
	return Make(code, fp)
}

// AllocateFingerprint interns an expanded name and returns its fingerprint.
func (p *Pool) AllocateFingerprint(namespace, local string) int32 {
	p.init()
	key := expandedKey{namespace: namespace, local: local}
	p.mu.RLock()
	fp, ok := p.byName[key]
	p.mu.RUnlock()
	if ok {
		return fp
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if fp, ok := p.byName[key]; ok {
		return fp
	}
	if len(p.names) > fingerprintMask {
		panic("names: fingerprint space exhausted")
	}
	fp = int32(len(p.names))
	p.names = append(p.names, key)
	p.byName[key] = fp
	return fp
}

// AllocatePrefix interns a prefix and returns its code.
func (p *Pool) AllocatePrefix(prefix string) int32 {
	p.init()
	p.mu.RLock()
	code, ok := p.byPrefix[prefix]
	p.mu.RUnlock()
	if ok {
		return code
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.byPrefix[prefix]; ok {
		return code
	}
	if len(p.prefixes) > maxPrefixCode {
		panic("names: prefix space exhausted")
	}
	code = int32(len(p.prefixes))
	p.prefixes = append(p.prefixes, prefix)
	p.byPrefix[prefix] = code
	return code
}

// Fingerprint looks up an expanded name without allocating it.
func (p *Pool) Fingerprint(namespace, local string) (int32, bool) {
	p.init()
	p.mu.RLock()
	defer p.mu.RUnlock()
	fp, ok := p.byName[expandedKey{namespace: namespace, local: local}]
	return fp, ok
}

// QName resolves id back to its parts. NoName resolves to the zero QName.
func (p *Pool) QName(id NameID) QName {
	if id < 0 {
		return QName{}
	}
	p.init()
	p.mu.RLock()
	defer p.mu.RUnlock()
	fp := id.Fingerprint()
	code := id.PrefixCode()
	if int(fp) >= len(p.names) {
		panic("names: unknown fingerprint")
	}
	key := p.names[fp]
	q := QName{Namespace: key.namespace, Local: key.local}
	if int(code) < len(p.prefixes) {
		q.Prefix = p.prefixes[code]
	}
	return q
}

// Prefix resolves a prefix code.
func (p *Pool) Prefix(code int32) string {
	p.init()
	p.mu.RLock()
	defer p.mu.RUnlock()
	if code < 0 || int(code) >= len(p.prefixes) {
		return ""
	}
	return p.prefixes[code]
}

// Len reports how many expanded names have been interned.
func (p *Pool) Len() int {
	p.init()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}
