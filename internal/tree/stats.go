package tree

import (
	"fmt"
	"sync"
)

// Statistics keeps running averages of tree sizes so new trees can be
// presized. It is safe for concurrent use; a nil *Statistics is valid and
// yields the default estimate.
type Statistics struct {
	mu         sync.Mutex
	trees      int
	nodes      float64
	attributes float64
	namespaces float64
	characters float64
}

// Estimate is the initial capacity of a new tree's stores.
type Estimate struct {
	Nodes      int
	Attributes int
	Namespaces int
	Characters int
}

var defaultEstimate = Estimate{Nodes: 1000, Attributes: 100, Namespaces: 20, Characters: 4000}

// Estimate returns the presizing hint derived from the trees seen so far.
func (s *Statistics) Estimate() Estimate {
	if s == nil {
		return defaultEstimate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trees == 0 {
		return defaultEstimate
	}
	return Estimate{
		Nodes:      int(s.nodes) + 1,
		Attributes: int(s.attributes) + 1,
		Namespaces: int(s.namespaces) + 1,
		Characters: int(s.characters) + 1,
	}
}

// Record folds the final size of t into the running averages.
func (s *Statistics) Record(t *Tree) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees++
	n := float64(s.trees)
	s.nodes += (float64(len(t.records)) - s.nodes) / n
	s.attributes += (float64(len(t.attrs)) - s.attributes) / n
	s.namespaces += (float64(len(t.namespaces)) - s.namespaces) / n
	s.characters += (float64(len(t.chars)) - s.characters) / n
}

// Trees returns how many trees have been recorded.
func (s *Statistics) Trees() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trees
}

func (s *Statistics) String() string {
	if s == nil {
		return "no statistics"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("trees=%d nodes=%.1f attributes=%.1f namespaces=%.1f characters=%.1f",
		s.trees, s.nodes, s.attributes, s.namespaces, s.characters)
}
