// Package utils holds small string helpers shared by the moderation code.
package utils

// OrderedSet keeps distinct strings in first-insertion order.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

func NewOrderedSet(items ...string) *OrderedSet {
	s := &OrderedSet{seen: map[string]struct{}{}, items: []string{}}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts v, returning false when it was already present.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *OrderedSet) Has(v string) bool {
	_, ok := s.seen[v]
	return ok
}

func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the elements.
func (s *OrderedSet) Items() []string {
	res := make([]string, len(s.items))
	copy(res, s.items)
	return res
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

