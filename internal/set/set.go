package set

import "golang.org/x/exp/maps"

type Set[T comparable] map[T]struct{}

func (s Set[T]) Add(val T) {
	s[val] = struct{}{}
}

func (s Set[T]) Remove(val T) {
	delete(s, val)
}

func (s Set[T]) Values() []T {
	return maps.Keys(s)
}

func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

func New[T comparable](sl ...T) Set[T] {
	set := make(Set[T], len(sl))
	for _, val := range sl {
		set.Add(val)
	}
	return set
}

// Ordered is a set that remembers the order in which values were first added.
type Ordered[T comparable] struct {
	seen   Set[T]
	values []T
}

func NewOrdered[T comparable](sl ...T) *Ordered[T] {
	s := &Ordered[T]{seen: make(Set[T], len(sl))}
	for _, val := range sl {
		s.Add(val)
	}
	return s
}

// Add appends the value unless it is already present. It reports whether
// the value was added.
func (s *Ordered[T]) Add(val T) bool {
	if s.seen.Has(val) {
		return false
	}

	s.seen.Add(val)
	s.values = append(s.values, val)

	return true
}

func (s *Ordered[T]) Has(val T) bool {
	return s.seen.Has(val)
}

func (s *Ordered[T]) Len() int {
	return len(s.values)
}

// Values returns a copy of the values in insertion order.
func (s *Ordered[T]) Values() []T {
	values := make([]T, len(s.values))
	copy(values, s.values)
	return values
}
