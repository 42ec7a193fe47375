// Package hashset is a small generic set built on a map.
package hashset

type Set[T comparable] map[T]struct{}

// New returns a set holding vals.
func New[T comparable](vals ...T) Set[T] {
	set := make(Set[T], len(vals))
	set.Add(vals...)
	return set
}

func (vs Set[T]) Add(vals ...T) {
	for _, v := range vals {
		vs[v] = struct{}{}
	}
}

func (vs Set[T]) Has(v T) bool {
	_, ok := vs[v]
	return ok
}

// Empty reports whether the set holds nothing. A nil set is empty.
func (vs Set[T]) Empty() bool {
	return len(vs) == 0
}
