package frontier

// OrderedSet remembers members in the order they were first added.
// It is not safe for concurrent use; Frontier guards it with its own lock.
type OrderedSet[T comparable] struct {
	index map[T]int
	items []T
}

func NewOrderedSet[T comparable]() *OrderedSet[T] {
	return &OrderedSet[T]{
		index: map[T]int{},
		items: []T{},
	}
}

// Add inserts item and reports whether it was new.
func (s *OrderedSet[T]) Add(item T) bool {
	if _, seen := s.index[item]; seen {
		return false
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

func (s *OrderedSet[T]) Contains(item T) bool {
	_, seen := s.index[item]
	return seen
}

// Items returns a copy of the members in insertion order.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}
