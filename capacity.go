package cstring

// Len returns the number of units before the terminator. It scans the buffer
// on every call.
func (s *FixedString[T, A]) Len() int {
	return terminated(s.slots())
}

// Size is Len.
func (s *FixedString[T, A]) Size() int {
	return s.Len()
}

// Cap returns N, the largest length s can hold.
func (s *FixedString[T, A]) Cap() int {
	return capacityOf[T, A]()
}

// MaxSize is Cap.
func (s *FixedString[T, A]) MaxSize() int {
	return capacityOf[T, A]()
}

// IsEmpty reports whether the first slot holds the terminator.
func (s *FixedString[T, A]) IsEmpty() bool {
	return s.slots()[0] == 0
}

// Reserve fails when n exceeds the capacity and otherwise does nothing.
func (s *FixedString[T, A]) Reserve(n int) error {
	if capacity := capacityOf[T, A](); n > capacity {
		return capacityError(n, capacity)
	}
	return nil
}

// ShrinkToFit does nothing; storage never changes size.
func (s *FixedString[T, A]) ShrinkToFit() {}
