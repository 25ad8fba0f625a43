package cstring

// At returns the unit in slot i. Every slot of the backing buffer is
// readable, including the terminator slot at index Cap().
func (s *FixedString[T, A]) At(i int) (T, error) {
	b := s.slots()
	if i < 0 || i >= len(b) {
		var zero T
		return zero, indexError(i, len(b))
	}
	return b[i], nil
}

// SetAt writes v into slot i. The terminator slot only accepts zero, so the
// string always stays terminated within its capacity.
func (s *FixedString[T, A]) SetAt(i int, v T) error {
	b := s.slots()
	if i < 0 || i >= len(b) {
		return indexError(i, len(b))
	}
	if i == len(b)-1 && v != 0 {
		return ErrTerminatorSlot
	}
	b[i] = v
	return nil
}

// UnsafeAt returns slot i without a range check of its own; an index outside
// the buffer panics.
func (s *FixedString[T, A]) UnsafeAt(i int) T {
	return s.slots()[i]
}

// UnsafeSetAt writes slot i, terminator slot included. Writing a non-zero unit
// there leaves s unterminated.
func (s *FixedString[T, A]) UnsafeSetAt(i int, v T) {
	s.slots()[i] = v
}

// Front returns the first unit.
func (s *FixedString[T, A]) Front() (T, error) {
	b := s.slots()
	if b[0] == 0 {
		return 0, ErrEmpty
	}
	return b[0], nil
}

// Back returns the last unit before the terminator.
func (s *FixedString[T, A]) Back() (T, error) {
	n := s.Len()
	if n == 0 {
		return 0, ErrEmpty
	}
	return s.slots()[n-1], nil
}

// Data returns the whole backing buffer. Writes through it are not checked
// and may remove the terminator. The slice aliases s and must not outlive it.
func (s *FixedString[T, A]) Data() []T {
	return s.slots()
}

// CStr returns the content followed by its terminator. The slice aliases s,
// is only valid until the next mutation and must not be written to.
func (s *FixedString[T, A]) CStr() []T {
	b := s.slots()
	n := terminated(b)
	if n == len(b) {
		// Terminator removed through Data or UnsafeSetAt.
		panic(ErrMissingTerminator)
	}
	return b[: n+1 : n+1]
}

// Units returns the logical content without the terminator. The slice
// aliases s.
func (s *FixedString[T, A]) Units() []T {
	b := s.slots()
	n := terminated(b)
	return b[:n:n]
}
