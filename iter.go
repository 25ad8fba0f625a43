package cstring

import "iter"

// All yields the index and unit of each unit before the terminator.
func (s *FixedString[T, A]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, c := range s.Units() {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Backward is All in reverse order.
func (s *FixedString[T, A]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		u := s.Units()
		for i := len(u) - 1; i >= 0; i-- {
			if !yield(i, u[i]) {
				return
			}
		}
	}
}

// Slots yields every slot of the backing buffer, including the terminator
// and anything stored after it.
func (s *FixedString[T, A]) Slots() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, c := range s.slots() {
			if !yield(i, c) {
				return
			}
		}
	}
}

// SlotsBackward is Slots in reverse order.
func (s *FixedString[T, A]) SlotsBackward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		b := s.slots()
		for i := len(b) - 1; i >= 0; i-- {
			if !yield(i, b[i]) {
				return
			}
		}
	}
}
