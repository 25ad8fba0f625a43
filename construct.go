package cstring

import (
	"iter"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// FromFill returns a string of count copies of ch.
func FromFill[T Unit, A any](count int, ch T) (FixedString[T, A], error) {
	var s FixedString[T, A]
	if count < 0 {
		return s, indexError(count, 0)
	}
	if capacity := capacityOf[T, A](); count > capacity {
		return s, capacityError(count, capacity)
	}
	dst := s.slots()
	for i := 0; i < count; i++ {
		dst[i] = ch
	}
	return s, nil
}

// FromSub copies the content of src starting at pos. src may have a
// different capacity.
func FromSub[T Unit, A, B any](src *FixedString[T, B], pos int) (FixedString[T, A], error) {
	var s FixedString[T, A]
	n := src.Len()
	if pos < 0 || pos > n {
		return s, indexError(pos, n)
	}
	if capacity := capacityOf[T, A](); n-pos > capacity {
		return s, capacityError(n-pos, capacity)
	}
	copy(s.slots(), src.slots()[pos:n])
	return s, nil
}

// FromSubN copies at most count units of src starting at pos. Fewer units are
// copied when src ends first; count itself must fit the capacity.
func FromSubN[T Unit, A, B any](src *FixedString[T, B], pos, count int) (FixedString[T, A], error) {
	var s FixedString[T, A]
	n := src.Len()
	if pos < 0 || pos > n {
		return s, indexError(pos, n)
	}
	if count < 0 {
		return s, indexError(count, 0)
	}
	if capacity := capacityOf[T, A](); count > capacity {
		return s, capacityError(count, capacity)
	}
	copy(s.slots(), src.slots()[pos:pos+min(count, n-pos)])
	return s, nil
}

// FromUnits copies the first count units of p, which need not be terminated.
func FromUnits[T Unit, A any](p []T, count int) (FixedString[T, A], error) {
	var s FixedString[T, A]
	if count < 0 {
		return s, indexError(count, len(p))
	}
	if capacity := capacityOf[T, A](); count > capacity {
		return s, capacityError(count, capacity)
	}
	if count > len(p) {
		return s, indexError(count, len(p))
	}
	copy(s.slots(), p[:count])
	return s, nil
}

// FromTerminated copies p up to its first zero unit, or all of p when it
// holds none.
func FromTerminated[T Unit, A any](p []T) (FixedString[T, A], error) {
	return FromUnits[T, A](p, terminated(p))
}

// FromList copies units in order.
func FromList[T Unit, A any](units ...T) (FixedString[T, A], error) {
	return FromUnits[T, A](units, len(units))
}

// FromSeq copies every unit produced by seq. It stops pulling as soon as the
// capacity is exceeded.
func FromSeq[T Unit, A any](seq iter.Seq[T]) (FixedString[T, A], error) {
	var s FixedString[T, A]
	dst := s.slots()
	capacity := len(dst) - 1
	n := 0
	for c := range seq {
		if n == capacity {
			return FixedString[T, A]{}, capacityError(n+1, capacity)
		}
		dst[n] = c
		n++
	}
	return s, nil
}

// FromString encodes str into units: bytes for 8-bit units, UTF-16 for 16-bit
// units and runes otherwise. str is treated as terminated at its first NUL.
func FromString[T Unit, A any](str string) (FixedString[T, A], error) {
	var s FixedString[T, A]
	if i := strings.IndexByte(str, 0); i >= 0 {
		str = str[:i]
	}
	n := encodedLen[T](str)
	if capacity := capacityOf[T, A](); n > capacity {
		return s, capacityError(n, capacity)
	}
	encodeString(s.slots(), str)
	return s, nil
}

// Must returns s or panics if err is non-nil.
func Must[T Unit, A any](s FixedString[T, A], err error) FixedString[T, A] {
	if err != nil {
		panic(err)
	}
	return s
}

// Assign replaces the content of s with v unless err is non-nil, in which
// case s is left untouched and err is returned. It accepts a constructor
// result directly:
//
//	err := s.Assign(cstring.FromFill[byte, [8]byte](3, 'x'))
func (s *FixedString[T, A]) Assign(v FixedString[T, A], err error) error {
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Set replaces the content of s with str.
func (s *FixedString[T, A]) Set(str string) error {
	return s.Assign(FromString[T, A](str))
}

// Clone returns an independent copy of s.
func (s *FixedString[T, A]) Clone() FixedString[T, A] {
	return *s
}

// Reset empties s and zeroes the whole buffer.
func (s *FixedString[T, A]) Reset() {
	*s = FixedString[T, A]{}
}

func encodedLen[T Unit](str string) int {
	switch unitSize[T]() {
	case 1:
		return len(str)
	case 2:
		n := 0
		for _, r := range str {
			n += utf16.RuneLen(r)
		}
		return n
	default:
		return utf8.RuneCountInString(str)
	}
}

func encodeString[T Unit](dst []T, str string) {
	switch unitSize[T]() {
	case 1:
		for i := 0; i < len(str); i++ {
			dst[i] = T(str[i])
		}
	case 2:
		i := 0
		for _, r := range str {
			if utf16.RuneLen(r) == 2 {
				r1, r2 := utf16.EncodeRune(r)
				dst[i], dst[i+1] = T(r1), T(r2)
				i += 2
				continue
			}
			dst[i] = T(r)
			i++
		}
	default:
		i := 0
		for _, r := range str {
			dst[i] = T(r)
			i++
		}
	}
}
