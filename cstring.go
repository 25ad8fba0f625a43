// Package cstring provides FixedString, a fixed-capacity string stored inline
// as a terminated array of code units.
//
// The capacity is carried by the storage type: FixedString[byte, [256]byte]
// holds at most 255 bytes plus a terminator and occupies exactly 256 bytes,
// with no header or length field. The length is the offset of the first zero
// unit and is recomputed on every query.
//
//	var name cstring.String[[16]byte]
//	if err := name.Set("eth0"); err != nil {
//		// ErrCapacityExceeded
//	}
//	fmt.Println(name.Len(), name.Cap()) // 4 15
//
// A FixedString is a plain value: assignment copies the whole buffer and no
// two values ever share storage. It is not safe for concurrent mutation.
package cstring

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	ErrCapacityExceeded  = errors.New("cstring: capacity exceeded")
	ErrIndexOutOfRange   = errors.New("cstring: index out of range")
	ErrEmpty             = errors.New("cstring: string is empty")
	ErrTerminatorSlot    = errors.New("cstring: write to terminator slot")
	ErrMissingTerminator = errors.New("cstring: missing terminator")
	ErrSizeMismatch      = errors.New("cstring: encoded size mismatch")
)

// Unit is the set of code unit types a FixedString can hold.
type Unit interface {
	~uint8 | ~uint16 | ~int32 | ~uint32
}

// FixedString is a string of at most N units stored in A, which must be an
// array type [N+1]T. Slot N is reserved for the terminator.
//
// The zero value is an empty string.
type FixedString[T Unit, A any] struct {
	buf A
}

// String is a FixedString of bytes.
type String[A any] = FixedString[byte, A]

// WString is a FixedString of runes.
type WString[A any] = FixedString[rune, A]

// U16String is a FixedString of UTF-16 code units.
type U16String[A any] = FixedString[uint16, A]

// slotCount returns N+1 for storage type A, panicking when A is not a
// non-empty array of T.
func slotCount[T Unit, A any]() int {
	at := reflect.TypeFor[A]()
	if at.Kind() != reflect.Array || at.Len() == 0 || at.Elem() != reflect.TypeFor[T]() {
		panic(fmt.Sprintf("cstring: storage %v is not a non-empty array of %v", at, reflect.TypeFor[T]()))
	}
	return at.Len()
}

func capacityOf[T Unit, A any]() int {
	return slotCount[T, A]() - 1
}

func unitSize[T Unit]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// slots returns the whole backing buffer, terminator slot included.
func (s *FixedString[T, A]) slots() []T {
	n := slotCount[T, A]()
	return unsafe.Slice((*T)(unsafe.Pointer(&s.buf)), n)
}

// terminated returns the offset of the first zero unit in b, or len(b).
func terminated[T Unit](b []T) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return len(b)
}

func capacityError(n, capacity int) error {
	return fmt.Errorf("%w: length %d, capacity %d", ErrCapacityExceeded, n, capacity)
}

func indexError(i, limit int) error {
	return fmt.Errorf("%w: index %d, limit %d", ErrIndexOutOfRange, i, limit)
}
