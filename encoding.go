package cstring

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// String decodes the content: bytes as-is, 16-bit units as UTF-16 and wider
// units as runes. Invalid sequences become U+FFFD.
func (s FixedString[T, A]) String() string {
	u := s.Units()
	if len(u) == 0 {
		return ""
	}
	switch unitSize[T]() {
	case 1:
		return string(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(u))), len(u)))
	case 2:
		var sb strings.Builder
		sb.Grow(len(u))
		for i := 0; i < len(u); i++ {
			r := rune(uint16(u[i]))
			if utf16.IsSurrogate(r) && i+1 < len(u) {
				if d := utf16.DecodeRune(r, rune(uint16(u[i+1]))); d != unicode.ReplacementChar {
					sb.WriteRune(d)
					i++
					continue
				}
			}
			sb.WriteRune(r)
		}
		return sb.String()
	default:
		var sb strings.Builder
		sb.Grow(len(u))
		for _, c := range u {
			sb.WriteRune(rune(c))
		}
		return sb.String()
	}
}

// Equal reports whether s and o hold the same content. Slots after the
// terminator are ignored.
func (s *FixedString[T, A]) Equal(o *FixedString[T, A]) bool {
	return slices.Equal(s.Units(), o.Units())
}

// BinarySize returns the encoded size, (N+1) times the unit size.
func (s FixedString[T, A]) BinarySize() int {
	return slotCount[T, A]() * unitSize[T]()
}

// AppendBinary appends every slot of the buffer in little-endian order.
func (s FixedString[T, A]) AppendBinary(b []byte) ([]byte, error) {
	slots := s.slots()
	switch unitSize[T]() {
	case 1:
		for _, c := range slots {
			b = append(b, byte(c))
		}
	case 2:
		for _, c := range slots {
			b = binary.LittleEndian.AppendUint16(b, uint16(c))
		}
	default:
		for _, c := range slots {
			b = binary.LittleEndian.AppendUint32(b, uint32(c))
		}
	}
	return b, nil
}

// MarshalBinary returns the byte-exact image of the buffer.
func (s FixedString[T, A]) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, s.BinarySize()))
}

// UnmarshalBinary replaces s with an image produced by MarshalBinary. data
// must be exactly BinarySize bytes and its last slot must be zero.
func (s *FixedString[T, A]) UnmarshalBinary(data []byte) error {
	size := unitSize[T]()
	if want := slotCount[T, A]() * size; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(data), want)
	}
	var v FixedString[T, A]
	dst := v.slots()
	for i := range dst {
		switch size {
		case 1:
			dst[i] = T(data[i])
		case 2:
			dst[i] = T(binary.LittleEndian.Uint16(data[2*i:]))
		default:
			dst[i] = T(binary.LittleEndian.Uint32(data[4*i:]))
		}
	}
	if dst[len(dst)-1] != 0 {
		return ErrMissingTerminator
	}
	*s = v
	return nil
}

// MarshalText returns the logical content as UTF-8.
func (s FixedString[T, A]) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText sets s from text, failing when it does not fit.
func (s *FixedString[T, A]) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// MarshalYAML encodes the logical content as a YAML string.
func (s FixedString[T, A]) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts a scalar node and enforces the capacity.
func (s *FixedString[T, A]) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	if err := s.Set(str); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}
