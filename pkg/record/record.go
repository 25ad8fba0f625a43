// Package record lays structs out as fixed-width little-endian records.
//
// A record is the concatenation of its exported fields in declaration order
// with no header, padding or length prefix, so every value of a given struct
// type encodes to the same number of bytes. Fields may be fixed-size
// primitives (bool, sized ints and uints, float32, float64) or any type
// implementing Field by value, such as cstring.FixedString. Pointer and
// interface fields are rejected and unexported fields are skipped.
package record

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rawbytedev/cstring/internal/common"
)

var (
	ErrNotStruct    = errors.New("record: expected struct")
	ErrNotStructPtr = errors.New("record: expected pointer to struct")
	ErrUnsupported  = errors.New("record: unsupported field type")
	ErrShortBuffer  = errors.New("record: buffer shorter than record")
	ErrFieldSize    = errors.New("record: field wrote unexpected size")
)

// Field is a fixed-width value that encodes itself.
type Field interface {
	encoding.BinaryAppender
	BinarySize() int
}

var (
	fieldType       = reflect.TypeFor[Field]()
	unmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
)

// Codec caches one layout plan per struct type. It is safe for concurrent use.
type Codec struct {
	plan map[reflect.Type]*Plan
	mu   sync.RWMutex
}

// Plan is the layout of one struct type.
type Plan struct {
	size   int
	fields []fieldInfo
}

// Size returns the record size in bytes.
func (p *Plan) Size() int { return p.size }

type fieldInfo struct {
	idx       int
	name      string
	kind      reflect.Kind
	offset    int
	size      int
	custom    bool
	decodable bool
}

// NewCodec returns a Codec with an empty plan cache.
func NewCodec() *Codec {
	return &Codec{plan: make(map[reflect.Type]*Plan)}
}

func (c *Codec) getPlan(t reflect.Type) (*Plan, error) {
	c.mu.RLock()
	if plan, ok := c.plan[t]; ok {
		c.mu.RUnlock()
		return plan, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if plan, ok := c.plan[t]; ok {
		return plan, nil
	}

	plan := &Plan{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue // unexported, embedded or not
		}
		info := fieldInfo{idx: i, name: sf.Name, kind: sf.Type.Kind(), offset: plan.size}
		switch {
		case info.kind == reflect.Pointer || info.kind == reflect.Interface:
			return nil, fmt.Errorf("%w: field %s of type %v is not stored inline", ErrUnsupported, sf.Name, sf.Type)
		case sf.Type.Implements(fieldType):
			info.custom = true
			info.size = reflect.Zero(sf.Type).Interface().(Field).BinarySize()
			info.decodable = reflect.PointerTo(sf.Type).Implements(unmarshalerType)
		case common.IsFixedKind(info.kind):
			info.size = common.FixedSize(info.kind)
		default:
			return nil, fmt.Errorf("%w: field %s of type %v", ErrUnsupported, sf.Name, sf.Type)
		}
		plan.fields = append(plan.fields, info)
		plan.size += info.size
	}

	c.plan[t] = plan
	return plan, nil
}

func structValue(val any) (reflect.Value, error) {
	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	return v, nil
}

// PlanOf returns the layout of val's struct type.
func (c *Codec) PlanOf(val any) (*Plan, error) {
	v, err := structValue(val)
	if err != nil {
		return nil, err
	}
	return c.getPlan(v.Type())
}

// Size returns the encoded size of val's struct type.
func (c *Codec) Size(val any) (int, error) {
	plan, err := c.PlanOf(val)
	if err != nil {
		return 0, err
	}
	return plan.size, nil
}

// Encode returns the record image of val, a struct or pointer to struct.
func (c *Codec) Encode(val any) ([]byte, error) {
	return c.Append(nil, val)
}

// Append appends the record image of val to dst. On error dst is returned
// unchanged.
func (c *Codec) Append(dst []byte, val any) ([]byte, error) {
	v, err := structValue(val)
	if err != nil {
		return dst, err
	}
	plan, err := c.getPlan(v.Type())
	if err != nil {
		return dst, err
	}
	start := len(dst)
	if cap(dst)-start < plan.size {
		grown := make([]byte, start, start+plan.size)
		copy(grown, dst)
		dst = grown
	}
	out := dst
	for _, field := range plan.fields {
		fv := v.Field(field.idx)
		if !field.custom {
			out = common.AppendFixed(out, fv, field.kind)
			continue
		}
		before := len(out)
		out, err = fv.Interface().(Field).AppendBinary(out)
		if err != nil {
			return dst[:start], fmt.Errorf("field %s: %w", field.name, err)
		}
		if n := len(out) - before; n != field.size {
			return dst[:start], fmt.Errorf("%w: field %s wrote %d bytes, want %d", ErrFieldSize, field.name, n, field.size)
		}
	}
	return out, nil
}

// Decode fills out, a pointer to struct, from the first Size bytes of data.
// Trailing bytes are ignored. out is left untouched on error.
func (c *Codec) Decode(data []byte, out any) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotStructPtr
	}
	dst := v.Elem()
	plan, err := c.getPlan(dst.Type())
	if err != nil {
		return err
	}
	if len(data) < plan.size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortBuffer, len(data), plan.size)
	}

	tmp := reflect.New(dst.Type()).Elem()
	tmp.Set(dst)
	for _, field := range plan.fields {
		fv := tmp.Field(field.idx)
		b := data[field.offset : field.offset+field.size]
		if !field.custom {
			common.SetFixed(fv, b, field.kind)
			continue
		}
		if !field.decodable {
			return fmt.Errorf("%w: field %s cannot be decoded", ErrUnsupported, field.name)
		}
		if err := fv.Addr().Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(b); err != nil {
			return fmt.Errorf("field %s: %w", field.name, err)
		}
	}
	dst.Set(tmp)
	return nil
}
