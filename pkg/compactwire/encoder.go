package compactwire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/rawbytedev/cstring/pkg/record"
)

// Encoder builds frames. It is not safe for concurrent use.
type Encoder struct {
	opts Options
	rec  *record.Codec
	zenc *zstd.Encoder
	buf  []byte
}

// NewEncoder returns an Encoder configured by opts.
func NewEncoder(opts Options) (*Encoder, error) {
	e := &Encoder{opts: opts, rec: opts.codec()}
	if opts.Compress {
		level := opts.Level
		if level == 0 {
			level = zstd.SpeedDefault
		}
		zenc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		if err != nil {
			return nil, err
		}
		e.zenc = zenc
	}
	return e, nil
}

// Close releases the compressor.
func (e *Encoder) Close() error {
	if e.zenc != nil {
		return e.zenc.Close()
	}
	return nil
}

// EncodeDataFrame serializes a payload with an optional offset table. The
// offset table flag is set when offsets is non-empty; FlagZstd follows
// Options.Compress.
func (e *Encoder) EncodeDataFrame(payload []byte, flags byte, offsets []uint32) ([]byte, error) {
	if len(offsets) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, len(offsets))
	}
	flags &^= FlagHasOffsetTable | FlagZstd
	if len(offsets) > 0 {
		flags |= FlagHasOffsetTable
	}
	if e.zenc != nil {
		flags |= FlagZstd
		payload = e.zenc.EncodeAll(payload, nil)
	}

	out := writePreamble(nil, TypeData)
	out = append(out, flags)
	if flags&FlagHasOffsetTable != 0 {
		out = binary.LittleEndian.AppendUint16(out, uint16(len(offsets)))
		for _, off := range offsets {
			out = binary.LittleEndian.AppendUint32(out, off)
		}
	}
	out = append(out, payload...)
	return seal(out, e.opts.MaxFrame)
}

// EncodeRecords lays out each record back to back and frames them with an
// offset table pointing at each record start.
func (e *Encoder) EncodeRecords(records ...any) ([]byte, error) {
	if len(records) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, len(records))
	}
	e.buf = e.buf[:0]
	offsets := make([]uint32, 0, len(records))
	var err error
	for i, r := range records {
		offsets = append(offsets, uint32(len(e.buf)))
		if e.buf, err = e.rec.Append(e.buf, r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return e.EncodeDataFrame(e.buf, 0, offsets)
}

// EncodeErrorFrame builds an error frame. reason must fit a Reason.
func (e *Encoder) EncodeErrorFrame(code byte, reason string) ([]byte, error) {
	var r Reason
	if err := r.Set(reason); err != nil {
		return nil, fmt.Errorf("error reason: %w", err)
	}
	out := writePreamble(nil, TypeError)
	out = append(out, code)
	out, _ = r.AppendBinary(out)
	return seal(out, e.opts.MaxFrame)
}

// EncodeHandshake builds a handshake frame from the record image of h.
func (e *Encoder) EncodeHandshake(h Handshake) ([]byte, error) {
	out, err := e.rec.Append(writePreamble(nil, TypeHandshake), &h)
	if err != nil {
		return nil, err
	}
	return seal(out, e.opts.MaxFrame)
}
