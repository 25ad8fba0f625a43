package compactwire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/rawbytedev/cstring/pkg/record"
)

// Decoder parses frames produced by Encoder. It is safe for concurrent use.
type Decoder struct {
	opts Options
	rec  *record.Codec
	zdec *zstd.Decoder
}

// NewDecoder returns a Decoder configured by opts. A positive MaxFrame also
// bounds the decompressed payload size.
func NewDecoder(opts Options) (*Decoder, error) {
	var zopts []zstd.DOption
	if opts.MaxFrame > 0 {
		zopts = append(zopts, zstd.WithDecoderMaxMemory(uint64(opts.MaxFrame)))
	}
	zdec, err := zstd.NewReader(nil, zopts...)
	if err != nil {
		return nil, err
	}
	return &Decoder{opts: opts, rec: opts.codec(), zdec: zdec}, nil
}

// Close releases the decompressor.
func (d *Decoder) Close() {
	d.zdec.Close()
}

// DecodeDataFrame parses a data frame and returns the (decompressed) payload,
// the offset table and the flags.
func (d *Decoder) DecodeDataFrame(data []byte) ([]byte, []uint32, byte, error) {
	body, err := open(data, TypeData, d.opts.MaxFrame)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(body) < 1 {
		return nil, nil, 0, ErrShortFrame
	}
	flags := body[0]
	body = body[1:]

	var offsets []uint32
	if flags&FlagHasOffsetTable != 0 {
		if len(body) < 2 {
			return nil, nil, 0, ErrShortFrame
		}
		cnt := int(binary.LittleEndian.Uint16(body))
		body = body[2:]
		if len(body) < cnt*4 {
			return nil, nil, 0, ErrShortFrame
		}
		offsets = make([]uint32, cnt)
		for i := range offsets {
			offsets[i] = binary.LittleEndian.Uint32(body[i*4:])
		}
		body = body[cnt*4:]
	}

	payload := body
	if flags&FlagZstd != 0 {
		payload, err = d.zdec.DecodeAll(body, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, nil, 0, fmt.Errorf("%w: decompressed payload exceeds %d bytes", ErrFrameTooLarge, d.opts.MaxFrame)
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("compactwire: decompress: %w", err)
		}
		if d.opts.MaxFrame > 0 && len(payload) > d.opts.MaxFrame {
			return nil, nil, 0, fmt.Errorf("%w: decompressed payload is %d bytes", ErrFrameTooLarge, len(payload))
		}
	}
	return payload, offsets, flags, nil
}

// DecodeRecord decodes the i-th record of a payload returned by
// DecodeDataFrame into out.
func (d *Decoder) DecodeRecord(payload []byte, offsets []uint32, i int, out any) error {
	if i < 0 || i >= len(offsets) {
		return fmt.Errorf("%w: %d of %d", ErrRecordIndex, i, len(offsets))
	}
	off := int(offsets[i])
	if off > len(payload) {
		return ErrShortFrame
	}
	return d.rec.Decode(payload[off:], out)
}

// DecodeErrorFrame parses an error frame and returns its code and reason.
func (d *Decoder) DecodeErrorFrame(data []byte) (byte, string, error) {
	body, err := open(data, TypeError, d.opts.MaxFrame)
	if err != nil {
		return 0, "", err
	}
	var r Reason
	if len(body) != 1+r.BinarySize() {
		return 0, "", fmt.Errorf("%w: error body is %d bytes", ErrLengthMismatch, len(body))
	}
	if err := r.UnmarshalBinary(body[1:]); err != nil {
		return 0, "", err
	}
	return body[0], r.String(), nil
}

// DecodeHandshake parses a handshake frame.
func (d *Decoder) DecodeHandshake(data []byte) (Handshake, error) {
	var h Handshake
	body, err := open(data, TypeHandshake, d.opts.MaxFrame)
	if err != nil {
		return h, err
	}
	if size, _ := d.rec.Size(&h); len(body) != size {
		return h, fmt.Errorf("%w: handshake body is %d bytes, want %d", ErrLengthMismatch, len(body), size)
	}
	if err := d.rec.Decode(body, &h); err != nil {
		return Handshake{}, err
	}
	return h, nil
}
