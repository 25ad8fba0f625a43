// Package compactwire frames fixed-layout records for transport.
//
// Every frame starts with the two magic bytes "CW", a type byte and the total
// frame length as a little-endian uint32, and ends with a CRC32 (IEEE) of
// everything after the magic. Bodies are built from record images, so
// FixedString fields travel at their exact in-memory size.
package compactwire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zstd"
	"github.com/rawbytedev/cstring"
	"github.com/rawbytedev/cstring/pkg/record"
)

const (
	Magic0 = 'C'
	Magic1 = 'W'

	TypeData      byte = 0x01
	TypeError     byte = 0x02
	TypeHandshake byte = 0x03

	FlagHasOffsetTable byte = 0x01
	FlagZstd           byte = 0x02

	headerSize = 7 // magic(2) + type(1) + length(4)
	crcSize    = 4
)

var (
	ErrBadMagic       = errors.New("compactwire: bad magic")
	ErrFrameType      = errors.New("compactwire: unexpected frame type")
	ErrShortFrame     = errors.New("compactwire: frame too short")
	ErrLengthMismatch = errors.New("compactwire: length mismatch")
	ErrCRCMismatch    = errors.New("compactwire: crc mismatch")
	ErrFrameTooLarge  = errors.New("compactwire: frame exceeds limit")
	ErrTooManyRecords = errors.New("compactwire: too many records")
	ErrRecordIndex    = errors.New("compactwire: record index out of range")
)

// Reason is the fixed-width message carried by error frames.
type Reason = cstring.String[[64]byte]

// Handshake opens a session. Its body is the record image of the struct.
type Handshake struct {
	VersionMask uint16
	MTU         uint16
	TimeoutMS   uint32
	Peer        cstring.String[[32]byte]
	AlgCodes    cstring.String[[16]byte] // non-zero algorithm identifiers
}

// Options configures encoders and decoders.
type Options struct {
	// Compress zstd-compresses data frame payloads.
	Compress bool
	// Level is the zstd level; zero means zstd.SpeedDefault.
	Level zstd.EncoderLevel
	// MaxFrame bounds the total frame size in bytes, and on decode also the
	// decompressed payload size. Zero means no limit.
	MaxFrame int
	// Codec lays out records. A nil Codec gets a private one.
	Codec *record.Codec
}

func (o Options) codec() *record.Codec {
	if o.Codec != nil {
		return o.Codec
	}
	return record.NewCodec()
}

func writePreamble(buf []byte, t byte) []byte {
	// length is patched by seal
	return append(buf, Magic0, Magic1, t, 0, 0, 0, 0)
}

// seal fills in the length and appends the CRC.
func seal(out []byte, limit int) ([]byte, error) {
	total := len(out) + crcSize
	if limit > 0 && total > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, total, limit)
	}
	binary.LittleEndian.PutUint32(out[3:], uint32(total))
	return binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out[2:])), nil
}

// open validates a frame of type t and returns its body.
func open(data []byte, t byte, limit int) ([]byte, error) {
	if len(data) < headerSize+crcSize {
		return nil, ErrShortFrame
	}
	if limit > 0 && len(data) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, len(data), limit)
	}
	if data[0] != Magic0 || data[1] != Magic1 {
		return nil, ErrBadMagic
	}
	if data[2] != t {
		return nil, fmt.Errorf("%w: got %#x, want %#x", ErrFrameType, data[2], t)
	}
	if n := binary.LittleEndian.Uint32(data[3:]); int(n) != len(data) {
		return nil, fmt.Errorf("%w: header says %d, frame is %d", ErrLengthMismatch, n, len(data))
	}
	end := len(data) - crcSize
	if crc32.ChecksumIEEE(data[2:end]) != binary.LittleEndian.Uint32(data[end:]) {
		return nil, ErrCRCMismatch
	}
	return data[headerSize:end], nil
}
