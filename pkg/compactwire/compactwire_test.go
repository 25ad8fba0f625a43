package compactwire

import (
	"testing"

	"github.com/rawbytedev/cstring"
	"github.com/rawbytedev/cstring/pkg/record"
	"github.com/stretchr/testify/require"
)

type Route struct {
	Prefix cstring.String[[20]byte]
	Metric uint32
	Iface  cstring.String[[8]byte]
}

func makeRoutes(t *testing.T) []any {
	var out []any
	for i, r := range [][2]string{{"10.0.0.0/8", "eth0"}, {"192.168.1.0/24", "wlan0"}, {"0.0.0.0/0", "ppp0"}} {
		route := &Route{Metric: uint32(i * 10)}
		require.NoError(t, route.Prefix.Set(r[0]))
		require.NoError(t, route.Iface.Set(r[1]))
		out = append(out, route)
	}
	return out
}

func newPair(t *testing.T, opts Options) (*Encoder, *Decoder) {
	enc, err := NewEncoder(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = enc.Close() })
	dec, err := NewDecoder(opts)
	require.NoError(t, err)
	t.Cleanup(dec.Close)
	return enc, dec
}

func TestRecordsRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		enc, dec := newPair(t, Options{Compress: compress, Codec: record.NewCodec()})
		routes := makeRoutes(t)

		frame, err := enc.EncodeRecords(routes...)
		require.NoError(t, err)

		payload, offsets, flags, err := dec.DecodeDataFrame(frame)
		require.NoError(t, err)
		require.NotZero(t, flags&FlagHasOffsetTable)
		require.Equal(t, compress, flags&FlagZstd != 0)
		require.Equal(t, []uint32{0, 32, 64}, offsets)
		require.Len(t, payload, 96)

		for i, want := range routes {
			var got Route
			require.NoError(t, dec.DecodeRecord(payload, offsets, i, &got))
			require.Equal(t, *want.(*Route), got)
		}
		require.ErrorIs(t, dec.DecodeRecord(payload, offsets, 3, &Route{}), ErrRecordIndex)
	}
}

func TestDataFrameRawPayload(t *testing.T) {
	enc, dec := newPair(t, Options{})

	frame, err := enc.EncodeDataFrame([]byte("payload"), FlagHasOffsetTable|FlagZstd, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{'C', 'W', TypeData}, frame[:3])

	payload, offsets, flags, err := dec.DecodeDataFrame(frame)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), payload)
	require.Nil(t, offsets)
	require.Zero(t, flags)
}

func TestErrorFrame(t *testing.T) {
	enc, dec := newPair(t, Options{})

	frame, err := enc.EncodeErrorFrame(0x42, "route table full")
	require.NoError(t, err)
	require.Len(t, frame, headerSize+1+64+crcSize)

	code, reason, err := dec.DecodeErrorFrame(frame)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), code)
	require.Equal(t, "route table full", reason)

	long := make([]byte, 64)
	for i := range long {
		long[i] = 'x'
	}
	_, err = enc.EncodeErrorFrame(1, string(long))
	require.ErrorIs(t, err, cstring.ErrCapacityExceeded)
}

func TestHandshake(t *testing.T) {
	enc, dec := newPair(t, Options{})

	h := Handshake{VersionMask: 0b11, MTU: 1400, TimeoutMS: 2500}
	require.NoError(t, h.Peer.Set("edge-router-1"))
	require.NoError(t, h.AlgCodes.Assign(cstring.FromList[byte, [16]byte](1, 3, 4)))

	frame, err := enc.EncodeHandshake(h)
	require.NoError(t, err)
	require.Len(t, frame, headerSize+2+2+4+32+16+crcSize)

	got, err := dec.DecodeHandshake(frame)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, []byte{1, 3, 4}, got.AlgCodes.Units())
}

func TestCorruptFrames(t *testing.T) {
	enc, dec := newPair(t, Options{})
	frame, err := enc.EncodeErrorFrame(1, "oops")
	require.NoError(t, err)

	flip := append([]byte(nil), frame...)
	flip[10] ^= 0xFF
	_, _, err = dec.DecodeErrorFrame(flip)
	require.ErrorIs(t, err, ErrCRCMismatch)

	magic := append([]byte(nil), frame...)
	magic[0] = 'X'
	_, _, err = dec.DecodeErrorFrame(magic)
	require.ErrorIs(t, err, ErrBadMagic)

	_, _, _, err = dec.DecodeDataFrame(frame)
	require.ErrorIs(t, err, ErrFrameType)

	_, _, err = dec.DecodeErrorFrame(frame[:len(frame)-1])
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, _, err = dec.DecodeErrorFrame(frame[:5])
	require.ErrorIs(t, err, ErrShortFrame)
}

func TestMaxFrame(t *testing.T) {
	enc, _ := newPair(t, Options{MaxFrame: 32})
	_, err := enc.EncodeDataFrame(make([]byte, 64), 0, nil)
	require.ErrorIs(t, err, ErrFrameTooLarge)

	big, _ := newPair(t, Options{})
	frame, err := big.EncodeDataFrame(make([]byte, 64), 0, nil)
	require.NoError(t, err)

	_, small := newPair(t, Options{MaxFrame: 32})
	_, _, _, err = small.DecodeDataFrame(frame)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecompressedSizeBounded(t *testing.T) {
	enc, _ := newPair(t, Options{Compress: true})
	frame, err := enc.EncodeDataFrame(make([]byte, 1<<20), 0, nil)
	require.NoError(t, err)
	require.Less(t, len(frame), 4096)

	_, small := newPair(t, Options{MaxFrame: 4096})
	_, _, _, err = small.DecodeDataFrame(frame)
	require.ErrorIs(t, err, ErrFrameTooLarge)

	_, fits := newPair(t, Options{MaxFrame: 2 << 20})
	payload, _, flags, err := fits.DecodeDataFrame(frame)
	require.NoError(t, err)
	require.NotZero(t, flags&FlagZstd)
	require.Len(t, payload, 1<<20)
}

func TestUnsupportedRecord(t *testing.T) {
	enc, _ := newPair(t, Options{})
	_, err := enc.EncodeRecords(struct{ S string }{"x"})
	require.ErrorIs(t, err, record.ErrUnsupported)
}
