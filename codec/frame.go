package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/roster/internal/conv"
	"github.com/hupe1980/roster/internal/hash"
)

var (
	// ErrBadFrame is returned for truncated or malformed frames.
	ErrBadFrame = errors.New("codec: malformed frame")

	// ErrChecksumMismatch is returned when the decoded body does not match
	// the checksum stored in the frame header.
	ErrChecksumMismatch = errors.New("codec: checksum mismatch")

	// ErrUnknownCodec is returned when a frame names a codec ByName does not know.
	ErrUnknownCodec = errors.New("codec: unknown codec")
)

const (
	frameMagic   = 0x5246 // "RF"
	frameVersion = 1
)

// MaxRecordSize is the largest encoded record a frame may carry (64 MiB).
// Decode rejects headers that claim more before allocating anything.
const MaxRecordSize = 64 << 20

// Frame layout (little endian):
//
//	magic       uint16
//	version     uint8
//	compression uint8
//	rawSize     uint32  encoded record size before compression
//	checksum    uint32  CRC32C of the encoded record
//	nameLen     uint8
//	name        [nameLen]byte  codec name
//	body        compressed or raw encoded record
const frameFixedSize = 13

// Frame encodes records with a codec and optional compression and decodes
// any frame regardless of the codec it was written with.
type Frame struct {
	codec       Codec
	compression Compression
}

// NewFrame creates a Frame. A nil codec selects Default.
func NewFrame(c Codec, compression Compression) *Frame {
	if c == nil {
		c = Default
	}
	return &Frame{codec: c, compression: compression}
}

// Codec returns the codec used for encoding.
func (f *Frame) Codec() Codec { return f.codec }

// Encode marshals v and wraps it in a frame.
func (f *Frame) Encode(v any) ([]byte, error) {
	raw, err := f.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec %s marshal: %w", f.codec.Name(), err)
	}

	name := f.codec.Name()
	nameLen, err := conv.IntToUint8(len(name))
	if err != nil {
		return nil, fmt.Errorf("codec: name %q: %w", name, err)
	}
	if len(raw) > MaxRecordSize {
		return nil, fmt.Errorf("codec: record size %d exceeds %d", len(raw), MaxRecordSize)
	}
	rawSize, err := conv.IntToUint32(len(raw))
	if err != nil {
		return nil, fmt.Errorf("codec: record size: %w", err)
	}

	compression := f.compression
	body, err := compress(raw, compression)
	if err != nil {
		return nil, err
	}
	if body == nil {
		compression = CompressionNone
		body = raw
	}

	out := make([]byte, frameFixedSize+len(name)+len(body))
	binary.LittleEndian.PutUint16(out[0:], frameMagic)
	out[2] = frameVersion
	out[3] = byte(compression)
	binary.LittleEndian.PutUint32(out[4:], rawSize)
	binary.LittleEndian.PutUint32(out[8:], hash.CRC32C(raw))
	out[12] = nameLen
	copy(out[frameFixedSize:], name)
	copy(out[frameFixedSize+len(name):], body)
	return out, nil
}

// Decode unwraps a frame produced by any Frame and unmarshals it into v.
func (f *Frame) Decode(data []byte, v any) error {
	return Decode(data, v)
}

// Decode unwraps data, verifies its checksum and unmarshals the record into v
// with the codec named in the header.
func Decode(data []byte, v any) error {
	if len(data) < frameFixedSize {
		return fmt.Errorf("%w: %d bytes", ErrBadFrame, len(data))
	}
	if binary.LittleEndian.Uint16(data[0:]) != frameMagic {
		return fmt.Errorf("%w: bad magic", ErrBadFrame)
	}
	if data[2] != frameVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadFrame, data[2])
	}

	compression := Compression(data[3])
	rawSize := int(binary.LittleEndian.Uint32(data[4:]))
	checksum := binary.LittleEndian.Uint32(data[8:])
	nameLen := int(data[12])
	if len(data) < frameFixedSize+nameLen {
		return fmt.Errorf("%w: truncated codec name", ErrBadFrame)
	}

	if rawSize > MaxRecordSize {
		return fmt.Errorf("%w: record size %d exceeds %d", ErrBadFrame, rawSize, MaxRecordSize)
	}

	name := string(data[frameFixedSize : frameFixedSize+nameLen])
	c, ok := ByName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	raw, err := decompress(data[frameFixedSize+nameLen:], compression, rawSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	if len(raw) != rawSize {
		return fmt.Errorf("%w: size %d, want %d", ErrBadFrame, len(raw), rawSize)
	}
	if hash.CRC32C(raw) != checksum {
		return ErrChecksumMismatch
	}

	return c.Unmarshal(raw, v)
}
