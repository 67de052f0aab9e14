package persist

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec wraps another Codec's byte stream in an LZ4 framing,
// compressing on Encode and decompressing on Decode. Useful for large
// opaque blobs where the inner codec's own encoding would otherwise be
// written uncompressed to disk.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec wraps inner with LZ4 framing.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.Encode, compressing inner's output.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	if err := c.Inner.Encode(zw, state); err != nil {
		return fmt.Errorf("lz4 encode: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4 encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode, decompressing before delegating to inner.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	zr := lz4.NewReader(r)

	if err := c.Inner.Decode(zr, state); err != nil {
		return fmt.Errorf("lz4 decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension, appending ".lz4" to inner's extension.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + ".lz4"
}

// BytesCodec persists a []byte state verbatim, with no structured
// encoding, for opaque blob payloads such as asset store state
// snapshots. The state argument to Encode/Decode must be a *[]byte.
type BytesCodec struct{}

// NewBytesCodec creates a raw-bytes codec.
func NewBytesCodec() *BytesCodec {
	return &BytesCodec{}
}

// Encode implements Codec.Encode, writing the bytes verbatim.
func (c *BytesCodec) Encode(w io.Writer, state any) error {
	raw, ok := state.(*[]byte)
	if !ok {
		return fmt.Errorf("bytes codec: expected *[]byte, got %T", state)
	}

	if _, err := w.Write(*raw); err != nil {
		return fmt.Errorf("bytes encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode, reading the bytes verbatim.
func (c *BytesCodec) Decode(r io.Reader, state any) error {
	raw, ok := state.(*[]byte)
	if !ok {
		return fmt.Errorf("bytes codec: expected *[]byte, got %T", state)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("bytes decode: %w", err)
	}

	*raw = data

	return nil
}

// Extension implements Codec.Extension for raw-bytes blobs.
func (c *BytesCodec) Extension() string {
	return ".bin"
}
