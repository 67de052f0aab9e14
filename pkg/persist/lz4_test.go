package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4CodecRoundTripsInnerJSON(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewJSONCodec())

	original := testState{Name: "compressed", Count: 7, Values: map[string]int{"x": 1}}

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState
	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
	assert.Equal(t, ".json.lz4", codec.Extension())
}

func TestBytesCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewBytesCodec()
	original := []byte("opaque state blob")

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, &original))

	var decoded []byte
	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
	assert.Equal(t, ".bin", codec.Extension())
}

func TestLZ4WrappedBytesCodecCompressesAndRestores(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewBytesCodec())
	original := bytes.Repeat([]byte("a"), 4096)

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, &original))
	assert.Less(t, buf.Len(), len(original))

	var decoded []byte
	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
}
