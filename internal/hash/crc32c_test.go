package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C(t *testing.T) {
	// RFC 3720 B.4 test vector: 32 bytes of zeros.
	assert.Equal(t, uint32(0x8a9136aa), CRC32C(make([]byte, 32)))
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
}

func TestNewCRC32C_Streaming(t *testing.T) {
	h := NewCRC32C()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))
	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}

func TestVerify(t *testing.T) {
	data := []byte("rows")
	require.NoError(t, Verify(data, CRC32C(data)))

	err := Verify(data, 1)
	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint32(1), ce.Want)
	assert.Equal(t, CRC32C(data), ce.Got)
}
