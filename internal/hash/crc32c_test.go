package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C(t *testing.T) {
	// Check value of the Castagnoli polynomial.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}

func TestBase64(t *testing.T) {
	assert.Equal(t, "mnG7TA==", Base64(CRC32C([]byte("hello"))))
	assert.Equal(t, "AAAAAA==", Base64(0))
}

func TestCRC32CReader(t *testing.T) {
	data := strings.Repeat("pkcc", 1000)
	sum, n, err := CRC32CReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, CRC32C([]byte(data)), sum)
}
