package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	require.NoError(t, err)
	b, err := GenerateUUID()
	require.NoError(t, err)

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI("application/pdf", []byte{0x25, 0x50, 0x44, 0x46})

	mimeType, data, err := DecodeDataURI(uri)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)
	assert.Equal(t, []byte{0x25, 0x50, 0x44, 0x46}, data)
}

func TestDecodeDataURI_Malformed(t *testing.T) {
	_, _, err := DecodeDataURI("http://example.com/doc.pdf")
	assert.Error(t, err)

	_, _, err = DecodeDataURI("data:text/plain;base64")
	assert.Error(t, err)

	_, _, err = DecodeDataURI("data:text/plain;base64,!!!")
	assert.Error(t, err)
}
