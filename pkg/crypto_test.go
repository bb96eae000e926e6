package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encoded, err := EncryptString("hunter2", "app-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", encoded)

	decoded, err := DecryptString(encoded, "app-secret")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decoded)
}

func TestEncryptString_NonceVaries(t *testing.T) {
	first, err := EncryptString("hunter2", "app-secret")
	require.NoError(t, err)
	second, err := EncryptString("hunter2", "app-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each encryption uses a fresh nonce")
}

func TestDecryptString_WrongSecret(t *testing.T) {
	encoded, err := EncryptString("hunter2", "app-secret")
	require.NoError(t, err)

	_, err = DecryptString(encoded, "other-secret")
	assert.Error(t, err)
}

func TestDecryptString_Garbage(t *testing.T) {
	_, err := DecryptString("not base64 at all!!!", "app-secret")
	assert.Error(t, err)

	_, err = DecryptString("c2hvcnQ=", "app-secret")
	assert.Error(t, err, "payload shorter than a nonce is rejected")
}
