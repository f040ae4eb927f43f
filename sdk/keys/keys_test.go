package keys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(b byte) []byte {
	return bytes.Repeat([]byte{b}, MinSeedLength)
}

func TestGeneratePrivateKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(1))
		require.NoError(t, err)
		b, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(1))
		require.NoError(t, err)
		assert.Equal(t, a.Encode(), b.Encode())

		c, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(2))
		require.NoError(t, err)
		assert.NotEqual(t, a.Encode(), c.Encode())
	})

	t.Run("short seed", func(t *testing.T) {
		_, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, []byte{1, 2, 3})
		require.Error(t, err)
	})

	t.Run("unknown key type", func(t *testing.T) {
		_, err := GeneratePrivateKey(KeyTypeUnknown, seed(1))
		require.Error(t, err)
	})
}

func TestSignVerify(t *testing.T) {
	sk, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(7))
	require.NoError(t, err)
	pk := sk.PublicKey()
	require.Len(t, pk.Encode(), PublicKeyLength)

	msg := []byte("transaction id")
	sig, err := sk.Sign(msg)
	require.NoError(t, err)

	ok, err := VerifySignature(pk.Encode(), sig, msg)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pk.Verify(sig, []byte("other message"))
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(8))
	require.NoError(t, err)
	ok, err = other.PublicKey().Verify(sig, msg)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = pk.Verify([]byte{0x01, 0x02}, msg)
	require.Error(t, err)
}

func TestDecodeKeys(t *testing.T) {
	sk, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(3))
	require.NoError(t, err)

	decoded, err := DecodePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, sk.Encode())
	require.NoError(t, err)
	assert.Equal(t, sk.Encode(), decoded.Encode())

	pk, err := DecodePublicKey(KeyTypeECDSA_SECp256k1_SHA3_256, sk.PublicKey().Encode())
	require.NoError(t, err)
	assert.True(t, pk.Equals(sk.PublicKey()))

	_, err = DecodePublicKey(KeyTypeECDSA_SECp256k1_SHA3_256, []byte{0x02})
	require.Error(t, err)
}
