package keys

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestFilesystemKeyStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keystore")
	ks, err := NewFilesystemKeyStore(dir)
	require.NoError(t, err)

	sk, err := GeneratePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, seed(9))
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		_, err := ks.GetKey(sk.PublicKey())
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("add and get", func(t *testing.T) {
		require.NoError(t, ks.AddKey(sk))

		got, err := ks.GetKey(sk.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, sk.Encode(), got.Encode())
	})

	t.Run("file layout", func(t *testing.T) {
		hash := sha3.Sum256(sk.PublicKey().Encode())
		content, err := os.ReadFile(filepath.Join(dir, hex.EncodeToString(hash[:])))
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(sk.Encode()), string(content))
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, ks.Clear())
		_, err := ks.GetKey(sk.PublicKey())
		require.ErrorIs(t, err, ErrKeyNotFound)
	})
}
