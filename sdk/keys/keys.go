package keys

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

type KeyType int

const (
	KeyTypeUnknown KeyType = iota
	KeyTypeECDSA_SECp256k1_SHA3_256
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeECDSA_SECp256k1_SHA3_256:
		return "ECDSA_secp256k1_SHA3_256"
	default:
		return "UNKNOWN"
	}
}

const (
	// MinSeedLength is the minimum number of seed bytes for key generation.
	MinSeedLength = 32
	// PrivateKeyLength is the size of an encoded private key.
	PrivateKeyLength = btcec.PrivKeyBytesLen
	// PublicKeyLength is the size of an encoded compressed public key.
	PublicKeyLength = btcec.PubKeyBytesLenCompressed
)

// PrivateKey is an account secret key.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// PublicKey is an account public key.
type PublicKey struct {
	key *btcec.PublicKey
}

// GeneratePrivateKey deterministically derives a private key from a seed.
func GeneratePrivateKey(keyType KeyType, seed []byte) (*PrivateKey, error) {
	if keyType != KeyTypeECDSA_SECp256k1_SHA3_256 {
		return nil, fmt.Errorf("unsupported key type %s", keyType)
	}
	if len(seed) < MinSeedLength {
		return nil, fmt.Errorf("seed must be at least %d bytes, got %d", MinSeedLength, len(seed))
	}

	scalar := sha3.Sum256(seed)
	key, _ := btcec.PrivKeyFromBytes(scalar[:])
	if key.Key.IsZero() {
		return nil, fmt.Errorf("seed derives an invalid private key")
	}
	return &PrivateKey{key: key}, nil
}

// DecodePrivateKey decodes a private key encoded with Encode.
func DecodePrivateKey(keyType KeyType, b []byte) (*PrivateKey, error) {
	if keyType != KeyTypeECDSA_SECp256k1_SHA3_256 {
		return nil, fmt.Errorf("unsupported key type %s", keyType)
	}
	if len(b) != PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length %d", len(b))
	}
	key, _ := btcec.PrivKeyFromBytes(b)
	if key.Key.IsZero() {
		return nil, fmt.Errorf("invalid private key")
	}
	return &PrivateKey{key: key}, nil
}

// DecodePublicKey decodes a compressed or uncompressed public key.
func DecodePublicKey(keyType KeyType, b []byte) (PublicKey, error) {
	if keyType != KeyTypeECDSA_SECp256k1_SHA3_256 {
		return PublicKey{}, fmt.Errorf("unsupported key type %s", keyType)
	}
	key, err := btcec.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("could not decode public key: %w", err)
	}
	return PublicKey{key: key}, nil
}

func (sk *PrivateKey) PublicKey() PublicKey {
	return PublicKey{key: sk.key.PubKey()}
}

// Encode returns the 32-byte scalar.
func (sk *PrivateKey) Encode() []byte {
	return sk.key.Serialize()
}

// Sign signs the SHA3-256 hash of message. The signature is DER encoded.
func (sk *PrivateKey) Sign(message []byte) ([]byte, error) {
	hash := sha3.Sum256(message)
	return ecdsa.Sign(sk.key, hash[:]).Serialize(), nil
}

// Encode returns the compressed encoding of the key.
func (pk PublicKey) Encode() []byte {
	if pk.key == nil {
		return nil
	}
	return pk.key.SerializeCompressed()
}

func (pk PublicKey) Equals(other PublicKey) bool {
	if pk.key == nil || other.key == nil {
		return pk.key == other.key
	}
	return pk.key.IsEqual(other.key)
}

// Verify checks a signature produced by PrivateKey.Sign.
func (pk PublicKey) Verify(signature []byte, message []byte) (bool, error) {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false, fmt.Errorf("could not decode signature: %w", err)
	}
	hash := sha3.Sum256(message)
	return sig.Verify(hash[:], pk.key), nil
}

// VerifySignature decodes publicKey and verifies signature over message.
func VerifySignature(publicKey []byte, signature []byte, message []byte) (bool, error) {
	pk, err := DecodePublicKey(KeyTypeECDSA_SECp256k1_SHA3_256, publicKey)
	if err != nil {
		return false, err
	}
	return pk.Verify(signature, message)
}
