package flow

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/onflow/contract-client/model/encoding"
)

// DigestLength is the size of a digest in bytes.
const DigestLength = 32

// Digest is a SHA3-256 hash used for procedure roots, code commitments,
// block ids and transaction ids.
type Digest [DigestLength]byte

// ZeroDigest is the digest with all bytes set to zero.
var ZeroDigest = Digest{}

// MakeDigest hashes the domain tag followed by every part.
func MakeDigest(tag string, parts ...[]byte) Digest {
	hasher := sha3.New256()
	_, _ = hasher.Write([]byte(tag))
	for _, part := range parts {
		_, _ = hasher.Write(part)
	}
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

// MakeEntityDigest hashes the canonical encoding of an entity under a tag.
func MakeEntityDigest(tag string, entity interface{}) Digest {
	return MakeDigest(tag, encoding.DefaultEncoder.MustEncode(entity))
}

// HexToDigest parses a hex string, with or without 0x prefix.
func HexToDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return d, fmt.Errorf("could not decode digest: %w", err)
	}
	if len(b) != DigestLength {
		return d, fmt.Errorf("invalid digest length %d", len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) Hex() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// Less orders digests bytewise.
func (d Digest) Less(other Digest) bool {
	return bytes.Compare(d[:], other[:]) < 0
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
