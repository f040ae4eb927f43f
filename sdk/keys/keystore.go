package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrKeyNotFound is returned when the keystore has no secret key for a public
// key.
var ErrKeyNotFound = errors.New("key not found")

// FilesystemKeyStore keeps one file per secret key in a directory. The file
// is named after the hex SHA3-256 hash of the compressed public key and
// holds the hex encoded secret key.
//
// Writes are not synchronized; callers must not add keys concurrently.
type FilesystemKeyStore struct {
	dir string
}

// NewFilesystemKeyStore opens the keystore at dir, creating it if needed.
func NewFilesystemKeyStore(dir string) (*FilesystemKeyStore, error) {
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, fmt.Errorf("could not create keystore directory: %w", err)
	}
	return &FilesystemKeyStore{dir: dir}, nil
}

// Dir returns the keystore directory.
func (ks *FilesystemKeyStore) Dir() string {
	return ks.dir
}

// AddKey persists a secret key.
func (ks *FilesystemKeyStore) AddKey(sk *PrivateKey) error {
	path := ks.path(sk.PublicKey())
	content := hex.EncodeToString(sk.Encode())
	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		return fmt.Errorf("could not write key file: %w", err)
	}
	return nil
}

// GetKey loads the secret key matching a public key.
func (ks *FilesystemKeyStore) GetKey(pk PublicKey) (*PrivateKey, error) {
	content, err := os.ReadFile(ks.path(pk))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read key file: %w", err)
	}

	b, err := hex.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("could not decode key file: %w", err)
	}
	sk, err := DecodePrivateKey(KeyTypeECDSA_SECp256k1_SHA3_256, b)
	if err != nil {
		return nil, fmt.Errorf("could not decode key file: %w", err)
	}
	if !sk.PublicKey().Equals(pk) {
		return nil, fmt.Errorf("key file does not match public key")
	}
	return sk, nil
}

// Clear removes every key file.
func (ks *FilesystemKeyStore) Clear() error {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return fmt.Errorf("could not list keystore: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		err = os.Remove(filepath.Join(ks.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("could not remove key file: %w", err)
		}
	}
	return nil
}

func (ks *FilesystemKeyStore) path(pk PublicKey) string {
	hash := sha3.Sum256(pk.Encode())
	return filepath.Join(ks.dir, hex.EncodeToString(hash[:]))
}
