package flow

import (
	"encoding/hex"
	"fmt"

	"github.com/onflow/contract-client/model/encoding"
)

// AccountType tags how an account's code may evolve and who may drive it.
type AccountType uint8

const (
	// RegularAccountUpdatableCode is an owner-authenticated account whose
	// code can be replaced by its owner.
	RegularAccountUpdatableCode AccountType = iota
	// RegularAccountImmutableCode is an account whose code is fixed at
	// creation; used for contracts.
	RegularAccountImmutableCode
)

func (t AccountType) String() string {
	switch t {
	case RegularAccountUpdatableCode:
		return "regular-updatable-code"
	case RegularAccountImmutableCode:
		return "regular-immutable-code"
	default:
		return fmt.Sprintf("unknown-account-type(%d)", uint8(t))
	}
}

// IsUpdatable returns true if code can change after creation.
func (t AccountType) IsUpdatable() bool {
	return t == RegularAccountUpdatableCode
}

// StorageMode controls where an account's state is visible.
type StorageMode uint8

const (
	// StorageModePrivate accounts are only tracked by their owner.
	StorageModePrivate StorageMode = iota
	// StorageModePublic accounts have their full state on chain.
	StorageModePublic
	// StorageModeNetwork accounts are public and executable by any node.
	StorageModeNetwork
)

func (m StorageMode) String() string {
	switch m {
	case StorageModePrivate:
		return "private"
	case StorageModePublic:
		return "public"
	case StorageModeNetwork:
		return "network"
	default:
		return fmt.Sprintf("unknown-storage-mode(%d)", uint8(m))
	}
}

// AccountIDLength is the size of an account id in bytes.
const AccountIDLength = 15

// AccountID is the opaque identity of an account. It is derived
// deterministically from the creation seed, the account type, the storage
// mode and the code commitment; the type and mode are also encoded in the
// high bits of the first byte.
type AccountID [AccountIDLength]byte

// EmptyAccountID is the zero account id. No account is ever derived to it in
// practice.
var EmptyAccountID = AccountID{}

// SeedLength is the size of an account creation seed.
const SeedLength = 32

// Seed is the random input of account id derivation.
type Seed [SeedLength]byte

// DeriveAccountID computes the id of an account from its creation inputs.
func DeriveAccountID(seed Seed, accountType AccountType, mode StorageMode, codeCommitment Digest) AccountID {
	d := MakeDigest(encoding.AccountIDTag, seed[:], []byte{byte(accountType), byte(mode)}, codeCommitment[:])

	var id AccountID
	copy(id[:], d[:AccountIDLength])
	id[0] = byte(accountType)<<6 | byte(mode)<<4 | (id[0] & 0x0f)
	return id
}

// HexToAccountID parses a hex account id, with or without 0x prefix.
func HexToAccountID(s string) (AccountID, error) {
	var id AccountID
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return id, fmt.Errorf("could not decode account id: %w", err)
	}
	if len(b) != AccountIDLength {
		return id, fmt.Errorf("invalid account id length %d, expected %d", len(b), AccountIDLength)
	}
	copy(id[:], b)
	return id, nil
}

// AccountType returns the type tag encoded in the id.
func (id AccountID) AccountType() AccountType {
	return AccountType(id[0] >> 6)
}

// StorageMode returns the storage mode encoded in the id.
func (id AccountID) StorageMode() StorageMode {
	return StorageMode((id[0] >> 4) & 0x03)
}

// Bytes returns the byte representation of the id.
func (id AccountID) Bytes() []byte { return id[:] }

// Hex returns the 0x-prefixed hex representation of the id.
func (id AccountID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id AccountID) String() string {
	return id.Hex()
}

// AuthScheme identifies how transactions against an account are authenticated.
type AuthScheme uint8

const (
	// AuthSchemeNone marks a permissionless account: anyone may execute
	// transactions against it.
	AuthSchemeNone AuthScheme = iota
	// AuthSchemeECDSAK256 requires a secp256k1 ECDSA signature over the
	// transaction id.
	AuthSchemeECDSAK256
)

// AuthComponent is the authentication capability of an account.
type AuthComponent struct {
	Scheme    AuthScheme
	PublicKey []byte
}

// NoAuth returns the permissionless authentication component.
func NoAuth() AuthComponent {
	return AuthComponent{Scheme: AuthSchemeNone}
}

// AuthECDSA returns an authentication component requiring signatures from
// the given compressed secp256k1 public key.
func AuthECDSA(publicKey []byte) AuthComponent {
	return AuthComponent{Scheme: AuthSchemeECDSAK256, PublicKey: publicKey}
}

// IsPermissionless returns true if no signature is required.
func (a AuthComponent) IsPermissionless() bool {
	return a.Scheme == AuthSchemeNone
}

// AccountCode is the compiled code of an account along with its commitment.
type AccountCode struct {
	// Component is the encoded compiled component (see fvm/assembly).
	Component []byte
	// Procedures lists the digests of the exported procedures.
	Procedures []Digest
	// Commitment commits to the procedure digests.
	Commitment Digest
}

// NewAccountCode computes the commitment over the procedure digests.
func NewAccountCode(component []byte, procedures []Digest) AccountCode {
	parts := make([][]byte, 0, len(procedures))
	for i := range procedures {
		parts = append(parts, procedures[i][:])
	}
	return AccountCode{
		Component:  component,
		Procedures: procedures,
		Commitment: MakeDigest(encoding.CodeCommitmentTag, parts...),
	}
}

// HasProcedure returns true if the code exports a procedure with the digest.
func (c AccountCode) HasProcedure(digest Digest) bool {
	for _, p := range c.Procedures {
		if p == digest {
			return true
		}
	}
	return false
}

// Account represents an account on the ledger.
//
// An account is either an owner-authenticated wallet or a contract with
// immutable code.
type Account struct {
	ID          AccountID
	Type        AccountType
	StorageMode StorageMode
	Nonce       uint64
	Code        AccountCode
	Auth        AuthComponent
	Storage     []Word
}

// GetItem returns the value of the storage slot at index.
func (a *Account) GetItem(index int) (Word, error) {
	if index < 0 || index >= len(a.Storage) {
		return EmptyWord, SlotIndexOutOfBoundsError{Account: a.ID, Index: index, Slots: len(a.Storage)}
	}
	return a.Storage[index], nil
}

// SetItem sets the value of the storage slot at index.
func (a *Account) SetItem(index int, value Word) error {
	if index < 0 || index >= len(a.Storage) {
		return SlotIndexOutOfBoundsError{Account: a.ID, Index: index, Slots: len(a.Storage)}
	}
	a.Storage[index] = value
	return nil
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := *a
	cp.Storage = append([]Word(nil), a.Storage...)
	cp.Code.Component = append([]byte(nil), a.Code.Component...)
	cp.Code.Procedures = append([]Digest(nil), a.Code.Procedures...)
	cp.Auth.PublicKey = append([]byte(nil), a.Auth.PublicKey...)
	return &cp
}

// SlotIndexOutOfBoundsError is returned when a storage slot index is not
// declared by the account.
type SlotIndexOutOfBoundsError struct {
	Account AccountID
	Index   int
	Slots   int
}

func (e SlotIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("storage slot %d out of bounds for account %s with %d slot(s)", e.Index, e.Account, e.Slots)
}
