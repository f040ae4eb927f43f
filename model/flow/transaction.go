package flow

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/onflow/contract-client/model/encoding"
)

// TransactionID identifies a transaction. It is returned on submission and
// does not imply the transaction was committed.
type TransactionID Digest

func (id TransactionID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id TransactionID) String() string {
	return id.Hex()
}

// HexToTransactionID parses a hex transaction id.
func HexToTransactionID(s string) (TransactionID, error) {
	d, err := HexToDigest(s)
	if err != nil {
		return TransactionID{}, fmt.Errorf("could not decode transaction id: %w", err)
	}
	return TransactionID(d), nil
}

// WitnessMap is private auxiliary input to a transaction. Values are looked up
// by word keys during execution and are never revealed on chain.
//
// Inserting twice under the same key keeps only the second value.
type WitnessMap map[Word][]Felt

// NewWitnessMap returns an empty witness map.
func NewWitnessMap() WitnessMap {
	return make(WitnessMap)
}

// Insert sets the value under key, replacing any previous value.
func (m WitnessMap) Insert(key Word, value []Felt) {
	m[key] = append([]Felt(nil), value...)
}

// InsertWord is Insert for word-sized values.
func (m WitnessMap) InsertWord(key Word, value Word) {
	m.Insert(key, value[:])
}

// Get returns the value under key.
func (m WitnessMap) Get(key Word) ([]Felt, bool) {
	v, ok := m[key]
	return v, ok
}

// Extend merges other into m. Entries of other win on key collisions.
func (m WitnessMap) Extend(other WitnessMap) {
	for k, v := range other {
		m.Insert(k, v)
	}
}

// WitnessEntry is a single key/value pair of a witness map.
type WitnessEntry struct {
	Key   Word
	Value []Felt
}

// Entries returns the entries sorted by key, which is the canonical order used
// for hashing and for the wire format.
func (m WitnessMap) Entries() []WitnessEntry {
	entries := make([]WitnessEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, WitnessEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key.Bytes(), entries[j].Key.Bytes()) < 0
	})
	return entries
}

// WitnessMapFromEntries builds a witness map from entries, in order, so a
// later duplicate key wins.
func WitnessMapFromEntries(entries []WitnessEntry) WitnessMap {
	m := make(WitnessMap, len(entries))
	for _, e := range entries {
		m.Insert(e.Key, e.Value)
	}
	return m
}

// TransactionScript is a compiled program along with its digest.
type TransactionScript struct {
	// Program is the encoded compiled program (see fvm/assembly).
	Program []byte
	Digest  Digest
}

// TransactionRequest carries everything the ledger needs to execute a
// transaction against an account: the script, its public argument and the
// private witness map.
type TransactionRequest struct {
	Script    TransactionScript
	ScriptArg Word
	Witness   []WitnessEntry
}

// WitnessMap returns the request's witness entries as a map.
func (r TransactionRequest) WitnessMap() WitnessMap {
	return WitnessMapFromEntries(r.Witness)
}

// TransactionRequestBuilder assembles a TransactionRequest.
type TransactionRequestBuilder struct {
	script    *TransactionScript
	scriptArg Word
	witness   WitnessMap
}

// NewTransactionRequest returns an empty request builder.
func NewTransactionRequest() *TransactionRequestBuilder {
	return &TransactionRequestBuilder{witness: NewWitnessMap()}
}

// SetCustomScript sets the script to execute.
func (b *TransactionRequestBuilder) SetCustomScript(script TransactionScript) *TransactionRequestBuilder {
	b.script = &script
	return b
}

// SetScriptArg sets the public operand stack of the script.
func (b *TransactionRequestBuilder) SetScriptArg(arg Word) *TransactionRequestBuilder {
	b.scriptArg = arg
	return b
}

// ExtendWitnessMap merges the witness map into the request.
func (b *TransactionRequestBuilder) ExtendWitnessMap(witness WitnessMap) *TransactionRequestBuilder {
	b.witness.Extend(witness)
	return b
}

// Build returns the request. It fails if no script was set.
func (b *TransactionRequestBuilder) Build() (TransactionRequest, error) {
	if b.script == nil || len(b.script.Program) == 0 {
		return TransactionRequest{}, fmt.Errorf("transaction request is missing a script")
	}
	return TransactionRequest{
		Script:    *b.script,
		ScriptArg: b.scriptArg,
		Witness:   b.witness.Entries(),
	}, nil
}

// Transaction is a request bound to a target account at an expected nonce.
type Transaction struct {
	AccountID AccountID
	Nonce     uint64
	Request   TransactionRequest
	// Signature is required when the target account is authenticated. It
	// signs the transaction id.
	Signature []byte
}

// NewTransaction binds a request to an account and nonce.
func NewTransaction(account AccountID, nonce uint64, request TransactionRequest) *Transaction {
	return &Transaction{
		AccountID: account,
		Nonce:     nonce,
		Request:   request,
	}
}

// ID computes the transaction id. The signature is not part of the id.
func (tx *Transaction) ID() TransactionID {
	return TransactionID(MakeEntityDigest(encoding.TransactionIDTag, struct {
		AccountID    AccountID
		Nonce        uint64
		ScriptDigest Digest
		ScriptArg    Word
		Witness      []WitnessEntry
	}{
		AccountID:    tx.AccountID,
		Nonce:        tx.Nonce,
		ScriptDigest: tx.Request.Script.Digest,
		ScriptArg:    tx.Request.ScriptArg,
		Witness:      tx.Request.Witness,
	}))
}

// TransactionStatus describes how far a submitted transaction progressed.
type TransactionStatus uint8

const (
	TransactionStatusUnknown TransactionStatus = iota
	TransactionStatusPending
	TransactionStatusCommitted
	TransactionStatusReverted
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusPending:
		return "PENDING"
	case TransactionStatusCommitted:
		return "COMMITTED"
	case TransactionStatusReverted:
		return "REVERTED"
	default:
		return "UNKNOWN"
	}
}

// IsFinal returns true if the status will not change anymore.
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCommitted || s == TransactionStatusReverted
}
