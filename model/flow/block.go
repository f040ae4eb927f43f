package flow

import (
	"time"

	"github.com/onflow/contract-client/model/encoding"
)

// GenesisTime is the timestamp of every genesis block.
var GenesisTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Genesis returns the genesis block of a ledger.
func Genesis() *Block {
	header := Header{
		ParentID:  ZeroDigest,
		Height:    0,
		Timestamp: GenesisTime,
	}
	return &Block{Header: header}
}

// Header is the header of a committed block.
type Header struct {
	ParentID  Digest
	Height    uint64
	Timestamp time.Time
}

// Block is a committed set of transactions and account registrations.
type Block struct {
	Header          Header
	Transactions    []TransactionID
	CreatedAccounts []AccountID
}

// ID returns the block id, which commits to the header and its payload.
func (b *Block) ID() Digest {
	return MakeEntityDigest(encoding.BlockTag, struct {
		ParentID     Digest
		Height       uint64
		Timestamp    int64
		Transactions []TransactionID
		Created      []AccountID
	}{
		ParentID:     b.Header.ParentID,
		Height:       b.Header.Height,
		Timestamp:    b.Header.Timestamp.UnixNano(),
		Transactions: b.Transactions,
		Created:      b.CreatedAccounts,
	})
}
