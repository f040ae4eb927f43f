package unittest

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/onflow/contract-client/model/flow"
)

func SeedFixture() flow.Seed {
	var seed flow.Seed
	_, err := rand.Read(seed[:])
	if err != nil {
		panic(fmt.Sprintf("could not read random seed: %v", err))
	}
	return seed
}

func DigestFixture() flow.Digest {
	var d flow.Digest
	_, _ = rand.Read(d[:])
	return d
}

func AccountIDFixture() flow.AccountID {
	return flow.DeriveAccountID(SeedFixture(), flow.RegularAccountImmutableCode, flow.StorageModePublic, DigestFixture())
}

func AccountIDListFixture(n int) []flow.AccountID {
	ids := make([]flow.AccountID, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, AccountIDFixture())
	}
	return ids
}

func TransactionIDFixture() flow.TransactionID {
	return flow.TransactionID(DigestFixture())
}

func WordFixture() flow.Word {
	var w flow.Word
	for i := range w {
		w[i] = flow.NewFelt(mrand.Uint64())
	}
	return w
}

// AccountFixture returns a public contract account with random storage and
// opaque code.
func AccountFixture(opts ...func(*flow.Account)) *flow.Account {
	code := flow.NewAccountCode([]byte("component"), []flow.Digest{DigestFixture()})
	account := &flow.Account{
		Type:        flow.RegularAccountImmutableCode,
		StorageMode: flow.StorageModePublic,
		Code:        code,
		Auth:        flow.NoAuth(),
		Storage:     []flow.Word{WordFixture(), flow.EmptyWord},
	}
	account.ID = flow.DeriveAccountID(SeedFixture(), account.Type, account.StorageMode, code.Commitment)
	for _, apply := range opts {
		apply(account)
	}
	return account
}

func WithNonce(nonce uint64) func(*flow.Account) {
	return func(a *flow.Account) {
		a.Nonce = nonce
	}
}

func WithStorage(slots ...flow.Word) func(*flow.Account) {
	return func(a *flow.Account) {
		a.Storage = slots
	}
}

func BlockFixture(height uint64) *flow.Block {
	return &flow.Block{
		Header: flow.Header{
			ParentID:  DigestFixture(),
			Height:    height,
			Timestamp: time.Now().UTC(),
		},
		Transactions: []flow.TransactionID{TransactionIDFixture()},
	}
}

func TransactionResultFixture(status flow.TransactionStatus) *flow.TransactionResult {
	return &flow.TransactionResult{
		TransactionID: TransactionIDFixture(),
		Status:        status,
		BlockHeight:   1,
		Cycles:        42,
	}
}
