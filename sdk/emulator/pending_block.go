package emulator

import (
	"github.com/ef-ds/deque"

	"github.com/onflow/contract-client/model/flow"
)

// pendingBlock is the block currently being assembled. It holds the accounts
// registered and the transactions submitted since the last commit, in
// submission order.
type pendingBlock struct {
	height   uint64
	parentID flow.Digest

	transactions *deque.Deque
	txIndex      map[flow.TransactionID]*flow.Transaction

	accounts  []*flow.Account
	accountIx map[flow.AccountID]*flow.Account
}

func newPendingBlock(parent *flow.Block) *pendingBlock {
	return &pendingBlock{
		height:       parent.Header.Height + 1,
		parentID:     parent.ID(),
		transactions: deque.New(),
		txIndex:      make(map[flow.TransactionID]*flow.Transaction),
		accountIx:    make(map[flow.AccountID]*flow.Account),
	}
}

// Height returns the height the pending block will be committed at.
func (b *pendingBlock) Height() uint64 {
	return b.height
}

func (b *pendingBlock) TransactionCount() int {
	return b.transactions.Len()
}

func (b *pendingBlock) Empty() bool {
	return b.transactions.Len() == 0 && len(b.accounts) == 0
}

func (b *pendingBlock) AddTransaction(tx *flow.Transaction) {
	b.transactions.PushBack(tx)
	b.txIndex[tx.ID()] = tx
}

func (b *pendingBlock) ContainsTransaction(id flow.TransactionID) bool {
	_, ok := b.txIndex[id]
	return ok
}

// NextTransaction removes and returns the oldest pending transaction.
func (b *pendingBlock) NextTransaction() (*flow.Transaction, bool) {
	v, ok := b.transactions.PopFront()
	if !ok {
		return nil, false
	}
	return v.(*flow.Transaction), true
}

func (b *pendingBlock) AddAccount(account *flow.Account) {
	b.accounts = append(b.accounts, account)
	b.accountIx[account.ID] = account
}

// Account returns the account if it was registered in this block.
func (b *pendingBlock) Account(id flow.AccountID) (*flow.Account, bool) {
	account, ok := b.accountIx[id]
	return account, ok
}

func (b *pendingBlock) Accounts() []*flow.Account {
	return b.accounts
}
