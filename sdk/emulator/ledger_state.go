package emulator

import (
	"errors"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/emulator/storage"
	cstorage "github.com/onflow/contract-client/storage"
)

// ledgerState is the account state transactions of a block execute against:
// the accounts the block changed so far on top of the committed store.
type ledgerState struct {
	store   storage.Store
	updated map[flow.AccountID]*flow.Account
	order   []flow.AccountID
}

func newLedgerState(store storage.Store) *ledgerState {
	return &ledgerState{
		store:   store,
		updated: make(map[flow.AccountID]*flow.Account),
	}
}

// GetAccount returns cstorage.ErrNotFound for unknown accounts.
func (s *ledgerState) GetAccount(id flow.AccountID) (*flow.Account, error) {
	if account, ok := s.updated[id]; ok {
		return account, nil
	}
	account, _, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *ledgerState) Exists(id flow.AccountID) (bool, error) {
	_, err := s.GetAccount(id)
	if errors.Is(err, cstorage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ledgerState) SetAccount(account *flow.Account) {
	if _, ok := s.updated[account.ID]; !ok {
		s.order = append(s.order, account.ID)
	}
	s.updated[account.ID] = account
}

// Updated returns the changed accounts in the order they first changed.
func (s *ledgerState) Updated() []*flow.Account {
	accounts := make([]*flow.Account, 0, len(s.order))
	for _, id := range s.order {
		accounts = append(accounts, s.updated[id])
	}
	return accounts
}
