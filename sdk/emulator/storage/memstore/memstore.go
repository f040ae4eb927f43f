// Package memstore implements an in-memory ledger store for tests and
// ephemeral emulators.
package memstore

import (
	"sync"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/emulator/storage"
	cstorage "github.com/onflow/contract-client/storage"
)

type accountEntry struct {
	account *flow.Account
	height  uint64
}

// Store implements storage.Store in memory.
type Store struct {
	mu       sync.RWMutex
	blocks   []*flow.Block
	blockIDs map[flow.Digest]uint64
	accounts map[flow.AccountID]accountEntry
	results  map[flow.TransactionID]*flow.TransactionResult
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		blockIDs: make(map[flow.Digest]uint64),
		accounts: make(map[flow.AccountID]accountEntry),
		results:  make(map[flow.TransactionID]*flow.TransactionResult),
	}
}

func (s *Store) GetLatestBlock() (*flow.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return nil, cstorage.ErrNotFound
	}
	return s.blocks[len(s.blocks)-1], nil
}

func (s *Store) GetBlockByHeight(height uint64) (*flow.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if height >= uint64(len(s.blocks)) {
		return nil, cstorage.ErrNotFound
	}
	return s.blocks[height], nil
}

func (s *Store) GetBlockByID(id flow.Digest) (*flow.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	height, ok := s.blockIDs[id]
	if !ok {
		return nil, cstorage.ErrNotFound
	}
	return s.blocks[height], nil
}

func (s *Store) GetAccount(id flow.AccountID) (*flow.Account, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.accounts[id]
	if !ok {
		return nil, 0, cstorage.ErrNotFound
	}
	return entry.account.Copy(), entry.height, nil
}

func (s *Store) GetTransactionResult(id flow.TransactionID) (*flow.TransactionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, cstorage.ErrNotFound
	}
	r := *result
	return &r, nil
}

func (s *Store) CommitBlock(block *flow.Block, accounts []*flow.Account, results []*flow.TransactionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	height := block.Header.Height
	if height != uint64(len(s.blocks)) {
		return cstorage.ErrDataMismatch
	}

	s.blocks = append(s.blocks, block)
	s.blockIDs[block.ID()] = height
	for _, account := range accounts {
		s.accounts[account.ID] = accountEntry{account: account.Copy(), height: height}
	}
	for _, result := range results {
		r := *result
		s.results[result.TransactionID] = &r
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
