package pebble

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/module/metrics"
	emustorage "github.com/onflow/contract-client/sdk/emulator/storage"
	"github.com/onflow/contract-client/storage"
	"github.com/onflow/contract-client/storage/pebble/operation"
)

const accountCacheSize = 1000

// LedgerStore persists the committed state of an emulated ledger in pebble.
// Committed account records are cached, which is safe because a record only
// changes through CommitBlock.
type LedgerStore struct {
	db       *pebble.DB
	metrics  module.CacheMetrics
	accounts *lru.Cache
}

var _ emustorage.Store = (*LedgerStore)(nil)

// NewLedgerStore wraps an open pebble database. The store owns db and closes
// it on Close.
func NewLedgerStore(collector module.CacheMetrics, db *pebble.DB) (*LedgerStore, error) {
	accounts, err := lru.New(accountCacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create account cache: %w", err)
	}
	return &LedgerStore{
		db:       db,
		metrics:  collector,
		accounts: accounts,
	}, nil
}

func (s *LedgerStore) GetLatestBlock() (*flow.Block, error) {
	var height uint64
	err := operation.RetrieveLatestHeight(&height)(s.db)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve latest height: %w", err)
	}
	return s.GetBlockByHeight(height)
}

func (s *LedgerStore) GetBlockByHeight(height uint64) (*flow.Block, error) {
	var block flow.Block
	err := operation.RetrieveBlockByHeight(height, &block)(s.db)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve block at height %d: %w", height, err)
	}
	return &block, nil
}

func (s *LedgerStore) GetBlockByID(id flow.Digest) (*flow.Block, error) {
	var height uint64
	err := operation.LookupBlockHeight(id, &height)(s.db)
	if err != nil {
		return nil, fmt.Errorf("could not look up block %s: %w", id, err)
	}
	return s.GetBlockByHeight(height)
}

func (s *LedgerStore) GetAccount(id flow.AccountID) (*flow.Account, uint64, error) {
	if cached, ok := s.accounts.Get(id); ok {
		s.metrics.CacheHit(metrics.ResourceAccount)
		record := cached.(operation.AccountRecord)
		return record.Account.Copy(), record.Height, nil
	}

	var record operation.AccountRecord
	err := operation.RetrieveAccount(id, &record)(s.db)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.CacheNotFound(metrics.ResourceAccount)
		}
		return nil, 0, fmt.Errorf("could not retrieve account %s: %w", id, err)
	}
	s.metrics.CacheMiss(metrics.ResourceAccount)
	s.cacheAccount(record)

	return record.Account.Copy(), record.Height, nil
}

func (s *LedgerStore) GetTransactionResult(id flow.TransactionID) (*flow.TransactionResult, error) {
	var result flow.TransactionResult
	err := operation.RetrieveTransactionResult(id, &result)(s.db)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve transaction result %s: %w", id, err)
	}
	return &result, nil
}

// CommitBlock writes everything in one pebble batch. The block must extend
// the latest stored block.
func (s *LedgerStore) CommitBlock(block *flow.Block, accounts []*flow.Account, results []*flow.TransactionResult) error {
	height := block.Header.Height

	var found bool
	err := operation.HasLatestHeight(&found)(s.db)
	if err != nil {
		return err
	}
	if found {
		var latest uint64
		err = operation.RetrieveLatestHeight(&latest)(s.db)
		if err != nil {
			return err
		}
		if height != latest+1 {
			return fmt.Errorf("block at height %d does not extend latest height %d: %w", height, latest, storage.ErrDataMismatch)
		}
	} else if height != 0 {
		return fmt.Errorf("first block must be at height 0, got %d: %w", height, storage.ErrDataMismatch)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	err = operation.InsertBlock(block)(batch)
	if err != nil {
		return fmt.Errorf("could not insert block: %w", err)
	}
	for _, account := range accounts {
		err = operation.UpsertAccount(account, height)(batch)
		if err != nil {
			return fmt.Errorf("could not insert account %s: %w", account.ID, err)
		}
	}
	for _, result := range results {
		err = operation.InsertTransactionResult(result)(batch)
		if err != nil {
			return fmt.Errorf("could not insert result %s: %w", result.TransactionID, err)
		}
	}
	err = operation.UpdateLatestHeight(height)(batch)
	if err != nil {
		return fmt.Errorf("could not update latest height: %w", err)
	}

	err = batch.Commit(pebble.Sync)
	if err != nil {
		return fmt.Errorf("could not commit block %d: %w", height, err)
	}

	for _, account := range accounts {
		s.cacheAccount(operation.AccountRecord{Account: *account.Copy(), Height: height})
	}
	return nil
}

func (s *LedgerStore) cacheAccount(record operation.AccountRecord) {
	s.accounts.Add(record.Account.ID, record)
	s.metrics.CacheEntries(metrics.ResourceAccount, uint(s.accounts.Len()))
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}
