package emulator

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/contract-client/fvm"
	"github.com/onflow/contract-client/fvm/assembly"
	fvmerrors "github.com/onflow/contract-client/fvm/errors"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/emulator/storage"
	"github.com/onflow/contract-client/sdk/emulator/storage/memstore"
	"github.com/onflow/contract-client/sdk/keys"
	cstorage "github.com/onflow/contract-client/storage"
)

// EmulatedLedger simulates a single-node ledger for development and tests.
//
// Accounts registered with AddAccount are committed in a block right away.
// Submitted transactions are queued in a pending block and executed in
// submission order when the block is committed; with auto-mine enabled every
// submission commits its own block. A transaction that fails execution is
// recorded as reverted and changes nothing.
type EmulatedLedger struct {
	// Committed chain state: blocks, accounts, transaction results
	storage storage.Store

	// Mutex protecting the pending block
	mu sync.RWMutex

	pendingBlock *pendingBlock

	vm     *fvm.VirtualMachine
	vmCtx  fvm.Context
	config Config
	log    zerolog.Logger
}

// Config is a set of configuration options for an emulated ledger.
type Config struct {
	Store   storage.Store
	Logger  zerolog.Logger
	Metrics module.LedgerMetrics
	Network flow.NetworkID
	// AutoMine commits a block for every submitted transaction.
	AutoMine               bool
	ComputationLimit       uint64
	MaxStackDepth          int
	MaxPendingTransactions int
	// Clock returns the timestamp of committed blocks.
	Clock func() time.Time
}

const defaultMaxPendingTransactions = 1000

func defaultConfig() Config {
	return Config{
		Logger:                 zerolog.Nop(),
		Metrics:                metrics.NewNoopCollector(),
		Network:                flow.Localnet,
		AutoMine:               true,
		ComputationLimit:       fvm.DefaultComputationLimit,
		MaxStackDepth:          fvm.DefaultMaxStackDepth,
		MaxPendingTransactions: defaultMaxPendingTransactions,
		Clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Option is a function applying a change to the emulator config.
type Option func(*Config)

// WithStore sets the persistent storage provider.
func WithStore(store storage.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector module.LedgerMetrics) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithNetwork sets the network the ledger reports to clients.
func WithNetwork(network flow.NetworkID) Option {
	return func(c *Config) {
		c.Network = network
	}
}

// WithAutoMine enables or disables committing a block per transaction.
func WithAutoMine(enabled bool) Option {
	return func(c *Config) {
		c.AutoMine = enabled
	}
}

// WithComputationLimit sets the instruction limit of a transaction.
func WithComputationLimit(limit uint64) Option {
	return func(c *Config) {
		c.ComputationLimit = limit
	}
}

// WithMaxPendingTransactions limits the number of queued transactions.
func WithMaxPendingTransactions(n int) Option {
	return func(c *Config) {
		c.MaxPendingTransactions = n
	}
}

// WithClock sets the source of block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// NewEmulatedLedger instantiates a new emulated ledger. If the store already
// holds a chain, the ledger continues on top of it, otherwise the genesis
// block is committed.
func NewEmulatedLedger(opts ...Option) (*EmulatedLedger, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// if no store is specified, use a memstore
	// NOTE: not part of defaultConfig, otherwise the same memstore instance
	// would be shared
	if config.Store == nil {
		config.Store = memstore.New()
	}

	log := config.Logger.With().Str("component", "emulator").Logger()

	latest, err := config.Store.GetLatestBlock()
	if errors.Is(err, cstorage.ErrNotFound) {
		latest = flow.Genesis()
		err = config.Store.CommitBlock(latest, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("could not commit genesis block: %w", err)
		}
		log.Info().Hex("block_id", logID(latest.ID())).Msg("genesis block committed")
	} else if err != nil {
		return nil, &ErrStorage{err}
	}

	return &EmulatedLedger{
		storage:      config.Store,
		pendingBlock: newPendingBlock(latest),
		vm:           fvm.NewVirtualMachine(),
		vmCtx: fvm.NewContext(config.Logger,
			fvm.WithComputationLimit(config.ComputationLimit),
			fvm.WithMaxStackDepth(config.MaxStackDepth),
		),
		config: config,
		log:    log,
	}, nil
}

// Network returns the network id of the ledger.
func (b *EmulatedLedger) Network() flow.NetworkID {
	return b.config.Network
}

// GetLatestBlock gets the latest committed block.
func (b *EmulatedLedger) GetLatestBlock() (*flow.Block, error) {
	block, err := b.storage.GetLatestBlock()
	if err != nil {
		return nil, &ErrStorage{err}
	}
	return block, nil
}

// GetBlockByID gets a block by ID.
func (b *EmulatedLedger) GetBlockByID(id flow.Digest) (*flow.Block, error) {
	block, err := b.storage.GetBlockByID(id)
	if err != nil {
		if errors.Is(err, cstorage.ErrNotFound) {
			return nil, &ErrBlockNotFound{BlockID: &id}
		}
		return nil, &ErrStorage{err}
	}
	return block, nil
}

// GetBlockByHeight gets a block by height.
func (b *EmulatedLedger) GetBlockByHeight(height uint64) (*flow.Block, error) {
	block, err := b.storage.GetBlockByHeight(height)
	if err != nil {
		if errors.Is(err, cstorage.ErrNotFound) {
			return nil, &ErrBlockNotFound{Height: height}
		}
		return nil, &ErrStorage{err}
	}
	return block, nil
}

// GetAccount returns the latest committed state of an account.
func (b *EmulatedLedger) GetAccount(id flow.AccountID) (*flow.Account, error) {
	account, _, err := b.storage.GetAccount(id)
	if err != nil {
		if errors.Is(err, cstorage.ErrNotFound) {
			return nil, &ErrAccountNotFound{ID: id}
		}
		return nil, &ErrStorage{err}
	}
	return account, nil
}

// GetTransactionResult returns the result of a transaction. Transactions in
// the pending block are reported as pending.
func (b *EmulatedLedger) GetTransactionResult(id flow.TransactionID) (*flow.TransactionResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.pendingBlock.ContainsTransaction(id) {
		return &flow.TransactionResult{
			TransactionID: id,
			Status:        flow.TransactionStatusPending,
		}, nil
	}

	result, err := b.storage.GetTransactionResult(id)
	if err != nil {
		if errors.Is(err, cstorage.ErrNotFound) {
			return nil, &ErrTransactionNotFound{ID: id}
		}
		return nil, &ErrStorage{err}
	}
	return result, nil
}

// AddAccount registers a new account and commits it in a block. The seed
// must derive the account id.
func (b *EmulatedLedger) AddAccount(account *flow.Account, seed flow.Seed) (*flow.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.validateAccount(account, seed)
	if err != nil {
		return nil, err
	}

	b.pendingBlock.AddAccount(account.Copy())
	b.config.Metrics.AccountCreated(account.Type.String())

	b.log.Info().
		Str("account_id", account.ID.String()).
		Str("account_type", account.Type.String()).
		Msg("account registered")

	return b.commitBlock()
}

func (b *EmulatedLedger) validateAccount(account *flow.Account, seed flow.Seed) error {
	if _, ok := b.pendingBlock.Account(account.ID); ok {
		return &ErrDuplicateAccount{ID: account.ID}
	}
	_, _, err := b.storage.GetAccount(account.ID)
	if err == nil {
		return &ErrDuplicateAccount{ID: account.ID}
	}
	if !errors.Is(err, cstorage.ErrNotFound) {
		return &ErrStorage{err}
	}

	invalid := func(format string, args ...interface{}) error {
		return &ErrInvalidAccount{ID: account.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if account.Nonce != 0 {
		return invalid("new account must have nonce 0, got %d", account.Nonce)
	}

	component, err := assembly.DecodeAccountComponent(account.Code.Component)
	if err != nil {
		return invalid("could not decode code: %v", err)
	}
	code, err := component.AccountCode()
	if err != nil {
		return invalid("could not encode code: %v", err)
	}
	if code.Commitment != account.Code.Commitment {
		return invalid("code commitment %s does not match its procedures", account.Code.Commitment)
	}

	if flow.DeriveAccountID(seed, account.Type, account.StorageMode, account.Code.Commitment) != account.ID {
		return invalid("id is not derived from the seed")
	}

	switch account.Auth.Scheme {
	case flow.AuthSchemeNone:
		if account.Type.IsUpdatable() {
			return invalid("updatable account must be authenticated")
		}
	case flow.AuthSchemeECDSAK256:
		_, err := keys.DecodePublicKey(keys.KeyTypeECDSA_SECp256k1_SHA3_256, account.Auth.PublicKey)
		if err != nil {
			return invalid("invalid public key: %v", err)
		}
	default:
		return invalid("unknown auth scheme %d", account.Auth.Scheme)
	}

	return nil
}

// SubmitTransaction adds a transaction to the pending block. With auto-mine
// enabled the block is committed and the final result returned, otherwise the
// result is pending until the next CommitBlock.
func (b *EmulatedLedger) SubmitTransaction(tx *flow.Transaction) (*flow.TransactionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	txID := tx.ID()
	err := b.addTransaction(txID, tx)
	if err != nil {
		return nil, err
	}

	b.log.Debug().
		Str("tx_id", txID.String()).
		Str("account_id", tx.AccountID.String()).
		Uint64("nonce", tx.Nonce).
		Msg("transaction submitted")

	if !b.config.AutoMine {
		return &flow.TransactionResult{
			TransactionID: txID,
			Status:        flow.TransactionStatusPending,
		}, nil
	}

	_, err = b.commitBlock()
	if err != nil {
		return nil, err
	}

	result, err := b.storage.GetTransactionResult(txID)
	if err != nil {
		return nil, &ErrStorage{err}
	}
	return result, nil
}

func (b *EmulatedLedger) addTransaction(txID flow.TransactionID, tx *flow.Transaction) error {
	if len(tx.Request.Script.Program) == 0 {
		return &ErrInvalidTransaction{ID: txID, Reason: "missing script"}
	}

	if b.pendingBlock.TransactionCount() >= b.config.MaxPendingTransactions {
		return &ErrPendingBlockFull{Height: b.pendingBlock.Height()}
	}

	if b.pendingBlock.ContainsTransaction(txID) {
		return &ErrDuplicateTransaction{ID: txID}
	}
	_, err := b.storage.GetTransactionResult(txID)
	if err == nil {
		return &ErrDuplicateTransaction{ID: txID}
	} else if !errors.Is(err, cstorage.ErrNotFound) {
		return &ErrStorage{err}
	}

	if _, ok := b.pendingBlock.Account(tx.AccountID); !ok {
		_, _, err = b.storage.GetAccount(tx.AccountID)
		if errors.Is(err, cstorage.ErrNotFound) {
			return &ErrAccountNotFound{ID: tx.AccountID}
		}
		if err != nil {
			return &ErrStorage{err}
		}
	}

	b.pendingBlock.AddTransaction(tx)
	return nil
}

// CommitBlock executes the pending transactions and commits the pending
// block, even if it is empty.
func (b *EmulatedLedger) CommitBlock() (*flow.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.commitBlock()
}

// CommitPendingBlock commits the pending block unless it is empty. It returns
// nil if nothing was committed.
func (b *EmulatedLedger) CommitPendingBlock() (*flow.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pendingBlock.Empty() {
		return nil, nil
	}
	return b.commitBlock()
}

func (b *EmulatedLedger) commitBlock() (*flow.Block, error) {
	pending := b.pendingBlock
	state := newLedgerState(b.storage)

	for _, account := range pending.Accounts() {
		state.SetAccount(account)
	}

	block := &flow.Block{
		Header: flow.Header{
			ParentID:  pending.parentID,
			Height:    pending.Height(),
			Timestamp: b.config.Clock(),
		},
		CreatedAccounts: make([]flow.AccountID, 0, len(pending.Accounts())),
	}
	for _, account := range pending.Accounts() {
		block.CreatedAccounts = append(block.CreatedAccounts, account.ID)
	}

	var results []*flow.TransactionResult
	for {
		tx, ok := pending.NextTransaction()
		if !ok {
			break
		}
		result, err := b.executeTransaction(state, tx, block.Header.Height)
		if err != nil {
			b.resetPendingBlock()
			return nil, err
		}
		block.Transactions = append(block.Transactions, result.TransactionID)
		results = append(results, result)
	}

	updated := state.Updated()
	err := b.storage.CommitBlock(block, updated, results)
	if err != nil {
		// the pending block is consumed, start over on top of the latest
		// committed block
		b.resetPendingBlock()
		return nil, &ErrStorage{err}
	}

	b.pendingBlock = newPendingBlock(block)
	b.config.Metrics.BlockCommitted(block.Header.Height, len(results), len(updated))

	b.log.Debug().
		Uint64("height", block.Header.Height).
		Hex("block_id", logID(block.ID())).
		Int("transactions", len(results)).
		Int("accounts", len(updated)).
		Msg("block committed")

	return block, nil
}

func (b *EmulatedLedger) resetPendingBlock() {
	latest, err := b.storage.GetLatestBlock()
	if err != nil {
		b.log.Error().Err(err).Msg("could not reload latest block")
		return
	}
	b.pendingBlock = newPendingBlock(latest)
}

// executeTransaction runs a transaction against the block state. Execution
// failures produce a reverted result; only fatal VM errors are returned.
func (b *EmulatedLedger) executeTransaction(state *ledgerState, tx *flow.Transaction, height uint64) (*flow.TransactionResult, error) {
	proc := fvm.Transaction(tx)

	start := time.Now()
	err := b.vm.Run(b.vmCtx, proc, state)
	if err != nil {
		return nil, fmt.Errorf("could not execute transaction %s: %w", proc.ID, err)
	}
	b.config.Metrics.TransactionExecuted(time.Since(start), proc.Cycles)

	result := &flow.TransactionResult{
		TransactionID: proc.ID,
		BlockHeight:   height,
		Cycles:        proc.Cycles,
	}

	if proc.Err != nil {
		result.Status = flow.TransactionStatusReverted
		result.ErrorMessage = proc.Err.Error()

		code := "unknown"
		if c, ok := fvmerrors.Code(proc.Err); ok {
			code = strconv.Itoa(int(c))
		}
		b.config.Metrics.TransactionReverted(code)

		b.log.Debug().
			Err(proc.Err).
			Str("tx_id", proc.ID.String()).
			Msg("transaction reverted")
		return result, nil
	}

	result.Status = flow.TransactionStatusCommitted
	state.SetAccount(proc.Account)
	return result, nil
}

// Sync returns the committed chain tip and the state of the requested
// accounts the requester is missing. Unknown account ids are skipped.
func (b *EmulatedLedger) Sync(req *flow.SyncRequest) (*flow.StateUpdate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	latest, err := b.storage.GetLatestBlock()
	if err != nil {
		return nil, &ErrStorage{err}
	}

	update := &flow.StateUpdate{
		BlockHeight: latest.Header.Height,
		BlockID:     latest.ID(),
	}

	seen := make(map[flow.AccountID]struct{})
	collect := func(id flow.AccountID, changedSince func(uint64) bool) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}

		account, height, err := b.storage.GetAccount(id)
		if errors.Is(err, cstorage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return &ErrStorage{err}
		}
		if changedSince(height) {
			update.Accounts = append(update.Accounts, account)
		}
		return nil
	}

	for _, id := range req.UnsyncedAccountIDs {
		err := collect(id, func(uint64) bool { return true })
		if err != nil {
			return nil, err
		}
	}
	for _, id := range req.AccountIDs {
		err := collect(id, func(height uint64) bool { return height > req.FromHeight })
		if err != nil {
			return nil, err
		}
	}

	b.config.Metrics.SyncServed(len(update.Accounts))
	return update, nil
}

// Close closes the underlying store.
func (b *EmulatedLedger) Close() error {
	return b.storage.Close()
}

func logID(d flow.Digest) []byte {
	return d[:]
}
