package emulator_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/emulator"
	"github.com/onflow/contract-client/sdk/keys"
	"github.com/onflow/contract-client/storage/pebble"
	"github.com/onflow/contract-client/utils/unittest"
)

func newLedger(t *testing.T, opts ...emulator.Option) *emulator.EmulatedLedger {
	opts = append([]emulator.Option{emulator.WithLogger(unittest.Logger())}, opts...)
	b, err := emulator.NewEmulatedLedger(opts...)
	require.NoError(t, err)
	return b
}

// calculatorAccount builds a new calculator contract account from seed.
func calculatorAccount(t *testing.T, seed flow.Seed) (*flow.Account, *assembly.Library) {
	component, err := assembly.NewAccountComponent(
		assembly.NewAssembler(assembly.WithDebugMode(true)),
		contracts.CalculatorLibraryPath,
		contracts.Calculator(),
		[]flow.Word{flow.EmptyWord},
	)
	require.NoError(t, err)
	code, err := component.AccountCode()
	require.NoError(t, err)

	return &flow.Account{
		ID:          flow.DeriveAccountID(seed, flow.RegularAccountImmutableCode, flow.StorageModeNetwork, code.Commitment),
		Type:        flow.RegularAccountImmutableCode,
		StorageMode: flow.StorageModeNetwork,
		Code:        code,
		Auth:        flow.NoAuth(),
		Storage:     component.StorageSlots,
	}, component.Library
}

func calculateTx(t *testing.T, lib *assembly.Library, account flow.AccountID, nonce uint64, x, y, a, b uint64) *flow.Transaction {
	assembler, err := assembly.NewAssembler().WithDynamicLibrary(lib)
	require.NoError(t, err)
	program, err := assembler.AssembleProgram(contracts.CalculateScript())
	require.NoError(t, err)
	script, err := program.Script()
	require.NoError(t, err)

	witness := flow.NewWitnessMap()
	witness.InsertWord(flow.PrepareFeltVec(0), flow.PrepareFeltVec(a))
	witness.InsertWord(flow.PrepareFeltVec(1), flow.PrepareFeltVec(b))

	request, err := flow.NewTransactionRequest().
		SetCustomScript(script).
		SetScriptArg(flow.NewWord(0, 0, y, x)).
		ExtendWitnessMap(witness).
		Build()
	require.NoError(t, err)
	return flow.NewTransaction(account, nonce, request)
}

func TestGenesis(t *testing.T) {
	b := newLedger(t)

	block, err := b.GetLatestBlock()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block.Header.Height)
	assert.Equal(t, flow.Genesis().ID(), block.ID())

	byID, err := b.GetBlockByID(block.ID())
	require.NoError(t, err)
	assert.Equal(t, block.ID(), byID.ID())

	_, err = b.GetBlockByHeight(1)
	var notFound *emulator.ErrBlockNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestAddAccount(t *testing.T) {
	t.Run("commits a block", func(t *testing.T) {
		b := newLedger(t)
		account, _ := calculatorAccount(t, flow.Seed{1})

		block, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), block.Header.Height)
		assert.Equal(t, []flow.AccountID{account.ID}, block.CreatedAccounts)

		stored, err := b.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, account, stored)
	})

	t.Run("duplicate", func(t *testing.T) {
		b := newLedger(t)
		account, _ := calculatorAccount(t, flow.Seed{1})

		_, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)

		_, err = b.AddAccount(account, flow.Seed{1})
		var duplicate *emulator.ErrDuplicateAccount
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, account.ID, duplicate.ID)

		latest, err := b.GetLatestBlock()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), latest.Header.Height)
	})

	t.Run("id not derived from seed", func(t *testing.T) {
		b := newLedger(t)
		account, _ := calculatorAccount(t, flow.Seed{1})

		_, err := b.AddAccount(account, flow.Seed{2})
		var invalid *emulator.ErrInvalidAccount
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("tampered code", func(t *testing.T) {
		b := newLedger(t)
		account, _ := calculatorAccount(t, flow.Seed{1})
		account.Code.Component = []byte("garbage")

		_, err := b.AddAccount(account, flow.Seed{1})
		var invalid *emulator.ErrInvalidAccount
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("updatable account without auth", func(t *testing.T) {
		b := newLedger(t)
		account, _ := calculatorAccount(t, flow.Seed{1})
		account.Type = flow.RegularAccountUpdatableCode
		account.ID = flow.DeriveAccountID(flow.Seed{1}, account.Type, account.StorageMode, account.Code.Commitment)

		_, err := b.AddAccount(account, flow.Seed{1})
		var invalid *emulator.ErrInvalidAccount
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestSubmitTransaction(t *testing.T) {
	t.Run("calculator", func(t *testing.T) {
		b := newLedger(t)
		account, lib := calculatorAccount(t, flow.Seed{1})
		_, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)

		tx := calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4)
		result, err := b.SubmitTransaction(tx)
		require.NoError(t, err)
		require.True(t, result.Succeeded(), result.ErrorMessage)
		assert.Equal(t, tx.ID(), result.TransactionID)
		assert.Equal(t, uint64(2), result.BlockHeight)

		stored, err := b.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, flow.NewWord(0, 0, 0, 11), stored.Storage[0])
		assert.Equal(t, uint64(1), stored.Nonce)

		block, err := b.GetLatestBlock()
		require.NoError(t, err)
		assert.Equal(t, []flow.TransactionID{tx.ID()}, block.Transactions)
	})

	t.Run("reverted transaction changes nothing", func(t *testing.T) {
		b := newLedger(t)
		account, lib := calculatorAccount(t, flow.Seed{1})
		_, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)

		// stale nonce
		tx := calculateTx(t, lib, account.ID, 7, 1, 2, 3, 4)
		result, err := b.SubmitTransaction(tx)
		require.NoError(t, err)
		assert.Equal(t, flow.TransactionStatusReverted, result.Status)
		assert.NotEmpty(t, result.ErrorMessage)

		stored, err := b.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, account, stored)

		fetched, err := b.GetTransactionResult(tx.ID())
		require.NoError(t, err)
		assert.Equal(t, flow.TransactionStatusReverted, fetched.Status)
	})

	t.Run("unknown account", func(t *testing.T) {
		b := newLedger(t)
		account, lib := calculatorAccount(t, flow.Seed{1})

		_, err := b.SubmitTransaction(calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4))
		var notFound *emulator.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("duplicate transaction", func(t *testing.T) {
		b := newLedger(t)
		account, lib := calculatorAccount(t, flow.Seed{1})
		_, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)

		tx := calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4)
		_, err = b.SubmitTransaction(tx)
		require.NoError(t, err)

		_, err = b.SubmitTransaction(tx)
		var duplicate *emulator.ErrDuplicateTransaction
		assert.ErrorAs(t, err, &duplicate)
	})

	t.Run("authenticated account", func(t *testing.T) {
		b := newLedger(t)

		sk, err := keys.GeneratePrivateKey(keys.KeyTypeECDSA_SECp256k1_SHA3_256, bytes.Repeat([]byte{7}, keys.MinSeedLength))
		require.NoError(t, err)

		component, err := assembly.NewAccountComponent(
			assembly.NewAssembler(),
			contracts.BasicWalletLibraryPath,
			contracts.BasicWallet(),
			[]flow.Word{flow.EmptyWord},
		)
		require.NoError(t, err)
		code, err := component.AccountCode()
		require.NoError(t, err)

		seed := flow.Seed{9}
		wallet := &flow.Account{
			ID:          flow.DeriveAccountID(seed, flow.RegularAccountUpdatableCode, flow.StorageModePrivate, code.Commitment),
			Type:        flow.RegularAccountUpdatableCode,
			StorageMode: flow.StorageModePrivate,
			Code:        code,
			Auth:        flow.AuthECDSA(sk.PublicKey().Encode()),
			Storage:     component.StorageSlots,
		}
		_, err = b.AddAccount(wallet, seed)
		require.NoError(t, err)

		assembler, err := assembly.NewAssembler().WithDynamicLibrary(component.Library)
		require.NoError(t, err)
		program, err := assembler.AssembleProgram("use.wallets::basic_wallet\nbegin\n    call.basic_wallet::set_value\nend\n")
		require.NoError(t, err)
		script, err := program.Script()
		require.NoError(t, err)
		request, err := flow.NewTransactionRequest().
			SetCustomScript(script).
			SetScriptArg(flow.NewWord(5, 6, 7, 8)).
			Build()
		require.NoError(t, err)

		unsigned := flow.NewTransaction(wallet.ID, 0, request)
		result, err := b.SubmitTransaction(unsigned)
		require.NoError(t, err)
		assert.Equal(t, flow.TransactionStatusReverted, result.Status)

		signed := flow.NewTransaction(wallet.ID, 0, request)
		id := signed.ID()
		signed.Signature, err = sk.Sign(id[:])
		require.NoError(t, err)

		// same id as the unsigned transaction, the signature is not part of it
		_, err = b.SubmitTransaction(signed)
		var duplicate *emulator.ErrDuplicateTransaction
		require.ErrorAs(t, err, &duplicate)

		next := flow.NewTransaction(wallet.ID, 0, request)
		next.Request.ScriptArg = flow.NewWord(5, 6, 7, 9)
		id = next.ID()
		next.Signature, err = sk.Sign(id[:])
		require.NoError(t, err)

		result, err = b.SubmitTransaction(next)
		require.NoError(t, err)
		require.True(t, result.Succeeded(), result.ErrorMessage)

		stored, err := b.GetAccount(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, flow.NewWord(5, 6, 7, 9), stored.Storage[0])
	})
}

func TestPendingBlock(t *testing.T) {
	b := newLedger(t, emulator.WithAutoMine(false), emulator.WithMaxPendingTransactions(2))
	account, lib := calculatorAccount(t, flow.Seed{1})
	_, err := b.AddAccount(account, flow.Seed{1})
	require.NoError(t, err)

	first := calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4)
	second := calculateTx(t, lib, account.ID, 1, 1, 1, 1, 1)

	result, err := b.SubmitTransaction(first)
	require.NoError(t, err)
	assert.Equal(t, flow.TransactionStatusPending, result.Status)
	_, err = b.SubmitTransaction(second)
	require.NoError(t, err)

	_, err = b.SubmitTransaction(calculateTx(t, lib, account.ID, 2, 1, 1, 1, 1))
	var full *emulator.ErrPendingBlockFull
	require.ErrorAs(t, err, &full)

	pending, err := b.GetTransactionResult(first.ID())
	require.NoError(t, err)
	assert.Equal(t, flow.TransactionStatusPending, pending.Status)

	// nothing executed before commit
	stored, err := b.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.EmptyWord, stored.Storage[0])

	block, err := b.CommitBlock()
	require.NoError(t, err)
	assert.Equal(t, []flow.TransactionID{first.ID(), second.ID()}, block.Transactions)

	// transactions executed in submission order, both against the same account
	stored, err = b.GetAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.NewWord(0, 0, 0, 2), stored.Storage[0])
	assert.Equal(t, uint64(2), stored.Nonce)

	committed, err := b.CommitPendingBlock()
	require.NoError(t, err)
	assert.Nil(t, committed)
}

func TestSync(t *testing.T) {
	b := newLedger(t)
	account, lib := calculatorAccount(t, flow.Seed{1})
	other, _ := calculatorAccount(t, flow.Seed{2})

	created, err := b.AddAccount(account, flow.Seed{1})
	require.NoError(t, err)
	_, err = b.AddAccount(other, flow.Seed{2})
	require.NoError(t, err)

	t.Run("unsynced accounts are always returned", func(t *testing.T) {
		update, err := b.Sync(&flow.SyncRequest{
			FromHeight:         10,
			UnsyncedAccountIDs: []flow.AccountID{account.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), update.BlockHeight)
		require.Len(t, update.Accounts, 1)
		assert.Equal(t, account.ID, update.Accounts[0].ID)
	})

	t.Run("only accounts changed after height", func(t *testing.T) {
		update, err := b.Sync(&flow.SyncRequest{
			FromHeight: created.Header.Height,
			AccountIDs: []flow.AccountID{account.ID, other.ID},
		})
		require.NoError(t, err)
		require.Len(t, update.Accounts, 1)
		assert.Equal(t, other.ID, update.Accounts[0].ID)

		_, err = b.SubmitTransaction(calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4))
		require.NoError(t, err)

		update, err = b.Sync(&flow.SyncRequest{
			FromHeight: update.BlockHeight,
			AccountIDs: []flow.AccountID{account.ID, other.ID},
		})
		require.NoError(t, err)
		require.Len(t, update.Accounts, 1)
		assert.Equal(t, flow.NewWord(0, 0, 0, 11), update.Accounts[0].Storage[0])
	})

	t.Run("unknown accounts are skipped", func(t *testing.T) {
		update, err := b.Sync(&flow.SyncRequest{
			UnsyncedAccountIDs: []flow.AccountID{unittest.AccountIDFixture()},
		})
		require.NoError(t, err)
		assert.Empty(t, update.Accounts)
	})
}

func TestBlockTimestamps(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	b := newLedger(t, emulator.WithClock(func() time.Time { return now }))

	block, err := b.CommitBlock()
	require.NoError(t, err)
	assert.Equal(t, now, block.Header.Timestamp)

	genesis, err := b.GetBlockByHeight(0)
	require.NoError(t, err)
	assert.Equal(t, genesis.ID(), block.Header.ParentID)
}

func TestRestartFromStore(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		open := func() *emulator.EmulatedLedger {
			db, err := pebble.OpenDefaultPebbleDB(dir)
			require.NoError(t, err)
			store, err := pebble.NewLedgerStore(metrics.NewNoopCollector(), db)
			require.NoError(t, err)
			return newLedger(t, emulator.WithStore(store))
		}

		b := open()
		account, lib := calculatorAccount(t, flow.Seed{1})
		_, err := b.AddAccount(account, flow.Seed{1})
		require.NoError(t, err)
		tx := calculateTx(t, lib, account.ID, 0, 1, 2, 3, 4)
		_, err = b.SubmitTransaction(tx)
		require.NoError(t, err)
		require.NoError(t, b.Close())

		b = open()
		defer b.Close()

		latest, err := b.GetLatestBlock()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), latest.Header.Height)

		stored, err := b.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, flow.NewWord(0, 0, 0, 11), stored.Storage[0])

		result, err := b.GetTransactionResult(tx.ID())
		require.NoError(t, err)
		assert.Equal(t, flow.TransactionStatusCommitted, result.Status)

		// the chain continues on top of the stored tip
		block, err := b.CommitBlock()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), block.Header.Height)
		assert.Equal(t, latest.ID(), block.Header.ParentID)
	})
}
