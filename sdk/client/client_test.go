package client_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/access"
	"github.com/onflow/contract-client/access/mocks"
	"github.com/onflow/contract-client/config"
	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/client"
	"github.com/onflow/contract-client/sdk/emulator"
	"github.com/onflow/contract-client/sdk/keys"
	"github.com/onflow/contract-client/storage/badger"
	"github.com/onflow/contract-client/utils/unittest"
)

// newLedger returns an in-process emulated ledger and its access API.
func newLedger(t testing.TB, opts ...emulator.Option) (*emulator.EmulatedLedger, access.API) {
	ledger, err := emulator.NewEmulatedLedger(append([]emulator.Option{emulator.WithLogger(unittest.Logger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, ledger.Close()) })
	return ledger, emulator.NewBackend(unittest.Logger(), ledger)
}

// newClient returns a client on api with its own local view and keystore.
func newClient(t testing.TB, api access.API, opts ...client.Option) (*client.Client, *keys.FilesystemKeyStore) {
	c, ks, closeClient := openClient(t, api, opts...)
	t.Cleanup(closeClient)
	return c, ks
}

// openClient is newClient for callers releasing the client themselves.
func openClient(t testing.TB, api access.API, opts ...client.Option) (*client.Client, *keys.FilesystemKeyStore, func()) {
	dir := unittest.TempDir(t)

	conf := config.DefaultClientConfig()
	conf.StoreDir = filepath.Join(dir, "store")
	conf.KeystoreDir = filepath.Join(dir, "keystore")

	db := unittest.BadgerDB(t, conf.StoreDir)
	ks, err := keys.NewFilesystemKeyStore(conf.KeystoreDir)
	require.NoError(t, err)

	c, err := client.New(conf, append([]client.Option{
		client.WithAPI(api),
		client.WithLogger(unittest.Logger()),
		client.WithLocalView(badger.NewLocalView(metrics.NewNoopCollector(), db)),
		client.WithKeyStore(ks),
	}, opts...)...)
	require.NoError(t, err)

	return c, ks, func() {
		require.NoError(t, c.Close())
		require.NoError(t, db.Close())
		require.NoError(t, os.RemoveAll(dir))
	}
}

// calculatorInputs returns the operand stack [0, 0, y, x] and the witness
// entries [0,0,0,0] -> [a,0,0,0] and [1,0,0,0] -> [b,0,0,0].
func calculatorInputs(x, y, a, b uint64) (flow.Word, flow.WitnessMap) {
	witness := flow.NewWitnessMap()
	witness.InsertWord(flow.PrepareFeltVec(0), flow.PrepareFeltVec(a))
	witness.InsertWord(flow.PrepareFeltVec(1), flow.PrepareFeltVec(b))
	return flow.NewWord(0, 0, y, x), witness
}

// expectContract expects a contract registration on api followed by its
// first sync, which is answered at height 1 with the registered account. It
// returns a copy of the registered account once BuildContract returned.
func expectContract(t *testing.T, api *mocks.MockAPI) func() *flow.Account {
	var registered *flow.Account
	api.EXPECT().AddAccount(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, account *flow.Account, _ flow.Seed) error {
			registered = account.Copy()
			return nil
		})
	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *flow.SyncRequest) (*flow.StateUpdate, error) {
			require.Equal(t, []flow.AccountID{registered.ID}, req.UnsyncedAccountIDs)
			return &flow.StateUpdate{BlockHeight: 1, Accounts: []*flow.Account{registered.Copy()}}, nil
		})
	return func() *flow.Account {
		return registered.Copy()
	}
}

func TestCalculate(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	_, err := c.DeployAccount(ctx)
	require.NoError(t, err)

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)
	assert.Equal(t, flow.RegularAccountImmutableCode, contract.AccountType())
	assert.Equal(t, flow.StorageModeNetwork, contract.StorageMode())
	assert.Nil(t, contract.PublicKey())

	t.Run("slot starts empty", func(t *testing.T) {
		value, err := contract.GetResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, flow.EmptyWord, value)
	})

	t.Run("x*a + y*b", func(t *testing.T) {
		operands, witness := calculatorInputs(1, 2, 3, 4)
		txID, err := contract.Calculate(ctx, operands, witness)
		require.NoError(t, err)
		assert.NotEqual(t, flow.TransactionID{}, txID)

		value, err := contract.GetResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, flow.NewFelt(11), value.Last())
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		first, err := c.ReadSlot(ctx, contract.AccountID(), 0)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			value, err := c.ReadSlot(ctx, contract.AccountID(), 0)
			require.NoError(t, err)
			assert.Equal(t, first, value)
		}
	})

	t.Run("nonce advances", func(t *testing.T) {
		account, err := c.Account(contract.AccountID())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), account.Nonce)

		operands, witness := calculatorInputs(5, 6, 7, 8)
		_, err = contract.Calculate(ctx, operands, witness)
		require.NoError(t, err)

		value, err := contract.GetResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, flow.NewFelt(5*7+6*8), value.Last())
	})

	t.Run("slot out of range", func(t *testing.T) {
		_, err := contract.ReadSlot(ctx, 1)
		assert.True(t, client.IsSlotIndexError(err))
	})
}

func TestWitnessLastWriteWins(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	operands, witness := calculatorInputs(1, 2, 3, 4)
	witness.InsertWord(flow.PrepareFeltVec(0), flow.PrepareFeltVec(10))

	_, err = contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(1*10+2*4), value.Last())
}

func TestReadBeforeSync(t *testing.T) {
	_, api := newLedger(t)
	owner, _ := newClient(t, api)
	follower, _ := newClient(t, api)
	ctx := context.Background()

	deployed, err := owner.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	contract, err := follower.TrackContract(deployed.AccountID(), contracts.Calculator())
	require.NoError(t, err)
	assert.Equal(t, deployed.ID(), contract.ID())

	_, err = contract.GetResult(ctx)
	assert.True(t, client.IsAccountNotFoundError(err), "unexpected error: %v", err)

	_, err = follower.Sync(ctx)
	require.NoError(t, err)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.EmptyWord, value)

	t.Run("stale until synced", func(t *testing.T) {
		operands, witness := calculatorInputs(1, 2, 3, 4)
		_, err := deployed.Calculate(ctx, operands, witness)
		require.NoError(t, err)

		value, err := contract.GetResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, flow.EmptyWord, value)

		_, err = follower.Sync(ctx)
		require.NoError(t, err)

		value, err = contract.GetResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, flow.NewFelt(11), value.Last())
	})

	t.Run("tracking twice", func(t *testing.T) {
		_, err := follower.TrackContract(deployed.AccountID(), contracts.Calculator())
		assert.True(t, client.IsDuplicateAccountError(err))
	})
}

func TestInvokeUnknownContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	// no ledger call is expected
	api := mocks.NewMockAPI(ctrl)
	c, _ := newClient(t, api)
	ctx := context.Background()

	id := unittest.AccountIDFixture()
	operands, witness := calculatorInputs(1, 2, 3, 4)

	_, err := c.Invoke(ctx, id, contracts.CalculateScript(), operands, witness)
	assert.True(t, client.IsAccountNotFoundError(err), "unexpected error: %v", err)

	_, err = c.ReadSlot(ctx, id, 0)
	assert.True(t, client.IsAccountNotFoundError(err))
}

func TestInvokeContractUnknownToLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	c, _ := newClient(t, api)
	ctx := context.Background()

	expectContract(t, api)
	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	api.EXPECT().SubmitTransaction(gomock.Any(), gomock.Any()).
		Return(flow.TransactionID{}, status.Error(codes.NotFound, "account not found"))

	operands, witness := calculatorInputs(1, 2, 3, 4)
	_, err = contract.Calculate(ctx, operands, witness)
	assert.True(t, client.IsAccountNotFoundError(err), "unexpected error: %v", err)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.EmptyWord, value)
}

func TestDeployAccount(t *testing.T) {
	_, api := newLedger(t)
	c, ks := newClient(t, api)
	ctx := context.Background()

	seen := make(map[flow.AccountID]struct{})
	for i := 0; i < 10; i++ {
		account, err := c.DeployAccount(ctx)
		require.NoError(t, err)

		assert.Equal(t, flow.RegularAccountUpdatableCode, account.AccountType())
		assert.Equal(t, flow.StorageModePrivate, account.StorageMode())
		assert.Equal(t, flow.Localnet, account.NetworkID())

		_, dup := seen[account.AccountID()]
		require.False(t, dup, "duplicate account id %s", account.AccountID())
		seen[account.AccountID()] = struct{}{}

		network, address, err := flow.ParseBech32Address(account.ID())
		require.NoError(t, err)
		assert.Equal(t, flow.Localnet, network)
		assert.Equal(t, flow.NewAddress(account.AccountID(), flow.AddressInterfaceBasicWallet), address)

		pk, err := keys.DecodePublicKey(keys.KeyTypeECDSA_SECp256k1_SHA3_256, account.PublicKey())
		require.NoError(t, err)
		sk, err := ks.GetKey(pk)
		require.NoError(t, err)
		assert.True(t, sk.PublicKey().Equals(pk))

		value, err := c.ReadSlot(ctx, account.AccountID(), 0)
		require.NoError(t, err, "account must be readable without a manual sync")
		assert.Equal(t, flow.EmptyWord, value)
	}
}

func TestAuthenticatedAccount(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	account, err := c.DeployAccount(ctx)
	require.NoError(t, err)

	script := `
use.wallets::basic_wallet

begin
    call.basic_wallet::set_value
end
`
	value := flow.NewWord(1, 2, 3, 4)
	_, err = c.Invoke(ctx, account.AccountID(), script, value, flow.NewWitnessMap())
	require.NoError(t, err)

	stored, err := c.ReadSlot(ctx, account.AccountID(), 0)
	require.NoError(t, err)
	assert.Equal(t, value, stored)
}

// constReader fills every read with the same byte.
type constReader byte

func (r constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

func TestDuplicateAccount(t *testing.T) {
	_, api := newLedger(t)
	ctx := context.Background()

	t.Run("known locally", func(t *testing.T) {
		c, _ := newClient(t, api, client.WithRandom(constReader(1)))

		_, err := c.DeployAccount(ctx)
		require.NoError(t, err)

		_, err = c.DeployAccount(ctx)
		assert.True(t, client.IsDuplicateAccountError(err), "unexpected error: %v", err)
	})

	t.Run("known to the ledger", func(t *testing.T) {
		first, _ := newClient(t, api, client.WithRandom(constReader(2)))
		second, _ := newClient(t, api, client.WithRandom(constReader(2)))

		_, err := first.BuildContract(ctx, contracts.Calculator())
		require.NoError(t, err)

		_, err = second.BuildContract(ctx, contracts.Calculator())
		assert.True(t, client.IsDuplicateAccountError(err), "unexpected error: %v", err)
	})
}

func TestCompileErrors(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	_, err := c.BuildContract(ctx, "export.broken\n    frobnicate\nend\n")
	assert.True(t, client.IsCompileError(err), "unexpected error: %v", err)
	assert.False(t, client.IsRetryable(err))

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	operands, witness := calculatorInputs(1, 2, 3, 4)
	_, err = contract.Invoke(ctx, "use.external_contract::calculator\nbegin\n    call.calculator::missing\nend\n", operands, witness)
	assert.True(t, client.IsCompileError(err), "unexpected error: %v", err)

	_, err = contract.Invoke(ctx, "use.other::library\nbegin\nend\n", operands, witness)
	assert.True(t, client.IsCompileError(err), "unexpected error: %v", err)
}

func TestRevertedTransaction(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	script := "use.external_contract::calculator\nbegin\n    push.0\n    assert\nend\n"
	txID, err := contract.Invoke(ctx, script, flow.EmptyWord, flow.NewWitnessMap())
	require.Error(t, err)
	assert.True(t, client.IsExecutionError(err), "unexpected error: %v", err)
	assert.NotEqual(t, flow.TransactionID{}, txID)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.EmptyWord, value)

	// the reverted transaction consumed no nonce
	operands, witness := calculatorInputs(1, 2, 3, 4)
	_, err = contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)
}

func TestAwaitTransaction(t *testing.T) {
	ledger, api := newLedger(t, emulator.WithAutoMine(false))
	c, _ := newClient(t, api)
	ctx := context.Background()

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	operands, witness := calculatorInputs(1, 2, 3, 4)
	txID, err := contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)

	// submitted but not committed: the view still holds the old value
	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.EmptyWord, value)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = ledger.CommitBlock()
	}()

	result, err := c.AwaitTransaction(ctx, txID, client.DefaultBackoff())
	require.NoError(t, err)
	assert.Equal(t, flow.TransactionStatusCommitted, result.Status)

	value, err = contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(11), value.Last())
}

func TestRegistry(t *testing.T) {
	_, api := newLedger(t)
	c, _ := newClient(t, api)
	ctx := context.Background()

	registry := client.NewRegistry()
	h := registry.Register(c)

	first, err := registry.BuildContract(ctx, h, contracts.Calculator())
	require.NoError(t, err)
	second, err := registry.BuildContract(ctx, h, contracts.Calculator())
	require.NoError(t, err)
	require.NotEqual(t, first.AccountID(), second.AccountID())

	var wg sync.WaitGroup
	errs := make(chan error, 2*5)
	run := func(contract *client.Contract, x uint64) {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			operands, witness := calculatorInputs(x, 1, 1, 1)
			_, err := contract.Calculate(ctx, operands, witness)
			errs <- err
		}
	}
	wg.Add(2)
	go run(first, 10)
	go run(second, 20)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	value, err := first.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(11), value.Last())
	value, err = second.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(21), value.Last())

	released, err := registry.Release(h)
	require.NoError(t, err)
	assert.Same(t, c, released)

	_, err = first.GetResult(ctx)
	assert.ErrorIs(t, err, client.ErrUnknownHandle)
	assert.ErrorIs(t, registry.Do(h, func(*client.Client) error { return nil }), client.ErrUnknownHandle)
	assert.NoError(t, registry.Close())
}

func TestFailedSyncKeepsView(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	c, _ := newClient(t, api)
	ctx := context.Background()

	registered := expectContract(t, api)
	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	updated := registered()
	updated.Nonce = 1
	updated.Storage = []flow.Word{flow.NewWord(0, 0, 0, 11)}
	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).
		Return(&flow.StateUpdate{BlockHeight: 2, Accounts: []*flow.Account{updated}}, nil)

	height, err := c.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), height)

	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).
		Return(nil, status.Error(codes.Unavailable, "ledger unavailable"))

	_, err = c.Sync(ctx)
	assert.True(t, client.IsTransportError(err), "unexpected error: %v", err)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(11), value.Last())

	height, err = c.SyncHeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), height)
}

func TestInvokeSyncFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	c, _ := newClient(t, api)
	ctx := context.Background()

	expectContract(t, api)
	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	var submitted flow.TransactionID
	api.EXPECT().SubmitTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *flow.Transaction) (flow.TransactionID, error) {
			submitted = tx.ID()
			return submitted, nil
		})
	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).
		Return(nil, status.Error(codes.Unavailable, "ledger unavailable"))

	operands, witness := calculatorInputs(1, 2, 3, 4)
	txID, err := contract.Calculate(ctx, operands, witness)
	assert.True(t, client.IsTransportError(err), "unexpected error: %v", err)
	assert.Equal(t, submitted, txID)

	height, err := c.SyncHeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)
}

func TestRejectedTransactionResyncs(t *testing.T) {
	_, api := newLedger(t)
	owner, _ := newClient(t, api)
	other, _ := newClient(t, api)
	ctx := context.Background()

	deployed, err := owner.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)
	contract, err := other.TrackContract(deployed.AccountID(), contracts.Calculator())
	require.NoError(t, err)
	_, err = other.Sync(ctx)
	require.NoError(t, err)

	// the other client takes nonce 0 with the same call the owner is about
	// to make
	operands, witness := calculatorInputs(1, 2, 3, 4)
	_, err = contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)

	_, err = deployed.Calculate(ctx, operands, witness)
	assert.True(t, client.IsExecutionError(err), "unexpected error: %v", err)

	account, err := owner.Account(deployed.AccountID())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), account.Nonce)

	_, err = deployed.Calculate(ctx, operands, witness)
	require.NoError(t, err)

	value, err := deployed.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(11), value.Last())
}
