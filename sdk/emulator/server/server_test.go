package server_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/emulator/server"
	"github.com/onflow/contract-client/utils/unittest"
)

func calculatorAccount(t *testing.T) (*flow.Account, flow.Seed, *assembly.Library) {
	component, err := assembly.NewAccountComponent(
		assembly.NewAssembler(),
		contracts.CalculatorLibraryPath,
		contracts.Calculator(),
		[]flow.Word{flow.EmptyWord},
	)
	require.NoError(t, err)
	code, err := component.AccountCode()
	require.NoError(t, err)

	seed := flow.Seed{7}
	return &flow.Account{
		ID:          flow.DeriveAccountID(seed, flow.RegularAccountImmutableCode, flow.StorageModeNetwork, code.Commitment),
		Type:        flow.RegularAccountImmutableCode,
		StorageMode: flow.StorageModeNetwork,
		Code:        code,
		Auth:        flow.NoAuth(),
		Storage:     component.StorageSlots,
	}, seed, component.Library
}

func calculateTx(t *testing.T, lib *assembly.Library, account flow.AccountID) *flow.Transaction {
	assembler, err := assembly.NewAssembler().WithDynamicLibrary(lib)
	require.NoError(t, err)
	program, err := assembler.AssembleProgram(contracts.CalculateScript())
	require.NoError(t, err)
	script, err := program.Script()
	require.NoError(t, err)

	witness := flow.NewWitnessMap()
	witness.InsertWord(flow.PrepareFeltVec(0), flow.PrepareFeltVec(3))
	witness.InsertWord(flow.PrepareFeltVec(1), flow.PrepareFeltVec(4))
	request, err := flow.NewTransactionRequest().
		SetCustomScript(script).
		SetScriptArg(flow.NewWord(0, 0, 2, 1)).
		ExtendWitnessMap(witness).
		Build()
	require.NoError(t, err)
	return flow.NewTransaction(account, 0, request)
}

// serve runs srv on a random local port until the test ends.
func serve(t *testing.T, srv *server.EmulatorServer) {
	ctx, cancel := context.WithCancel(context.Background())
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, l)
	}()

	t.Cleanup(func() {
		cancel()
		var err error
		unittest.RequireReturnsBefore(t, func() { err = <-done }, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, srv.Stop())
	})
}

func TestBlockTicker(t *testing.T) {
	conf := server.DefaultConfig()
	conf.GRPCAddress = "localhost:0"
	conf.HTTPAddress = ""
	conf.BlockTime = 20 * time.Millisecond

	srv, err := server.NewEmulatorServer(unittest.Logger(), conf)
	require.NoError(t, err)
	serve(t, srv)

	ctx := context.Background()
	backend := srv.Backend()

	account, seed, lib := calculatorAccount(t)
	require.NoError(t, backend.AddAccount(ctx, account, seed))

	id, err := backend.SubmitTransaction(ctx, calculateTx(t, lib, account.ID))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		result, err := backend.GetTransactionResult(ctx, id)
		return err == nil && result.Status == flow.TransactionStatusCommitted
	}, 5*time.Second, 10*time.Millisecond)

	stored, err := backend.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.NewWord(0, 0, 0, 11), stored.Storage[0])
}

func TestHTTPEndpoints(t *testing.T) {
	conf := server.DefaultConfig()
	conf.GRPCAddress = "localhost:0"
	conf.HTTPAddress = "localhost:0"

	srv, err := server.NewEmulatorServer(unittest.Logger(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, srv.Stop()) })

	handler := srv.HTTPHandler()
	require.NotNil(t, handler)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
	})
}

func TestHTTPDisabled(t *testing.T) {
	conf := server.DefaultConfig()
	conf.HTTPAddress = ""

	srv, err := server.NewEmulatorServer(unittest.Logger(), conf)
	require.NoError(t, err)
	defer func() { require.NoError(t, srv.Stop()) }()

	assert.Nil(t, srv.HTTPHandler())
}

func TestPersistentChain(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		conf := server.DefaultConfig()
		conf.HTTPAddress = ""
		conf.DBPath = dir

		srv, err := server.NewEmulatorServer(unittest.Logger(), conf)
		require.NoError(t, err)

		account, seed, _ := calculatorAccount(t)
		require.NoError(t, srv.Backend().AddAccount(context.Background(), account, seed))
		latest, err := srv.Ledger().GetLatestBlock()
		require.NoError(t, err)
		require.NoError(t, srv.Stop())

		reopened, err := server.NewEmulatorServer(unittest.Logger(), conf)
		require.NoError(t, err)
		defer func() { require.NoError(t, reopened.Stop()) }()

		block, err := reopened.Ledger().GetLatestBlock()
		require.NoError(t, err)
		assert.Equal(t, latest.ID(), block.ID())

		_, err = reopened.Ledger().GetAccount(account.ID)
		assert.NoError(t, err)
	})
}
