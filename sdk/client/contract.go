package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/storage"
)

// contractRunner invokes contracts and reads their storage. Contracts built
// through a Registry run through their handle instead of the client.
type contractRunner interface {
	Invoke(ctx context.Context, contractID flow.AccountID, script string, operands flow.Word, witness flow.WitnessMap) (flow.TransactionID, error)
	ReadSlot(ctx context.Context, id flow.AccountID, index int) (flow.Word, error)
}

// Contract is an immutable, permissionless account deployed from assembly
// source.
type Contract struct {
	*Account
	// LibraryPath is the path scripts import the contract under.
	LibraryPath string

	runner contractRunner
}

// Invoke runs script against the contract. See Client.Invoke.
func (c *Contract) Invoke(ctx context.Context, script string, operands flow.Word, witness flow.WitnessMap) (flow.TransactionID, error) {
	return c.runner.Invoke(ctx, c.AccountID(), script, operands, witness)
}

// ReadSlot reads a storage slot of the contract from the local view.
func (c *Contract) ReadSlot(ctx context.Context, index int) (flow.Word, error) {
	return c.runner.ReadSlot(ctx, c.AccountID(), index)
}

// Calculate runs the calculator script with the operand stack [0, 0, y, x]
// and the witness entries [0,0,0,0] -> a and [1,0,0,0] -> b.
func (c *Contract) Calculate(ctx context.Context, operands flow.Word, witness flow.WitnessMap) (flow.TransactionID, error) {
	return c.Invoke(ctx, contracts.CalculateScript(), operands, witness)
}

// GetResult returns the calculator's value slot. Its last element holds the
// result of the last calculation.
func (c *Contract) GetResult(ctx context.Context) (flow.Word, error) {
	return c.ReadSlot(ctx, 0)
}

type contractOptions struct {
	libraryPath string
}

// ContractOption configures BuildContract.
type ContractOption func(*contractOptions)

// WithLibraryPath sets the library path the contract is compiled under.
func WithLibraryPath(path string) ContractOption {
	return func(o *contractOptions) {
		o.libraryPath = path
	}
}

// BuildContract compiles source into a contract with one value slot set to
// the empty word, registers it on the ledger and syncs so the contract can
// be read right away.
func (c *Client) BuildContract(ctx context.Context, source string, opts ...ContractOption) (*Contract, error) {
	return c.buildContract(ctx, c, source, opts...)
}

func (c *Client) buildContract(ctx context.Context, runner contractRunner, source string, opts ...ContractOption) (*Contract, error) {
	o := contractOptions{libraryPath: contracts.CalculatorLibraryPath}
	for _, opt := range opts {
		opt(&o)
	}

	seed, err := c.randomSeed()
	if err != nil {
		return nil, err
	}

	contractSource := storage.ContractSource{Path: o.libraryPath, Source: source}
	account, lib, err := c.buildAccount(
		seed,
		flow.RegularAccountImmutableCode,
		flow.StorageModeNetwork,
		flow.NoAuth(),
		contractSource,
	)
	if err != nil {
		return nil, err
	}

	err = c.register(ctx, account, seed, contractSource)
	if err != nil {
		return nil, err
	}
	c.libraries.insert(account.ID, lib)

	_, err = c.Sync(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("contract_id", account.ID.String()).
		Str("library_path", o.libraryPath).
		Msg("contract deployed")

	return &Contract{
		Account:     newAccount(account, c.conf.Network),
		LibraryPath: o.libraryPath,
		runner:      runner,
	}, nil
}

// TrackContract follows a contract deployed by someone else. source must be
// the source the contract was built from. Its storage becomes readable after
// the next Sync.
func (c *Client) TrackContract(id flow.AccountID, source string, opts ...ContractOption) (*Contract, error) {
	o := contractOptions{libraryPath: contracts.CalculatorLibraryPath}
	for _, opt := range opts {
		opt(&o)
	}
	if id.AccountType().IsUpdatable() {
		return nil, fmt.Errorf("account %s is not a contract", id)
	}

	err := c.view.TrackAccount(id)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, &DuplicateAccountError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("could not track contract %s: %w", id, err)
	}
	err = c.view.StoreContractSource(id, storage.ContractSource{Path: o.libraryPath, Source: source})
	if err != nil {
		return nil, fmt.Errorf("could not store source of contract %s: %w", id, err)
	}
	c.InvalidateLibrary(id)

	account := &flow.Account{
		ID:          id,
		Type:        id.AccountType(),
		StorageMode: id.StorageMode(),
		Auth:        flow.NoAuth(),
	}
	return &Contract{
		Account:     newAccount(account, c.conf.Network),
		LibraryPath: o.libraryPath,
		runner:      c,
	}, nil
}

func (c *Client) compileLibrary(path string, source string) (*assembly.Library, error) {
	start := time.Now()
	lib, err := c.assembler().AssembleLibrary(path, source)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	c.metrics.ContractCompiled(time.Since(start))
	return lib, nil
}
