package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/keys"
	"github.com/onflow/contract-client/storage"
)

// Account is an account registered by the client.
type Account struct {
	account *flow.Account
	network flow.NetworkID
	iface   flow.AddressInterface
}

func newAccount(account *flow.Account, network flow.NetworkID) *Account {
	iface := flow.AddressInterfaceUnspecified
	if account.Type.IsUpdatable() {
		iface = flow.AddressInterfaceBasicWallet
	}
	return &Account{account: account, network: network, iface: iface}
}

// ID returns the bech32 address of the account on its network.
func (a *Account) ID() string {
	return flow.NewAddress(a.account.ID, a.iface).MustBech32(a.network)
}

// AccountID returns the raw account id.
func (a *Account) AccountID() flow.AccountID {
	return a.account.ID
}

func (a *Account) AccountType() flow.AccountType {
	return a.account.Type
}

func (a *Account) StorageMode() flow.StorageMode {
	return a.account.StorageMode
}

func (a *Account) NetworkID() flow.NetworkID {
	return a.network
}

// PublicKey returns the encoded public key of an authenticated account, nil
// for permissionless accounts.
func (a *Account) PublicKey() []byte {
	return a.account.Auth.PublicKey
}

// DeployAccount creates an owner-authenticated wallet account from a fresh
// seed and key, registers it on the ledger, stores the secret key and syncs
// so the account can be read and invoked right away.
func (c *Client) DeployAccount(ctx context.Context) (*Account, error) {
	_, err := c.Sync(ctx)
	if err != nil {
		return nil, err
	}

	seed, err := c.randomSeed()
	if err != nil {
		return nil, err
	}
	keySeed := make([]byte, keys.MinSeedLength)
	_, err = io.ReadFull(c.rng, keySeed)
	if err != nil {
		return nil, fmt.Errorf("could not draw key seed: %w", err)
	}
	sk, err := keys.GeneratePrivateKey(keys.KeyTypeECDSA_SECp256k1_SHA3_256, keySeed)
	if err != nil {
		return nil, fmt.Errorf("could not generate account key: %w", err)
	}

	source := storage.ContractSource{Path: contracts.BasicWalletLibraryPath, Source: contracts.BasicWallet()}
	account, _, err := c.buildAccount(
		seed,
		flow.RegularAccountUpdatableCode,
		flow.StorageModePrivate,
		flow.AuthECDSA(sk.PublicKey().Encode()),
		source,
	)
	if err != nil {
		return nil, err
	}

	err = c.register(ctx, account, seed, source)
	if err != nil {
		return nil, err
	}

	err = c.keystore.AddKey(sk)
	if err != nil {
		return nil, fmt.Errorf("could not store key of account %s: %w", account.ID, err)
	}

	_, err = c.Sync(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("account_id", account.ID.String()).
		Msg("account deployed")

	return newAccount(account, c.conf.Network), nil
}

// buildAccount compiles the account component with one empty value slot and
// derives the account id.
func (c *Client) buildAccount(
	seed flow.Seed,
	accountType flow.AccountType,
	mode flow.StorageMode,
	auth flow.AuthComponent,
	source storage.ContractSource,
) (*flow.Account, *assembly.Library, error) {
	start := time.Now()
	component, err := assembly.NewAccountComponent(c.assembler(), source.Path, source.Source, []flow.Word{flow.EmptyWord})
	if err != nil {
		return nil, nil, &CompileError{Err: err}
	}
	c.metrics.ContractCompiled(time.Since(start))

	code, err := component.AccountCode()
	if err != nil {
		return nil, nil, fmt.Errorf("could not encode account code: %w", err)
	}

	return &flow.Account{
		ID:          flow.DeriveAccountID(seed, accountType, mode, code.Commitment),
		Type:        accountType,
		StorageMode: mode,
		Code:        code,
		Auth:        auth,
		Storage:     component.StorageSlots,
	}, component.Library, nil
}

// register adds the account to the ledger and starts tracking it locally.
func (c *Client) register(ctx context.Context, account *flow.Account, seed flow.Seed, source storage.ContractSource) error {
	tracked, err := c.view.IsTracked(account.ID)
	if err != nil {
		return fmt.Errorf("could not check account %s: %w", account.ID, err)
	}
	if tracked {
		return &DuplicateAccountError{ID: account.ID}
	}

	err = c.api.AddAccount(ctx, account, seed)
	if err != nil {
		return convertRPCError("add account", account.ID, err)
	}

	err = c.view.TrackAccount(account.ID)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return &DuplicateAccountError{ID: account.ID}
	}
	if err != nil {
		return fmt.Errorf("could not track account %s: %w", account.ID, err)
	}

	err = c.view.StoreContractSource(account.ID, source)
	if err != nil {
		return fmt.Errorf("could not store source of account %s: %w", account.ID, err)
	}

	c.metrics.AccountDeployed(account.Type.String())
	return nil
}

// lookupError maps a local view lookup error for an account.
func (c *Client) lookupError(id flow.AccountID, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &AccountNotFoundError{ID: id}
	}
	return fmt.Errorf("could not read account %s from local view: %w", id, err)
}
