package flow

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// NetworkID scopes human-readable addresses to a network. Its value is the
// bech32 human-readable part.
type NetworkID string

const (
	Mainnet  NetworkID = "mm"
	Testnet  NetworkID = "mtst"
	Devnet   NetworkID = "mdev"
	Localnet NetworkID = "mlcl"
)

// ParseNetworkID maps a network name to its id.
func ParseNetworkID(name string) (NetworkID, error) {
	switch name {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	case "devnet":
		return Devnet, nil
	case "localnet", "emulator":
		return Localnet, nil
	default:
		return "", fmt.Errorf("unknown network %q", name)
	}
}

func (n NetworkID) String() string {
	return string(n)
}

// AddressInterface tells a wallet which interface the account exposes.
type AddressInterface uint8

const (
	// AddressInterfaceUnspecified is used for contracts.
	AddressInterfaceUnspecified AddressInterface = iota
	// AddressInterfaceBasicWallet is used for owner-authenticated wallets.
	AddressInterfaceBasicWallet
)

func (i AddressInterface) String() string {
	switch i {
	case AddressInterfaceUnspecified:
		return "unspecified"
	case AddressInterfaceBasicWallet:
		return "basic-wallet"
	default:
		return fmt.Sprintf("unknown-interface(%d)", uint8(i))
	}
}

// Address is an account id together with the interface it is addressed by.
type Address struct {
	ID        AccountID
	Interface AddressInterface
}

// NewAddress returns the address of an account for the given interface.
func NewAddress(id AccountID, iface AddressInterface) Address {
	return Address{ID: id, Interface: iface}
}

// Bech32 renders the address as a bech32 string scoped to the network.
func (a Address) Bech32(network NetworkID) (string, error) {
	payload := make([]byte, 0, 1+AccountIDLength)
	payload = append(payload, byte(a.Interface))
	payload = append(payload, a.ID[:]...)

	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("could not convert address payload: %w", err)
	}
	encoded, err := bech32.Encode(string(network), data)
	if err != nil {
		return "", fmt.Errorf("could not encode address: %w", err)
	}
	return encoded, nil
}

// MustBech32 is Bech32 for callers that know the network id is valid.
func (a Address) MustBech32(network NetworkID) string {
	s, err := a.Bech32(network)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseBech32Address decodes an address string into its network and address.
func ParseBech32Address(s string) (NetworkID, Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return "", Address{}, fmt.Errorf("could not decode address: %w", err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", Address{}, fmt.Errorf("could not convert address payload: %w", err)
	}
	if len(payload) != 1+AccountIDLength {
		return "", Address{}, fmt.Errorf("invalid address payload length %d", len(payload))
	}

	var addr Address
	addr.Interface = AddressInterface(payload[0])
	copy(addr.ID[:], payload[1:])
	return NetworkID(hrp), addr, nil
}
