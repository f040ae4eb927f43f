// Package config holds the configuration of a ledger client and its binding
// to command line flags and environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onflow/contract-client/model/flow"
)

const (
	// All constant strings are used for CLI flag names and corresponding keys for config values.
	networkFlag          = "network"
	endpointFlag         = "endpoint"
	timeoutFlag          = "timeout"
	storeDirFlag         = "store-dir"
	keystoreDirFlag      = "keystore-dir"
	debugModeFlag        = "debug"
	libraryCacheSizeFlag = "library-cache-size"

	// EnvPrefix prefixes every environment variable read by the client,
	// e.g. CALC_ENDPOINT.
	EnvPrefix = "CALC"
)

// DefaultTimeout is the per-call timeout of the transport.
const DefaultTimeout = 10 * time.Second

// DefaultLibraryCacheSize is the number of compiled contract libraries kept
// by a client.
const DefaultLibraryCacheSize = 128

// defaultEndpoints are used when no endpoint is configured.
var defaultEndpoints = map[flow.NetworkID]string{
	flow.Localnet: "localhost:3569",
}

// ClientConfig configures a ledger client.
type ClientConfig struct {
	Network flow.NetworkID
	// Endpoint overrides the network's default endpoint.
	Endpoint string
	Timeout  time.Duration
	// StoreDir is the badger directory of the local view.
	StoreDir string
	// KeystoreDir holds one file per secret key.
	KeystoreDir string
	// DebugMode compiles contracts and scripts with debug information. It
	// only affects diagnostics.
	DebugMode        bool
	LibraryCacheSize int
}

// DefaultClientConfig returns a configuration targeting a local emulator,
// with state kept under the working directory.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Network:          flow.Localnet,
		Timeout:          DefaultTimeout,
		StoreDir:         "store",
		KeystoreDir:      "keystore",
		DebugMode:        true,
		LibraryCacheSize: DefaultLibraryCacheSize,
	}
}

// ResolveEndpoint returns the configured endpoint or the network default.
func (c ClientConfig) ResolveEndpoint() (string, error) {
	if c.Endpoint != "" {
		return c.Endpoint, nil
	}
	endpoint, ok := defaultEndpoints[c.Network]
	if !ok {
		return "", fmt.Errorf("network %s has no default endpoint, set --%s", c.Network, endpointFlag)
	}
	return endpoint, nil
}

// Validate checks the configuration is usable.
func (c ClientConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.StoreDir == "" {
		return fmt.Errorf("store directory is required")
	}
	if c.KeystoreDir == "" {
		return fmt.Errorf("keystore directory is required")
	}
	if filepath.Clean(c.StoreDir) == filepath.Clean(c.KeystoreDir) {
		return fmt.Errorf("store and keystore must not share directory %s", c.StoreDir)
	}
	if c.LibraryCacheSize <= 0 {
		return fmt.Errorf("library cache size must be positive, got %d", c.LibraryCacheSize)
	}
	_, err := c.ResolveEndpoint()
	return err
}

// InitializeClientFlags adds the client flags to flags, defaulting to conf.
func InitializeClientFlags(flags *pflag.FlagSet, conf ClientConfig) {
	flags.String(networkFlag, networkName(conf.Network), "target network: testnet, devnet or localnet")
	flags.String(endpointFlag, conf.Endpoint, "ledger endpoint, overrides the network default")
	flags.Duration(timeoutFlag, conf.Timeout, "timeout of every ledger request")
	flags.String(storeDirFlag, conf.StoreDir, "directory of the local view database")
	flags.String(keystoreDirFlag, conf.KeystoreDir, "directory holding secret keys")
	flags.Bool(debugModeFlag, conf.DebugMode, "compile contracts and scripts with debug information")
	flags.Int(libraryCacheSizeFlag, conf.LibraryCacheSize, "number of compiled contract libraries to cache")
}

// BindFlags binds the client flags and the CALC_* environment to v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// Load reads the client configuration from v.
func Load(v *viper.Viper) (ClientConfig, error) {
	network, err := flow.ParseNetworkID(v.GetString(networkFlag))
	if err != nil {
		return ClientConfig{}, err
	}

	conf := ClientConfig{
		Network:          network,
		Endpoint:         v.GetString(endpointFlag),
		Timeout:          v.GetDuration(timeoutFlag),
		StoreDir:         v.GetString(storeDirFlag),
		KeystoreDir:      v.GetString(keystoreDirFlag),
		DebugMode:        v.GetBool(debugModeFlag),
		LibraryCacheSize: v.GetInt(libraryCacheSizeFlag),
	}
	err = conf.Validate()
	if err != nil {
		return ClientConfig{}, fmt.Errorf("invalid client configuration: %w", err)
	}
	return conf, nil
}

func networkName(n flow.NetworkID) string {
	switch n {
	case flow.Mainnet:
		return "mainnet"
	case flow.Testnet:
		return "testnet"
	case flow.Devnet:
		return "devnet"
	default:
		return "localnet"
	}
}
