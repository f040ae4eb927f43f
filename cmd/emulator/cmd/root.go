package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/emulator/server"
)

const envPrefix = "EMULATOR"

var (
	log zerolog.Logger
	v   = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "emulator",
	Short: "Run an emulated ledger behind the ledger gRPC service",
	RunE:  runE,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaults := server.DefaultConfig()

	flags := rootCmd.Flags()
	flags.String("grpc-address", defaults.GRPCAddress, "address the ledger gRPC service listens on")
	flags.String("http-address", defaults.HTTPAddress, "address serving /metrics and /health, empty disables it")
	flags.Duration("block-time", defaults.BlockTime, "commit a block on every tick, 0 commits a block per transaction")
	flags.String("dbpath", defaults.DBPath, "persist the chain in this directory, empty keeps it in memory")
	flags.String("network", "localnet", "network of the emulated ledger: testnet, devnet or localnet")
	flags.Uint64("computation-limit", defaults.ComputationLimit, "maximum cycles of a transaction, 0 uses the vm default")
	flags.Uint("max-msg-size", defaults.MaxMsgSize, "maximum gRPC message size in bytes")
	flags.StringToInt("rate-limits", nil, "per method requests per second, e.g. SubmitTransaction=10")
	flags.StringToInt("burst-limits", nil, "per method burst, e.g. SubmitTransaction=20")
	flags.Bool("debug", false, "log at debug level")

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(rootCmd.Flags())
	if err != nil {
		log.Fatal().Err(err).Msg("could not bind flags")
	}
}

func loadConfig(cmd *cobra.Command) (*server.Config, error) {
	network, err := flow.ParseNetworkID(v.GetString("network"))
	if err != nil {
		return nil, err
	}

	// viper does not decode pflag string-to-int maps
	rateLimits, err := cmd.Flags().GetStringToInt("rate-limits")
	if err != nil {
		return nil, err
	}
	burstLimits, err := cmd.Flags().GetStringToInt("burst-limits")
	if err != nil {
		return nil, err
	}

	return &server.Config{
		GRPCAddress:      v.GetString("grpc-address"),
		HTTPAddress:      v.GetString("http-address"),
		BlockTime:        v.GetDuration("block-time"),
		DBPath:           v.GetString("dbpath"),
		Network:          network,
		ComputationLimit: v.GetUint64("computation-limit"),
		MaxMsgSize:       v.GetUint("max-msg-size"),
		RateLimits:       rateLimits,
		BurstLimits:      burstLimits,
	}, nil
}

func runE(cmd *cobra.Command, _ []string) error {
	if v.GetBool("debug") {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	conf, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid emulator configuration: %w", err)
	}

	srv, err := server.NewEmulatorServer(log, conf)
	if err != nil {
		return fmt.Errorf("could not create emulator: %w", err)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			log.Warn().Err(err).Msg("could not stop emulator")
		}
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return srv.Start(ctx)
}
