package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/contract-client/config"
	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/client"
)

var (
	flagReset bool
	flagX     uint64
	flagY     uint64
	flagA     uint64
	flagB     uint64

	log zerolog.Logger
	v   = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "calculator",
	Short: "Deploy the calculator contract and compute x*a + y*b on the ledger",
	RunE:  runE,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitializeClientFlags(rootCmd.PersistentFlags(), config.DefaultClientConfig())

	rootCmd.Flags().BoolVar(&flagReset, "reset", false, "delete the local view and keystore before running")
	rootCmd.Flags().Uint64Var(&flagX, "x", 1, "operand x")
	rootCmd.Flags().Uint64Var(&flagY, "y", 2, "operand y")
	rootCmd.Flags().Uint64Var(&flagA, "a", 3, "witness value a")
	rootCmd.Flags().Uint64Var(&flagB, "b", 4, "witness value b")

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	err := config.BindFlags(v, rootCmd.PersistentFlags())
	if err != nil {
		log.Fatal().Err(err).Msg("could not bind flags")
	}
}

func runE(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(v)
	if err != nil {
		return err
	}

	if flagReset {
		err = client.ResetLocalState(log, conf.StoreDir, conf.KeystoreDir)
		if err != nil {
			return fmt.Errorf("could not reset local state: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := client.New(conf, client.WithLogger(log))
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close client")
		}
	}()

	return calculate(ctx, c)
}

func calculate(ctx context.Context, c *client.Client) error {
	height, err := c.SyncWithRetry(ctx, client.DefaultBackoff())
	if err != nil {
		return fmt.Errorf("could not sync local view: %w", err)
	}
	log.Info().Uint64("height", height).Msg("local view synced")

	account, err := c.DeployAccount(ctx)
	if err != nil {
		return fmt.Errorf("could not deploy account: %w", err)
	}
	log.Info().Str("account", account.ID()).Msg("account deployed")

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	if err != nil {
		return fmt.Errorf("could not build calculator: %w", err)
	}
	log.Info().Str("contract", contract.ID()).Msg("calculator deployed")

	witness := flow.NewWitnessMap()
	witness.InsertWord(flow.PrepareFeltVec(0), flow.PrepareFeltVec(flagA))
	witness.InsertWord(flow.PrepareFeltVec(1), flow.PrepareFeltVec(flagB))

	txID, err := contract.Calculate(ctx, flow.NewWord(0, 0, flagY, flagX), witness)
	if err != nil {
		return fmt.Errorf("could not calculate: %w", err)
	}

	value, err := contract.GetResult(ctx)
	if err != nil {
		return fmt.Errorf("could not read result: %w", err)
	}

	expected := flow.NewFelt(flagX).Mul(flow.NewFelt(flagA)).Add(flow.NewFelt(flagY).Mul(flow.NewFelt(flagB)))
	if value.Last() != expected {
		return fmt.Errorf("unexpected result %s, expected %s", value.Last(), expected)
	}

	log.Info().
		Str("transaction_id", txID.String()).
		Str("result", value.Last().String()).
		Msg("calculation committed")
	return nil
}
