package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github/starchild/orderly-bridge/cmd/deposit"
	"github/starchild/orderly-bridge/cmd/env"
	"github/starchild/orderly-bridge/cmd/holding"
	"github/starchild/orderly-bridge/cmd/orderlykey"
	"github/starchild/orderly-bridge/cmd/register"
	"github/starchild/orderly-bridge/cmd/server"
	"github/starchild/orderly-bridge/cmd/withdraw"
	"github/starchild/orderly-bridge/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "orderly-bridge",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Bridges custodial wallets to the Orderly Network exchange.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// .env is optional; real deployments configure through the environment
	_ = gotenv.Load()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		deposit.New(),
		env.New(),
		holding.New(),
		orderlykey.New(),
		register.New(),
		server.New(),
		withdraw.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
