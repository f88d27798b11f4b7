// Command forge runs the token issuance service and its operator tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solana-token-forge/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootFlags = struct {
	ConfigFile string
	EnvFile    string
}{}

var rootCmd = &cobra.Command{
	Use:           "forge",
	Short:         "Token issuance with capability revocation and a governance disclosure record",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// v holds configuration shared by every subcommand; flags are bound into it.
var v = viper.New()

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.ConfigFile, "config", "c", "", "YAML config file")
	pf.StringVar(&rootFlags.EnvFile, "env-file", ".env", "KEY=VALUE file loaded into the environment")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", config.LogFormatConsole, "Log format (console or json)")
	pf.String("rpc", "", "Solana RPC endpoint (overrides solana.rpc_endpoint)")
	pf.String("ws", "", "Solana WebSocket endpoint (overrides solana.ws_endpoint)")

	bind("log.level", "log-level")
	bind("log.format", "log-format")
	bind("solana.rpc_endpoint", "rpc")
	bind("solana.ws_endpoint", "ws")

	rootCmd.AddCommand(serveCmd, quoteCmd, deriveCmd, watchCmd, securityCmd, migrateCmd)
}

func bind(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// setup loads configuration and builds the root logger.
func setup() (*config.Config, zerolog.Logger, error) {
	config.LoadEnvFile(rootFlags.EnvFile)
	cfg, err := config.Load(v, rootFlags.ConfigFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
