// Package cli implements the swapd command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd is the base command when swapd is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "swapd",
	Short: "swapd - escrow-backed swap settlement daemon",
	Long: `swapd runs a standalone settlement ledger for asset swaps. Offers
escrow their native side inside the offer entry itself, so an accepted
trade settles atomically at ledger close. The daemon serves JSON-RPC
and websocket streams over HTTP and a CBOR query service over grpc.`,
	Version: "0.1.0-dev",
}

// Execute runs the command tree. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log warnings and errors only")
}
