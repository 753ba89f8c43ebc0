package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solfarms/solfarm/config"
	"github.com/solfarms/solfarm/networks"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "solfarm",
	Short: "Query and operate the solfarm on-chain metadata directories",
	Long: `Solfarm is a command line tool for the solfarm yield aggregation programs.

It reads the on-chain reference directories to resolve tokens, pools,
farms, vaults and funds by name, computes pool prices across Raydium,
Saber and Orca, and locates user stake accounts.

By default it talks to mainnet-beta through the public RPC endpoint of
the selected cluster; pass --rpc to use your own node.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		networks.SetNetwork(config.Network)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "mainnet",
		"solana cluster. Valid values: \"mainnet\", \"devnet\", \"testnet\", \"localnet\".")
	rootCmd.PersistentFlags().StringVarP(&config.RPCEndpoint, "rpc", "r", "",
		"RPC endpoint to use instead of the cluster default.")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false,
		"Log RPC traffic and cache activity.")
	rootCmd.PersistentFlags().StringVarP(&config.JSONOutputFile, "output", "o", "",
		"Write JSON results to this file instead of stdout.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
