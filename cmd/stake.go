package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/solfarms/solfarm/common"
)

var stakeAccountCmd = &cobra.Command{
	Use:   "stake-account FARM WALLET",
	Short: "Locate the account tracking a wallet's stake in one farm",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		wallet, err := solana.PublicKeyFromBase58(args[1])
		if err != nil {
			abort(common.ValueErrorf("invalid wallet address %q: %s", args[1], err))
		}
		ctx, cancel := commandContext()
		defer cancel()
		addr, found, err := newClient().GetStakeAccount(ctx, wallet, args[0])
		if err != nil {
			abort(err)
		}
		if !found {
			fmt.Println(common.AlertColor("no stake account on chain, one has to be created before staking"))
			return
		}
		fmt.Println(common.InfoColor(addr.String()))
	},
}

var stakeBalanceCmd = &cobra.Command{
	Use:   "stake-balance FARM WALLET",
	Short: "Show a wallet's staked LP token amount in one farm",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		wallet, err := solana.PublicKeyFromBase58(args[1])
		if err != nil {
			abort(common.ValueErrorf("invalid wallet address %q: %s", args[1], err))
		}
		ctx, cancel := commandContext()
		defer cancel()
		balance, err := newClient().GetUserStakeBalance(ctx, wallet, args[0])
		if err != nil {
			abort(err)
		}
		fmt.Printf("%s: %f\n", args[0], balance)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance WALLET [TOKEN]",
	Short: "Show a wallet's SOL balance, or its balance of one directory token",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		wallet, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			abort(common.ValueErrorf("invalid wallet address %q: %s", args[0], err))
		}
		ctx, cancel := commandContext()
		defer cancel()
		c := newClient()
		if len(args) == 1 {
			balance, err := c.GetWalletBalance(ctx, wallet)
			if err != nil {
				abort(err)
			}
			fmt.Printf("SOL: %f\n", balance)
			return
		}
		balance, err := c.GetTokenAccountBalance(ctx, wallet, args[1])
		if err != nil {
			abort(err)
		}
		fmt.Printf("%s: %f\n", args[1], balance)
	},
}

func init() {
	rootCmd.AddCommand(stakeAccountCmd)
	rootCmd.AddCommand(stakeBalanceCmd)
	rootCmd.AddCommand(balanceCmd)
}
