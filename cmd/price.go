package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price POOL",
	Short: "Show the current price of a pool's second token in units of the first",
	Long: `Prints how much of the pool's second token one unit of the first token
buys right now. Raydium prices fold in open order and profit bookkeeping
balances, Saber prices come from the stable-swap invariant, Orca prices
are the plain vault balance ratio.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		price, err := newClient().GetPoolPrice(ctx, args[0])
		if err != nil {
			abort(err)
		}
		fmt.Printf("%s: %f\n", args[0], price)
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
