package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/registry"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Show the program id directory and the state of every reference directory",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		c := newClient()

		programs, err := c.GetProgramIDs(ctx)
		if err != nil {
			abort(err)
		}
		names := make([]string, 0, len(programs))
		for name := range programs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", common.NameWithColor(name), programs[name])
		}

		for _, storage := range []string{
			registry.StorageToken, registry.StoragePool, registry.StorageFarm,
			registry.StorageVault, registry.StorageFund,
		} {
			ok, err := c.IsRefdbInitialized(ctx, storage)
			if err != nil {
				abort(err)
			}
			state := common.AlertColor("uninitialized")
			if ok {
				state = common.InfoColor("initialized")
			}
			fmt.Printf("%s directory: %s\n", storage, state)
		}
	},
}

var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Drop all cached directory data and reload it from chain",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		c := newClient()
		c.ResetCache()
		if _, err := c.GetTokenNames(ctx); err != nil {
			abort(err)
		}
		fmt.Println(common.InfoColor("caches rebuilt"))
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(resetCacheCmd)
}
