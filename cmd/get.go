package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solfarms/solfarm/client"
	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/names"
)

func fetchEntity(ctx context.Context, c *client.Client, kind, name string) (interface{}, error) {
	switch strings.ToLower(kind) {
	case "token":
		return c.GetToken(ctx, name)
	case "pool":
		return c.GetPool(ctx, name)
	case "farm":
		return c.GetFarm(ctx, name)
	case "vault":
		return c.GetVault(ctx, name)
	case "fund":
		return c.GetFund(ctx, name)
	}
	return nil, common.ValueErrorf("unknown kind %q, expected token, pool, farm, vault or fund", kind)
}

func fetchNames(ctx context.Context, c *client.Client, kind string) ([]string, error) {
	switch strings.ToLower(kind) {
	case "token":
		return c.GetTokenNames(ctx)
	case "pool":
		return c.GetPoolNames(ctx)
	case "farm":
		return c.GetFarmNames(ctx)
	case "vault":
		return c.GetVaultNames(ctx)
	case "fund":
		return c.GetFundNames(ctx)
	}
	return nil, common.ValueErrorf("unknown kind %q, expected token, pool, farm, vault or fund", kind)
}

var getCmd = &cobra.Command{
	Use:   "get KIND NAME",
	Short: "Show one token, pool, farm, vault or fund by name",
	Long: `Resolves the name against the on-chain reference directory and prints
the entity's metadata. Unversioned names resolve to the latest version,
so "get pool RDM.RAY-SRM" finds RDM.RAY-SRM-V4 when that is current.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		entity, err := fetchEntity(ctx, newClient(), args[0], args[1])
		if err != nil {
			abort(err)
		}
		printJSON(entity)
	},
}

var listCmd = &cobra.Command{
	Use:   "list KIND [PATTERN]",
	Short: "List directory entries of one kind, optionally fuzzy-filtered",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		all, err := fetchNames(ctx, newClient(), args[0])
		if err != nil {
			abort(err)
		}
		if len(args) == 2 {
			all = names.Search(args[1], names.FuzzySource(all), 20)
		}
		for _, name := range all {
			fmt.Println(common.InfoColor(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
}
