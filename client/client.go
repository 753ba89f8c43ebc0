// Package client implements the off-chain client for the farms
// on-chain programs: name resolution against the reference directory,
// entity caching, protocol-specific pricing and staking helpers, and a
// retrying transaction submission engine.
package client

import (
	"context"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solfarms/solfarm/ledger"
	"github.com/solfarms/solfarm/names"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// Client talks to the farms deployment on one cluster. It caches the
// reference directories and the entities they point at, invalidating
// whenever a directory revision moves.
//
// Client is not safe for concurrent use. Callers that want parallelism
// create one Client per goroutine; caches are cheap to rebuild.
type Client struct {
	ledger   ledger.Client
	logger   *zap.SugaredLogger
	registry *registry.Registry

	tokens entityCache[*types.Token]
	pools  entityCache[*types.Pool]
	farms  entityCache[*types.Farm]
	vaults entityCache[*types.Vault]
	funds  entityCache[*types.Fund]

	// stakeAccounts[protocol][wallet][nativeKey] -> stake account
	stakeAccounts map[types.Protocol]map[string]map[string]solana.PublicKey

	now   func() time.Time
	sleep func(time.Duration)
}

// New builds a client over the given ledger connection against the
// default deployment. A nil logger disables logging.
func New(lg ledger.Client, logger *zap.SugaredLogger) *Client {
	return NewWithRegistry(lg, logger, registry.Default())
}

// NewWithRegistry builds a client against an explicit deployment.
func NewWithRegistry(lg ledger.Client, logger *zap.SugaredLogger, reg *registry.Registry) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		ledger:        lg,
		logger:        logger,
		registry:      reg,
		tokens:        newEntityCache(reg, registry.StorageToken, types.DecodeToken),
		pools:         newEntityCache(reg, registry.StoragePool, types.DecodePool),
		farms:         newEntityCache(reg, registry.StorageFarm, types.DecodeFarm),
		vaults:        newEntityCache(reg, registry.StorageVault, types.DecodeVault),
		funds:         newEntityCache(reg, registry.StorageFund, types.DecodeFund),
		stakeAccounts: make(map[types.Protocol]map[string]map[string]solana.PublicKey),
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// ResetCache drops everything cached; the next call reloads from chain.
func (c *Client) ResetCache() {
	c.tokens.reset()
	c.pools.reset()
	c.farms.reset()
	c.vaults.reset()
	c.funds.reset()
	c.stakeAccounts = make(map[types.Protocol]map[string]map[string]solana.PublicKey)
}

func (c *Client) GetToken(ctx context.Context, name string) (*types.Token, error) {
	return c.tokens.get(ctx, c.ledger, name)
}

func (c *Client) GetPool(ctx context.Context, name string) (*types.Pool, error) {
	return c.pools.get(ctx, c.ledger, name)
}

func (c *Client) GetFarm(ctx context.Context, name string) (*types.Farm, error) {
	return c.farms.get(ctx, c.ledger, name)
}

func (c *Client) GetVault(ctx context.Context, name string) (*types.Vault, error) {
	return c.vaults.get(ctx, c.ledger, name)
}

func (c *Client) GetFund(ctx context.Context, name string) (*types.Fund, error) {
	return c.funds.get(ctx, c.ledger, name)
}

func (c *Client) GetTokenRef(ctx context.Context, name string) (solana.PublicKey, error) {
	return c.tokens.ref(ctx, c.ledger, name)
}

func (c *Client) GetPoolRef(ctx context.Context, name string) (solana.PublicKey, error) {
	return c.pools.ref(ctx, c.ledger, name)
}

func (c *Client) GetFarmRef(ctx context.Context, name string) (solana.PublicKey, error) {
	return c.farms.ref(ctx, c.ledger, name)
}

func (c *Client) GetVaultRef(ctx context.Context, name string) (solana.PublicKey, error) {
	return c.vaults.ref(ctx, c.ledger, name)
}

func (c *Client) GetFundRef(ctx context.Context, name string) (solana.PublicKey, error) {
	return c.funds.ref(ctx, c.ledger, name)
}

func (c *Client) GetTokens(ctx context.Context) (map[string]*types.Token, error) {
	return c.tokens.all(ctx, c.ledger)
}

func (c *Client) GetPools(ctx context.Context) (map[string]*types.Pool, error) {
	return c.pools.all(ctx, c.ledger)
}

func (c *Client) GetFarms(ctx context.Context) (map[string]*types.Farm, error) {
	return c.farms.all(ctx, c.ledger)
}

func (c *Client) GetVaults(ctx context.Context) (map[string]*types.Vault, error) {
	return c.vaults.all(ctx, c.ledger)
}

func (c *Client) GetFunds(ctx context.Context) (map[string]*types.Fund, error) {
	return c.funds.all(ctx, c.ledger)
}

func (c *Client) GetTokenNames(ctx context.Context) ([]string, error) {
	return c.tokens.listNames(ctx, c.ledger)
}

func (c *Client) GetPoolNames(ctx context.Context) ([]string, error) {
	return c.pools.listNames(ctx, c.ledger)
}

func (c *Client) GetFarmNames(ctx context.Context) ([]string, error) {
	return c.farms.listNames(ctx, c.ledger)
}

func (c *Client) GetVaultNames(ctx context.Context) ([]string, error) {
	return c.vaults.listNames(ctx, c.ledger)
}

func (c *Client) GetFundNames(ctx context.Context) ([]string, error) {
	return c.funds.listNames(ctx, c.ledger)
}

// GetTokenNameByRef reverse-maps a token metadata address to its name.
func (c *Client) GetTokenNameByRef(ctx context.Context, key solana.PublicKey) (string, error) {
	return c.tokens.findByRef(ctx, c.ledger, key)
}

func (c *Client) GetPoolNameByRef(ctx context.Context, key solana.PublicKey) (string, error) {
	return c.pools.findByRef(ctx, c.ledger, key)
}

func (c *Client) GetFarmNameByRef(ctx context.Context, key solana.PublicKey) (string, error) {
	return c.farms.findByRef(ctx, c.ledger, key)
}

func (c *Client) GetVaultNameByRef(ctx context.Context, key solana.PublicKey) (string, error) {
	return c.vaults.findByRef(ctx, c.ledger, key)
}

func (c *Client) GetFundNameByRef(ctx context.Context, key solana.PublicKey) (string, error) {
	return c.funds.findByRef(ctx, c.ledger, key)
}

// GetTokenByRef fetches the token a directory reference points at.
func (c *Client) GetTokenByRef(ctx context.Context, key solana.PublicKey) (*types.Token, error) {
	name, err := c.tokens.findByRef(ctx, c.ledger, key)
	if err != nil {
		return nil, err
	}
	return c.tokens.get(ctx, c.ledger, name)
}

// FindPools returns every pool of one protocol trading the given token
// pair, either side first, newest version first.
func (c *Client) FindPools(ctx context.Context, protocol types.Protocol, tokenA, tokenB string) ([]*types.Pool, error) {
	pools, err := c.pools.all(ctx, c.ledger)
	if err != nil {
		return nil, err
	}
	var out []*types.Pool
	for name, pool := range pools {
		if pool.Route.Protocol != protocol {
			continue
		}
		a, b, err := names.ExtractTokenNames(name)
		if err != nil {
			continue
		}
		if (a == tokenA && b == tokenB) || (a == tokenB && b == tokenA) {
			out = append(out, pool)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FindFarms returns every farm of one protocol for the given pair.
func (c *Client) FindFarms(ctx context.Context, protocol types.Protocol, tokenA, tokenB string) ([]*types.Farm, error) {
	farms, err := c.farms.all(ctx, c.ledger)
	if err != nil {
		return nil, err
	}
	var out []*types.Farm
	for name, farm := range farms {
		if farm.Route.Protocol != protocol {
			continue
		}
		a, b, err := names.ExtractTokenNames(name)
		if err != nil {
			continue
		}
		if (a == tokenA && b == tokenB) || (a == tokenB && b == tokenA) {
			out = append(out, farm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FindFarmsWithLpToken returns the farms staking one LP token.
func (c *Client) FindFarmsWithLpToken(ctx context.Context, lpTokenName string) ([]*types.Farm, error) {
	lpRef, err := c.tokens.ref(ctx, c.ledger, lpTokenName)
	if err != nil {
		return nil, err
	}
	farms, err := c.farms.all(ctx, c.ledger)
	if err != nil {
		return nil, err
	}
	var out []*types.Farm
	for _, farm := range farms {
		if farm.LpTokenRef != nil && farm.LpTokenRef.Equals(lpRef) {
			out = append(out, farm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FindVaults returns the vaults built over the given token pair.
func (c *Client) FindVaults(ctx context.Context, tokenA, tokenB string) ([]*types.Vault, error) {
	vaults, err := c.vaults.all(ctx, c.ledger)
	if err != nil {
		return nil, err
	}
	var out []*types.Vault
	for name, vault := range vaults {
		a, b, err := names.ExtractTokenNames(name)
		if err != nil {
			continue
		}
		if (a == tokenA && b == tokenB) || (a == tokenB && b == tokenA) {
			out = append(out, vault)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
