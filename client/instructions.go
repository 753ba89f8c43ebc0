package client

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/names"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// Protocol router opcodes, shared by all three routers.
const (
	ammOpUserInit uint8 = iota
	ammOpAddLiquidity
	ammOpRemoveLiquidity
	ammOpSwap
	ammOpStake
	ammOpUnstake
	ammOpHarvest
)

func packAmmData(op uint8, amounts ...uint64) []byte {
	data := make([]byte, 1+8*len(amounts))
	data[0] = op
	for i, amount := range amounts {
		binary.LittleEndian.PutUint64(data[1+8*i:], amount)
	}
	return data
}

func (c *Client) routerProgram(p types.Protocol) (solana.PublicKey, error) {
	switch p {
	case types.ProtocolRaydium:
		return c.registry.RaydiumRouterProgram, nil
	case types.ProtocolSaber:
		return c.registry.SaberRouterProgram, nil
	case types.ProtocolOrca:
		return c.registry.OrcaRouterProgram, nil
	}
	return solana.PublicKey{}, common.ValueErrorf("no router for protocol %d", p)
}

// tokenByRef loads the token a metadata reference points at; a nil
// reference is a directory configuration error.
func (c *Client) tokenByRef(ctx context.Context, ref *solana.PublicKey, what string) (*types.Token, error) {
	if ref == nil {
		return nil, common.ValueErrorf("%s token reference is not set", what)
	}
	return c.GetTokenByRef(ctx, *ref)
}

func associatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	return addr, err
}

// walletTokenAccount is where a wallet holds one token: its associated
// token account for the mint.
func walletTokenAccount(wallet solana.PublicKey, token *types.Token) (solana.PublicKey, error) {
	return associatedTokenAddress(wallet, token.Mint)
}

type poolTokens struct {
	tokenA *types.Token
	tokenB *types.Token
	lp     *types.Token
}

func (c *Client) poolTokens(ctx context.Context, pool *types.Pool) (poolTokens, error) {
	var out poolTokens
	var err error
	if out.tokenA, err = c.tokenByRef(ctx, pool.TokenARef, "pool first"); err != nil {
		return out, err
	}
	if out.tokenB, err = c.tokenByRef(ctx, pool.TokenBRef, "pool second"); err != nil {
		return out, err
	}
	if out.lp, err = c.tokenByRef(ctx, pool.LpTokenRef, "pool lp"); err != nil {
		return out, err
	}
	return out, nil
}

func requireAccount(key *solana.PublicKey, what string) (solana.PublicKey, error) {
	if key == nil {
		return solana.PublicKey{}, common.ValueErrorf("%s is not set", what)
	}
	return *key, nil
}

// NewInstructionAddLiquidityPool deposits up to the given amounts of
// both pool tokens in exchange for LP tokens.
func (c *Client) NewInstructionAddLiquidityPool(ctx context.Context, wallet solana.PublicKey, poolName string, maxTokenA, maxTokenB float64) (solana.Instruction, error) {
	pool, err := c.GetPool(ctx, poolName)
	if err != nil {
		return nil, err
	}
	tokens, err := c.poolTokens(ctx, pool)
	if err != nil {
		return nil, err
	}
	program, err := c.routerProgram(pool.Route.Protocol)
	if err != nil {
		return nil, err
	}
	data := packAmmData(ammOpAddLiquidity,
		common.TokensToUILamports(maxTokenA, tokens.tokenA.Decimals),
		common.TokensToUILamports(maxTokenB, tokens.tokenB.Decimals))

	accounts, err := c.addLiquidityAccounts(wallet, pool, tokens)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts, data), nil
}

// NewInstructionRemoveLiquidityPool burns LP tokens and withdraws both
// pool tokens. A zero amount withdraws the whole position.
func (c *Client) NewInstructionRemoveLiquidityPool(ctx context.Context, wallet solana.PublicKey, poolName string, uiAmount float64) (solana.Instruction, error) {
	pool, err := c.GetPool(ctx, poolName)
	if err != nil {
		return nil, err
	}
	tokens, err := c.poolTokens(ctx, pool)
	if err != nil {
		return nil, err
	}
	program, err := c.routerProgram(pool.Route.Protocol)
	if err != nil {
		return nil, err
	}
	data := packAmmData(ammOpRemoveLiquidity,
		common.TokensToUILamports(uiAmount, tokens.lp.Decimals))

	accounts, err := c.removeLiquidityAccounts(wallet, pool, tokens)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts, data), nil
}

// NewInstructionSwap trades one pool token for the other in the first
// pool of the protocol that carries the pair.
func (c *Client) NewInstructionSwap(ctx context.Context, wallet solana.PublicKey, protocol types.Protocol, fromToken, toToken string, uiAmountIn, minUIAmountOut float64) (solana.Instruction, error) {
	pools, err := c.FindPools(ctx, protocol, fromToken, toToken)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, common.ValueErrorf("no %s pool for %s-%s", protocol, fromToken, toToken)
	}
	pool := pools[0]
	tokens, err := c.poolTokens(ctx, pool)
	if err != nil {
		return nil, err
	}
	program, err := c.routerProgram(pool.Route.Protocol)
	if err != nil {
		return nil, err
	}

	tokenA, _, err := names.ExtractTokenNames(pool.Name)
	if err != nil {
		return nil, err
	}
	reverse := tokenA != fromToken

	var data []byte
	if reverse {
		data = packAmmData(ammOpSwap,
			0,
			common.TokensToUILamports(uiAmountIn, tokens.tokenB.Decimals),
			common.TokensToUILamports(minUIAmountOut, tokens.tokenA.Decimals))
	} else {
		data = packAmmData(ammOpSwap,
			common.TokensToUILamports(uiAmountIn, tokens.tokenA.Decimals),
			0,
			common.TokensToUILamports(minUIAmountOut, tokens.tokenB.Decimals))
	}

	accounts, err := c.swapAccounts(wallet, pool, tokens)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts, data), nil
}

// poolUserAccounts resolves the wallet side of a pool operation.
func poolUserAccounts(wallet solana.PublicKey, tokens poolTokens) (userA, userB, userLp solana.PublicKey, err error) {
	if userA, err = walletTokenAccount(wallet, tokens.tokenA); err != nil {
		return
	}
	if userB, err = walletTokenAccount(wallet, tokens.tokenB); err != nil {
		return
	}
	userLp, err = walletTokenAccount(wallet, tokens.lp)
	return
}

func (c *Client) addLiquidityAccounts(wallet solana.PublicKey, pool *types.Pool, tokens poolTokens) (solana.AccountMetaSlice, error) {
	userA, userB, userLp, err := poolUserAccounts(wallet, tokens)
	if err != nil {
		return nil, err
	}
	poolA, err := requireAccount(pool.TokenAAccount, "pool first token account")
	if err != nil {
		return nil, err
	}
	poolB, err := requireAccount(pool.TokenBAccount, "pool second token account")
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userA).WRITE(),
		solana.Meta(userB).WRITE(),
		solana.Meta(userLp).WRITE(),
		solana.Meta(pool.PoolProgramID),
		solana.Meta(poolA).WRITE(),
		solana.Meta(poolB).WRITE(),
		solana.Meta(tokens.lp.Mint).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}
	switch pool.Route.Protocol {
	case types.ProtocolRaydium:
		route := pool.Route.Raydium
		accounts = append(accounts,
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
			solana.Meta(route.AmmOpenOrders),
			solana.Meta(route.AmmTarget).WRITE(),
			solana.Meta(route.SerumMarket),
		)
	case types.ProtocolSaber:
		route := pool.Route.Saber
		accounts = append(accounts,
			solana.Meta(solana.SysVarClockPubkey),
			solana.Meta(route.Swap),
			solana.Meta(route.SwapAuthority),
		)
	case types.ProtocolOrca:
		route := pool.Route.Orca
		accounts = append(accounts,
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
		)
	default:
		return nil, common.ValueErrorf("pool %s has no route", pool.Name)
	}
	return accounts, nil
}

func (c *Client) removeLiquidityAccounts(wallet solana.PublicKey, pool *types.Pool, tokens poolTokens) (solana.AccountMetaSlice, error) {
	userA, userB, userLp, err := poolUserAccounts(wallet, tokens)
	if err != nil {
		return nil, err
	}
	poolA, err := requireAccount(pool.TokenAAccount, "pool first token account")
	if err != nil {
		return nil, err
	}
	poolB, err := requireAccount(pool.TokenBAccount, "pool second token account")
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userA).WRITE(),
		solana.Meta(userB).WRITE(),
		solana.Meta(userLp).WRITE(),
		solana.Meta(pool.PoolProgramID),
	}
	switch pool.Route.Protocol {
	case types.ProtocolRaydium:
		route := pool.Route.Raydium
		accounts = append(accounts,
			solana.Meta(route.WithdrawQueue).WRITE(),
			solana.Meta(route.TempLpTokenAccount).WRITE(),
			solana.Meta(poolA).WRITE(),
			solana.Meta(poolB).WRITE(),
			solana.Meta(tokens.lp.Mint).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
			solana.Meta(route.AmmOpenOrders).WRITE(),
			solana.Meta(route.AmmTarget).WRITE(),
			solana.Meta(route.SerumMarket).WRITE(),
			solana.Meta(route.SerumProgramID),
			solana.Meta(route.SerumCoinVault).WRITE(),
			solana.Meta(route.SerumPcVault).WRITE(),
			solana.Meta(route.SerumVaultSigner),
		)
	case types.ProtocolSaber:
		route := pool.Route.Saber
		accounts = append(accounts,
			solana.Meta(poolA).WRITE(),
			solana.Meta(poolB).WRITE(),
			solana.Meta(tokens.lp.Mint).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(route.Swap),
			solana.Meta(route.SwapAuthority),
			solana.Meta(route.FeesTokenA).WRITE(),
			solana.Meta(route.FeesTokenB).WRITE(),
		)
	case types.ProtocolOrca:
		route := pool.Route.Orca
		accounts = append(accounts,
			solana.Meta(poolA).WRITE(),
			solana.Meta(poolB).WRITE(),
			solana.Meta(tokens.lp.Mint).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
			solana.Meta(route.FeesAccount).WRITE(),
		)
	default:
		return nil, common.ValueErrorf("pool %s has no route", pool.Name)
	}
	return accounts, nil
}

func (c *Client) swapAccounts(wallet solana.PublicKey, pool *types.Pool, tokens poolTokens) (solana.AccountMetaSlice, error) {
	userA, err := walletTokenAccount(wallet, tokens.tokenA)
	if err != nil {
		return nil, err
	}
	userB, err := walletTokenAccount(wallet, tokens.tokenB)
	if err != nil {
		return nil, err
	}
	poolA, err := requireAccount(pool.TokenAAccount, "pool first token account")
	if err != nil {
		return nil, err
	}
	poolB, err := requireAccount(pool.TokenBAccount, "pool second token account")
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userA).WRITE(),
		solana.Meta(userB).WRITE(),
		solana.Meta(pool.PoolProgramID),
		solana.Meta(poolA).WRITE(),
		solana.Meta(poolB).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}
	switch pool.Route.Protocol {
	case types.ProtocolRaydium:
		route := pool.Route.Raydium
		bids, err := requireAccount(route.SerumBids, "serum bids account")
		if err != nil {
			return nil, err
		}
		asks, err := requireAccount(route.SerumAsks, "serum asks account")
		if err != nil {
			return nil, err
		}
		events, err := requireAccount(route.SerumEventQueue, "serum event queue")
		if err != nil {
			return nil, err
		}
		accounts = append(accounts,
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
			solana.Meta(route.AmmOpenOrders).WRITE(),
			solana.Meta(route.AmmTarget).WRITE(),
			solana.Meta(route.SerumMarket).WRITE(),
			solana.Meta(route.SerumProgramID),
			solana.Meta(bids).WRITE(),
			solana.Meta(asks).WRITE(),
			solana.Meta(events).WRITE(),
			solana.Meta(route.SerumCoinVault).WRITE(),
			solana.Meta(route.SerumPcVault).WRITE(),
			solana.Meta(route.SerumVaultSigner),
		)
	case types.ProtocolSaber:
		route := pool.Route.Saber
		accounts = append(accounts,
			solana.Meta(solana.SysVarClockPubkey),
			solana.Meta(route.Swap),
			solana.Meta(route.SwapAuthority),
			solana.Meta(route.FeesTokenA).WRITE(),
			solana.Meta(route.FeesTokenB).WRITE(),
		)
	case types.ProtocolOrca:
		route := pool.Route.Orca
		accounts = append(accounts,
			solana.Meta(route.AmmID).WRITE(),
			solana.Meta(route.AmmAuthority),
			solana.Meta(route.FeesAccount).WRITE(),
		)
	default:
		return nil, common.ValueErrorf("pool %s has no route", pool.Name)
	}
	return accounts, nil
}

// NewInstructionUserInit sets up the per-user stake bookkeeping for one
// farm. Raydium farms keep the stake record in a plain account, so the
// caller passes the fresh account's address; Saber and Orca derive PDAs
// and ignore stakeAccount.
func (c *Client) NewInstructionUserInit(ctx context.Context, wallet, stakeAccount solana.PublicKey, farmName string) (solana.Instruction, error) {
	farm, err := c.GetFarm(ctx, farmName)
	if err != nil {
		return nil, err
	}
	program, err := c.routerProgram(farm.Route.Protocol)
	if err != nil {
		return nil, err
	}

	var accounts solana.AccountMetaSlice
	switch farm.Route.Protocol {
	case types.ProtocolRaydium:
		route := farm.Route.Raydium
		accounts = solana.AccountMetaSlice{
			solana.Meta(wallet).WRITE().SIGNER(),
			solana.Meta(stakeAccount).WRITE(),
			solana.Meta(route.FarmID),
			solana.Meta(solana.SystemProgramID),
		}
	case types.ProtocolSaber:
		route := farm.Route.Saber
		lpToken, err := c.tokenByRef(ctx, farm.LpTokenRef, "farm lp")
		if err != nil {
			return nil, err
		}
		miner, err := c.registry.SaberMinerAddress(route.Quarry, wallet)
		if err != nil {
			return nil, err
		}
		minerVault, err := associatedTokenAddress(miner, lpToken.Mint)
		if err != nil {
			return nil, err
		}
		accounts = solana.AccountMetaSlice{
			solana.Meta(wallet).WRITE().SIGNER(),
			solana.Meta(wallet),
			solana.Meta(farm.FarmProgramID),
			solana.Meta(lpToken.Mint).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(solana.SystemProgramID),
			solana.Meta(miner).WRITE(),
			solana.Meta(minerVault).WRITE(),
			solana.Meta(route.Quarry).WRITE(),
			solana.Meta(route.Rewarder).WRITE(),
		}
	case types.ProtocolOrca:
		route := farm.Route.Orca
		farmer, err := registry.OrcaFarmerAddress(farm.FarmProgramID, route.FarmID, wallet)
		if err != nil {
			return nil, err
		}
		accounts = solana.AccountMetaSlice{
			solana.Meta(wallet).WRITE().SIGNER(),
			solana.Meta(farmer).WRITE(),
			solana.Meta(route.FarmID),
			solana.Meta(solana.SystemProgramID),
		}
	default:
		return nil, common.ValueErrorf("farm %s has no route", farm.Name)
	}
	return solana.NewInstruction(program, accounts, packAmmData(ammOpUserInit)), nil
}

// NewInstructionStake deposits LP tokens into a farm.
func (c *Client) NewInstructionStake(ctx context.Context, wallet solana.PublicKey, farmName string, uiAmount float64) (solana.Instruction, error) {
	return c.newFarmInstruction(ctx, wallet, farmName, ammOpStake, &uiAmount)
}

// NewInstructionUnstake withdraws LP tokens from a farm. A zero amount
// withdraws the entire stake.
func (c *Client) NewInstructionUnstake(ctx context.Context, wallet solana.PublicKey, farmName string, uiAmount float64) (solana.Instruction, error) {
	return c.newFarmInstruction(ctx, wallet, farmName, ammOpUnstake, &uiAmount)
}

// NewInstructionHarvest claims the pending rewards of a farm position.
func (c *Client) NewInstructionHarvest(ctx context.Context, wallet solana.PublicKey, farmName string) (solana.Instruction, error) {
	return c.newFarmInstruction(ctx, wallet, farmName, ammOpHarvest, nil)
}

func (c *Client) newFarmInstruction(ctx context.Context, wallet solana.PublicKey, farmName string, op uint8, uiAmount *float64) (solana.Instruction, error) {
	farm, err := c.GetFarm(ctx, farmName)
	if err != nil {
		return nil, err
	}
	program, err := c.routerProgram(farm.Route.Protocol)
	if err != nil {
		return nil, err
	}
	lpToken, err := c.tokenByRef(ctx, farm.LpTokenRef, "farm lp")
	if err != nil {
		return nil, err
	}

	data := packAmmData(op)
	if uiAmount != nil {
		data = packAmmData(op, common.TokensToUILamports(*uiAmount, lpToken.Decimals))
	}

	var accounts solana.AccountMetaSlice
	switch farm.Route.Protocol {
	case types.ProtocolRaydium:
		accounts, err = c.raydiumFarmAccounts(ctx, wallet, farm, lpToken)
	case types.ProtocolSaber:
		accounts, err = c.saberFarmAccounts(ctx, wallet, farm, lpToken, op)
	case types.ProtocolOrca:
		accounts, err = c.orcaFarmAccounts(ctx, wallet, farm, lpToken)
	default:
		err = common.ValueErrorf("farm %s has no route", farm.Name)
	}
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts, data), nil
}

// rewardTokenAccounts resolves the wallet accounts where harvested
// rewards land. The second account is nil for single-reward farms.
func (c *Client) rewardTokenAccounts(ctx context.Context, wallet solana.PublicKey, farm *types.Farm) (solana.PublicKey, *solana.PublicKey, error) {
	rewardA, err := c.tokenByRef(ctx, farm.RewardTokenARef, "farm first reward")
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	userA, err := walletTokenAccount(wallet, rewardA)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if farm.RewardTokenBRef == nil {
		return userA, nil, nil
	}
	rewardB, err := c.GetTokenByRef(ctx, *farm.RewardTokenBRef)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	userB, err := walletTokenAccount(wallet, rewardB)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return userA, &userB, nil
}

func (c *Client) raydiumFarmAccounts(ctx context.Context, wallet solana.PublicKey, farm *types.Farm, lpToken *types.Token) (solana.AccountMetaSlice, error) {
	route := farm.Route.Raydium
	userLp, err := walletTokenAccount(wallet, lpToken)
	if err != nil {
		return nil, err
	}
	userRewardA, userRewardB, err := c.rewardTokenAccounts(ctx, wallet, farm)
	if err != nil {
		return nil, err
	}
	stakeInfo, found, err := c.GetStakeAccount(ctx, wallet, farm.Name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ValueErrorf("no stake account for farm %s, run user init first", farm.Name)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userLp).WRITE(),
		solana.Meta(userRewardA).WRITE(),
	}
	if userRewardB != nil {
		accounts = append(accounts, solana.Meta(*userRewardB).WRITE())
	}
	accounts = append(accounts,
		solana.Meta(stakeInfo).WRITE(),
		solana.Meta(farm.FarmProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(route.FarmID).WRITE(),
		solana.Meta(route.FarmAuthority),
		solana.Meta(route.FarmLpTokenAccount).WRITE(),
		solana.Meta(route.FarmRewardTokenA).WRITE(),
	)
	if route.FarmRewardTokenB != nil {
		accounts = append(accounts, solana.Meta(*route.FarmRewardTokenB).WRITE())
	}
	return accounts, nil
}

func (c *Client) saberFarmAccounts(ctx context.Context, wallet solana.PublicKey, farm *types.Farm, lpToken *types.Token, op uint8) (solana.AccountMetaSlice, error) {
	route := farm.Route.Saber
	miner, err := c.registry.SaberMinerAddress(route.Quarry, wallet)
	if err != nil {
		return nil, err
	}
	minerVault, err := associatedTokenAddress(miner, lpToken.Mint)
	if err != nil {
		return nil, err
	}

	if op == ammOpHarvest {
		userRewardA, userRewardB, err := c.rewardTokenAccounts(ctx, wallet, farm)
		if err != nil {
			return nil, err
		}
		accounts := solana.AccountMetaSlice{
			solana.Meta(wallet).SIGNER(),
			solana.Meta(userRewardA).WRITE(),
		}
		if userRewardB != nil {
			accounts = append(accounts, solana.Meta(*userRewardB).WRITE())
		}
		accounts = append(accounts,
			solana.Meta(farm.FarmProgramID),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(miner).WRITE(),
			solana.Meta(route.Quarry).WRITE(),
			solana.Meta(route.Rewarder),
		)
		return accounts, nil
	}

	userLp, err := walletTokenAccount(wallet, lpToken)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userLp).WRITE(),
		solana.Meta(farm.FarmProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(miner).WRITE(),
		solana.Meta(minerVault).WRITE(),
		solana.Meta(route.Quarry).WRITE(),
		solana.Meta(route.Rewarder),
	}, nil
}

func (c *Client) orcaFarmAccounts(ctx context.Context, wallet solana.PublicKey, farm *types.Farm, lpToken *types.Token) (solana.AccountMetaSlice, error) {
	route := farm.Route.Orca
	userLp, err := walletTokenAccount(wallet, lpToken)
	if err != nil {
		return nil, err
	}
	farmToken, err := c.GetTokenByRef(ctx, route.FarmTokenRef)
	if err != nil {
		return nil, err
	}
	userFarmToken, err := walletTokenAccount(wallet, farmToken)
	if err != nil {
		return nil, err
	}
	userRewardA, _, err := c.rewardTokenAccounts(ctx, wallet, farm)
	if err != nil {
		return nil, err
	}
	farmer, err := registry.OrcaFarmerAddress(farm.FarmProgramID, route.FarmID, wallet)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(userLp).WRITE(),
		solana.Meta(userFarmToken).WRITE(),
		solana.Meta(userRewardA).WRITE(),
		solana.Meta(farm.FarmProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(route.FarmID).WRITE(),
		solana.Meta(route.FarmAuthority),
		solana.Meta(farmer).WRITE(),
		solana.Meta(route.BaseTokenVault).WRITE(),
		solana.Meta(route.RewardTokenVault).WRITE(),
	}, nil
}
