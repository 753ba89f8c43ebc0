package client

import (
	"context"
	"encoding/binary"
	"math/big"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/types"
)

// serumOpenOrdersLen is the only open orders layout Raydium pools use;
// anything else is left out of the balance adjustment.
const serumOpenOrdersLen = 3228

const (
	openOrdersBaseTotalOffset  = 85
	openOrdersQuoteTotalOffset = 101
)

// saberPricePrecision scales the virtual price computation; the result
// is normalized back down.
const saberPricePrecision = 1_000_000

// GetPoolPrice returns the pair price of a pool, defined as token B
// per token A at current reserves. Pools with an empty side price at
// zero rather than erroring, so balance sweeps over many pools don't
// abort on a drained pool.
func (c *Client) GetPoolPrice(ctx context.Context, poolName string) (float64, error) {
	pool, err := c.GetPool(ctx, poolName)
	if err != nil {
		return 0, err
	}
	if pool.TokenARef == nil || pool.TokenBRef == nil {
		return 0, nil
	}
	if pool.TokenAAccount == nil || pool.TokenBAccount == nil {
		return 0, common.ValueErrorf("pool %q has no token accounts", poolName)
	}
	tokenA, err := c.GetTokenByRef(ctx, *pool.TokenARef)
	if err != nil {
		return 0, err
	}
	tokenB, err := c.GetTokenByRef(ctx, *pool.TokenBRef)
	if err != nil {
		return 0, err
	}
	balanceA, err := c.ledger.GetTokenBalance(ctx, *pool.TokenAAccount)
	if err != nil {
		return 0, err
	}
	balanceB, err := c.ledger.GetTokenBalance(ctx, *pool.TokenBAccount)
	if err != nil {
		return 0, err
	}

	switch pool.Route.Protocol {
	case types.ProtocolRaydium:
		return c.poolPriceRaydium(ctx, pool, balanceA, balanceB, tokenA.Decimals, tokenB.Decimals)
	case types.ProtocolSaber:
		return c.poolPriceSaber(ctx, pool, balanceA, balanceB)
	case types.ProtocolOrca:
		return poolPriceRatio(balanceA, balanceB, tokenA.Decimals, tokenB.Decimals), nil
	}
	return 0, common.ValueErrorf("pool %q has unsupported protocol", poolName)
}

func poolPriceRatio(balanceA, balanceB uint64, decimalsA, decimalsB uint8) float64 {
	if balanceA == 0 || balanceB == 0 {
		return 0
	}
	return common.UILamportsToTokens(balanceB, decimalsB) /
		common.UILamportsToTokens(balanceA, decimalsA)
}

// poolPriceRaydium prices a Raydium pool. The raw vault balances are
// adjusted for funds sitting in the serum open orders account and for
// unclaimed protocol pnl parked in the AMM state before taking the
// ratio.
func (c *Client) poolPriceRaydium(ctx context.Context, pool *types.Pool, balanceA, balanceB uint64, decimalsA, decimalsB uint8) (float64, error) {
	route := pool.Route.Raydium
	openOrdersData, err := c.ledger.GetAccountData(ctx, route.AmmOpenOrders)
	if err != nil {
		return 0, err
	}
	if len(openOrdersData) == serumOpenOrdersLen {
		balanceA += binary.LittleEndian.Uint64(openOrdersData[openOrdersBaseTotalOffset:])
		balanceB += binary.LittleEndian.Uint64(openOrdersData[openOrdersQuoteTotalOffset:])
	}

	ammData, err := c.ledger.GetAccountData(ctx, route.AmmID)
	if err != nil {
		return 0, err
	}
	// pnl field offsets depend on the AMM state version, identified by
	// account size; unknown sizes skip the correction
	var pnlCoinOffset, pnlPcOffset int
	switch len(ammData) {
	case 624:
		pnlCoinOffset, pnlPcOffset = 136, 144
	case 680:
		pnlCoinOffset, pnlPcOffset = 144, 152
	case 752:
		pnlCoinOffset, pnlPcOffset = 192, 200
	}
	if pnlCoinOffset > 0 {
		needTakePnlCoin := binary.LittleEndian.Uint64(ammData[pnlCoinOffset:])
		needTakePnlPc := binary.LittleEndian.Uint64(ammData[pnlPcOffset:])
		balanceA = common.SaturatingSub(balanceA, needTakePnlCoin)
		balanceB = common.SaturatingSub(balanceB, needTakePnlPc)
	}

	return poolPriceRatio(balanceA, balanceB, decimalsA, decimalsB), nil
}

// saberSwapState is the slice of the stable-swap account the price
// computation needs.
type saberSwapState struct {
	InitialAmpFactor uint64
	TargetAmpFactor  uint64
	StartRampTs      int64
	StopRampTs       int64
}

func decodeSaberSwap(data []byte) (saberSwapState, error) {
	if len(data) < 35 {
		return saberSwapState{}, &common.ParseError{What: "saber swap account: too short"}
	}
	return saberSwapState{
		InitialAmpFactor: binary.LittleEndian.Uint64(data[3:]),
		TargetAmpFactor:  binary.LittleEndian.Uint64(data[11:]),
		StartRampTs:      int64(binary.LittleEndian.Uint64(data[19:])),
		StopRampTs:       int64(binary.LittleEndian.Uint64(data[27:])),
	}, nil
}

// poolPriceSaber prices a Saber stable pool as the virtual price of its
// LP token: the invariant D per LP unit. A pool whose invariant can't
// be computed prices at zero.
func (c *Client) poolPriceSaber(ctx context.Context, pool *types.Pool, balanceA, balanceB uint64) (float64, error) {
	swapData, err := c.ledger.GetAccountData(ctx, pool.Route.Saber.Swap)
	if err != nil {
		return 0, err
	}
	swap, err := decodeSaberSwap(swapData)
	if err != nil {
		return 0, err
	}
	if pool.LpTokenRef == nil {
		return 0, common.ValueErrorf("pool %q has no lp token", pool.Name)
	}
	lpToken, err := c.GetTokenByRef(ctx, *pool.LpTokenRef)
	if err != nil {
		return 0, err
	}
	lpSupply, err := c.ledger.GetTokenSupply(ctx, lpToken.Mint)
	if err != nil {
		return 0, err
	}

	amp := computeAmpFactor(swap, c.now().Unix())
	price, ok := saberVirtualPrice(amp, balanceA, balanceB, lpSupply, saberPricePrecision)
	if !ok {
		return 0, nil
	}
	return float64(price) / saberPricePrecision, nil
}

// computeAmpFactor returns the amplification coefficient at ts,
// linearly interpolated while a ramp is in progress.
func computeAmpFactor(swap saberSwapState, ts int64) uint64 {
	if ts >= swap.StopRampTs || swap.StopRampTs <= swap.StartRampTs {
		return swap.TargetAmpFactor
	}
	elapsed := uint64(ts - swap.StartRampTs)
	window := uint64(swap.StopRampTs - swap.StartRampTs)
	if swap.TargetAmpFactor >= swap.InitialAmpFactor {
		return swap.InitialAmpFactor + (swap.TargetAmpFactor-swap.InitialAmpFactor)*elapsed/window
	}
	return swap.InitialAmpFactor - (swap.InitialAmpFactor-swap.TargetAmpFactor)*elapsed/window
}

// computeD iterates Newton's method on the stable-swap invariant for a
// two-token pool. Returns false if the iteration fails to converge.
func computeD(amp, balanceA, balanceB uint64) (*big.Int, bool) {
	a := new(big.Int).SetUint64(balanceA)
	b := new(big.Int).SetUint64(balanceB)
	s := new(big.Int).Add(a, b)
	if s.Sign() == 0 {
		return big.NewInt(0), true
	}

	const nCoins = 2
	n := big.NewInt(nCoins)
	ann := new(big.Int).SetUint64(amp * nCoins)
	one := big.NewInt(1)

	d := new(big.Int).Set(s)
	for i := 0; i < 256; i++ {
		// dP = d^(n+1) / (n^n * a * b)
		dP := new(big.Int).Set(d)
		dP.Mul(dP, d)
		dP.Div(dP, new(big.Int).Mul(a, n))
		dP.Mul(dP, d)
		dP.Div(dP, new(big.Int).Mul(b, n))

		dPrev := new(big.Int).Set(d)

		// d = (ann*s + n*dP) * d / ((ann-1)*d + (n+1)*dP)
		num := new(big.Int).Mul(ann, s)
		num.Add(num, new(big.Int).Mul(dP, n))
		num.Mul(num, d)
		den := new(big.Int).Mul(new(big.Int).Sub(ann, one), d)
		den.Add(den, new(big.Int).Mul(new(big.Int).Add(n, one), dP))
		if den.Sign() == 0 {
			return nil, false
		}
		d = num.Div(num, den)

		diff := new(big.Int).Sub(d, dPrev)
		if diff.CmpAbs(one) <= 0 {
			return d, true
		}
	}
	return nil, false
}

// saberVirtualPrice values `amount` LP units in invariant units.
func saberVirtualPrice(amp, balanceA, balanceB, lpSupply, amount uint64) (uint64, bool) {
	if lpSupply == 0 {
		return 0, false
	}
	d, ok := computeD(amp, balanceA, balanceB)
	if !ok {
		return 0, false
	}
	price := new(big.Int).Mul(d, new(big.Int).SetUint64(amount))
	price.Div(price, new(big.Int).SetUint64(lpSupply))
	if !price.IsUint64() {
		return 0, false
	}
	return price.Uint64(), true
}
