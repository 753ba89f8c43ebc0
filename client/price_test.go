package client

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solfarms/solfarm/types"
)

func TestPoolPriceRatio(t *testing.T) {
	// 2 SOL against 300 USDC
	assert.InDelta(t, 150.0, poolPriceRatio(2_000_000_000, 300_000_000, 9, 6), 1e-9)
	// mixed decimals cancel out
	assert.InDelta(t, 1.0, poolPriceRatio(5_000_000, 5_000_000_000, 6, 9), 1e-9)

	assert.Zero(t, poolPriceRatio(0, 300_000_000, 9, 6))
	assert.Zero(t, poolPriceRatio(2_000_000_000, 0, 9, 6))
}

func TestComputeAmpFactor(t *testing.T) {
	ramp := saberSwapState{
		InitialAmpFactor: 100,
		TargetAmpFactor:  200,
		StartRampTs:      1000,
		StopRampTs:       2000,
	}
	assert.Equal(t, uint64(150), computeAmpFactor(ramp, 1500))
	assert.Equal(t, uint64(200), computeAmpFactor(ramp, 2000))
	assert.Equal(t, uint64(200), computeAmpFactor(ramp, 9999))

	down := saberSwapState{
		InitialAmpFactor: 200,
		TargetAmpFactor:  100,
		StartRampTs:      1000,
		StopRampTs:       2000,
	}
	assert.Equal(t, uint64(175), computeAmpFactor(down, 1250))

	flat := saberSwapState{InitialAmpFactor: 50, TargetAmpFactor: 80}
	assert.Equal(t, uint64(80), computeAmpFactor(flat, 123))
}

func TestComputeD(t *testing.T) {
	d, ok := computeD(100, 0, 0)
	require.True(t, ok)
	assert.Zero(t, d.Sign())

	// a balanced pool's invariant is exactly the total balance
	d, ok = computeD(100, 1_000_000, 1_000_000)
	require.True(t, ok)
	assert.Equal(t, int64(2_000_000), d.Int64())
}

func TestSaberVirtualPrice(t *testing.T) {
	// balanced pool, LP supply equal to the invariant: price is 1.0
	price, ok := saberVirtualPrice(100, 1_000_000, 1_000_000, 2_000_000, saberPricePrecision)
	require.True(t, ok)
	assert.Equal(t, uint64(saberPricePrecision), price)

	// skewed pool: D drops below the balance sum, price under 1.0
	price, ok = saberVirtualPrice(100, 1_900_000, 100_000, 2_000_000, saberPricePrecision)
	require.True(t, ok)
	assert.Less(t, price, uint64(saberPricePrecision))
	assert.Greater(t, price, uint64(0))

	_, ok = saberVirtualPrice(100, 1_000_000, 1_000_000, 0, saberPricePrecision)
	assert.False(t, ok)
}

func TestDecodeSaberSwap(t *testing.T) {
	data := make([]byte, 64)
	binary.LittleEndian.PutUint64(data[3:], 100)
	binary.LittleEndian.PutUint64(data[11:], 200)
	binary.LittleEndian.PutUint64(data[19:], 1000)
	binary.LittleEndian.PutUint64(data[27:], 2000)

	swap, err := decodeSaberSwap(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), swap.InitialAmpFactor)
	assert.Equal(t, uint64(200), swap.TargetAmpFactor)
	assert.Equal(t, int64(1000), swap.StartRampTs)
	assert.Equal(t, int64(2000), swap.StopRampTs)

	_, err = decodeSaberSwap(data[:10])
	assert.Error(t, err)
}

func TestGetPoolPriceOrca(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	pool, _ := d.addOrcaPool(t, "ORC.SOL-USDC-V1", "SOL", 9, "USDC", 6)
	d.flush(t)
	lg.tokenBalances[*pool.TokenAAccount] = 2_000_000_000
	lg.tokenBalances[*pool.TokenBAccount] = 300_000_000
	c := newTestClient(lg)

	price, err := c.GetPoolPrice(context.Background(), "ORC.SOL-USDC")
	require.NoError(t, err)
	assert.InDelta(t, 150.0, price, 1e-9)
}

func TestGetPoolPriceEmptySideIsZero(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	pool, _ := d.addOrcaPool(t, "ORC.SOL-USDC-V1", "SOL", 9, "USDC", 6)
	d.flush(t)
	lg.tokenBalances[*pool.TokenAAccount] = 0
	lg.tokenBalances[*pool.TokenBAccount] = 300_000_000
	c := newTestClient(lg)

	price, err := c.GetPoolPrice(context.Background(), "ORC.SOL-USDC-V1")
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestGetPoolPriceRaydiumAdjustments(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	_, refA := d.addToken(t, "RAY", 0)
	_, refB := d.addToken(t, "SRM", 0)
	_, refLp := d.addToken(t, "LP.RDM.RAY-SRM-V4", 0)
	pool := &types.Pool{
		Name:          "RDM.RAY-SRM-V4",
		Version:       4,
		PoolProgramID: d.nextKey(),
		TokenARef:     &refA,
		TokenBRef:     &refB,
		LpTokenRef:    &refLp,
		TokenAAccount: d.nextKeyPtr(),
		TokenBAccount: d.nextKeyPtr(),
		Route: types.PoolRoute{
			Protocol: types.ProtocolRaydium,
			Raydium: &types.RaydiumPoolRoute{
				AmmID:              d.nextKey(),
				AmmAuthority:       d.nextKey(),
				AmmOpenOrders:      d.nextKey(),
				AmmTarget:          d.nextKey(),
				SerumProgramID:     d.nextKey(),
				SerumMarket:        d.nextKey(),
				SerumCoinVault:     d.nextKey(),
				SerumPcVault:       d.nextKey(),
				SerumVaultSigner:   d.nextKey(),
				WithdrawQueue:      d.nextKey(),
				TempLpTokenAccount: d.nextKey(),
			},
		},
	}
	d.addPool(t, pool)
	d.flush(t)

	lg.tokenBalances[*pool.TokenAAccount] = 1_000
	lg.tokenBalances[*pool.TokenBAccount] = 3_500

	// serum open orders hold another 500 base / 1000 quote
	openOrders := make([]byte, serumOpenOrdersLen)
	binary.LittleEndian.PutUint64(openOrders[openOrdersBaseTotalOffset:], 500)
	binary.LittleEndian.PutUint64(openOrders[openOrdersQuoteTotalOffset:], 1_000)
	lg.accounts[pool.Route.Raydium.AmmOpenOrders] = openOrders

	// v3 amm state with 500 / 1500 of unclaimed pnl
	ammState := make([]byte, 624)
	binary.LittleEndian.PutUint64(ammState[136:], 500)
	binary.LittleEndian.PutUint64(ammState[144:], 1_500)
	lg.accounts[pool.Route.Raydium.AmmID] = ammState

	c := newTestClient(lg)
	price, err := c.GetPoolPrice(context.Background(), "RDM.RAY-SRM")
	require.NoError(t, err)
	// (3500 + 1000 - 1500) / (1000 + 500 - 500)
	assert.InDelta(t, 3.0, price, 1e-9)
}

func TestGetPoolPriceRaydiumUnknownLayoutsSkipped(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	_, refA := d.addToken(t, "RAY", 0)
	_, refB := d.addToken(t, "SRM", 0)
	_, refLp := d.addToken(t, "LP.RDM.RAY-SRM-V4", 0)
	pool := &types.Pool{
		Name:          "RDM.RAY-SRM-V4",
		PoolProgramID: d.nextKey(),
		TokenARef:     &refA,
		TokenBRef:     &refB,
		LpTokenRef:    &refLp,
		TokenAAccount: d.nextKeyPtr(),
		TokenBAccount: d.nextKeyPtr(),
		Route: types.PoolRoute{
			Protocol: types.ProtocolRaydium,
			Raydium: &types.RaydiumPoolRoute{
				AmmID:         d.nextKey(),
				AmmOpenOrders: d.nextKey(),
			},
		},
	}
	d.addPool(t, pool)
	d.flush(t)

	lg.tokenBalances[*pool.TokenAAccount] = 1_000
	lg.tokenBalances[*pool.TokenBAccount] = 2_000
	// neither account has a recognized layout: raw ratio stands
	lg.accounts[pool.Route.Raydium.AmmOpenOrders] = make([]byte, 100)
	lg.accounts[pool.Route.Raydium.AmmID] = make([]byte, 100)

	c := newTestClient(lg)
	price, err := c.GetPoolPrice(context.Background(), "RDM.RAY-SRM")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, price, 1e-9)
}
