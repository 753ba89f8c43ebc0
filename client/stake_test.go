package client

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/ledger"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

func packRaydiumStakeInfo(farmID, owner solana.PublicKey, deposit uint64, v4 bool) []byte {
	size := raydiumUserStakeInfoLen
	if v4 {
		size = raydiumUserStakeInfoV4Len
	}
	data := make([]byte, size)
	binary.LittleEndian.PutUint64(data[0:8], 1)
	copy(data[8:40], farmID[:])
	copy(data[40:72], owner[:])
	binary.LittleEndian.PutUint64(data[72:80], deposit)
	return data
}

func TestDecodeRaydiumUserStakeInfo(t *testing.T) {
	farmID := testKey(5)
	owner := testKey(6)
	data := packRaydiumStakeInfo(farmID, owner, 12_345, true)
	binary.LittleEndian.PutUint64(data[80:88], 7)
	binary.LittleEndian.PutUint64(data[88:96], 9)

	info, err := DecodeRaydiumUserStakeInfo(data, true)
	require.NoError(t, err)
	assert.Equal(t, farmID, info.FarmID)
	assert.Equal(t, owner, info.StakeOwner)
	assert.Equal(t, uint64(12_345), info.DepositBalance)
	assert.Equal(t, uint64(7), info.RewardDebt)
	assert.Equal(t, uint64(9), info.RewardDebtB)

	// the same bytes parsed as the short layout drop the second debt
	info, err = DecodeRaydiumUserStakeInfo(data[:raydiumUserStakeInfoLen], false)
	require.NoError(t, err)
	assert.Zero(t, info.RewardDebtB)

	_, err = DecodeRaydiumUserStakeInfo(data[:40], false)
	assert.Error(t, err)
}

// addRaydiumFarm wires a Raydium farm over fresh LP and reward tokens.
func addRaydiumFarm(t *testing.T, d *deployment, name string) *types.Farm {
	t.Helper()
	_, refLp := d.addToken(t, "LP."+name, 6)
	_, refReward := d.addToken(t, "REW."+name, 6)
	farm := &types.Farm{
		Name:            name,
		Version:         3,
		FarmProgramID:   d.nextKey(),
		LpTokenRef:      &refLp,
		RewardTokenARef: &refReward,
		Route: types.FarmRoute{
			Protocol: types.ProtocolRaydium,
			Raydium: &types.RaydiumFarmRoute{
				FarmID:             d.nextKey(),
				FarmAuthority:      d.nextKey(),
				FarmLpTokenAccount: d.nextKey(),
				FarmRewardTokenA:   d.nextKey(),
			},
		},
	}
	d.addFarm(t, farm)
	return farm
}

func addSaberFarm(t *testing.T, d *deployment, name string) *types.Farm {
	t.Helper()
	_, refLp := d.addToken(t, "LP."+name, 6)
	_, refReward := d.addToken(t, "REW."+name, 6)
	farm := &types.Farm{
		Name:            name,
		Version:         1,
		FarmProgramID:   d.nextKey(),
		LpTokenRef:      &refLp,
		RewardTokenARef: &refReward,
		Route: types.FarmRoute{
			Protocol: types.ProtocolSaber,
			Saber: &types.SaberFarmRoute{
				Quarry:   d.nextKey(),
				Rewarder: d.nextKey(),
			},
		},
	}
	d.addFarm(t, farm)
	return farm
}

func addOrcaFarm(t *testing.T, d *deployment, name string) (*types.Farm, *types.Token) {
	t.Helper()
	_, refLp := d.addToken(t, "LP."+name, 6)
	_, refReward := d.addToken(t, "REW."+name, 6)
	farmToken, refFarmToken := d.addToken(t, "FT."+name, 6)
	farm := &types.Farm{
		Name:            name,
		Version:         1,
		FarmProgramID:   d.nextKey(),
		LpTokenRef:      &refLp,
		RewardTokenARef: &refReward,
		Route: types.FarmRoute{
			Protocol: types.ProtocolOrca,
			Orca: &types.OrcaFarmRoute{
				FarmID:           d.nextKey(),
				FarmAuthority:    d.nextKey(),
				FarmTokenRef:     refFarmToken,
				BaseTokenVault:   d.nextKey(),
				RewardTokenVault: d.nextKey(),
			},
		},
	}
	d.addFarm(t, farm)
	return farm, farmToken
}

func TestRaydiumStakeAccountDiscovery(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	farm := addRaydiumFarm(t, d, "RDM.RAY-SRM-V3")
	other := addRaydiumFarm(t, d, "RDM.SOL-USDC-V3")
	d.flush(t)

	wallet := testKey(50)
	mine := testKey(51)
	otherAccount := testKey(52)
	lg.programAccounts[farm.FarmProgramID] = []ledger.KeyedAccount{
		{Pubkey: mine, Data: packRaydiumStakeInfo(farm.Route.Raydium.FarmID, wallet, 100, false)},
		{Pubkey: otherAccount, Data: packRaydiumStakeInfo(other.Route.Raydium.FarmID, wallet, 200, false)},
	}
	lg.programAccounts[other.FarmProgramID] = lg.programAccounts[farm.FarmProgramID]

	c := newTestClient(lg)
	addr, found, err := c.GetStakeAccount(context.Background(), wallet, "RDM.RAY-SRM")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, mine, addr)
	assert.Equal(t, 1, lg.calls["GetProgramAccounts"])

	// the scan cached every account it saw, so neither lookup rescans
	addr, found, err = c.GetStakeAccount(context.Background(), wallet, "RDM.SOL-USDC")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, otherAccount, addr)
	assert.Equal(t, 1, lg.calls["GetProgramAccounts"])
}

func TestRaydiumStakeAccountNotFound(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	addRaydiumFarm(t, d, "RDM.RAY-SRM-V3")
	d.flush(t)

	c := newTestClient(lg)
	_, found, err := c.GetStakeAccount(context.Background(), testKey(50), "RDM.RAY-SRM")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaberStakeAccountIsDerived(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	farm := addSaberFarm(t, d, "SBR.USDC-USDT-V1")
	d.flush(t)

	wallet := testKey(50)
	want, err := registry.SaberMinerAddress(farm.Route.Saber.Quarry, wallet)
	require.NoError(t, err)

	c := newTestClient(lg)
	addr, found, err := c.GetStakeAccount(context.Background(), wallet, "SBR.USDC-USDT")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, addr)
	assert.Zero(t, lg.calls["GetProgramAccounts"])
}

func TestOrcaStakeAccountIsDerived(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	farm, _ := addOrcaFarm(t, d, "ORC.SOL-USDC-V1")
	d.flush(t)

	wallet := testKey(50)
	want, err := registry.OrcaFarmerAddress(farm.FarmProgramID, farm.Route.Orca.FarmID, wallet)
	require.NoError(t, err)

	c := newTestClient(lg)
	addr, found, err := c.GetStakeAccount(context.Background(), wallet, "ORC.SOL-USDC")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, addr)
}

func TestGetUserStakeBalanceSaber(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	farm := addSaberFarm(t, d, "SBR.USDC-USDT-V1")
	d.flush(t)

	wallet := testKey(50)
	miner, err := registry.SaberMinerAddress(farm.Route.Saber.Quarry, wallet)
	require.NoError(t, err)
	data := make([]byte, saberMinerLen)
	binary.LittleEndian.PutUint64(data[saberMinerBalanceOffset:], 2_500_000)
	lg.accounts[miner] = data

	c := newTestClient(lg)
	balance, err := c.GetUserStakeBalance(context.Background(), wallet, "SBR.USDC-USDT")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, balance, 1e-9)
}

func TestGetUserStakeBalanceMissingAccountIsZero(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	addSaberFarm(t, d, "SBR.USDC-USDT-V1")
	d.flush(t)

	c := newTestClient(lg)
	balance, err := c.GetUserStakeBalance(context.Background(), testKey(50), "SBR.USDC-USDT")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestGetUserStakeBalanceOrca(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	_, farmToken := addOrcaFarm(t, d, "ORC.SOL-USDC-V1")
	d.flush(t)

	wallet := testKey(50)
	ata, _, err := solana.FindAssociatedTokenAddress(wallet, farmToken.Mint)
	require.NoError(t, err)
	lg.tokenBalances[ata] = 750_000

	c := newTestClient(lg)
	balance, err := c.GetUserStakeBalance(context.Background(), wallet, "ORC.SOL-USDC")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, balance, 1e-9)
}

func TestGetUserStakeBalanceOrcaPropagatesNodeErrors(t *testing.T) {
	lg := newFakeLedger()
	d := newDeployment(lg)
	addOrcaFarm(t, d, "ORC.SOL-USDC-V1")
	d.flush(t)
	lg.tokenBalanceErr = &common.RemoteError{Code: common.RPCCodeNodeUnhealthy}

	c := newTestClient(lg)
	_, err := c.GetUserStakeBalance(context.Background(), testKey(50), "ORC.SOL-USDC")
	var remote *common.RemoteError
	require.ErrorAs(t, err, &remote)
}
