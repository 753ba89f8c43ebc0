package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// Raydium user stake account layouts. The V4 layout appends a second
// reward debt field.
const (
	raydiumUserStakeInfoLen   = 88
	raydiumUserStakeInfoV4Len = 96

	// The wallet sits after the state word and the farm id, which is
	// where the discovery scan matches.
	raydiumStakeWalletOffset = 40
)

// saberMinerLen and the balance offset follow the Quarry miner account
// layout: an 8 byte discriminator, quarry and authority keys, the bump,
// the vault key, earned rewards and the u128 rewards checkpoint.
const (
	saberMinerLen           = 145
	saberMinerBalanceOffset = 129
)

// RaydiumUserStakeInfo is a wallet's stake record in one Raydium farm.
type RaydiumUserStakeInfo struct {
	State          uint64
	FarmID         solana.PublicKey
	StakeOwner     solana.PublicKey
	DepositBalance uint64
	RewardDebt     uint64
	RewardDebtB    uint64
}

// DecodeRaydiumUserStakeInfo parses a stake account in either layout;
// v4 selects the extended one.
func DecodeRaydiumUserStakeInfo(data []byte, v4 bool) (*RaydiumUserStakeInfo, error) {
	want := raydiumUserStakeInfoLen
	if v4 {
		want = raydiumUserStakeInfoV4Len
	}
	if len(data) < want {
		return nil, &common.ParseError{What: "raydium stake account: too short"}
	}
	info := &RaydiumUserStakeInfo{
		State:          binary.LittleEndian.Uint64(data[0:8]),
		FarmID:         solana.PublicKeyFromBytes(data[8:40]),
		StakeOwner:     solana.PublicKeyFromBytes(data[40:72]),
		DepositBalance: binary.LittleEndian.Uint64(data[72:80]),
		RewardDebt:     binary.LittleEndian.Uint64(data[80:88]),
	}
	if v4 {
		info.RewardDebtB = binary.LittleEndian.Uint64(data[88:96])
	}
	return info, nil
}

func decodeSaberMinerBalance(data []byte) (uint64, error) {
	if len(data) < saberMinerLen {
		return 0, &common.ParseError{What: "saber miner account: too short"}
	}
	return binary.LittleEndian.Uint64(data[saberMinerBalanceOffset:]), nil
}

func (c *Client) stakeCacheLookup(protocol types.Protocol, wallet solana.PublicKey, nativeKey string) (solana.PublicKey, bool) {
	byWallet, ok := c.stakeAccounts[protocol]
	if !ok {
		return solana.PublicKey{}, false
	}
	byKey, ok := byWallet[wallet.String()]
	if !ok {
		return solana.PublicKey{}, false
	}
	addr, ok := byKey[nativeKey]
	return addr, ok
}

func (c *Client) stakeCacheStore(protocol types.Protocol, wallet solana.PublicKey, nativeKey string, addr solana.PublicKey) {
	byWallet, ok := c.stakeAccounts[protocol]
	if !ok {
		byWallet = make(map[string]map[string]solana.PublicKey)
		c.stakeAccounts[protocol] = byWallet
	}
	byKey, ok := byWallet[wallet.String()]
	if !ok {
		byKey = make(map[string]solana.PublicKey)
		byWallet[wallet.String()] = byKey
	}
	byKey[nativeKey] = addr
}

// GetStakeAccount locates the account that tracks a wallet's stake in
// one farm. Saber and Orca stake accounts are PDAs and always resolve;
// Raydium stake accounts are plain keypair accounts, so found is false
// until discovery sees one on chain and the caller has to create a
// fresh account when staking for the first time.
func (c *Client) GetStakeAccount(ctx context.Context, wallet solana.PublicKey, farmName string) (solana.PublicKey, bool, error) {
	farm, err := c.GetFarm(ctx, farmName)
	if err != nil {
		return solana.PublicKey{}, false, err
	}
	switch farm.Route.Protocol {
	case types.ProtocolRaydium:
		return c.raydiumStakeAccount(ctx, wallet, farm)
	case types.ProtocolSaber:
		quarry := farm.Route.Saber.Quarry
		if addr, ok := c.stakeCacheLookup(types.ProtocolSaber, wallet, quarry.String()); ok {
			return addr, true, nil
		}
		addr, err := c.registry.SaberMinerAddress(quarry, wallet)
		if err != nil {
			return solana.PublicKey{}, false, err
		}
		c.stakeCacheStore(types.ProtocolSaber, wallet, quarry.String(), addr)
		return addr, true, nil
	case types.ProtocolOrca:
		farmID := farm.Route.Orca.FarmID
		if addr, ok := c.stakeCacheLookup(types.ProtocolOrca, wallet, farmID.String()); ok {
			return addr, true, nil
		}
		addr, err := registry.OrcaFarmerAddress(farm.FarmProgramID, farmID, wallet)
		if err != nil {
			return solana.PublicKey{}, false, err
		}
		c.stakeCacheStore(types.ProtocolOrca, wallet, farmID.String(), addr)
		return addr, true, nil
	}
	return solana.PublicKey{}, false, common.ValueErrorf("farm %q has unsupported protocol", farmName)
}

// raydiumStakeAccount scans the farm program for the wallet's stake
// accounts. The scan is expensive, so every account it turns up is
// cached, not just the one for the requested farm.
func (c *Client) raydiumStakeAccount(ctx context.Context, wallet solana.PublicKey, farm *types.Farm) (solana.PublicKey, bool, error) {
	farmID := farm.Route.Raydium.FarmID
	if addr, ok := c.stakeCacheLookup(types.ProtocolRaydium, wallet, farmID.String()); ok {
		return addr, true, nil
	}

	accounts, err := c.ledger.GetProgramAccounts(ctx, farm.FarmProgramID, raydiumStakeWalletOffset, wallet[:])
	if err != nil {
		return solana.PublicKey{}, false, fmt.Errorf("scan stake accounts: %w", err)
	}
	v4 := farm.Version >= 4
	for _, acc := range accounts {
		info, err := DecodeRaydiumUserStakeInfo(acc.Data, v4)
		if err != nil {
			c.logger.Debugw("skipping undecodable stake account", "account", acc.Pubkey, "err", err)
			continue
		}
		c.stakeCacheStore(types.ProtocolRaydium, wallet, info.FarmID.String(), acc.Pubkey)
	}

	addr, ok := c.stakeCacheLookup(types.ProtocolRaydium, wallet, farmID.String())
	return addr, ok, nil
}

// GetUserStakeBalance returns a wallet's staked LP amount in one farm,
// in whole tokens. Wallets with no stake account balance at zero.
func (c *Client) GetUserStakeBalance(ctx context.Context, wallet solana.PublicKey, farmName string) (float64, error) {
	farm, err := c.GetFarm(ctx, farmName)
	if err != nil {
		return 0, err
	}
	switch farm.Route.Protocol {
	case types.ProtocolRaydium, types.ProtocolSaber:
		stakeAccount, found, err := c.GetStakeAccount(ctx, wallet, farmName)
		if err != nil || !found {
			return 0, err
		}
		data, err := c.ledger.GetAccountData(ctx, stakeAccount)
		if err != nil {
			// PDA derivations may not exist on chain yet
			if errors.Is(err, common.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		var balance uint64
		if farm.Route.Protocol == types.ProtocolRaydium {
			info, err := DecodeRaydiumUserStakeInfo(data, farm.Version >= 4)
			if err != nil {
				return 0, err
			}
			balance = info.DepositBalance
		} else {
			balance, err = decodeSaberMinerBalance(data)
			if err != nil {
				return 0, err
			}
		}
		if farm.LpTokenRef == nil {
			return 0, common.ValueErrorf("farm %q has no lp token", farmName)
		}
		lpToken, err := c.GetTokenByRef(ctx, *farm.LpTokenRef)
		if err != nil {
			return 0, err
		}
		return common.UILamportsToTokens(balance, lpToken.Decimals), nil
	case types.ProtocolOrca:
		// orca wallets hold a farm token that mirrors the stake
		farmToken, err := c.GetTokenByRef(ctx, farm.Route.Orca.FarmTokenRef)
		if err != nil {
			return 0, err
		}
		ata, _, err := solana.FindAssociatedTokenAddress(wallet, farmToken.Mint)
		if err != nil {
			return 0, err
		}
		balance, err := c.ledger.GetTokenBalance(ctx, ata)
		if errors.Is(err, common.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return common.UILamportsToTokens(balance, farmToken.Decimals), nil
	}
	return 0, common.ValueErrorf("farm %q has unsupported protocol", farmName)
}
