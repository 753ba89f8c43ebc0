package types

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// VaultStrategy identifies the automated strategy a vault runs.
type VaultStrategy uint8

const (
	// StrategyStakeLpCompoundRewards stakes the vault's LP tokens in
	// the underlying farm and reinvests harvested rewards.
	StrategyStakeLpCompoundRewards VaultStrategy = iota
)

func (s VaultStrategy) String() string {
	if s == StrategyStakeLpCompoundRewards {
		return "StakeLpCompoundRewards"
	}
	return "Unknown"
}

// Vault is the directory record for one auto-compounding vault built on
// top of a pool and its farm.
type Vault struct {
	Name           string
	Version        uint16
	RefdbIndex     uint32
	RefdbCounter   uint16
	VaultProgramID solana.PublicKey
	VaultAuthority solana.PublicKey
	VaultTokenRef  solana.PublicKey
	InfoAccount    solana.PublicKey
	AdminAccount   solana.PublicKey
	FeesAccountA   *solana.PublicKey
	FeesAccountB   *solana.PublicKey

	Strategy            VaultStrategy
	PoolRef             solana.PublicKey
	FarmRef             solana.PublicKey
	LpTokenCustody      solana.PublicKey
	TokenACustody       solana.PublicKey
	TokenBCustody       *solana.PublicKey
	TokenARewardCustody solana.PublicKey
	TokenBRewardCustody *solana.PublicKey
	VaultStakeInfo      solana.PublicKey
}

func (v *Vault) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = expectDiscriminator(dec, DiscriminatorVault, "vault"); err != nil {
		return err
	}
	if v.Name, err = readName(dec); err != nil {
		return err
	}
	if v.Version, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if v.RefdbIndex, err = dec.ReadUint32(bin.LE); err != nil {
		return err
	}
	if v.RefdbCounter, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	for _, dst := range []*solana.PublicKey{
		&v.VaultProgramID, &v.VaultAuthority, &v.VaultTokenRef,
		&v.InfoAccount, &v.AdminAccount,
	} {
		if *dst, err = readPubkey(dec); err != nil {
			return err
		}
	}
	if v.FeesAccountA, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if v.FeesAccountB, err = readOptionPubkey(dec); err != nil {
		return err
	}
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	v.Strategy = VaultStrategy(tag)
	if v.Strategy != StrategyStakeLpCompoundRewards {
		return common.ValueErrorf("unknown vault strategy tag %d", tag)
	}
	for _, dst := range []*solana.PublicKey{
		&v.PoolRef, &v.FarmRef, &v.LpTokenCustody, &v.TokenACustody,
	} {
		if *dst, err = readPubkey(dec); err != nil {
			return err
		}
	}
	if v.TokenBCustody, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if v.TokenARewardCustody, err = readPubkey(dec); err != nil {
		return err
	}
	if v.TokenBRewardCustody, err = readOptionPubkey(dec); err != nil {
		return err
	}
	v.VaultStakeInfo, err = readPubkey(dec)
	return err
}

func (v *Vault) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(DiscriminatorVault); err != nil {
		return err
	}
	if err := writeName(enc, v.Name); err != nil {
		return err
	}
	if err := enc.WriteUint16(v.Version, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint32(v.RefdbIndex, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint16(v.RefdbCounter, bin.LE); err != nil {
		return err
	}
	for _, key := range []solana.PublicKey{
		v.VaultProgramID, v.VaultAuthority, v.VaultTokenRef,
		v.InfoAccount, v.AdminAccount,
	} {
		if err := writePubkey(enc, key); err != nil {
			return err
		}
	}
	if err := writeOptionPubkey(enc, v.FeesAccountA); err != nil {
		return err
	}
	if err := writeOptionPubkey(enc, v.FeesAccountB); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(v.Strategy)); err != nil {
		return err
	}
	for _, key := range []solana.PublicKey{
		v.PoolRef, v.FarmRef, v.LpTokenCustody, v.TokenACustody,
	} {
		if err := writePubkey(enc, key); err != nil {
			return err
		}
	}
	if err := writeOptionPubkey(enc, v.TokenBCustody); err != nil {
		return err
	}
	if err := writePubkey(enc, v.TokenARewardCustody); err != nil {
		return err
	}
	if err := writeOptionPubkey(enc, v.TokenBRewardCustody); err != nil {
		return err
	}
	return writePubkey(enc, v.VaultStakeInfo)
}

// DecodeVault parses a vault account image.
func DecodeVault(data []byte) (*Vault, error) {
	var v Vault
	if err := bin.NewBinDecoder(data).Decode(&v); err != nil {
		return nil, &common.ParseError{What: "vault account", Err: err}
	}
	return &v, nil
}
