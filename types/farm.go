package types

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// FarmRoute carries the protocol-specific accounts of one staking farm.
type FarmRoute struct {
	Protocol Protocol
	Raydium  *RaydiumFarmRoute
	Saber    *SaberFarmRoute
	Orca     *OrcaFarmRoute
}

type RaydiumFarmRoute struct {
	FarmID             solana.PublicKey
	FarmAuthority      solana.PublicKey
	FarmLpTokenAccount solana.PublicKey
	FarmRewardTokenA   solana.PublicKey
	FarmRewardTokenB   *solana.PublicKey
}

type SaberFarmRoute struct {
	Quarry   solana.PublicKey
	Rewarder solana.PublicKey
}

type OrcaFarmRoute struct {
	FarmID           solana.PublicKey
	FarmAuthority    solana.PublicKey
	FarmTokenRef     solana.PublicKey
	BaseTokenVault   solana.PublicKey
	RewardTokenVault solana.PublicKey
}

// Farm is the directory record for one yield farm.
type Farm struct {
	Name            string
	Version         uint16
	RefdbIndex      uint32
	RefdbCounter    uint16
	FarmProgramID   solana.PublicKey
	LpTokenRef      *solana.PublicKey
	RewardTokenARef *solana.PublicKey
	RewardTokenBRef *solana.PublicKey
	Route           FarmRoute
}

func (f *Farm) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = expectDiscriminator(dec, DiscriminatorFarm, "farm"); err != nil {
		return err
	}
	if f.Name, err = readName(dec); err != nil {
		return err
	}
	if f.Version, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if f.RefdbIndex, err = dec.ReadUint32(bin.LE); err != nil {
		return err
	}
	if f.RefdbCounter, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if f.FarmProgramID, err = readPubkey(dec); err != nil {
		return err
	}
	if f.LpTokenRef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if f.RewardTokenARef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if f.RewardTokenBRef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	return f.Route.unmarshal(dec)
}

func (r *FarmRoute) unmarshal(dec *bin.Decoder) error {
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	r.Protocol = Protocol(tag)
	switch r.Protocol {
	case ProtocolRaydium:
		var v RaydiumFarmRoute
		for _, dst := range []*solana.PublicKey{
			&v.FarmID, &v.FarmAuthority, &v.FarmLpTokenAccount, &v.FarmRewardTokenA,
		} {
			if *dst, err = readPubkey(dec); err != nil {
				return err
			}
		}
		if v.FarmRewardTokenB, err = readOptionPubkey(dec); err != nil {
			return err
		}
		r.Raydium = &v
	case ProtocolSaber:
		var v SaberFarmRoute
		if v.Quarry, err = readPubkey(dec); err != nil {
			return err
		}
		if v.Rewarder, err = readPubkey(dec); err != nil {
			return err
		}
		r.Saber = &v
	case ProtocolOrca:
		var v OrcaFarmRoute
		for _, dst := range []*solana.PublicKey{
			&v.FarmID, &v.FarmAuthority, &v.FarmTokenRef, &v.BaseTokenVault,
			&v.RewardTokenVault,
		} {
			if *dst, err = readPubkey(dec); err != nil {
				return err
			}
		}
		r.Orca = &v
	default:
		return common.ValueErrorf("unknown farm route tag %d", tag)
	}
	return nil
}

func (f *Farm) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(DiscriminatorFarm); err != nil {
		return err
	}
	if err := writeName(enc, f.Name); err != nil {
		return err
	}
	if err := enc.WriteUint16(f.Version, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint32(f.RefdbIndex, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint16(f.RefdbCounter, bin.LE); err != nil {
		return err
	}
	if err := writePubkey(enc, f.FarmProgramID); err != nil {
		return err
	}
	for _, key := range []*solana.PublicKey{
		f.LpTokenRef, f.RewardTokenARef, f.RewardTokenBRef,
	} {
		if err := writeOptionPubkey(enc, key); err != nil {
			return err
		}
	}
	return f.Route.marshal(enc)
}

func (r *FarmRoute) marshal(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(r.Protocol)); err != nil {
		return err
	}
	switch r.Protocol {
	case ProtocolRaydium:
		v := r.Raydium
		for _, key := range []solana.PublicKey{
			v.FarmID, v.FarmAuthority, v.FarmLpTokenAccount, v.FarmRewardTokenA,
		} {
			if err := writePubkey(enc, key); err != nil {
				return err
			}
		}
		return writeOptionPubkey(enc, v.FarmRewardTokenB)
	case ProtocolSaber:
		if err := writePubkey(enc, r.Saber.Quarry); err != nil {
			return err
		}
		return writePubkey(enc, r.Saber.Rewarder)
	case ProtocolOrca:
		v := r.Orca
		for _, key := range []solana.PublicKey{
			v.FarmID, v.FarmAuthority, v.FarmTokenRef, v.BaseTokenVault,
			v.RewardTokenVault,
		} {
			if err := writePubkey(enc, key); err != nil {
				return err
			}
		}
		return nil
	}
	return common.ValueErrorf("unknown farm route %d", r.Protocol)
}

// DecodeFarm parses a farm account image.
func DecodeFarm(data []byte) (*Farm, error) {
	var f Farm
	if err := bin.NewBinDecoder(data).Decode(&f); err != nil {
		return nil, &common.ParseError{What: "farm account", Err: err}
	}
	return &f, nil
}
