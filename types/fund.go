package types

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// Fund is the directory record for one managed fund. Funds pool client
// deposits under a manager who allocates them across vaults and pools.
type Fund struct {
	Name                string
	Version             uint16
	RefdbIndex          uint32
	RefdbCounter        uint16
	FundProgramID       solana.PublicKey
	FundAuthority       solana.PublicKey
	FundManager         solana.PublicKey
	FundTokenRef        solana.PublicKey
	InfoAccount         solana.PublicKey
	MultisigAccount     solana.PublicKey
	VaultsAssetsInfo    solana.PublicKey
	CustodiesAssetsInfo solana.PublicKey
}

func (f *Fund) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = expectDiscriminator(dec, DiscriminatorFund, "fund"); err != nil {
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
	for _, dst := range []*solana.PublicKey{
		&f.FundProgramID, &f.FundAuthority, &f.FundManager, &f.FundTokenRef,
		&f.InfoAccount, &f.MultisigAccount, &f.VaultsAssetsInfo, &f.CustodiesAssetsInfo,
	} {
		if *dst, err = readPubkey(dec); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fund) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(DiscriminatorFund); err != nil {
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
	for _, key := range []solana.PublicKey{
		f.FundProgramID, f.FundAuthority, f.FundManager, f.FundTokenRef,
		f.InfoAccount, f.MultisigAccount, f.VaultsAssetsInfo, f.CustodiesAssetsInfo,
	} {
		if err := writePubkey(enc, key); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFund parses a fund account image.
func DecodeFund(data []byte) (*Fund, error) {
	var f Fund
	if err := bin.NewBinDecoder(data).Decode(&f); err != nil {
		return nil, &common.ParseError{What: "fund account", Err: err}
	}
	return &f, nil
}
