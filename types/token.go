package types

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// Token is the on-chain metadata record for one SPL mint known to the
// reference directory.
type Token struct {
	Name         string
	RefdbIndex   uint32
	RefdbCounter uint16
	Decimals     uint8
	Mint         solana.PublicKey
}

func (t *Token) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = expectDiscriminator(dec, DiscriminatorToken, "token"); err != nil {
		return err
	}
	if t.Name, err = readName(dec); err != nil {
		return err
	}
	if t.RefdbIndex, err = dec.ReadUint32(bin.LE); err != nil {
		return err
	}
	if t.RefdbCounter, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if t.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	t.Mint, err = readPubkey(dec)
	return err
}

func (t *Token) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(DiscriminatorToken); err != nil {
		return err
	}
	if err := writeName(enc, t.Name); err != nil {
		return err
	}
	if err := enc.WriteUint32(t.RefdbIndex, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint16(t.RefdbCounter, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint8(t.Decimals); err != nil {
		return err
	}
	return writePubkey(enc, t.Mint)
}

// DecodeToken parses a token account image.
func DecodeToken(data []byte) (*Token, error) {
	var t Token
	if err := bin.NewBinDecoder(data).Decode(&t); err != nil {
		return nil, &common.ParseError{What: "token account", Err: err}
	}
	return &t, nil
}
