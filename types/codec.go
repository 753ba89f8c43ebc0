package types

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/refdb"
)

// Account discriminators. The first byte of every serialized entity
// identifies its kind so a mis-targeted fetch fails fast instead of
// decoding garbage.
const (
	DiscriminatorToken uint8 = iota + 1
	DiscriminatorPool
	DiscriminatorFarm
	DiscriminatorVault
	DiscriminatorFund
)

func expectDiscriminator(dec *bin.Decoder, want uint8, what string) error {
	got, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: unexpected discriminator %d, want %d", what, got, want)
	}
	return nil
}

func readName(dec *bin.Decoder) (string, error) {
	buf, err := dec.ReadNBytes(refdb.MaxNameLen)
	if err != nil {
		return "", err
	}
	return refdb.UnpackName(buf), nil
}

func writeName(enc *bin.Encoder, name string) error {
	packed, err := refdb.PackName(name)
	if err != nil {
		return err
	}
	return enc.WriteBytes(packed[:], false)
}

func readPubkey(dec *bin.Decoder) (solana.PublicKey, error) {
	buf, err := dec.ReadNBytes(32)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(buf), nil
}

func writePubkey(enc *bin.Encoder, key solana.PublicKey) error {
	return enc.WriteBytes(key[:], false)
}

// Optional pubkeys are stored as a presence flag followed by the key
// bytes when present.
func readOptionPubkey(dec *bin.Decoder) (*solana.PublicKey, error) {
	flag, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	key, err := readPubkey(dec)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func writeOptionPubkey(enc *bin.Encoder, key *solana.PublicKey) error {
	if key == nil {
		return enc.WriteUint8(0)
	}
	if err := enc.WriteUint8(1); err != nil {
		return err
	}
	return writePubkey(enc, *key)
}
