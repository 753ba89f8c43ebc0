package types

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// PoolRoute carries the protocol-specific accounts needed to trade
// against one AMM pool. Exactly one variant is set, selected by
// Protocol.
type PoolRoute struct {
	Protocol Protocol
	Raydium  *RaydiumPoolRoute
	Saber    *SaberPoolRoute
	Orca     *OrcaPoolRoute
}

type RaydiumPoolRoute struct {
	AmmID              solana.PublicKey
	AmmAuthority       solana.PublicKey
	AmmOpenOrders      solana.PublicKey
	AmmTarget          solana.PublicKey
	SerumProgramID     solana.PublicKey
	SerumMarket        solana.PublicKey
	SerumCoinVault     solana.PublicKey
	SerumPcVault       solana.PublicKey
	SerumVaultSigner   solana.PublicKey
	WithdrawQueue      solana.PublicKey
	TempLpTokenAccount solana.PublicKey

	// Market-making accounts, present only for pools whose swaps go
	// through the order book.
	SerumBids       *solana.PublicKey
	SerumAsks       *solana.PublicKey
	SerumEventQueue *solana.PublicKey
}

type SaberPoolRoute struct {
	Swap          solana.PublicKey
	SwapAuthority solana.PublicKey
	FeesTokenA    solana.PublicKey
	FeesTokenB    solana.PublicKey
}

type OrcaPoolRoute struct {
	AmmID        solana.PublicKey
	AmmAuthority solana.PublicKey
	FeesAccount  solana.PublicKey
}

// Pool is the directory record for one AMM liquidity pool.
type Pool struct {
	Name          string
	Version       uint16
	RefdbIndex    uint32
	RefdbCounter  uint16
	PoolProgramID solana.PublicKey
	TokenARef     *solana.PublicKey
	TokenBRef     *solana.PublicKey
	LpTokenRef    *solana.PublicKey
	TokenAAccount *solana.PublicKey
	TokenBAccount *solana.PublicKey
	Route         PoolRoute
}

func (p *Pool) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = expectDiscriminator(dec, DiscriminatorPool, "pool"); err != nil {
		return err
	}
	if p.Name, err = readName(dec); err != nil {
		return err
	}
	if p.Version, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if p.RefdbIndex, err = dec.ReadUint32(bin.LE); err != nil {
		return err
	}
	if p.RefdbCounter, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if p.PoolProgramID, err = readPubkey(dec); err != nil {
		return err
	}
	if p.TokenARef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if p.TokenBRef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if p.LpTokenRef, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if p.TokenAAccount, err = readOptionPubkey(dec); err != nil {
		return err
	}
	if p.TokenBAccount, err = readOptionPubkey(dec); err != nil {
		return err
	}
	return p.Route.unmarshal(dec)
}

func (r *PoolRoute) unmarshal(dec *bin.Decoder) error {
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	r.Protocol = Protocol(tag)
	switch r.Protocol {
	case ProtocolRaydium:
		var v RaydiumPoolRoute
		for _, dst := range []*solana.PublicKey{
			&v.AmmID, &v.AmmAuthority, &v.AmmOpenOrders, &v.AmmTarget,
			&v.SerumProgramID, &v.SerumMarket, &v.SerumCoinVault,
			&v.SerumPcVault, &v.SerumVaultSigner, &v.WithdrawQueue,
			&v.TempLpTokenAccount,
		} {
			if *dst, err = readPubkey(dec); err != nil {
				return err
			}
		}
		for _, dst := range []**solana.PublicKey{
			&v.SerumBids, &v.SerumAsks, &v.SerumEventQueue,
		} {
			if *dst, err = readOptionPubkey(dec); err != nil {
				return err
			}
		}
		r.Raydium = &v
	case ProtocolSaber:
		var v SaberPoolRoute
		for _, dst := range []*solana.PublicKey{
			&v.Swap, &v.SwapAuthority, &v.FeesTokenA, &v.FeesTokenB,
		} {
			if *dst, err = readPubkey(dec); err != nil {
				return err
			}
		}
		r.Saber = &v
	case ProtocolOrca:
		var v OrcaPoolRoute
		for _, dst := range []*solana.PublicKey{
			&v.AmmID, &v.AmmAuthority, &v.FeesAccount,
		} {
			if *dst, err = readPubkey(dec); err != nil {
				return err
			}
		}
		r.Orca = &v
	default:
		return common.ValueErrorf("unknown pool route tag %d", tag)
	}
	return nil
}

func (p *Pool) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(DiscriminatorPool); err != nil {
		return err
	}
	if err := writeName(enc, p.Name); err != nil {
		return err
	}
	if err := enc.WriteUint16(p.Version, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint32(p.RefdbIndex, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint16(p.RefdbCounter, bin.LE); err != nil {
		return err
	}
	if err := writePubkey(enc, p.PoolProgramID); err != nil {
		return err
	}
	for _, key := range []*solana.PublicKey{
		p.TokenARef, p.TokenBRef, p.LpTokenRef, p.TokenAAccount, p.TokenBAccount,
	} {
		if err := writeOptionPubkey(enc, key); err != nil {
			return err
		}
	}
	return p.Route.marshal(enc)
}

func (r *PoolRoute) marshal(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(r.Protocol)); err != nil {
		return err
	}
	var keys []solana.PublicKey
	var opts []*solana.PublicKey
	switch r.Protocol {
	case ProtocolRaydium:
		v := r.Raydium
		keys = []solana.PublicKey{
			v.AmmID, v.AmmAuthority, v.AmmOpenOrders, v.AmmTarget,
			v.SerumProgramID, v.SerumMarket, v.SerumCoinVault,
			v.SerumPcVault, v.SerumVaultSigner, v.WithdrawQueue,
			v.TempLpTokenAccount,
		}
		opts = []*solana.PublicKey{v.SerumBids, v.SerumAsks, v.SerumEventQueue}
	case ProtocolSaber:
		v := r.Saber
		keys = []solana.PublicKey{v.Swap, v.SwapAuthority, v.FeesTokenA, v.FeesTokenB}
	case ProtocolOrca:
		v := r.Orca
		keys = []solana.PublicKey{v.AmmID, v.AmmAuthority, v.FeesAccount}
	default:
		return common.ValueErrorf("unknown pool route %d", r.Protocol)
	}
	for _, key := range keys {
		if err := writePubkey(enc, key); err != nil {
			return err
		}
	}
	for _, key := range opts {
		if err := writeOptionPubkey(enc, key); err != nil {
			return err
		}
	}
	return nil
}

// DecodePool parses a pool account image.
func DecodePool(data []byte) (*Pool, error) {
	var p Pool
	if err := bin.NewBinDecoder(data).Decode(&p); err != nil {
		return nil, &common.ParseError{What: "pool account", Err: err}
	}
	return &p, nil
}
