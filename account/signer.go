package account

import (
	"github.com/gagliardetto/solana-go"
)

// Signer signs transactions for one wallet. The concrete type decides
// where the key material lives.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTx(tx *solana.Transaction) error
}
