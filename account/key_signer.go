package account

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type KeySigner struct {
	key solana.PrivateKey
}

func NewKeySigner(key solana.PrivateKey) *KeySigner {
	return &KeySigner{key}
}

// NewKeySignerFromFile loads a keypair in the JSON array format the
// solana CLI writes.
func NewKeySignerFromFile(path string) (*KeySigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't load keypair from %s: %w", path, err)
	}
	return &KeySigner{key}, nil
}

// NewKeySignerFromBase58 parses an inline base58 private key.
func NewKeySignerFromBase58(encoded string) (*KeySigner, error) {
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse private key: %w", err)
	}
	return &KeySigner{key}, nil
}

// NewEphemeralSigner generates a throwaway keypair, used when an
// instruction needs a fresh account it can sign for.
func NewEphemeralSigner() *KeySigner {
	return &KeySigner{solana.NewWallet().PrivateKey}
}

func (ks *KeySigner) PublicKey() solana.PublicKey {
	return ks.key.PublicKey()
}

func (ks *KeySigner) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(ks.key.PublicKey()) {
			return &ks.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("couldn't sign transaction: %w", err)
	}
	return nil
}
