// Package ledger is the client's only window onto a Solana node. The
// Client interface covers exactly the RPC surface the rest of the
// module needs, so tests can substitute a fake without a network.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// KeyedAccount pairs an account address with its raw data, as returned
// by program account scans.
type KeyedAccount struct {
	Pubkey solana.PublicKey
	Data   []byte
}

// Client reads accounts from and submits transactions to a ledger
// node. Implementations must return common.ErrRecordNotFound for
// missing accounts and wrap node failures in common.RemoteError.
type Client interface {
	// GetAccountData fetches one account's raw data.
	GetAccountData(ctx context.Context, key solana.PublicKey) ([]byte, error)

	// GetMultipleAccounts fetches many accounts in directory order.
	// Missing accounts come back as nil entries. Implementations page
	// the request as needed.
	GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([][]byte, error)

	// GetProgramAccounts scans a program's accounts, keeping those
	// whose data matches want at the byte offset.
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, offset uint64, want []byte) ([]KeyedAccount, error)

	// GetBalance returns an account's lamport balance.
	GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error)

	// GetTokenBalance returns the raw token amount held by an SPL
	// token account.
	GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)

	// GetTokenSupply returns a mint's raw total supply.
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)

	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	IsBlockhashValid(ctx context.Context, hash solana.Hash) (bool, error)

	// SendTransaction submits a signed transaction with preflight
	// checks enabled.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// ConfirmTransaction blocks until the signature reaches confirmed
	// commitment or ctx expires.
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}
