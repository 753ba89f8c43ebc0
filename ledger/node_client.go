package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/solfarms/solfarm/common"
)

// getMultipleAccountsPageSize is the node-side limit on one
// getMultipleAccounts call.
const getMultipleAccountsPageSize = 100

const confirmPollInterval = 500 * time.Millisecond

// NodeClient implements Client against a single RPC node.
type NodeClient struct {
	nodeURL    string
	client     *rpc.Client
	commitment rpc.CommitmentType
	logger     *zap.SugaredLogger
}

// NewNodeClient connects lazily; no network traffic happens until the
// first call.
func NewNodeClient(nodeURL string, logger *zap.SugaredLogger) *NodeClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &NodeClient{
		nodeURL:    nodeURL,
		client:     rpc.New(nodeURL),
		commitment: rpc.CommitmentConfirmed,
		logger:     logger,
	}
}

func (nc *NodeClient) NodeURL() string {
	return nc.nodeURL
}

// wrapRPCError converts node failures to the module's error taxonomy.
func wrapRPCError(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, common.ErrRecordNotFound)
	}
	remote := &common.RemoteError{Err: err}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		remote.Code = rpcErr.Code
		remote.Message = rpcErr.Message
	} else {
		remote.Message = err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		remote.Timeout = true
	}
	return fmt.Errorf("%s: %w", what, remote)
}

func (nc *NodeClient) GetAccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	res, err := nc.client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: nc.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, wrapRPCError(fmt.Sprintf("get account %s", key), err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("get account %s: %w", key, common.ErrRecordNotFound)
	}
	return res.Value.Data.GetBinary(), nil
}

func (nc *NodeClient) GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	out := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += getMultipleAccountsPageSize {
		end := start + getMultipleAccountsPageSize
		if end > len(keys) {
			end = len(keys)
		}
		nc.logger.Debugw("fetching account page", "from", start, "to", end)
		res, err := nc.client.GetMultipleAccountsWithOpts(ctx, keys[start:end], &rpc.GetMultipleAccountsOpts{
			Commitment: nc.commitment,
			Encoding:   solana.EncodingBase64,
		})
		if err != nil {
			return nil, wrapRPCError("get multiple accounts", err)
		}
		for _, acc := range res.Value {
			if acc == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, acc.Data.GetBinary())
		}
	}
	return out, nil
}

func (nc *NodeClient) GetProgramAccounts(ctx context.Context, program solana.PublicKey, offset uint64, want []byte) ([]KeyedAccount, error) {
	res, err := nc.client.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: nc.commitment,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: offset,
					Bytes:  solana.Base58(want),
				},
			},
		},
	})
	if err != nil {
		return nil, wrapRPCError(fmt.Sprintf("scan program %s", program), err)
	}
	out := make([]KeyedAccount, 0, len(res))
	for _, acc := range res {
		out = append(out, KeyedAccount{
			Pubkey: acc.Pubkey,
			Data:   acc.Account.Data.GetBinary(),
		})
	}
	return out, nil
}

func (nc *NodeClient) GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	res, err := nc.client.GetBalance(ctx, key, nc.commitment)
	if err != nil {
		return 0, wrapRPCError(fmt.Sprintf("get balance %s", key), err)
	}
	return res.Value, nil
}

func (nc *NodeClient) GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := nc.client.GetTokenAccountBalance(ctx, account, nc.commitment)
	if err != nil {
		return 0, wrapRPCError(fmt.Sprintf("get token balance %s", account), err)
	}
	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, &common.ParseError{What: "token balance", Err: err}
	}
	return amount, nil
}

func (nc *NodeClient) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	res, err := nc.client.GetTokenSupply(ctx, mint, nc.commitment)
	if err != nil {
		return 0, wrapRPCError(fmt.Sprintf("get token supply %s", mint), err)
	}
	supply, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, &common.ParseError{What: "token supply", Err: err}
	}
	return supply, nil
}

func (nc *NodeClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := nc.client.GetLatestBlockhash(ctx, nc.commitment)
	if err != nil {
		return solana.Hash{}, wrapRPCError("get latest blockhash", err)
	}
	return res.Value.Blockhash, nil
}

func (nc *NodeClient) IsBlockhashValid(ctx context.Context, hash solana.Hash) (bool, error) {
	res, err := nc.client.IsBlockhashValid(ctx, hash, nc.commitment)
	if err != nil {
		return false, wrapRPCError("check blockhash", err)
	}
	return res.Value, nil
}

func (nc *NodeClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := nc.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: nc.commitment,
	})
	if err != nil {
		return solana.Signature{}, wrapRPCError("send transaction", err)
	}
	return sig, nil
}

func (nc *NodeClient) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	for {
		res, err := nc.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return wrapRPCError(fmt.Sprintf("confirm %s", sig), err)
		}
		if len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return &common.RemoteError{Message: fmt.Sprintf("transaction %s failed: %v", sig, status.Err)}
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return wrapRPCError(fmt.Sprintf("confirm %s", sig), ctx.Err())
		case <-time.After(confirmPollInterval):
		}
	}
}
