package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/solfarms/solfarm/account"
	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/names"
	"github.com/solfarms/solfarm/types"
)

const solDecimals = 9

// GetAssociatedTokenAddress returns where a wallet holds one directory
// token.
func (c *Client) GetAssociatedTokenAddress(ctx context.Context, wallet solana.PublicKey, tokenName string) (solana.PublicKey, error) {
	tok, err := c.GetToken(ctx, tokenName)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return walletTokenAccount(wallet, tok)
}

// HasActiveTokenAccount reports whether the wallet's associated account
// for the token exists on chain.
func (c *Client) HasActiveTokenAccount(ctx context.Context, wallet solana.PublicKey, tokenName string) (bool, error) {
	addr, err := c.GetAssociatedTokenAddress(ctx, wallet, tokenName)
	if err != nil {
		return false, err
	}
	if _, err := c.ledger.GetAccountData(ctx, addr); err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetWalletBalance returns a wallet's native balance in SOL.
func (c *Client) GetWalletBalance(ctx context.Context, wallet solana.PublicKey) (float64, error) {
	lamports, err := c.ledger.GetBalance(ctx, wallet)
	if err != nil {
		return 0, err
	}
	return common.UILamportsToTokens(lamports, solDecimals), nil
}

// GetTokenAccountBalance returns the wallet's holding of one directory
// token, in whole tokens. A missing account balances at zero.
func (c *Client) GetTokenAccountBalance(ctx context.Context, wallet solana.PublicKey, tokenName string) (float64, error) {
	tok, err := c.GetToken(ctx, tokenName)
	if err != nil {
		return 0, err
	}
	addr, err := walletTokenAccount(wallet, tok)
	if err != nil {
		return 0, err
	}
	raw, err := c.ledger.GetTokenBalance(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return common.UILamportsToTokens(raw, tok.Decimals), nil
}

// NewInstructionCreateTokenAccount builds the associated account for
// one directory token, funded by the wallet itself.
func (c *Client) NewInstructionCreateTokenAccount(ctx context.Context, wallet solana.PublicKey, tokenName string) (solana.Instruction, error) {
	tok, err := c.GetToken(ctx, tokenName)
	if err != nil {
		return nil, err
	}
	return associatedtokenaccount.NewCreateInstruction(wallet, wallet, tok.Mint).Build(), nil
}

// NewInstructionCloseTokenAccount closes the wallet's associated token
// account, returning the rent (and any wrapped SOL) to the wallet.
func (c *Client) NewInstructionCloseTokenAccount(ctx context.Context, wallet solana.PublicKey, tokenName string) (solana.Instruction, error) {
	addr, err := c.GetAssociatedTokenAddress(ctx, wallet, tokenName)
	if err != nil {
		return nil, err
	}
	return token.NewCloseAccountInstruction(addr, wallet, wallet, nil).Build(), nil
}

// NewInstructionTransfer moves native SOL between wallets.
func (c *Client) NewInstructionTransfer(wallet, destination solana.PublicKey, uiAmount float64) (solana.Instruction, error) {
	if uiAmount <= 0 {
		return nil, common.ValueErrorf("invalid transfer amount %f", uiAmount)
	}
	lamports := common.TokensToUILamports(uiAmount, solDecimals)
	return system.NewTransferInstruction(lamports, wallet, destination).Build(), nil
}

// NewInstructionTokenTransfer moves tokens between the associated
// accounts of two wallets.
func (c *Client) NewInstructionTokenTransfer(ctx context.Context, wallet, destinationWallet solana.PublicKey, tokenName string, uiAmount float64) (solana.Instruction, error) {
	if uiAmount <= 0 {
		return nil, common.ValueErrorf("invalid transfer amount %f", uiAmount)
	}
	tok, err := c.GetToken(ctx, tokenName)
	if err != nil {
		return nil, err
	}
	source, err := walletTokenAccount(wallet, tok)
	if err != nil {
		return nil, err
	}
	destination, err := walletTokenAccount(destinationWallet, tok)
	if err != nil {
		return nil, err
	}
	amount := common.TokensToUILamports(uiAmount, tok.Decimals)
	return token.NewTransferInstruction(amount, source, destination, wallet, nil).Build(), nil
}

// NewInstructionSyncTokenBalance updates a wrapped SOL account's token
// balance after a native transfer into it.
func (c *Client) NewInstructionSyncTokenBalance(ctx context.Context, wallet solana.PublicKey, tokenName string) (solana.Instruction, error) {
	addr, err := c.GetAssociatedTokenAddress(ctx, wallet, tokenName)
	if err != nil {
		return nil, err
	}
	return token.NewSyncNativeInstruction(addr).Build(), nil
}

// NewInstructionsWrapSOL moves native SOL into the wallet's wrapped SOL
// account, creating it first when missing.
func (c *Client) NewInstructionsWrapSOL(ctx context.Context, wallet solana.PublicKey, uiAmount float64) ([]solana.Instruction, error) {
	if uiAmount <= 0 {
		return nil, common.ValueErrorf("invalid wrap amount %f", uiAmount)
	}
	var out []solana.Instruction
	active, err := c.HasActiveTokenAccount(ctx, wallet, "SOL")
	if err != nil {
		return nil, err
	}
	if !active {
		inst, err := c.NewInstructionCreateTokenAccount(ctx, wallet, "SOL")
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	addr, err := c.GetAssociatedTokenAddress(ctx, wallet, "SOL")
	if err != nil {
		return nil, err
	}
	lamports := common.TokensToUILamports(uiAmount, solDecimals)
	out = append(out,
		system.NewTransferInstruction(lamports, wallet, addr).Build(),
		token.NewSyncNativeInstruction(addr).Build(),
	)
	return out, nil
}

func (c *Client) isWrappedSOL(tok *types.Token) bool {
	return tok.Mint.Equals(solana.WrappedSol)
}

// checkTokenAccount verifies the wallet can pay uiAmount of one token.
// It queues a create instruction when the associated account is missing
// and wrap instructions when the token is wrapped SOL backed by native
// balance, and fails with ErrInsufficientBalance otherwise.
func (c *Client) checkTokenAccount(ctx context.Context, wallet solana.PublicKey, tok *types.Token, uiAmount float64, inst *[]solana.Instruction) error {
	addr, err := walletTokenAccount(wallet, tok)
	if err != nil {
		return err
	}

	balance := 0.0
	active := true
	raw, err := c.ledger.GetTokenBalance(ctx, addr)
	switch {
	case err == nil:
		balance = common.UILamportsToTokens(raw, tok.Decimals)
	case errors.Is(err, common.ErrRecordNotFound):
		active = false
	default:
		return err
	}

	if !active {
		*inst = append(*inst, associatedtokenaccount.NewCreateInstruction(wallet, wallet, tok.Mint).Build())
	}
	if uiAmount <= 0 || balance >= uiAmount {
		return nil
	}

	if c.isWrappedSOL(tok) {
		native, err := c.GetWalletBalance(ctx, wallet)
		if err != nil {
			return err
		}
		missing := uiAmount - balance
		if native >= missing {
			lamports := common.TokensToUILamports(missing, solDecimals)
			*inst = append(*inst,
				system.NewTransferInstruction(lamports, wallet, addr).Build(),
				token.NewSyncNativeInstruction(addr).Build(),
			)
			return nil
		}
	}
	return fmt.Errorf("%w: token %s", common.ErrInsufficientBalance, tok.Name)
}

// CheckPoolAccounts runs the pre-flight for a pool operation: the
// wallet must hold active accounts for both pool tokens and the LP
// token, with enough balance for the requested amounts. Remedial
// instructions are appended to inst.
func (c *Client) CheckPoolAccounts(ctx context.Context, wallet solana.PublicKey, poolName string, uiAmountA, uiAmountB, uiAmountLp float64, inst *[]solana.Instruction) error {
	pool, err := c.GetPool(ctx, poolName)
	if err != nil {
		return err
	}
	tokens, err := c.poolTokens(ctx, pool)
	if err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, tokens.tokenA, uiAmountA, inst); err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, tokens.tokenB, uiAmountB, inst); err != nil {
		return err
	}
	return c.checkTokenAccount(ctx, wallet, tokens.lp, uiAmountLp, inst)
}

// CheckFarmAccounts runs the pre-flight for a farm operation: active
// accounts for the LP token and every reward token, with enough LP
// balance to stake.
func (c *Client) CheckFarmAccounts(ctx context.Context, wallet solana.PublicKey, farmName string, uiStakeAmount float64, inst *[]solana.Instruction) error {
	farm, err := c.GetFarm(ctx, farmName)
	if err != nil {
		return err
	}
	lpToken, err := c.tokenByRef(ctx, farm.LpTokenRef, "farm lp")
	if err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, lpToken, uiStakeAmount, inst); err != nil {
		return err
	}
	rewardA, err := c.tokenByRef(ctx, farm.RewardTokenARef, "farm first reward")
	if err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, rewardA, 0, inst); err != nil {
		return err
	}
	if farm.RewardTokenBRef == nil {
		return nil
	}
	rewardB, err := c.GetTokenByRef(ctx, *farm.RewardTokenBRef)
	if err != nil {
		return err
	}
	return c.checkTokenAccount(ctx, wallet, rewardB, 0, inst)
}

// AddLiquidityPool is the turn-key deposit: pre-flight checks, the
// deposit itself, and submission as one instruction sequence.
func (c *Client) AddLiquidityPool(ctx context.Context, signer account.Signer, poolName string, maxTokenA, maxTokenB float64) ([]solana.Signature, error) {
	if maxTokenA < 0 || maxTokenB < 0 || (maxTokenA == 0 && maxTokenB == 0) {
		return nil, common.ValueErrorf("invalid liquidity amounts %f and %f for pool %s", maxTokenA, maxTokenB, poolName)
	}
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckPoolAccounts(ctx, wallet, poolName, maxTokenA, maxTokenB, 0, &inst); err != nil {
		return nil, err
	}
	add, err := c.NewInstructionAddLiquidityPool(ctx, wallet, poolName, maxTokenA, maxTokenB)
	if err != nil {
		return nil, err
	}
	inst = append(inst, add)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// RemoveLiquidityPool is the turn-key withdrawal.
func (c *Client) RemoveLiquidityPool(ctx context.Context, signer account.Signer, poolName string, uiAmount float64) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckPoolAccounts(ctx, wallet, poolName, 0, 0, uiAmount, &inst); err != nil {
		return nil, err
	}
	remove, err := c.NewInstructionRemoveLiquidityPool(ctx, wallet, poolName, uiAmount)
	if err != nil {
		return nil, err
	}
	inst = append(inst, remove)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// Stake is the turn-key farm deposit.
func (c *Client) Stake(ctx context.Context, signer account.Signer, farmName string, uiAmount float64) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckFarmAccounts(ctx, wallet, farmName, uiAmount, &inst); err != nil {
		return nil, err
	}
	stake, err := c.NewInstructionStake(ctx, wallet, farmName, uiAmount)
	if err != nil {
		return nil, err
	}
	inst = append(inst, stake)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// Unstake is the turn-key farm withdrawal.
func (c *Client) Unstake(ctx context.Context, signer account.Signer, farmName string, uiAmount float64) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckFarmAccounts(ctx, wallet, farmName, 0, &inst); err != nil {
		return nil, err
	}
	unstake, err := c.NewInstructionUnstake(ctx, wallet, farmName, uiAmount)
	if err != nil {
		return nil, err
	}
	inst = append(inst, unstake)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// Harvest is the turn-key reward claim.
func (c *Client) Harvest(ctx context.Context, signer account.Signer, farmName string) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckFarmAccounts(ctx, wallet, farmName, 0, &inst); err != nil {
		return nil, err
	}
	harvest, err := c.NewInstructionHarvest(ctx, wallet, farmName)
	if err != nil {
		return nil, err
	}
	inst = append(inst, harvest)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// Swap is the turn-key token swap.
func (c *Client) Swap(ctx context.Context, signer account.Signer, protocol types.Protocol, fromToken, toToken string, uiAmountIn, minUIAmountOut float64) ([]solana.Signature, error) {
	if uiAmountIn <= 0 {
		return nil, common.ValueErrorf("invalid swap amount %f", uiAmountIn)
	}
	wallet := signer.PublicKey()
	pools, err := c.FindPools(ctx, protocol, fromToken, toToken)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, common.ValueErrorf("no %s pool for %s-%s", protocol, fromToken, toToken)
	}
	pool := pools[0]

	tokenA, _, err := names.ExtractTokenNames(pool.Name)
	if err != nil {
		return nil, err
	}
	var inst []solana.Instruction
	if tokenA == fromToken {
		err = c.CheckPoolAccounts(ctx, wallet, pool.Name, uiAmountIn, 0, 0, &inst)
	} else {
		err = c.CheckPoolAccounts(ctx, wallet, pool.Name, 0, uiAmountIn, 0, &inst)
	}
	if err != nil {
		return nil, err
	}
	swap, err := c.NewInstructionSwap(ctx, wallet, protocol, fromToken, toToken, uiAmountIn, minUIAmountOut)
	if err != nil {
		return nil, err
	}
	inst = append(inst, swap)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}
