package client

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/account"
	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// Fund program opcodes for the user-facing operations.
const (
	fundOpUserInit uint8 = iota
	fundOpRequestDeposit
	fundOpCancelDeposit
	fundOpRequestWithdrawal
	fundOpCancelWithdrawal
)

// fundUserAccounts resolves every account a fund user operation touches
// for one (wallet, fund, deposit token) triple.
type fundUserAccounts struct {
	fund      *types.Fund
	fundRef   solana.PublicKey
	fundToken *types.Token
	token     *types.Token
	tokenRef  solana.PublicKey

	userInfo      solana.PublicKey
	userRequests  solana.PublicKey
	userToken     solana.PublicKey
	userFundToken solana.PublicKey
	custody       solana.PublicKey
	custodyFees   solana.PublicKey
}

func (c *Client) fundUserAccounts(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string) (*fundUserAccounts, error) {
	fund, err := c.GetFund(ctx, fundName)
	if err != nil {
		return nil, err
	}
	out := &fundUserAccounts{fund: fund}
	if out.fundRef, err = c.GetFundRef(ctx, fundName); err != nil {
		return nil, err
	}
	if out.fundToken, err = c.GetTokenByRef(ctx, fund.FundTokenRef); err != nil {
		return nil, err
	}
	if out.token, err = c.GetToken(ctx, tokenName); err != nil {
		return nil, err
	}
	if out.tokenRef, err = c.GetTokenRef(ctx, tokenName); err != nil {
		return nil, err
	}
	if out.userInfo, err = registry.FundUserInfoAddress(fund.FundProgramID, wallet, fund.Name); err != nil {
		return nil, err
	}
	if out.userRequests, err = registry.FundUserRequestsAddress(fund.FundProgramID, wallet, fund.Name, out.token.Name); err != nil {
		return nil, err
	}
	if out.userToken, err = walletTokenAccount(wallet, out.token); err != nil {
		return nil, err
	}
	if out.userFundToken, err = walletTokenAccount(wallet, out.fundToken); err != nil {
		return nil, err
	}
	if out.custody, err = registry.FundWdCustodyAddress(fund.FundProgramID, fund.Name, out.token.Name); err != nil {
		return nil, err
	}
	if out.custodyFees, err = registry.FundTdCustodyFeesAddress(fund.FundProgramID, fund.Name, out.token.Name); err != nil {
		return nil, err
	}
	return out, nil
}

// requestAccounts is the account list shared by deposit and withdrawal
// requests. The fund program debits or credits the user's token
// accounts against the deposit/withdraw custody once a manager approves
// the request.
func (a *fundUserAccounts) requestAccounts(wallet solana.PublicKey) solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(wallet).SIGNER(),
		solana.Meta(a.fundRef),
		solana.Meta(a.fund.InfoAccount).WRITE(),
		solana.Meta(a.fund.FundAuthority),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(a.fundToken.Mint).WRITE(),
		solana.Meta(a.userInfo).WRITE(),
		solana.Meta(a.userRequests).WRITE(),
		solana.Meta(a.userToken).WRITE(),
		solana.Meta(a.userFundToken).WRITE(),
		solana.Meta(a.custody).WRITE(),
		solana.Meta(a.custodyFees).WRITE(),
		solana.Meta(a.tokenRef),
	}
}

// NewInstructionFundUserInit creates the per-user stats and request
// accounts of a fund for one deposit token.
func (c *Client) NewInstructionFundUserInit(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string) (solana.Instruction, error) {
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.Meta(wallet).WRITE().SIGNER(),
		solana.Meta(a.fundRef),
		solana.Meta(a.fund.InfoAccount).WRITE(),
		solana.Meta(wallet),
		solana.Meta(a.userInfo).WRITE(),
		solana.Meta(a.userRequests).WRITE(),
		solana.Meta(a.tokenRef),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(a.fund.FundProgramID, accounts, packAmmData(fundOpUserInit)), nil
}

// NewInstructionRequestDeposit asks the fund to accept a deposit of the
// given token. A zero amount requests depositing the wallet's full
// balance.
func (c *Client) NewInstructionRequestDeposit(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string, uiAmount float64) (solana.Instruction, error) {
	if uiAmount < 0 {
		return nil, common.ValueErrorf("invalid deposit amount %f for fund %s", uiAmount, fundName)
	}
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return nil, err
	}
	data := packAmmData(fundOpRequestDeposit, common.TokensToUILamports(uiAmount, a.token.Decimals))
	return solana.NewInstruction(a.fund.FundProgramID, a.requestAccounts(wallet), data), nil
}

// NewInstructionRequestWithdrawal asks the fund to redeem fund tokens
// for the given token. The amount is denominated in fund tokens; zero
// requests a full withdrawal.
func (c *Client) NewInstructionRequestWithdrawal(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string, uiAmount float64) (solana.Instruction, error) {
	if uiAmount < 0 {
		return nil, common.ValueErrorf("invalid withdrawal amount %f for fund %s", uiAmount, fundName)
	}
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return nil, err
	}
	data := packAmmData(fundOpRequestWithdrawal, common.TokensToUILamports(uiAmount, a.fundToken.Decimals))
	return solana.NewInstruction(a.fund.FundProgramID, a.requestAccounts(wallet), data), nil
}

// NewInstructionCancelDeposit withdraws a pending deposit request.
func (c *Client) NewInstructionCancelDeposit(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string) (solana.Instruction, error) {
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(a.fund.FundProgramID, a.requestAccounts(wallet), packAmmData(fundOpCancelDeposit)), nil
}

// NewInstructionCancelWithdrawal withdraws a pending withdrawal
// request.
func (c *Client) NewInstructionCancelWithdrawal(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string) (solana.Instruction, error) {
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(a.fund.FundProgramID, a.requestAccounts(wallet), packAmmData(fundOpCancelWithdrawal)), nil
}

// CheckFundAccounts queues whatever account setup a fund request still
// needs: both associated token accounts and the one-time user init.
func (c *Client) CheckFundAccounts(ctx context.Context, wallet solana.PublicKey, fundName, tokenName string, uiDepositAmount float64, inst *[]solana.Instruction) error {
	a, err := c.fundUserAccounts(ctx, wallet, fundName, tokenName)
	if err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, a.token, uiDepositAmount, inst); err != nil {
		return err
	}
	if err := c.checkTokenAccount(ctx, wallet, a.fundToken, 0, inst); err != nil {
		return err
	}
	if _, err := c.ledger.GetAccountData(ctx, a.userRequests); err != nil {
		if !errors.Is(err, common.ErrRecordNotFound) {
			return err
		}
		userInit, err := c.NewInstructionFundUserInit(ctx, wallet, fundName, tokenName)
		if err != nil {
			return err
		}
		*inst = append(*inst, userInit)
	}
	return nil
}

// RequestDeposit is the turn-key fund deposit request.
func (c *Client) RequestDeposit(ctx context.Context, signer account.Signer, fundName, tokenName string, uiAmount float64) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckFundAccounts(ctx, wallet, fundName, tokenName, uiAmount, &inst); err != nil {
		return nil, err
	}
	deposit, err := c.NewInstructionRequestDeposit(ctx, wallet, fundName, tokenName, uiAmount)
	if err != nil {
		return nil, err
	}
	inst = append(inst, deposit)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}

// RequestWithdrawal is the turn-key fund withdrawal request.
func (c *Client) RequestWithdrawal(ctx context.Context, signer account.Signer, fundName, tokenName string, uiAmount float64) ([]solana.Signature, error) {
	wallet := signer.PublicKey()
	var inst []solana.Instruction
	if err := c.CheckFundAccounts(ctx, wallet, fundName, tokenName, 0, &inst); err != nil {
		return nil, err
	}
	withdrawal, err := c.NewInstructionRequestWithdrawal(ctx, wallet, fundName, tokenName, uiAmount)
	if err != nil {
		return nil, err
	}
	inst = append(inst, withdrawal)
	return c.ExecuteInstructions(ctx, []account.Signer{signer}, inst)
}
