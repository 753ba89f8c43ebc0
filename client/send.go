package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/account"
	"github.com/solfarms/solfarm/common"
)

// Submission retry policy. Attempts are spaced by a fixed pause; the
// blockhash is only refreshed when the node says it expired, so a
// resend of the identical transaction stays possible as long as the
// hash lives.
const (
	maxSendAttempts  = 20
	sendRetryPause   = 5 * time.Second
	blockhashExpired = "Blockhash not found"
	alreadyProcessed = "already been processed"
)

// retryableSendError reports whether a submission failure is worth
// retrying with the same transaction. Everything else is fatal: a
// deterministic program error will fail the same way every time.
func retryableSendError(err error) bool {
	remote, ok := common.AsRemoteError(err)
	if !ok {
		return false
	}
	if remote.Timeout {
		return true
	}
	switch remote.Code {
	case common.RPCCodeNodeUnhealthy, common.RPCCodeBlockNotAvailable:
		return true
	case common.RPCCodePreflightFailure:
		return strings.HasSuffix(remote.Message, blockhashExpired)
	}
	return false
}

// isAlreadyProcessed detects a resend landing after the original went
// through.
func isAlreadyProcessed(err error) bool {
	remote, ok := common.AsRemoteError(err)
	return ok && strings.Contains(remote.Message, alreadyProcessed)
}

func signTransaction(tx *solana.Transaction, signers []account.Signer) error {
	for _, signer := range signers {
		if err := signer.SignTx(tx); err != nil {
			return err
		}
	}
	return nil
}

// SignAndSendTransaction assembles one transaction over the given
// instructions, signs it with every signer, and submits it until it
// confirms or fails for good. The first signer pays fees.
func (c *Client) SignAndSendTransaction(ctx context.Context, signers []account.Signer, instructions []solana.Instruction) (solana.Signature, error) {
	if len(signers) == 0 {
		return solana.Signature{}, common.ValueErrorf("no signers")
	}
	payer := signers[0].PublicKey()

	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		tx, err := buildTransaction(instructions, payer, blockhash)
		if err != nil {
			return solana.Signature{}, err
		}
		if err := signTransaction(tx, signers); err != nil {
			return solana.Signature{}, err
		}

		sig, err := c.ledger.SendTransaction(ctx, tx)
		if err == nil {
			if err := c.ledger.ConfirmTransaction(ctx, sig); err != nil {
				return solana.Signature{}, err
			}
			return sig, nil
		}

		// a resend rejected as a duplicate means the first send won
		if attempt > 1 && isAlreadyProcessed(err) {
			c.logger.Debugw("transaction already processed", "signature", tx.Signatures[0])
			return tx.Signatures[0], nil
		}
		if !retryableSendError(err) {
			return solana.Signature{}, err
		}
		lastErr = err
		c.logger.Infow("send failed, will retry",
			"attempt", attempt, "of", maxSendAttempts, "err", err)

		c.sleep(sendRetryPause)

		valid, checkErr := c.ledger.IsBlockhashValid(ctx, blockhash)
		if checkErr != nil {
			return solana.Signature{}, checkErr
		}
		if !valid {
			blockhash, err = c.ledger.GetLatestBlockhash(ctx)
			if err != nil {
				return solana.Signature{}, err
			}
		}
	}
	return solana.Signature{}, fmt.Errorf("gave up after %d attempts: %w", maxSendAttempts, lastErr)
}

// ExecuteInstructions batches an instruction sequence under the
// transaction size limit and submits the batches in order, stopping at
// the first failure.
func (c *Client) ExecuteInstructions(ctx context.Context, signers []account.Signer, instructions []solana.Instruction) ([]solana.Signature, error) {
	if len(signers) == 0 {
		return nil, common.ValueErrorf("no signers")
	}
	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := BatchInstructions(instructions, signers[0].PublicKey(), blockhash)
	if err != nil {
		return nil, err
	}
	sigs := make([]solana.Signature, 0, len(batches))
	for _, batch := range batches {
		sig, err := c.SignAndSendTransaction(ctx, signers, batch)
		if err != nil {
			return sigs, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
