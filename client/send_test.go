package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solfarms/solfarm/account"
	"github.com/solfarms/solfarm/common"
)

func retryableRPCError() error {
	return &common.RemoteError{Code: common.RPCCodeNodeUnhealthy, Message: "node is unhealthy"}
}

func testSigner(t *testing.T) account.Signer {
	t.Helper()
	return account.NewKeySigner(solana.NewWallet().PrivateKey)
}

func testInstructions() []solana.Instruction {
	return []solana.Instruction{paddedInstruction(1, 16)}
}

func TestSignAndSendRetriesThenSucceeds(t *testing.T) {
	lg := newFakeLedger()
	lg.sendErrs = []error{retryableRPCError(), retryableRPCError(), nil}
	c := newTestClient(lg)
	pauses := 0
	c.sleep = func(d time.Duration) {
		assert.Equal(t, sendRetryPause, d)
		pauses++
	}

	sig, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	assert.Equal(t, 3, lg.calls["SendTransaction"])
	assert.Equal(t, 2, pauses)
	assert.Equal(t, 2, lg.calls["IsBlockhashValid"])
	assert.Equal(t, 1, lg.calls["ConfirmTransaction"])
}

func TestSignAndSendFatalErrorNoRetry(t *testing.T) {
	lg := newFakeLedger()
	lg.sendErrs = []error{&common.RemoteError{
		Code:    common.RPCCodePreflightFailure,
		Message: "custom program error: 0x1",
	}}
	c := newTestClient(lg)
	pauses := 0
	c.sleep = func(time.Duration) { pauses++ }

	_, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.Error(t, err)
	assert.Equal(t, 1, lg.calls["SendTransaction"])
	assert.Zero(t, pauses)
}

func TestSignAndSendExpiredBlockhashPreflightRetries(t *testing.T) {
	lg := newFakeLedger()
	lg.sendErrs = []error{&common.RemoteError{
		Code:    common.RPCCodePreflightFailure,
		Message: "Transaction simulation failed: Blockhash not found",
	}, nil}
	c := newTestClient(lg)

	sig, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	assert.Equal(t, 2, lg.calls["SendTransaction"])
}

func TestSignAndSendAlreadyProcessed(t *testing.T) {
	lg := newFakeLedger()
	lg.sendErrs = []error{retryableRPCError(), &common.RemoteError{
		Code:    common.RPCCodePreflightFailure,
		Message: "This transaction has already been processed",
	}}
	c := newTestClient(lg)

	sig, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	// the resend was rejected as a duplicate, so nothing was confirmed
	assert.Zero(t, lg.calls["ConfirmTransaction"])
}

func TestSignAndSendRefreshesExpiredBlockhash(t *testing.T) {
	lg := newFakeLedger()
	lg.blockhashValid = false
	lg.sendErrs = []error{retryableRPCError(), nil}
	c := newTestClient(lg)

	_, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	assert.Equal(t, 2, lg.calls["GetLatestBlockhash"])
}

func TestSignAndSendKeepsBlockhashWhileValid(t *testing.T) {
	lg := newFakeLedger()
	lg.sendErrs = []error{retryableRPCError(), nil}
	c := newTestClient(lg)

	_, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	assert.Equal(t, 1, lg.calls["GetLatestBlockhash"])
}

func TestSignAndSendGivesUp(t *testing.T) {
	lg := newFakeLedger()
	for i := 0; i < maxSendAttempts; i++ {
		lg.sendErrs = append(lg.sendErrs, retryableRPCError())
	}
	c := newTestClient(lg)

	_, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up")
	assert.Equal(t, maxSendAttempts, lg.calls["SendTransaction"])
}

func TestSignAndSendNonRemoteErrorIsFatal(t *testing.T) {
	lg := newFakeLedger()
	boom := errors.New("boom")
	lg.sendErrs = []error{boom}
	c := newTestClient(lg)

	_, err := c.SignAndSendTransaction(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, lg.calls["SendTransaction"])
}

func TestSignAndSendNoSigners(t *testing.T) {
	c := newTestClient(newFakeLedger())
	_, err := c.SignAndSendTransaction(context.Background(), nil, testInstructions())
	var ve *common.ValueError
	assert.ErrorAs(t, err, &ve)
}

func TestRetryableSendError(t *testing.T) {
	assert.True(t, retryableSendError(retryableRPCError()))
	assert.True(t, retryableSendError(&common.RemoteError{Timeout: true}))
	assert.True(t, retryableSendError(&common.RemoteError{Code: common.RPCCodeBlockNotAvailable}))
	assert.False(t, retryableSendError(&common.RemoteError{Code: common.RPCCodePreflightFailure, Message: "custom program error"}))
	assert.False(t, retryableSendError(errors.New("boom")))
}

func TestExecuteInstructions(t *testing.T) {
	lg := newFakeLedger()
	c := newTestClient(lg)

	sigs, err := c.ExecuteInstructions(context.Background(), []account.Signer{testSigner(t)}, testInstructions())
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.False(t, sigs[0].IsZero())
}

func TestExecuteInstructionsMultipleBatches(t *testing.T) {
	lg := newFakeLedger()
	c := newTestClient(lg)

	var instructions []solana.Instruction
	for tag := byte(1); tag <= 8; tag++ {
		instructions = append(instructions, paddedInstruction(tag, 400))
	}
	sigs, err := c.ExecuteInstructions(context.Background(), []account.Signer{testSigner(t)}, instructions)
	require.NoError(t, err)
	assert.Greater(t, len(sigs), 1)
	assert.Equal(t, len(sigs), lg.calls["SendTransaction"])
}
