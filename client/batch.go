package client

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// MaxEncodedTransactionSize is the largest base64-encoded transaction
// a node accepts over JSON-RPC.
const MaxEncodedTransactionSize = 1644

// buildTransaction assembles an unsigned transaction over the given
// instructions.
func buildTransaction(instructions []solana.Instruction, payer solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("couldn't assemble transaction: %w", err)
	}
	return tx, nil
}

// encodedTransactionSize returns the wire size of a transaction as the
// node sees it: binary serialization with all signature slots present,
// base64 encoded.
func encodedTransactionSize(tx *solana.Transaction) (int, error) {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) < required {
		tx.Signatures = make([]solana.Signature, required)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("couldn't serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodedLen(len(raw)), nil
}

func fitsInOneTransaction(instructions []solana.Instruction, payer solana.PublicKey, blockhash solana.Hash) (bool, error) {
	tx, err := buildTransaction(instructions, payer, blockhash)
	if err != nil {
		return false, err
	}
	size, err := encodedTransactionSize(tx)
	if err != nil {
		return false, err
	}
	return size <= MaxEncodedTransactionSize, nil
}

// BatchInstructions splits an instruction sequence into the smallest
// greedy set of batches that each fit in one transaction. Order is
// preserved: instructions never move across batch boundaries or past
// each other. A single instruction that doesn't fit on its own is an
// error.
func BatchInstructions(instructions []solana.Instruction, payer solana.PublicKey, blockhash solana.Hash) ([][]solana.Instruction, error) {
	if len(instructions) == 0 {
		return nil, common.ValueErrorf("no instructions to batch")
	}

	// common case: everything fits in one transaction
	if ok, err := fitsInOneTransaction(instructions, payer, blockhash); err != nil {
		return nil, err
	} else if ok {
		return [][]solana.Instruction{instructions}, nil
	}

	var batches [][]solana.Instruction
	var current []solana.Instruction
	for _, ins := range instructions {
		candidate := append(current, ins)
		ok, err := fitsInOneTransaction(candidate, payer, blockhash)
		if err != nil {
			return nil, err
		}
		if ok {
			current = candidate
			continue
		}
		if len(current) == 0 {
			return nil, common.ValueErrorf("instruction exceeds transaction size limit")
		}
		batches = append(batches, current)
		current = []solana.Instruction{ins}
		if ok, err := fitsInOneTransaction(current, payer, blockhash); err != nil {
			return nil, err
		} else if !ok {
			return nil, common.ValueErrorf("instruction exceeds transaction size limit")
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}
