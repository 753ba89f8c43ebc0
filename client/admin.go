package client

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/account"
	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/refdb"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// Main router opcodes. The on-chain program dispatches on the first
// data byte, so the order here is part of the wire contract.
const (
	mainOpAddFund uint8 = iota
	mainOpRemoveFund
	mainOpAddVault
	mainOpRemoveVault
	mainOpAddPool
	mainOpRemovePool
	mainOpAddFarm
	mainOpRemoveFarm
	mainOpAddToken
	mainOpRemoveToken
	mainOpRefdb
	mainOpSetAdminSigners
)

// Directory management sub-opcodes, nested under mainOpRefdb.
const (
	refdbOpInit uint8 = iota
	refdbOpDrop
	refdbOpWrite
	refdbOpDelete
)

func packOptionU32(v *uint32) [5]byte {
	var out [5]byte
	if v != nil {
		out[0] = 1
		binary.LittleEndian.PutUint32(out[1:], *v)
	}
	return out
}

func encodeEntity(entity interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(entity); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mainRouterAccounts is the account list shared by every metadata
// add/remove operation.
func (c *Client) mainRouterAccounts(admin solana.PublicKey, storageName, entityName string) (solana.AccountMetaSlice, error) {
	multisig, err := c.registry.MultisigAddress()
	if err != nil {
		return nil, err
	}
	directory, err := c.registry.RefdbAddress(storageName)
	if err != nil {
		return nil, err
	}
	entity, err := c.registry.EntityAddress(storageName, entityName)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(multisig).WRITE(),
		solana.Meta(directory).WRITE(),
		solana.Meta(entity).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, nil
}

func (c *Client) newAddEntityInstruction(admin solana.PublicKey, opcode uint8, storageName, entityName string, entity interface{}) (solana.Instruction, error) {
	accounts, err := c.mainRouterAccounts(admin, storageName, entityName)
	if err != nil {
		return nil, err
	}
	packed, err := encodeEntity(entity)
	if err != nil {
		return nil, err
	}
	data := append([]byte{opcode}, packed...)
	return solana.NewInstruction(c.registry.MainRouterProgram, accounts, data), nil
}

func (c *Client) newRemoveEntityInstruction(admin solana.PublicKey, opcode uint8, storageName, entityName string, index *uint32) (solana.Instruction, error) {
	accounts, err := c.mainRouterAccounts(admin, storageName, entityName)
	if err != nil {
		return nil, err
	}
	name, err := refdb.PackName(entityName)
	if err != nil {
		return nil, err
	}
	idx := packOptionU32(index)
	data := make([]byte, 0, 1+refdb.MaxNameLen+len(idx))
	data = append(data, opcode)
	data = append(data, name[:]...)
	data = append(data, idx[:]...)
	return solana.NewInstruction(c.registry.MainRouterProgram, accounts, data), nil
}

// NewInstructionAddToken records a token's metadata on-chain.
func (c *Client) NewInstructionAddToken(admin solana.PublicKey, token *types.Token) (solana.Instruction, error) {
	return c.newAddEntityInstruction(admin, mainOpAddToken, registry.StorageToken, token.Name, token)
}

// NewInstructionRemoveToken deletes a token's metadata. A nil index
// makes the program locate the record by name.
func (c *Client) NewInstructionRemoveToken(admin solana.PublicKey, name string, index *uint32) (solana.Instruction, error) {
	return c.newRemoveEntityInstruction(admin, mainOpRemoveToken, registry.StorageToken, name, index)
}

func (c *Client) NewInstructionAddPool(admin solana.PublicKey, pool *types.Pool) (solana.Instruction, error) {
	return c.newAddEntityInstruction(admin, mainOpAddPool, registry.StoragePool, pool.Name, pool)
}

func (c *Client) NewInstructionRemovePool(admin solana.PublicKey, name string, index *uint32) (solana.Instruction, error) {
	return c.newRemoveEntityInstruction(admin, mainOpRemovePool, registry.StoragePool, name, index)
}

func (c *Client) NewInstructionAddFarm(admin solana.PublicKey, farm *types.Farm) (solana.Instruction, error) {
	return c.newAddEntityInstruction(admin, mainOpAddFarm, registry.StorageFarm, farm.Name, farm)
}

func (c *Client) NewInstructionRemoveFarm(admin solana.PublicKey, name string, index *uint32) (solana.Instruction, error) {
	return c.newRemoveEntityInstruction(admin, mainOpRemoveFarm, registry.StorageFarm, name, index)
}

func (c *Client) NewInstructionAddVault(admin solana.PublicKey, vault *types.Vault) (solana.Instruction, error) {
	return c.newAddEntityInstruction(admin, mainOpAddVault, registry.StorageVault, vault.Name, vault)
}

func (c *Client) NewInstructionRemoveVault(admin solana.PublicKey, name string, index *uint32) (solana.Instruction, error) {
	return c.newRemoveEntityInstruction(admin, mainOpRemoveVault, registry.StorageVault, name, index)
}

func (c *Client) NewInstructionAddFund(admin solana.PublicKey, fund *types.Fund) (solana.Instruction, error) {
	return c.newAddEntityInstruction(admin, mainOpAddFund, registry.StorageFund, fund.Name, fund)
}

func (c *Client) NewInstructionRemoveFund(admin solana.PublicKey, name string, index *uint32) (solana.Instruction, error) {
	return c.newRemoveEntityInstruction(admin, mainOpRemoveFund, registry.StorageFund, name, index)
}

// AddToken submits the metadata and updates the cache without waiting
// for the next directory refetch.
func (c *Client) AddToken(ctx context.Context, admin account.Signer, token *types.Token) (solana.Signature, error) {
	inst, err := c.NewInstructionAddToken(admin.PublicKey(), token)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	key, err := c.registry.EntityAddress(registry.StorageToken, token.Name)
	if err != nil {
		return solana.Signature{}, err
	}
	c.tokens.insertOptimistic(token.Name, key)
	return sig, nil
}

func (c *Client) RemoveToken(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemoveToken(admin.PublicKey(), name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	c.tokens.removeOptimistic(name)
	return sig, nil
}

func (c *Client) AddPool(ctx context.Context, admin account.Signer, pool *types.Pool) (solana.Signature, error) {
	inst, err := c.NewInstructionAddPool(admin.PublicKey(), pool)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	key, err := c.registry.EntityAddress(registry.StoragePool, pool.Name)
	if err != nil {
		return solana.Signature{}, err
	}
	c.pools.insertOptimistic(pool.Name, key)
	return sig, nil
}

func (c *Client) RemovePool(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemovePool(admin.PublicKey(), name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	c.pools.removeOptimistic(name)
	return sig, nil
}

func (c *Client) AddFarm(ctx context.Context, admin account.Signer, farm *types.Farm) (solana.Signature, error) {
	inst, err := c.NewInstructionAddFarm(admin.PublicKey(), farm)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	key, err := c.registry.EntityAddress(registry.StorageFarm, farm.Name)
	if err != nil {
		return solana.Signature{}, err
	}
	c.farms.insertOptimistic(farm.Name, key)
	return sig, nil
}

func (c *Client) RemoveFarm(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemoveFarm(admin.PublicKey(), name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	c.farms.removeOptimistic(name)
	return sig, nil
}

func (c *Client) AddVault(ctx context.Context, admin account.Signer, vault *types.Vault) (solana.Signature, error) {
	inst, err := c.NewInstructionAddVault(admin.PublicKey(), vault)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	key, err := c.registry.EntityAddress(registry.StorageVault, vault.Name)
	if err != nil {
		return solana.Signature{}, err
	}
	c.vaults.insertOptimistic(vault.Name, key)
	return sig, nil
}

func (c *Client) RemoveVault(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemoveVault(admin.PublicKey(), name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	c.vaults.removeOptimistic(name)
	return sig, nil
}

func (c *Client) AddFund(ctx context.Context, admin account.Signer, fund *types.Fund) (solana.Signature, error) {
	inst, err := c.NewInstructionAddFund(admin.PublicKey(), fund)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	key, err := c.registry.EntityAddress(registry.StorageFund, fund.Name)
	if err != nil {
		return solana.Signature{}, err
	}
	c.funds.insertOptimistic(fund.Name, key)
	return sig, nil
}

func (c *Client) RemoveFund(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemoveFund(admin.PublicKey(), name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
	if err != nil {
		return solana.Signature{}, err
	}
	c.funds.removeOptimistic(name)
	return sig, nil
}

// refdbAccounts is the account list of every directory management
// operation.
func (c *Client) refdbAccounts(admin solana.PublicKey, storageName string) (solana.AccountMetaSlice, error) {
	directory, err := c.registry.RefdbAddress(storageName)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(directory).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, nil
}

// NewInstructionRefdbInit allocates and initializes a reference
// directory on-chain.
func (c *Client) NewInstructionRefdbInit(admin solana.PublicKey, storageName string, refType refdb.ReferenceType, maxRecords uint32, initAccount bool) (solana.Instruction, error) {
	accounts, err := c.refdbAccounts(admin, storageName)
	if err != nil {
		return nil, err
	}
	name, err := refdb.PackName(storageName)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, 3+refdb.MaxNameLen+5)
	data = append(data, mainOpRefdb, refdbOpInit, byte(refType))
	data = append(data, name[:]...)
	var records [4]byte
	binary.LittleEndian.PutUint32(records[:], maxRecords)
	data = append(data, records[:]...)
	if initAccount {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	return solana.NewInstruction(c.registry.MainRouterProgram, accounts, data), nil
}

// NewInstructionRefdbDrop deletes a reference directory, optionally
// closing its account.
func (c *Client) NewInstructionRefdbDrop(admin solana.PublicKey, storageName string, closeAccount bool) (solana.Instruction, error) {
	accounts, err := c.refdbAccounts(admin, storageName)
	if err != nil {
		return nil, err
	}
	data := []byte{mainOpRefdb, refdbOpDrop, byte(refdb.ReferenceEmpty), 0}
	if closeAccount {
		data[3] = 1
	}
	return solana.NewInstruction(c.registry.MainRouterProgram, accounts, data), nil
}

func (c *Client) newReferenceInstruction(admin solana.PublicKey, op uint8, storageName string, rec refdb.Record, index *uint32) (solana.Instruction, error) {
	accounts, err := c.refdbAccounts(admin, storageName)
	if err != nil {
		return nil, err
	}
	packed, err := refdb.PackRecord(rec)
	if err != nil {
		return nil, err
	}
	idx := packOptionU32(index)
	data := make([]byte, 0, 2+1+len(idx)+len(packed))
	data = append(data, mainOpRefdb, op, byte(rec.Reference.Type))
	data = append(data, idx[:]...)
	data = append(data, packed...)
	return solana.NewInstruction(c.registry.MainRouterProgram, accounts, data), nil
}

// NewInstructionAddReference writes one record into a directory.
func (c *Client) NewInstructionAddReference(admin solana.PublicKey, storageName string, rec refdb.Record, index *uint32) (solana.Instruction, error) {
	return c.newReferenceInstruction(admin, refdbOpWrite, storageName, rec, index)
}

// NewInstructionRemoveReference frees one directory slot.
func (c *Client) NewInstructionRemoveReference(admin solana.PublicKey, storageName string, name string, index *uint32) (solana.Instruction, error) {
	rec := refdb.Record{Name: name, Reference: refdb.Reference{Type: refdb.ReferencePubkey}}
	return c.newReferenceInstruction(admin, refdbOpDelete, storageName, rec, index)
}

// AddProgramID registers a program id under its well-known name in the
// Program directory.
func (c *Client) AddProgramID(ctx context.Context, admin account.Signer, name string, program solana.PublicKey, index *uint32) (solana.Signature, error) {
	rec := refdb.Record{Name: name, Reference: refdb.NewPubkeyReference(program)}
	inst, err := c.NewInstructionAddReference(admin.PublicKey(), registry.StorageProgram, rec, index)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
}

// RemoveProgramID deletes a program id record.
func (c *Client) RemoveProgramID(ctx context.Context, admin account.Signer, name string, index *uint32) (solana.Signature, error) {
	inst, err := c.NewInstructionRemoveReference(admin.PublicKey(), registry.StorageProgram, name, index)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.SignAndSendTransaction(ctx, []account.Signer{admin}, []solana.Instruction{inst})
}

// GetProgramIDs reads the Program directory into a name to address map.
func (c *Client) GetProgramIDs(ctx context.Context) (map[string]solana.PublicKey, error) {
	directory, err := c.registry.RefdbAddress(registry.StorageProgram)
	if err != nil {
		return nil, err
	}
	data, err := c.ledger.GetAccountData(ctx, directory)
	if err != nil {
		return nil, err
	}
	records, err := refdb.Records(data)
	if err != nil {
		return nil, &common.ParseError{What: "program directory", Err: err}
	}
	out := make(map[string]solana.PublicKey, len(records))
	for _, rec := range records {
		if rec.Reference.Type == refdb.ReferencePubkey {
			out[rec.Name] = rec.Reference.Pubkey
		}
	}
	return out, nil
}

func (c *Client) getRefdbData(ctx context.Context, storageName string) ([]byte, refdb.ReferenceType, error) {
	directory, err := c.registry.RefdbAddress(storageName)
	if err != nil {
		return nil, refdb.ReferenceEmpty, err
	}
	data, err := c.ledger.GetAccountData(ctx, directory)
	if err != nil {
		return nil, refdb.ReferenceEmpty, err
	}
	hdr, err := refdb.DecodeHeader(data)
	if err != nil {
		return nil, refdb.ReferenceEmpty, &common.ParseError{What: storageName + " directory", Err: err}
	}
	return data, hdr.RefType, nil
}

// GetRefdbIndex returns the slot holding the first record with the
// given name, or -1 when the directory has no such record.
func (c *Client) GetRefdbIndex(ctx context.Context, storageName, name string) (int, error) {
	data, refType, err := c.getRefdbData(ctx, storageName)
	if err != nil {
		return -1, err
	}
	return refdb.FindIndex(data, refType, name), nil
}

// GetRefdbLastIndex returns the slot holding the last record with the
// given name, or -1.
func (c *Client) GetRefdbLastIndex(ctx context.Context, storageName, name string) (int, error) {
	data, refType, err := c.getRefdbData(ctx, storageName)
	if err != nil {
		return -1, err
	}
	return refdb.FindLastIndex(data, refType, name), nil
}

// GetRefdbNextIndex returns the first free slot a new record can be
// written to, or -1 when the directory is full.
func (c *Client) GetRefdbNextIndex(ctx context.Context, storageName string) (int, error) {
	data, refType, err := c.getRefdbData(ctx, storageName)
	if err != nil {
		return -1, err
	}
	return refdb.FindNextIndex(data, refType), nil
}

// GetRefdbPubkeyMap derives the directory account address for every
// entity kind.
func (c *Client) GetRefdbPubkeyMap() (map[string]solana.PublicKey, error) {
	names := []string{
		registry.StorageProgram,
		registry.StorageToken,
		registry.StoragePool,
		registry.StorageFarm,
		registry.StorageVault,
		registry.StorageFund,
	}
	out := make(map[string]solana.PublicKey, len(names))
	for _, name := range names {
		addr, err := c.registry.RefdbAddress(name)
		if err != nil {
			return nil, err
		}
		out[name] = addr
	}
	return out, nil
}

// IsRefdbInitialized reports whether a directory account exists and has
// been written at least once.
func (c *Client) IsRefdbInitialized(ctx context.Context, storageName string) (bool, error) {
	directory, err := c.registry.RefdbAddress(storageName)
	if err != nil {
		return false, err
	}
	data, err := c.ledger.GetAccountData(ctx, directory)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return refdb.IsInitialized(data), nil
}
