package client

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solfarms/solfarm/common"
	"github.com/solfarms/solfarm/ledger"
	"github.com/solfarms/solfarm/names"
	"github.com/solfarms/solfarm/refdb"
	"github.com/solfarms/solfarm/registry"
	"github.com/solfarms/solfarm/types"
)

// fakeLedger is an in-memory ledger.Client. Accounts are plain byte
// maps; SendTransaction failures are scripted per call.
type fakeLedger struct {
	accounts        map[solana.PublicKey][]byte
	tokenBalances   map[solana.PublicKey]uint64
	tokenBalanceErr error
	tokenSupplies   map[solana.PublicKey]uint64
	lamports        map[solana.PublicKey]uint64
	programAccounts map[solana.PublicKey][]ledger.KeyedAccount

	blockhash      solana.Hash
	blockhashValid bool

	// sendErrs[i] is returned by the i-th SendTransaction call; a nil
	// entry (or running off the end) means success.
	sendErrs   []error
	sentTxs    []*solana.Transaction
	confirmErr error

	calls map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts:        make(map[solana.PublicKey][]byte),
		tokenBalances:   make(map[solana.PublicKey]uint64),
		tokenSupplies:   make(map[solana.PublicKey]uint64),
		lamports:        make(map[solana.PublicKey]uint64),
		programAccounts: make(map[solana.PublicKey][]ledger.KeyedAccount),
		blockhash:       solana.Hash(testKey(99)),
		blockhashValid:  true,
		calls:           make(map[string]int),
	}
}

func (f *fakeLedger) GetAccountData(_ context.Context, key solana.PublicKey) ([]byte, error) {
	f.calls["GetAccountData"]++
	data, ok := f.accounts[key]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", key, common.ErrRecordNotFound)
	}
	return data, nil
}

func (f *fakeLedger) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey) ([][]byte, error) {
	f.calls["GetMultipleAccounts"]++
	out := make([][]byte, len(keys))
	for i, key := range keys {
		out[i] = f.accounts[key]
	}
	return out, nil
}

func (f *fakeLedger) GetProgramAccounts(_ context.Context, program solana.PublicKey, offset uint64, want []byte) ([]ledger.KeyedAccount, error) {
	f.calls["GetProgramAccounts"]++
	var out []ledger.KeyedAccount
	for _, acc := range f.programAccounts[program] {
		end := offset + uint64(len(want))
		if uint64(len(acc.Data)) < end {
			continue
		}
		if bytes.Equal(acc.Data[offset:end], want) {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeLedger) GetBalance(_ context.Context, key solana.PublicKey) (uint64, error) {
	f.calls["GetBalance"]++
	return f.lamports[key], nil
}

func (f *fakeLedger) GetTokenBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	f.calls["GetTokenBalance"]++
	if f.tokenBalanceErr != nil {
		return 0, f.tokenBalanceErr
	}
	balance, ok := f.tokenBalances[account]
	if !ok {
		return 0, fmt.Errorf("token account %s: %w", account, common.ErrRecordNotFound)
	}
	return balance, nil
}

func (f *fakeLedger) GetTokenSupply(_ context.Context, mint solana.PublicKey) (uint64, error) {
	f.calls["GetTokenSupply"]++
	return f.tokenSupplies[mint], nil
}

func (f *fakeLedger) GetLatestBlockhash(_ context.Context) (solana.Hash, error) {
	f.calls["GetLatestBlockhash"]++
	return f.blockhash, nil
}

func (f *fakeLedger) IsBlockhashValid(_ context.Context, _ solana.Hash) (bool, error) {
	f.calls["IsBlockhashValid"]++
	return f.blockhashValid, nil
}

func (f *fakeLedger) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	n := f.calls["SendTransaction"]
	f.calls["SendTransaction"]++
	f.sentTxs = append(f.sentTxs, tx)
	if n < len(f.sendErrs) && f.sendErrs[n] != nil {
		return solana.Signature{}, f.sendErrs[n]
	}
	return tx.Signatures[0], nil
}

func (f *fakeLedger) ConfirmTransaction(_ context.Context, _ solana.Signature) error {
	f.calls["ConfirmTransaction"]++
	return f.confirmErr
}

func newTestClient(lg *fakeLedger) *Client {
	c := New(lg, zap.NewNop().Sugar())
	c.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	c.sleep = func(time.Duration) {}
	return c
}

// testKey builds a recognizable key from a single seed byte. Seed zero
// is avoided because the all-zero key is the system program.
func testKey(seed byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = seed
	}
	return k
}

func testKeyPtr(seed byte) *solana.PublicKey {
	k := testKey(seed)
	return &k
}

func marshalEntity(t *testing.T, v interface {
	MarshalWithEncoder(*bin.Encoder) error
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.MarshalWithEncoder(bin.NewBinEncoder(&buf)))
	return buf.Bytes()
}

type dirEntry struct {
	name string
	key  solana.PublicKey
}

// setDirectory writes a reference directory image at the storage's
// derived address, with a few free slots after the records.
func setDirectory(t *testing.T, lg *fakeLedger, storageName string, revision uint32, entries []dirEntry) {
	t.Helper()
	data, err := refdb.PackHeader(refdb.Header{
		Counter:       revision,
		ActiveRecords: uint32(len(entries)),
		RefType:       refdb.ReferencePubkey,
		Name:          storageName,
	})
	require.NoError(t, err)
	for i, e := range entries {
		packed, err := refdb.PackRecord(refdb.Record{
			Counter:   uint16(i + 1),
			Name:      e.name,
			Reference: refdb.NewPubkeyReference(e.key),
		})
		require.NoError(t, err)
		data = append(data, packed...)
	}
	data = append(data, make([]byte, 4*refdb.RecordLen(refdb.ReferencePubkey))...)

	addr, err := registry.RefdbAddress(storageName)
	require.NoError(t, err)
	lg.accounts[addr] = data
}

// deployment accumulates entity fixtures and flushes them into fake
// directory accounts. Every entity gets its keys allocated from a
// per-deployment seed counter so fixtures never collide.
type deployment struct {
	lg       *fakeLedger
	seed     byte
	tokenDir []dirEntry
	poolDir  []dirEntry
	farmDir  []dirEntry
	fundDir  []dirEntry
}

func newDeployment(lg *fakeLedger) *deployment {
	return &deployment{lg: lg, seed: 100}
}

func (d *deployment) nextKey() solana.PublicKey {
	d.seed++
	return testKey(d.seed)
}

func (d *deployment) nextKeyPtr() *solana.PublicKey {
	k := d.nextKey()
	return &k
}

// addToken installs a token entity and returns it along with its
// directory reference.
func (d *deployment) addToken(t *testing.T, name string, decimals uint8) (*types.Token, solana.PublicKey) {
	t.Helper()
	tok := &types.Token{Name: name, Decimals: decimals, Mint: d.nextKey()}
	ref := d.nextKey()
	d.lg.accounts[ref] = marshalEntity(t, tok)
	d.tokenDir = append(d.tokenDir, dirEntry{name: name, key: ref})
	return tok, ref
}

func (d *deployment) addPool(t *testing.T, pool *types.Pool) solana.PublicKey {
	t.Helper()
	ref := d.nextKey()
	d.lg.accounts[ref] = marshalEntity(t, pool)
	d.poolDir = append(d.poolDir, dirEntry{name: pool.Name, key: ref})
	return ref
}

func (d *deployment) addFarm(t *testing.T, farm *types.Farm) solana.PublicKey {
	t.Helper()
	ref := d.nextKey()
	d.lg.accounts[ref] = marshalEntity(t, farm)
	d.farmDir = append(d.farmDir, dirEntry{name: farm.Name, key: ref})
	return ref
}

func (d *deployment) addFund(t *testing.T, fund *types.Fund) solana.PublicKey {
	t.Helper()
	ref := d.nextKey()
	d.lg.accounts[ref] = marshalEntity(t, fund)
	d.fundDir = append(d.fundDir, dirEntry{name: fund.Name, key: ref})
	return ref
}

// addOrcaPool wires a minimal Orca pool over two freshly created
// tokens plus an LP token, returning the pool and its tokens.
func (d *deployment) addOrcaPool(t *testing.T, name string, tokenAName string, decimalsA uint8, tokenBName string, decimalsB uint8) (*types.Pool, poolTokens) {
	t.Helper()
	tokenA, refA := d.addToken(t, tokenAName, decimalsA)
	tokenB, refB := d.addToken(t, tokenBName, decimalsB)
	lp, refLp := d.addToken(t, "LP."+name, 6)
	_, version := names.SplitVersion(name)
	if version == 0 {
		version = 1
	}
	pool := &types.Pool{
		Name:          name,
		Version:       uint16(version),
		PoolProgramID: d.nextKey(),
		TokenARef:     &refA,
		TokenBRef:     &refB,
		LpTokenRef:    &refLp,
		TokenAAccount: d.nextKeyPtr(),
		TokenBAccount: d.nextKeyPtr(),
		Route: types.PoolRoute{
			Protocol: types.ProtocolOrca,
			Orca: &types.OrcaPoolRoute{
				AmmID:        d.nextKey(),
				AmmAuthority: d.nextKey(),
				FeesAccount:  d.nextKey(),
			},
		},
	}
	d.addPool(t, pool)
	return pool, poolTokens{tokenA: tokenA, tokenB: tokenB, lp: lp}
}

// flush writes all accumulated directories at revision 1.
func (d *deployment) flush(t *testing.T) {
	t.Helper()
	setDirectory(t, d.lg, registry.StorageToken, 1, d.tokenDir)
	setDirectory(t, d.lg, registry.StoragePool, 1, d.poolDir)
	setDirectory(t, d.lg, registry.StorageFarm, 1, d.farmDir)
	setDirectory(t, d.lg, registry.StorageVault, 1, nil)
	setDirectory(t, d.lg, registry.StorageFund, 1, d.fundDir)
}
