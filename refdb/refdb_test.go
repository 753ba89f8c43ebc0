package refdb

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDirectory packs a header plus records into a raw account image
// with room for extra free slots.
func buildDirectory(t *testing.T, hdr Header, recs []Record, freeSlots int) []byte {
	t.Helper()
	data, err := PackHeader(hdr)
	require.NoError(t, err)
	for _, rec := range recs {
		rec.Reference.Type = hdr.RefType
		packed, err := PackRecord(rec)
		require.NoError(t, err)
		data = append(data, packed...)
	}
	data = append(data, make([]byte, freeSlots*RecordLen(hdr.RefType))...)
	return data
}

func TestIsInitialized(t *testing.T) {
	empty := make([]byte, HeaderLen+3*RecordLen(ReferencePubkey))
	assert.False(t, IsInitialized(empty))
	assert.False(t, IsInitialized(empty[:10]))

	data := buildDirectory(t, Header{
		Counter: 1, ActiveRecords: 1, RefType: ReferencePubkey, Name: "tokens.refdb",
	}, []Record{
		{Counter: 1, Name: "RAY", Reference: NewPubkeyReference(solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"))},
	}, 2)
	assert.True(t, IsInitialized(data))
}

func TestHeaderRoundTrip(t *testing.T) {
	data := buildDirectory(t, Header{
		Counter: 7, ActiveRecords: 0, RefType: ReferenceU64, Name: "vaults.refdb",
	}, nil, 1)

	hdr, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), hdr.Counter)
	assert.Equal(t, ReferenceU64, hdr.RefType)
	assert.Equal(t, "vaults.refdb", hdr.Name)
}

func TestFindIndex(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	data := buildDirectory(t, Header{
		Counter: 3, ActiveRecords: 3, RefType: ReferencePubkey, Name: "pools.refdb",
	}, []Record{
		{Counter: 1, Name: "RDM.RAY-SRM-V4", Reference: NewPubkeyReference(key)},
		{Counter: 2, Name: "ORC.SOL-USDC-V1", Reference: NewPubkeyReference(key)},
		{Counter: 3, Name: "RDM.RAY-SRM-V4", Reference: NewPubkeyReference(key)},
	}, 2)

	assert.Equal(t, 0, FindIndex(data, ReferencePubkey, "RDM.RAY-SRM-V4"))
	assert.Equal(t, 2, FindLastIndex(data, ReferencePubkey, "RDM.RAY-SRM-V4"))
	assert.Equal(t, 1, FindIndex(data, ReferencePubkey, "ORC.SOL-USDC-V1"))
	assert.Equal(t, -1, FindIndex(data, ReferencePubkey, "SBR.USDC-USDT"))
	assert.Equal(t, 3, FindNextIndex(data, ReferencePubkey))
}

func TestFindNextIndexFull(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	data := buildDirectory(t, Header{
		Counter: 1, ActiveRecords: 1, RefType: ReferencePubkey, Name: "full.refdb",
	}, []Record{
		{Counter: 1, Name: "ONLY", Reference: NewPubkeyReference(key)},
	}, 0)
	assert.Equal(t, -1, FindNextIndex(data, ReferencePubkey))
}

func TestRecordsSkipsFreeSlots(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	data := buildDirectory(t, Header{
		Counter: 2, ActiveRecords: 1, RefType: ReferencePubkey, Name: "gaps.refdb",
	}, []Record{
		{Counter: 1, Name: "FIRST", Reference: NewPubkeyReference(key)},
		{Counter: 2, Name: "SECOND", Reference: NewPubkeyReference(key)},
	}, 1)

	// zero out the first slot to simulate a deleted record
	size := RecordLen(ReferencePubkey)
	copy(data[HeaderLen:HeaderLen+size], make([]byte, size))

	recs, err := Records(data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "SECOND", recs[0].Name)
	assert.Equal(t, key, recs[0].Reference.Pubkey)

	// the freed slot becomes the next insertion point
	assert.Equal(t, 0, FindNextIndex(data, ReferencePubkey))
}

func TestOccupancyFollowsCounter(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	data := buildDirectory(t, Header{
		Counter: 2, ActiveRecords: 1, RefType: ReferencePubkey, Name: "stale.refdb",
	}, []Record{
		{Counter: 0, Name: "STALE", Reference: NewPubkeyReference(key)},
		{Counter: 2, Name: "LIVE", Reference: NewPubkeyReference(key)},
	}, 0)

	// slot 0 still carries a name, but a zeroed counter marks it free
	_, ok, err := RecordAt(data, ReferencePubkey, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, -1, FindIndex(data, ReferencePubkey, "STALE"))
	assert.Equal(t, 1, FindIndex(data, ReferencePubkey, "LIVE"))
	assert.Equal(t, 0, FindNextIndex(data, ReferencePubkey))

	recs, err := Records(data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "LIVE", recs[0].Name)
}

func TestReferencePayloads(t *testing.T) {
	for _, tc := range []struct {
		ref  Reference
		name string
	}{
		{Reference{Type: ReferenceU8, Value: 250}, "U8"},
		{Reference{Type: ReferenceU32, Value: 1 << 30}, "U32"},
		{Reference{Type: ReferenceU64, Value: 1 << 50}, "U64"},
		{Reference{Type: ReferenceF64, Float: 1.25}, "F64"},
	} {
		data := buildDirectory(t, Header{
			Counter: 1, ActiveRecords: 1, RefType: tc.ref.Type, Name: "typed.refdb",
		}, []Record{{Counter: 1, Name: tc.name, Reference: tc.ref}}, 0)

		rec, ok, err := RecordAt(data, tc.ref.Type, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tc.ref.Value, rec.Reference.Value, tc.name)
		assert.Equal(t, tc.ref.Float, rec.Reference.Float, tc.name)
	}
}

func TestPackNameTooLong(t *testing.T) {
	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := PackName(string(long))
	assert.Error(t, err)
}
