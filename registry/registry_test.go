package registry

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefdbAddressStable(t *testing.T) {
	a, err := RefdbAddress(StorageToken)
	require.NoError(t, err)
	b, err := RefdbAddress(StorageToken)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := RefdbAddress(StoragePool)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestUserScopedAddressesDiffer(t *testing.T) {
	program := solana.MustPublicKeyFromBase58("9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP")
	w1 := solana.NewWallet().PublicKey()
	w2 := solana.NewWallet().PublicKey()

	a, err := VaultUserInfoAddress(program, w1, "RDM.STC.RAY-SRM-V1")
	require.NoError(t, err)
	b, err := VaultUserInfoAddress(program, w2, "RDM.STC.RAY-SRM-V1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaberMinerAddress(t *testing.T) {
	quarry := solana.NewWallet().PublicKey()
	wallet := solana.NewWallet().PublicKey()

	a, err := SaberMinerAddress(quarry, wallet)
	require.NoError(t, err)
	b, err := SaberMinerAddress(quarry, wallet)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
