// Package registry holds the well-known program addresses the client
// talks to and the PDA derivations shared with the on-chain programs.
// The seed literals here are part of the wire contract and must match
// the deployed programs byte for byte.
package registry

import (
	"github.com/gagliardetto/solana-go"
)

// Main router deployment. Every reference directory lives under this
// program.
var (
	MainRouterProgram = solana.MustPublicKeyFromBase58("9o5DDt9qpKRGwWN6tY3XLfP7TYdEupj4y9x82ni8drUy")
	MainRouterAdmin   = solana.MustPublicKeyFromBase58("BugNRyrbWfNgMWoAkRU1QSWs66FMm1LXBvD2pAiUfUjk")
)

// Protocol router deployments. User operations against a pool or farm
// go through the router of its protocol, never to the AMM directly.
var (
	RaydiumRouterProgram = solana.MustPublicKeyFromBase58("CT8XDeFa1MFm7kTsvGZKByhYeGxNGPaZyAwXgShfXbf1")
	SaberRouterProgram   = solana.MustPublicKeyFromBase58("8EJPZa3KwRoZbMXc8LC5K6enbNp2RJVQFexLhmmKAXkP")
	OrcaRouterProgram    = solana.MustPublicKeyFromBase58("9cucZFT6YkZk5xqVnycSxmgLYbz3yXHB6vmg6bv1gUcz")
)

// Raydium programs, per AMM version.
var (
	RaydiumV2Program      = solana.MustPublicKeyFromBase58("RVKd61ztZW9GUwhRbbLoYVRE5Xf1B2tVscKqwZqXgEr")
	RaydiumV3Program      = solana.MustPublicKeyFromBase58("27haf8L6oxUeXrHrgEgsexjSY5hbVUWEmvv9Nyxg8vQv")
	RaydiumV4Program      = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	RaydiumStakeProgram   = solana.MustPublicKeyFromBase58("EhhTKczWMGQt46ynNeRX1WfeagwwJd7ufHvCDjRxjo5Q")
	RaydiumStakeV4Program = solana.MustPublicKeyFromBase58("CBuCnLe26faBpcBP2fktp4rp8abpcAnTWft6ZrP5Q4T")
	RaydiumStakeV5Program = solana.MustPublicKeyFromBase58("9KEPoZmtHUrBbhWN1v1KWLMkkvwY6WLtAVUCPRtRjP4z")
)

// Saber programs. Staking goes through Quarry.
var (
	SaberSwapProgram  = solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	QuarryMineProgram = solana.MustPublicKeyFromBase58("QMNeHCGYnLVDn1icRAfQZpjPLBNkfGbSKRB83G5d8KB")
)

// Orca programs.
var (
	OrcaSwapProgram  = solana.MustPublicKeyFromBase58("9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP")
	OrcaStakeProgram = solana.MustPublicKeyFromBase58("82yxjeMsvaURa4MbZZ7WZZHfobirZYkH1zF8fmeGtyaQ")
)

// PDA seed literals shared with the on-chain programs.
const (
	SeedMultisig              = "multisig"
	SeedUserInfoAccount       = "user_info_account"
	SeedVaultsAssetsInfo      = "vaults_assets_info"
	SeedCustodiesAssetsInfo   = "custodies_assets_info"
	SeedFundWdCustodyAccount  = "fund_wd_custody_account"
	SeedFundTdCustodyFeesAcct = "fund_td_custody_fees_account"
	SeedUserRequestsAccount   = "user_requests_account"
	SeedMiner                 = "Miner"
)

// Reference directory names, one directory account per entity kind.
const (
	StorageProgram = "Program"
	StorageToken   = "Token"
	StoragePool    = "Pool"
	StorageFarm    = "Farm"
	StorageVault   = "Vault"
	StorageFund    = "Fund"
)

// Registry is the set of program deployments one client instance is
// built against. Tests substitute their own instance.
type Registry struct {
	MainRouterProgram    solana.PublicKey
	MainRouterAdmin      solana.PublicKey
	RaydiumRouterProgram solana.PublicKey
	SaberRouterProgram   solana.PublicKey
	OrcaRouterProgram    solana.PublicKey
	QuarryMineProgram    solana.PublicKey
}

// Default returns the mainnet deployment.
func Default() *Registry {
	return &Registry{
		MainRouterProgram:    MainRouterProgram,
		MainRouterAdmin:      MainRouterAdmin,
		RaydiumRouterProgram: RaydiumRouterProgram,
		SaberRouterProgram:   SaberRouterProgram,
		OrcaRouterProgram:    OrcaRouterProgram,
		QuarryMineProgram:    QuarryMineProgram,
	}
}

// MultisigAddress derives the admin multisig account of the main
// router.
func (r *Registry) MultisigAddress() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedMultisig)},
		r.MainRouterProgram,
	)
	return addr, err
}

// RefdbAddress derives the directory account for one entity kind.
func (r *Registry) RefdbAddress(storageName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(storageName)},
		r.MainRouterProgram,
	)
	return addr, err
}

// EntityAddress derives the account holding one entity's metadata.
func (r *Registry) EntityAddress(storageName, entityName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(storageName), []byte(entityName)},
		r.MainRouterProgram,
	)
	return addr, err
}

// SaberMinerAddress derives the Quarry miner account of a wallet.
func (r *Registry) SaberMinerAddress(quarry, wallet solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedMiner), quarry[:], wallet[:]},
		r.QuarryMineProgram,
	)
	return addr, err
}

// MainRouterMultisigAddress derives the admin multisig account of the
// default deployment's main router.
func MainRouterMultisigAddress() (solana.PublicKey, error) {
	return Default().MultisigAddress()
}

// RefdbAddress derives a directory account of the default deployment.
func RefdbAddress(storageName string) (solana.PublicKey, error) {
	return Default().RefdbAddress(storageName)
}

// EntityAddress derives an entity metadata account of the default
// deployment.
func EntityAddress(storageName, entityName string) (solana.PublicKey, error) {
	return Default().EntityAddress(storageName, entityName)
}

// VaultUserInfoAddress derives the per-user stats account of a vault.
func VaultUserInfoAddress(vaultProgram, wallet solana.PublicKey, vaultName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedUserInfoAccount), wallet[:], []byte(vaultName)},
		vaultProgram,
	)
	return addr, err
}

// FundMultisigAddress derives a fund's admin multisig account.
func FundMultisigAddress(fundProgram solana.PublicKey, fundName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedMultisig), []byte(fundName)},
		fundProgram,
	)
	return addr, err
}

// FundVaultsAssetsInfoAddress derives the account tracking a fund's
// vault holdings.
func FundVaultsAssetsInfoAddress(fundProgram solana.PublicKey, fundName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedVaultsAssetsInfo), []byte(fundName)},
		fundProgram,
	)
	return addr, err
}

// FundCustodiesAssetsInfoAddress derives the account tracking a fund's
// custody holdings.
func FundCustodiesAssetsInfoAddress(fundProgram solana.PublicKey, fundName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedCustodiesAssetsInfo), []byte(fundName)},
		fundProgram,
	)
	return addr, err
}

// FundWdCustodyAddress derives the custody token account that holds
// client deposits and withdrawals for one token of a fund.
func FundWdCustodyAddress(fundProgram solana.PublicKey, fundName, tokenName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedFundWdCustodyAccount), []byte(fundName), []byte(tokenName)},
		fundProgram,
	)
	return addr, err
}

// FundUserInfoAddress derives the per-user stats account of a fund.
func FundUserInfoAddress(fundProgram, wallet solana.PublicKey, fundName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedUserInfoAccount), wallet[:], []byte(fundName)},
		fundProgram,
	)
	return addr, err
}

// FundUserRequestsAddress derives the account tracking one user's
// pending deposit and withdrawal for one token of a fund.
func FundUserRequestsAddress(fundProgram, wallet solana.PublicKey, fundName, tokenName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedUserRequestsAccount), wallet[:], []byte(fundName), []byte(tokenName)},
		fundProgram,
	)
	return addr, err
}

// FundTdCustodyFeesAddress derives the fee account of a fund trading
// custody.
func FundTdCustodyFeesAddress(fundProgram solana.PublicKey, fundName, tokenName string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(SeedFundTdCustodyFeesAcct), []byte(fundName), []byte(tokenName)},
		fundProgram,
	)
	return addr, err
}

// SaberMinerAddress derives a Quarry miner account under the default
// deployment.
func SaberMinerAddress(quarry, wallet solana.PublicKey) (solana.PublicKey, error) {
	return Default().SaberMinerAddress(quarry, wallet)
}

// OrcaFarmerAddress derives the aquafarm farmer account of a wallet.
func OrcaFarmerAddress(farmProgram, farmID, wallet solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{farmID[:], wallet[:], solana.TokenProgramID[:]},
		farmProgram,
	)
	return addr, err
}
