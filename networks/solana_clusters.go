package networks

import (
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

type solanaCluster struct {
	name     string
	altNames []string
	rpcURL   string
	wsURL    string
}

func (c *solanaCluster) GetName() string               { return c.name }
func (c *solanaCluster) GetAlternativeNames() []string { return c.altNames }
func (c *solanaCluster) GetDefaultRPC() string         { return c.rpcURL }
func (c *solanaCluster) GetDefaultWS() string          { return c.wsURL }
func (c *solanaCluster) GetBlockTime() time.Duration   { return 400 * time.Millisecond }

var MainnetBeta Network = &solanaCluster{
	name:     "mainnet-beta",
	altNames: []string{"mainnet", "main"},
	rpcURL:   rpc.MainNetBeta_RPC,
	wsURL:    rpc.MainNetBeta_WS,
}

var Devnet Network = &solanaCluster{
	name:     "devnet",
	altNames: []string{"dev"},
	rpcURL:   rpc.DevNet_RPC,
	wsURL:    rpc.DevNet_WS,
}

var Testnet Network = &solanaCluster{
	name:     "testnet",
	altNames: []string{"test"},
	rpcURL:   rpc.TestNet_RPC,
	wsURL:    rpc.TestNet_WS,
}

var Localnet Network = &solanaCluster{
	name:     "localnet",
	altNames: []string{"local", "localhost"},
	rpcURL:   rpc.LocalNet_RPC,
	wsURL:    rpc.LocalNet_WS,
}
