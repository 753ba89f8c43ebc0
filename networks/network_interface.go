package networks

import (
	"time"
)

// Network describes one Solana cluster the client can point at.
type Network interface {
	// GetName returns the canonical cluster name.
	GetName() string

	// GetAlternativeNames returns other names accepted on the command
	// line for this cluster.
	GetAlternativeNames() []string

	// GetDefaultRPC returns the public RPC endpoint used when the user
	// doesn't supply one.
	GetDefaultRPC() string

	// GetDefaultWS returns the matching websocket endpoint.
	GetDefaultWS() string

	// GetBlockTime returns the cluster's slot time, used to scale
	// confirmation waits.
	GetBlockTime() time.Duration
}
