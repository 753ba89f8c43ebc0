package networks

import (
	"fmt"
	"strings"
	"sync"
)

// NetworkString is bound to the --network flag by the config package.
var NetworkString string

var supportedNetworks = []Network{
	MainnetBeta,
	Devnet,
	Testnet,
	Localnet,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// CurrentNetwork resolves NetworkString once and caches the result.
func CurrentNetwork() Network {
	if cachedNetwork != nil {
		return cachedNetwork
	}
	SetNetwork(NetworkString)
	return cachedNetwork
}

// SetNetwork switches the cached cluster, falling back to mainnet-beta
// on an unrecognized name.
func SetNetwork(networkStr string) {
	mu.Lock()
	defer mu.Unlock()

	network, err := GetNetwork(networkStr)
	if err != nil {
		cachedNetwork = MainnetBeta
		return
	}
	cachedNetwork = network
}

// GetNetwork looks a cluster up by canonical or alternative name.
func GetNetwork(name string) (Network, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, network := range supportedNetworks {
		if network.GetName() == needle {
			return network, nil
		}
		for _, alt := range network.GetAlternativeNames() {
			if alt == needle {
				return network, nil
			}
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrNetworkNotFound)
}

// GetSupportedNetworkNames lists every accepted cluster name, for CLI
// help text.
func GetSupportedNetworkNames() []string {
	res := []string{}
	for _, network := range supportedNetworks {
		res = append(res, network.GetName())
		res = append(res, network.GetAlternativeNames()...)
	}
	return res
}
