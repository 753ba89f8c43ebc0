package types

import (
	"strings"

	"github.com/solfarms/solfarm/common"
)

// Protocol identifies which AMM a pool or farm belongs to. Every
// protocol-specific behavior in the client dispatches on this value, so
// the set is closed.
type Protocol uint8

const (
	ProtocolRaydium Protocol = iota
	ProtocolSaber
	ProtocolOrca
)

func (p Protocol) String() string {
	switch p {
	case ProtocolRaydium:
		return "RDM"
	case ProtocolSaber:
		return "SBR"
	case ProtocolOrca:
		return "ORC"
	}
	return "???"
}

// ParseProtocol maps a name prefix to its protocol.
func ParseProtocol(tag string) (Protocol, error) {
	switch strings.ToUpper(tag) {
	case "RDM":
		return ProtocolRaydium, nil
	case "SBR":
		return ProtocolSaber, nil
	case "ORC":
		return ProtocolOrca, nil
	}
	return 0, common.ValueErrorf("unknown protocol %q", tag)
}
