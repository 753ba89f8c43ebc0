// Package names implements the entity naming grammar. Names look like
//
//	[LP.|VT.|FD.]PROTOCOL.TOKEN_A[-TOKEN_B][-V<digits>]
//
// so "RDM.RAY-SRM-V4" is version 4 of the Raydium RAY-SRM pool and
// "LP.ORC.SOL-USDC-V1" its LP token. Names are case-sensitive and
// versions are whole suffix tokens, never parsed out of token symbols.
package names

import (
	"strconv"
	"strings"

	"github.com/solfarms/solfarm/common"
)

// Entity class prefixes.
const (
	PrefixLpToken    = "LP."
	PrefixVaultToken = "VT."
	PrefixFundToken  = "FD."
)

// ExtractVersion parses a single name segment of the form "V<digits>".
func ExtractVersion(segment string) (int, bool) {
	if len(segment) < 2 || segment[0] != 'V' {
		return 0, false
	}
	v, err := strconv.Atoi(segment[1:])
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// SplitVersion strips a trailing "-V<digits>" token off a name. It
// returns version -1 when the name carries no version suffix.
func SplitVersion(name string) (base string, version int) {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return name, -1
	}
	v, ok := ExtractVersion(name[i+1:])
	if !ok {
		return name, -1
	}
	return name[:i], v
}

// WithVersion appends a version suffix to an unversioned base name.
func WithVersion(base string, version int) string {
	return base + "-V" + strconv.Itoa(version)
}

// LatestVersions maps every versioned name in the input to the highest
// version seen for its base. Unversioned names are ignored. The result
// is the alias table: base name -> full name of the latest version.
func LatestVersions(all []string) map[string]string {
	best := map[string]int{}
	out := map[string]string{}
	for _, name := range all {
		base, v := SplitVersion(name)
		if v < 0 {
			continue
		}
		if prev, ok := best[base]; !ok || v > prev {
			best[base] = v
			out[base] = name
		}
	}
	return out
}

// StripClassPrefix removes a leading LP./VT./FD. marker if present.
func StripClassPrefix(name string) string {
	for _, p := range []string{PrefixLpToken, PrefixVaultToken, PrefixFundToken} {
		if strings.HasPrefix(name, p) {
			return name[len(p):]
		}
	}
	return name
}

// ExtractTokenNames pulls the underlying token symbols out of a pool,
// farm or LP token name. Single-token names return an empty tokenB.
func ExtractTokenNames(name string) (tokenA, tokenB string, err error) {
	stripped := StripClassPrefix(name)
	dot := strings.LastIndex(stripped, ".")
	if dot < 0 || dot == len(stripped)-1 {
		return "", "", common.ValueErrorf("name %q has no token part", name)
	}
	pair, _ := SplitVersion(stripped[dot+1:])
	parts := strings.SplitN(pair, "-", 2)
	if parts[0] == "" {
		return "", "", common.ValueErrorf("name %q has no token part", name)
	}
	tokenA = parts[0]
	if len(parts) == 2 {
		tokenB = parts[1]
	}
	return tokenA, tokenB, nil
}

// ProtocolTag returns the protocol segment of a pool or farm name.
func ProtocolTag(name string) (string, error) {
	stripped := StripClassPrefix(name)
	dot := strings.Index(stripped, ".")
	if dot <= 0 {
		return "", common.ValueErrorf("name %q has no protocol part", name)
	}
	return stripped[:dot], nil
}
