// Package address parses and validates Pyrin-style payout addresses:
// network-prefix:bech32-payload, e.g. "pyrin:qpzry9x8gf2tvdw0s3jn54khce6mua7l".
// Checksum math is grounded on the teacher's own bech32 implementation in
// internal/crypto/address.go, adapted from Bitcoin/Kaspa's hrp-concatenated
// convention to the colon-separated network-prefix convention this chain
// actually uses on the wire.
package address

import (
	"errors"
	"fmt"
	"strings"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Known network prefixes. Parse and SameNetwork accept any non-empty
// prefix; nothing in this package rejects an address whose prefix isn't one
// of these.
const (
	Mainnet = "pyrin"
	Testnet = "pyrintest"
	Simnet  = "pyrinsim"
	Devnet  = "pyrindev"
)

// Address is a parsed payout address.
type Address struct {
	Prefix  string
	Payload []byte // decoded payload, checksum stripped
	raw     string
}

// String returns the original address string.
func (a Address) String() string { return a.raw }

// Parse splits an address into its network prefix and bech32 payload,
// verifying the checksum. It does not attempt script-type interpretation;
// spec.md's Non-goals exclude wallet/key management, so this package only
// validates well-formedness for routing and devfund-rotation purposes.
func Parse(s string) (Address, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return Address{}, errors.New("address: missing ':' separating network prefix from payload")
	}
	prefix, data := s[:idx], s[idx+1:]
	if prefix == "" {
		return Address{}, errors.New("address: empty network prefix")
	}
	if len(data) < 8 {
		return Address{}, fmt.Errorf("address: payload %q too short to carry a checksum", data)
	}

	decoded := make([]byte, len(data))
	for i := 0; i < len(data); i++ {
		pos := strings.IndexByte(charset, data[i])
		if pos < 0 {
			return Address{}, fmt.Errorf("address: invalid character %q in payload", data[i])
		}
		decoded[i] = byte(pos)
	}

	if !verifyChecksum(prefix, decoded) {
		return Address{}, errors.New("address: checksum mismatch")
	}

	payloadBits := decoded[:len(decoded)-8]
	payload, err := convertBits(payloadBits, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}

	return Address{Prefix: prefix, Payload: payload, raw: s}, nil
}

// Encode builds an address string from a network prefix and raw payload
// bytes, computing the checksum the same way Parse verifies it. Grounded on
// the teacher's AddressFromHash, adapted to the colon-separated prefix
// convention.
func Encode(prefix string, payload []byte) (string, error) {
	converted, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: %w", err)
	}
	checksum := computeChecksum(prefix, converted)
	combined := append(converted, checksum...)

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, b := range combined {
		sb.WriteByte(charset[b])
	}
	return sb.String(), nil
}

func computeChecksum(prefix string, data []byte) []byte {
	values := append(append([]byte{}, data...), make([]byte, 8)...)
	mod := polymod(expand(prefix), values) ^ 1
	checksum := make([]byte, 8)
	for i := 0; i < 8; i++ {
		checksum[i] = byte((mod >> (5 * uint(7-i))) & 31)
	}
	return checksum
}

// Valid reports whether s parses as a well-formed address.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// SameNetwork reports whether two addresses share a network prefix,
// detected by the substring before ':' per spec.md §6's devfund contract.
// It does not require either address to carry a valid bech32 checksum: a
// devfund address is typically a hard-coded constant, not something a user
// typed in, and rejecting it on checksum grounds would just silently
// disable devfund rotation instead of failing loudly at startup.
func SameNetwork(a, b string) bool {
	pa, ok := networkPrefix(a)
	if !ok {
		return false
	}
	pb, ok := networkPrefix(b)
	if !ok {
		return false
	}
	return pa == pb
}

func networkPrefix(s string) (string, bool) {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return "", false
	}
	return s[:idx], true
}

func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	var out []byte
	maxv := uint32(1<<toBits) - 1
	maxAcc := uint32(1<<(fromBits+toBits-1)) - 1

	for _, value := range data {
		if uint32(value)>>fromBits != 0 {
			return nil, fmt.Errorf("invalid data range for bit conversion")
		}
		acc = ((acc << fromBits) | uint32(value)) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, fmt.Errorf("invalid padding in bit conversion")
	}
	return out, nil
}

// computeChecksum and verifyChecksum implement the same generator-polynomial
// bech32-style checksum as the teacher's bech32Checksum/verifyBech32Checksum,
// keyed on the network prefix instead of a bech32 human-readable part.
func verifyChecksum(prefix string, data []byte) bool {
	return polymod(expand(prefix), data) == 1
}

func expand(prefix string) []byte {
	out := make([]byte, 0, len(prefix)*2+1)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]&31)
	}
	return out
}

func polymod(prefixExpanded, data []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range append(append([]byte{}, prefixExpanded...), data...) {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}
