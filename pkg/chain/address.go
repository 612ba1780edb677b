// Package chain holds EVM identifier helpers shared by the repositories.
package chain

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// hashHexLen is the length of a 32-byte hash in hex, without the 0x prefix.
const hashHexLen = 64

// NormalizeAddress lower-cases an address so lookups are case-insensitive.
// The stored form is always lower-case, never checksummed.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// NormalizeHash lower-cases a transaction hash.
func NormalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// ValidateEVMAddress checks if a string is a valid 20-byte hex address.
func ValidateEVMAddress(address string) bool {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	return common.IsHexAddress(address)
}

// ValidateTxHash checks if a string is a 0x-prefixed 32-byte hex hash.
func ValidateTxHash(hash string) bool {
	hash = strings.TrimSpace(hash)
	if !strings.HasPrefix(hash, "0x") || len(hash) != hashHexLen+2 {
		return false
	}
	_, err := hex.DecodeString(hash[2:])
	return err == nil
}

// ChecksumAddress returns the EIP-55 form of an address for display.
func ChecksumAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
