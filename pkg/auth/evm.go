package auth

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateEVMAddress checks if a string is a valid EVM address
func ValidateEVMAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	if len(address) != 42 {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}

// NormalizeAddress returns a checksummed EVM address.
// Returns the input unchanged if it is not an address.
func NormalizeAddress(address string) string {
	if !ValidateEVMAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}
