package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEVMAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"valid lowercase", "0x1111111111111111111111111111111111111111", true},
		{"valid mixed case", "0xAbCd111111111111111111111111111111111111", true},
		{"missing prefix", "1111111111111111111111111111111111111111", false},
		{"too short", "0x1111", false},
		{"too long", "0x11111111111111111111111111111111111111111111", false},
		{"non-hex characters", "0xZZZZ111111111111111111111111111111111111", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEVMAddress(tt.address))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	// Checksum casing is deterministic regardless of input casing.
	lower := NormalizeAddress("0xabcdef1234567890abcdef1234567890abcdef12")
	upper := NormalizeAddress("0xABCDEF1234567890ABCDEF1234567890ABCDEF12")
	assert.Equal(t, lower, upper)
	assert.True(t, ValidateEVMAddress(lower))

	// Non-addresses pass through untouched.
	assert.Equal(t, "not-an-address", NormalizeAddress("not-an-address"))
}
