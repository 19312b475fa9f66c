package chain

import (
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// Address length bounds, matching the bech32 envelope the host ledger uses.
const (
	minAddressLen = 3
	maxAddressLen = 90
)

// ValidateAddress checks that an address is structurally well-formed:
// lowercase alphanumeric, starting with a letter, within length bounds.
// Checksum verification belongs to the host ledger, not the contracts.
func ValidateAddress(addr string) error {
	if len(addr) < minAddressLen || len(addr) > maxAddressLen {
		return apperrors.WithMetadata(apperrors.CodeInvalidAddress, "address length out of bounds", map[string]string{"address": addr})
	}
	if addr[0] >= '0' && addr[0] <= '9' {
		return apperrors.WithMetadata(apperrors.CodeInvalidAddress, "address must start with a letter", map[string]string{"address": addr})
	}
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return apperrors.WithMetadata(apperrors.CodeInvalidAddress, "address must be lowercase alphanumeric", map[string]string{"address": addr})
		}
	}
	return nil
}
