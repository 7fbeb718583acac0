package valueobjects

import (
	"regexp"
	"strings"

	apperrors "vaultflow/internal/shared_kernel/errors"

	"golang.org/x/crypto/sha3"
)

var evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddressForState lowercases a user or contract address before it is
// persisted into the flow state blob. Addresses are compared in canonical form.
func NormalizeAddressForState(address string) (string, *apperrors.AppError) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "", apperrors.NewMissingInput(
			"address_missing",
			"address is required",
			map[string]any{"field": "address"},
		)
	}

	if !evmAddressPattern.MatchString(trimmed) {
		return "", apperrors.NewMissingInput(
			"address_invalid",
			"address is not a valid EVM address",
			map[string]any{"field": "address"},
		)
	}

	return "0x" + strings.ToLower(strings.TrimPrefix(trimmed, "0x")), nil
}

func ToEIP55Checksum(canonical string) (string, *apperrors.AppError) {
	normalized := "0x" + strings.ToLower(strings.TrimSpace(strings.TrimPrefix(canonical, "0x")))
	if !evmAddressPattern.MatchString(normalized) {
		return "", apperrors.NewInternal(
			"address_canonical_invalid",
			"canonical address is invalid",
			map[string]any{"address": canonical},
		)
	}

	hexPart := strings.TrimPrefix(normalized, "0x")
	hash := sha3.NewLegacyKeccak256()
	if _, err := hash.Write([]byte(hexPart)); err != nil {
		return "", apperrors.NewInternal(
			"address_checksum_hash_failed",
			"failed to hash address for checksum",
			map[string]any{"error": err.Error()},
		)
	}
	checksumBytes := hash.Sum(nil)

	out := make([]byte, len(hexPart))
	for i := 0; i < len(hexPart); i++ {
		ch := hexPart[i]
		if ch >= '0' && ch <= '9' {
			out[i] = ch
			continue
		}

		var nibble byte
		if i%2 == 0 {
			nibble = (checksumBytes[i/2] >> 4) & 0x0f
		} else {
			nibble = checksumBytes[i/2] & 0x0f
		}

		if nibble >= 8 {
			out[i] = ch - ('a' - 'A')
		} else {
			out[i] = ch
		}
	}

	return "0x" + string(out), nil
}

func NormalizeVaultContract(raw string) (string, *apperrors.AppError) {
	normalized, appErr := NormalizeAddressForState(raw)
	if appErr != nil {
		return "", apperrors.NewInvalidConfiguration(
			"vault_contract_invalid",
			"vault contract address is invalid",
			map[string]any{"address": raw},
		)
	}

	return normalized, nil
}
