package valueobjects

import (
	"strings"

	apperrors "vaultflow/internal/shared_kernel/errors"
)

func DefaultExplorerBaseURLs() map[int64]string {
	return map[int64]string{
		1:     "https://etherscan.io",
		10:    "https://optimistic.etherscan.io",
		8453:  "https://basescan.org",
		42161: "https://arbiscan.io",
	}
}

func ExplorerTxURL(baseURLs map[int64]string, chainID int64, txHash string) (string, *apperrors.AppError) {
	base, ok := baseURLs[chainID]
	if !ok || strings.TrimSpace(base) == "" {
		return "", apperrors.NewInvalidConfiguration(
			"explorer_chain_unsupported",
			"no block explorer is configured for chain",
			map[string]any{"chain_id": chainID},
		)
	}

	return strings.TrimRight(base, "/") + "/tx/" + strings.TrimSpace(txHash), nil
}
