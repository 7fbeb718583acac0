package valueobjects

import (
	"regexp"
	"strings"

	apperrors "vaultflow/internal/shared_kernel/errors"
)

// Payment currencies are identified by CAIP-19 asset ids, e.g.
// eip155:8453/erc20:0x833589fcd6edb6e08f4c7c32d4f71b54bda02913 or eip155:10/slip44:60.
var paymentCurrencyPattern = regexp.MustCompile(`^eip155:[0-9]+/[a-z0-9]+:[0-9a-zA-Zx]+$`)

type PaymentCurrencyID string

func ParsePaymentCurrencyID(raw string) (PaymentCurrencyID, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.NewMissingInput(
			"payment_currency_missing",
			"payment currency is required",
			map[string]any{"field": "payment_currency"},
		)
	}

	if !paymentCurrencyPattern.MatchString(trimmed) {
		return "", apperrors.NewMissingInput(
			"payment_currency_invalid",
			"payment currency must be a CAIP-19 asset id",
			map[string]any{"payment_currency": trimmed},
		)
	}

	return PaymentCurrencyID(trimmed), nil
}

func (id PaymentCurrencyID) String() string {
	return string(id)
}
