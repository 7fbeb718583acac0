package valueobjects

import (
	"strings"

	apperrors "vaultflow/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

// defaultDepositWholeTokens is applied when the amount text is empty, unparsable,
// or zero. The flow never blocks on a bad amount entry.
const defaultDepositWholeTokens = 10

const maxTokenDecimals = 30

type DepositAmount struct {
	value decimal.Decimal
}

// ParseDepositAmount turns free-text user input into a deposit amount, falling
// back to the default when parsing yields zero or garbage.
func ParseDepositAmount(inputText string) DepositAmount {
	trimmed := strings.TrimSpace(inputText)
	if trimmed == "" {
		return DepositAmount{value: decimal.NewFromInt(defaultDepositWholeTokens)}
	}

	parsed, err := decimal.NewFromString(trimmed)
	if err != nil || parsed.Sign() <= 0 {
		return DepositAmount{value: decimal.NewFromInt(defaultDepositWholeTokens)}
	}

	return DepositAmount{value: parsed}
}

// BaseUnits scales the amount by the token's decimals and truncates any dust
// below one base unit, returning the integer amount as a decimal string.
func (a DepositAmount) BaseUnits(tokenDecimals int) (string, *apperrors.AppError) {
	if tokenDecimals < 0 || tokenDecimals > maxTokenDecimals {
		return "", apperrors.NewInvalidConfiguration(
			"token_decimals_invalid",
			"token decimals must be between 0 and 30",
			map[string]any{"token_decimals": tokenDecimals},
		)
	}

	return a.value.Shift(int32(tokenDecimals)).Truncate(0).String(), nil
}

func (a DepositAmount) Decimal() decimal.Decimal {
	return a.value
}

func (a DepositAmount) String() string {
	return a.value.String()
}
