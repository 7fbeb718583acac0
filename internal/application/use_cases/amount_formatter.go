package use_cases

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	minSignificantFractionDigits = 3
	maxSignificantFractionDigits = 4

	abbreviationFractionDigits = 2
)

var (
	oneMillion  = decimal.NewFromInt(1_000_000)
	oneBillion  = decimal.NewFromInt(1_000_000_000)
	decimalOne  = decimal.NewFromInt(1)
	decimalZero = decimal.Decimal{}
)

// AmountFormatter renders purchase/receive amounts for screens. Precision is
// data dependent: small amounts keep enough fraction digits after their
// leading zeros to stay meaningful, large amounts are capped. Amounts are
// truncated, never rounded up, so a screen never overstates what the user
// pays or receives.
type AmountFormatter struct {
	printer    *message.Printer
	abbreviate bool
}

type AmountFormatterConfig struct {
	Abbreviate bool
}

func NewAmountFormatter(cfg AmountFormatterConfig) *AmountFormatter {
	return &AmountFormatter{
		printer:    message.NewPrinter(language.English),
		abbreviate: cfg.Abbreviate,
	}
}

// Format renders a decimal amount with grouping and data-dependent precision.
// A nil amount renders as the empty string; display helpers must never fail a
// screen render.
func (f *AmountFormatter) Format(amount *decimal.Decimal) string {
	if f == nil || amount == nil {
		return ""
	}

	if f.abbreviate {
		if abbreviated, ok := f.formatAbbreviated(*amount); ok {
			return abbreviated
		}
	}

	return f.formatTruncated(*amount)
}

// FormatString parses a gateway-provided decimal string and formats it.
// Empty or unparsable input renders as the empty string.
func (f *AmountFormatter) FormatString(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return ""
	}

	return f.Format(&parsed)
}

func (f *AmountFormatter) formatTruncated(amount decimal.Decimal) string {
	leadingZeros := leadingFractionZeros(amount)

	significant := leadingZeros + 1
	if significant < minSignificantFractionDigits {
		significant = minSignificantFractionDigits
	}
	if significant > maxSignificantFractionDigits {
		significant = maxSignificantFractionDigits
	}

	truncated := amount.Truncate(int32(leadingZeros + significant))

	return f.group(truncated)
}

func (f *AmountFormatter) formatAbbreviated(amount decimal.Decimal) (string, bool) {
	abs := amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(oneBillion):
		return f.group(amount.Div(oneBillion).Truncate(abbreviationFractionDigits)) + "B", true
	case abs.GreaterThanOrEqual(oneMillion):
		return f.group(amount.Div(oneMillion).Truncate(abbreviationFractionDigits)) + "M", true
	default:
		return "", false
	}
}

// group renders with locale-aware digit grouping on the integer part, keeping
// the fraction digits the truncation decided on.
func (f *AmountFormatter) group(amount decimal.Decimal) string {
	rendered := amount.String()

	sign := ""
	if strings.HasPrefix(rendered, "-") {
		sign = "-"
		rendered = strings.TrimPrefix(rendered, "-")
	}

	integerPart := rendered
	fractionPart := ""
	if dot := strings.IndexByte(rendered, '.'); dot >= 0 {
		integerPart = rendered[:dot]
		fractionPart = rendered[dot:]
	}

	whole := amount.Abs().Truncate(0).BigInt()
	if !whole.IsInt64() {
		return sign + integerPart + fractionPart
	}

	grouped := f.printer.Sprintf("%d", whole.Int64())

	return sign + grouped + fractionPart
}

// leadingFractionZeros counts zero digits between the decimal point and the
// first significant fraction digit of the raw representation.
func leadingFractionZeros(amount decimal.Decimal) int {
	if amount.Equal(decimalZero) {
		return 0
	}

	abs := amount.Abs()
	if abs.GreaterThanOrEqual(decimalOne) && abs.Mod(decimalOne).Equal(decimalZero) {
		return 0
	}

	rendered := abs.String()
	dot := strings.IndexByte(rendered, '.')
	if dot < 0 {
		return 0
	}

	zeros := 0
	for _, ch := range rendered[dot+1:] {
		if ch != '0' {
			break
		}
		zeros++
	}

	return zeros
}
