// Package currencyutils parses and formats monetary amounts.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonAmountChars = regexp.MustCompile(`[€$£¥\s]|CHF|EUR|USD|GBP`)

// ParseAmount parses an amount such as "1234.5", "1'234.50", "1.234,56" or
// "CHF 100". Empty or non-numeric input is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency markers and thousands separators so the
// result can be handed to decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = nonAmountChars.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")
	amountStr = strings.ReplaceAll(amountStr, "’", "")

	switch {
	case strings.Contains(amountStr, ",") && strings.Contains(amountStr, "."):
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case strings.Contains(amountStr, ","):
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	return amountStr
}

// GroupThousands renders amount with two decimals, '.' as decimal mark and sep
// between groups of three integer digits: 1234.5 -> "1 234.50" for sep " ".
func GroupThousands(amount decimal.Decimal, sep string) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart := fixed, ""
	if dot := strings.IndexByte(fixed, '.'); dot >= 0 {
		intPart, fracPart = fixed[:dot], fixed[dot:]
	}
	if sep == "" || len(intPart) <= 3 {
		return sign + intPart + fracPart
	}

	var b strings.Builder
	b.Grow(len(fixed) + len(intPart)/3*len(sep) + 1)
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(fracPart)
	return b.String()
}

// FormatAmount returns "<CODE> <grouped amount>", or just the grouped amount
// when currency is empty.
func FormatAmount(amount decimal.Decimal, currency, sep string) string {
	formatted := GroupThousands(amount, sep)
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return formatted
	}
	return currency + " " + formatted
}
