// Package currencyutils parses invoice amounts into decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	symbolPattern = regexp.MustCompile(`[€$£¥₣₤₹₽₩฿₪\s\x{00A0}\x{202F}]|CHF|EUR|USD|GBP`)
	amountPattern = regexp.MustCompile(`-?\d[\d.,' \x{00A0}\x{202F}]*\d|-?\d`)
)

// ParseAmount parses an amount such as "1,234.56", "1.234,56", "CHF 1'234.56"
// or "€ 99". decimalSep forces the decimal separator ("." or ","); an empty
// decimalSep auto-detects it.
func ParseAmount(amountStr, decimalSep string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	standardized := StandardizeAmount(amountStr, decimalSep)
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount rewrites an amount string into the form decimal.NewFromString accepts.
func StandardizeAmount(amountStr, decimalSep string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	negative := false
	if strings.HasSuffix(amountStr, "-") {
		negative = true
		amountStr = strings.TrimSuffix(amountStr, "-")
	}
	if strings.HasPrefix(amountStr, "(") && strings.HasSuffix(amountStr, ")") {
		negative = true
		amountStr = strings.Trim(amountStr, "()")
	}

	switch decimalSep {
	case ",":
		amountStr = strings.ReplaceAll(amountStr, ".", "")
		amountStr = strings.ReplaceAll(amountStr, ",", ".")
	case ".":
		amountStr = strings.ReplaceAll(amountStr, ",", "")
	default:
		amountStr = detectSeparators(amountStr)
	}

	if negative && !strings.HasPrefix(amountStr, "-") {
		amountStr = "-" + amountStr
	}
	return amountStr
}

func detectSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		// "1.234.567" is a thousands-grouped integer
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// FindAmounts returns every amount-looking token of text, in order.
func FindAmounts(text string) []string {
	return amountPattern.FindAllString(text, -1)
}
