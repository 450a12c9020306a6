package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		sep      string
		expected string
	}{
		{"1,234.56", "", "1234.56"},
		{"1.234,56", "", "1234.56"},
		{"1234,56", "", "1234.56"},
		{"1,234", "", "1234"},
		{"CHF 1'234.50", "", "1234.5"},
		{"€ 99", "", "99"},
		{"1 234,00 €", "", "1234"},
		{"1.234.567", "", "1234567"},
		{"120.50-", "", "-120.5"},
		{"(45.00)", "", "-45"},
		{"1.234", ",", "1234"},
		{"1,234", ".", "1234"},
		{"12,5", ",", "12.5"},
		{"EUR 7,10", ",", "7.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.sep, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.sep)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12..x"} {
		_, err := ParseAmount(input, "")
		assert.Error(t, err, input)
	}
}

func TestFindAmounts(t *testing.T) {
	got := FindAmounts("Subtotal 100.00\nVAT 7.70\nTotal 107.70")
	assert.Equal(t, []string{"100.00", "7.70", "107.70"}, got)
}
