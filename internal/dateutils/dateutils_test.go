package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		layouts  []string
		expected time.Time
	}{
		{"2024-03-15", nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15.03.2024", nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"05/03/2024", nil, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05/03/2024", []string{DateLayoutUS}, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
		{"March 15, 2024", nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"  15   March 2024 ", nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15 mars 2024", nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"1er décembre 2023", nil, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, _, err := ParseDate(tt.input, tt.layouts...)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "not a date", "31/02/2024"} {
		_, _, err := ParseDate(input)
		assert.Error(t, err, input)
	}
}

func TestToISODate(t *testing.T) {
	assert.Equal(t, "2024-01-09", ToISODate(time.Date(2024, 1, 9, 13, 0, 0, 0, time.UTC)))
}
