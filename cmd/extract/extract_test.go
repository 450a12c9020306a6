package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/invoice-extract/cmd/extract"
)

func TestExtractCommand_Metadata(t *testing.T) {
	assert.Equal(t, "extract", extract.Cmd.Use)
	assert.Contains(t, extract.Cmd.Short, "Extract invoices")
	assert.Contains(t, extract.Cmd.Long, "Example")
	assert.NotNil(t, extract.Cmd.RunE)
}

func TestExtractCommand_Flags(t *testing.T) {
	for flag, short := range map[string]string{"input": "i", "output": "o", "format": "f", "validate": "v"} {
		f := extract.Cmd.Flags().Lookup(flag)
		if assert.NotNil(t, f, flag) {
			assert.Equal(t, short, f.Shorthand)
		}
	}
	assert.NotNil(t, extract.Cmd.Flags().Lookup("debug-report"))
}

func TestExtractCommand_RequiresInput(t *testing.T) {
	err := extract.Cmd.RunE(extract.Cmd, nil)
	assert.ErrorContains(t, err, "--input")
}
