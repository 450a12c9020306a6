package serve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/invoice-extract/cmd/serve"
)

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serve.Cmd.Use)
	assert.Contains(t, serve.Cmd.Long, "/v1/invoices")
	assert.NotNil(t, serve.Cmd.Flags().Lookup("addr"))
}

func TestServeCommand_RequiresContainer(t *testing.T) {
	err := serve.Cmd.RunE(serve.Cmd, nil)
	assert.ErrorContains(t, err, "container not initialized")
}
