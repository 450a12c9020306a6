package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/invoice-extract/cmd/batch"
)

func TestBatchCommand_CommandMetadata(t *testing.T) {
	assert.Equal(t, "batch", batch.Cmd.Use)
	assert.Contains(t, batch.Cmd.Short, "Batch process")
	assert.NotNil(t, batch.Cmd.RunE)
}

func TestBatchCommand_LongDescription(t *testing.T) {
	assert.Contains(t, batch.Cmd.Long, "input directory")
	assert.Contains(t, batch.Cmd.Long, "another directory")
	assert.Contains(t, batch.Cmd.Long, "Example")
}

func TestBatchCommand_RequiresDirectories(t *testing.T) {
	err := batch.Cmd.RunE(batch.Cmd, nil)
	assert.ErrorContains(t, err, "input and output directories")
}
