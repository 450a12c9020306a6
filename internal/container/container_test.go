package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/invoice-extract/internal/config"
	"fjacquet/invoice-extract/internal/logging"
)

func templateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.yml"), []byte(`
issuer: ACME Corp
keywords: [ACME, INVOICE]
fields:
  invoice_number: 'No:\s*(\S+)'
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("issuer: [unclosed"), 0600))
	return dir
}

func TestNewContainer(t *testing.T) {
	dir := templateDir(t)

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		errorMsg string
	}{
		{name: "native backend", mutate: func(c *config.Config) {}},
		{name: "pdftotext backend", mutate: func(c *config.Config) { c.Extraction.Backend = "pdftotext" }},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Extraction.Backend = "ocr" }, errorMsg: "unknown extraction backend"},
		{name: "missing template dir", mutate: func(c *config.Config) { c.Templates.Dir = filepath.Join(dir, "nope") }, errorMsg: "template directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Templates.Dir = dir
			tt.mutate(cfg)

			c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c.GetExtractor())
			assert.NotNil(t, c.GetProcessor())
			assert.NotNil(t, c.GetSessions())
			assert.Same(t, cfg, c.GetConfig())
			assert.NoError(t, c.Close())
		})
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestContainer_TemplatesAndReport(t *testing.T) {
	cfg := config.Default()
	cfg.Templates.Dir = templateDir(t)
	logger := logging.NewMockLogger()

	c, err := NewContainerWithLogger(cfg, logger)
	require.NoError(t, err)

	templates := c.GetTemplates()
	require.Len(t, templates, 1)
	assert.Equal(t, "ACME Corp", templates[0].Issuer)
	assert.Len(t, c.GetLoadReport().Skipped, 1)
	assert.True(t, logger.HasEntry("INFO", "Container initialized successfully"))
}

func TestContainer_Encoder(t *testing.T) {
	cfg := config.Default()
	cfg.Templates.Dir = templateDir(t)
	cfg.Export.Delimiter = ";"
	cfg.Export.HeaderLocale = "fr"

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	enc, err := c.Encoder("")
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", enc.Extension())

	enc, err = c.Encoder("csv")
	require.NoError(t, err)
	assert.Equal(t, ".csv", enc.Extension())

	opts := c.GetExportOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "fr", opts.HeaderLocale)
}
