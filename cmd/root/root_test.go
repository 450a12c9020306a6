package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/invoice-extract/cmd/root"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "invoice-extract", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "invoice fields")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"config", "templates", "log-level"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "t", root.Cmd.PersistentFlags().Lookup("templates").Shorthand)
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, nil)
	})
}

func TestPersistentPreRun_WiresContainer(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	tmplDir := filepath.Join(dir, "tpl")
	require.NoError(t, os.Mkdir(tmplDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "acme.yml"),
		[]byte("issuer: ACME\nkeywords: ACME\nfields:\n  invoice_number: 'No:\\s*(\\S+)'\n"), 0o600))

	orig := root.Flags
	t.Cleanup(func() {
		root.Flags = orig
		root.AppConfig = nil
		root.AppContainer = nil
	})
	root.Flags.TemplatesDir = tmplDir
	root.Flags.LogLevel = "DEBUG"

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))

	require.NotNil(t, root.GetContainer())
	assert.Equal(t, "debug", root.GetConfig().Log.Level)
	assert.Len(t, root.GetContainer().GetTemplates(), 1)
	assert.NotNil(t, root.GetLogger())
}

func TestPersistentPreRun_MissingTemplates(t *testing.T) {
	t.Chdir(t.TempDir())

	orig := root.Flags
	t.Cleanup(func() { root.Flags = orig })
	root.Flags.TemplatesDir = "does-not-exist"

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template directory")
}
