//go:build !integration

package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/config"
)

// useTestConfig loads defaults from an empty temp dir into cfg and restores
// the previous cfg and working directory afterwards.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))

	oldCfg := cfg
	c, err := config.Load()
	require.NoError(t, err)
	cfg = c

	restore := zap.ReplaceGlobals(zap.NewNop())
	t.Cleanup(func() {
		restore()
		cfg = oldCfg
		os.Chdir(origDir) //nolint:errcheck
	})
	return dir
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"collect", "geocode", "generate", "update", "geojson", "lookup"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "storegeo", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommands_RequireExactlyTwoArgs(t *testing.T) {
	for _, cmd := range []*cobra.Command{collectCmd, geocodeCmd, generateCmd, updateCmd, geojsonCmd, lookupCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.Error(t, cmd.Args(cmd, nil))
			assert.Error(t, cmd.Args(cmd, []string{"one"}))
			assert.Error(t, cmd.Args(cmd, []string{"one", "two", "three"}))
			assert.NoError(t, cmd.Args(cmd, []string{"one", "two"}))
		})
	}
}

func TestExecute_WrongArgCountFailsBeforeProcessing(t *testing.T) {
	dir := useTestConfig(t)
	out := filepath.Join(dir, "stores.go")

	rootCmd.SetArgs([]string{"generate", filepath.Join(dir, "stores.json")})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s), received 1")
	assert.NoFileExists(t, out)
}

func TestCommand_Flags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{collectCmd, []string{"fail-fast"}},
		{geocodeCmd, []string{"cache", "seed-artifact", "journal", "delay"}},
		{generateCmd, []string{"package", "gofmt"}},
		{updateCmd, []string{"addresses", "cache", "seed-artifact", "journal", "delay"}},
	}
	for _, tt := range tests {
		for _, name := range tt.flags {
			assert.NotNil(t, tt.cmd.Flags().Lookup(name), "%s should have --%s flag", tt.cmd.Name(), name)
		}
	}

	assert.Equal(t, "stores.json", updateCmd.Flags().Lookup("cache").DefValue)
	assert.Equal(t, "addresses.json", updateCmd.Flags().Lookup("addresses").DefValue)
}

func TestRootCmd_PersistentPreRunE_WithConfigFile(t *testing.T) {
	dir := useTestConfig(t)
	content := `
geocode:
  provider: census
  delay_ms: 250
log:
  level: warn
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	cfg = nil

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "census", cfg.Geocode.Provider)
	assert.Equal(t, 250, cfg.Geocode.DelayMS)
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	dir := useTestConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: loud\n"), 0o644))

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
