package profiles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/camt-xlsx/cmd/root"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesCommand_Metadata(t *testing.T) {
	assert.Equal(t, "profiles", Cmd.Use)
	assert.Contains(t, Cmd.Short, "extraction profiles")
	assert.NotNil(t, Cmd.Flags().Lookup("verbose"))
}

func TestProfilesCommand_Run(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	original := root.SharedFlags
	t.Cleanup(func() {
		root.SharedFlags = original
		verbose = false
	})
	root.SharedFlags.ConfigFile = cfgPath
	require.NoError(t, root.Initialize(nil))

	var out bytes.Buffer
	Cmd.SetOut(&out)

	require.NoError(t, Cmd.RunE(Cmd, nil))
	text := out.String()
	assert.Contains(t, text, "NAME")
	assert.Contains(t, text, profile.NameCamt054+" (default)")
	assert.Contains(t, text, profile.NameCamt054Flat)
	assert.Contains(t, text, profile.NameCamt053)
	assert.Contains(t, text, profile.NameCamt052)
	assert.NotContains(t, text, "Buchungsdatum")

	out.Reset()
	verbose = true
	require.NoError(t, Cmd.RunE(Cmd, nil))
	assert.Contains(t, out.String(), "Buchungsdatum")
	assert.Contains(t, out.String(), "Booking Date")
}

func TestDash(t *testing.T) {
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "camt.054", dash("camt.054"))
}
