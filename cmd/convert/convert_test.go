package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/camt-xlsx/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notification = `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.054.001.08">
  <BkToCstmrDbtCdtNtfctn><Ntfctn><Ntry>
    <BookgDt><Dt>2024-11-04</Dt></BookgDt>
    <NtryDtls><TxDtls><Amt Ccy="CHF">100.00</Amt></TxDtls></NtryDtls>
  </Ntry></Ntfctn></BkToCstmrDbtCdtNtfctn>
</Document>`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	original := root.SharedFlags
	t.Cleanup(func() {
		root.SharedFlags = original
		output, format, policy = "", "", ""
		flatten = false
	})
	root.SharedFlags.ConfigFile = cfgPath
	require.NoError(t, root.Initialize(nil))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	Cmd.SetOut(&stdout)
	Cmd.SetErr(&stderr)
	Cmd.SetContext(context.Background())
	err := Cmd.RunE(Cmd, args)
	return stdout.String(), stderr.String(), err
}

func TestConvertCommand_Metadata(t *testing.T) {
	assert.Equal(t, "convert [files or directories...]", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Convert camt documents")
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.RunE)
	for _, name := range []string{"output", "format", "policy", "flatten"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "o", Cmd.Flags().Lookup("output").Shorthand)
}

func TestConvertCommand_Run(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "avis.xml")
	require.NoError(t, os.WriteFile(in, []byte(notification), 0o600))
	output = filepath.Join(dir, "out.xlsx")

	stdout, _, err := run(t, in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK      avis.xml (1 rows)")
	assert.Contains(t, stdout, "Wrote 1 rows to "+output)
	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestConvertCommand_PartialFailure(t *testing.T) {
	dir := setup(t)
	good := filepath.Join(dir, "avis.xml")
	bad := filepath.Join(dir, "broken.xml")
	require.NoError(t, os.WriteFile(good, []byte(notification), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("<Document>"), 0o600))
	output = filepath.Join(dir, "out.csv")
	format = "csv"

	stdout, stderr, err := run(t, good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, stderr, "FAILED  broken.xml")
	assert.Contains(t, stdout, "OK      avis.xml")
	_, statErr := os.Stat(output)
	assert.NoError(t, statErr, "rows of valid documents are still written")
}

func TestConvertCommand_NoRecords(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "leer.xml")
	require.NoError(t, os.WriteFile(in, []byte("<Document/>"), 0o600))
	output = filepath.Join(dir, "out.xlsx")

	stdout, _, err := run(t, in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "EMPTY   leer.xml")
	assert.Contains(t, stdout, "No records found")
}

func TestConvertCommand_InvalidPolicy(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "avis.xml")
	require.NoError(t, os.WriteFile(in, []byte(notification), 0o600))
	policy = "ignore"

	_, _, err := run(t, in)
	assert.Error(t, err)
}

func TestConvertCommand_Flatten(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "avis.xml")
	require.NoError(t, os.WriteFile(in, []byte(notification), 0o600))
	output = filepath.Join(dir, "out.csv")
	format = "csv"
	flatten = true
	policy = "ignore"

	stdout, _, err := run(t, in)
	require.NoError(t, err, "the policy is not used when flattening")
	assert.Contains(t, stdout, "OK      avis.xml (1 rows)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ntfctn.Ntry.BookgDt.Dt")
	assert.Contains(t, string(data), "Ntfctn.Ntry.NtryDtls.TxDtls.Amt")
}
