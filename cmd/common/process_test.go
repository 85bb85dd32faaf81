package common_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/camt-xlsx/cmd/common"
	"fjacquet/camt-xlsx/internal/batch"
	"fjacquet/camt-xlsx/internal/config"
	"fjacquet/camt-xlsx/internal/container"
	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const notification = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.054.001.08">
  <BkToCstmrDbtCdtNtfctn>
    <Ntfctn>
      <Ntry>
        <BookgDt><Dt>2024-11-04</Dt></BookgDt>
        <NtryDtls>
          <TxDtls>
            <Amt Ccy="CHF">100.00</Amt>
            <RltdPties><Dbtr><Pty><Nm>Anna Muster</Nm></Pty></Dbtr></RltdPties>
          </TxDtls>
          <TxDtls><Amt Ccy="EUR">250.00</Amt></TxDtls>
        </NtryDtls>
      </Ntry>
    </Ntfctn>
  </BkToCstmrDbtCdtNtfctn>
</Document>`

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Profile.Name = profile.NameCamt054
	cfg.Output.Format = export.FormatXLSX
	cfg.Output.SheetName = "Daten"
	cfg.Output.FileName = export.DefaultFileName
	cfg.Output.CSVDelimiter = ";"
	cfg.Extraction.FieldErrorPolicy = "null-field"
	cfg.Extraction.Workers = 2
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	return c
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestReadInputs(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.xml":     notification,
		"a.XML":     notification,
		"notes.txt": "ignored",
		"sub/c.xml": notification,
	})

	inputs, err := common.ReadInputs([]string{dir})
	require.NoError(t, err)
	var names []string
	for _, in := range inputs {
		names = append(names, in.Name)
		assert.NotEmpty(t, in.Data)
	}
	assert.Equal(t, []string{"a.XML", "b.xml", "c.xml"}, names)

	_, err = common.ReadInputs([]string{writeFiles(t, map[string]string{"x.txt": "x"})})
	assert.ErrorIs(t, err, common.ErrNoInputs)

	_, err = common.ReadInputs([]string{filepath.Join(dir, "missing.xml")})
	assert.Error(t, err)
}

func TestConvert_WritesWorkbook(t *testing.T) {
	dir := writeFiles(t, map[string]string{"avis.xml": notification})
	out := filepath.Join(t.TempDir(), "out", "result.xlsx")
	logger := logging.NewMockLogger()

	summary, err := common.Convert(context.Background(), newContainer(t), common.ConvertOptions{
		Inputs: []string{dir},
		Output: out,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, out, summary.OutputFile)
	assert.Len(t, summary.Result.Records(), 2)
	assert.True(t, logger.HasEntry("INFO", "Conversion completed"))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Daten")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Buchungsdatum", rows[0][0])
}

func TestConvert_CSVAndFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"avis.xml":   notification,
		"broken.xml": "<Document><Ntry>",
	})
	out := filepath.Join(t.TempDir(), "result.csv")

	summary, err := common.Convert(context.Background(), newContainer(t), common.ConvertOptions{
		Inputs: []string{dir},
		Output: out,
		Format: export.FormatCSV,
		Policy: "skip-record",
	}, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xml")
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Result.Failed())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Buchungsdatum;"))
}

func TestConvert_Flatten(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"avis.xml": notification,
		"list.xml": `<Payments><Payment><Id>7</Id><Amount>5.00</Amount></Payment></Payments>`,
	})
	out := filepath.Join(t.TempDir(), "flat.xlsx")
	logger := logging.NewMockLogger()

	summary, err := common.Convert(context.Background(), newContainer(t), common.ConvertOptions{
		Inputs:  []string{dir},
		Output:  out,
		Profile: "unknown",
		Flatten: true,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, batch.FlattenName, summary.Result.Name())
	assert.Len(t, summary.Result.Records(), 2)

	entries := logger.GetEntriesByLevel("INFO")
	require.NotEmpty(t, entries)
	name, ok := entries[0].FieldValue(logging.FieldProfile)
	require.True(t, ok)
	assert.Equal(t, batch.FlattenName, name)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Daten")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Ntfctn.Ntry.BookgDt.Dt",
		"Ntfctn.Ntry.NtryDtls.TxDtls.Amt",
		"Ntfctn.Ntry.NtryDtls.TxDtls.RltdPties.Dbtr.Pty.Nm",
		"Id",
		"Amount",
	}, rows[0])
	assert.Equal(t, "100.00, 250.00", rows[1][1])
	assert.Equal(t, "7", rows[2][3])
}

func TestConvert_DefaultOutputName(t *testing.T) {
	dir := writeFiles(t, map[string]string{"avis.xml": notification})
	t.Chdir(t.TempDir())

	summary, err := common.Convert(context.Background(), newContainer(t), common.ConvertOptions{
		Inputs: []string{dir},
		Format: export.FormatCSV,
	}, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, "extrahierte_daten.csv", summary.OutputFile)
	_, err = os.Stat("extrahierte_daten.csv")
	assert.NoError(t, err)
}

func TestConvert_NoRecords(t *testing.T) {
	dir := writeFiles(t, map[string]string{"leer.xml": "<Document/>"})
	out := filepath.Join(t.TempDir(), "result.xlsx")
	logger := logging.NewMockLogger()

	summary, err := common.Convert(context.Background(), newContainer(t), common.ConvertOptions{
		Inputs: []string{dir},
		Output: out,
	}, logger)
	require.NoError(t, err)
	assert.Empty(t, summary.OutputFile)
	assert.True(t, summary.Result.Documents[0].Empty())
	assert.True(t, logger.HasEntry("WARN", "No records extracted, no output written"))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvert_InvalidOptions(t *testing.T) {
	dir := writeFiles(t, map[string]string{"avis.xml": notification})
	c := newContainer(t)
	tests := []struct {
		name string
		opts common.ConvertOptions
	}{
		{"unknown profile", common.ConvertOptions{Inputs: []string{dir}, Profile: "nope"}},
		{"unknown policy", common.ConvertOptions{Inputs: []string{dir}, Policy: "ignore"}},
		{"unknown format", common.ConvertOptions{Inputs: []string{dir}, Format: "pdf"}},
		{"no inputs", common.ConvertOptions{Inputs: []string{t.TempDir()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := common.Convert(context.Background(), c, tt.opts, logging.NewMockLogger())
			assert.Error(t, err)
			assert.Nil(t, summary)
		})
	}
}
