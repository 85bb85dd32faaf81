package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/parsererror"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func notification(ref string, amounts ...string) []byte {
	txs := ""
	for _, a := range amounts {
		txs += fmt.Sprintf(`<TxDtls><Amt Ccy="CHF">%s</Amt></TxDtls>`, a)
	}
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.054.001.08">
  <BkToCstmrDbtCdtNtfctn><Ntfctn>
    <Ntry><NtryRef>%s</NtryRef><BookgDt><Dt>2024-11-04</Dt></BookgDt><NtryDtls>%s</NtryDtls></Ntry>
  </Ntfctn></BkToCstmrDbtCdtNtfctn>
</Document>`, ref, txs))
}

func camt054(t *testing.T) *profile.ExtractionProfile {
	t.Helper()
	p, err := profile.NewRegistry().Get(profile.NameCamt054)
	require.NoError(t, err)
	return p
}

func TestProcessor_RunKeepsInputOrder(t *testing.T) {
	var inputs []Input
	for i := 0; i < 12; i++ {
		inputs = append(inputs, Input{Name: fmt.Sprintf("doc-%02d.xml", i), Data: notification(fmt.Sprintf("R%02d", i), "1", "2")})
	}

	proc := NewProcessor(logging.NewMockLogger(), camt054(t), extractor.PolicyNullField, 4)
	res, err := proc.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, res.Documents, 12)
	assert.NoError(t, res.Err())

	records := res.Records()
	require.Len(t, records, 24)
	for i, doc := range res.Documents {
		assert.Equal(t, inputs[i].Name, doc.Name)
		assert.Equal(t, "camt.054", doc.Message)
		ref, _ := doc.Records[0].Get("Referenznummer")
		assert.Equal(t, fmt.Sprintf("R%02d", i), ref)
	}
	ref, _ := records[23].Get("Referenznummer")
	assert.Equal(t, "R11", ref)
}

func TestProcessor_FailuresDoNotBlockOthers(t *testing.T) {
	logger := logging.NewMockLogger()
	proc := NewProcessor(logger, camt054(t), extractor.PolicyNullField, 2)

	res, err := proc.Run(context.Background(), []Input{
		{Name: "good.xml", Data: notification("A", "10")},
		{Name: "empty.xml", Data: nil},
		{Name: "broken.xml", Data: []byte("<Document><Ntry>")},
		{Name: "other.xml", Data: []byte(`<Document><Nothing/></Document>`)},
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 4)

	assert.True(t, res.Documents[0].OK())
	assert.Len(t, res.Documents[0].Records, 1)

	assert.ErrorIs(t, res.Documents[1].Err, parsererror.ErrEmptyInput)
	assert.Contains(t, res.Documents[1].Err.Error(), "empty.xml")

	var malformed *parsererror.MalformedDocumentError
	require.True(t, errors.As(res.Documents[2].Err, &malformed))
	assert.Equal(t, "broken.xml", malformed.Document)

	assert.True(t, res.Documents[3].OK())
	assert.True(t, res.Documents[3].Empty())
	assert.ErrorIs(t, res.Documents[3].Warning, parsererror.ErrNoEntries)

	assert.Equal(t, 2, res.Failed())
	assert.Len(t, res.Records(), 1)
	assert.Len(t, multierr.Errors(res.Err()), 2)
	assert.Contains(t, res.Err().Error(), "broken.xml")
	assert.Len(t, res.Warnings(), 1)

	assert.True(t, logger.HasEntry("ERROR", "Failed to load document"))
	assert.True(t, logger.HasEntry("WARN", "No entries matched"))
	assert.True(t, logger.HasEntry("INFO", "Batch processed"))
}

func TestProcessor_FieldErrorPolicies(t *testing.T) {
	data := notification("A", "10", "abc", "30")

	tests := []struct {
		policy  extractor.FieldErrorPolicy
		records int
		failed  bool
	}{
		{extractor.PolicyNullField, 3, false},
		{extractor.PolicySkipRecord, 2, false},
		{extractor.PolicyAbortDocument, 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			logger := logging.NewMockLogger()
			proc := NewProcessor(logger, camt054(t), tt.policy, 1)
			doc := proc.Process(Input{Name: "fields.xml", Data: data})

			require.Len(t, doc.FieldErrors, 1)
			assert.Equal(t, "fields.xml", doc.FieldErrors[0].Document)
			assert.Equal(t, 2, doc.FieldErrors[0].Transaction)
			assert.Len(t, doc.Records, tt.records)
			assert.Equal(t, tt.failed, doc.Err != nil)
			if tt.failed {
				assert.Contains(t, doc.Err.Error(), "fields.xml")
			}

			warnings := logger.GetEntriesByLevel("WARN")
			require.NotEmpty(t, warnings)
			col, ok := warnings[0].FieldValue(logging.FieldColumn)
			require.True(t, ok)
			assert.Equal(t, "Transaktionsbetrag", col)
		})
	}
}

func TestProcessor_MessageMismatchWarning(t *testing.T) {
	logger := logging.NewMockLogger()
	reg := profile.NewRegistry()
	statement, err := reg.Get(profile.NameCamt053)
	require.NoError(t, err)

	doc := NewProcessor(logger, statement, "", 1).Process(Input{Name: "n.xml", Data: notification("A", "1")})
	assert.True(t, doc.OK())
	assert.Equal(t, "camt.054", doc.Message)
	assert.True(t, logger.HasEntry("WARN", "Profile message type differs from document"))
}

func TestProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := NewProcessor(nil, camt054(t), extractor.PolicyNullField, 1)
	res, err := proc.Run(ctx, []Input{{Name: "a.xml", Data: notification("A", "1")}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProcessor_Defaults(t *testing.T) {
	proc := NewProcessor(nil, camt054(t), "", 0)
	assert.Greater(t, proc.workers, 0)
	assert.Equal(t, extractor.PolicyNullField, proc.policy)
	assert.Equal(t, profile.NameCamt054, proc.Profile().Name)
}

func TestFlattenProcessor_UnionOfColumns(t *testing.T) {
	logger := logging.NewMockLogger()
	proc := NewFlattenProcessor(logger, 2)
	assert.Nil(t, proc.Profile())
	assert.Equal(t, FlattenName, proc.Name())

	res, err := proc.Run(context.Background(), []Input{
		{Name: "a.xml", Data: notification("A", "1")},
		{Name: "broken.xml", Data: []byte("<Document><Ntry>")},
		{Name: "b.xml", Data: notification("B")},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
	assert.Equal(t, FlattenName, res.Name())
	assert.Equal(t, 1, res.Failed())

	assert.Equal(t, []string{
		"Ntfctn.Ntry.NtryRef",
		"Ntfctn.Ntry.BookgDt.Dt",
		"Ntfctn.Ntry.NtryDtls.TxDtls.Amt",
		"Ntfctn.Ntry.NtryDtls",
	}, res.Columns())

	records := res.Records()
	require.Len(t, records, 2)
	assert.Equal(t, []string{"A", "2024-11-04", "1", ""}, records[0].Row(res.Columns()))
	assert.Equal(t, []string{"B", "2024-11-04", "", ""}, records[1].Row(res.Columns()))
	assert.Equal(t, "camt.054", res.Documents[0].Message)
	debug := logger.GetEntriesByLevel("DEBUG")
	require.NotEmpty(t, debug)
	elements, ok := debug[0].FieldValue("elements")
	require.True(t, ok)
	assert.Greater(t, elements.(int), 5)
	assert.False(t, logger.HasEntry("WARN", "Profile message type differs from document"))
}

func TestFlattenProcessor_EmptyRoot(t *testing.T) {
	doc := NewFlattenProcessor(nil, 1).Process(Input{Name: "empty.xml", Data: []byte("<Document/>")})
	assert.True(t, doc.OK())
	assert.True(t, doc.Empty())
	assert.ErrorIs(t, doc.Warning, parsererror.ErrNoEntries)
	assert.Contains(t, doc.Warning.Error(), "profile 'flatten'")
}
