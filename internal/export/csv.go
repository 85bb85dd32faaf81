package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fjacquet/camt-xlsx/internal/extractor"

	"github.com/gocarina/gocsv"
)

// CSVWriter writes delimiter-separated text with a header row.
type CSVWriter struct {
	Delimiter rune
}

// NewCSVWriter creates a CSVWriter; 0 selects ','.
func NewCSVWriter(delimiter rune) *CSVWriter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVWriter{Delimiter: delimiter}
}

func (c *CSVWriter) Extension() string   { return FormatCSV }
func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (c *CSVWriter) Write(w io.Writer, columns []string, records []extractor.Record) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.Delimiter
	writer := gocsv.NewSafeCSVWriter(csvWriter)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(rec.Row(columns)); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return nil
}
