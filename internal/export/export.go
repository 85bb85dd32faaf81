// Package export serialises extracted records as spreadsheet (xlsx) or CSV.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/fileutils"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DefaultFileName is the download name of the generated workbook.
const DefaultFileName = "extrahierte_daten.xlsx"

// Writer serialises one header row plus one row per record.
type Writer interface {
	Write(w io.Writer, columns []string, records []extractor.Record) error
	Extension() string
	ContentType() string
}

// Options configures NewWriter.
type Options struct {
	SheetName string
	Delimiter rune
}

// NewWriter returns the Writer for format.
func NewWriter(format string, opts Options) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return NewXLSXWriter(opts.SheetName), nil
	case FormatCSV:
		return NewCSVWriter(opts.Delimiter), nil
	default:
		return nil, fmt.Errorf("unsupported output format '%s'", format)
	}
}

// WriteFile writes records to path with w, creating parent directories.
func WriteFile(path string, w Writer, columns []string, records []extractor.Record) (err error) {
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- output path comes from the CLI user
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return w.Write(file, columns, records)
}

// FileNameFor replaces the extension of name with the writer's extension.
func FileNameFor(name string, w Writer) string {
	if name == "" {
		name = DefaultFileName
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + w.Extension()
}
