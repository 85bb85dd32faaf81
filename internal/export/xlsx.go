package export

import (
	"fmt"
	"io"

	"fjacquet/camt-xlsx/internal/extractor"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Daten"

const defaultColumnWidth = 22

// XLSXWriter writes a single-sheet workbook.
type XLSXWriter struct {
	SheetName string
}

// NewXLSXWriter creates an XLSXWriter; an empty name selects DefaultSheetName.
func NewXLSXWriter(sheetName string) *XLSXWriter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &XLSXWriter{SheetName: sheetName}
}

func (x *XLSXWriter) Extension() string { return FormatXLSX }

func (x *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write streams the workbook to w. Absent values become empty cells.
func (x *XLSXWriter) Write(w io.Writer, columns []string, records []extractor.Record) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", x.SheetName); err != nil {
		return fmt.Errorf("invalid sheet name '%s': %w", x.SheetName, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(x.SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}
	if len(columns) > 0 {
		if err := sw.SetColWidth(1, len(columns), defaultColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			if v := rec.Values[c]; v.Present {
				row[j] = v.Text
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
