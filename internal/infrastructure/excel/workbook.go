// Package excel genera libros .xlsx con excelize.
package excel

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/ports"
)

var _ ports.SpreadsheetWriter = (*Writer)(nil)

// Writer implementa ports.SpreadsheetWriter.
type Writer struct{}

// NewWriter construye el writer.
func NewWriter() *Writer { return &Writer{} }

// Workbook arma un libro de una hoja: encabezados en negrita en la fila 1 y los datos debajo.
// El ancho de cada columna es el largo del valor más largo + 2.
func (w *Writer) Workbook(sheet string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("excel: hoja: %w", err)
	}

	widths := make([]int, len(headers))
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("excel: encabezados: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("excel: estilo: %w", err)
		}
	}

	for r, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("excel: celda: %w", err)
		}
		row := values
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", r+2, err)
		}
		for c, v := range values {
			if c >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
				widths[c] = n
			}
		}
	}

	for c, width := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, fmt.Errorf("excel: columna: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+2)); err != nil {
			return nil, fmt.Errorf("excel: ancho: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
