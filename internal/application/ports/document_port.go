package ports

import "github.com/jhoicas/sistema-ventas/internal/application/dto"

// QRGenerator genera la imagen PNG de un código QR.
type QRGenerator interface {
	PNG(content string) ([]byte, error)
}

// LabelRenderer genera la etiqueta imprimible de un producto (PDF).
type LabelRenderer interface {
	Label(data dto.LabelData) ([]byte, error)
}

// ReceiptRenderer genera la boleta de una venta (PDF).
type ReceiptRenderer interface {
	Receipt(data dto.ReceiptData) ([]byte, error)
}

// SpreadsheetWriter genera un libro con una sola hoja: encabezados y filas.
type SpreadsheetWriter interface {
	Workbook(sheet string, headers []string, rows [][]any) ([]byte, error)
}
