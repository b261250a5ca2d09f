// Package pdf genera los documentos imprimibles de la tienda con Maroto v2.
//
// Etiqueta de producto (80 x 50 mm):
//
//	┌──────────────────────────┐
//	│  Nombre del producto     │
//	│  Precio: $12.990         │
//	│        ┌──────┐          │
//	│        │  QR  │          │
//	│        └──────┘          │
//	└──────────────────────────┘
//
// Boleta de venta (A4): título, método de pago, cliente o vuelto, fecha, vendedor,
// tabla Producto | Cantidad | Precio Unit. | Subtotal y TOTAL.
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

var (
	_ ports.LabelRenderer   = (*MarotoPDFGenerator)(nil)
	_ ports.ReceiptRenderer = (*MarotoPDFGenerator)(nil)
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	labelWidthMM  = 80
	labelHeightMM = 50
	labelQRMM     = 30

	receiptDate = "02-01-2006 15:04:05"
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.LabelRenderer y ports.ReceiptRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	storeName string
}

// NewMarotoPDFGenerator construye el generador. storeName se usa como autor del documento.
func NewMarotoPDFGenerator(storeName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{storeName: storeName}
}

// Label genera la etiqueta 80 x 50 mm con nombre, precio y QR del código de barras.
func (g *MarotoPDFGenerator) Label(data dto.LabelData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(labelWidthMM, labelHeightMM).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(3).WithBottomMargin(2).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Etiqueta "+data.Name, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(
		row.New(7).Add(col.New(12).Add(
			text.New(data.Name, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New("Precio: "+money(data.Price), props.Text{Size: 9, Align: align.Center}),
		)),
		row.New(labelQRMM).Add(
			col.New(3),
			col.New(6).Add(code.NewQr(data.Barcode, props.Rect{Percent: 100, Center: true})),
			col.New(3),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// Receipt genera la boleta de una venta.
func (g *MarotoPDFGenerator) Receipt(data dto.ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Boleta de venta", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRows(data)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(data.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(data.Total))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar boleta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(storeName string) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("BOLETA DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
		),
	)
}

// infoRows: método de pago, cliente (fiado) o vuelto (efectivo), fecha y vendedor.
func infoRows(data dto.ReceiptData) []core.Row {
	lines := []string{"Método de Pago: " + data.PaymentMethod}
	switch {
	case data.PaymentMethod == entity.PaymentCredit && data.Customer != "":
		lines = append(lines, "Cliente: "+data.Customer)
	case data.PaymentMethod == entity.PaymentCash && data.Change != nil:
		lines = append(lines, "Vuelto: "+money(*data.Change))
	}
	lines = append(lines,
		"Fecha: "+data.SoldAt.Format(receiptDate),
		"Vendedor: "+data.Seller,
		"Ticket: "+data.Ticket,
	)

	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(l, props.Text{Size: 9, Top: 1}),
		)))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de productos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 6, align.Left),
		h("Cantidad", 2, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por producto vendido.
func tableDetailRows(lines []dto.SaleLineResult) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(l.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(2).Add(text.New(money(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea un monto entero con signo peso y puntos de miles. Ej: 12990 → "$12.990".
func money(d decimal.Decimal) string {
	s := d.StringFixed(0)
	if strings.HasPrefix(s, "-") {
		return "-$" + formatMoney(s[1:])
	}
	return "$" + formatMoney(s)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
