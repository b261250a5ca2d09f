package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnyOption valor de filtro que significa "sin filtrar".
const AnyOption = "Todos"

// HistoryQuery filtros del historial de ventas. Fechas en formato YYYY-MM-DD, ambas inclusivas.
type HistoryQuery struct {
	From          string `query:"fecha_inicio" json:"fecha_inicio"`
	To            string `query:"fecha_fin" json:"fecha_fin"`
	PaymentMethod string `query:"metodo_pago" json:"metodo_pago"`
	SellerID      string `query:"vendedor_id" json:"vendedor_id"`
}

// SaleRow línea del historial.
type SaleRow struct {
	ID            int64           `json:"id"`
	Ticket        string          `json:"ticket"`
	SoldAt        time.Time       `json:"fecha"`
	ProductID     int64           `json:"producto_id"`
	ProductName   string          `json:"producto"`
	Quantity      int             `json:"cantidad"`
	UnitPrice     decimal.Decimal `json:"precio_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PaymentMethod string          `json:"metodo_pago"`
	Customer      string          `json:"cliente,omitempty"`
	SellerID      int64           `json:"vendedor_id"`
	Seller        string          `json:"vendedor"`
}

// HistoryView respuesta del historial: ventas filtradas más la lista de vendedores del filtro.
type HistoryView struct {
	Sales   []SaleRow       `json:"ventas"`
	Users   []UserResponse  `json:"usuarios"`
	Filters HistoryQuery    `json:"filtros"`
	Total   decimal.Decimal `json:"total"`
}

// FileResult archivo generado para descarga.
type FileResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LabelData contenido de la etiqueta de producto.
type LabelData struct {
	Name    string
	Price   decimal.Decimal
	Barcode string
}
