package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleForm formulario de nueva venta. Lines es el JSON [{"id":..,"cantidad":..}] armado
// por la pantalla de venta.
type SaleForm struct {
	Lines         string `form:"productos_seleccionados" validate:"required"`
	PaymentMethod string `form:"metodo_pago" validate:"required,max=50"`
	CashTendered  string `form:"efectivo_entregado" validate:"omitempty,numeric"`
	Customer      string `form:"cliente" validate:"max=150"`
}

// SaleLineInput una línea pedida.
type SaleLineInput struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Quantity  int   `json:"cantidad" validate:"required,gt=0,max=2147483647"`
}

// CreateSaleRequest venta ya decodificada.
type CreateSaleRequest struct {
	Lines         []SaleLineInput  `json:"lineas" validate:"required,min=1,dive"`
	PaymentMethod string           `json:"metodo_pago" validate:"required,max=50"`
	Customer      string           `json:"cliente"`
	CashTendered  *decimal.Decimal `json:"efectivo_entregado"`
}

// SaleLineResult línea registrada.
type SaleLineResult struct {
	SaleID    int64           `json:"venta_id"`
	ProductID int64           `json:"producto_id"`
	Name      string          `json:"producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResult resultado de registrar una venta.
type SaleResult struct {
	Ticket        string           `json:"ticket"`
	PaymentMethod string           `json:"metodo_pago"`
	Customer      string           `json:"cliente,omitempty"`
	Total         decimal.Decimal  `json:"total"`
	Change        *decimal.Decimal `json:"vuelto,omitempty"`
	SoldAt        time.Time        `json:"fecha"`
	Lines         []SaleLineResult `json:"lineas"`
}

// ReceiptData contenido de la boleta.
type ReceiptData struct {
	Ticket        string
	PaymentMethod string
	Customer      string
	Change        *decimal.Decimal
	SoldAt        time.Time
	Seller        string
	Lines         []SaleLineResult
	Total         decimal.Decimal
}
