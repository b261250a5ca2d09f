package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago con reglas propias. Cualquier otro valor no vacío se acepta tal cual.
const (
	PaymentCash   = "Efectivo"
	PaymentCredit = "Fiado"
)

// Sale una línea de venta: un producto y su cantidad. Las líneas registradas en la
// misma operación comparten Ticket.
type Sale struct {
	ID            int64
	Ticket        string
	ProductID     int64
	UserID        int64
	Quantity      int
	PaymentMethod string
	Customer      string           // solo ventas fiadas
	CashTendered  *decimal.Decimal // solo ventas en efectivo con monto entregado
	SoldAt        time.Time
}

// SaleDetail línea de venta con los datos de producto y vendedor necesarios para
// historial, exportación y boleta.
type SaleDetail struct {
	Sale
	ProductName     string
	UnitPrice       decimal.Decimal
	SellerFirstName string
	SellerLastName  string
}

// SellerName nombre completo del vendedor.
func (d *SaleDetail) SellerName() string {
	u := User{FirstName: d.SellerFirstName, LastName: d.SellerLastName}
	return u.FullName()
}

// Subtotal precio unitario por cantidad.
func (d *SaleDetail) Subtotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}
