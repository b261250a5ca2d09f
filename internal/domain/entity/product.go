package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CriticalStock umbral bajo el cual un producto se considera en stock crítico.
const CriticalStock = 5

// Product prenda del catálogo. Gender+ProductType+Size determinan el código de barras,
// que se asigna una sola vez al crear el producto.
type Product struct {
	ID          int64
	Name        string
	Description string
	Features    string
	Price       decimal.Decimal // unidades enteras de moneda
	Stock       int
	Size        string
	ProductType string
	Brand       string
	Gender      string
	ImageLocal  string // clave en el almacén de imágenes, vacío si no se persistió
	ImageB64    string
	ImageMIME   string
	QRB64       string
	QRMIME      string
	Barcode     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCritical stock por debajo del umbral.
func (p *Product) IsCritical() bool {
	return p.Stock < CriticalStock
}
