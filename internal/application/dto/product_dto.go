package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductForm campos comunes de alta y edición de producto.
// Price llega como texto del formulario y se valida como número.
type ProductForm struct {
	Name        string `json:"nombre" form:"nombre" validate:"required,max=100"`
	Description string `json:"descripcion" form:"descripcion" validate:"required,max=255"`
	Features    string `json:"caracteristicas" form:"caracteristicas" validate:"max=255"`
	Price       string `json:"precio" form:"precio" validate:"required,numeric,max=20"`
	Stock       *int   `json:"stock" form:"stock" validate:"required,min=0,max=2147483647"`
	Size        string `json:"talla" form:"talla" validate:"required,max=10"`
	ProductType string `json:"tipo_producto" form:"tipo_producto" validate:"required,max=50"`
	Brand       string `json:"marca" form:"marca" validate:"required,max=100"`
	Gender      string `json:"genero" form:"genero" validate:"required,max=20"`
}

// CreateProductRequest entrada para crear un producto. El código de barras se deriva.
type CreateProductRequest struct {
	ProductForm
}

// UpdateProductRequest entrada para editar un producto. El código de barras no cambia.
type UpdateProductRequest struct {
	ProductForm
}

// ImageUpload imagen adjunta al formulario de producto.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CatalogQuery filtros del catálogo.
type CatalogQuery struct {
	Gender      string `query:"genero"`
	ProductType string `query:"tipo_producto"`
}

// ProductResponse salida de un producto con imagen y QR listos para <img src>.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Features    string          `json:"caracteristicas"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Critical    bool            `json:"stock_critico"`
	Size        string          `json:"talla"`
	ProductType string          `json:"tipo_producto"`
	Brand       string          `json:"marca"`
	Gender      string          `json:"genero"`
	Barcode     string          `json:"codigo_barras"`
	ImageURL    string          `json:"imagen_url,omitempty"`
	QRURL       string          `json:"qr_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductOption versión liviana para el formulario de venta.
type ProductOption struct {
	ID      int64           `json:"id"`
	Name    string          `json:"nombre"`
	Price   decimal.Decimal `json:"precio"`
	Stock   int             `json:"stock"`
	Barcode string          `json:"codigo_barras"`
}

// StockView listado de stock con el conteo de productos críticos.
type StockView struct {
	Products      []ProductResponse `json:"productos"`
	CriticalCount int               `json:"criticos"`
	Threshold     int               `json:"umbral"`
}
