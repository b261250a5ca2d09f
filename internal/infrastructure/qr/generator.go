// Package qr genera el PNG del código QR que se guarda junto a cada producto.
package qr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"

	"github.com/jhoicas/sistema-ventas/internal/application/ports"
)

var _ ports.QRGenerator = (*Generator)(nil)

// DefaultSize lado del PNG en píxeles.
const DefaultSize = 256

// Generator implementa ports.QRGenerator con boombuler/barcode.
type Generator struct {
	size int
}

// NewGenerator construye el generador; size <= 0 usa DefaultSize.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// PNG codifica content como QR (corrección M) y lo escala a size x size.
func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: contenido vacío")
	}
	code, err := bqr.Encode(content, bqr.M, bqr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr: codificar: %w", err)
	}
	scaled, err := barcode.Scale(code, g.size, g.size)
	if err != nil {
		return nil, fmt.Errorf("qr: escalar: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}
	return buf.Bytes(), nil
}
