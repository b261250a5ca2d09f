// Package catalog contiene las reglas de clasificación de prendas (servicio de dominio).
package catalog

import "fmt"

// UnknownCode código para género, tipo o talla fuera de las tablas.
const UnknownCode = "00"

// Tablas de clasificación. El orden de los slices es el que se ofrece en formularios.
var (
	Genders      = []string{"Hombre", "Mujer"}
	ProductTypes = []string{"Polerón", "Chaqueta", "Pantalón", "Camisa", "Polera", "Shorts", "Blusa", "Buzos"}
	Sizes        = []string{"XS", "S", "M", "L", "XL", "XXL"}

	genderCodes = codes(Genders)
	typeCodes   = codes(ProductTypes)
	sizeCodes   = codes(Sizes)
)

// codes asigna "01", "02", ... según la posición.
func codes(values []string) map[string]string {
	m := make(map[string]string, len(values))
	for i, v := range values {
		m[v] = fmt.Sprintf("%02d", i+1)
	}
	return m
}

func lookup(m map[string]string, key string) string {
	if c, ok := m[key]; ok {
		return c
	}
	return UnknownCode
}

// Prefix concatena los códigos de género, tipo y talla (6 dígitos).
func Prefix(gender, productType, size string) string {
	return lookup(genderCodes, gender) + lookup(typeCodes, productType) + lookup(sizeCodes, size)
}

// Barcode código = Prefix + secuencia (existing+1) con ceros a la izquierda hasta 4 dígitos.
// existing es la cantidad de productos que ya comparten género, tipo y talla.
// Ej: tercer "Hombre/Polerón/M" → "0101030003".
func Barcode(gender, productType, size string, existing int) string {
	return fmt.Sprintf("%s%04d", Prefix(gender, productType, size), existing+1)
}
