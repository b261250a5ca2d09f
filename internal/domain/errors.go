package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas). Los mensajes se muestran tal cual al usuario.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrSaleNotFound       = errors.New("venta no encontrada")
	ErrEmailAlreadyExists = errors.New("El correo ya está registrado.")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("Email o contraseña incorrectos.")
	ErrForbidden          = errors.New("Acceso no autorizado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Identidad
	ErrMissingCredentials     = errors.New("Correo y contraseña son obligatorios.")
	ErrMissingFields          = errors.New("Todos los campos son obligatorios.")
	ErrPasswordMismatch       = errors.New("Las contraseñas no coinciden.")
	ErrInvalidRole            = errors.New("Rol inválido.")
	ErrRegistrationKeyMissing = errors.New("Falta configurar la clave de registro para el rol seleccionado.")
	ErrInvalidRegistrationKey = errors.New("Clave de registro incorrecta para el rol seleccionado.")
	ErrRoleEscalation         = errors.New("No se puede cambiar el rol de 'vendedor' a 'administrador' desde esta pantalla.")
	ErrSelfRoleChange         = errors.New("No puedes cambiar tu propio rol.")
	ErrSelfDelete             = errors.New("No puedes eliminarte a ti mismo.")
	ErrUserHasSales           = errors.New("Este usuario no puede eliminarse porque tiene ventas registradas.")

	// Ventas y reportes
	ErrInvalidSaleLines = errors.New("Error al procesar los productos.")
	ErrCustomerRequired = errors.New("Debes indicar el cliente para una venta fiada.")
	ErrInsufficientCash = errors.New("El efectivo entregado no cubre el total de la venta.")
	ErrMonthRequired    = errors.New("Debes seleccionar un mes")
)

// InsufficientStockError identifica el producto que no alcanza a cubrir la venta.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("producto #%d", e.ProductID)
	}
	return "Stock insuficiente para " + name
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError errores por campo de un payload; errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
