package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Categorías de mensajes flash.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash mensaje para el usuario que sobrevive a una redirección.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// View envoltorio común de las vistas GET: datos de la página más los mensajes pendientes.
type View struct {
	Flashes []Flash       `json:"flashes"`
	User    *UserResponse `json:"user,omitempty"`
	Data    any           `json:"data,omitempty"`
}

// ClassificationOptions valores ofrecidos en los formularios de producto y catálogo.
type ClassificationOptions struct {
	Genders      []string `json:"generos"`
	ProductTypes []string `json:"tipos_producto"`
	Sizes        []string `json:"tallas"`
}
