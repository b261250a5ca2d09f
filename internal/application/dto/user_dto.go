package dto

import "time"

// RegisterRequest formulario público de registro. La clave de registro se compara con la
// configurada para el rol elegido.
type RegisterRequest struct {
	FirstName       string `json:"nombre" form:"nombre" validate:"required,max=100"`
	LastName        string `json:"apellido" form:"apellido" validate:"required,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email,max=150"`
	Phone           string `json:"telefono" form:"telefono" validate:"required,max=20"`
	Password        string `json:"password" form:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" form:"confirm-password" validate:"required"`
	Role            string `json:"rol" form:"rol" validate:"required,oneof=administrador vendedor"`
	RegistrationKey string `json:"clave_registro" form:"clave_registro"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse token de sesión y usuario autenticado.
type LoginResponse struct {
	Token    string       `json:"token"`
	User     UserResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

// UpdateUserRequest edición administrativa de un usuario.
type UpdateUserRequest struct {
	FirstName string `json:"nombre" form:"nombre" validate:"required,max=100"`
	LastName  string `json:"apellido" form:"apellido" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email,max=150"`
	Phone     string `json:"telefono" form:"telefono" validate:"required,max=20"`
	Role      string `json:"rol" form:"rol" validate:"required,oneof=administrador vendedor"`
}

// UserListQuery filtros del panel administrativo.
type UserListQuery struct {
	Search string `query:"search"`
	Active string `query:"activos"` // "1" = solo usuarios con ventas
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"nombre"`
	LastName  string    `json:"apellido"`
	FullName  string    `json:"nombre_completo"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefono"`
	Role      string    `json:"rol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
