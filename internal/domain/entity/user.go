package entity

import (
	"strings"
	"time"
)

// Roles válidos para User.
const (
	RoleAdmin    = "administrador"
	RoleVendedor = "vendedor"
)

// User representa una persona que opera el sistema.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // administrador, vendedor
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName nombre y apellido separados por un espacio.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reporta si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVendedor
}
