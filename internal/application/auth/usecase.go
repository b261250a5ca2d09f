package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
	"github.com/jhoicas/sistema-ventas/pkg/jwt"
)

// SessionConfig configuración para generación de tokens de sesión.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// RegistrationKeys claves compartidas que habilitan el registro por rol. Vacío = no configurada.
type RegistrationKeys struct {
	Admin  string
	Seller string
}

func (k RegistrationKeys) forRole(role string) string {
	if role == entity.RoleAdmin {
		return k.Admin
	}
	return k.Seller
}

// AuthUseCase casos de uso de autenticación: registro, login y carga del usuario de la sesión.
type AuthUseCase struct {
	userRepo repository.UserRepository
	session  SessionConfig
	keys     RegistrationKeys
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, session SessionConfig, keys RegistrationKeys) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, session: session, keys: keys, now: time.Now}
}

// HomeFor ruta de inicio según el rol.
func HomeFor(role string) string {
	if role == entity.RoleAdmin {
		return "/admin"
	}
	return "/ventas"
}

// Register crea un usuario tras validar confirmación de password, email único y la clave
// de registro del rol. El orden de las validaciones define qué mensaje ve el usuario.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.TrimSpace(in.Role)
	in.RegistrationKey = strings.TrimSpace(in.RegistrationKey)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" ||
		in.Password == "" || in.ConfirmPassword == "" || in.Role == "" {
		return nil, domain.ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidRole
	}
	expected := uc.keys.forRole(in.Role)
	if expected == "" {
		return nil, domain.ErrRegistrationKeyMissing
	}
	if subtle.ConstantTimeCompare([]byte(in.RegistrationKey), []byte(expected)) != 1 {
		return nil, domain.ErrInvalidRegistrationKey
	}

	user, err := uc.newUser(in.FirstName, in.LastName, in.Email, in.Phone, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.UserFromEntity(user), nil
}

// Login verifica email/password y emite el token de sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.session.Secret, user.ID, user.Role, uc.session.Issuer, uc.session.TTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:    token,
		User:     *dto.UserFromEntity(user),
		Redirect: HomeFor(user.Role),
	}, nil
}

// Authenticate valida el token y recarga el usuario. Un usuario eliminado deja de estar autenticado.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	userID, _, err := jwt.Parse(uc.session.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// SeedAdmin crea el administrador inicial si el email no existe. Devuelve false si ya existía.
func (uc *AuthUseCase) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, domain.ErrMissingCredentials
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	user, err := uc.newUser("Admin", "Principal", email, "123456789", password, entity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// MaxPasswordBytes largo máximo que acepta bcrypt.
const MaxPasswordBytes = 72

func (uc *AuthUseCase) newUser(first, last, email, phone, password, role string) (*entity.User, error) {
	if len(password) > MaxPasswordBytes {
		return nil, errPasswordTooLong()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errPasswordTooLong()
	}
	if err != nil {
		return nil, err
	}
	now := uc.now()
	return &entity.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func errPasswordTooLong() error {
	return &domain.ValidationError{Fields: map[string]string{
		"password": fmt.Sprintf("supera el largo máximo de %d bytes", MaxPasswordBytes),
	}}
}
