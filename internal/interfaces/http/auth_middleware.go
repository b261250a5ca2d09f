package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

// Locals keys del usuario autenticado en Fiber.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalBearer = "bearer"
)

// AuthCookie cookie HttpOnly con el token de sesión de los clientes de navegador.
const AuthCookie = "auth_token"

const msgLoginRequired = "Inicia sesión para acceder a esta página."

var errMalformedAuthHeader = errors.New("formato: Bearer <token>")

// Authenticator valida un token de sesión y devuelve el usuario vigente.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// AuthMiddleware toma el token del header Authorization (Bearer) o de la cookie de sesión,
// recarga el usuario y lo deja en c.Locals. El rol efectivo es el de la DB, no el del token.
// Sin credenciales redirige a /login; un Bearer inválido responde 401.
func AuthMiddleware(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, bearer, err := tokenFrom(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: err.Error()})
		}
		if token == "" {
			Flash(c, dto.FlashWarning, msgLoginRequired)
			return redirect(c, "/login")
		}
		user, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				return internalError(c, err)
			}
			if bearer {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			clearAuthCookie(c)
			Flash(c, dto.FlashWarning, msgLoginRequired)
			return redirect(c, "/login")
		}
		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)
		c.Locals(LocalBearer, bearer)
		return c.Next()
	}
}

// tokenFrom devuelve el token y si vino por header. Un header presente pero mal formado es error.
func tokenFrom(c *fiber.Ctx) (token string, bearer bool, err error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", true, errMalformedAuthHeader
		}
		return strings.TrimSpace(parts[1]), true, nil
	}
	return c.Cookies(AuthCookie), false, nil
}

func clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AuthCookie,
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// RequireRole deja pasar solo a los roles indicados. Los clientes Bearer reciben 403;
// los de navegador vuelven a /login con el aviso de acceso no autorizado.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el usuario no tiene rol asignado"})
		}
		if _, ok := allowed[role]; ok {
			return c.Next()
		}
		if isBearer(c) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: domain.ErrForbidden.Error()})
		}
		Flash(c, dto.FlashDanger, domain.ErrForbidden.Error())
		return redirect(c, "/login")
	}
}

// GetUser devuelve el usuario autenticado (después del middleware de auth).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el ID del usuario autenticado; 0 si no hay sesión.
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

// GetRole devuelve el rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

func isBearer(c *fiber.Ctx) bool {
	b, _ := c.Locals(LocalBearer).(bool)
	return b
}
