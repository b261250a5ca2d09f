package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

// AuthHandler maneja registro, login y logout.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	ttl          time.Duration
	secureCookie bool
}

// NewAuthHandler construye el handler de auth. ttl define la vida de la cookie de sesión.
func NewAuthHandler(uc *auth.AuthUseCase, ttl time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{uc: uc, ttl: ttl, secureCookie: secureCookie}
}

// Index redirige a la página de inicio del rol o a /login si no hay sesión válida.
func (h *AuthHandler) Index(c *fiber.Ctx) error {
	token, _, err := tokenFrom(c)
	if err != nil || token == "" {
		return redirect(c, "/login")
	}
	user, err := h.uc.Authenticate(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return redirect(c, "/login")
		}
		return internalError(c, err)
	}
	return redirect(c, auth.HomeFor(user.Role))
}

// LoginPage godoc
// @Summary      Vista de login
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return view(c, nil)
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Con formulario deja la cookie de sesión y redirige según el rol; con JSON devuelve el token.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Success      303
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	jsonClient := c.Is("json")
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := validatePayload(in, domain.ErrMissingCredentials)
	var out *dto.LoginResponse
	if err == nil {
		out, err = h.uc.Login(c.UserContext(), in)
	}
	if err != nil {
		if jsonClient {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
			}
			if _, ok := flashCategory(err); ok {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
			}
			return internalError(c, err)
		}
		return fail(c, err, "/login")
	}
	if jsonClient {
		return c.JSON(out)
	}
	c.Cookie(&fiber.Cookie{
		Name:     AuthCookie,
		Value:    out.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.ttl),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	loggerFrom(c).Info().Int64("user_id", out.User.ID).Str("role", out.User.Role).Msg("inicio de sesión")
	return redirect(c, out.Redirect)
}

// RegisterPage godoc
// @Summary      Vista de registro
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.View
// @Router       /registro [get]
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return view(c, nil)
}

// Register godoc
// @Summary      Registrar usuario
// @Description  Requiere la clave de registro configurada para el rol elegido.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        body  body  dto.RegisterRequest  true  "Datos del usuario"
// @Success      303
// @Router       /registro [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validatePayload(in, domain.ErrMissingFields); err != nil {
		return fail(c, err, "/registro")
	}
	user, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, err, "/registro")
	}
	loggerFrom(c).Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("usuario registrado")
	Flash(c, dto.FlashSuccess, "¡Usuario registrado correctamente! Ahora puedes iniciar sesión.")
	return redirect(c, "/login")
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Success      303
// @Router       /logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearAuthCookie(c)
	resetSession(c)
	return redirect(c, "/login")
}
