package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/sistema-ventas/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/sistema-ventas/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "sistema-ventas-test"
)

type authFixture struct {
	store  *memory.Store
	uc     *auth.AuthUseCase
	admin  *entity.User
	seller *entity.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	admin := &entity.User{FirstName: "Ana", LastName: "Rojas", Email: "ana@mail.com", Role: entity.RoleAdmin}
	seller := &entity.User{FirstName: "Vale", LastName: "Soto", Email: "vale@mail.com", Role: entity.RoleVendedor}
	require.NoError(t, store.Users().Create(ctx, admin))
	require.NoError(t, store.Users().Create(ctx, seller))
	uc := auth.NewAuthUseCase(store.Users(), auth.SessionConfig{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer}, auth.RegistrationKeys{})
	return &authFixture{store: store, uc: uc, admin: admin, seller: seller}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para validar el token y cargar el usuario
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(f *authFixture, allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(f.uc),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"role":    apphttp.GetRole(c),
				"user_id": apphttp.GetUserID(c),
			})
		},
	)
	return app
}

// tokenFor genera un token de sesión para el usuario con el rol indicado.
func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, time.Hour)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return tok
}

// doRequest lanza GET /protected con el header Authorization y/o la cookie de sesión.
func doRequest(t *testing.T, app *fiber.App, authHeader, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: apphttp.AuthCookie, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	f := newAuthFixture(t)
	app := buildTestApp(f, entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer "+tokenFor(t, f.admin.ID, entity.RoleAdmin), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.Equal(t, float64(f.admin.ID), body["user_id"])
}

func TestRequireRole_VendedorAccedeRutaDeAmbosRoles(t *testing.T) {
	f := newAuthFixture(t)
	app := buildTestApp(f, entity.RoleAdmin, entity.RoleVendedor)
	resp := doRequest(t, app, "Bearer "+tokenFor(t, f.seller.ID, entity.RoleVendedor), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_VendedorBearerBloqueadoEnRutaAdmin(t *testing.T) {
	f := newAuthFixture(t)
	app := buildTestApp(f, entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer "+tokenFor(t, f.seller.ID, entity.RoleVendedor), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_VendedorConCookieVuelveALogin(t *testing.T) {
	f := newAuthFixture(t)
	app := buildTestApp(f, entity.RoleAdmin)
	resp := doRequest(t, app, "", tokenFor(t, f.seller.ID, entity.RoleVendedor))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

// El rol efectivo es el de la DB: un token emitido como administrador no sirve
// si el usuario hoy es vendedor.
func TestRequireRole_RolDelTokenNoManda(t *testing.T) {
	f := newAuthFixture(t)
	app := buildTestApp(f, entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer "+tokenFor(t, f.seller.ID, entity.RoleAdmin), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireRole_UsuarioSinRol_Retorna401(t *testing.T) {
	f := newAuthFixture(t)
	sinRol := &entity.User{FirstName: "X", LastName: "Y", Email: "x@mail.com"}
	require.NoError(t, f.store.Users().Create(context.Background(), sinRol))
	app := buildTestApp(f, entity.RoleAdmin)

	resp := doRequest(t, app, "Bearer "+tokenFor(t, sinRol.ID, ""), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinCredencialesRedirigeALogin(t *testing.T) {
	f := newAuthFixture(t)
	resp := doRequest(t, buildTestApp(f, entity.RoleAdmin), "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAuthMiddleware_HeaderMalFormado_Retorna401(t *testing.T) {
	f := newAuthFixture(t)
	resp := doRequest(t, buildTestApp(f, entity.RoleAdmin), "Token abc", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_BearerInvalido_Retorna401(t *testing.T) {
	f := newAuthFixture(t)
	resp := doRequest(t, buildTestApp(f, entity.RoleAdmin), "Bearer token.invalido.aqui", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_CookieInvalidaSeBorra(t *testing.T) {
	f := newAuthFixture(t)
	resp := doRequest(t, buildTestApp(f, entity.RoleAdmin), "", "basura")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	var cleared bool
	for _, ck := range resp.Cookies() {
		if ck.Name == apphttp.AuthCookie && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "la cookie inválida debe borrarse")
}

func TestAuthMiddleware_UsuarioEliminadoNoEntra(t *testing.T) {
	f := newAuthFixture(t)
	tok := tokenFor(t, f.seller.ID, entity.RoleVendedor)
	require.NoError(t, f.store.Users().Delete(context.Background(), f.seller.ID))

	resp := doRequest(t, buildTestApp(f, entity.RoleVendedor), "Bearer "+tok, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_CargaUsuario(t *testing.T) {
	f := newAuthFixture(t)
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(f.uc), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"email":   apphttp.GetUser(c).Email,
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.AuthCookie, Value: tokenFor(t, f.admin.ID, entity.RoleAdmin)})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(f.admin.ID), body["user_id"])
	assert.Equal(t, "ana@mail.com", body["email"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
}
