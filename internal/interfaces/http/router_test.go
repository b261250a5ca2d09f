package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/sistema-ventas/internal/application/analytics"
	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/reporting"
	"github.com/jhoicas/sistema-ventas/internal/application/sales"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/excel"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/memory"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/pdf"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/qr"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/sistema-ventas/internal/interfaces/http"
)

const (
	claveAdmin    = "clave-admin"
	claveVendedor = "clave-vendedor"
	pngHeader     = "\x89PNG\r\n\x1a\n"
)

func newTestRouter(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	images, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	pdfGen := pdf.NewMarotoPDFGenerator("Tienda de prueba")

	authUC := auth.NewAuthUseCase(store.Users(),
		auth.SessionConfig{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer},
		auth.RegistrationKeys{Admin: claveAdmin, Seller: claveVendedor})
	productUC := usecase.NewProductUseCase(usecase.ProductDeps{
		Repo:        store.Products(),
		Tx:          store,
		QR:          qr.NewGenerator(qr.DefaultSize),
		Images:      images,
		SaveUploads: true,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		UserUC:         usecase.NewUserUseCase(store.Users(), store.Sales()),
		ProductUC:      productUC,
		SaleUC:         sales.NewSaleUseCase(store, store.Sales(), pdfGen, nil),
		ReportUC:       reporting.NewReportUseCase(store.Sales(), store.Users(), store.Products(), excel.NewWriter(), pdfGen),
		DashboardUC:    appanalytics.NewDashboardUseCase(store.Analytics()),
		Images:         images,
		Sessions:       session.New(),
		SessionTTL:     time.Hour,
		MaxUploadBytes: 1 << 20,
	})
	return app, store
}

// client guarda las cookies entre requests como lo haría el navegador.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (cl *client) send(req *http.Request) *http.Response {
	cl.t.Helper()
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (cl *client) get(target string) *http.Response {
	cl.t.Helper()
	return cl.send(httptest.NewRequest(http.MethodGet, target, nil))
}

func (cl *client) post(target string, form url.Values) *http.Response {
	cl.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return cl.send(req)
}

func (cl *client) postMultipart(target string, form url.Values, filename string, file []byte) *http.Response {
	cl.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(cl.t, w.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("imagen", filename)
		require.NoError(cl.t, err)
		_, err = fw.Write(file)
		require.NoError(cl.t, err)
	}
	require.NoError(cl.t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return cl.send(req)
}

type viewBody struct {
	Flashes []dto.Flash       `json:"flashes"`
	User    *dto.UserResponse `json:"user"`
	Data    json.RawMessage   `json:"data"`
}

// view hace GET, exige 200 y decodifica Data en data (si no es nil).
func (cl *client) view(target string, data any) viewBody {
	cl.t.Helper()
	resp := cl.get(target)
	defer resp.Body.Close()
	require.Equal(cl.t, http.StatusOK, resp.StatusCode, target)
	var body viewBody
	require.NoError(cl.t, json.NewDecoder(resp.Body).Decode(&body))
	if data != nil {
		require.NoError(cl.t, json.Unmarshal(body.Data, data))
	}
	return body
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get(fiber.HeaderLocation))
}

func messages(flashes []dto.Flash) []string {
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, f.Message)
	}
	return out
}

func registerForm(first, email, role, key string) url.Values {
	return url.Values{
		"nombre":           {first},
		"apellido":         {"Prueba"},
		"email":            {email},
		"telefono":         {"987654321"},
		"password":         {"secreta"},
		"confirm-password": {"secreta"},
		"rol":              {role},
		"clave_registro":   {key},
	}
}

func registerAndLogin(t *testing.T, app *fiber.App, first, email, role, key string) *client {
	t.Helper()
	cl := newClient(t, app)
	assertRedirect(t, cl.post("/registro", registerForm(first, email, role, key)), "/login")
	home := "/ventas"
	if role == "administrador" {
		home = "/admin"
	}
	assertRedirect(t, cl.post("/login", url.Values{"email": {email}, "password": {"secreta"}}), home)
	require.NotEmpty(t, cl.cookies[apphttp.AuthCookie])
	cl.view(home, nil)
	return cl
}

func productForm(stock int) url.Values {
	return url.Values{
		"nombre":          {"Polerón Oversize"},
		"descripcion":     {"Algodón peinado"},
		"caracteristicas": {"Capucha"},
		"precio":          {"19990"},
		"stock":           {fmt.Sprint(stock)},
		"talla":           {"M"},
		"tipo_producto":   {"Polerón"},
		"marca":           {"Nike"},
		"genero":          {"Hombre"},
	}
}

func TestHealthzYRaiz(t *testing.T) {
	app, _ := newTestRouter(t)
	cl := newClient(t, app)

	resp := cl.get("/healthz")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	assertRedirect(t, cl.get("/"), "/login")
	assertRedirect(t, cl.get("/ventas"), "/login")
	login := cl.view("/login", nil)
	assert.Contains(t, messages(login.Flashes), "Inicia sesión para acceder a esta página.")
}

func TestRegistroYLogin(t *testing.T) {
	app, _ := newTestRouter(t)
	cl := newClient(t, app)

	assertRedirect(t, cl.post("/registro", registerForm("Vale", "vale@mail.com", "vendedor", "otra")), "/registro")
	reg := cl.view("/registro", nil)
	assert.Equal(t, []string{"Clave de registro incorrecta para el rol seleccionado."}, messages(reg.Flashes))

	form := registerForm("Vale", "vale@mail.com", "vendedor", claveVendedor)
	form.Set("confirm-password", "distinta")
	assertRedirect(t, cl.post("/registro", form), "/registro")
	assert.Equal(t, []string{"Las contraseñas no coinciden."}, messages(cl.view("/registro", nil).Flashes))

	form = registerForm("", "vale@mail.com", "vendedor", claveVendedor)
	assertRedirect(t, cl.post("/registro", form), "/registro")
	assert.Equal(t, []string{"Todos los campos son obligatorios."}, messages(cl.view("/registro", nil).Flashes))

	form = registerForm("Vale", "vale@mail.com", "vendedor", claveVendedor)
	form.Set("password", strings.Repeat("x", 80))
	form.Set("confirm-password", strings.Repeat("x", 80))
	assertRedirect(t, cl.post("/registro", form), "/registro")
	reg = cl.view("/registro", nil)
	require.Len(t, reg.Flashes, 1)
	assert.Equal(t, dto.FlashDanger, reg.Flashes[0].Category)
	assert.Contains(t, reg.Flashes[0].Message, "password")

	assertRedirect(t, cl.post("/registro", registerForm("Vale", "vale@mail.com", "vendedor", claveVendedor)), "/login")
	login := cl.view("/login", nil)
	require.Len(t, login.Flashes, 1)
	assert.Equal(t, dto.FlashSuccess, login.Flashes[0].Category)

	assertRedirect(t, cl.post("/registro", registerForm("Vale", "vale@mail.com", "vendedor", claveVendedor)), "/registro")
	reg = cl.view("/registro", nil)
	require.Len(t, reg.Flashes, 1)
	assert.Equal(t, dto.FlashWarning, reg.Flashes[0].Category)
	assert.Equal(t, "El correo ya está registrado.", reg.Flashes[0].Message)

	assertRedirect(t, cl.post("/login", url.Values{"email": {"vale@mail.com"}, "password": {"mala"}}), "/login")
	assert.Equal(t, []string{"Email o contraseña incorrectos."}, messages(cl.view("/login", nil).Flashes))

	assertRedirect(t, cl.post("/login", url.Values{"email": {"vale@mail.com"}, "password": {"secreta"}}), "/ventas")
	assertRedirect(t, cl.get("/"), "/ventas")
	home := cl.view("/ventas", nil)
	require.NotNil(t, home.User)
	assert.Equal(t, "Vale Prueba", home.User.FullName)

	assertRedirect(t, cl.get("/logout"), "/login")
	assert.Empty(t, cl.cookies[apphttp.AuthCookie])
	assertRedirect(t, cl.get("/ventas"), "/login")
}

func TestLoginJSONDevuelveToken(t *testing.T) {
	app, _ := newTestRouter(t)
	cl := newClient(t, app)
	assertRedirect(t, cl.post("/registro", registerForm("Ana", "ana@mail.com", "administrador", claveAdmin)), "/login")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@mail.com","password":"secreta"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "/admin", out.Redirect)

	req = httptest.NewRequest(http.MethodGet, "/productos", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+out.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@mail.com","password":"mala"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFlujoDeVenta(t *testing.T) {
	app, store := newTestRouter(t)
	ctx := context.Background()
	admin := registerAndLogin(t, app, "Ana", "ana@mail.com", "administrador", claveAdmin)
	seller := registerAndLogin(t, app, "Vale", "vale@mail.com", "vendedor", claveVendedor)

	// Un archivo que no es imagen se rechaza aunque venga con extensión de imagen
	assertRedirect(t, admin.postMultipart("/agregar_producto", productForm(5), "foto.png", []byte("<html><script>alert(1)</script></html>")), "/agregar_producto")
	rejected := admin.view("/agregar_producto", nil)
	require.Len(t, rejected.Flashes, 1)
	assert.Equal(t, dto.FlashDanger, rejected.Flashes[0].Category)
	assert.Contains(t, rejected.Flashes[0].Message, "imagen")

	// Alta de producto con imagen
	assertRedirect(t, admin.postMultipart("/agregar_producto", productForm(5), "foto.png", []byte(pngHeader)), "/productos")
	var products []dto.ProductResponse
	list := admin.view("/productos", &products)
	assert.Contains(t, messages(list.Flashes), "Producto agregado correctamente con código de barras y QR.")
	require.Len(t, products, 1)
	prod := products[0]
	assert.Equal(t, "0101030001", prod.Barcode)
	assert.True(t, strings.HasPrefix(prod.ImageURL, "data:image/png;base64,"), prod.ImageURL)
	assert.True(t, strings.HasPrefix(prod.QRURL, "data:image/png;base64,"))

	stored, err := store.Products().GetByID(ctx, prod.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ImageLocal)
	resp := admin.get(dto.UploadsPrefix + stored.ImageLocal)
	img, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))
	assert.Equal(t, []byte(pngHeader), img)

	// El vendedor no administra productos
	assertRedirect(t, seller.get("/productos"), "/login")
	assert.Contains(t, messages(seller.view("/login", nil).Flashes), "Acceso no autorizado")
	assertRedirect(t, seller.post(fmt.Sprintf("/eliminar_producto/%d", prod.ID), url.Values{}), "/login")

	var page apphttp.NewSaleView
	seller.view("/nueva_venta", &page)
	require.Len(t, page.Products, 1)
	assert.False(t, page.ShowMessage)

	// Venta en efectivo
	sale := url.Values{
		"productos_seleccionados": {fmt.Sprintf(`[{"id":%d,"cantidad":2}]`, prod.ID)},
		"metodo_pago":             {"Efectivo"},
		"efectivo_entregado":      {"50000"},
	}
	resp = seller.post("/nueva_venta", sale)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get(fiber.HeaderLocation)
	require.True(t, strings.HasPrefix(location, "/nueva_venta?mostrar_mensaje=1&ticket="), location)

	done := seller.view(location, &page)
	assert.Equal(t, []string{"¡Venta registrada exitosamente! Total: $39980"}, messages(done.Flashes))
	assert.True(t, page.ShowMessage)
	require.NotEmpty(t, page.Ticket)

	resp = seller.get("/boleta/" + page.Ticket)
	receipt, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, bytes.HasPrefix(receipt, []byte("%PDF")))

	// Stock insuficiente: no cambia nada
	sale.Set("productos_seleccionados", fmt.Sprintf(`[{"id":%d,"cantidad":10}]`, prod.ID))
	assertRedirect(t, seller.post("/nueva_venta", sale), "/nueva_venta")
	failed := seller.view("/nueva_venta", nil)
	assert.Equal(t, []string{"Stock insuficiente para Polerón Oversize"}, messages(failed.Flashes))

	sale.Set("productos_seleccionados", "no es json")
	assertRedirect(t, seller.post("/nueva_venta", sale), "/nueva_venta")
	assert.Equal(t, []string{"Error al procesar los productos."}, messages(seller.view("/nueva_venta", nil).Flashes))

	var stock dto.StockView
	seller.view("/consultar_stock", &stock)
	require.Len(t, stock.Products, 1)
	assert.Equal(t, 3, stock.Products[0].Stock)
	assert.True(t, stock.Products[0].Critical)
	assert.Equal(t, 1, stock.CriticalCount)

	resp = seller.get("/boleta/no-existe")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Reportes del administrador
	var history dto.HistoryView
	admin.view("/historial_ventas?metodo_pago=Todos&vendedor_id=Todos", &history)
	require.Len(t, history.Sales, 1)
	assert.Equal(t, "39980", history.Total.String())
	assert.Equal(t, "Vale Prueba", history.Sales[0].Seller)
	assert.Len(t, history.Users, 2)

	assertRedirect(t, seller.get("/historial_ventas"), "/login")

	resp = admin.get("/exportar_excel_mes?mes=" + time.Now().Format("2006-01"))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "ventas_"+time.Now().Format("2006-01")+".xlsx")

	assertRedirect(t, admin.get("/exportar_excel_mes"), "/historial_ventas")
	assert.Equal(t, []string{"Debes seleccionar un mes"}, messages(admin.view("/historial_ventas", nil).Flashes))

	resp = seller.get(fmt.Sprintf("/descargar_etiqueta/%d", prod.ID))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))

	// Panel: el vendedor con ventas no se puede eliminar
	var panel dto.AdminView
	admin.view("/admin?activos=1", &panel)
	require.Len(t, panel.Users, 1)
	assert.Equal(t, "vale@mail.com", panel.Users[0].Email)
	assert.Equal(t, 2, panel.Summary.TotalUsers)
	assert.Equal(t, 1, panel.Summary.TotalSales)
	assert.Equal(t, 1, panel.Summary.CriticalStock)

	sellerID := panel.Users[0].ID
	assertRedirect(t, admin.get(fmt.Sprintf("/admin/eliminar/%d", sellerID)), "/admin")
	warn := admin.view("/admin", nil)
	require.Len(t, warn.Flashes, 1)
	assert.Equal(t, dto.FlashWarning, warn.Flashes[0].Category)
	assert.Equal(t, "Este usuario no puede eliminarse porque tiene ventas registradas.", warn.Flashes[0].Message)

	// Borrar la venta no repone stock
	assertRedirect(t, admin.post(fmt.Sprintf("/eliminar_venta/%d", history.Sales[0].ID), url.Values{}), "/historial_ventas")
	admin.view("/historial_ventas", &history)
	assert.Empty(t, history.Sales)
	seller.view("/consultar_stock", &stock)
	assert.Equal(t, 3, stock.Products[0].Stock)

	resp = admin.post("/eliminar_venta/999", url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductos_ValidacionYNoEncontrado(t *testing.T) {
	app, _ := newTestRouter(t)
	admin := registerAndLogin(t, app, "Ana", "ana@mail.com", "administrador", claveAdmin)

	form := productForm(5)
	form.Set("precio", "caro")
	assertRedirect(t, admin.post("/agregar_producto", form), "/agregar_producto")
	assert.Equal(t, []string{"precio: debe ser un número"}, messages(admin.view("/agregar_producto", nil).Flashes))

	assertRedirect(t, admin.post("/agregar_producto", productForm(2)), "/productos")
	var products []dto.ProductResponse
	admin.view("/productos", &products)
	require.Len(t, products, 1)
	id := products[0].ID

	edit := productForm(8)
	edit.Set("nombre", "Polerón Clásico")
	edit.Set("talla", "XL")
	assertRedirect(t, admin.post(fmt.Sprintf("/editar_producto/%d", id), edit), "/productos")
	var detail dto.ProductResponse
	admin.view(fmt.Sprintf("/producto/%d", id), &detail)
	assert.Equal(t, "Polerón Clásico", detail.Name)
	assert.Equal(t, "XL", detail.Size)
	assert.Equal(t, "0101030001", detail.Barcode, "el código no cambia al editar")

	var catalog apphttp.CatalogView
	admin.view("/catalogo?genero=Mujer", &catalog)
	assert.Empty(t, catalog.Products)
	admin.view("/catalogo?genero=Hombre&tipo_producto="+url.QueryEscape("Polerón"), &catalog)
	assert.Len(t, catalog.Products, 1)

	for _, target := range []string{"/producto/999", "/editar_producto/999", "/producto/abc", "/descargar_etiqueta/999", "/admin/editar/999"} {
		resp := admin.get(target)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, target)
	}

	assertRedirect(t, admin.post(fmt.Sprintf("/eliminar_producto/%d", id), url.Values{}), "/productos")
	admin.view("/productos", &products)
	assert.Empty(t, products)
}

func TestAdmin_EditarUsuario(t *testing.T) {
	app, _ := newTestRouter(t)
	admin := registerAndLogin(t, app, "Ana", "ana@mail.com", "administrador", claveAdmin)
	registerAndLogin(t, app, "Vale", "vale@mail.com", "vendedor", claveVendedor)

	var panel dto.AdminView
	admin.view("/admin?search=vale", &panel)
	require.Len(t, panel.Users, 1)
	seller := panel.Users[0]
	target := fmt.Sprintf("/admin/editar/%d", seller.ID)

	var user dto.UserResponse
	admin.view(target, &user)
	assert.Equal(t, "vale@mail.com", user.Email)

	promote := url.Values{
		"nombre":   {"Vale"},
		"apellido": {"Soto"},
		"email":    {"vale@mail.com"},
		"telefono": {"111"},
		"rol":      {"administrador"},
	}
	assertRedirect(t, admin.post(target, promote), target)
	warn := admin.view(target, &user)
	assert.Equal(t, []string{"No se puede cambiar el rol de 'vendedor' a 'administrador' desde esta pantalla."}, messages(warn.Flashes))
	assert.Equal(t, "vendedor", user.Role)
	assert.Equal(t, "Prueba", user.LastName, "el rechazo no modifica nada")

	promote.Set("rol", "vendedor")
	assertRedirect(t, admin.post(target, promote), "/admin")
	admin.view(target, &user)
	assert.Equal(t, "Soto", user.LastName)

	adminID := admin.view("/admin", nil).User.ID
	assertRedirect(t, admin.get(fmt.Sprintf("/admin/eliminar/%d", adminID)), "/admin")
	assert.Equal(t, []string{"No puedes eliminarte a ti mismo."}, messages(admin.view("/admin", nil).Flashes))

	assertRedirect(t, admin.get(fmt.Sprintf("/admin/eliminar/%d", seller.ID)), "/admin")
	admin.view("/admin", &panel)
	assert.Len(t, panel.Users, 1)
}
