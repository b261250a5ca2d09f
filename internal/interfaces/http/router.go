package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	appanalytics "github.com/jhoicas/sistema-ventas/internal/application/analytics"
	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/application/dto"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/application/reporting"
	"github.com/jhoicas/sistema-ventas/internal/application/sales"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	SaleUC      *sales.SaleUseCase
	ReportUC    *reporting.ReportUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Images      ports.ImageStore // nil = sin imágenes persistidas
	Sessions    *session.Store
	Log         *logger.Logger

	SessionTTL     time.Duration
	SecureCookies  bool
	MaxUploadBytes int
}

// Router registra las rutas de la aplicación.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log))
	app.Use(NewFlashStore(deps.Sessions).Middleware())

	// Público
	app.Get("/healthz", Healthz)
	app.Get(dto.UploadsPrefix+":key", NewUploadsHandler(deps.Images).Serve)

	authHandler := NewAuthHandler(deps.AuthUC, deps.SessionTTL, deps.SecureCookies)
	app.Get("/", authHandler.Index)
	app.Get("/login", authHandler.LoginPage)
	app.Post("/login", authHandler.Login)
	app.Get("/registro", authHandler.RegisterPage)
	app.Post("/registro", authHandler.Register)
	app.Get("/logout", authHandler.Logout)

	// Rutas con sesión: cualquier rol o solo administrador
	authn := AuthMiddleware(deps.AuthUC)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	adminOnly := RequireRole(entity.RoleAdmin)

	saleHandler := NewSaleHandler(deps.SaleUC, deps.ProductUC)
	app.Get("/ventas", authn, anyRole, saleHandler.Home)
	app.Get("/nueva_venta", authn, anyRole, saleHandler.NewSalePage)
	app.Post("/nueva_venta", authn, anyRole, saleHandler.Create)
	app.Get("/boleta/:ticket", authn, anyRole, saleHandler.Receipt)
	app.Post("/eliminar_venta/:id", authn, adminOnly, saleHandler.Delete)

	productHandler := NewProductHandler(deps.ProductUC, deps.ReportUC, deps.MaxUploadBytes)
	app.Get("/consultar_stock", authn, anyRole, productHandler.Stock)
	app.Get("/catalogo", authn, anyRole, productHandler.Catalog)
	app.Get("/producto/:id", authn, anyRole, productHandler.Detail)
	app.Get("/descargar_etiqueta/:id", authn, anyRole, productHandler.Label)
	app.Get("/agregar_producto", authn, adminOnly, productHandler.NewPage)
	app.Post("/agregar_producto", authn, adminOnly, productHandler.Create)
	app.Get("/productos", authn, adminOnly, productHandler.List)
	app.Post("/eliminar_producto/:id", authn, adminOnly, productHandler.Delete)
	app.Get("/editar_producto/:id", authn, adminOnly, productHandler.EditPage)
	app.Post("/editar_producto/:id", authn, adminOnly, productHandler.Update)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.UserUC)
	admin := app.Group("/admin", authn, adminOnly)
	admin.Get("/", dashboardHandler.Panel)
	admin.Get("/editar/:id", dashboardHandler.EditUserPage)
	admin.Post("/editar/:id", dashboardHandler.UpdateUser)
	admin.Get("/eliminar/:id", dashboardHandler.DeleteUser)

	reportHandler := NewReportHandler(deps.ReportUC)
	app.Get("/historial_ventas", authn, adminOnly, reportHandler.History)
	app.Get("/exportar_excel_mes", authn, adminOnly, reportHandler.ExportMonth)
}
