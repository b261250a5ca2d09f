package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jackc/pgx/v5/pgxpool"

	appanalytics "github.com/jhoicas/sistema-ventas/internal/application/analytics"
	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/application/reporting"
	"github.com/jhoicas/sistema-ventas/internal/application/sales"
	"github.com/jhoicas/sistema-ventas/internal/application/usecase"
	"github.com/jhoicas/sistema-ventas/internal/domain/repository"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/excel"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/sistema-ventas/internal/infrastructure/pdf"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/postgres"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/qr"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/sistema-ventas/internal/interfaces/http"
	"github.com/jhoicas/sistema-ventas/pkg/config"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

// SwaggerFile ruta del documento OpenAPI servido en /docs.
const SwaggerFile = "./docs/swagger.json"

// App aplicación armada: servidor HTTP, pool de DB y casos de uso.
type App struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool // nil con DB_DRIVER=memory
	web  *fiber.App

	Auth *auth.AuthUseCase
}

// stores repositorios y transacciones del backend elegido.
type stores struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	sales     repository.SaleRepository
	analytics repository.AnalyticsRepository
	saleTx    sales.SaleTxRunner
	catalogTx usecase.CatalogTxRunner
}

// New arma la aplicación completa. Con PostgreSQL aplica las migraciones pendientes antes de servir.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{cfg: cfg, log: log}

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if cfg.App.TimeZone != "" {
		if loc, err = time.LoadLocation(cfg.App.TimeZone); err != nil {
			a.Close()
			return nil, fmt.Errorf("bootstrap: zona horaria %q: %w", cfg.App.TimeZone, err)
		}
	}

	images, err := a.openImageStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	qrGenerator := qr.NewGenerator(qr.DefaultSize)
	sheets := excel.NewWriter()

	a.Auth = auth.NewAuthUseCase(st.users, auth.SessionConfig{
		Secret: cfg.Security.SecretKey,
		TTL:    a.sessionTTL(),
		Issuer: cfg.Security.Issuer,
	}, auth.RegistrationKeys{
		Admin:  cfg.Registration.AdminKey,
		Seller: cfg.Registration.SellerKey,
	})
	userUC := usecase.NewUserUseCase(st.users, st.sales)
	productUC := usecase.NewProductUseCase(usecase.ProductDeps{
		Repo:        st.products,
		Tx:          st.catalogTx,
		QR:          qrGenerator,
		Images:      images,
		SaveUploads: cfg.Uploads.SaveToDisk,
		Log:         log.Component("catalogo"),
	})
	saleUC := sales.NewSaleUseCase(st.saleTx, st.sales, pdfGenerator, log.Component("ventas"))
	reportUC := reporting.NewReportUseCase(st.sales, st.users, st.products, sheets, pdfGenerator).WithLocation(loc)
	dashboardUC := appanalytics.NewDashboardUseCase(st.analytics)

	if cfg.Seed.AdminPassword != "" {
		created, err := a.Auth.SeedAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("bootstrap: admin inicial: %w", err)
		}
		if created {
			log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrador inicial creado")
		}
	}

	a.web = fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Uploads.MaxBytes,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	a.web.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(SwaggerFile); err == nil {
		a.web.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: SwaggerFile,
			Path:     "docs",
			Title:    "Sistema de Ventas",
		}))
	} else {
		log.Warn().Str("file", SwaggerFile).Msg("sin documento OpenAPI, /docs deshabilitado")
	}

	secure := cfg.App.Env == "production"
	httpRouter.Router(a.web, httpRouter.RouterDeps{
		AuthUC:      a.Auth,
		UserUC:      userUC,
		ProductUC:   productUC,
		SaleUC:      saleUC,
		ReportUC:    reportUC,
		DashboardUC: dashboardUC,
		Images:      images,
		Sessions: session.New(session.Config{
			Expiration:     a.sessionTTL(),
			KeyLookup:      "cookie:session_id",
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
			CookieSecure:   secure,
		}),
		Log:            log.Component("http"),
		SessionTTL:     a.sessionTTL(),
		SecureCookies:  secure,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
	})

	return a, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	if a.cfg.DB.Driver == "memory" {
		a.log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		return &stores{
			users:     mem.Users(),
			products:  mem.Products(),
			sales:     mem.Sales(),
			analytics: mem.Analytics(),
			saleTx:    mem,
			catalogTx: mem,
		}, nil
	}

	pool, err := postgres.NewPool(ctx, a.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: conexión a PostgreSQL: %w", err)
	}
	a.pool = pool

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("bootstrap: migraciones: %w", err)
	}
	for _, name := range applied {
		a.log.Info().Str("migration", name).Msg("migración aplicada")
	}

	txRunner := postgres.NewTxRunner(pool)
	return &stores{
		users:     postgres.NewUserRepository(pool),
		products:  postgres.NewProductRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		saleTx:    txRunner,
		catalogTx: txRunner,
	}, nil
}

func (a *App) openImageStore(ctx context.Context) (ports.ImageStore, error) {
	up := a.cfg.Uploads
	if up.Backend == "minio" {
		m := a.cfg.MinIO
		store, err := storage.NewMinIOStore(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL, a.log.Component("minio"))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewDiskStore(up.Folder)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: carpeta de uploads: %w", err)
	}
	return store, nil
}

func (a *App) sessionTTL() time.Duration {
	return time.Duration(a.cfg.Security.SessionHours) * time.Hour
}

// Fiber expone el servidor, útil para app.Test.
func (a *App) Fiber() *fiber.App { return a.web }

// Run escucha en HTTP_HOST:HTTP_PORT hasta que ctx se cancela y luego apaga con un plazo de 10s.
func (a *App) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- a.web.Listen(a.cfg.HTTP.Addr())
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.web.ShutdownWithContext(shutdownCtx)
}

// Close libera el pool de conexiones.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
