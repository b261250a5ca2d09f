// seed_admin crea el administrador inicial si no existe.
// Uso: SEED_ADMIN_EMAIL=admin@mail.com SEED_ADMIN_PASSWORD=... go run ./cmd/seed_admin
package main

import (
	"context"
	"time"

	"github.com/jhoicas/sistema-ventas/internal/application/auth"
	"github.com/jhoicas/sistema-ventas/internal/infrastructure/postgres"
	"github.com/jhoicas/sistema-ventas/pkg/config"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	if cfg.DB.Driver != "postgres" {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("seed_admin requiere DB_DRIVER=postgres")
	}
	if cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD es obligatoria")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("migración aplicada")
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.SessionConfig{
		Secret: cfg.Security.SecretKey,
		Issuer: cfg.Security.Issuer,
	}, auth.RegistrationKeys{})
	created, err := authUC.SeedAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}
	if !created {
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("el administrador ya existía")
		return
	}
	log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrador creado")
}
