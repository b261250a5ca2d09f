package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jhoicas/sistema-ventas/internal/bootstrap"
	"github.com/jhoicas/sistema-ventas/pkg/config"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

// @title        Sistema de Ventas
// @version      1.0
// @description  Punto de venta e inventario para una tienda de ropa.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("arranque")
	}
	defer app.Close()

	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
