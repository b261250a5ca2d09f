package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

const localLogger = "logger"

// RequestLogger registra método, ruta, status y latencia de cada request y deja el
// logger disponible para los handlers.
func RequestLogger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals(localLogger, log)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

func loggerFrom(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
