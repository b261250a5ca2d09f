package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jhoicas/sistema-ventas/internal/application/dto"
)

const (
	localFlashes = "flashes"
	flashKey     = "_flashes"
)

// FlashStore guarda los mensajes flash en la sesión hasta la siguiente vista GET.
// Se guardan como JSON porque la sesión serializa con gob y solo admite tipos registrados.
type FlashStore struct {
	sessions *session.Store
}

// NewFlashStore construye el store sobre la sesión de Fiber.
func NewFlashStore(sessions *session.Store) *FlashStore {
	return &FlashStore{sessions: sessions}
}

// Middleware deja el store disponible para Flash y PopFlashes.
func (f *FlashStore) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localFlashes, f)
		return c.Next()
	}
}

func (f *FlashStore) push(c *fiber.Ctx, fl dto.Flash) error {
	sess, err := f.sessions.Get(c)
	if err != nil {
		return err
	}
	list := decodeFlashes(sess.Get(flashKey))
	raw, err := json.Marshal(append(list, fl))
	if err != nil {
		return err
	}
	sess.Set(flashKey, string(raw))
	return sess.Save()
}

func (f *FlashStore) pop(c *fiber.Ctx) ([]dto.Flash, error) {
	sess, err := f.sessions.Get(c)
	if err != nil {
		return nil, err
	}
	raw := sess.Get(flashKey)
	if raw == nil {
		return nil, nil
	}
	sess.Delete(flashKey)
	return decodeFlashes(raw), sess.Save()
}

func (f *FlashStore) reset(c *fiber.Ctx) error {
	sess, err := f.sessions.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

func decodeFlashes(v any) []dto.Flash {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	var list []dto.Flash
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil
	}
	return list
}

func flashStoreFrom(c *fiber.Ctx) *FlashStore {
	f, _ := c.Locals(localFlashes).(*FlashStore)
	return f
}

// Flash encola un mensaje para la próxima vista. Sin store de sesión no hace nada.
func Flash(c *fiber.Ctx, category, message string) {
	f := flashStoreFrom(c)
	if f == nil {
		return
	}
	if err := f.push(c, dto.Flash{Category: category, Message: message}); err != nil {
		loggerFrom(c).Warn().Err(err).Msg("no se pudo guardar el mensaje flash")
	}
}

// PopFlashes devuelve y borra los mensajes pendientes.
func PopFlashes(c *fiber.Ctx) []dto.Flash {
	f := flashStoreFrom(c)
	if f == nil {
		return []dto.Flash{}
	}
	list, err := f.pop(c)
	if err != nil {
		loggerFrom(c).Warn().Err(err).Msg("no se pudieron leer los mensajes flash")
	}
	if list == nil {
		return []dto.Flash{}
	}
	return list
}

func resetSession(c *fiber.Ctx) {
	f := flashStoreFrom(c)
	if f == nil {
		return
	}
	if err := f.reset(c); err != nil {
		loggerFrom(c).Warn().Err(err).Msg("no se pudo cerrar la sesión")
	}
}
