package ports

import (
	"context"
	"io"
)

// ImageStore define el puerto de salida para persistir imágenes de productos fuera de la DB.
// Adaptadores: disco local o bucket MinIO/S3.
type ImageStore interface {
	// Save guarda data y devuelve la clave con la que se recupera.
	Save(ctx context.Context, filename, contentType string, data []byte) (string, error)
	// Open devuelve el contenido y su content type. Retorna domain.ErrNotFound si la clave no existe.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
