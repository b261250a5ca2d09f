package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
	"github.com/jhoicas/sistema-ventas/pkg/logger"
)

var _ ports.ImageStore = (*MinIOStore)(nil)

// MinIOStore guarda las imágenes en un bucket S3 compatible.
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	log        *logger.Logger
}

// NewMinIOStore crea el cliente y el bucket si no existe.
func NewMinIOStore(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*MinIOStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cliente minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: verificar bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: crear bucket: %w", err)
		}
		log.Info().Str("bucket", bucketName).Msg("bucket creado")
	}

	return &MinIOStore{client: client, bucketName: bucketName, log: log}, nil
}

// Save sube el objeto con una clave única y devuelve la clave.
func (m *MinIOStore) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(safeName(filename)))
	key := fmt.Sprintf("producto_%s_%d%s", uuid.New().String()[:8], time.Now().Unix(), ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: subir %s: %w", key, err)
	}
	m.log.Debug().Str("key", key).Msg("imagen subida")
	return key, nil
}

// Open descarga el objeto. NoSuchKey se traduce a domain.ErrNotFound.
func (m *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !validKey(key) {
		return nil, "", domain.ErrNotFound
	}
	info, err := m.client.StatObject(ctx, m.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("storage: stat %s: %w", key, err)
	}
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("storage: descargar %s: %w", key, err)
	}
	return obj, info.ContentType, nil
}

// Delete borra el objeto.
func (m *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	m.log.Debug().Str("key", key).Msg("imagen borrada")
	return nil
}
