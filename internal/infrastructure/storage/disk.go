// Package storage persiste las imágenes subidas de productos en disco local o en MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/sistema-ventas/internal/application/ports"
	"github.com/jhoicas/sistema-ventas/internal/domain"
)

var _ ports.ImageStore = (*DiskStore)(nil)

// DiskStore guarda las imágenes como archivos en una carpeta.
type DiskStore struct {
	dir string
}

// NewDiskStore crea la carpeta si no existe.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear carpeta %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save escribe el archivo con un nombre único y devuelve ese nombre como clave.
func (s *DiskStore) Save(_ context.Context, filename, _ string, data []byte) (string, error) {
	key := objectKey(filename)
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	return key, nil
}

// Open abre el archivo de la clave. Claves con rutas se rechazan como inexistentes.
func (s *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	if !validKey(key) {
		return nil, "", domain.ErrNotFound
	}
	path := filepath.Join(s.dir, key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("storage: abrir %s: %w", key, err)
	}
	return f, contentTypeOf(f, key), nil
}

// Delete borra el archivo; si no existe no es error.
func (s *DiskStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	return nil
}

// objectKey nombre único conservando una versión segura del nombre original.
func objectKey(filename string) string {
	return uuid.New().String()[:8] + "_" + safeName(filename)
}

// safeName deja solo letras ASCII, dígitos, punto, guion y guion bajo.
func safeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "._")
	if name == "" {
		return "imagen"
	}
	return name
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && filepath.Base(key) == key && !strings.ContainsAny(key, `/\`)
}

// contentTypeOf por extensión y, si no se conoce, olfateando los primeros bytes.
func contentTypeOf(f *os.File, key string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(key))); ct != "" {
		return ct
	}
	head := make([]byte, 512)
	n, _ := f.Read(head)
	_, _ = f.Seek(0, io.SeekStart)
	return http.DetectContentType(head[:n])
}
