package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/config"
)

var _ billing.ArtifactStore = (*FSStore)(nil)

// FSStore áreas de artefactos como directorios locales.
type FSStore struct {
	dirs map[entity.ArtifactArea]string
}

// NewFSStore mapea cada área a su directorio configurado.
func NewFSStore(cfg config.ArtifactConfig) *FSStore {
	return &FSStore{dirs: map[entity.ArtifactArea]string{
		entity.AreaPrintable:  cfg.PDFDir,
		entity.AreaPending:    cfg.PendingDir,
		entity.AreaSubmission: cfg.SubmissionDir,
		entity.AreaFailed:     cfg.ErrorDir,
	}}
}

// EnsureDirs crea los directorios de todas las áreas.
func (s *FSStore) EnsureDirs() error {
	for area, dir := range s.dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("crear directorio %s (%s): %w", dir, area, err)
		}
	}
	return nil
}

// Dirs directorios por área (diagnóstico).
func (s *FSStore) Dirs() map[entity.ArtifactArea]string {
	return s.dirs
}

func (s *FSStore) path(area entity.ArtifactArea, name string) (string, error) {
	dir, ok := s.dirs[area]
	if !ok || dir == "" {
		return "", fmt.Errorf("área sin directorio: %s", area)
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Put escribe el archivo completo. Los errores de permisos se envuelven con %w (fs.ErrPermission).
func (s *FSStore) Put(_ context.Context, area entity.ArtifactArea, name string, data []byte) error {
	p, err := s.path(area, name)
	if err != nil {
		return err
	}
	return writeFileAtomic(p, data)
}

// Get devuelve domain.ErrNotFound si el archivo no existe.
func (s *FSStore) Get(_ context.Context, area entity.ArtifactArea, name string) ([]byte, error) {
	p, err := s.path(area, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("leer %s: %w", p, err)
	}
	return data, nil
}

// List archivos regulares del área, más recientes primero. Un directorio inexistente es una lista vacía.
func (s *FSStore) List(_ context.Context, area entity.ArtifactArea) ([]entity.ArtifactInfo, error) {
	dir, ok := s.dirs[area]
	if !ok || dir == "" {
		return nil, fmt.Errorf("área sin directorio: %s", area)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listar %s: %w", dir, err)
	}
	list := make([]entity.ArtifactInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		list = append(list, entity.ArtifactInfo{
			Name:       e.Name(),
			Identifier: identifierOf(e.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ModifiedAt.After(list[j].ModifiedAt) })
	return list, nil
}
