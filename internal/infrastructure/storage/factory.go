package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/pkg/config"
)

// Backends soportados.
const (
	BackendFS  = "fs"
	BackendS3  = "s3"
	BackendGCS = "gcs"
)

// NewArtifactStore elige el backend configurado.
func NewArtifactStore(ctx context.Context, cfg config.ArtifactConfig) (billing.ArtifactStore, error) {
	switch cfg.Backend {
	case "", BackendFS:
		fsStore := NewFSStore(cfg)
		if err := fsStore.EnsureDirs(); err != nil {
			return nil, err
		}
		return fsStore, nil
	case BackendS3:
		return NewS3Store(ctx, cfg.S3)
	case BackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("backend de artefactos desconocido: %q", cfg.Backend)
	}
}
