package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

var _ billing.ArtifactStore = (*GCSStore)(nil)

// GCSStore áreas como prefijos de un bucket de Cloud Storage.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSStore usa las credenciales por defecto del entorno.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket requerido")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: client: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket)}, nil
}

// Put escribe el objeto completo; el objeto existente se reemplaza.
func (s *GCSStore) Put(ctx context.Context, area entity.ArtifactArea, name string, data []byte) error {
	key, err := objectKey(area, name)
	if err != nil {
		return err
	}
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentTypeFor(name)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalize %s: %w", key, err)
	}
	return nil
}

// Get devuelve domain.ErrNotFound si el objeto no existe.
func (s *GCSStore) Get(ctx context.Context, area entity.ArtifactArea, name string) ([]byte, error) {
	key, err := objectKey(area, name)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("gcs: open %s: %w", key, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read %s: %w", key, err)
	}
	return data, nil
}

// List objetos del prefijo del área, más recientes primero.
func (s *GCSStore) List(ctx context.Context, area entity.ArtifactArea) ([]entity.ArtifactInfo, error) {
	prefix := string(area) + "/"
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var list []entity.ArtifactInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list %s: %w", prefix, err)
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		list = append(list, entity.ArtifactInfo{
			Name:       name,
			Identifier: identifierOf(name),
			Size:       attrs.Size,
			ModifiedAt: attrs.Updated,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ModifiedAt.After(list[j].ModifiedAt) })
	return list, nil
}

// Close libera el cliente.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
