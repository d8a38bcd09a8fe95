package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.txt")
	c := NewCounterFile(path)

	t.Run("archivo inexistente es 0", func(t *testing.T) {
		v, err := c.Read()
		require.NoError(t, err)
		assert.Zero(t, v)
	})

	t.Run("escribe y relee", func(t *testing.T) {
		require.NoError(t, c.Write(41))
		v, err := c.Read()
		require.NoError(t, err)
		assert.Equal(t, int64(41), v)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "41", string(raw))
	})

	t.Run("contenido corrupto es error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
		_, err := c.Read()
		assert.Error(t, err)
	})
}

func newFSStore(t *testing.T) (*FSStore, config.ArtifactConfig) {
	t.Helper()
	root := t.TempDir()
	cfg := config.ArtifactConfig{
		PDFDir:        filepath.Join(root, "pdfs"),
		PendingDir:    filepath.Join(root, "pendientes", "base"),
		SubmissionDir: filepath.Join(root, "pendientes", "xmldian"),
		ErrorDir:      filepath.Join(root, "error"),
	}
	s := NewFSStore(cfg)
	require.NoError(t, s.EnsureDirs())
	return s, cfg
}

func TestFSStore_PutGet(t *testing.T) {
	s, cfg := newFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, entity.AreaPrintable, "FAC-1.pdf", []byte("%PDF-1.7")))
	assert.FileExists(t, filepath.Join(cfg.PDFDir, "FAC-1.pdf"))

	data, err := s.Get(ctx, entity.AreaPrintable, "FAC-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)

	_, err = s.Get(ctx, entity.AreaPrintable, "FAC-2.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFSStore_NombreInvalido(t *testing.T) {
	s, _ := newFSStore(t)
	_, err := s.Get(context.Background(), entity.AreaPrintable, "../folio.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFSStore_List(t *testing.T) {
	s, cfg := newFSStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, entity.AreaPending, "FAC-1.xml", []byte("<a/>")))
	require.NoError(t, s.Put(ctx, entity.AreaPending, "FAC-2.xml", []byte("<b/>")))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(cfg.PendingDir, "FAC-1.xml"), old, old))

	list, err := s.List(ctx, entity.AreaPending)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "FAC-2", list[0].Identifier)
	assert.Equal(t, "FAC-1.xml", list[1].Name)
}

func TestIdentifierOf(t *testing.T) {
	assert.Equal(t, "FAC-12", identifierOf("FAC-12.pdf"))
	assert.Equal(t, "FAC-12", identifierOf("FAC-12_copy.pdf"))
	assert.Equal(t, "FAC-12", identifierOf("FAC-12.xml"))
}

func TestNewS3Store_Validacion(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.S3Config{})
	require.Error(t, err)

	s, err := NewS3Store(context.Background(), config.S3Config{
		Bucket:       "facturas",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     "localhost:9000",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "facturas", s.bucket)
}

func TestObjectKey(t *testing.T) {
	key, err := objectKey(entity.AreaSubmission, "FAC-1.zip")
	require.NoError(t, err)
	assert.Equal(t, "xmldian/FAC-1.zip", key)

	_, err = objectKey(entity.AreaSubmission, "a/b.zip")
	assert.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("FAC-1.pdf"))
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("FAC-1.txt"))
}
