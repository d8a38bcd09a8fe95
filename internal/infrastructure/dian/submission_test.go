package dian_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/dian"
)

type memStore struct {
	files map[string][]byte
}

func (m *memStore) Put(_ context.Context, area entity.ArtifactArea, name string, data []byte) error {
	m.files[string(area)+"/"+name] = data
	return nil
}

func (m *memStore) Get(_ context.Context, area entity.ArtifactArea, name string) ([]byte, error) {
	if d, ok := m.files[string(area)+"/"+name]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) List(context.Context, entity.ArtifactArea) ([]entity.ArtifactInfo, error) {
	return nil, nil
}

func TestSubmissionFilenames(t *testing.T) {
	xmlName, zipName := dian.SubmissionFilenames("900123456-8", "FAC-12")
	assert.Equal(t, "900123456FAC12.xml", xmlName)
	assert.Equal(t, "900123456FAC12.zip", zipName)
}

func TestSubmissionQueue_Enqueue(t *testing.T) {
	store := &memStore{files: map[string][]byte{}}
	q := dian.NewSubmissionQueue(store, "22222222")

	exchange, err := dian.NewExchangeCodec().Render(composedInvoice(t))
	require.NoError(t, err)

	name, err := q.Enqueue(context.Background(), "FAC-12", exchange)
	require.NoError(t, err)
	assert.Equal(t, "22222222FAC12.zip", name)

	zipped, ok := store.files["xmldian/"+name]
	require.True(t, ok)
	zr, err := zip.NewReader(bytes.NewReader(zipped), int64(len(zipped)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "22222222FAC12.xml", zr.File[0].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer f.Close()
	inner, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(inner), "<llavecomprobante>FAC-12</llavecomprobante>")
}

func TestSubmissionQueue_XMLInvalido(t *testing.T) {
	q := dian.NewSubmissionQueue(&memStore{files: map[string][]byte{}}, "1")
	_, err := q.Enqueue(context.Background(), "FAC-1", []byte("<a>"))
	assert.Error(t, err)
}
