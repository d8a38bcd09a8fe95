package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
)

var _ billing.FolioCounter = (*CounterFile)(nil)

// CounterFile archivo de texto con el último folio emitido en decimal.
type CounterFile struct {
	path string
}

// NewCounterFile construye el contador sobre path.
func NewCounterFile(path string) *CounterFile {
	return &CounterFile{path: path}
}

// Read devuelve 0 si el archivo no existe. Un contenido ilegible es error (el llamador asume 0).
func (c *CounterFile) Read() (int64, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("leer contador: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("contador corrupto %q", s)
	}
	return v, nil
}

// Write reemplaza el contenido completo (archivo temporal + rename).
func (c *CounterFile) Write(value int64) error {
	return writeFileAtomic(c.path, []byte(strconv.FormatInt(value, 10)))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cerrar %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("reemplazar %s: %w", path, err)
	}
	return nil
}
