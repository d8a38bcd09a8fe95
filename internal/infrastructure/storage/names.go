package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/jhoicas/facturacion-api/internal/domain"
)

// checkName rechaza nombres con separadores o rutas relativas.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: nombre de artefacto inválido %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// identifierOf FAC-12.pdf y FAC-12_copy.pdf -> FAC-12.
func identifierOf(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return strings.TrimSuffix(base, "_copy")
}
