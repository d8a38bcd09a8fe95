package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
)

var _ billing.PrintableValidator = (*Validator)(nil)

var pdfMagic = []byte("%PDF-")

// Validator verifica con pdfcpu (modo relajado) que un PDF guardado se pueda abrir.
type Validator struct {
	conf *model.Configuration
}

// NewValidator construye el validador sin escribir configuración de pdfcpu en disco.
func NewValidator() *Validator {
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Validator{conf: conf}
}

// Validate rechaza contenido sin cabecera %PDF- o con estructura corrupta.
func (v *Validator) Validate(data []byte) error {
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("pdf: cabecera inválida")
	}
	if err := api.Validate(bytes.NewReader(data), v.conf); err != nil {
		return fmt.Errorf("pdf: validar: %w", err)
	}
	return nil
}
