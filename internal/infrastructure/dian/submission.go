package dian

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/ucarion/c14n"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

var _ billing.SubmissionQueue = (*SubmissionQueue)(nil)

// SubmissionQueue deja el XML canonicalizado y comprimido en el área de envío.
// El envío real a la DIAN (firma y web service) no está implementado; el ZIP queda a la espera.
type SubmissionQueue struct {
	store     billing.ArtifactStore
	issuerNIT string
}

// NewSubmissionQueue construye la cola sobre el almacén de artefactos.
func NewSubmissionQueue(store billing.ArtifactStore, issuerNIT string) *SubmissionQueue {
	return &SubmissionQueue{store: store, issuerNIT: issuerNIT}
}

// Enqueue canonicaliza (C14N), empaqueta en ZIP y guarda. Devuelve el nombre del ZIP.
func (q *SubmissionQueue) Enqueue(ctx context.Context, identifier string, exchange []byte) (string, error) {
	canonical, err := canonicalizeXML(exchange)
	if err != nil {
		return "", fmt.Errorf("dian: canonicalizar XML: %w", err)
	}
	xmlName, zipName := SubmissionFilenames(q.issuerNIT, identifier)
	zipped, err := CompressXMLToZip(canonical, xmlName)
	if err != nil {
		return "", err
	}
	if err := q.store.Put(ctx, entity.AreaSubmission, zipName, zipped); err != nil {
		return "", fmt.Errorf("dian: guardar %s: %w", zipName, err)
	}
	return zipName, nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	dec.CharsetReader = charsetReader
	return c14n.Canonicalize(dec)
}

// CompressXMLToZip empaqueta el XML en un ZIP en memoria con una única entrada.
func CompressXMLToZip(xmlBytes []byte, xmlFilename string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	fw, err := zw.Create(xmlFilename)
	if err != nil {
		return nil, fmt.Errorf("zip: crear entrada %s: %w", xmlFilename, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

var nonAlnum = regexp.MustCompile(`[^0-9A-Za-z]`)

// SubmissionFilenames nombres del XML interno y del ZIP: {NIT emisor}{identificador sin guiones}.
// Ejemplo: 22222222FAC12.xml
func SubmissionFilenames(issuerNIT, identifier string) (xmlName, zipName string) {
	nit := issuerNIT
	if idx := strings.Index(nit, "-"); idx != -1 {
		nit = nit[:idx]
	}
	base := nonAlnum.ReplaceAllString(nit, "") + nonAlnum.ReplaceAllString(identifier, "")
	return base + ".xml", base + ".zip"
}
