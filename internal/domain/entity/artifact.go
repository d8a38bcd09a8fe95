package entity

import "time"

// ArtifactArea zona lógica del almacén de artefactos.
type ArtifactArea string

const (
	AreaPrintable  ArtifactArea = "pdfs"
	AreaPending    ArtifactArea = "base"
	AreaSubmission ArtifactArea = "xmldian"
	AreaFailed     ArtifactArea = "error"
)

// RetrievalSource indica qué paso de la cadena de recuperación produjo el artefacto.
type RetrievalSource string

const (
	SourceFilesystem    RetrievalSource = "filesystem"
	SourceBlob          RetrievalSource = "blob"
	SourceBase64        RetrievalSource = "base64"
	SourceRegeneratedDB RetrievalSource = "regenerated_db"
	SourceRegeneratedFS RetrievalSource = "regenerated_fs"
	SourceText          RetrievalSource = "text"
	SourceNotFound      RetrievalSource = "not_found"
)

// PrintableArtifact artefacto imprimible listo para descargar.
type PrintableArtifact struct {
	Content     []byte
	Filename    string
	ContentType string
	Source      RetrievalSource
}

// ArtifactInfo entrada listada de un área.
type ArtifactInfo struct {
	Name       string
	Identifier string
	Size       int64
	ModifiedAt time.Time
}
