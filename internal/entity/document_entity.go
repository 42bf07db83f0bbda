// FILE: internal/entity/document_entity.go
package entity

import "time"

// DocumentStatus is the gateway's `estado` label. Values are case-sensitive.
type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "SUBIENDO"
	DocumentStatusPending    DocumentStatus = "PENDIENTE"
	DocumentStatusQueued     DocumentStatus = "EN_COLA"
	DocumentStatusProcessing DocumentStatus = "PROCESANDO"
	DocumentStatusInProgress DocumentStatus = "EN_PROCESO"
	DocumentStatusCompleted  DocumentStatus = "COMPLETADO"
	DocumentStatusError      DocumentStatus = "ERROR"
	DocumentStatusFailed     DocumentStatus = "FALLIDO"
)

// DocumentPhase folds the gateway's synonyms into one lifecycle enum.
type DocumentPhase string

const (
	PhaseUploading  DocumentPhase = "UPLOADING"
	PhaseQueued     DocumentPhase = "QUEUED"
	PhaseProcessing DocumentPhase = "PROCESSING"
	PhaseCompleted  DocumentPhase = "COMPLETED"
	PhaseError      DocumentPhase = "ERROR"
	PhaseUnknown    DocumentPhase = "UNKNOWN"
)

func (s DocumentStatus) Phase() DocumentPhase {
	switch s {
	case DocumentStatusUploading:
		return PhaseUploading
	case DocumentStatusPending, DocumentStatusQueued:
		return PhaseQueued
	case DocumentStatusProcessing, DocumentStatusInProgress:
		return PhaseProcessing
	case DocumentStatusCompleted:
		return PhaseCompleted
	case DocumentStatusError, DocumentStatusFailed:
		return PhaseError
	default:
		return PhaseUnknown
	}
}

func (s DocumentStatus) IsCompleted() bool {
	return s == DocumentStatusCompleted
}

type Document struct {
	Id                 ID             `json:"documento_id"`
	FileName           string         `json:"nombre_archivo"`
	Status             DocumentStatus `json:"estado"`
	PlagiarismScore    *float64       `json:"score_plagio"`
	PageCount          *int           `json:"page_count"`
	WordCount          *int           `json:"word_count"`
	AnalysisDurationMs *int64         `json:"analysis_duration_ms"`

	// Present on BI payloads only.
	ProjectId  ID         `json:"proyecto_id,omitempty"`
	RiskLabel  string     `json:"riesgo_label,omitempty"`
	CharCount  *int       `json:"char_count,omitempty"`
	LineCount  *int       `json:"line_count,omitempty"`
	ClusterId  *int       `json:"cluster_id,omitempty"`
	StorageKey string     `json:"storage_key,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Sanitize drops analysis metrics on documents that are not COMPLETADO.
// Metrics are only meaningful once the analysis finished.
func (d *Document) Sanitize() {
	if d.Status.IsCompleted() {
		return
	}
	d.PlagiarismScore = nil
	d.PageCount = nil
	d.WordCount = nil
	d.AnalysisDurationMs = nil
}
