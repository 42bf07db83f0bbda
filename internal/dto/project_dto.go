package dto

import (
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type CreateProjectRequest struct {
	Name string `json:"nombre" validate:"required,min=1,max=120"`
}

type UpdateProjectRequest struct {
	Name string `json:"nombre" validate:"required,min=1,max=120"`
}

type TrackDocumentRequest struct {
	ProjectId entity.ID `json:"proyecto_id" validate:"required"`
}

type UploadResponse struct {
	ProjectId  entity.ID       `json:"proyecto_id"`
	DocumentId entity.ID       `json:"documento_id,omitempty"`
	Tracking   bool            `json:"tracking"`
	Project    *entity.Project `json:"proyecto,omitempty"`
	Gateway    interface{}     `json:"gateway,omitempty"`
}

type TrackingResponse struct {
	ProjectId  entity.ID        `json:"proyecto_id,omitempty"`
	DocumentId entity.ID        `json:"documento_id,omitempty"`
	State      string           `json:"state"`
	Outcome    string           `json:"outcome,omitempty"`
	Document   *entity.Document `json:"documento,omitempty"`
	Attempt    int              `json:"attempt"`
	ElapsedMs  int64            `json:"elapsed_ms"`
	Error      string           `json:"error,omitempty"`
}

// DocumentStatusMessage travels on the in-process bus and to the tab's
// websocket.
type DocumentStatusMessage struct {
	TrackingResponse

	Id         string    `json:"id"`
	TabId      string    `json:"tab_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UploadProgressMessage struct {
	Id         string    `json:"id"`
	TabId      string    `json:"tab_id"`
	ProjectId  entity.ID `json:"proyecto_id"`
	FileName   string    `json:"nombre_archivo"`
	Percent    int       `json:"percent"`
	OccurredAt time.Time `json:"occurred_at"`
}
