package events

import "time"

// Event defines the contract for all console events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_ANALYSIS_COMPLETED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeLogin                = "CONSOLE_LOGIN"
	TypeLogout               = "CONSOLE_LOGOUT"
	TypeOrganizationSelected = "ORGANIZATION_SELECTED"
	TypeProjectCreated       = "PROJECT_CREATED"
	TypeProjectDeleted       = "PROJECT_DELETED"
	TypeDocumentUploaded     = "DOCUMENT_UPLOADED"
	TypeDocumentDeleted      = "DOCUMENT_DELETED"
	TypeAnalysisCompleted    = "DOCUMENT_ANALYSIS_COMPLETED"
	TypeAnalysisTimedOut     = "DOCUMENT_ANALYSIS_TIMEOUT"
)
