package events

import (
	"context"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// Publisher is satisfied by the NATS publisher.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emitter publishes the console's domain events. Failures are logged and
// never reach the caller; events are auxiliary.
type Emitter struct {
	publisher Publisher
	logger    logger.ILogger
	clock     clockwork.Clock
}

// NewEmitter accepts a nil publisher, in which case nothing is sent.
func NewEmitter(publisher Publisher, log logger.ILogger) *Emitter {
	return &Emitter{publisher: publisher, logger: log, clock: clockwork.NewRealClock()}
}

func (e *Emitter) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if e == nil || e.publisher == nil {
		return
	}
	evt := BaseEvent{Type: eventType, Data: data, OccurredAt: e.clock.Now()}
	if err := e.publisher.Publish(ctx, evt); err != nil {
		e.logger.Warn("Events", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (e *Emitter) Login(ctx context.Context, tabID string, userID int64, subject, role string) {
	e.emit(ctx, TypeLogin, map[string]interface{}{
		"tab_id":  tabID,
		"user_id": userID,
		"sub":     subject,
		"role":    role,
	})
}

func (e *Emitter) Logout(ctx context.Context, tabID string, userID int64) {
	e.emit(ctx, TypeLogout, map[string]interface{}{"tab_id": tabID, "user_id": userID})
}

func (e *Emitter) OrganizationSelected(ctx context.Context, tabID, organizationID, name string) {
	e.emit(ctx, TypeOrganizationSelected, map[string]interface{}{
		"tab_id":          tabID,
		"organization_id": organizationID,
		"name":            name,
	})
}

func (e *Emitter) ProjectCreated(ctx context.Context, projectID string, name string, userID int64, organizationID string) {
	e.emit(ctx, TypeProjectCreated, map[string]interface{}{
		"proyecto_id":     projectID,
		"nombre":          name,
		"user_id":         userID,
		"organization_id": organizationID,
	})
}

func (e *Emitter) ProjectDeleted(ctx context.Context, projectID string, userID int64) {
	e.emit(ctx, TypeProjectDeleted, map[string]interface{}{"proyecto_id": projectID, "user_id": userID})
}

func (e *Emitter) DocumentUploaded(ctx context.Context, projectID, documentID, fileName string) {
	e.emit(ctx, TypeDocumentUploaded, map[string]interface{}{
		"proyecto_id":    projectID,
		"documento_id":   documentID,
		"nombre_archivo": fileName,
	})
}

func (e *Emitter) DocumentDeleted(ctx context.Context, projectID, documentID string) {
	e.emit(ctx, TypeDocumentDeleted, map[string]interface{}{"proyecto_id": projectID, "documento_id": documentID})
}

// AnalysisCompleted carries the score when the gateway reported one.
func (e *Emitter) AnalysisCompleted(ctx context.Context, projectID, documentID string, score *float64, elapsed time.Duration) {
	data := map[string]interface{}{
		"proyecto_id":  projectID,
		"documento_id": documentID,
		"elapsed_ms":   elapsed.Milliseconds(),
	}
	if score != nil {
		data["score_plagio"] = *score
	}
	e.emit(ctx, TypeAnalysisCompleted, data)
}

func (e *Emitter) AnalysisTimedOut(ctx context.Context, projectID, documentID string, attempts int, elapsed time.Duration) {
	e.emit(ctx, TypeAnalysisTimedOut, map[string]interface{}{
		"proyecto_id":  projectID,
		"documento_id": documentID,
		"attempts":     attempts,
		"elapsed_ms":   elapsed.Milliseconds(),
	})
}
