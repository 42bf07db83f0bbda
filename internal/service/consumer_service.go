// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/websocket"
	"github.com/Gatu-1548/plagio-ia/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const eventPublishTimeout = 5 * time.Second

// StatusDelivery pushes a message to one tab. Implemented by the websocket hub.
type StatusDelivery interface {
	Send(tabID, msgType string, data interface{})
}

type StatusObserver interface {
	StatusUpdate(state string, terminal bool, elapsed time.Duration)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub   message.Subscriber
	delivery StatusDelivery
	observer StatusObserver
	emitter  *events.Emitter
	logger   logger.ILogger
}

func NewConsumerService(
	pubSub message.Subscriber,
	delivery StatusDelivery,
	observer StatusObserver,
	emitter *events.Emitter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:   pubSub,
		delivery: delivery,
		observer: observer,
		emitter:  emitter,
		logger:   log,
	}
}

// Consume subscribes to both bus topics and returns; processing continues
// until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	statuses, err := cs.pubSub.Subscribe(ctx, TopicDocumentStatus)
	if err != nil {
		return err
	}
	progress, err := cs.pubSub.Subscribe(ctx, TopicUploadProgress)
	if err != nil {
		return err
	}

	go func() {
		for msg := range statuses {
			cs.processStatus(ctx, msg)
		}
	}()
	go func() {
		for msg := range progress {
			cs.processProgress(msg)
		}
	}()
	return nil
}

func (cs *consumerService) processStatus(ctx context.Context, msg *message.Message) {
	// Invalid messages are acked; redelivery cannot fix them.
	defer msg.Ack()

	var payload dto.DocumentStatusMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal status message", map[string]interface{}{"error": err.Error()})
		return
	}

	if cs.delivery != nil {
		cs.delivery.Send(payload.TabId, websocket.MessageDocumentStatus, payload)
	}

	state := poller.State(payload.State)
	elapsed := time.Duration(payload.ElapsedMs) * time.Millisecond
	if cs.observer != nil {
		cs.observer.StatusUpdate(payload.State, state.Terminal(), elapsed)
	}

	pubCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()

	switch state {
	case poller.StateCompleted:
		var score *float64
		if payload.Document != nil {
			score = payload.Document.PlagiarismScore
		}
		cs.emitter.AnalysisCompleted(pubCtx, payload.ProjectId.String(), payload.DocumentId.String(), score, elapsed)
	case poller.StateTimedOut:
		cs.emitter.AnalysisTimedOut(pubCtx, payload.ProjectId.String(), payload.DocumentId.String(), payload.Attempt, elapsed)
	}
}

func (cs *consumerService) processProgress(msg *message.Message) {
	defer msg.Ack()

	var payload dto.UploadProgressMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal progress message", map[string]interface{}{"error": err.Error()})
		return
	}
	if cs.delivery != nil {
		cs.delivery.Send(payload.TabId, websocket.MessageUploadProgress, payload)
	}
}
