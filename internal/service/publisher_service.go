package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	TopicDocumentStatus = "console.document_status"
	TopicUploadProgress = "console.upload_progress"
)

// IPublisherService puts tab events on the in-process bus. Consumers relay
// them to websockets, metrics and NATS.
type IPublisherService interface {
	PublishStatus(ctx context.Context, tabID string, ev lifecycle.Event) error
	PublishProgress(ctx context.Context, tabID string, projectID entity.ID, fileName string, percent int) error
}

type publisherService struct {
	pubSub message.Publisher
}

func NewPublisherService(pubSub message.Publisher) IPublisherService {
	return &publisherService{pubSub: pubSub}
}

func (p *publisherService) PublishStatus(ctx context.Context, tabID string, ev lifecycle.Event) error {
	return p.publish(ctx, TopicDocumentStatus, dto.DocumentStatusMessage{
		TrackingResponse: trackingResponse(ev),
		Id:               watermill.NewUUID(),
		TabId:            tabID,
		OccurredAt:       time.Now(),
	})
}

func (p *publisherService) PublishProgress(ctx context.Context, tabID string, projectID entity.ID, fileName string, percent int) error {
	return p.publish(ctx, TopicUploadProgress, dto.UploadProgressMessage{
		Id:         watermill.NewUUID(),
		TabId:      tabID,
		ProjectId:  projectID,
		FileName:   fileName,
		Percent:    percent,
		OccurredAt: time.Now(),
	})
}

func (p *publisherService) publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	return p.pubSub.Publish(topic, msg)
}

func trackingResponse(ev lifecycle.Event) dto.TrackingResponse {
	res := dto.TrackingResponse{
		ProjectId:  ev.ProjectID,
		DocumentId: ev.DocumentID,
		State:      string(ev.State),
		Outcome:    string(ev.Outcome),
		Document:   ev.Document,
		Attempt:    ev.Attempt,
		ElapsedMs:  ev.Elapsed.Milliseconds(),
	}
	if ev.Err != nil {
		res.Error = ev.Err.Error()
	}
	return res
}
