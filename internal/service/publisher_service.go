package service

import (
	"encoding/json"
	"time"

	"vibe-curation-be/internal/constant"
	"vibe-curation-be/internal/dto"
	"vibe-curation-be/internal/pkg/logger"
	"vibe-curation-be/pkg/events"
	"vibe-curation-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// eventEnvelope is the in-process wire format on the watermill topics.
type eventEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type IPublisherService interface {
	PublishSessionUpdated(state *dto.SessionStateResponse)
	PublishItemAccepted(sessionID string, item store.Item)
	PublishItemRejected(sessionID string, item store.Item)
	PublishSessionReset(sessionID string)
}

type publisherService struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewPublisherService(pubSub *gochannel.GoChannel, log logger.ILogger) IPublisherService {
	return &publisherService{pubSub: pubSub, logger: log}
}

func (p *publisherService) PublishSessionUpdated(state *dto.SessionStateResponse) {
	p.publish(constant.TopicSessionUpdates, events.NewSessionUpdated(state.ID, state))
}

func (p *publisherService) PublishItemAccepted(sessionID string, item store.Item) {
	p.publish(constant.TopicCurationAudit, events.NewItemAccepted(sessionID, item))
}

func (p *publisherService) PublishItemRejected(sessionID string, item store.Item) {
	p.publish(constant.TopicCurationAudit, events.NewItemRejected(sessionID, item))
}

func (p *publisherService) PublishSessionReset(sessionID string) {
	p.publish(constant.TopicCurationAudit, events.NewSessionReset(sessionID))
}

func (p *publisherService) publish(topic string, event events.Event) {
	payload, err := json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		p.logger.Error("PublisherService", "Failed to marshal event", map[string]interface{}{
			"topic": topic,
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(topic, msg); err != nil {
		p.logger.Error("PublisherService", "Failed to publish event", map[string]interface{}{
			"topic": topic,
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
