package service

import (
	"context"
	"encoding/json"

	"vibe-curation-be/internal/constant"
	"vibe-curation-be/internal/pkg/logger"
	"vibe-curation-be/internal/websocket"
	"vibe-curation-be/pkg/events"
	natspub "vibe-curation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ConsumerService drains the in-process event bus: session snapshots go to the
// websocket hub, audit events go to JetStream and the audit log file.
type ConsumerService struct {
	pubSub   *gochannel.GoChannel
	hub      *websocket.Hub
	natsPub  *natspub.Publisher
	logger   logger.ILogger
	auditLog logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	hub *websocket.Hub,
	natsPub *natspub.Publisher,
	log logger.ILogger,
	auditLog logger.ILogger,
) *ConsumerService {
	return &ConsumerService{
		pubSub:   pubSub,
		hub:      hub,
		natsPub:  natsPub,
		logger:   log,
		auditLog: auditLog,
	}
}

// Consume subscribes to both topics and blocks until the context is done.
func (c *ConsumerService) Consume(ctx context.Context) error {
	updates, err := c.pubSub.Subscribe(ctx, constant.TopicSessionUpdates)
	if err != nil {
		return err
	}
	audit, err := c.pubSub.Subscribe(ctx, constant.TopicCurationAudit)
	if err != nil {
		return err
	}

	c.logger.Info("ConsumerService", "Event consumer started", nil)

	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			c.handleSessionUpdate(msg.Payload)
			msg.Ack()

		case msg, ok := <-audit:
			if !ok {
				return nil
			}
			c.handleAudit(ctx, msg.Payload)
			msg.Ack()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *ConsumerService) handleSessionUpdate(payload []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.Warn("ConsumerService", "Malformed session update event", map[string]interface{}{"error": err.Error()})
		return
	}
	sessionID, _ := envelope.Data["session_id"].(string)
	if sessionID == "" {
		c.logger.Warn("ConsumerService", "Session update without session_id", nil)
		return
	}

	feed, err := json.Marshal(map[string]interface{}{
		"type":  envelope.Type,
		"state": envelope.Data["state"],
	})
	if err != nil {
		c.logger.Error("ConsumerService", "Failed to marshal feed payload", map[string]interface{}{"error": err.Error()})
		return
	}
	c.hub.BroadcastToSession(sessionID, feed)
}

func (c *ConsumerService) handleAudit(ctx context.Context, payload []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.Warn("ConsumerService", "Malformed audit event", map[string]interface{}{"error": err.Error()})
		return
	}

	if c.auditLog != nil {
		c.auditLog.Info("Audit", envelope.Type, envelope.Data)
	}

	if c.natsPub == nil {
		return
	}
	event := events.BaseEvent{Type: envelope.Type, Data: envelope.Data, OccurredAt: envelope.OccurredAt}
	if err := c.natsPub.Publish(ctx, event); err != nil {
		c.logger.Warn("ConsumerService", "Failed to publish audit event to NATS", map[string]interface{}{
			"type":  envelope.Type,
			"error": err.Error(),
		})
	}
}
