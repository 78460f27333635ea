package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-studymate-be/internal/dto"
	"ai-studymate-be/internal/pkg/logger"
	"ai-studymate-be/pkg/events"
	"ai-studymate-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn-completed events off the in-process bus, logs
// them, and forwards them to NATS for external subscribers. NATS being down
// never blocks the answer path; the event is logged and dropped.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *nats.Publisher
	turnLog   logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *nats.Publisher,
	turnLog logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		turnLog:   turnLog,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.turnLog.Info("turns", "Turn completed", map[string]interface{}{
		"session_id": payload.SessionId.String(),
		"mode":       payload.Mode,
		"model_tier": payload.ModelTier,
		"confidence": payload.Confidence,
		"cached":     payload.Cached,
		"degraded":   payload.Degraded,
	})

	if cs.natsPub != nil {
		event := events.NewBaseEvent(cs.topicName, map[string]interface{}{
			"session_id": payload.SessionId.String(),
			"user_id":    payload.UserId.String(),
			"mode":       payload.Mode,
			"model_tier": payload.ModelTier,
			"confidence": payload.Confidence,
			"cached":     payload.Cached,
			"degraded":   payload.Degraded,
		}, payload.AnsweredAt)

		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.natsPub.Publish(pubCtx, event); err != nil {
			cs.turnLog.Warn("turns", "Failed to forward turn event to NATS", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancel()
	}

	msg.Ack()
}
