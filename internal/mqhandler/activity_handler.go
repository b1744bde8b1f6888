package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"habittracker/internal/repository"
	pkglogger "habittracker/pkg/logger"
	"habittracker/pkg/mq"
	"habittracker/pkg/util"
)

// ActivityHandler 消费习惯域事件并落库，作为活动审计日志
type ActivityHandler struct {
	activities *repository.ActivityRepository
	deduper    *util.Deduper
	dlq        *mq.Publisher
	logger     *zap.Logger
}

func NewActivityHandler(activities *repository.ActivityRepository, deduper *util.Deduper, dlq *mq.Publisher, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		deduper:    deduper,
		dlq:        dlq,
		logger:     logger,
	}
}

func (h *ActivityHandler) Handle(ctx context.Context, routingKey, messageID string, data json.RawMessage) error {
	log := pkglogger.WithTrace(ctx, h.logger)

	// 重投递的消息直接 ack，避免审计日志重复
	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "activity", messageID) {
		return nil
	}

	if err := h.activities.Insert(ctx, routingKey, data); err != nil {
		log.Error("Failed to record activity event",
			zap.String("routing_key", routingKey),
			zap.Error(err))

		// 落库失败的消息送入死信队列，避免无限重投
		if h.dlq != nil {
			if dlqErr := h.dlq.PublishToDLQ(routingKey, data, err.Error()); dlqErr != nil {
				log.Error("Failed to publish to DLQ", zap.Error(dlqErr))
				return err
			}
			log.Warn("Event routed to DLQ", zap.String("routing_key", routingKey))
			return nil
		}
		return err
	}

	log.Info("Activity event recorded", zap.String("routing_key", routingKey))
	return nil
}
