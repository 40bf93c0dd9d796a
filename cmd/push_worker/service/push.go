package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/brodiemcgee/thegloryapp-sub002/metrics"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gopush"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/kafka"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const maxRetries = 3

// HandlePush drains the push topic and forwards each trigger to the push
// gateway. A trigger that exhausts its retries goes to the DLQ; the in-app
// record was already written by the API, so nothing is lost for the user.
func HandlePush(broker string, ctx context.Context, gateway *gopush.GatewayClient, logger *zap.Logger, producer *kafka.Producer) {
	topic := gopush.Topic
	c := kafka.NewConsumerFromEnv(topic, "push")
	defer c.Close()

	logger.Info("Starting Kafka consumer", zap.String("topic", topic), zap.String("broker", broker))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down push consumer", zap.String("topic", topic))
			return
		default:
			m, err := c.ReadFromKafka(ctx)
			if err != nil {
				logger.Error("Error reading Kafka message", zap.String("topic", topic), zap.Error(err))
				continue
			}
			var event gopush.TriggerEvent
			if err := json.Unmarshal(m.Value, &event); err != nil {
				logger.Error("Failed to unmarshal push trigger",
					zap.ByteString("raw", m.Value),
					zap.Error(err),
				)
				continue
			}
			logger.Info("Kafka message received",
				zap.String("topic", topic),
				zap.ByteString("key", m.Key),
				zap.Int64("offset", m.Offset),
			)
			DeliverWithRetry(ctx, logger, gateway, event, producer)
		}
	}
}

func DeliverWithRetry(ctx context.Context, logger *zap.Logger, gateway *gopush.GatewayClient, event gopush.TriggerEvent, producer *kafka.Producer) error {
	timer := prometheus.NewTimer(metrics.NotificationSendDuration.WithLabelValues("gateway", "push_worker"))
	defer timer.ObserveDuration()

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := gateway.Deliver(ctx, event)
		if err == nil {
			metrics.ExternalAPISuccess.WithLabelValues("gateway", "push_worker").Inc()
			return nil
		}
		baseTime := 1 * time.Second
		backoffDelay := baseTime * time.Duration(1<<(attempt-1))
		jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
		waitTime := backoffDelay + jitter
		logger.Warn("Push delivery attempt failed, will retry",
			zap.Int("attempt", attempt),
			zap.Error(err),
			zap.Duration("retry_in", waitTime),
		)

		time.Sleep(waitTime)
	}

	err := fmt.Errorf("push delivery failed after %d retries", maxRetries)
	metrics.ExternalAPIFailure.WithLabelValues("gateway", "push_worker").Inc()
	metrics.NotificationDLQTotal.WithLabelValues("max_retries", "push").Inc()

	eventBytes, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		logger.Error("Failed to marshal push trigger for DLQ",
			zap.String("recipient", event.RecipientRef),
			zap.Error(marshalErr),
		)
		return marshalErr
	}
	producer.Publish(context.Background(), gopush.DLQTopic, []byte(event.RecipientRef), eventBytes)

	logger.Error("Final push delivery failure",
		zap.String("recipient", event.RecipientRef),
		zap.Error(err),
	)
	return err
}
