package gopush

import (
	"context"
	"encoding/json"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/kafka"
)

// KafkaPusher hands push triggers to the push worker over Kafka. A
// successful publish means "accepted", not "delivered to a device" -- push
// is best-effort end to end.
type KafkaPusher struct {
	producer *kafka.Producer
}

func NewKafkaPusher(producer *kafka.Producer) *KafkaPusher {
	return &KafkaPusher{producer: producer}
}

func (p *KafkaPusher) Trigger(ctx context.Context, recipientRef string) error {
	event := GenericEvent(recipientRef)
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, Topic, []byte(recipientRef), value)
}
