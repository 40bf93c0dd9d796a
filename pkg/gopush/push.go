package gopush

import "context"

// Topic carries push triggers from the API to the push worker.
const Topic = "notification.push"

// DLQTopic receives triggers the worker gave up on.
const DLQTopic = "notification.push.dlq"

type Pusher interface {
	Trigger(ctx context.Context, recipientRef string) error
}

// TriggerEvent is the wire payload on the push topic. It deliberately
// carries no condition, date, or reporter data: the push itself only tells
// the device to wake up and fetch in-app notifications.
type TriggerEvent struct {
	RecipientRef string `json:"recipient_ref"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

// GenericEvent is the fixed, content-free payload used for exposure notices.
func GenericEvent(recipientRef string) TriggerEvent {
	return TriggerEvent{
		RecipientRef: recipientRef,
		Title:        "New notification",
		Body:         "You have a new notification waiting in the app.",
	}
}
