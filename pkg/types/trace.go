package types

import "time"

// Channel classifies how an exposed contact can be reached.
type Channel string

const (
	ChannelAppUser Channel = "app_user"
	ChannelSMS     Channel = "sms_capable"
	ChannelManual  Channel = "manual_unreachable"
)

// ContactToNotify is one resolver hit for a single fan-out run. It is never
// persisted; the durable record is whatever the in-app dispatch writes.
// VagueElapsed is the only time reference that may reach a recipient.
type ContactToNotify struct {
	ContactID     string    `json:"contact_id"`
	DisplayName   string    `json:"display_name"`
	UserRef       string    `json:"user_ref,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	VagueElapsed  string    `json:"vague_elapsed"`
	EncounterDate time.Time `json:"-"`
}

type TraceRequest struct {
	ReportingUserRef string    `json:"reporting_user_ref" binding:"required"`
	ConditionIDs     []string  `json:"condition_ids" binding:"required"`
	TestDate         time.Time `json:"test_date" binding:"required"`
	NotifyEmail      string    `json:"notify_email,omitempty"`
}

// TraceResult aggregates one fan-out run. Counts are best-effort telemetry,
// not a delivery guarantee.
type TraceResult struct {
	AppUsersNotified      int               `json:"app_users_notified"`
	SmsMessagesSent       int               `json:"sms_messages_sent"`
	ManualContactsNoPhone []ContactToNotify `json:"manual_contacts_no_phone"`
}
